package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetBucketCORS returns the raw CORS configuration document last set
// via SetBucketCORS, or nil if none is configured.
func (s *Store) GetBucketCORS(bucket string) ([]byte, error) {
	return s.readBucketConfig(bucket, corsConfigFile)
}

// SetBucketCORS persists a CORS configuration document as supplied
// to PUT /<bucket>?cors.
func (s *Store) SetBucketCORS(bucket string, raw []byte) error {
	return s.writeBucketConfig(bucket, corsConfigFile, raw)
}

// DeleteBucketCORS removes a bucket's CORS configuration.
func (s *Store) DeleteBucketCORS(bucket string) error {
	return s.deleteBucketConfig(bucket, corsConfigFile)
}

// GetBucketWebsite returns the raw website configuration document
// last set via SetBucketWebsite, or nil if none is configured.
func (s *Store) GetBucketWebsite(bucket string) ([]byte, error) {
	return s.readBucketConfig(bucket, siteConfigFile)
}

// SetBucketWebsite persists a website configuration document as
// supplied to PUT /<bucket>?website.
func (s *Store) SetBucketWebsite(bucket string, raw []byte) error {
	return s.writeBucketConfig(bucket, siteConfigFile, raw)
}

// DeleteBucketWebsite removes a bucket's website configuration.
func (s *Store) DeleteBucketWebsite(bucket string) error {
	return s.deleteBucketConfig(bucket, siteConfigFile)
}

func (s *Store) readBucketConfig(bucket, name string) ([]byte, error) {
	if err := s.requireBucket(bucket); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.bucketDir(bucket), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading bucket config: %v", ErrInternal, err)
	}
	return data, nil
}

func (s *Store) writeBucketConfig(bucket, name string, raw []byte) error {
	if err := s.requireBucket(bucket); err != nil {
		return err
	}
	if err := writeFileAtomic(s.bucketDir(bucket), filepath.Join(s.bucketDir(bucket), name), raw); err != nil {
		return fmt.Errorf("%w: writing bucket config: %v", ErrInternal, err)
	}
	return nil
}

func (s *Store) deleteBucketConfig(bucket, name string) error {
	if err := s.requireBucket(bucket); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.bucketDir(bucket), name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing bucket config: %v", ErrInternal, err)
	}
	return nil
}
