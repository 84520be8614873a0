package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store owns a directory tree rooted at Root and implements the
// on-disk layout, sidecar format, and streaming operations described
// in the data model. Concurrent callers are serialised only by the
// filesystem's own rename atomicity; Store keeps no additional
// in-memory state about bucket contents.
type Store struct {
	Root string
	pub  EventPublisher
}

// New creates a Store rooted at root, creating the directory if it
// does not already exist.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving data root: %v", ErrInternal, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data root: %v", ErrInternal, err)
	}
	return &Store{Root: abs}, nil
}

func (s *Store) bucketDir(bucket string) string {
	return filepath.Join(s.Root, bucket)
}

func (s *Store) objectPath(bucket, key string) string {
	return filepath.Join(s.bucketDir(bucket), filepath.FromSlash(key))
}

// BucketExists reports whether bucket is a server-owned bucket
// directory (carries the .s3rver_bucket provenance marker).
func (s *Store) BucketExists(bucket string) bool {
	_, err := os.Stat(filepath.Join(s.bucketDir(bucket), bucketMarker))
	return err == nil
}

// requireBucket returns ErrNoSuchBucket unless bucket is server-owned.
func (s *Store) requireBucket(bucket string) error {
	if !s.BucketExists(bucket) {
		return ErrNoSuchBucket
	}
	return nil
}

// CreateBucket validates the name and creates the bucket directory
// plus its provenance marker. Idempotent against a bucket this server
// already owns; a foreign directory (no marker) or an owned bucket
// both count as "already exists" per the name already being taken,
// except the idempotent owned case which returns nil.
func (s *Store) CreateBucket(bucket string) error {
	if err := ValidateBucketName(bucket); err != nil {
		return err
	}
	dir := s.bucketDir(bucket)
	if s.BucketExists(bucket) {
		return nil
	}
	if _, err := os.Stat(dir); err == nil {
		return ErrBucketAlreadyExists
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating bucket directory: %v", ErrInternal, err)
	}
	marker := filepath.Join(dir, bucketMarker)
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		return fmt.Errorf("%w: writing bucket marker: %v", ErrInternal, err)
	}
	return nil
}

// DeleteBucket removes the bucket directory if it holds zero objects
// (sidecars and the marker itself don't count).
func (s *Store) DeleteBucket(bucket string) error {
	if err := s.requireBucket(bucket); err != nil {
		return err
	}
	summaries, err := s.ListObjectSummaries(bucket)
	if err != nil {
		return err
	}
	if len(summaries) > 0 {
		return ErrBucketNotEmpty
	}
	if err := os.RemoveAll(s.bucketDir(bucket)); err != nil {
		return fmt.Errorf("%w: removing bucket directory: %v", ErrInternal, err)
	}
	return nil
}

// ListBuckets enumerates server-owned bucket directories under Root.
func (s *Store) ListBuckets() ([]BucketInfo, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: listing data root: %v", ErrInternal, err)
	}
	var out []BucketInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !s.BucketExists(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, BucketInfo{Name: e.Name(), CreationTime: info.ModTime()})
	}
	return out, nil
}
