package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

func (s *Store) uploadDir(bucket, uploadID string) string {
	return filepath.Join(s.bucketDir(bucket), multipartDir, uploadID)
}

func partPath(uploadDir string, partNumber int) string {
	return filepath.Join(uploadDir, fmt.Sprintf("part-%05d", partNumber))
}

// InitiateMultipartUpload allocates a staging directory for a new
// upload and returns its id.
func (s *Store) InitiateMultipartUpload(bucket, key string) (string, error) {
	if err := s.requireBucket(bucket); err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	uploadID := uuid.NewString()
	if err := os.MkdirAll(s.uploadDir(bucket, uploadID), 0o755); err != nil {
		return "", fmt.Errorf("%w: creating multipart staging directory: %v", ErrInternal, err)
	}
	return uploadID, nil
}

// UploadPart streams body into the staging directory for uploadID as
// part partNumber, using the same temp-then-rename discipline as
// PutObject, and returns the part's ETag.
func (s *Store) UploadPart(bucket, key, uploadID string, partNumber int, body io.Reader) (string, error) {
	if err := validateUploadID(uploadID); err != nil {
		return "", err
	}
	dir := s.uploadDir(bucket, uploadID)
	if _, err := os.Stat(dir); err != nil {
		return "", ErrNoSuchUpload
	}
	result, err := s.putBlobAtomic(dir, partPath(dir, partNumber), body)
	if err != nil {
		return "", err
	}
	return result.ETag, nil
}

// CompleteMultipartUpload concatenates the given parts, in the
// caller-supplied ascending order, into the final object in one
// streaming pass, recomputing the whole-object MD5, then removes the
// staging directory.
func (s *Store) CompleteMultipartUpload(bucket, key, uploadID string, partNumbers []int, opts PutOptions) (PutResult, error) {
	if err := validateUploadID(uploadID); err != nil {
		return PutResult{}, err
	}
	dir := s.uploadDir(bucket, uploadID)
	if _, err := os.Stat(dir); err != nil {
		return PutResult{}, ErrNoSuchUpload
	}

	readers := make([]io.Reader, 0, len(partNumbers))
	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, n := range partNumbers {
		f, err := os.Open(partPath(dir, n))
		if err != nil {
			return PutResult{}, fmt.Errorf("%w: opening part %d: %v", ErrInternal, n, err)
		}
		closers = append(closers, f)
		readers = append(readers, f)
	}

	result, err := s.PutObject(bucket, key, io.MultiReader(readers...), opts)
	if err != nil {
		return PutResult{}, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return PutResult{}, fmt.Errorf("%w: removing multipart staging directory: %v", ErrInternal, err)
	}
	return result, nil
}

// AbortMultipartUpload removes the staging directory; it is not an
// error if the upload is already gone.
func (s *Store) AbortMultipartUpload(bucket, key, uploadID string) error {
	if err := validateUploadID(uploadID); err != nil {
		return err
	}
	if err := os.RemoveAll(s.uploadDir(bucket, uploadID)); err != nil {
		return fmt.Errorf("%w: removing multipart staging directory: %v", ErrInternal, err)
	}
	return nil
}

// putBlobAtomic streams body to a temp file in dir while hashing it,
// then renames it into place at finalPath. It backs individual
// multipart part writes; PutObject does its own blob write.
func (s *Store) putBlobAtomic(dir, finalPath string, body io.Reader) (PutResult, error) {
	tmp, err := os.CreateTemp(dir, ".s3rver_tmp-*")
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: creating temp file: %v", ErrInternal, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	h := newMD5()
	size, err := io.Copy(io.MultiWriter(tmp, h), body)
	closeErr := tmp.Close()
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: streaming part body: %v", ErrInternal, err)
	}
	if closeErr != nil {
		return PutResult{}, fmt.Errorf("%w: flushing part body: %v", ErrInternal, closeErr)
	}
	etag := hexSum(h)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return PutResult{}, fmt.Errorf("%w: renaming part blob: %v", ErrInternal, err)
	}
	return PutResult{ETag: etag, Size: size}, nil
}
