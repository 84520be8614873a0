package store

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	EventObjectCreatedPut  = "ObjectCreated:Put"
	EventObjectCreatedCopy = "ObjectCreated:Copy"
	EventObjectRemoved     = "ObjectRemoved:Delete"

	defaultContentType = "binary/octet-stream"
)

// EventPublisher is the narrow interface the store needs to emit
// events after a successful mutation; satisfied structurally by
// internal/events.Bus so this package never imports it.
type EventPublisher interface {
	PublishEvent(eventName, bucket, key string, size int64, etag string)
}

// SetPublisher wires an event sink. Publication happens after the
// on-disk rename succeeds and before the call returns, per the
// ordering obligation in §5.
func (s *Store) SetPublisher(p EventPublisher) { s.pub = p }

func (s *Store) publish(name, bucket, key string, size int64, etag string) {
	if s.pub != nil {
		s.pub.PublishEvent(name, bucket, key, size, etag)
	}
}

// PutObject streams body into bucket/key, computing its MD5 while
// writing to a temp file, then renames the blob and sidecar into
// place (blob first, per the defined rename order in §5).
func (s *Store) PutObject(bucket, key string, body io.Reader, opts PutOptions) (PutResult, error) {
	if err := s.requireBucket(bucket); err != nil {
		return PutResult{}, err
	}
	if err := ValidateKey(key); err != nil {
		return PutResult{}, err
	}
	blobPath := s.objectPath(bucket, key)
	dir := filepath.Dir(blobPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PutResult{}, fmt.Errorf("%w: creating key directories: %v", ErrInternal, err)
	}

	tmp, err := os.CreateTemp(dir, ".s3rver_tmp-*")
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: creating temp file: %v", ErrInternal, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed away

	h := md5.New()
	size, err := io.Copy(io.MultiWriter(tmp, h), body)
	closeErr := tmp.Close()
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: streaming object body: %v", ErrInternal, err)
	}
	if closeErr != nil {
		return PutResult{}, fmt.Errorf("%w: flushing object body: %v", ErrInternal, closeErr)
	}

	sum := h.Sum(nil)
	etag := hex.EncodeToString(sum)
	if opts.ContentMD5 != "" {
		decoded, decErr := base64.StdEncoding.DecodeString(opts.ContentMD5)
		if decErr != nil || string(decoded) != string(sum) {
			return PutResult{}, ErrInvalidDigest
		}
	}

	if err := os.Rename(tmpPath, blobPath); err != nil {
		return PutResult{}, fmt.Errorf("%w: renaming object blob: %v", ErrInternal, err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	now := nowRFC3339()
	sc := sidecar{
		ContentType:        contentType,
		ContentEncoding:    opts.ContentEncoding,
		ContentDisposition: opts.ContentDisposition,
		CacheControl:       opts.CacheControl,
		Expires:            opts.Expires,
		ETag:               etag,
		LastModified:       now,
		Metadata:           opts.Metadata,
	}
	if err := writeSidecarAtomic(blobPath, sc); err != nil {
		return PutResult{}, fmt.Errorf("%w: writing sidecar: %v", ErrInternal, err)
	}

	lastModified, _ := parseTime(now)
	s.publish(EventObjectCreatedPut, bucket, key, size, etag)
	return PutResult{ETag: etag, LastModified: lastModified, Size: size}, nil
}

// HeadObject returns an object's metadata without its content.
func (s *Store) HeadObject(bucket, key string) (ObjectMeta, error) {
	if err := s.requireBucket(bucket); err != nil {
		return ObjectMeta{}, err
	}
	if err := ValidateKey(key); err != nil {
		return ObjectMeta{}, err
	}
	blobPath := s.objectPath(bucket, key)
	info, err := os.Stat(blobPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectMeta{}, ErrNoSuchKey
		}
		return ObjectMeta{}, fmt.Errorf("%w: statting object: %v", ErrInternal, err)
	}
	sc, scErr := readSidecarRetry(blobPath)
	if scErr != nil {
		return ObjectMeta{}, scErr
	}
	lastModified, _ := parseTime(sc.LastModified)
	return ObjectMeta{
		Key:                key,
		Size:               info.Size(),
		ETag:               sc.ETag,
		ContentType:        sc.ContentType,
		ContentEncoding:    sc.ContentEncoding,
		ContentDisposition: sc.ContentDisposition,
		CacheControl:       sc.CacheControl,
		Expires:            sc.Expires,
		LastModified:       lastModified,
		Metadata:           sc.Metadata,
	}, nil
}

// GetObject opens the blob for reading alongside its metadata. The
// caller is responsible for closing the returned ReadCloser.
func (s *Store) GetObject(bucket, key string) (io.ReadCloser, ObjectMeta, error) {
	meta, err := s.HeadObject(bucket, key)
	if err != nil {
		return nil, ObjectMeta{}, err
	}
	f, err := os.Open(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ObjectMeta{}, ErrNoSuchKey
		}
		return nil, ObjectMeta{}, fmt.Errorf("%w: opening object: %v", ErrInternal, err)
	}
	return f, meta, nil
}

// readSidecarRetry reads the sidecar for blobPath, retrying once if
// it finds the blob without a sidecar (a writer between the blob
// rename and the sidecar rename) before reporting InternalError, per
// §5's stated reader contract.
func readSidecarRetry(blobPath string) (sidecar, error) {
	sc, err := readSidecar(blobPath)
	if err == nil {
		return sc, nil
	}
	if os.IsNotExist(err) {
		sc, err = readSidecar(blobPath)
		if err == nil {
			return sc, nil
		}
		return sidecar{}, fmt.Errorf("%w: object blob without sidecar", ErrInternal)
	}
	return sidecar{}, err
}

// CopyObject reads the source's blob and sidecar and writes a new
// object at (destBucket, destKey). newContentType/newMetadata are
// only consulted when directive is DirectiveReplace.
func (s *Store) CopyObject(destBucket, destKey, srcBucket, srcKey string, directive CopyDirective, newContentType string, newMetadata map[string]string) (PutResult, error) {
	if err := s.requireBucket(srcBucket); err != nil {
		return PutResult{}, err
	}
	if err := s.requireBucket(destBucket); err != nil {
		return PutResult{}, err
	}
	if destBucket == srcBucket && destKey == srcKey && directive != DirectiveReplace {
		return PutResult{}, ErrInvalidRequest
	}

	srcPath := s.objectPath(srcBucket, srcKey)
	if _, err := os.Stat(srcPath); err != nil {
		if os.IsNotExist(err) {
			return PutResult{}, ErrNoSuchKey
		}
		return PutResult{}, fmt.Errorf("%w: statting source object: %v", ErrInternal, err)
	}
	srcSC, err := readSidecarRetry(srcPath)
	if err != nil {
		return PutResult{}, err
	}

	contentType := srcSC.ContentType
	metadata := srcSC.Metadata
	if directive == DirectiveReplace {
		contentType = newContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		metadata = newMetadata
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return PutResult{}, fmt.Errorf("%w: opening source object: %v", ErrInternal, err)
	}
	defer src.Close()

	result, err := s.PutObject(destBucket, destKey, src, PutOptions{
		ContentType:        contentType,
		ContentEncoding:    srcSC.ContentEncoding,
		ContentDisposition: srcSC.ContentDisposition,
		CacheControl:       srcSC.CacheControl,
		Expires:            srcSC.Expires,
		Metadata:           metadata,
	})
	if err != nil {
		return PutResult{}, err
	}
	s.publish(EventObjectCreatedCopy, destBucket, destKey, result.Size, result.ETag)
	return result, nil
}

// DeleteObject removes an object's blob and sidecar. Absence is not
// an error. After removal it walks back up ancestor directories,
// removing any that became empty, stopping at the bucket directory.
func (s *Store) DeleteObject(bucket, key string) error {
	if err := s.requireBucket(bucket); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	blobPath := s.objectPath(bucket, key)
	_, statErr := os.Stat(blobPath)
	existed := statErr == nil

	if existed {
		if err := os.Remove(blobPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: removing object blob: %v", ErrInternal, err)
		}
	}
	if err := os.Remove(sidecarPath(blobPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: removing object sidecar: %v", ErrInternal, err)
	}

	s.pruneEmptyAncestors(bucket, filepath.Dir(blobPath))

	if existed {
		s.publish(EventObjectRemoved, bucket, key, 0, "")
	}
	return nil
}

// pruneEmptyAncestors removes empty intermediate key-directories
// between dir and the bucket directory, never removing the bucket
// directory itself.
func (s *Store) pruneEmptyAncestors(bucket, dir string) {
	bucketRoot := s.bucketDir(bucket)
	for dir != bucketRoot && strings.HasPrefix(dir, bucketRoot) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// DeleteObjects deletes each key, reporting every requested key
// (including ones that never existed) as Deleted, per the upstream
// observed behaviour documented in §4.2. A key whose removal fails is
// reported with Deleted false and that error instead.
func (s *Store) DeleteObjects(bucket string, keys []string) ([]DeleteResult, error) {
	if err := s.requireBucket(bucket); err != nil {
		return nil, err
	}
	results := make([]DeleteResult, 0, len(keys))
	for _, key := range keys {
		if err := s.DeleteObject(bucket, key); err != nil {
			results = append(results, DeleteResult{Key: key, Deleted: false, Error: err})
			continue
		}
		results = append(results, DeleteResult{Key: key, Deleted: true})
	}
	return results, nil
}

// ListObjectSummaries walks the bucket directory and returns every
// object's key/size/etag/last-modified, excluding reserved on-disk
// names (the marker, sidecars, and multipart staging directory).
func (s *Store) ListObjectSummaries(bucket string) ([]ObjectSummary, error) {
	if err := s.requireBucket(bucket); err != nil {
		return nil, err
	}
	root := s.bucketDir(bucket)
	var out []ObjectSummary
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		name := info.Name()
		if info.IsDir() {
			if name == multipartDir {
				return filepath.SkipDir
			}
			return nil
		}
		if isReservedName(name) {
			return nil
		}
		sc, scErr := readSidecarRetry(path)
		if scErr != nil {
			return scErr
		}
		lastModified, _ := parseTime(sc.LastModified)
		out = append(out, ObjectSummary{
			Key:          filepath.ToSlash(rel),
			Size:         info.Size(),
			ETag:         sc.ETag,
			LastModified: lastModified,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking bucket directory: %v", ErrInternal, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
