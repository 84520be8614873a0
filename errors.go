package s3rver

import "github.com/fireboy1919/s3rver/internal/store"

// Re-exported so callers embedding the server as a library can
// errors.Is against them without reaching into internal/.
var (
	ErrNoSuchBucket        = store.ErrNoSuchBucket
	ErrNoSuchKey           = store.ErrNoSuchKey
	ErrBucketNotEmpty      = store.ErrBucketNotEmpty
	ErrBucketAlreadyExists = store.ErrBucketAlreadyExists
	ErrInvalidBucketName   = store.ErrInvalidBucketName
	ErrInvalidDigest       = store.ErrInvalidDigest
	ErrInvalidRequest      = store.ErrInvalidRequest
	ErrInternal            = store.ErrInternal
	ErrNoSuchUpload        = store.ErrNoSuchUpload
)
