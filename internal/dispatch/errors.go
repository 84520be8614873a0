package dispatch

import (
	"errors"
	"net/http"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/store"
)

// writeStoreError maps a store-level sentinel error to its wire code
// and renders it as an <Error> document, per the boundary-mapping
// rule: internal filesystem errors never leak past InternalError.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, ctx *requestContext, resource string, err error) {
	code, message := mapStoreError(err)
	if code == api.CodeInternalError {
		h.log.Error("internal store error", "error", err, "path", r.URL.Path, "request_id", ctx.requestID)
	}
	api.WriteError(w, code, message, resource, ctx.requestID)
}

func mapStoreError(err error) (code, message string) {
	switch {
	case errors.Is(err, store.ErrNoSuchBucket):
		return api.CodeNoSuchBucket, "The specified bucket does not exist"
	case errors.Is(err, store.ErrNoSuchKey):
		return api.CodeNoSuchKey, "The specified key does not exist"
	case errors.Is(err, store.ErrNoSuchUpload):
		return api.CodeNoSuchUpload, "The specified upload does not exist"
	case errors.Is(err, store.ErrBucketNotEmpty):
		return api.CodeBucketNotEmpty, "The bucket you tried to delete is not empty"
	case errors.Is(err, store.ErrBucketAlreadyExists):
		return api.CodeBucketAlreadyExists, "The requested bucket name is not available"
	case errors.Is(err, store.ErrInvalidBucketName):
		return api.CodeInvalidBucketName, "The specified bucket is not valid"
	case errors.Is(err, store.ErrInvalidDigest):
		return api.CodeInvalidDigest, "The Content-MD5 you specified did not match what we received"
	case errors.Is(err, store.ErrInvalidRequest):
		return api.CodeInvalidRequest, "Invalid request"
	default:
		return api.CodeInternalError, "We encountered an internal error"
	}
}
