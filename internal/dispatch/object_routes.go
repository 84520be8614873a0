package dispatch

import (
	"net/http"
	"strings"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/store"
)

func (h *Handler) handleObject(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key string) {
	resource := "/" + bucket + "/" + key
	q := r.URL.Query()

	switch r.Method {
	case http.MethodPut:
		switch {
		case q.Has("partNumber") && q.Has("uploadId"):
			h.uploadPart(w, r, ctx, bucket, key, resource, q)
		case r.Header.Get("x-amz-copy-source") != "":
			h.copyObject(w, r, ctx, bucket, key, resource)
		default:
			h.putObject(w, r, ctx, bucket, key, resource)
		}

	case http.MethodGet:
		h.getObject(w, r, ctx, bucket, key, resource, false)

	case http.MethodHead:
		h.getObject(w, r, ctx, bucket, key, resource, true)

	case http.MethodDelete:
		if q.Has("uploadId") {
			if err := h.store.AbortMultipartUpload(bucket, key, q.Get("uploadId")); err != nil {
				h.writeStoreError(w, r, ctx, resource, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := h.store.DeleteObject(bucket, key); err != nil {
			h.writeStoreError(w, r, ctx, resource, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodPost:
		switch {
		case q.Has("uploads"):
			h.initiateMultipartUpload(w, r, ctx, bucket, key, resource)
		case q.Has("uploadId"):
			h.completeMultipartUpload(w, r, ctx, bucket, key, resource, q)
		default:
			api.WriteError(w, api.CodeInvalidRequest, "Unsupported object operation", resource, ctx.requestID)
		}

	default:
		api.WriteError(w, api.CodeInvalidRequest, "Unsupported method", resource, ctx.requestID)
	}
}

func (h *Handler) putObject(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string) {
	opts := store.PutOptions{
		ContentType:        r.Header.Get("Content-Type"),
		ContentEncoding:    r.Header.Get("Content-Encoding"),
		ContentDisposition: r.Header.Get("Content-Disposition"),
		CacheControl:       r.Header.Get("Cache-Control"),
		Expires:            r.Header.Get("Expires"),
		ContentMD5:         r.Header.Get("Content-MD5"),
		Metadata:           extractUserMetadata(r),
	}
	result, err := h.store.PutObject(bucket, key, r.Body, opts)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	w.Header().Set("ETag", quoteETag(result.ETag))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getObject(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string, headOnly bool) {
	if site, ok := h.effectiveWebsite(bucket); ok {
		h.serveWebsite(w, r, bucket, site, key)
		return
	}
	if headOnly {
		meta, err := h.store.HeadObject(bucket, key)
		if err != nil {
			h.writeStoreError(w, r, ctx, resource, err)
			return
		}
		h.writeGetResponse(w, r, bucket, meta, nil, true)
		return
	}
	body, meta, err := h.store.GetObject(bucket, key)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	h.writeGetResponse(w, r, bucket, meta, body, false)
}

func (h *Handler) copyObject(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string) {
	srcBucket, srcKey, err := store.SplitCopySource(r.Header.Get("x-amz-copy-source"))
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	directive := store.DirectiveCopy
	if strings.EqualFold(r.Header.Get("x-amz-metadata-directive"), "REPLACE") {
		directive = store.DirectiveReplace
	}
	result, err := h.store.CopyObject(bucket, key, srcBucket, srcKey, directive, r.Header.Get("Content-Type"), extractUserMetadata(r))
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	api.WriteXML(w, http.StatusOK, api.CopyObjectResult{
		ETag:         quoteETag(result.ETag),
		LastModified: result.LastModified.UTC().Format(rfc3339),
	})
}

func extractUserMetadata(r *http.Request) map[string]string {
	const prefix = "x-amz-meta-"
	var meta map[string]string
	for k, v := range r.Header {
		lower := strings.ToLower(k)
		if !strings.HasPrefix(lower, prefix) || len(v) == 0 {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[strings.TrimPrefix(lower, prefix)] = v[0]
	}
	return meta
}
