package dispatch

import (
	"net/http"
	"net/url"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/listing"
)

type urlValues = url.Values

// handleService answers GET / with the list of owned buckets.
func (h *Handler) handleService(w http.ResponseWriter, r *http.Request, ctx *requestContext) {
	if r.Method != http.MethodGet {
		api.WriteError(w, api.CodeInvalidRequest, "Unsupported method for the service endpoint", "/", ctx.requestID)
		return
	}
	buckets, err := h.store.ListBuckets()
	if err != nil {
		h.writeStoreError(w, r, ctx, "/", err)
		return
	}
	result := api.ListAllMyBucketsResult{Owner: cannedOwner}
	for _, b := range buckets {
		result.Buckets = append(result.Buckets, api.BucketInfo{
			Name:         b.Name,
			CreationDate: b.CreationTime.UTC().Format(rfc3339),
		})
	}
	api.WriteXML(w, http.StatusOK, result)
}

func (h *Handler) handleBucket(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket string) {
	resource := "/" + bucket
	q := r.URL.Query()

	switch r.Method {
	case http.MethodPut:
		switch {
		case q.Has("cors"):
			h.putBucketCORS(w, r, ctx, bucket, resource)
		case q.Has("website"):
			h.putBucketWebsite(w, r, ctx, bucket, resource)
		default:
			if err := h.store.CreateBucket(bucket); err != nil {
				h.writeStoreError(w, r, ctx, resource, err)
				return
			}
			w.WriteHeader(http.StatusOK)
		}
		return

	case http.MethodDelete:
		switch {
		case q.Has("cors"):
			if err := h.store.DeleteBucketCORS(bucket); err != nil {
				h.writeStoreError(w, r, ctx, resource, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case q.Has("website"):
			if err := h.store.DeleteBucketWebsite(bucket); err != nil {
				h.writeStoreError(w, r, ctx, resource, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			if err := h.store.DeleteBucket(bucket); err != nil {
				h.writeStoreError(w, r, ctx, resource, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
		return

	case http.MethodHead:
		if !h.store.BucketExists(bucket) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		return

	case http.MethodPost:
		if q.Has("delete") {
			h.postBulkDelete(w, r, ctx, bucket, resource)
			return
		}
		api.WriteError(w, api.CodeInvalidRequest, "Unsupported bucket operation", resource, ctx.requestID)
		return

	case http.MethodGet:
		switch {
		case q.Has("location"):
			api.WriteXML(w, http.StatusOK, api.LocationConstraint{})
		case q.Has("cors"):
			h.getBucketCORS(w, r, ctx, bucket, resource)
		case q.Has("acl"):
			api.WriteXML(w, http.StatusOK, cannedACL())
		case q.Has("website"):
			h.getBucketWebsite(w, r, ctx, bucket, resource)
		case q.Has("policy"):
			api.WriteError(w, api.CodeNoSuchBucketPolicy, "The specified bucket does not have a bucket policy", resource, ctx.requestID)
		case q.Has("versioning"):
			api.WriteXML(w, http.StatusOK, api.VersioningConfiguration{Xmlns: xmlns})
		default:
			h.getBucketOrWebsiteRoot(w, r, ctx, bucket, resource, q)
		}
		return

	default:
		api.WriteError(w, api.CodeInvalidRequest, "Unsupported method", resource, ctx.requestID)
	}
}

// getBucketOrWebsiteRoot serves either the website's index document
// (when the bucket is in website mode) or an object listing.
func (h *Handler) getBucketOrWebsiteRoot(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string, q urlValues) {
	if !h.store.BucketExists(bucket) {
		h.writeStoreError(w, r, ctx, resource, errNoSuchBucketFor(bucket))
		return
	}
	if site, ok := h.effectiveWebsite(bucket); ok {
		h.serveWebsite(w, r, bucket, site, "")
		return
	}
	h.listObjects(w, r, ctx, bucket, resource, q)
}

func (h *Handler) listObjects(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string, q urlValues) {
	summaries, err := h.store.ListObjectSummaries(bucket)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	objects := make([]listing.Object, len(summaries))
	for i, s := range summaries {
		objects[i] = listing.Object{Key: s.Key, Size: s.Size, ETag: s.ETag, LastModified: s.LastModified}
	}

	params := listing.Params{
		Prefix:    q.Get("prefix"),
		Delimiter: q.Get("delimiter"),
		MaxKeys:   atoiOr(q.Get("max-keys"), listing.DefaultMaxKeys),
	}

	v2 := q.Get("list-type") == "2"
	if v2 {
		params.Marker = q.Get("continuation-token")
		if params.Marker == "" {
			params.Marker = q.Get("start-after")
		}
	} else {
		params.Marker = q.Get("marker")
	}

	result := listing.List(objects, params)
	contents := make([]api.Content, len(result.Contents))
	for i, o := range result.Contents {
		contents[i] = api.Content{
			Key:          o.Key,
			LastModified: o.LastModified.UTC().Format(rfc3339),
			ETag:         quoteETag(o.ETag),
			Size:         o.Size,
			StorageClass: "STANDARD",
		}
	}
	commonPrefixes := make([]api.CommonPrefix, len(result.CommonPrefixes))
	for i, p := range result.CommonPrefixes {
		commonPrefixes[i] = api.CommonPrefix{Prefix: p}
	}

	if v2 {
		resp := api.ListBucketV2Result{
			Xmlns:          xmlns,
			Name:           bucket,
			Prefix:         params.Prefix,
			Delimiter:      params.Delimiter,
			MaxKeys:        params.MaxKeys,
			KeyCount:       len(result.Contents) + len(result.CommonPrefixes),
			IsTruncated:    result.IsTruncated,
			Contents:       contents,
			CommonPrefixes: commonPrefixes,
		}
		if result.IsTruncated {
			resp.NextContinuationToken = result.NextMarker
		}
		api.WriteXML(w, http.StatusOK, resp)
		return
	}

	resp := api.ListBucketResult{
		Xmlns:          xmlns,
		Name:           bucket,
		Prefix:         params.Prefix,
		Marker:         params.Marker,
		MaxKeys:        params.MaxKeys,
		Delimiter:      params.Delimiter,
		IsTruncated:    result.IsTruncated,
		Contents:       contents,
		CommonPrefixes: commonPrefixes,
	}
	if result.IsTruncated {
		resp.NextMarker = result.NextMarker
	}
	api.WriteXML(w, http.StatusOK, resp)
}
