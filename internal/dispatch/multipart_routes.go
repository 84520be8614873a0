package dispatch

import (
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/store"
)

func (h *Handler) initiateMultipartUpload(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string) {
	uploadID, err := h.store.InitiateMultipartUpload(bucket, key)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	api.WriteXML(w, http.StatusOK, api.InitiateMultipartUploadResult{
		Bucket:   bucket,
		Key:      key,
		UploadID: uploadID,
	})
}

func (h *Handler) uploadPart(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string, q url.Values) {
	partNumber := atoiOr(q.Get("partNumber"), 0)
	if partNumber <= 0 {
		api.WriteError(w, api.CodeInvalidRequest, "Invalid part number", resource, ctx.requestID)
		return
	}
	etag, err := h.store.UploadPart(bucket, key, q.Get("uploadId"), partNumber, r.Body)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	w.Header().Set("ETag", quoteETag(etag))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) completeMultipartUpload(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, key, resource string, q url.Values) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, api.CodeMalformedXML, "Could not read request body", resource, ctx.requestID)
		return
	}
	var req api.CompleteMultipartUpload
	if err := xml.Unmarshal(body, &req); err != nil {
		api.WriteError(w, api.CodeMalformedXML, "The complete-multipart-upload body could not be parsed", resource, ctx.requestID)
		return
	}
	sort.Slice(req.Parts, func(i, j int) bool { return req.Parts[i].PartNumber < req.Parts[j].PartNumber })
	partNumbers := make([]int, len(req.Parts))
	for i, p := range req.Parts {
		partNumbers[i] = p.PartNumber
	}

	result, err := h.store.CompleteMultipartUpload(bucket, key, q.Get("uploadId"), partNumbers, store.PutOptions{
		ContentType: r.Header.Get("Content-Type"),
		Metadata:    extractUserMetadata(r),
	})
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	api.WriteXML(w, http.StatusOK, api.CompleteMultipartUploadResult{
		Location: resource,
		Bucket:   bucket,
		Key:      key,
		ETag:     quoteETag(result.ETag),
	})
}
