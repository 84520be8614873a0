package dispatch

import (
	"io"
	"net/http"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/cors"
)

func (h *Handler) putBucketCORS(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, api.CodeMalformedXML, "Could not read request body", resource, ctx.requestID)
		return
	}
	if _, err := cors.Parse(body); err != nil {
		api.WriteError(w, api.CodeMalformedXML, "The CORS configuration could not be parsed", resource, ctx.requestID)
		return
	}
	if err := h.store.SetBucketCORS(bucket, body); err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getBucketCORS(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string) {
	raw, err := h.store.GetBucketCORS(bucket)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	if len(raw) == 0 {
		api.WriteError(w, api.CodeNoSuchCORSConfiguration, "The CORS configuration does not exist", resource, ctx.requestID)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (h *Handler) putBucketWebsite(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.WriteError(w, api.CodeMalformedXML, "Could not read request body", resource, ctx.requestID)
		return
	}
	if _, ok := parseWebsiteXML(body); !ok {
		api.WriteError(w, api.CodeMalformedXML, "The website configuration could not be parsed", resource, ctx.requestID)
		return
	}
	if err := h.store.SetBucketWebsite(bucket, body); err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getBucketWebsite(w http.ResponseWriter, r *http.Request, ctx *requestContext, bucket, resource string) {
	raw, err := h.store.GetBucketWebsite(bucket)
	if err != nil {
		h.writeStoreError(w, r, ctx, resource, err)
		return
	}
	if len(raw) == 0 {
		api.WriteError(w, api.CodeNoSuchWebsiteConfiguration, "The website configuration does not exist", resource, ctx.requestID)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
