package dispatch

import (
	"io"
	"net/http"

	"github.com/fireboy1919/s3rver/internal/website"
)

// serveWebsite implements §4.5: resolve requestKey against the
// bucket's index document, falling back to the configured (or
// built-in minimal) 404 page when it's missing.
func (h *Handler) serveWebsite(w http.ResponseWriter, r *http.Request, bucket string, site website.Config, requestKey string) {
	lookupKey := site.IndexKey(requestKey)
	body, meta, err := h.store.GetObject(bucket, lookupKey)
	if err == nil {
		h.writeGetResponse(w, r, bucket, meta, body, r.Method == http.MethodHead)
		return
	}

	if site.HasErrorDocument() {
		if errBody, errMeta, errErr := h.store.GetObject(bucket, site.ErrorDocument); errErr == nil {
			defer errBody.Close()
			w.Header().Set("Content-Type", errMeta.ContentType)
			w.WriteHeader(http.StatusNotFound)
			if r.Method != http.MethodHead {
				io.Copy(w, errBody)
			}
			return
		}
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		io.WriteString(w, website.NotFoundBody)
	}
}
