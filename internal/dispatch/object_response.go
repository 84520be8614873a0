package dispatch

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/store"
	"github.com/fireboy1919/s3rver/internal/website"
)

func setObjectHeaders(w http.ResponseWriter, meta store.ObjectMeta) {
	w.Header().Set("ETag", strconv.Quote(meta.ETag))
	w.Header().Set("Last-Modified", meta.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Type", meta.ContentType)
	if meta.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", meta.ContentEncoding)
	}
	if meta.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", meta.ContentDisposition)
	}
	if meta.CacheControl != "" {
		w.Header().Set("Cache-Control", meta.CacheControl)
	}
	if meta.Expires != "" {
		w.Header().Set("Expires", meta.Expires)
	}
	for k, v := range meta.Metadata {
		w.Header().Set("x-amz-meta-"+k, v)
	}
}

// writeGetResponse writes headers and (unless headOnly) the body for
// a successful GetObject/HeadObject, honoring a Range request per
// §4.2/§6. body may be nil when headOnly is true. The CORS range-
// expose-headers addition (§4.4) is applied only once the response is
// known to actually be a satisfiable 206, not merely because the
// request carried a Range header.
func (h *Handler) writeGetResponse(w http.ResponseWriter, r *http.Request, bucket string, meta store.ObjectMeta, body io.ReadCloser, headOnly bool) {
	if body != nil {
		defer body.Close()
	}
	setObjectHeaders(w, meta)

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
		w.WriteHeader(http.StatusOK)
		if !headOnly && body != nil {
			io.Copy(w, body)
		}
		return
	}

	start, end, ok := parseRange(rangeHeader, meta.Size)
	if !ok {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", meta.Size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}
	length := end - start + 1
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, meta.Size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	h.addRangeExposeHeaders(w, r, bucket)
	w.WriteHeader(http.StatusPartialContent)
	if headOnly || body == nil {
		return
	}
	if start > 0 {
		if _, err := io.CopyN(io.Discard, body, start); err != nil {
			return
		}
	}
	io.CopyN(w, body, length)
}

// parseRange parses a single "bytes=start-end" Range header value
// against a resource of the given size.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	if parts[0] == "" {
		suffix, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || suffix <= 0 {
			return 0, 0, false
		}
		if suffix > size {
			suffix = size
		}
		return size - suffix, size - 1, size > 0
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, false
	}
	if parts[1] == "" {
		return start, size - 1, true
	}
	end, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil || end < start {
		return 0, 0, false
	}
	if end >= size {
		end = size - 1
	}
	return start, end, true
}

func parseWebsiteXML(raw []byte) (website.Config, bool) {
	var cfg api.WebsiteConfiguration
	if err := xml.Unmarshal(raw, &cfg); err != nil {
		return website.Config{}, false
	}
	return website.Config{
		IndexDocument: cfg.IndexDocument.Suffix,
		ErrorDocument: cfg.ErrorDocument.Key,
	}, cfg.IndexDocument.Suffix != ""
}
