// Package website implements the static-website routing mode
// described in §4.5: resolving a request path against a bucket's
// index/error documents. It holds no store or HTTP state; callers
// fetch objects and render responses themselves.
package website

import "strings"

// Config is a bucket's (or the server-wide) website configuration.
type Config struct {
	IndexDocument string
	ErrorDocument string
}

// Enabled reports whether cfg designates website mode at all.
func (c Config) Enabled() bool {
	return c.IndexDocument != ""
}

// IndexKey returns the object key to fetch for a website request at
// requestKey: the key itself, unless it's empty or ends in "/", in
// which case the index document is appended.
func (c Config) IndexKey(requestKey string) string {
	if requestKey == "" || strings.HasSuffix(requestKey, "/") {
		return requestKey + c.IndexDocument
	}
	return requestKey
}

// HasErrorDocument reports whether a custom error document is
// configured, distinguishing it from the minimal built-in 404 page.
func (c Config) HasErrorDocument() bool {
	return c.ErrorDocument != ""
}

// NotFoundBody is the minimal HTML 404 page served when no custom
// error document is configured or the configured one is itself
// missing.
const NotFoundBody = `<html><head><title>404 Not Found</title></head><body><h1>404 Not Found</h1></body></html>`
