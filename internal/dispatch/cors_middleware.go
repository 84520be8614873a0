package dispatch

import "net/http"

// handlePreflight answers an OPTIONS request with Access-Control-
// Request-Method per §4.4. Requests that aren't actually a CORS
// preflight (no Origin, or missing the request-method header) are
// rejected the same way: 403 with no CORS headers.
func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request, bucket string) {
	origin := r.Header.Get("Origin")
	requestMethod := r.Header.Get("Access-Control-Request-Method")
	if origin == "" || requestMethod == "" || bucket == "" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	cfg := h.effectiveCORS(bucket)
	headers, ok := cfg.Preflight(origin, requestMethod, r.Header.Get("Access-Control-Request-Headers"))
	if !ok {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
}

// applyCORSHeaders sets response headers for a non-OPTIONS request
// whose Origin matches a configured rule. The range-specific exposed
// headers aren't added here, since at this point in ServeHTTP nothing
// has determined whether the eventual response is actually a
// satisfiable 206; see addRangeExposeHeaders.
func (h *Handler) applyCORSHeaders(w http.ResponseWriter, r *http.Request, bucket string) {
	origin := r.Header.Get("Origin")
	if origin == "" || bucket == "" {
		return
	}
	cfg := h.effectiveCORS(bucket)
	headers, ok := cfg.ResponseHeaders(origin, r.Method, false)
	if !ok {
		return
	}
	for k, v := range headers {
		w.Header().Set(k, v)
	}
}

// addRangeExposeHeaders augments Access-Control-Expose-Headers with
// Accept-Ranges/Content-Range per §4.4. Called only once a response is
// known to actually be a satisfiable 206, not merely because the
// request carried a Range header.
func (h *Handler) addRangeExposeHeaders(w http.ResponseWriter, r *http.Request, bucket string) {
	origin := r.Header.Get("Origin")
	if origin == "" || bucket == "" {
		return
	}
	cfg := h.effectiveCORS(bucket)
	headers, ok := cfg.ResponseHeaders(origin, r.Method, true)
	if !ok {
		return
	}
	if expose, present := headers["Access-Control-Expose-Headers"]; present {
		w.Header().Set("Access-Control-Expose-Headers", expose)
	}
}
