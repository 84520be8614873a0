// Package dispatch implements the HTTP dispatcher described in §4.7:
// host-style/path-style bucket resolution, method+query+header-driven
// routing to bucket- and object-level operations, and XML response/
// error rendering.
package dispatch

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/fireboy1919/s3rver/internal/cors"
	"github.com/fireboy1919/s3rver/internal/events"
	"github.com/fireboy1919/s3rver/internal/store"
	"github.com/fireboy1919/s3rver/internal/website"
	"github.com/google/uuid"
)

// Config is the subset of server options the dispatcher needs.
type Config struct {
	Hostname      string
	HostSuffixes  []string
	CORSDisabled  bool
	DefaultCORS   []byte // raw XML; nil + !CORSDisabled means the built-in wildcard default
	IndexDocument string
	ErrorDocument string
}

// Handler is the root http.Handler for the emulated service.
type Handler struct {
	store         *store.Store
	bus           *events.Bus
	hostname      string
	hostSuffixes  []string
	corsDisabled  bool
	defaultCORS   *cors.Configuration
	serverWebsite website.Config
	log           *slog.Logger
}

// New builds a dispatcher over st, publishing mutation events to bus.
func New(st *store.Store, bus *events.Bus, cfg Config, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:        st,
		bus:          bus,
		hostname:     cfg.Hostname,
		hostSuffixes: cfg.HostSuffixes,
		corsDisabled: cfg.CORSDisabled,
		serverWebsite: website.Config{
			IndexDocument: cfg.IndexDocument,
			ErrorDocument: cfg.ErrorDocument,
		},
		log: logger,
	}
	if !cfg.CORSDisabled {
		if len(cfg.DefaultCORS) > 0 {
			parsed, err := cors.Parse(cfg.DefaultCORS)
			if err != nil {
				return nil, err
			}
			h.defaultCORS = parsed
		} else {
			h.defaultCORS = cors.Wildcard()
		}
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("x-amz-request-id", requestID)

	bucket, key := h.resolveBucketAndKey(r)

	if r.Method == http.MethodOptions {
		h.handlePreflight(w, r, bucket)
		return
	}

	h.applyCORSHeaders(w, r, bucket)

	ctx := &requestContext{requestID: requestID}
	switch {
	case bucket == "":
		h.handleService(w, r, ctx)
	case key == "":
		h.handleBucket(w, r, ctx, bucket)
	default:
		h.handleObject(w, r, ctx, bucket, key)
	}
}

type requestContext struct {
	requestID string
}

// resolveBucketAndKey implements the host-style/path-style decision
// in §4.7: host-style wins when Host (minus port) isn't the
// configured hostname and either ends in a configured suffix or
// matches a known bucket name.
func (h *Handler) resolveBucketAndKey(r *http.Request) (bucket, key string) {
	host := r.Host
	if idx := strings.LastIndex(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	if host != "" && host != h.hostname {
		for _, suffix := range h.hostSuffixes {
			if strings.HasSuffix(host, suffix) {
				label := strings.TrimSuffix(host, suffix)
				return label, strings.TrimPrefix(r.URL.Path, "/")
			}
		}
		if idx := strings.IndexByte(host, '.'); idx > 0 {
			label := host[:idx]
			if h.store.BucketExists(label) {
				return label, strings.TrimPrefix(r.URL.Path, "/")
			}
		}
	}
	return pathStyleBucketAndKey(r.URL.Path)
}

func pathStyleBucketAndKey(p string) (bucket, key string) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", ""
	}
	idx := strings.IndexByte(p, '/')
	if idx < 0 {
		return p, ""
	}
	return p[:idx], p[idx+1:]
}

// effectiveCORS returns the CORS configuration governing bucket: its
// own stored configuration if set, else the server-wide default.
func (h *Handler) effectiveCORS(bucket string) *cors.Configuration {
	if h.corsDisabled {
		return nil
	}
	raw, err := h.store.GetBucketCORS(bucket)
	if err == nil && len(raw) > 0 {
		if parsed, perr := cors.Parse(raw); perr == nil {
			return parsed
		}
	}
	return h.defaultCORS
}

// effectiveWebsite returns the website configuration governing
// bucket: its own stored configuration if set, else the server-wide
// fallback described in SPEC_FULL.md §4.5.
func (h *Handler) effectiveWebsite(bucket string) (website.Config, bool) {
	raw, err := h.store.GetBucketWebsite(bucket)
	if err == nil && len(raw) > 0 {
		if cfg, ok := parseWebsiteXML(raw); ok {
			return cfg, true
		}
	}
	if h.serverWebsite.Enabled() {
		return h.serverWebsite, true
	}
	return website.Config{}, false
}
