package cors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreflightUnmatchedOriginIs403(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{http.MethodGet},
	}}}
	_, ok := cfg.Preflight("https://evil.example", http.MethodGet, "")
	require.False(t, ok)
}

func TestPreflightMatchedEchoesOrigin(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"https://example.com"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
		AllowedHeaders: []string{"x-amz-*"},
		MaxAgeSeconds:  600,
	}}}
	headers, ok := cfg.Preflight("https://example.com", http.MethodPut, "x-amz-meta-foo")
	require.True(t, ok)
	require.Equal(t, "https://example.com", headers["Access-Control-Allow-Origin"])
	require.Equal(t, "600", headers["Access-Control-Max-Age"])
}

func TestWildcardOriginEchoesStar(t *testing.T) {
	cfg := Wildcard()
	headers, ok := cfg.Preflight("https://anything", http.MethodGet, "")
	require.True(t, ok)
	require.Equal(t, "*", headers["Access-Control-Allow-Origin"])
}

func TestResponseHeadersAddRangeExposedHeaders(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
		ExposeHeaders:  []string{"ETag"},
	}}}
	headers, ok := cfg.ResponseHeaders("https://example.com", http.MethodGet, true)
	require.True(t, ok)
	require.Contains(t, headers["Access-Control-Expose-Headers"], "Accept-Ranges")
	require.Contains(t, headers["Access-Control-Expose-Headers"], "Content-Range")
}

func TestDisabledCORSRejectsEverything(t *testing.T) {
	var cfg *Configuration
	_, ok := cfg.Preflight("https://example.com", http.MethodGet, "")
	require.False(t, ok)
}

func TestRequestHeaderGlobMatch(t *testing.T) {
	cfg := &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPut},
		AllowedHeaders: []string{"x-amz-meta-*"},
	}}}
	_, ok := cfg.Preflight("https://example.com", http.MethodPut, "x-amz-meta-a, x-amz-meta-b")
	require.True(t, ok)
	_, ok = cfg.Preflight("https://example.com", http.MethodPut, "x-amz-meta-a, authorization")
	require.False(t, ok)
}
