// Package cors implements the CORS configuration parser and the
// preflight/normal-request matching engine described in §4.4: glob
// style origin and header matching, and response header construction.
package cors

import (
	"encoding/xml"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// Rule is one ordered CORS rule.
type Rule struct {
	AllowedOrigins []string `xml:"AllowedOrigin"`
	AllowedMethods []string `xml:"AllowedMethod"`
	AllowedHeaders []string `xml:"AllowedHeader"`
	ExposeHeaders  []string `xml:"ExposeHeader"`
	MaxAgeSeconds  int      `xml:"MaxAgeSeconds,omitempty"`
}

// Configuration is the parsed <CORSConfiguration> document; rule
// order matters, the first match wins.
type Configuration struct {
	XMLName xml.Name `xml:"CORSConfiguration"`
	Rules   []Rule   `xml:"CORSRule"`
}

// Parse decodes a raw <CORSConfiguration> document.
func Parse(raw []byte) (*Configuration, error) {
	var cfg Configuration
	if err := xml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Wildcard is the always-match-everything default configuration
// used when no bucket-level CORS configuration is set and the server
// was started with its default wildcard option.
func Wildcard() *Configuration {
	return &Configuration{Rules: []Rule{{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodHead},
		AllowedHeaders: []string{"*"},
	}}}
}

// matchRule returns the first rule whose AllowedOrigins matches
// origin and whose AllowedMethods contains method.
func (c *Configuration) matchRule(origin, method string) (*Rule, bool) {
	for i := range c.Rules {
		r := &c.Rules[i]
		if !originMatches(r.AllowedOrigins, origin) {
			continue
		}
		if !methodAllowed(r.AllowedMethods, method) {
			continue
		}
		return r, true
	}
	return nil, false
}

func originMatches(patterns []string, origin string) bool {
	for _, p := range patterns {
		if globMatch(p, origin) {
			return true
		}
	}
	return false
}

func methodAllowed(methods []string, method string) bool {
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func globMatch(pattern, value string) bool {
	if pattern == "*" {
		return true
	}
	matched, err := path.Match(pattern, value)
	return err == nil && matched
}

// Preflight evaluates an OPTIONS request with Access-Control-Request-
// Method/-Headers against the configuration, returning the response
// headers to set and whether the preflight is allowed at all. A nil
// Configuration (CORS disabled) always returns ok=false.
func (c *Configuration) Preflight(origin, requestMethod, requestHeaders string) (headers map[string]string, ok bool) {
	if c == nil {
		return nil, false
	}
	rule, matched := c.matchRule(origin, requestMethod)
	if !matched || !requestedHeadersAllowed(requestHeaders, rule.AllowedHeaders) {
		return nil, false
	}
	headers = map[string]string{
		"Access-Control-Allow-Origin":  allowOriginValue(rule.AllowedOrigins, origin),
		"Access-Control-Allow-Methods": strings.Join(rule.AllowedMethods, ", "),
	}
	if allowed := intersectHeaders(requestHeaders, rule.AllowedHeaders); allowed != "" {
		headers["Access-Control-Allow-Headers"] = allowed
	}
	if rule.MaxAgeSeconds > 0 {
		headers["Access-Control-Max-Age"] = strconv.Itoa(rule.MaxAgeSeconds)
	}
	return headers, true
}

// ResponseHeaders builds the CORS headers for a normal (non-OPTIONS)
// request; isRangeResponse adds Accept-Ranges/Content-Range to the
// exposed header set per §4.4.
func (c *Configuration) ResponseHeaders(origin, method string, isRangeResponse bool) (headers map[string]string, ok bool) {
	if c == nil || origin == "" {
		return nil, false
	}
	rule, matched := c.matchRule(origin, method)
	if !matched {
		return nil, false
	}
	headers = map[string]string{
		"Access-Control-Allow-Origin": allowOriginValue(rule.AllowedOrigins, origin),
	}
	expose := append([]string(nil), rule.ExposeHeaders...)
	if isRangeResponse {
		expose = append(expose, "Accept-Ranges", "Content-Range")
	}
	if len(expose) > 0 {
		headers["Access-Control-Expose-Headers"] = strings.Join(expose, ", ")
	}
	return headers, true
}

func allowOriginValue(patterns []string, origin string) string {
	for _, p := range patterns {
		if p == "*" {
			return "*"
		}
	}
	return origin
}

func requestedHeadersAllowed(requestHeaders string, allowedHeaders []string) bool {
	requested := parseRequestHeaders(requestHeaders)
	if len(requested) == 0 {
		return true
	}
	if len(allowedHeaders) == 0 {
		return false
	}
	for _, h := range requested {
		if !headerAllowed(h, allowedHeaders) {
			return false
		}
	}
	return true
}

func intersectHeaders(requestHeaders string, allowedHeaders []string) string {
	requested := parseRequestHeaders(requestHeaders)
	var allowed []string
	for _, h := range requested {
		if headerAllowed(h, allowedHeaders) {
			allowed = append(allowed, h)
		}
	}
	return strings.Join(allowed, ", ")
}

func headerAllowed(header string, patterns []string) bool {
	for _, p := range patterns {
		if headerGlobMatch(p, header) {
			return true
		}
	}
	return false
}

func headerGlobMatch(pattern, header string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	header = strings.ToLower(strings.TrimSpace(header))
	if pattern == "" || header == "" {
		return false
	}
	return globMatch(pattern, header)
}

func parseRequestHeaders(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		h := strings.ToLower(strings.TrimSpace(part))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
