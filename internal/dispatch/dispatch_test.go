package dispatch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fireboy1919/s3rver/internal/events"
	"github.com/fireboy1919/s3rver/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg Config) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	bus := events.New()
	st.SetPublisher(bus)
	h, err := New(st, bus, cfg, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, st
}

func createBucket(t *testing.T, base, name string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPut, base+"/"+name, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPutThenHead(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/text", strings.NewReader("Hello!"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, `"952d2c56d0485958336747bcdd98590d"`, resp.Header.Get("ETag"))

	head, _ := http.NewRequest(http.MethodHead, srv.URL+"/bucket/text", nil)
	resp2, err := http.DefaultClient.Do(head)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "6", resp2.Header.Get("Content-Length"))
	require.Equal(t, "binary/octet-stream", resp2.Header.Get("Content-Type"))
}

func TestRangeRead(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	body := strings.Repeat("x", 65536)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/image", strings.NewReader(body))
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()

	get, _ := http.NewRequest(http.MethodGet, srv.URL+"/bucket/image", nil)
	get.Header.Set("Range", "bytes=0-99")
	resp2, err := http.DefaultClient.Do(get)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusPartialContent, resp2.StatusCode)
	require.Equal(t, "100", resp2.Header.Get("Content-Length"))
	require.Equal(t, "bytes", resp2.Header.Get("Accept-Ranges"))
	require.Equal(t, "bytes 0-99/65536", resp2.Header.Get("Content-Range"))
	data, _ := io.ReadAll(resp2.Body)
	require.Len(t, data, 100)
}

func TestCopyPreservesMetadataByDefault(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	put, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/src", strings.NewReader("data"))
	put.Header.Set("x-amz-meta-somekey", "value")
	put.Header.Set("Content-Type", "image/jpeg")
	resp, _ := http.DefaultClient.Do(put)
	resp.Body.Close()

	cp, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/dst", nil)
	cp.Header.Set("x-amz-copy-source", "/bucket/src")
	resp2, err := http.DefaultClient.Do(cp)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	head, _ := http.NewRequest(http.MethodHead, srv.URL+"/bucket/dst", nil)
	resp3, err := http.DefaultClient.Do(head)
	require.NoError(t, err)
	defer resp3.Body.Close()
	require.Equal(t, "value", resp3.Header.Get("x-amz-meta-somekey"))
	require.Equal(t, "image/jpeg", resp3.Header.Get("Content-Type"))
}

func TestListWithDelimiterOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")
	for _, key := range []string{"akey1", "akey2", "akey3", "key/key1", "key1", "key2", "key3"} {
		put, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/"+key, strings.NewReader("x"))
		resp, _ := http.DefaultClient.Do(put)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/bucket?delimiter=/")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	body := string(data)
	require.Equal(t, 6, strings.Count(body, "<Key>"))
	require.Contains(t, body, "<Prefix>key/</Prefix>")
}

func TestBucketNotEmptyOnDelete(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")
	for i := 0; i < 20; i++ {
		put, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/key"+string(rune('a'+i)), strings.NewReader("x"))
		resp, _ := http.DefaultClient.Do(put)
		resp.Body.Close()
	}
	del, _ := http.NewRequest(http.MethodDelete, srv.URL+"/bucket", nil)
	resp, err := http.DefaultClient.Do(del)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(data), "BucketNotEmpty")
}

func TestStaticWebsite(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "site")

	putCfg, _ := http.NewRequest(http.MethodPut, srv.URL+"/site?website",
		strings.NewReader(`<WebsiteConfiguration><IndexDocument><Suffix>index.html</Suffix></IndexDocument></WebsiteConfiguration>`))
	resp, err := http.DefaultClient.Do(putCfg)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	putObj, _ := http.NewRequest(http.MethodPut, srv.URL+"/site/index.html", strings.NewReader("<h1>hi</h1>"))
	putObj.Header.Set("Content-Type", "text/html")
	resp2, _ := http.DefaultClient.Do(putObj)
	resp2.Body.Close()

	get, err := http.Get(srv.URL + "/site/")
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	data, _ := io.ReadAll(get.Body)
	require.Equal(t, "<h1>hi</h1>", string(data))

	missing, err := http.Get(srv.URL + "/site/missing")
	require.NoError(t, err)
	defer missing.Body.Close()
	require.Equal(t, http.StatusNotFound, missing.StatusCode)
	require.Equal(t, "text/html", missing.Header.Get("Content-Type"))
}

func TestBulkDeleteIsIdempotentForMissingKeys(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/bucket?delete",
		strings.NewReader(`<Delete><Object><Key>missing</Key></Object></Delete>`))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(data), "<Key>missing</Key>")
	require.NotContains(t, string(data), "<Error>")
}

func TestHostStyleBucketResolutionViaConfiguredSuffix(t *testing.T) {
	srv, _ := newTestServer(t, Config{HostSuffixes: []string{".s3.example.com"}})
	createBucket(t, srv.URL, "my.bucket")

	// "my.bucket.s3.example.com" isn't itself a known bucket name, so
	// resolution only succeeds through the configured-suffix branch,
	// not the known-bucket-name-before-the-first-dot fallback.
	put, _ := http.NewRequest(http.MethodPut, srv.URL+"/text", strings.NewReader("Hello!"))
	put.Host = "my.bucket.s3.example.com"
	resp, err := http.DefaultClient.Do(put)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	head, _ := http.NewRequest(http.MethodHead, srv.URL+"/text", nil)
	head.Host = "my.bucket.s3.example.com"
	resp2, err := http.DefaultClient.Do(head)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Equal(t, "6", resp2.Header.Get("Content-Length"))
}

func TestCORSExposeHeadersOnlyAddedForSatisfiableRange(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	raw := `<CORSConfiguration><CORSRule><AllowedOrigin>*</AllowedOrigin><AllowedMethod>GET</AllowedMethod><ExposeHeader>ETag</ExposeHeader></CORSRule></CORSConfiguration>`
	put, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket?cors", strings.NewReader(raw))
	resp, _ := http.DefaultClient.Do(put)
	resp.Body.Close()

	body := strings.Repeat("x", 100)
	putObj, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket/key", strings.NewReader(body))
	resp2, _ := http.DefaultClient.Do(putObj)
	resp2.Body.Close()

	get, _ := http.NewRequest(http.MethodGet, srv.URL+"/bucket/key", nil)
	get.Header.Set("Origin", "https://example.com")
	resp3, err := http.DefaultClient.Do(get)
	require.NoError(t, err)
	resp3.Body.Close()
	require.Equal(t, http.StatusOK, resp3.StatusCode)
	require.NotContains(t, resp3.Header.Get("Access-Control-Expose-Headers"), "Accept-Ranges")

	badRange, _ := http.NewRequest(http.MethodGet, srv.URL+"/bucket/key", nil)
	badRange.Header.Set("Origin", "https://example.com")
	badRange.Header.Set("Range", "bytes=1000-2000")
	resp4, err := http.DefaultClient.Do(badRange)
	require.NoError(t, err)
	resp4.Body.Close()
	require.Equal(t, http.StatusRequestedRangeNotSatisfiable, resp4.StatusCode)
	require.NotContains(t, resp4.Header.Get("Access-Control-Expose-Headers"), "Accept-Ranges")

	goodRange, _ := http.NewRequest(http.MethodGet, srv.URL+"/bucket/key", nil)
	goodRange.Header.Set("Origin", "https://example.com")
	goodRange.Header.Set("Range", "bytes=0-9")
	resp5, err := http.DefaultClient.Do(goodRange)
	require.NoError(t, err)
	resp5.Body.Close()
	require.Equal(t, http.StatusPartialContent, resp5.StatusCode)
	require.Contains(t, resp5.Header.Get("Access-Control-Expose-Headers"), "Accept-Ranges")
	require.Contains(t, resp5.Header.Get("Access-Control-Expose-Headers"), "Content-Range")
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	createBucket(t, srv.URL, "bucket")

	raw := `<CORSConfiguration><CORSRule><AllowedOrigin>https://example.com</AllowedOrigin><AllowedMethod>GET</AllowedMethod></CORSRule></CORSConfiguration>`
	put, _ := http.NewRequest(http.MethodPut, srv.URL+"/bucket?cors", strings.NewReader(raw))
	resp, _ := http.DefaultClient.Do(put)
	resp.Body.Close()

	preflight, _ := http.NewRequest(http.MethodOptions, srv.URL+"/bucket/key", nil)
	preflight.Header.Set("Origin", "https://evil.example")
	preflight.Header.Set("Access-Control-Request-Method", "GET")
	resp2, err := http.DefaultClient.Do(preflight)
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusForbidden, resp2.StatusCode)

	preflight2, _ := http.NewRequest(http.MethodOptions, srv.URL+"/bucket/key", nil)
	preflight2.Header.Set("Origin", "https://example.com")
	preflight2.Header.Set("Access-Control-Request-Method", "GET")
	resp3, err := http.DefaultClient.Do(preflight2)
	require.NoError(t, err)
	defer resp3.Body.Close()
	require.Equal(t, http.StatusOK, resp3.StatusCode)
	require.Equal(t, "https://example.com", resp3.Header.Get("Access-Control-Allow-Origin"))
}
