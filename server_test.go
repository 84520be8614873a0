package s3rver

import (
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/fireboy1919/s3rver/internal/events"
	"github.com/stretchr/testify/require"
)

func TestStartAssignsPortAndServes(t *testing.T) {
	srv, err := New(WithDirectory(t.TempDir()), WithSilent(true))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Close()

	require.NotEmpty(t, srv.Addr())
	require.NotZero(t, srv.Port())

	req, _ := http.NewRequest(http.MethodPut, "http://"+srv.Addr()+"/bucket", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCloseRemovesBucketsWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	srv, err := New(WithDirectory(dir), WithSilent(true), WithRemoveBucketsOnClose(true))
	require.NoError(t, err)
	require.NoError(t, srv.Start())

	put, _ := http.NewRequest(http.MethodPut, "http://"+srv.Addr()+"/bucket", nil)
	resp, err := http.DefaultClient.Do(put)
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, srv.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestEventsSurfacesObjectCreated(t *testing.T) {
	srv, err := New(WithDirectory(t.TempDir()), WithSilent(true))
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	defer srv.Close()

	received := make(chan events.Record, 1)
	sub := srv.Events().Subscribe(func(r events.Record) { received <- r })
	defer sub.Unsubscribe()

	put, _ := http.NewRequest(http.MethodPut, "http://"+srv.Addr()+"/bucket", nil)
	resp, _ := http.DefaultClient.Do(put)
	resp.Body.Close()

	putObj, _ := http.NewRequest(http.MethodPut, "http://"+srv.Addr()+"/bucket/key", strings.NewReader("data"))
	resp2, err := http.DefaultClient.Do(putObj)
	require.NoError(t, err)
	resp2.Body.Close()

	rec := <-received
	require.Equal(t, "ObjectCreated:Put", rec.EventName)
	require.Equal(t, "bucket", rec.BucketName)
	require.Equal(t, "key", rec.ObjectKey)
}
