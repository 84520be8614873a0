package website

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexKeyAppendsIndexDocumentAtRoot(t *testing.T) {
	cfg := Config{IndexDocument: "index.html"}
	require.Equal(t, "index.html", cfg.IndexKey(""))
	require.Equal(t, "docs/index.html", cfg.IndexKey("docs/"))
}

func TestIndexKeyLeavesNonDirectoryKeysAlone(t *testing.T) {
	cfg := Config{IndexDocument: "index.html"}
	require.Equal(t, "missing", cfg.IndexKey("missing"))
}

func TestHasErrorDocument(t *testing.T) {
	require.True(t, Config{ErrorDocument: "error.html"}.HasErrorDocument())
	require.False(t, Config{}.HasErrorDocument())
}
