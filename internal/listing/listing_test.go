package listing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func objs(keys ...string) []Object {
	out := make([]Object, len(keys))
	for i, k := range keys {
		out[i] = Object{Key: k}
	}
	return out
}

func TestListWithDelimiter(t *testing.T) {
	// Seed scenario 4: akey1, akey2, akey3, key/key1, key1, key2, key3
	result := List(objs("akey1", "akey2", "akey3", "key/key1", "key1", "key2", "key3"), Params{
		Delimiter: "/",
	})
	require.Len(t, result.Contents, 6)
	require.Equal(t, []string{"key/"}, result.CommonPrefixes)
	require.False(t, result.IsTruncated)
}

func TestListPrefixAndDelimiter(t *testing.T) {
	result := List(objs("photos/2021/a.jpg", "photos/2021/b.jpg", "photos/2022/c.jpg", "photos/readme.txt"), Params{
		Prefix:    "photos/",
		Delimiter: "/",
	})
	require.ElementsMatch(t, []string{"photos/2021/", "photos/2022/"}, result.CommonPrefixes)
	require.Len(t, result.Contents, 1)
	require.Equal(t, "photos/readme.txt", result.Contents[0].Key)
}

func TestListMarkerExcludesUpToAndIncludingMarker(t *testing.T) {
	result := List(objs("a", "b", "c", "d"), Params{Marker: "b"})
	keys := make([]string, len(result.Contents))
	for i, o := range result.Contents {
		keys[i] = o.Key
	}
	require.Equal(t, []string{"c", "d"}, keys)
}

func TestListTruncation(t *testing.T) {
	result := List(objs("a", "b", "c", "d", "e"), Params{MaxKeys: 2})
	require.True(t, result.IsTruncated)
	require.Len(t, result.Contents, 2)
	require.Equal(t, "b", result.NextMarker)
}

func TestListMaxKeysClampedToDefault(t *testing.T) {
	result := List(objs("a"), Params{MaxKeys: 5000})
	require.False(t, result.IsTruncated)
	require.Len(t, result.Contents, 1)
}

func TestListNoElementAppearsTwice(t *testing.T) {
	result := List(objs("a/x", "a/y", "b"), Params{Delimiter: "/"})
	total := len(result.Contents) + len(result.CommonPrefixes)
	require.Equal(t, 2, total)
}
