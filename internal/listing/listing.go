// Package listing implements the pure pagination algorithm behind
// ListObjects/ListObjectsV2: prefix filtering, marker exclusion,
// lexicographic ordering, delimiter-based common-prefix extraction,
// and max-keys truncation. It has no knowledge of buckets or the
// filesystem — callers supply an already-sorted-or-not object slice.
package listing

import (
	"sort"
	"strings"
	"time"
)

const DefaultMaxKeys = 1000

// Object is the subset of object state the listing algorithm needs.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Params are the four inputs §4.3 names.
type Params struct {
	Prefix    string
	Marker    string
	Delimiter string
	MaxKeys   int
}

// Result is the paginated, partitioned listing.
type Result struct {
	Contents       []Object
	CommonPrefixes []string
	IsTruncated    bool
	NextMarker     string
}

// List runs the algorithm described in §4.3 over objects, which need
// not be pre-sorted or pre-filtered.
func List(objects []Object, p Params) Result {
	maxKeys := p.MaxKeys
	if maxKeys <= 0 || maxKeys > DefaultMaxKeys {
		maxKeys = DefaultMaxKeys
	}

	candidates := make([]Object, 0, len(objects))
	for _, o := range objects {
		if !strings.HasPrefix(o.Key, p.Prefix) {
			continue
		}
		if p.Marker != "" && o.Key <= p.Marker {
			continue
		}
		candidates = append(candidates, o)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Key < candidates[j].Key })

	type entry struct {
		isPrefix bool
		prefix   string
		object   Object
	}
	key := func(e entry) string {
		if e.isPrefix {
			return e.prefix
		}
		return e.object.Key
	}

	seenPrefixes := make(map[string]struct{})
	entries := make([]entry, 0, len(candidates))
	for _, o := range candidates {
		if p.Delimiter != "" {
			rest := o.Key[len(p.Prefix):]
			if idx := strings.Index(rest, p.Delimiter); idx >= 0 {
				cp := p.Prefix + rest[:idx+len(p.Delimiter)]
				if _, ok := seenPrefixes[cp]; !ok {
					seenPrefixes[cp] = struct{}{}
					entries = append(entries, entry{isPrefix: true, prefix: cp})
				}
				continue
			}
		}
		entries = append(entries, entry{object: o})
	}
	sort.SliceStable(entries, func(i, j int) bool { return key(entries[i]) < key(entries[j]) })

	var result Result
	truncated := false
	for i, e := range entries {
		if i >= maxKeys {
			truncated = true
			break
		}
		if e.isPrefix {
			result.CommonPrefixes = append(result.CommonPrefixes, e.prefix)
		} else {
			result.Contents = append(result.Contents, e.object)
		}
	}
	result.IsTruncated = truncated
	if truncated {
		result.NextMarker = key(entries[maxKeys-1])
	}
	return result
}
