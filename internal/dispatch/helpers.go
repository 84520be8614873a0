package dispatch

import (
	"strconv"

	"github.com/fireboy1919/s3rver/internal/api"
	"github.com/fireboy1919/s3rver/internal/store"
)

const (
	rfc3339 = "2006-01-02T15:04:05.000Z"
	xmlns   = "http://s3.amazonaws.com/doc/2006-03-01/"
)

// cannedOwner is the fixed identity every bucket and object is owned
// by, per SPEC_FULL.md §4.8: this emulator has no auth, so there is
// exactly one owner.
var cannedOwner = api.Owner{ID: "s3rver", DisplayName: "s3rver"}

// cannedACL is the fixed single-grant ACL response described in
// SPEC_FULL.md §4.8: no ACL mutation exists, so every bucket's ?acl
// reports the same owner with FULL_CONTROL.
func cannedACL() api.AccessControlPolicy {
	acl := api.AccessControlPolicy{Xmlns: xmlns, Owner: cannedOwner}
	acl.AccessControlList.Grants = []api.Grant{{
		Grantee: api.Grantee{
			Type:        "CanonicalUser",
			ID:          cannedOwner.ID,
			DisplayName: cannedOwner.DisplayName,
		},
		Permission: "FULL_CONTROL",
	}}
	return acl
}

func quoteETag(etag string) string { return strconv.Quote(etag) }

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func errNoSuchBucketFor(bucket string) error {
	_ = bucket
	return store.ErrNoSuchBucket
}
