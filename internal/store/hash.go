package store

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
)

func newMD5() hash.Hash { return md5.New() }

func hexSum(h hash.Hash) string { return hex.EncodeToString(h.Sum(nil)) }
