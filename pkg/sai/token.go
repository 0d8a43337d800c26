package sai

import "github.com/cespare/xxhash/v2"

// defaultTokenOf maps a partition key to its 64-bit signed token, the
// ordering axis of a term's posting list. Real partition-key
// tokenization belongs to the caller's storage layer; this default is a
// reasonable stand-in a caller can override via BuilderOption.
func defaultTokenOf(key []byte) int64 {
	return int64(xxhash.Sum64(key)) //nolint:gosec // truncating a 64-bit hash to a signed token is the documented contract
}
