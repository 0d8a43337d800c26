// Package sai builds an immutable, block-structured on-disk secondary
// index for a wide-column store: a stream of (term, key, key-position)
// triples in, a single file out.
//
// A Builder is created once, fed via repeated calls to Add, and consumed
// by exactly one call to Finish. See Builder for the full lifecycle and
// NOTES.md-equivalent invariants documented alongside each type.
package sai
