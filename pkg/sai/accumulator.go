package sai

import (
	"github.com/DTStax/sasi/pkg/sai/internal/tokentree"
)

// These are advisory footprint estimates, not exact byte counts.
// flatTermOverhead approximates a Go map entry header plus the
// tokentree.Builder struct itself; perPositionBytes approximates one
// appended position within an entry's positions slice (8 bytes of data
// plus amortized growth slack).
const (
	flatTermOverhead = 32
	perPositionBytes = 16
)

// accumulator deduplicates terms in memory, aggregating postings per
// term and tracking the key range and running memory estimate. It never
// rejects silently except for oversized terms, which are logged and
// dropped.
type accumulator struct {
	keyComparator Comparator

	terms map[string]*tokentree.Builder
	// order records terms in first-seen insertion order. Nothing in this
	// package reads it; the suffix-array transform sorts the terms map
	// itself.
	order []string

	minKey, maxKey []byte
	estimatedBytes int64

	logger      warner
	tokenOf     func(key []byte) int64
	maxTermSize int
}

// warner is the minimal logging surface the accumulator needs; satisfied
// by the Builder's configured go-kit logger.
type warner interface {
	warnOversizedTerm(size, max int)
}

func newAccumulator(keyComparator Comparator, tokenOf func(key []byte) int64, logger warner, maxTermSize int) *accumulator {
	return &accumulator{
		keyComparator: keyComparator,
		terms:         make(map[string]*tokentree.Builder),
		logger:        logger,
		tokenOf:       tokenOf,
		maxTermSize:   maxTermSize,
	}
}

// add accumulates one (term, key, keyPosition) triple and reports
// whether it was accepted. Oversized terms (>= maxTermSize) are logged
// and silently dropped — add never fails. Zero-length terms are accepted
// as-is, with no special-case validation.
func (acc *accumulator) add(term, key []byte, keyPosition int64) bool {
	if len(term) >= acc.maxTermSize {
		acc.logger.warnOversizedTerm(len(term), acc.maxTermSize)
		return false
	}

	k := string(term)
	tokens, ok := acc.terms[k]
	if !ok {
		tokens = tokentree.New()
		acc.terms[k] = tokens
		acc.order = append(acc.order, k)
		acc.estimatedBytes += flatTermOverhead + int64(len(term))
	}
	tokens.Add(acc.tokenOf(key), keyPosition)
	acc.estimatedBytes += perPositionBytes

	if acc.minKey == nil || acc.keyComparator.Compare(key, acc.minKey) < 0 {
		acc.minKey = append([]byte(nil), key...)
	}
	if acc.maxKey == nil || acc.keyComparator.Compare(key, acc.maxKey) > 0 {
		acc.maxKey = append([]byte(nil), key...)
	}
	return true
}

// estimatedMemoryUse returns the current running memory estimate.
func (acc *accumulator) estimatedMemoryUse() int64 {
	return acc.estimatedBytes
}

// isEmpty reports whether any term has been accepted.
func (acc *accumulator) isEmpty() bool {
	return len(acc.terms) == 0
}
