// Package sa implements the suffix-array transform: given the term
// accumulator's {term -> postings} map and the selected mode, it emits
// (term, postings) pairs in ascending comparator order — either the
// terms as accumulated, or, in Suffix mode over text, one entry per
// distinct suffix of each term with postings merged across terms sharing
// a suffix.
//
// Two concrete iterators share one interface, a small closed variant set
// rather than open inheritance: Integral for Original/Sparse and
// non-text Suffix, and Suffix for text-comparator Suffix mode.
package sa

import (
	"sort"

	"github.com/DTStax/sasi/pkg/sai/internal/tokentree"
)

// Comparator is the total ordering this package sorts terms by. It is
// structurally satisfied by sai.Comparator, avoiding an import cycle
// between sai and sai/internal/sa.
type Comparator interface {
	Compare(a, b []byte) int
}

// Entry is one (term, postings) pair emitted by an Iterator.
type Entry struct {
	Term   []byte
	Tokens *tokentree.Finished
}

// Iterator is the suffix-array transform's consumed contract.
type Iterator interface {
	HasNext() bool
	Next() Entry
	MinTerm() []byte
	MaxTerm() []byte
}

// sortedTerms sorts the distinct keys of terms ascending under cmp and
// returns them alongside min/max (nil, nil if terms is empty).
func sortedTerms(terms map[string]*tokentree.Builder, cmp Comparator) ([]string, []byte, []byte) {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return cmp.Compare([]byte(keys[i]), []byte(keys[j])) < 0
	})
	if len(keys) == 0 {
		return keys, nil, nil
	}
	return keys, []byte(keys[0]), []byte(keys[len(keys)-1])
}
