package sa

import "github.com/DTStax/sasi/pkg/sai/internal/tokentree"

// Integral emits the accumulated terms unchanged, in ascending comparator
// order. Used for Original and Sparse modes, and as the fallback for
// Suffix mode over a non-text comparator.
type Integral struct {
	terms map[string]*tokentree.Builder
	keys  []string
	min   []byte
	max   []byte
	idx   int
}

// NewIntegral builds the iterator, sorting the accumulated terms once
// up front.
func NewIntegral(terms map[string]*tokentree.Builder, cmp Comparator) *Integral {
	keys, min, max := sortedTerms(terms, cmp)
	return &Integral{terms: terms, keys: keys, min: min, max: max}
}

func (it *Integral) HasNext() bool { return it.idx < len(it.keys) }

func (it *Integral) Next() Entry {
	k := it.keys[it.idx]
	it.idx++
	return Entry{Term: []byte(k), Tokens: it.terms[k].Finish()}
}

func (it *Integral) MinTerm() []byte { return it.min }
func (it *Integral) MaxTerm() []byte { return it.max }
