package sa

import "github.com/DTStax/sasi/pkg/sai/internal/tokentree"

// Suffix expands each accumulated text term into the set of its suffixes,
// merging postings of all terms sharing a suffix into one container, and
// emits the result in ascending comparator order.
type Suffix struct {
	terms map[string]*tokentree.Builder
	keys  []string
	min   []byte
	max   []byte
	idx   int
}

// NewSuffix expands terms into their suffixes up front: the full suffix
// set is small relative to a flush's term set in practice, and eager
// construction keeps MinTerm/MaxTerm available before iteration starts,
// since the file header needs them written before the body.
func NewSuffix(terms map[string]*tokentree.Builder, cmp Comparator) *Suffix {
	suffixes := make(map[string]*tokentree.Builder, len(terms))
	for term, tokens := range terms {
		for i := 0; i < len(term); i++ {
			suf := term[i:]
			b, ok := suffixes[suf]
			if !ok {
				b = tokentree.New()
				suffixes[suf] = b
			}
			b.Merge(tokens)
		}
	}
	keys, min, max := sortedTerms(suffixes, cmp)
	return &Suffix{terms: suffixes, keys: keys, min: min, max: max}
}

func (it *Suffix) HasNext() bool { return it.idx < len(it.keys) }

func (it *Suffix) Next() Entry {
	k := it.keys[it.idx]
	it.idx++
	return Entry{Term: []byte(k), Tokens: it.terms[k].Finish()}
}

func (it *Suffix) MinTerm() []byte { return it.min }
func (it *Suffix) MaxTerm() []byte { return it.max }
