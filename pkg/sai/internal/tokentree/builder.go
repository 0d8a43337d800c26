// Package tokentree implements the postings container: a per-term
// collection of (token, {key-position...}) entries, mergeable, iterable
// in ascending token order, and serializable to a byte representation a
// reader can decode back.
//
// The container is a flat sorted slice, not a literal tree. The name is
// kept anyway, matching how flat sorted structures elsewhere in this
// codebase still get called "indexes".
package tokentree

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// entry holds one token's accumulated key positions, kept in insertion
// order; positions carry no ordering requirement of their own.
type entry struct {
	token     int64
	positions []int64
}

// Builder accumulates (token, position) pairs for a single term and
// supports merging in another Builder's tokens (used when suffix
// expansion merges the postings of all terms sharing a suffix).
type Builder struct {
	// entries stays sorted ascending by token, so Add finds a token by
	// binary search (O(log n)) and Iterate needs no extra sort.
	entries []entry
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Add appends position to the posting list for token, creating the
// token's entry if this is its first occurrence.
func (b *Builder) Add(token, position int64) {
	i := b.indexOf(token)
	if i < len(b.entries) && b.entries[i].token == token {
		b.entries[i].positions = append(b.entries[i].positions, position)
		return
	}
	b.entries = append(b.entries, entry{})
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = entry{token: token, positions: []int64{position}}
}

// Merge folds other's tokens into b, appending other's positions to any
// token b already has and inserting new tokens where needed. other is
// left usable but its future mutations don't affect b.
func (b *Builder) Merge(other *Builder) {
	for _, e := range other.entries {
		i := b.indexOf(e.token)
		if i < len(b.entries) && b.entries[i].token == e.token {
			b.entries[i].positions = append(b.entries[i].positions, e.positions...)
			continue
		}
		cp := make([]int64, len(e.positions))
		copy(cp, e.positions)
		b.entries = append(b.entries, entry{})
		copy(b.entries[i+1:], b.entries[i:])
		b.entries[i] = entry{token: e.token, positions: cp}
	}
}

// indexOf returns the insertion point for token within the sorted
// entries slice (the index of token if present, else where it would go).
func (b *Builder) indexOf(token int64) int {
	return sort.Search(len(b.entries), func(i int) bool { return b.entries[i].token >= token })
}

// TokenCount reports the number of distinct tokens accumulated.
func (b *Builder) TokenCount() int {
	return len(b.entries)
}

// Tokens returns the distinct tokens in ascending order, used by the
// Sparse-mode combined index and super-block tree to merge in a term's
// tokens without also copying position lists.
func (b *Builder) Tokens() []int64 {
	out := make([]int64, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.token
	}
	return out
}

// AddTokens merges a bare set of tokens (no positions) into b — used when
// only token presence matters, as for the combined/super-block indexes.
func (b *Builder) AddTokens(tokens []int64) {
	for _, t := range tokens {
		i := b.indexOf(t)
		if i < len(b.entries) && b.entries[i].token == t {
			continue
		}
		b.entries = append(b.entries, entry{})
		copy(b.entries[i+1:], b.entries[i:])
		b.entries[i] = entry{token: t}
	}
}

// SerializedSize reports the exact byte length Finish().WriteTo would
// write, without allocating the body.
func (b *Builder) SerializedSize() int {
	n := 4 // token_count
	for _, e := range b.entries {
		n += 8 /* token */ + 4 /* position_count */ + 8*len(e.positions)
	}
	return n
}

// Iterate calls fn for each (token, positions) pair in ascending token
// order, stopping early if fn returns false.
func (b *Builder) Iterate(fn func(token int64, positions []int64) bool) {
	for _, e := range b.entries {
		if !fn(e.token, e.positions) {
			return
		}
	}
}

// Finished is the immutable, serializable view of a Builder produced by
// Finish. Builder keeps mutating after Finish is called; Finished is a
// snapshot copy.
type Finished struct {
	entries []entry
}

// Finish snapshots b into an immutable, write-ready container.
func (b *Builder) Finish() *Finished {
	cp := make([]entry, len(b.entries))
	for i, e := range b.entries {
		cp[i] = entry{token: e.token, positions: append([]int64(nil), e.positions...)}
	}
	return &Finished{entries: cp}
}

// WriteTo serializes the container: token_count[4 LE], then per token
// token[8 LE signed], position_count[4 LE], positions[N × 8 LE].
func (f *Finished) WriteTo(w io.Writer) (int64, error) {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(f.entries))) //nolint:gosec // token count bounded by one term's distinct tokens
	n, err := w.Write(hdr[:])
	total := int64(n)
	if err != nil {
		return total, err
	}

	buf := make([]byte, 12)
	for _, e := range f.entries {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(e.token))
		binary.LittleEndian.PutUint32(buf[8:12], uint32(len(e.positions))) //nolint:gosec // position count bounded in practice by key-positions per token
		n, err = w.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
		posBuf := make([]byte, 8*len(e.positions))
		for i, p := range e.positions {
			binary.LittleEndian.PutUint64(posBuf[i*8:i*8+8], uint64(p))
		}
		n, err = w.Write(posBuf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadFrom decodes a container previously written by WriteTo.
func ReadFrom(r io.Reader) (*Finished, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("tokentree: read count: %w", err)
	}
	count := binary.LittleEndian.Uint32(hdr[:])

	entries := make([]entry, count)
	for i := range entries {
		var head [12]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return nil, fmt.Errorf("tokentree: read entry %d header: %w", i, err)
		}
		token := int64(binary.LittleEndian.Uint64(head[0:8]))
		posCount := binary.LittleEndian.Uint32(head[8:12])

		positions := make([]int64, posCount)
		if posCount > 0 {
			buf := make([]byte, 8*posCount)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("tokentree: read entry %d positions: %w", i, err)
			}
			for j := range positions {
				positions[j] = int64(binary.LittleEndian.Uint64(buf[j*8 : j*8+8]))
			}
		}
		entries[i] = entry{token: token, positions: positions}
	}
	return &Finished{entries: entries}, nil
}

// TokenCount reports the number of distinct tokens in the finished
// container — used by the data-block encoder to pick inline vs. overflow
// placement.
func (f *Finished) TokenCount() int { return len(f.entries) }

// SerializedSize reports the exact byte length WriteTo would write.
func (f *Finished) SerializedSize() int {
	n := 4
	for _, e := range f.entries {
		n += 8 + 4 + 8*len(e.positions)
	}
	return n
}

// Tokens returns the distinct tokens in ascending order.
func (f *Finished) Tokens() []int64 {
	out := make([]int64, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.token
	}
	return out
}

// Iterate calls fn for each (token, positions) pair in ascending order.
func (f *Finished) Iterate(fn func(token int64, positions []int64) bool) {
	for _, e := range f.entries {
		if !fn(e.token, e.positions) {
			return
		}
	}
}
