// Package level implements the level writer: one level of the promotion
// cascade, appending blocks and emitting pointer terms for the parent
// level to accept.
//
// Two variants exist, corresponding to the two block kinds: PointerLevel
// (levels 1+, block.PointerEncoder) and DataLevel (level 0,
// block.DataBlock, with an optional Sparse-mode super-block
// specialization) — a closed pair rather than an open inheritance
// hierarchy.
package level

import (
	"encoding/binary"

	"github.com/DTStax/sasi/pkg/sai/internal/block"
)

// Pointer is a promoted separator: the last term of a just-flushed child
// block, and that block's ordinal within its level.
type Pointer struct {
	Term       []byte
	ChildIndex uint32
}

// writeOffsets writes count[4 LE] followed by each offset[8 LE] — the
// metadata format flushMetadata uses for both block offsets and (in
// Sparse mode) super-block offsets.
func writeOffsets(cw *block.CountingWriter, offsets []int64) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(offsets))) //nolint:gosec // offset count bounded by one index file's block count
	if _, err := cw.Write(hdr[:]); err != nil {
		return err
	}
	buf := make([]byte, 8*len(offsets))
	for i, o := range offsets {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], uint64(o))
	}
	_, err := cw.Write(buf)
	return err
}

// PointerLevel appends pointer-term blocks to one level above the data
// level.
type PointerLevel struct {
	cw           *block.CountingWriter
	enc          *block.PointerEncoder
	blockOffsets []int64
	lastTerm     *Pointer
}

// NewPointerLevel returns an empty pointer level writing to cw.
func NewPointerLevel(cw *block.CountingWriter, constantWidth bool) *PointerLevel {
	return &PointerLevel{cw: cw, enc: block.NewPointerEncoder(constantWidth)}
}

// Add appends p to the current block, flushing first if it lacks space.
// Returns the pointer to promote to the parent level, or nil.
func (l *PointerLevel) Add(p Pointer) (*Pointer, error) {
	var toPromote *Pointer
	if !l.enc.HasSpaceFor(p.Term) {
		if err := l.flush(); err != nil {
			return nil, err
		}
		toPromote = l.lastTerm
	}

	l.enc.Add(p.Term, p.ChildIndex)
	lt := Pointer{Term: append([]byte(nil), p.Term...), ChildIndex: uint32(len(l.blockOffsets))} //nolint:gosec // block count bounded by one index file
	l.lastTerm = &lt
	return toPromote, nil
}

func (l *PointerLevel) flush() error {
	l.blockOffsets = append(l.blockOffsets, l.cw.Total)
	return l.enc.FlushAndClear(l.cw)
}

// FinalFlush flushes any partial block unconditionally.
func (l *PointerLevel) FinalFlush() error { return l.flush() }

// FlushMetadata writes this level's block-offsets array.
func (l *PointerLevel) FlushMetadata(cw *block.CountingWriter) error {
	return writeOffsets(cw, l.blockOffsets)
}

// BlockCount reports how many blocks this level has flushed so far.
func (l *PointerLevel) BlockCount() int { return len(l.blockOffsets) }
