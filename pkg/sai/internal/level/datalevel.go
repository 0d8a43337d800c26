package level

import (
	"github.com/DTStax/sasi/pkg/sai/internal/block"
	"github.com/DTStax/sasi/pkg/sai/internal/tokentree"
)

// superBlockSize mirrors sai.SuperBlockSize; duplicated to avoid an
// import cycle (sai imports this package).
const superBlockSize = 64

// DataLevel is the level-0 writer. In Sparse mode it additionally tracks
// a rolling combined token-tree index emitted every superBlockSize data
// blocks;
// outside Sparse mode that bookkeeping is simply inert rather than
// modeled as a separate embedded type, matching how block.DataBlock
// itself folds Sparse-only behavior behind one flag.
type DataLevel struct {
	cw           *block.CountingWriter
	enc          *block.DataBlock
	blockOffsets []int64
	lastTerm     *Pointer

	sparse            bool
	superBlockOffsets []int64
	dataBlocksCnt     int
	superBlockTree    *tokentree.Builder
}

// NewDataLevel returns an empty data level writing to cw.
func NewDataLevel(cw *block.CountingWriter, constantWidth, sparse bool) *DataLevel {
	dl := &DataLevel{cw: cw, enc: block.NewDataBlock(constantWidth, sparse), sparse: sparse}
	if sparse {
		dl.superBlockTree = tokentree.New()
	}
	return dl
}

// Add packs (term, tokens) into the current block, flushing first if it
// lacks space, and (Sparse mode) folds tokens into the super-block tree
// and rolls the super block over every superBlockSize flushed blocks.
// Returns the pointer to promote to level 1, or nil.
func (l *DataLevel) Add(term []byte, tokens *tokentree.Finished) (*Pointer, error) {
	toPromote, err := l.baseAdd(term, tokens)
	if err != nil {
		return nil, err
	}

	if l.sparse {
		if toPromote != nil {
			l.dataBlocksCnt++
			if err := l.flushSuperBlock(false); err != nil {
				return nil, err
			}
		}
		l.superBlockTree.AddTokens(tokens.Tokens())
	}

	return toPromote, nil
}

func (l *DataLevel) baseAdd(term []byte, tokens *tokentree.Finished) (*Pointer, error) {
	var toPromote *Pointer
	if !l.enc.HasSpaceFor(term, tokens) {
		if err := l.flush(); err != nil {
			return nil, err
		}
		toPromote = l.lastTerm
	}

	l.enc.Add(term, tokens)
	lt := Pointer{Term: append([]byte(nil), term...), ChildIndex: uint32(len(l.blockOffsets))} //nolint:gosec // block count bounded by one index file
	l.lastTerm = &lt
	return toPromote, nil
}

func (l *DataLevel) flush() error {
	l.blockOffsets = append(l.blockOffsets, l.cw.Total)
	return l.enc.FlushAndClear(l.cw)
}

// flushSuperBlock acts iff dataBlocksCnt has reached superBlockSize, or
// force is set and the tree is non-empty.
func (l *DataLevel) flushSuperBlock(force bool) error {
	if l.dataBlocksCnt != superBlockSize && !(force && l.superBlockTree.TokenCount() > 0) {
		return nil
	}

	l.superBlockOffsets = append(l.superBlockOffsets, l.cw.Total)
	if _, err := l.superBlockTree.Finish().WriteTo(l.cw); err != nil {
		return err
	}
	if err := block.AlignToBlock(l.cw); err != nil {
		return err
	}

	l.dataBlocksCnt = 0
	l.superBlockTree = tokentree.New()
	return nil
}

// FinalFlush flushes the base block unconditionally, then (Sparse mode)
// forces a final super-block flush.
func (l *DataLevel) FinalFlush() error {
	if err := l.flush(); err != nil {
		return err
	}
	if l.sparse {
		return l.flushSuperBlock(true)
	}
	return nil
}

// FlushMetadata writes the block-offsets array and, in Sparse mode, the
// super-block-offsets array.
func (l *DataLevel) FlushMetadata(cw *block.CountingWriter) error {
	if err := writeOffsets(cw, l.blockOffsets); err != nil {
		return err
	}
	if l.sparse {
		return writeOffsets(cw, l.superBlockOffsets)
	}
	return nil
}

// BlockCount reports how many data blocks this level has flushed so far.
func (l *DataLevel) BlockCount() int { return len(l.blockOffsets) }

// SuperBlockCount reports how many super blocks this level has flushed
// so far; always 0 outside Sparse mode.
func (l *DataLevel) SuperBlockCount() int { return len(l.superBlockOffsets) }
