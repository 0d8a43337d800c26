package block

import (
	"encoding/binary"

	"github.com/DTStax/sasi/pkg/sai/internal/tokentree"
)

// sparseInlineTokenThreshold mirrors sai.sparseInlineTokenThreshold; kept
// local to avoid an import cycle (sai imports this package).
const sparseInlineTokenThreshold = 5

// noOverflowSentinel mirrors sai.noOverflowSentinel.
const noOverflowSentinel = -1

// DataBlock extends PointerEncoder's base block accounting: for each
// term, the posting list is either inlined (Sparse mode, <=5 tokens) or
// serialized to a trailing overflow region referenced by a 4-byte
// offset. Sparse mode also aggregates a combined token-tree index over
// every term in the block.
type DataBlock struct {
	frame         frame
	constantWidth bool
	sparse        bool

	offset           int
	sparseValueTerms int
	containers       []*tokentree.Finished
	combinedIndex    *tokentree.Builder
}

// NewDataBlock returns an empty data-block encoder. sparse selects
// Sparse-mode inline packing and combined-index maintenance; it is false
// for Original and (non-inlining) Suffix mode.
func NewDataBlock(constantWidth, sparse bool) *DataBlock {
	return &DataBlock{constantWidth: constantWidth, sparse: sparse, combinedIndex: tokentree.New()}
}

// ptrLength reports the posting-list pointer footprint: 5 bytes
// (1-byte tag + 4-byte offset) for an overflow term, or 1 + 8*tokenCount
// bytes for an inline term.
func (d *DataBlock) ptrLength(tokens *tokentree.Finished) int {
	if d.sparse && tokens.TokenCount() <= sparseInlineTokenThreshold {
		return 1 + 8*tokens.TokenCount()
	}
	return 5
}

// HasSpaceFor reports whether term and its posting list still fit in the
// current block.
func (d *DataBlock) HasSpaceFor(term []byte, tokens *tokentree.Finished) bool {
	size := termSerializedSize(term, d.constantWidth) + d.ptrLength(tokens)
	return d.frame.watermark()+4+size < BlockSize
}

// IsEmpty reports whether any term has been added since the last flush.
func (d *DataBlock) IsEmpty() bool { return d.frame.isEmpty() }

// Add packs one (term, postings) pair into the block, either inline or
// by recording tokens for the trailing overflow region.
func (d *DataBlock) Add(term []byte, tokens *tokentree.Finished) {
	d.frame.recordOffset()
	writeTerm(&d.frame, term, d.constantWidth)

	if d.sparse && tokens.TokenCount() <= sparseInlineTokenThreshold {
		d.frame.writeByte(byte(tokens.TokenCount())) //nolint:gosec // bounded by sparseInlineTokenThreshold (5)
		tokens.Iterate(func(token int64, _ []int64) bool {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(token))
			d.frame.write(b[:])
			return true
		})
		d.sparseValueTerms++
	} else {
		d.frame.writeByte(0x00)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(d.offset)) //nolint:gosec // overflow offset bounded by one block's posting bodies
		d.frame.write(b[:])

		d.containers = append(d.containers, tokens)
		d.offset += tokens.SerializedSize()
	}

	if d.sparse {
		d.combinedIndex.AddTokens(tokens.Tokens())
	}
}

// FlushAndClear writes the base block, the sparse-overflow field (-1 if
// no inline term was written, else the running overflow offset), every
// overflow container body in order, and — in Sparse mode with at least
// one inline term — the finalized combined index. The whole structure is
// then padded to BlockSize and the encoder is reset.
func (d *DataBlock) FlushAndClear(cw *CountingWriter) error {
	if err := d.frame.writeOffsetsAndBuffer(cw); err != nil {
		return err
	}

	sentinel := int32(noOverflowSentinel)
	if d.sparseValueTerms > 0 {
		sentinel = int32(d.offset) //nolint:gosec // overflow offset bounded by one block's posting bodies
	}
	var sb [4]byte
	binary.LittleEndian.PutUint32(sb[:], uint32(sentinel))
	if _, err := cw.Write(sb[:]); err != nil {
		return err
	}

	for _, c := range d.containers {
		if _, err := c.WriteTo(cw); err != nil {
			return err
		}
	}

	if d.sparseValueTerms > 0 {
		if _, err := d.combinedIndex.Finish().WriteTo(cw); err != nil {
			return err
		}
	}

	if err := AlignToBlock(cw); err != nil {
		return err
	}

	d.containers = nil
	d.combinedIndex = tokentree.New()
	d.offset = 0
	d.sparseValueTerms = 0
	d.frame.reset()
	return nil
}
