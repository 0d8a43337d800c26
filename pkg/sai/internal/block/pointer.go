package block

import "encoding/binary"

// pointerSerializedSize is a pointer term's size: the term bytes plus
// the 4-byte child block index.
func pointerSerializedSize(term []byte, constantWidth bool) int {
	return termSerializedSize(term, constantWidth) + 4
}

// PointerEncoder packs (term, child-block-index) pairs into fixed
// blocks, used at every pointer level (levels 1+).
type PointerEncoder struct {
	frame         frame
	constantWidth bool
}

// NewPointerEncoder returns an empty encoder for the given term-size
// discipline (constantWidth == discipline.IsConstant()).
func NewPointerEncoder(constantWidth bool) *PointerEncoder {
	return &PointerEncoder{constantWidth: constantWidth}
}

// HasSpaceFor reports whether term (with its 4-byte child index) still
// fits in the current block.
func (e *PointerEncoder) HasSpaceFor(term []byte) bool {
	return e.frame.watermark()+4+pointerSerializedSize(term, e.constantWidth) < BlockSize
}

// IsEmpty reports whether any term has been added since the last flush.
func (e *PointerEncoder) IsEmpty() bool { return e.frame.isEmpty() }

// Add appends one pointer term to the block.
func (e *PointerEncoder) Add(term []byte, childBlockIndex uint32) {
	e.frame.recordOffset()
	writeTerm(&e.frame, term, e.constantWidth)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], childBlockIndex)
	e.frame.write(b[:])
}

// FlushAndClear writes the block (header, offset table, payload, zero
// padding to BlockSize) and resets the encoder for the next block.
func (e *PointerEncoder) FlushAndClear(cw *CountingWriter) error {
	if err := e.frame.writeOffsetsAndBuffer(cw); err != nil {
		return err
	}
	if err := AlignToBlock(cw); err != nil {
		return err
	}
	e.frame.reset()
	return nil
}
