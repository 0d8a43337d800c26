package sai

// Wire-format constants. Bit-exact — readers depend on these values.
const (
	// BlockSize is the fixed size, in bytes, of every block and the file
	// header. Every block, super-block, and the data region end on a
	// multiple of this value.
	BlockSize = 4096

	// MaxTermSize is the maximum accepted length, in bytes, of a term.
	// Terms of exactly this size are rejected; MaxTermSize-1 is accepted.
	MaxTermSize = 1024

	// SuperBlockSize is the number of consecutive data blocks aggregated
	// into one combined-token-tree super block in Sparse mode.
	SuperBlockSize = 64

	// sparseInlineTokenThreshold is the per-term posting-list token count
	// at or below which Sparse mode inlines tokens in the data block
	// instead of writing them to the overflow region.
	sparseInlineTokenThreshold = 5

	// noOverflowSentinel is written in place of the sparse-overflow
	// offset when a data block wrote no inline (Sparse-mode) terms, which
	// is every data block outside Sparse mode.
	noOverflowSentinel = -1
)

// ComponentFilenamePattern is the filename pattern under which the
// storage-table component registry (out of scope of this module) expects
// to find this builder's output file. Documented here only: registration,
// lifecycle, and multi-component-per-table bookkeeping belong to that
// external collaborator.
const ComponentFilenamePattern = "SI_.*.db"
