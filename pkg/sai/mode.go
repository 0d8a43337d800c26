package sai

import "fmt"

// Mode selects how terms are transformed before they reach the block
// encoder and how their posting lists are packed within a data block.
type Mode int

const (
	// Original writes terms exactly as accumulated.
	Original Mode = iota
	// Suffix expands text terms (UTF-8/ASCII comparators only) into the
	// set of their suffixes before writing; every other comparator falls
	// back to Original behavior.
	Suffix
	// Sparse writes small posting lists inline in the data block and
	// maintains a combined token-tree index per super block.
	Sparse
)

// String renders the mode name as persisted in the file header.
func (m Mode) String() string {
	switch m {
	case Original:
		return "ORIGINAL"
	case Suffix:
		return "SUFFIX"
	case Sparse:
		return "SPARSE"
	default:
		panic(fmt.Sprintf("sai: unrecognized mode %d", int(m)))
	}
}

// ParseMode parses a mode name as written by String, case-insensitively
// is not attempted — the header always carries the exact persisted form.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ORIGINAL":
		return Original, nil
	case "SUFFIX":
		return Suffix, nil
	case "SPARSE":
		return Sparse, nil
	default:
		return 0, fmt.Errorf("sai: unrecognized mode %q", s)
	}
}
