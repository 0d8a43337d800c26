package sai

import "fmt"

// TermSize is the term-size discipline persisted in the file header. It
// determines whether term bytes carry a 2-byte length prefix at every
// serialization site.
type TermSize int16

const (
	// Variable-width terms carry a 2-byte length prefix.
	Variable TermSize = -1
	// Int is a 4-byte fixed-width term (32-bit integer or float comparators).
	Int TermSize = 4
	// Long is an 8-byte fixed-width term (64-bit integer, double,
	// timestamp, or date comparators).
	Long TermSize = 8
	// UUID is a 16-byte fixed-width term (time-ordered or random UUID
	// comparators).
	UUID TermSize = 16
)

// IsConstant reports whether terms under this discipline are fixed-width
// and therefore omit the length prefix.
func (t TermSize) IsConstant() bool {
	return t != Variable
}

// termSizeOf classifies a Comparator into its persisted TermSize
// discipline. Comparators that don't match a known fixed-width kind are
// Variable.
func termSizeOf(c Comparator) TermSize {
	switch c.Kind() {
	case KindInt32, KindFloat32:
		return Int
	case KindInt64, KindFloat64, KindTimestamp, KindDate:
		return Long
	case KindUUID:
		return UUID
	default:
		return Variable
	}
}

// parseTermSize validates a raw header value against the four known
// disciplines. An unrecognized code is a programming error: the file
// header is either writer-trusted or corrupt, neither of which this
// constructor is meant to tolerate silently.
func parseTermSize(v int16) TermSize {
	switch v {
	case -1, 4, 8, 16:
		return TermSize(v)
	default:
		panic(fmt.Sprintf("sai: unknown term-size code %d", v))
	}
}
