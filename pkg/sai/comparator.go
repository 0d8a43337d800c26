package sai

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// ComparatorKind identifies the family a Comparator belongs to, used by
// the term-size classifier to pick a wire discipline without this
// package depending on any concrete column-type system.
type ComparatorKind int

const (
	KindBytes ComparatorKind = iota
	KindInt32
	KindFloat32
	KindInt64
	KindFloat64
	KindTimestamp
	KindDate
	KindUUID
	KindUTF8
	KindASCII
)

// Comparator is a total ordering over byte sequences, used both for the
// key comparator (min/max key tracking) and the term comparator (ascending
// order fed to the block encoder).
type Comparator interface {
	// Compare returns <0, 0, or >0 as a sorts before, equals, or sorts
	// after b.
	Compare(a, b []byte) int
	// Kind reports the comparator family, consulted by the term-size
	// classifier and by the suffix-array transform (text-only expansion).
	Kind() ComparatorKind
}

// BytesComparator orders raw byte sequences lexicographically. Used for
// VARIABLE-width terms that aren't one of the fixed-width numeric/UUID
// kinds, and as the base for UTF8Comparator/ASCIIComparator.
type BytesComparator struct{}

func (BytesComparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (BytesComparator) Kind() ComparatorKind    { return KindBytes }

// UTF8Comparator and ASCIIComparator order text lexicographically by byte
// value; both are eligible for suffix expansion under Suffix mode, unlike
// plain BytesComparator.
type UTF8Comparator struct{}

func (UTF8Comparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (UTF8Comparator) Kind() ComparatorKind    { return KindUTF8 }

type ASCIIComparator struct{}

func (ASCIIComparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (ASCIIComparator) Kind() ComparatorKind    { return KindASCII }

// IsText reports whether a comparator is eligible for suffix expansion.
func IsText(c Comparator) bool {
	k := c.Kind()
	return k == KindUTF8 || k == KindASCII
}

// Int32Comparator compares 4-byte big-endian signed integers.
type Int32Comparator struct{}

func (Int32Comparator) Compare(a, b []byte) int {
	return compareOrdered(int32(binary.BigEndian.Uint32(a)), int32(binary.BigEndian.Uint32(b)))
}
func (Int32Comparator) Kind() ComparatorKind { return KindInt32 }

// Float32Comparator compares 4-byte big-endian IEEE-754 floats.
type Float32Comparator struct{}

func (Float32Comparator) Compare(a, b []byte) int {
	fa := math.Float32frombits(binary.BigEndian.Uint32(a))
	fb := math.Float32frombits(binary.BigEndian.Uint32(b))
	return compareOrdered(fa, fb)
}
func (Float32Comparator) Kind() ComparatorKind { return KindFloat32 }

// Int64Comparator compares 8-byte big-endian signed integers.
type Int64Comparator struct{}

func (Int64Comparator) Compare(a, b []byte) int {
	return compareOrdered(int64(binary.BigEndian.Uint64(a)), int64(binary.BigEndian.Uint64(b)))
}
func (Int64Comparator) Kind() ComparatorKind { return KindInt64 }

// Float64Comparator compares 8-byte big-endian IEEE-754 doubles.
type Float64Comparator struct{}

func (Float64Comparator) Compare(a, b []byte) int {
	fa := math.Float64frombits(binary.BigEndian.Uint64(a))
	fb := math.Float64frombits(binary.BigEndian.Uint64(b))
	return compareOrdered(fa, fb)
}
func (Float64Comparator) Kind() ComparatorKind { return KindFloat64 }

// TimestampComparator and DateComparator compare 8-byte big-endian
// millisecond (timestamp) or day (date) counts — both LONG-sized, ordered
// numerically like Int64Comparator.
type TimestampComparator struct{ Int64Comparator }

func (TimestampComparator) Kind() ComparatorKind { return KindTimestamp }

type DateComparator struct{ Int64Comparator }

func (DateComparator) Kind() ComparatorKind { return KindDate }

// UUIDComparator compares 16-byte UUIDs. Time-ordered UUIDs (version 1)
// compare by embedded timestamp first; all other versions fall back to
// byte-lexicographic order, matching how random (version 4) UUIDs are
// ordered in practice.
type UUIDComparator struct{}

func (UUIDComparator) Compare(a, b []byte) int {
	ua, erra := uuid.FromBytes(a)
	ub, errb := uuid.FromBytes(b)
	if erra != nil || errb != nil {
		return bytes.Compare(a, b)
	}
	if ua.Version() == 1 && ub.Version() == 1 {
		if ta, tb := ua.Time(), ub.Time(); ta != tb {
			return compareOrdered(int64(ta), int64(tb))
		}
	}
	return bytes.Compare(a, b)
}
func (UUIDComparator) Kind() ComparatorKind { return KindUUID }

func compareOrdered[T int32 | int64 | float32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
