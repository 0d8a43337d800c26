package sai

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeInt64(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint16(lenBuf[:])
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type decodedHeader struct {
	version  string
	termSize TermSize
	minTerm  []byte
	maxTerm  []byte
	minKey   []byte
	maxKey   []byte
	mode     string
}

func decodeHeader(t *testing.T, path string) decodedHeader {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	version, err := readLengthPrefixed(f)
	require.NoError(t, err)

	var ts [2]byte
	_, err = io.ReadFull(f, ts[:])
	require.NoError(t, err)

	minTerm, err := readLengthPrefixed(f)
	require.NoError(t, err)
	maxTerm, err := readLengthPrefixed(f)
	require.NoError(t, err)
	minKey, err := readLengthPrefixed(f)
	require.NoError(t, err)
	maxKey, err := readLengthPrefixed(f)
	require.NoError(t, err)
	mode, err := readLengthPrefixed(f)
	require.NoError(t, err)

	return decodedHeader{
		version:  string(version),
		termSize: TermSize(int16(binary.LittleEndian.Uint16(ts[:]))),
		minTerm:  minTerm,
		maxTerm:  maxTerm,
		minKey:   minKey,
		maxKey:   maxKey,
		mode:     string(mode),
	}
}

// decodeFooter reparses the trailing levels-metadata region written by
// writeFooter: the pointer-level block counts (outermost level first, as
// written), the data level's block count, and (sparse mode) its
// super-block count.
func decodeFooter(t *testing.T, path string, sparse bool) (pointerLevelBlockCounts []int, dataBlockCount, superBlockCount int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	stat, err := f.Stat()
	require.NoError(t, err)

	var posBuf [8]byte
	_, err = f.ReadAt(posBuf[:], stat.Size()-8)
	require.NoError(t, err)
	levelIndexPos := int64(binary.LittleEndian.Uint64(posBuf[:]))

	_, err = f.Seek(levelIndexPos, io.SeekStart)
	require.NoError(t, err)

	var cnt [4]byte
	_, err = io.ReadFull(f, cnt[:])
	require.NoError(t, err)
	levelCount := int(binary.LittleEndian.Uint32(cnt[:]))

	readOffsets := func() int {
		var c [4]byte
		require.NoError(t, readExact(f, c[:]))
		n := int(binary.LittleEndian.Uint32(c[:]))
		require.NoError(t, readExact(f, make([]byte, 8*n)))
		return n
	}

	for i := 0; i < levelCount; i++ {
		pointerLevelBlockCounts = append(pointerLevelBlockCounts, readOffsets())
	}
	dataBlockCount = readOffsets()
	if sparse {
		superBlockCount = readOffsets()
	}
	return
}

func readExact(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

func TestFinish_IntegerTermsOriginalMode(t *testing.T) {
	b := NewBuilder(BytesComparator{}, Int64Comparator{}, Original)
	term1, term2 := encodeInt64(1), encodeInt64(2)
	b.Add(term1, []byte("k1"), 0)
	b.Add(term2, []byte("k2"), 16)
	b.Add(term1, []byte("k3"), 32)

	path := filepath.Join(t.TempDir(), "scenario1.db")
	wrote, err := b.Finish(path)
	require.NoError(t, err)
	require.True(t, wrote)

	hdr := decodeHeader(t, path)
	require.Equal(t, FormatVersion, hdr.version)
	require.Equal(t, Long, hdr.termSize)
	require.Equal(t, term1, hdr.minTerm)
	require.Equal(t, term2, hdr.maxTerm)
	require.Equal(t, "ORIGINAL", hdr.mode)
}

// Text term under SUFFIX mode expands "abc" into its three suffixes in
// ascending order, each carrying one posting.
func TestBuilder_TextSuffixModeExpandsIntoSuffixes(t *testing.T) {
	b := NewBuilder(UTF8Comparator{}, UTF8Comparator{}, Suffix)
	b.Add([]byte("abc"), []byte("k1"), 0)

	it := b.termIterator()
	require.Equal(t, []byte("abc"), it.MinTerm())
	require.Equal(t, []byte("c"), it.MaxTerm())

	var terms []string
	for it.HasNext() {
		e := it.Next()
		terms = append(terms, string(e.Term))
		require.Equal(t, 1, e.Tokens.TokenCount())
	}
	require.Equal(t, []string{"abc", "bc", "c"}, terms)
}

// SPARSE mode packs a 5-token posting list inline and a 6-token list by
// overflow — the accumulator feeds the token counts the data-block
// encoder's threshold acts on.
func TestBuilder_SparseThresholdTokenCounts(t *testing.T) {
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Sparse)
	for i := 0; i < 5; i++ {
		b.Add([]byte("five"), []byte(fmt.Sprintf("k%d", i)), int64(i))
	}
	for i := 0; i < 6; i++ {
		b.Add([]byte("six"), []byte(fmt.Sprintf("k%d", i)), int64(i))
	}

	require.Equal(t, 5, b.acc.terms["five"].TokenCount())
	require.Equal(t, 6, b.acc.terms["six"].TokenCount())

	path := filepath.Join(t.TempDir(), "scenario3.db")
	wrote, err := b.Finish(path)
	require.NoError(t, err)
	require.True(t, wrote)
}

// A promotion cascade with exactly 4 data blocks promoted into one
// level-1 block. 300-byte variable-width UTF8
// terms fit exactly 13 per 4 KiB data block under ORIGINAL mode (always
// 5-byte overflow pointers): 60 terms flush 4 full blocks via promotion
// and leave an 8-term tail block flushed only by FinalFlush.
func TestFinish_PromotionCascadeHeight(t *testing.T) {
	b := NewBuilder(UTF8Comparator{}, UTF8Comparator{}, Original)
	for i := 0; i < 60; i++ {
		prefix := fmt.Sprintf("term-%04d-", i)
		term := prefix + strings.Repeat("x", 300-len(prefix))
		b.Add([]byte(term), []byte(fmt.Sprintf("k%04d", i)), int64(i))
	}

	path := filepath.Join(t.TempDir(), "scenario5.db")
	wrote, err := b.Finish(path)
	require.NoError(t, err)
	require.True(t, wrote)

	pointerCounts, dataBlocks, _ := decodeFooter(t, path, false)
	require.Equal(t, []int{1}, pointerCounts)
	require.Equal(t, 5, dataBlocks)
}

// An empty build returns false without error and does not create a
// file.
func TestFinish_EmptyBuildReturnsFalse(t *testing.T) {
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original)
	path := filepath.Join(t.TempDir(), "scenario6.db")

	wrote, err := b.Finish(path)
	require.NoError(t, err)
	require.False(t, wrote)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestFinish_FileSizeIsBlockAlignedBeforeFooter(t *testing.T) {
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original)
	b.Add([]byte("term"), []byte("key"), 0)

	path := filepath.Join(t.TempDir(), "aligned.db")
	wrote, err := b.Finish(path)
	require.NoError(t, err)
	require.True(t, wrote)

	_, dataBlocks, _ := decodeFooter(t, path, false)
	require.Equal(t, 1, dataBlocks)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	// header (1 block) + 1 data block, both block-aligned; the footer
	// trails unaligned after that.
	require.GreaterOrEqual(t, stat.Size(), int64(2*BlockSize))
}

func TestBuilder_ConcurrentAddPanics(t *testing.T) {
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original)
	b.inUse.Store(true)
	require.Panics(t, func() { b.Add([]byte("t"), []byte("k"), 0) })
	b.inUse.Store(false)
}
