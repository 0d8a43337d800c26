package level

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DTStax/sasi/pkg/sai/internal/block"
	"github.com/DTStax/sasi/pkg/sai/internal/tokentree"
)

func TestPointerLevel_PromotesOnOverflow(t *testing.T) {
	var buf bytes.Buffer
	cw := block.NewCountingWriter(&buf)

	pl := NewPointerLevel(cw, false)

	bigTerm := bytes.Repeat([]byte("x"), 512)
	var promotions int
	for i := 0; i < 12; i++ {
		p, err := pl.Add(Pointer{Term: bigTerm, ChildIndex: uint32(i)})
		require.NoError(t, err)
		if p != nil {
			promotions++
		}
	}

	require.Greater(t, promotions, 0)
	require.NoError(t, pl.FinalFlush())
	require.Zero(t, cw.Total%block.BlockSize)
	require.Equal(t, promotions+1, pl.BlockCount())
}

func TestDataLevel_BlockAlignment(t *testing.T) {
	var buf bytes.Buffer
	cw := block.NewCountingWriter(&buf)

	dl := NewDataLevel(cw, false, false)

	for i := 0; i < 50; i++ {
		_, err := dl.Add([]byte("term"), finished(int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, dl.FinalFlush())
	require.Zero(t, cw.Total%block.BlockSize)
}

func TestDataLevel_SparseSuperBlockEmission(t *testing.T) {
	var buf bytes.Buffer
	cw := block.NewCountingWriter(&buf)

	dl := NewDataLevel(cw, false, true)

	// A 300-byte term fits roughly 13 entries per 4KiB block, so ~850
	// adds flush past the SuperBlockSize=64 threshold once and leave a
	// partial block for FinalFlush to force a second combined index.
	term := bytes.Repeat([]byte("y"), 300)
	for i := 0; i < 850; i++ {
		_, err := dl.Add(term, finished(int64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, dl.FinalFlush())

	require.GreaterOrEqual(t, dl.SuperBlockCount(), 2)
	require.Zero(t, cw.Total%block.BlockSize)
}

func finished(token int64) *tokentree.Finished {
	b := tokentree.New()
	b.Add(token, token)
	return b.Finish()
}
