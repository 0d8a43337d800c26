package sai

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/DTStax/sasi/pkg/sai/internal/block"
	indexlevel "github.com/DTStax/sasi/pkg/sai/internal/level"
	"github.com/DTStax/sasi/pkg/sai/internal/sa"
)

// FormatVersion is the version string persisted in every file header.
const FormatVersion = "sai-1"

// Finish drains the accumulator through the suffix-array transform and
// the multi-level block writer, producing one immutable index file at
// path. It returns (false, nil) if no terms were accepted — no file is
// created — and wraps any I/O failure as *WriteError. Finish must be
// called at most once; the Builder is unusable afterward.
func (b *Builder) Finish(path string) (bool, error) {
	if !b.inUse.CompareAndSwap(false, true) {
		panic("sai: concurrent use detected")
	}
	defer b.inUse.Store(false)

	if b.acc.isEmpty() {
		return false, nil
	}

	if b.metrics != nil {
		start := time.Now()
		defer func() { b.metrics.FinishDuration.Observe(time.Since(start).Seconds()) }()
	}

	f, err := os.Create(path)
	if err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	defer f.Close()

	if err := b.writeFile(block.NewCountingWriter(f)); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	return true, nil
}

func (b *Builder) writeFile(cw *block.CountingWriter) error {
	it := b.termIterator()
	termSize := termSizeOf(b.termComparator)

	if err := b.writeHeader(cw, termSize, it.MinTerm(), it.MaxTerm()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dataLevel := indexlevel.NewDataLevel(cw, termSize.IsConstant(), b.mode == Sparse)
	levels, err := runCascade(cw, dataLevel, it, termSize.IsConstant())
	if err != nil {
		return fmt.Errorf("build levels: %w", err)
	}

	if err := dataLevel.FinalFlush(); err != nil {
		return fmt.Errorf("final flush data level: %w", err)
	}
	for i, l := range levels {
		if err := l.FinalFlush(); err != nil {
			return fmt.Errorf("final flush level %d: %w", i+1, err)
		}
	}

	if err := b.writeFooter(cw, dataLevel, levels); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	b.reportBlockMetrics(dataLevel, levels)
	return nil
}

// runCascade feeds every (term, postings) pair from it into the data
// level, and non-recursively promotes any returned pointer up a growing
// slice of pointer levels, extending it by one level whenever a
// promotion reaches a height not yet written. Written as an explicit
// loop over a growing slice rather than recursion, since the cascade
// height isn't known until the last promotion happens.
func runCascade(cw *block.CountingWriter, dataLevel *indexlevel.DataLevel, it sa.Iterator, constantWidth bool) ([]*indexlevel.PointerLevel, error) {
	var levels []*indexlevel.PointerLevel

	for it.HasNext() {
		e := it.Next()
		ptr, err := dataLevel.Add(e.Term, e.Tokens)
		if err != nil {
			return nil, err
		}

		for li := 0; ptr != nil; li++ {
			if li >= len(levels) {
				levels = append(levels, indexlevel.NewPointerLevel(cw, constantWidth))
			}
			ptr, err = levels[li].Add(*ptr)
			if err != nil {
				return nil, err
			}
		}
	}

	return levels, nil
}

func (b *Builder) reportBlockMetrics(dataLevel *indexlevel.DataLevel, levels []*indexlevel.PointerLevel) {
	if b.metrics == nil {
		return
	}
	b.metrics.DataBlocksWritten.Add(float64(dataLevel.BlockCount()))
	b.metrics.SuperBlocksWritten.Add(float64(dataLevel.SuperBlockCount()))
	for i, l := range levels {
		b.metrics.PointerBlocksWritten.WithLabelValues(fmt.Sprintf("%d", i+1)).Add(float64(l.BlockCount()))
	}
}

// writeHeader writes the block-aligned header: version, term-size
// discipline, min/max term, min/max key, mode name, then zero-padding
// to BlockSize.
func (b *Builder) writeHeader(cw *block.CountingWriter, termSize TermSize, minTerm, maxTerm []byte) error {
	if err := writeLengthPrefixed(cw, []byte(FormatVersion)); err != nil {
		return err
	}
	var ts [2]byte
	binary.LittleEndian.PutUint16(ts[:], uint16(termSize))
	if _, err := cw.Write(ts[:]); err != nil {
		return err
	}
	if err := writeLengthPrefixed(cw, minTerm); err != nil {
		return err
	}
	if err := writeLengthPrefixed(cw, maxTerm); err != nil {
		return err
	}
	if err := writeLengthPrefixed(cw, b.acc.minKey); err != nil {
		return err
	}
	if err := writeLengthPrefixed(cw, b.acc.maxKey); err != nil {
		return err
	}
	if err := writeLengthPrefixed(cw, []byte(b.mode.String())); err != nil {
		return err
	}
	return block.AlignToBlock(cw)
}

// writeFooter writes the levels-count prefix, each pointer level's
// metadata in descending order, the data level's metadata, and the
// trailing levelIndexPosition.
func (b *Builder) writeFooter(cw *block.CountingWriter, dataLevel *indexlevel.DataLevel, levels []*indexlevel.PointerLevel) error {
	levelIndexPosition := cw.Total

	var cnt [4]byte
	binary.LittleEndian.PutUint32(cnt[:], uint32(len(levels))) //nolint:gosec // level count bounded by the cascade height of one index file
	if _, err := cw.Write(cnt[:]); err != nil {
		return err
	}

	for i := len(levels) - 1; i >= 0; i-- {
		if err := levels[i].FlushMetadata(cw); err != nil {
			return err
		}
	}
	if err := dataLevel.FlushMetadata(cw); err != nil {
		return err
	}

	var pos [8]byte
	binary.LittleEndian.PutUint64(pos[:], uint64(levelIndexPosition))
	_, err := cw.Write(pos[:])
	return err
}

// writeLengthPrefixed writes a 2-byte little-endian length followed by
// data, the header's encoding for variable-length fields, shared in
// spirit with the variable-width term encoding in internal/block.
func writeLengthPrefixed(cw *block.CountingWriter, data []byte) error {
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(data))) //nolint:gosec // header fields bounded by MaxTermSize-scale inputs
	if _, err := cw.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := cw.Write(data)
	return err
}
