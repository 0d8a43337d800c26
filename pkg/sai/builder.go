package sai

import (
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/DTStax/sasi/pkg/sai/internal/sa"
)

// Builder accumulates (term, key, key-position) triples and writes them
// out as one immutable index file. A Builder is created with immutable
// comparators and mode, fed by repeated Add, and consumed by exactly one
// call to Finish: owned by one caller from construction through the
// terminal call, never reused afterward.
type Builder struct {
	keyComparator  Comparator
	termComparator Comparator
	mode           Mode

	logger  log.Logger
	metrics *Metrics

	acc *accumulator

	// inUse is a concurrency guard: Add and Finish each
	// CompareAndSwap(false, true) on entry and panic on failure, since a
	// Builder is single-threaded by contract.
	inUse atomic.Bool
}

// BuilderOption configures optional Builder behavior beyond the required
// comparators and mode.
type BuilderOption func(*Builder)

// WithLogger overrides the default no-op logger.
func WithLogger(logger log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// WithMetrics attaches a Metrics instance the Builder reports through.
func WithMetrics(m *Metrics) BuilderOption {
	return func(b *Builder) { b.metrics = m }
}

// WithTokenizer overrides the default xxhash-based partition-key
// tokenizer. Real tokenization belongs to the caller's storage layer;
// this hook exists so a caller wired to that layer can supply it without
// this package depending on it.
func WithTokenizer(tokenOf func(key []byte) int64) BuilderOption {
	return func(b *Builder) { b.acc.tokenOf = tokenOf }
}

// WithMaxTermSize overrides the package default term-size cutoff
// (MaxTermSize). Pass Config.ResolvedMaxTermSize() to honor a caller's
// YAML-loaded override while still falling back to the default.
func WithMaxTermSize(n int) BuilderOption {
	return func(b *Builder) { b.acc.maxTermSize = n }
}

// NewBuilder returns an empty Builder over the given key and term
// comparators and packing mode.
func NewBuilder(keyComparator, termComparator Comparator, mode Mode, opts ...BuilderOption) *Builder {
	b := &Builder{
		keyComparator:  keyComparator,
		termComparator: termComparator,
		mode:           mode,
		logger:         log.NewNopLogger(),
	}
	b.acc = newAccumulator(keyComparator, defaultTokenOf, b, MaxTermSize)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add accumulates one (term, key, key-position) triple. It never fails:
// an oversized term is logged and dropped. A zero-length term is
// accepted as-is.
func (b *Builder) Add(term, key []byte, keyPosition int64) *Builder {
	if !b.inUse.CompareAndSwap(false, true) {
		panic("sai: concurrent use detected")
	}
	defer b.inUse.Store(false)

	accepted := b.acc.add(term, key, keyPosition)
	if b.metrics != nil {
		if accepted {
			b.metrics.TermsAccepted.Inc()
		} else {
			b.metrics.TermsRejected.Inc()
		}
	}
	return b
}

// EstimatedMemoryUse reports the accumulator's running memory estimate,
// an advisory figure for an upstream flush-pressure policy.
func (b *Builder) EstimatedMemoryUse() int64 {
	return b.acc.estimatedMemoryUse()
}

// IsEmpty reports whether any term has been accepted.
func (b *Builder) IsEmpty() bool {
	return b.acc.isEmpty()
}

// warnOversizedTerm satisfies the accumulator's warner interface,
// logging the term's actual size and limit rather than a fixed bound
// that wouldn't match what was rejected.
func (b *Builder) warnOversizedTerm(size, max int) {
	level.Warn(b.logger).Log("msg", "dropping oversized term", "term_size", size, "max_size", max)
}

// termIterator selects the suffix-array transform appropriate for mode
// and the term comparator: Suffix mode over a text comparator expands
// every term into its suffixes; everything else passes terms through
// unchanged.
func (b *Builder) termIterator() sa.Iterator {
	if b.mode == Suffix && IsText(b.termComparator) {
		return sa.NewSuffix(b.acc.terms, b.termComparator)
	}
	return sa.NewIntegral(b.acc.terms, b.termComparator)
}
