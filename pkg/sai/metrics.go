package sai

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus metrics a Builder reports through: one
// constructor, one MustRegister call, plain exported fields.
type Metrics struct {
	TermsAccepted        prometheus.Counter
	TermsRejected        prometheus.Counter
	DataBlocksWritten    prometheus.Counter
	SuperBlocksWritten   prometheus.Counter
	PointerBlocksWritten *prometheus.CounterVec
	FinishDuration       prometheus.Histogram
}

// NewMetrics creates and registers all metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	termsAccepted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sai_terms_accepted_total",
		Help: "Total terms accepted into the accumulator.",
	})
	termsRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sai_terms_rejected_total",
		Help: "Total terms rejected for reaching or exceeding the maximum term size.",
	})
	dataBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sai_data_blocks_written_total",
		Help: "Total level-0 data blocks flushed.",
	})
	superBlocks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sai_super_blocks_written_total",
		Help: "Total Sparse-mode combined-index super blocks flushed.",
	})
	pointerBlocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sai_pointer_blocks_written_total",
		Help: "Total pointer blocks flushed, by level.",
	}, []string{"level"})
	finishDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sai_finish_duration_seconds",
		Help:    "Wall time spent in Finish.",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(termsAccepted, termsRejected, dataBlocks, superBlocks, pointerBlocks, finishDuration)

	return &Metrics{
		TermsAccepted:        termsAccepted,
		TermsRejected:        termsRejected,
		DataBlocksWritten:    dataBlocks,
		SuperBlocksWritten:   superBlocks,
		PointerBlocksWritten: pointerBlocks,
		FinishDuration:       finishDuration,
	}
}
