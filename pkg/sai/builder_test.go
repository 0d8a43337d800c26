package sai

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AddIncrementsAcceptedMetric(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original, WithMetrics(m))

	b.Add([]byte("term"), []byte("key"), 0)

	require.Equal(t, float64(1), testutil.ToFloat64(m.TermsAccepted))
	require.Equal(t, float64(0), testutil.ToFloat64(m.TermsRejected))
}

// Add must never panic on an oversized term when metrics are attached:
// Counter.Add panics on a negative delta, so TermsAccepted must only ever
// be incremented for terms the accumulator actually kept.
func TestBuilder_AddOversizedTermIncrementsRejectedMetricWithoutPanic(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original, WithMetrics(m))

	require.NotPanics(t, func() {
		b.Add(make([]byte, MaxTermSize), []byte("key"), 0)
	})

	require.Equal(t, float64(0), testutil.ToFloat64(m.TermsAccepted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TermsRejected))
	require.True(t, b.IsEmpty())
}

func TestBuilder_WithMaxTermSizeOverridesCutoff(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	b := NewBuilder(BytesComparator{}, BytesComparator{}, Original,
		WithMetrics(m),
		WithMaxTermSize(8),
	)

	b.Add(make([]byte, 7), []byte("k1"), 0)
	b.Add(make([]byte, 8), []byte("k2"), 1)

	require.Equal(t, float64(1), testutil.ToFloat64(m.TermsAccepted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TermsRejected))
}
