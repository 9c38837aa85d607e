package batch

import (
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	filesCommitted prometheus.Counter
	filesAborted   *prometheus.CounterVec
	itemsProcessed prometheus.Counter
	rowsFlushed    *prometheus.CounterVec
	flushDuration  prometheus.Histogram
	consensusEnd   prometheus.Gauge
}

// NewMetrics registers the coordinator metrics on reg. A nil reg creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		filesCommitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "importer",
			Name:      "record_files_committed_total",
			Help:      "Total number of record files committed",
		}),
		filesAborted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "importer",
			Name:      "record_files_aborted_total",
			Help:      "Total number of record files aborted, by fault",
		}, []string{"fault"}),
		itemsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "importer",
			Name:      "record_items_processed_total",
			Help:      "Total number of record items processed",
		}),
		rowsFlushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "importer",
			Name:      "rows_flushed_total",
			Help:      "Total number of rows committed, by domain type",
		}, []string{"type"}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "importer",
			Name:      "flush_duration_seconds",
			Help:      "Time taken to flush and commit a record file",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		consensusEnd: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "importer",
			Name:      "last_committed_consensus_end",
			Help:      "Consensus end timestamp of the last committed record file",
		}),
	}
}

func (m *Metrics) flushed(t domain.Type, n int) {
	m.rowsFlushed.WithLabelValues(t.String()).Add(float64(n))
}
