package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan counters, exposed on /metrics. These are an observability side
// channel only; nothing in the scan contract depends on them.
var (
	MessagesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinarr_messages_scanned_total",
		Help: "Source channel messages examined by scans.",
	})

	ItemsIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinarr_items_indexed_total",
		Help: "Catalog items written by scans.",
	}, []string{"kind"})

	ItemsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinarr_items_skipped_total",
		Help: "Messages skipped because they were already indexed.",
	})

	ScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinarr_scan_errors_total",
		Help: "Messages that failed to persist or fetch during scans.",
	})
)
