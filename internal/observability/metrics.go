package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	recordsDecoded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stationctl",
			Subsystem: "ingest",
			Name:      "records_decoded_total",
			Help:      "Packed measurements decoded from the station.",
		},
	)
	recordsStored = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stationctl",
			Subsystem: "ingest",
			Name:      "records_stored_total",
			Help:      "Measurements persisted to the database.",
		},
	)
	runFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stationctl",
			Subsystem: "ingest",
			Name:      "run_failures_total",
			Help:      "Aborted ingestion runs by failing stage.",
		},
		[]string{"stage"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(recordsDecoded, recordsStored, runFailures)
	})
}

func RecordDecoded() {
	RegisterMetrics()
	recordsDecoded.Inc()
}

func RecordStored() {
	RegisterMetrics()
	recordsStored.Inc()
}

func RecordRunFailure(stage string) {
	RegisterMetrics()
	runFailures.WithLabelValues(stage).Inc()
}
