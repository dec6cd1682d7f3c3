package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ledger_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	rowsDiscarded *prometheus.CounterVec
	upsertResults *prometheus.CounterVec
	ingestPasses  *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
)

// Init registers pipeline metrics and DB-backed gauges. Safe to call more
// than once.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		rowsDiscarded = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_discarded_total",
				Help: "Spreadsheet rows discarded during normalization, by reason",
			},
			[]string{"country", "reason"},
		)
		upsertResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upserts_total",
				Help: "Day report upserts by result",
			},
			[]string{"country", "result"},
		)
		ingestPasses = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_passes_total",
				Help: "Sheet ingestion passes by result",
			},
			[]string{"country", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Sheet ingestion latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"country"},
		)

		prometheus.MustRegister(rowsDiscarded, upsertResults, ingestPasses, ingestLatency)
		registerDBMetrics(db, logger)
	})
}

// RowsDiscarded counts rows dropped during normalization.
func RowsDiscarded(country, reason string, n int) {
	if rowsDiscarded == nil || n <= 0 {
		return
	}
	rowsDiscarded.WithLabelValues(country, reason).Add(float64(n))
}

// UpsertResult counts one repository upsert.
func UpsertResult(country string, ok bool) {
	if upsertResults == nil {
		return
	}
	upsertResults.WithLabelValues(country, resultLabel(ok)).Inc()
}

// IngestPass records one completed sheet pass.
func IngestPass(country string, elapsed time.Duration, ok bool) {
	if ingestPasses == nil {
		return
	}
	ingestPasses.WithLabelValues(country, resultLabel(ok)).Inc()
	ingestLatency.WithLabelValues(country).Observe(elapsed.Seconds())
}

func resultLabel(ok bool) string {
	if ok {
		return resultSuccess
	}
	return resultError
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	if db == nil {
		return
	}
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "day_reports_count",
			Help: "Stored day report records",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM country_day_reports")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
