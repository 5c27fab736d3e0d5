package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestedLogs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlog_ingested_total",
			Help: "Total number of ingestion attempts",
		},
		[]string{"backend", "status"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlog_query_duration_seconds",
			Help:    "Duration of log queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "kind", "status"},
	)

	LineParseWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netlog_text_line_parse_warnings_total",
			Help: "Text log lines skipped because they could not be parsed",
		},
	)
)

func init() {
	prometheus.MustRegister(IngestedLogs)
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(LineParseWarnings)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
