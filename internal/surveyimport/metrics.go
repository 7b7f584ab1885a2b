package surveyimport

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type importMetrics struct {
	rows          *prometheus.CounterVec
	commits       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

var metrics = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		rows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jtbd",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Matched import rows by match type.",
		}, []string{"match_type"}),
		commits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jtbd",
			Subsystem: "import",
			Name:      "commits_total",
			Help:      "Import commit attempts by result.",
		}, []string{"result"}),
		stageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jtbd",
			Subsystem: "import",
			Name:      "stage_duration_seconds",
			Help:      "Duration of import pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
})

func countRows(rows []MatchedRow) {
	m := metrics()
	for _, r := range rows {
		m.rows.WithLabelValues(string(r.MatchType)).Inc()
	}
}

func countCommit(result string) {
	metrics().commits.WithLabelValues(result).Inc()
}

func observeStage(stage string, start time.Time) {
	metrics().stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
