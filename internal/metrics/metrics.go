package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ListsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ficherors_lists_total",
			Help: "Lists handled by operation and result",
		},
		[]string{"operation", "result"}, // process|verify|read , ok|error
	)

	RowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ficherors_rows_total",
			Help: "Data rows transformed",
		},
	)

	PhonesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ficherors_phones_total",
			Help: "Destination numbers by normalization outcome",
		},
		[]string{"outcome"}, // applied|no_match|unknown_country
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ficherors_jobs_total",
			Help: "Async jobs lifecycle counter by stage",
		},
		[]string{"stage"}, // queued|done|failed
	)

	ProcessSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ficherors_process_duration_seconds",
			Help:    "Time spent turning one list into destinations",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// MustRegister registers every collector; repeated registration is a no-op.
func MustRegister(r prometheus.Registerer) {
	for _, c := range []prometheus.Collector{ListsTotal, RowsTotal, PhonesTotal, JobsTotal, ProcessSeconds} {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}
