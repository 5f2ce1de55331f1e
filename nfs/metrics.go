package nfs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfs_manager",
		Subsystem: "nfs",
		Name:      "command_operations_total",
		Help:      "Total exportfs/systemctl invocations by operation and status.",
	}, []string{"operation", "status"})

	commandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nfs_manager",
		Subsystem: "nfs",
		Name:      "command_duration_seconds",
		Help:      "exportfs/systemctl invocation duration in seconds.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})
)

func init() {
	prometheus.MustRegister(
		commandOpsTotal,
		commandDuration,
	)
}

func observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	commandOpsTotal.WithLabelValues(op, status).Inc()
	commandDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
