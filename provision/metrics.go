package provision

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	provisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfs_manager",
		Subsystem: "provision",
		Name:      "requests_total",
		Help:      "Total provisioning runs by result.",
	}, []string{"status"})

	stepOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfs_manager",
		Subsystem: "provision",
		Name:      "step_operations_total",
		Help:      "Total provisioning steps by step and status.",
	}, []string{"step", "status"})

	stepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nfs_manager",
		Subsystem: "provision",
		Name:      "step_duration_seconds",
		Help:      "Provisioning step duration in seconds.",
		Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30},
	}, []string{"step"})
)

func init() {
	prometheus.MustRegister(
		provisionsTotal,
		stepOpsTotal,
		stepDuration,
	)
}

func observeStep(step Step, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	stepOpsTotal.WithLabelValues(string(step), status).Inc()
	stepDuration.WithLabelValues(string(step)).Observe(time.Since(start).Seconds())
}
