package agent

import "github.com/prometheus/client_golang/prometheus"

var (
	ConfiguredExportsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nfs_manager",
		Subsystem: "agent",
		Name:      "configured_exports",
		Help:      "Path/client pairs found in the exports file.",
	})

	ActiveExportsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nfs_manager",
		Subsystem: "agent",
		Name:      "active_exports",
		Help:      "Path/client pairs currently exported by the kernel.",
	})

	MissingExportsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nfs_manager",
		Subsystem: "agent",
		Name:      "missing_exports",
		Help:      "Configured path/client pairs not exported at the last reconcile.",
	})

	ReconcileRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nfs_manager",
		Subsystem: "agent",
		Name:      "reconcile_refresh_total",
		Help:      "exportfs refreshes triggered by the reconciler, by status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(
		ConfiguredExportsGauge,
		ActiveExportsGauge,
		MissingExportsGauge,
		ReconcileRefreshTotal,
	)
}
