package agent

import (
	"context"
	"time"

	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/nfs"

	"github.com/rs/zerolog/log"
)

// exportfs -v prints the "*" client as "<world>".
const worldClient = "<world>"

// Reconciler re-applies the exports file when the kernel is missing an
// export it lists, e.g. after someone ran "exportfs -ua" by hand.
type Reconciler struct {
	File     string
	Exporter nfs.Exporter
}

// Start runs a reconcile immediately and then every interval until ctx is done.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	go func() {
		r.reconcile(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.reconcile(ctx)
			}
		}
	}()
}

// reconcile returns the number of configured pairs that were not active.
func (r *Reconciler) reconcile(ctx context.Context) int {
	configured, err := exports.ReadExports(r.File, exports.ReadOptions{IncludeUnnamed: true})
	if err != nil {
		log.Error().Err(err).Msg("nfs reconciler: failed to read exports file")
		return 0
	}
	active, err := r.Exporter.ListExports(ctx)
	if err != nil {
		log.Error().Err(err).Msg("nfs reconciler: failed to list exports")
		return 0
	}

	// path -> set of clients
	actual := map[string]map[string]bool{}
	for _, e := range active {
		if actual[e.Path] == nil {
			actual[e.Path] = map[string]bool{}
		}
		actual[e.Path][e.Client] = true
	}

	var missing int
	for _, rec := range configured {
		client := rec.ClientSpec
		if client == "*" {
			client = worldClient
		}
		if actual[rec.Path][client] {
			continue
		}
		log.Warn().Str("path", rec.Path).Str("client", rec.ClientSpec).Msg("nfs reconciler: export not active")
		missing++
	}

	ConfiguredExportsGauge.Set(float64(len(configured)))
	ActiveExportsGauge.Set(float64(len(active)))
	MissingExportsGauge.Set(float64(missing))

	if missing == 0 {
		return 0
	}
	if err := r.Exporter.Refresh(ctx); err != nil {
		ReconcileRefreshTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Int("missing", missing).Msg("nfs reconciler: refresh failed")
		return missing
	}
	ReconcileRefreshTotal.WithLabelValues("success").Inc()
	log.Info().Int("missing", missing).Msg("nfs reconciler: exports refreshed")
	return missing
}
