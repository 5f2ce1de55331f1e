package nfs

import (
	"context"
	"time"

	"github.com/erikmagkekse/nfs-manager/utils"
	"github.com/rs/zerolog/log"
)

type systemdManager struct {
	bin string
	cmd utils.Runner
}

func NewSystemdManager(bin string, cmd utils.Runner) ServiceManager {
	return &systemdManager{bin: bin, cmd: cmd}
}

func (m *systemdManager) Restart(ctx context.Context, unit string) error {
	start := time.Now()
	_, err := m.cmd.Run(ctx, m.bin, "restart", unit)
	observe("service_restart", start, err)
	if err != nil {
		return err
	}
	log.Debug().Str("unit", unit).Dur("duration", time.Since(start)).Msg("service restarted")
	return nil
}
