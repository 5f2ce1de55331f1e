package nfs

import "context"

// ActiveExport is one path/client pair the kernel currently exports.
type ActiveExport struct {
	Path   string `json:"path"`
	Client string `json:"client"`
}

type Exporter interface {
	// Refresh re-reads the exports file and applies it without a service restart.
	Refresh(ctx context.Context) error
	ListExports(ctx context.Context) ([]ActiveExport, error)
}

type ServiceManager interface {
	Restart(ctx context.Context, unit string) error
}
