// Package provision creates NFS exports: directory, ownership, exports file
// entry and service reload, in that order.
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/model"
	"github.com/erikmagkekse/nfs-manager/nfs"
	"github.com/erikmagkekse/nfs-manager/utils"

	"github.com/rs/zerolog/log"
)

type Step string

const (
	StepDirectory   Step = "directory"
	StepPermissions Step = "permissions"
	StepExports     Step = "exports"
	StepReload      Step = "reload"
)

// dirMode is used for directories created by the provisioner; the
// configured mode is applied right after by chmod.
const dirMode = 0o755

type Request struct {
	Path   string `json:"path"`
	Client string `json:"client"`
	Name   string `json:"name,omitempty"`
}

type Result struct {
	Path       string `json:"path"`
	ClientSpec string `json:"client"`
	Options    string `json:"options"`
	Created    bool   `json:"created"`
	Completed  []Step `json:"completed"`
	MountHint  string `json:"mount_hint,omitempty"`
}

type Provisioner struct {
	cfg      model.ProvisionConfig
	cmd      utils.Runner
	exporter nfs.Exporter
	service  nfs.ServiceManager
	hostIP   string
}

func New(cfg model.ProvisionConfig, cmd utils.Runner) (*Provisioner, error) {
	if cfg.Options == "" {
		cfg.Options = model.DefaultExportOptions
	}
	if cfg.Exports.File == "" {
		cfg.Exports.File = model.DefaultExportsFile
	}
	if cfg.Owner == "" {
		return nil, fmt.Errorf("owner must not be empty")
	}
	if _, err := strconv.ParseUint(cfg.Mode, 8, 32); err != nil {
		return nil, fmt.Errorf("invalid mode %q: %w", cfg.Mode, err)
	}
	if cfg.ServiceUnit == "" {
		return nil, fmt.Errorf("service unit must not be empty")
	}
	hostIP, err := utils.ResolveHostIP(cfg.HostIP, cfg.HostInterface, cfg.HostCIDR)
	if err != nil {
		log.Warn().Err(err).Msg("could not resolve host ip, mount hint will use a placeholder")
	}
	return &Provisioner{
		cfg:      cfg,
		hostIP:   hostIP,
		cmd:      cmd,
		exporter: nfs.NewKernelExporter(cfg.ExportfsBin, cmd),
		service:  nfs.NewSystemdManager(cfg.SystemctlBin, cmd),
	}, nil
}

func (p *Provisioner) ExportsFile() string    { return p.cfg.Exports.File }
func (p *Provisioner) Exporter() nfs.Exporter { return p.exporter }

// Provision runs every step in order and stops at the first failure.
// Completed steps are not rolled back; they are listed in the result and
// in the failure log so an operator can clean up.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Result, error) {
	rec := exports.Record{Name: req.Name, Path: req.Path, ClientSpec: req.Client, Options: p.cfg.Options}
	if err := exports.Validate(rec); err != nil {
		return nil, err
	}

	res := &Result{Path: rec.Path, ClientSpec: rec.ClientSpec, Options: rec.Options, Completed: []Step{}}
	steps := []struct {
		step Step
		run  func(context.Context, exports.Record, *Result) error
	}{
		{StepDirectory, p.ensureDirectory},
		{StepPermissions, p.setPermissions},
		{StepExports, p.appendExport},
		{StepReload, p.reload},
	}

	for _, s := range steps {
		start := time.Now()
		err := s.run(ctx, rec, res)
		observeStep(s.step, start, err)
		if err != nil {
			provisionsTotal.WithLabelValues("error").Inc()
			log.Error().Err(err).
				Str("path", rec.Path).
				Str("client", rec.ClientSpec).
				Str("failed", string(s.step)).
				Strs("completed", stepNames(res.Completed)).
				Msg("provisioning halted, completed steps were not rolled back")
			return res, err
		}
		res.Completed = append(res.Completed, s.step)
	}

	res.MountHint = MountHint(p.hostIP, rec.Path)
	provisionsTotal.WithLabelValues("success").Inc()
	log.Info().Str("path", rec.Path).Str("client", rec.ClientSpec).Str("options", rec.Options).Bool("created", res.Created).Msg("export provisioned")
	return res, nil
}

func (p *Provisioner) ensureDirectory(_ context.Context, rec exports.Record, res *Result) error {
	if _, err := os.Lstat(rec.Path); err == nil {
		log.Info().Str("path", rec.Path).Msg("path already exists, using it")
		return nil
	}

	log.Info().Str("path", rec.Path).Msg("creating directory")
	if err := os.MkdirAll(rec.Path, dirMode); err != nil {
		return exports.NewError(exports.ErrDirectoryCreation, err, "create directory %s", rec.Path)
	}
	res.Created = true
	return nil
}

// setPermissions runs chown and chmod. Both run even when the first fails,
// and each failure is reported on its own.
func (p *Provisioner) setPermissions(ctx context.Context, rec exports.Record, _ *Result) error {
	log.Info().Str("path", rec.Path).Str("owner", p.cfg.Owner).Str("mode", p.cfg.Mode).Msg("setting ownership and permissions")

	var errs []error
	if _, err := p.cmd.Run(ctx, p.cfg.ChownBin, p.cfg.Owner, rec.Path); err != nil {
		errs = append(errs, fmt.Errorf("set owner %s: %w", p.cfg.Owner, err))
	}
	if _, err := p.cmd.Run(ctx, p.cfg.ChmodBin, p.cfg.Mode, rec.Path); err != nil {
		errs = append(errs, fmt.Errorf("set mode %s: %w", p.cfg.Mode, err))
	}
	if len(errs) > 0 {
		return exports.NewError(exports.ErrPermission, errors.Join(errs...), "could not change permissions of %s", rec.Path)
	}
	return nil
}

func (p *Provisioner) appendExport(_ context.Context, rec exports.Record, _ *Result) error {
	log.Info().Str("file", p.cfg.Exports.File).Str("line", rec.Line()).Msg("writing export entry")
	return exports.Append(p.cfg.Exports.File, rec)
}

func (p *Provisioner) reload(ctx context.Context, _ exports.Record, _ *Result) error {
	log.Info().Msg("refreshing exports")
	if err := p.exporter.Refresh(ctx); err != nil {
		return exports.NewError(exports.ErrServiceReload, err, "export refresh failed")
	}
	log.Info().Str("unit", p.cfg.ServiceUnit).Msg("restarting nfs service")
	if err := p.service.Restart(ctx, p.cfg.ServiceUnit); err != nil {
		return exports.NewError(exports.ErrServiceReload, err, "service restart of %s failed", p.cfg.ServiceUnit)
	}
	return nil
}

// MountHint is the operator hint printed after a successful provisioning.
// host may be empty.
func MountHint(host, path string) string {
	if host == "" {
		host = "<host-ip>"
	}
	return fmt.Sprintf("sudo mount %s:%s <local-dir>", host, path)
}

func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = string(s)
	}
	return names
}
