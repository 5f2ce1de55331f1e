package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erikmagkekse/nfs-manager/agent"
	"github.com/erikmagkekse/nfs-manager/exports"
	"github.com/erikmagkekse/nfs-manager/model"
	"github.com/erikmagkekse/nfs-manager/nfs"
	"github.com/erikmagkekse/nfs-manager/provision"
	"github.com/erikmagkekse/nfs-manager/utils"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	setupLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func setupLogger(w *os.File) {
	level := zerolog.InfoLevel
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		if parsed, err := zerolog.ParseLevel(l); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    !term.IsTerminal(int(w.Fd())),
	}).With().Timestamp().Logger()
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(ctx, args); err != nil {
		if !exports.HasCode(err, exports.ErrUsage) {
			log.Error().Err(err).Str("code", exports.Code(err)).Msg("command failed")
		}
		return 1
	}
	return 0
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:           model.AppName,
		Usage:          "manage NFS exports on this host",
		Version:        version,
		Writer:         stdout,
		ErrWriter:      stderr,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action: func(_ context.Context, _ *cli.Command) error {
			usage(stderr)
			return exports.NewError(exports.ErrUsage, nil, "no command given")
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print the exports file as JSON",
				Action: listAction(stdout),
			},
			{
				Name:      "setup",
				Usage:     "create a directory and export it to a client",
				ArgsUsage: "<path> <client-ip>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "label written above the export line"},
				},
				Action: setupAction(stdout, stderr),
			},
			{
				Name:   "status",
				Usage:  "print exports active in the kernel as JSON",
				Action: statusAction(stdout),
			},
			{
				Name:   "agent",
				Usage:  "start the HTTP agent",
				Action: agentAction,
			},
		},
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s <command>

Commands:
  list                                  Print the exports file as JSON
  setup [--name <label>] <path> <ip>    Create and export a directory
  status                                Print exports active in the kernel
  agent                                 Start the HTTP agent
`, model.AppName)
}

func listAction(stdout io.Writer) cli.ActionFunc {
	return func(_ context.Context, _ *cli.Command) error {
		cfg, err := env.ParseAs[model.ExportsConfig]()
		if err != nil {
			return fmt.Errorf("parse exports config: %w", err)
		}

		records, err := exports.ReadExports(cfg.File, exports.ReadOptions{IncludeUnnamed: cfg.IncludeUnnamed})
		if err != nil {
			return err
		}
		out, err := exports.Marshal(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}
}

func setupAction(stdout, stderr io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != 2 {
			fmt.Fprintf(stderr, "Expected exactly two arguments!\nUsage: %s setup [--name <label>] <path> <client-ip>\n", model.AppName)
			return exports.NewError(exports.ErrUsage, nil, "setup needs <path> <client-ip>, got %d arguments", cmd.Args().Len())
		}

		cfg, err := env.ParseAs[model.ProvisionConfig]()
		if err != nil {
			return fmt.Errorf("parse provision config: %w", err)
		}
		p, err := provision.New(cfg, &utils.ShellRunner{})
		if err != nil {
			return err
		}

		res, err := p.Provision(ctx, provision.Request{
			Path:   cmd.Args().Get(0),
			Client: cmd.Args().Get(1),
			Name:   cmd.String("name"),
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "Done! Exported %s to %s.\n", res.Path, res.ClientSpec)
		fmt.Fprintf(stdout, "Mount it on your own computer with:\n  %s\n", res.MountHint)
		return nil
	}
}

func statusAction(stdout io.Writer) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		cfg, err := env.ParseAs[model.ProvisionConfig]()
		if err != nil {
			return fmt.Errorf("parse provision config: %w", err)
		}

		active, err := nfs.NewKernelExporter(cfg.ExportfsBin, &utils.ShellRunner{}).ListExports(ctx)
		if err != nil {
			return err
		}
		if active == nil {
			active = []nfs.ActiveExport{}
		}
		return json.NewEncoder(stdout).Encode(active)
	}
}

func agentAction(ctx context.Context, _ *cli.Command) error {
	log.Info().Str("version", version).Str("commit", commit).Msg("starting nfs-manager agent")

	cfg, err := env.ParseAs[model.AgentConfig]()
	if err != nil {
		return fmt.Errorf("parse agent config: %w", err)
	}

	a := agent.NewAgent(&cfg, version, commit)
	if err := a.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}
