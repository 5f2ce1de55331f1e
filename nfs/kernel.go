package nfs

import (
	"context"
	"strings"
	"time"

	"github.com/erikmagkekse/nfs-manager/utils"
	"github.com/rs/zerolog/log"
)

type kernelExporter struct {
	bin string
	cmd utils.Runner
}

func NewKernelExporter(bin string, cmd utils.Runner) Exporter {
	return &kernelExporter{bin: bin, cmd: cmd}
}

func (e *kernelExporter) Refresh(ctx context.Context) error {
	start := time.Now()
	_, err := e.cmd.Run(ctx, e.bin, "-a")
	observe("exportfs_refresh", start, err)
	if err != nil {
		return err
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("exports refreshed")
	return nil
}

// ListExports returns all path+client pairs currently exported.
// exportfs -v wraps long paths onto two lines:
//
//	/short/path  client(opts)
//	/very/long/path
//	        client(opts)
func (e *kernelExporter) ListExports(ctx context.Context) ([]ActiveExport, error) {
	start := time.Now()
	out, err := e.cmd.Run(ctx, e.bin, "-v")
	observe("exportfs_list", start, err)
	if err != nil {
		return nil, err
	}
	return parseExports(out), nil
}

// parseExports parses the output of exportfs -v into export entries.
func parseExports(output string) []ActiveExport {
	var exports []ActiveExport
	var currentPath string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		indented := strings.HasPrefix(line, "\t") || strings.HasPrefix(line, " ")
		switch {
		case !indented && len(fields) >= 2:
			// path and client on same line
			exports = append(exports, ActiveExport{Path: fields[0], Client: clientOf(fields[1])})
			currentPath = ""
		case !indented:
			// path only, client on next line
			currentPath = fields[0]
		case currentPath != "":
			// indented client line
			exports = append(exports, ActiveExport{Path: currentPath, Client: clientOf(fields[0])})
			currentPath = ""
		}
	}
	return exports
}

func clientOf(field string) string {
	return strings.SplitN(field, "(", 2)[0]
}
