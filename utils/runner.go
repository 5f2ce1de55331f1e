package utils

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external commands and returns their combined output.
// Every host tool the manager drives (exportfs, systemctl, chown, chmod)
// goes through it so tests can swap in MockRunner.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) (string, error)
}

// ShellRunner implements Runner using os/exec.
type ShellRunner struct{}

func (r *ShellRunner) Run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w: %s", bin, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// CommandLine renders bin and args the way they appear in logs.
func CommandLine(bin string, args ...string) string {
	return strings.TrimSpace(bin + " " + strings.Join(args, " "))
}
