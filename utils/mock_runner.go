package utils

import "context"

// MockRunner records calls and returns preconfigured responses.
// Each recorded call is the binary followed by its arguments.
// Set RunFn for dynamic per-call responses, otherwise Out/Err are returned.
type MockRunner struct {
	Calls [][]string
	Out   string
	Err   error
	RunFn func(bin string, args []string) (string, error)
}

func (m *MockRunner) Run(_ context.Context, bin string, args ...string) (string, error) {
	m.Calls = append(m.Calls, append([]string{bin}, args...))
	if m.RunFn != nil {
		return m.RunFn(bin, args)
	}
	return m.Out, m.Err
}

// Commands returns the recorded calls joined into single command lines.
func (m *MockRunner) Commands() []string {
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = CommandLine(c[0], c[1:]...)
	}
	return out
}
