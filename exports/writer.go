package exports

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// FormatEntry renders what Append writes for rec. Every line is preceded by
// a newline so a file without a trailing newline stays well formed.
func FormatEntry(rec Record) string {
	var b strings.Builder
	if rec.Name != "" {
		b.WriteString("\n# " + nameMarker + " " + rec.Name)
	}
	b.WriteString("\n" + rec.Line())
	return b.String()
}

// Validate rejects records that would not parse back from the exports file.
func Validate(rec Record) error {
	switch {
	case rec.Path == "":
		return NewError(ErrInvalidArgument, nil, "path is required")
	case !filepath.IsAbs(rec.Path):
		return NewError(ErrInvalidArgument, nil, "path %q must be absolute", rec.Path)
	case strings.ContainsAny(rec.Path, " \t\r\n()"):
		return NewError(ErrInvalidArgument, nil, "path %q must not contain whitespace or parentheses", rec.Path)
	case rec.ClientSpec == "":
		return NewError(ErrInvalidArgument, nil, "client is required")
	case strings.ContainsAny(rec.ClientSpec, " \t\r\n()"):
		return NewError(ErrInvalidArgument, nil, "client %q must not contain whitespace or parentheses", rec.ClientSpec)
	case strings.ContainsAny(rec.Options, " \t\r\n()"):
		return NewError(ErrInvalidArgument, nil, "options %q must not contain whitespace or parentheses", rec.Options)
	case strings.ContainsAny(rec.Name, "\r\n"):
		return NewError(ErrInvalidArgument, nil, "name must be a single line")
	}
	return nil
}

// Append adds rec to the end of the exports file, creating it if missing.
// Existing content is never rewritten. The write holds an exclusive flock so
// concurrent appenders don't interleave.
func Append(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return NewError(ErrIO, err, "open exports file %s", path)
	}

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		_ = f.Close()
		return NewError(ErrIO, err, "lock exports file %s", path)
	}

	if _, err := f.WriteString(FormatEntry(rec)); err != nil {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = f.Close()
		return NewError(ErrIO, err, "append to exports file %s", path)
	}
	_ = unix.Flock(fd, unix.LOCK_UN)
	if err := f.Close(); err != nil {
		return NewError(ErrIO, err, "close exports file %s", path)
	}
	return nil
}
