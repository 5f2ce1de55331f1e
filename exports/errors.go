package exports

import (
	"errors"
	"fmt"
)

// Error codes shared by the reader, the provisioner and the agent API.
const (
	ErrIO                = "IO_ERROR"
	ErrDirectoryCreation = "DIRECTORY_CREATION_ERROR"
	ErrPermission        = "PERMISSION_ERROR"
	ErrServiceReload     = "SERVICE_RELOAD_ERROR"
	ErrUsage             = "USAGE_ERROR"
	ErrInvalidArgument   = "INVALID_ARGUMENT"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a coded error. err may be nil.
func NewError(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}
