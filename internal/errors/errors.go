package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for reporting. It never changes the exit status:
// the process exits 0 on success and 1 on any caught error.
type Code int

const (
	CodeSuccess Code = iota
	CodeInternal
	CodeUsage
	CodeConfig
	CodeAuth
	CodeRejected
	CodeUnavailable
	CodeBlocked
)

// Error is a typed CLI error carrying a stable classification code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ExitCode maps an error to the process exit status. Everything that reaches
// the top level is fatal to the invocation, so all failures collapse to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
