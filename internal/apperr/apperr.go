// Package apperr defines the coded errors surfaced by setup, process
// supervision and the transform pipeline.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Code identifies a class of failure.
type Code string

const (
	InputTooLarge  Code = "INPUT_TOO_LARGE"
	InvalidRequest Code = "INVALID_REQUEST"
	CliUnavailable Code = "CLI_UNAVAILABLE"
	CliFailed      Code = "CLI_FAILED"
	Timeout        Code = "TIMEOUT"
	SetupFailed    Code = "SETUP_FAILED"
	LoginRequired  Code = "LOGIN_REQUIRED"
	LoginTimeout   Code = "LOGIN_TIMEOUT"
	Canceled       Code = "CANCELED"
	NotFound       Code = "NOT_FOUND"
)

// Setup stages.
const (
	StageDownload   = "download"
	StageExtract    = "extract"
	StageInstall    = "install"
	StageCliInstall = "cli-install"
	StageLogin      = "login"
)

type Error struct {
	Code    Code
	Stage   string
	Message string

	// Set for CliFailed only.
	ExitCode int
	Stderr   string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Stage != "" {
		b.WriteString(" [")
		b.WriteString(e.Stage)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err carries code. InputTooLarge also matches InvalidRequest.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return code == InvalidRequest && e.Code == InputTooLarge
}

// CodeOf returns the code of the outermost *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

func NewInvalidRequest(msg string) *Error {
	return &Error{Code: InvalidRequest, Message: msg}
}

func NewInputTooLarge(max, actual int) *Error {
	return &Error{
		Code:    InputTooLarge,
		Message: fmt.Sprintf("input exceeds %d characters (got %d)", max, actual),
	}
}

func NewCliUnavailable(msg string) *Error {
	return &Error{Code: CliUnavailable, Message: msg}
}

func NewCliFailed(exitCode int, stderr string) *Error {
	stderr = strings.TrimSpace(stderr)
	return &Error{
		Code:     CliFailed,
		Message:  fmt.Sprintf("exited with code %d: %s", exitCode, stderr),
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

func NewTimeout(op string, limit time.Duration) *Error {
	return &Error{
		Code:    Timeout,
		Message: fmt.Sprintf("%s timed out after %d seconds", op, int(limit.Seconds())),
		Err:     context.DeadlineExceeded,
	}
}

func NewSetupFailed(stage string, msg string, err error) *Error {
	return &Error{Code: SetupFailed, Stage: stage, Message: msg, Err: err}
}

func NewLoginRequired(msg string) *Error {
	return &Error{Code: LoginRequired, Stage: StageLogin, Message: msg}
}

func NewLoginTimeout(limit time.Duration) *Error {
	return &Error{
		Code:    LoginTimeout,
		Stage:   StageLogin,
		Message: fmt.Sprintf("login not completed within %s", limit),
	}
}

// NewCanceled wraps the context error so errors.Is(err, context.Canceled) holds.
func NewCanceled(op string, cause error) *Error {
	if cause == nil {
		cause = context.Canceled
	}
	return &Error{Code: Canceled, Message: op + " canceled", Err: cause}
}

func NewNotFound(what string) *Error {
	return &Error{Code: NotFound, Message: what + " not found"}
}

// HTTPStatus maps err onto a response status for the local API.
func HTTPStatus(err error) int {
	code, ok := CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case InputTooLarge:
		return http.StatusRequestEntityTooLarge
	case InvalidRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case CliUnavailable:
		return http.StatusServiceUnavailable
	case CliFailed:
		return http.StatusBadGateway
	case Timeout:
		return http.StatusGatewayTimeout
	case LoginRequired:
		return http.StatusUnauthorized
	case LoginTimeout:
		return http.StatusRequestTimeout
	case Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// StageOf returns the setup stage carried by err, if any.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
