package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for leafctl commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2 // bad flags, unreachable store
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// printer writes command results as text lines or a single JSON document.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(opts *RootOptions, w io.Writer) *printer {
	return &printer{format: opts.Format, w: w}
}

// result prints v as JSON, or calls text to render it otherwise.
func (p *printer) result(v any, text func(w io.Writer)) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}
