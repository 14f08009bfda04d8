package errors

import (
	"errors"
	"log/slog"
	"sort"
)

// ExitCoder is implemented by error kinds that map to a distinct process exit
// code.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitCode returns the process exit code for err: the code of the innermost
// ExitCoder in its tree, or 1 for any other error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	return 1
}

// Log logs an error using the default slog logger, extracting metadata if
// it's a StructuredError.
func Log(err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		slog.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)

	cause := serr.metadata["cause"]
	if serr.cause != nil {
		cause = serr.cause
	}
	if cause != nil {
		args = append(args, "cause", cause)
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != "cause" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	slog.Error(serr.Error(), args...)
}
