package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var transErr *tracking.InvalidTransitionError
	if errors.As(err, &transErr) {
		return NewCLIError(
			transErr.Error(),
			fmt.Sprintf("Node '%s' is '%s'; check its state with 'stepwise status'", transErr.Path, transErr.From),
			err,
		)
	}

	switch {
	case errors.Is(err, storage.ErrNoDocument):
		return NewCLIError("no plan imported", "Run 'stepwise import <plan.md>' first", err)
	case errors.Is(err, storage.ErrNoState):
		return NewCLIError("no execution state found", "Run 'stepwise import <plan.md>' to start tracking", err)
	}

	return err
}
