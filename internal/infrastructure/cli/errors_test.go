package cli

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{
			name: "invalid transition",
			err: &tracking.InvalidTransitionError{
				Path: "1.1.1", From: tracking.StatusBlocked, To: tracking.StatusDone,
				Reason: "event not allowed",
			},
			wantHint: "stepwise status",
		},
		{
			name:     "no document",
			err:      fmt.Errorf("load: %w", storage.ErrNoDocument),
			wantHint: "stepwise import",
		},
		{
			name:     "no state",
			err:      storage.ErrNoState,
			wantHint: "start tracking",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)

			var cliErr *CLIError
			if !errors.As(mapped, &cliErr) {
				t.Fatalf("expected CLIError, got %T", mapped)
			}
			if !strings.Contains(cliErr.Hint, tt.wantHint) {
				t.Errorf("hint = %q, want it to mention %q", cliErr.Hint, tt.wantHint)
			}
			if cliErr.ExitCode != 1 {
				t.Errorf("exit code = %d, want 1", cliErr.ExitCode)
			}
			if !errors.Is(mapped, tt.err) && cliErr.Unwrap() == nil {
				t.Error("original error lost")
			}
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	if MapError(nil) != nil {
		t.Error("nil should map to nil")
	}

	plain := errors.New("something else")
	if MapError(plain) != plain {
		t.Error("unmapped errors should pass through unchanged")
	}
}
