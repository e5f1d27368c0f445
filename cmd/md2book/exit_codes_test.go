package main

// Notes:
// - exitCodeFor: we test the root, config and CLI sentinels, plus wrapped
//   errors to verify the errors.Is() chain works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/dateutil"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Validation errors (exit 5)
		{"emoji validation", md2book.ErrEmojiValidation, ExitValidation},
		{"validation error type", &md2book.ValidationError{Files: []md2book.FileViolations{{File: "ch1.md"}}}, ExitValidation},
		{"broken links", ErrBrokenLinks, ExitValidation},
		{"wrapped emoji validation", fmt.Errorf("target pdf: %w", md2book.ErrEmojiValidation), ExitValidation},

		// Backend errors (exit 4)
		{"missing prerequisite", md2book.ErrMissingPrerequisite, ExitBackend},
		{"backend", md2book.ErrBackend, ExitBackend},
		{"wrapped backend", fmt.Errorf("target epub: %w", md2book.ErrBackend), ExitBackend},

		// I/O errors (exit 3)
		{"filesystem", md2book.ErrFilesystem, ExitIO},
		{"no sources", md2book.ErrNoSources, ExitIO},
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"wrapped no sources", fmt.Errorf("target web: %w", md2book.ErrNoSources), ExitIO},

		// Usage/config errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"unknown target", md2book.ErrUnknownTarget, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid target", config.ErrInvalidTarget, ExitUsage},
		{"invalid date format", dateutil.ErrInvalidDateFormat, ExitUsage},
		{"wrapped config parse", fmt.Errorf("loading: %w", config.ErrConfigParse), ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("something unexpected"), ExitGeneral},
		{"wrapped unknown", fmt.Errorf("context: %w", errors.New("unknown")), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := exitCodeFor(tt.err)
			if got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Exit code conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	codes := []int{ExitSuccess, ExitGeneral, ExitUsage, ExitIO, ExitBackend, ExitValidation}
	seen := make(map[int]bool)
	for _, c := range codes {
		if c >= 126 {
			t.Errorf("exit code %d must be below 126", c)
		}
		if seen[c] {
			t.Errorf("duplicate exit code %d", c)
		}
		seen[c] = true
	}
}
