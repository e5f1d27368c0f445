package main

import (
	"errors"
	"os"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/dateutil"
)

// Exit codes for the md2book CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Build or check succeeded
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags or config
	ExitIO         = 3 // Sources missing, unreadable or unwritable
	ExitBackend    = 4 // Missing prerequisite or render failure
	ExitValidation = 5 // Emoji gate or link check failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Validation errors (exit 5)
	if errors.Is(err, md2book.ErrEmojiValidation) ||
		errors.Is(err, ErrBrokenLinks) {
		return ExitValidation
	}

	// Backend errors (exit 4)
	if errors.Is(err, md2book.ErrMissingPrerequisite) ||
		errors.Is(err, md2book.ErrBackend) {
		return ExitBackend
	}

	// I/O errors (exit 3)
	if errors.Is(err, md2book.ErrFilesystem) ||
		errors.Is(err, md2book.ErrNoSources) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, md2book.ErrUnknownTarget) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidTarget) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
