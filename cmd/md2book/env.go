package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-md2book/internal/render"
)

// envDebug enables runtime diagnostics on stderr.
const envDebug = "MD2BOOK_DEBUG"

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	// Backend renders every target when set. Nil uses the configured backends.
	Backend render.Backend
	// Runner executes external tools for doctor.
	Runner render.CommandRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Runner: &render.ExecRunner{},
	}
}
