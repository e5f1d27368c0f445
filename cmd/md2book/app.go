package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	flag "github.com/spf13/pflag"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/config"
	"github.com/alnah/go-md2book/internal/fileutil"
	"github.com/alnah/go-md2book/internal/hints"
)

// defaultConfigFile is looked up in the book root when --config is not set.
const defaultConfigFile = "book.yaml"

// CLI sentinel errors.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrBrokenLinks = errors.New("broken links")
)

// runMain dispatches a command and returns its exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "build":
		err = runBuildCmd(ctx, rest, env)
	case "validate":
		err = runValidateCmd(ctx, rest, env)
	case "strip":
		err = runStripCmd(ctx, rest, env)
	case "links":
		err = runLinksCmd(ctx, rest, env)
	case "config":
		err = runConfigCmd(rest, env)
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "md2book %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
	}
	return exitCodeFor(err)
}

// newLogger returns a text logger on w. --verbose lowers the level to
// debug, --quiet raises it to warn.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelWarn
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads --config, else <root>/book.yaml when present, else the
// defaults. Environment overrides apply last.
func loadConfig(f commonFlags, env *Environment) (*config.Config, error) {
	name := f.config
	if name == "" {
		root, err := filepath.Abs(f.root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", md2book.ErrFilesystem, err)
		}
		name = filepath.Join(root, defaultConfigFile)
		if !fileutil.FileExists(name) {
			cfg := config.DefaultConfig()
			cfg.ApplyEnv(env.Getenv)
			return cfg, cfg.Validate()
		}
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchedPaths(name)))
		}
		return nil, err
	}
	cfg.ApplyEnv(env.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newBuilder loads the configuration and creates a Builder for the
// command's book root.
func newBuilder(f commonFlags, env *Environment, opts ...md2book.Option) (*md2book.Builder, *config.Config, error) {
	cfg, err := loadConfig(f, env)
	if err != nil {
		return nil, nil, err
	}
	base := []md2book.Option{
		md2book.WithLogger(newLogger(env.Stderr, f)),
		md2book.WithClock(env.Now),
	}
	if env.Backend != nil {
		base = append(base, md2book.WithBackend(env.Backend))
	}
	b, err := md2book.NewBuilder(f.root, cfg, append(base, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}
