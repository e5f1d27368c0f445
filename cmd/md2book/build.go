package main

import (
	"context"
	"fmt"
	"io"
	"time"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/config"
)

// runBuildCmd builds the requested targets in sequence.
func runBuildCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	opts := []md2book.Option{md2book.WithWorkers(f.workers)}
	switch {
	case f.clean:
		opts = append(opts, md2book.WithClean(true))
	case f.noClean:
		opts = append(opts, md2book.WithClean(false))
	}
	b, _, err := newBuilder(f.common, env, opts...)
	if err != nil {
		return err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := env.Now()
	results, err := b.BuildAll(ctx, expandTargets(f.targets))
	for _, r := range results {
		printBuildResult(env.Stdout, r, f.common)
	}
	if err != nil {
		return err
	}
	if !f.common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "Built %d targets in %s\n", len(results), env.Now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// expandTargets replaces "all" with config.AllTargets and drops repeats,
// keeping the first occurrence.
func expandTargets(targets []string) []string {
	seen := make(map[string]bool, len(targets))
	out := make([]string, 0, len(targets))
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, t := range targets {
		if t == config.TargetAll {
			for _, name := range config.AllTargets {
				add(name)
			}
			continue
		}
		add(t)
	}
	return out
}

// printBuildResult prints one finished target.
func printBuildResult(w io.Writer, r *md2book.Result, f commonFlags) {
	if f.quiet {
		return
	}
	fmt.Fprintf(w, "%s: %s (%s, %d files, %s)\n",
		r.Target, r.Output, r.Backend, len(r.Intermediates), r.Duration.Round(time.Millisecond))
	if !f.verbose {
		return
	}
	for _, n := range r.Notes {
		fmt.Fprintf(w, "  note: %s: %s\n", n.File, n.Note)
	}
}
