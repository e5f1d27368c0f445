package main

import (
	"context"
	"fmt"
	"io"

	md2book "github.com/alnah/go-md2book"
	"github.com/alnah/go-md2book/internal/linkcheck"
)

// runValidateCmd reports emoji usage and fails on unapproved emoji.
func runValidateCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseCheckFlags("validate", args, env.Stderr)
	if err != nil {
		return err
	}
	b, _, err := newBuilder(f.common, env)
	if err != nil {
		return err
	}

	report, err := b.ValidateEmoji(ctx)
	if err != nil {
		return err
	}
	printEmojiReport(env.Stdout, report, f.common)

	if _, violations := report.Totals(); violations > 0 {
		return fmt.Errorf("%w: %d unapproved emoji", md2book.ErrEmojiValidation, violations)
	}
	return nil
}

// printEmojiReport prints per-file detail, then a summary.
func printEmojiReport(w io.Writer, r *md2book.EmojiReport, f commonFlags) {
	approved, violations := r.Totals()
	if !f.quiet {
		for _, file := range r.Files {
			bad := file.Violations()
			good := len(file.Occurrences) - len(bad)
			if len(bad) == 0 && !f.verbose {
				continue
			}
			fmt.Fprintf(w, "%s: %d approved, %d unapproved\n", file.File, good, len(bad))
			for _, o := range file.Occurrences {
				if o.Approved && !f.verbose {
					continue
				}
				status := "unapproved"
				if o.Approved {
					status = "ok"
				}
				fmt.Fprintf(w, "  %d:%d %s (%s) %s\n", o.Line, o.Column, o.Char, o.Unicode(), status)
			}
		}
	}
	fmt.Fprintf(w, "Files: %d, approved: %d, unapproved: %d\n", len(r.Files), approved, violations)
}

// runStripCmd removes unapproved emoji from the sources in place.
func runStripCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseCheckFlags("strip", args, env.Stderr)
	if err != nil {
		return err
	}
	b, _, err := newBuilder(f.common, env)
	if err != nil {
		return err
	}

	results, err := b.StripEmoji(ctx, f.dryRun)
	verb := "removed"
	if f.dryRun {
		verb = "would remove"
	}
	total := 0
	for _, r := range results {
		total += r.Removed
		if !f.common.quiet {
			fmt.Fprintf(env.Stdout, "%s: %s %d\n", r.File, verb, r.Removed)
		}
	}
	if err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Files changed: %d, emoji %s: %d\n", len(results), verb, total)
	}
	return nil
}

// runLinksCmd checks the links of every source.
func runLinksCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseCheckFlags("links", args, env.Stderr)
	if err != nil {
		return err
	}
	b, _, err := newBuilder(f.common, env)
	if err != nil {
		return err
	}

	report, err := b.CheckLinks(ctx)
	if err != nil {
		return err
	}
	printLinkReport(env.Stdout, report, f.common)

	failed := len(report.Errors())
	if f.strict {
		failed += len(report.Warnings())
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d links", ErrBrokenLinks, failed, report.Links)
	}
	return nil
}

// printLinkReport prints errors, warnings when verbose, then a summary.
func printLinkReport(w io.Writer, r *linkcheck.Report, f commonFlags) {
	if !f.quiet {
		for _, i := range r.Issues {
			if i.Severity == linkcheck.SeverityWarning && !f.verbose {
				continue
			}
			fmt.Fprintf(w, "%s: %s\n", i.Severity, i)
		}
	}
	fmt.Fprintf(w, "Files: %d, links: %d, errors: %d, warnings: %d\n",
		r.Files, r.Links, len(r.Errors()), len(r.Warnings()))
}
