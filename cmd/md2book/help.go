package main

import (
	"fmt"
	"io"
)

// commandSummaries lists the commands in help order.
var commandSummaries = []struct{ name, summary string }{
	{"build", "Build the book for one or more targets"},
	{"validate", "Report emoji usage; fail on unapproved emoji"},
	{"strip", "Remove unapproved emoji from the sources"},
	{"links", "Check links in the sources"},
	{"config", "Print the resolved configuration"},
	{"doctor", "Check prerequisites and configuration"},
	{"version", "Show version information"},
	{"help", "Show help for a command"},
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2book <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commandSummaries {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2book help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags every book command accepts.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -r, --root <dir>          Book root directory (default: .)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: <root>/book.yaml)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2book build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transform the sources into build/intermediate and render each target.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "  -t, --target <name>       Target: digital, print, pdf, web, development, epub,")
	fmt.Fprintln(w, "                            or all (repeatable, comma-separated; default: digital)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel transforms (0 = config, then CPU count)")
	fmt.Fprintln(w, "      --timeout <d>         Build timeout (e.g., 90s, 5m)")
	fmt.Fprintln(w, "      --clean               Remove build directories first")
	fmt.Fprintln(w, "      --no-clean            Keep build directories")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printCommandUsage prints usage for the non-build commands.
func printCommandUsage(w io.Writer, name string) {
	switch name {
	case "build":
		printBuildUsage(w)
		return
	case "validate":
		fmt.Fprintln(w, "Usage: md2book validate [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Scan the sources for emoji. Exits 5 when any is not approved.")
		fmt.Fprintln(w, "With --verbose, approved emoji are listed too.")
	case "strip":
		fmt.Fprintln(w, "Usage: md2book strip [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Remove unapproved emoji from the sources in place.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -n, --dry-run             Report without rewriting files")
	case "links":
		fmt.Fprintln(w, "Usage: md2book links [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check local and {REPO_BASE} links. External URLs are reported as warnings.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --strict              Fail on warnings too")
	case "config":
		fmt.Fprintln(w, "Usage: md2book config [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Print book.yaml merged over the defaults, with REPO_BASE_URL applied.")
	case "doctor":
		fmt.Fprintln(w, "Usage: md2book doctor [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Pandoc, PDF engines, Chrome, fonts and book sources.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Output as JSON")
	case "version":
		fmt.Fprintln(w, "Usage: md2book version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
		return
	case "help":
		fmt.Fprintln(w, "Usage: md2book help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
		return
	}
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	for _, c := range commandSummaries {
		if c.name == args[0] {
			printCommandUsage(env.Stdout, c.name)
			return ExitSuccess
		}
	}
	fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
	printUsage(env.Stderr)
	return ExitUsage
}
