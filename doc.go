// Package md2book builds books from markdown sources.
//
// # Quick Start
//
// Load the book configuration, create a Builder rooted at the book
// directory, and build a target:
//
//	cfg, err := config.LoadConfig("book.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b, err := md2book.NewBuilder(".", cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := b.Build(ctx, "web")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Output) // build/web/book.html
//
// # Build Pipeline
//
// A build follows these stages:
//
//  1. Discovery of foreword*.md, ch<N>.md, the reference list and app[A-D].md
//  2. Backend prerequisite check (Pandoc, PDF engine, fonts)
//  3. Emoji compliance gate over every source; nothing is written on failure
//  4. Per-file rewrite passes, run concurrently (sections, illustrations,
//     {REPO_BASE} links, callouts)
//  5. Intermediate files written to build/intermediate, images copied to
//     build/assets/images
//  6. Rendering of the ordered intermediates by the target's backend
//
// # Backends
//
// Targets render with Pandoc by default. A target with backend "builtin"
// renders HTML in-process with goldmark, or PDF through headless Chrome:
//
//	targets:
//	  preview:
//	    directory: build/preview
//	    format: pdf
//	    backend: builtin
//
// Use WithBackend to substitute a backend, for instance in tests.
//
// # Errors
//
// Failures wrap one of the package sentinels (ErrEmojiValidation,
// ErrMissingPrerequisite, ErrBackend, ErrFilesystem, ErrNoSources,
// ErrUnknownTarget) and can be matched with errors.Is. Emoji violations are
// returned as a *ValidationError listing every offending character.
package md2book
