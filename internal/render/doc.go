// Package render turns the ordered intermediate files of a book into the
// final artifact.
//
// # Backends
//
//	Backend (interface)
//	    │
//	    ├── PandocBackend   - runs the pandoc CLI (PDF via a LaTeX engine, HTML, EPUB)
//	    ├── HTMLBackend     - goldmark in-process, single standalone HTML page
//	    └── ChromeBackend   - HTMLBackend output printed to PDF by headless Chrome
//
// ForTarget picks the backend for a configured target. Every backend first
// verifies its prerequisites with Check, then renders with Render; failures
// of the external tool are returned with its stderr and are never retried.
package render
