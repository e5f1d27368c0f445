// Package pipeline implements the per-file markdown rewrite passes of a
// book build.
//
// Each source file has a Role derived once from its name (Classify). The
// Chain then applies, in order:
//   - section rewriting (unnumbered foreword, appendix titles and marker)
//   - illustration injection below the title heading
//   - {REPO_BASE} link substitution
//   - callout blockquotes to fenced divs
//
// Every pass is a pure function of the file text and the read-only Options
// of the target, so files can be transformed concurrently. Reassembly in
// book order is done with SortFiles.
package pipeline
