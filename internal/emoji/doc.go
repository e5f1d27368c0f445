// Package emoji classifies emoji code points in book content.
//
// Scanning is per code point: a zero width joiner or a variation selector
// inside a compound glyph is reported as its own occurrence. Positions are
// 1-based; columns count code points on the line, not bytes.
package emoji
