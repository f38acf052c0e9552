// Package diff turns raw unified-diff text into an addressable display
// model for terminal review.
//
// Parse builds a line-indexed model carrying old/new line numbers and file
// association for every diff line; one-for-one substitutions additionally
// get word-granularity emphasis spans computed with an LCS diff. Render
// composes the parsed model with chroma syntax highlighting into a styled,
// gutter-prefixed line buffer.
//
// The package also adapts the optional delta pretty-printer: RenderWithDelta
// shells out to delta (size-capped, time-capped) and ParseDeltaLines
// heuristically recovers a parallel file/line-number table from its
// colorized output so inline comments can be addressed while delta output
// is on screen.
//
// Nothing here returns an error for malformed input: bad diff text degrades
// to plain context lines and unparseable delta lines are left unassociated.
package diff
