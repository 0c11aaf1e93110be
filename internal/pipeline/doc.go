// Package pipeline turns markdown source into the document model.
//
// One generation pass runs these stages in order:
//   - Preprocessing (line ending normalization, byte order mark removal)
//   - Block parsing, with inline parsing of each block's text
//   - Anchor assignment for headings against a per-pass registry
//   - Table of contents extraction for a heading level range
//   - Page-break estimation from the raw source and theme metrics
//
// Every stage is a pure function of its input except the anchor registry,
// which is created by Process for a single pass and never shared. Parsing
// never fails: malformed markdown degrades to literal text.
//
// Rendering is handled by the render packages, which consume the resulting
// model.Document without re-parsing.
package pipeline
