// Package model defines the format-agnostic document model shared by the
// markdown pipeline and the renderers.
//
// A document is an ordered sequence of blocks. Block is a closed sum type:
// every variant is a struct in this package and renderers branch on it with
// a type switch. Inline content is a tree of styled runs whose top-level
// Content fields, concatenated, reproduce the visible text of the block.
package model
