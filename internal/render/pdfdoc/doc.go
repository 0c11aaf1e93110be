// Package pdfdoc renders a document model to a fixed page layout PDF with
// gofpdf. Headings become outline bookmarks and internal link targets, page
// break sentinels start new pages, and a theme footer is drawn on every page.
//
// Core PDF fonts are used unless the theme names a TrueType file for a role.
// Core fonts only cover Windows-1252, so emoji clusters are replaced by a
// substitute glyph before text reaches the page.
package pdfdoc
