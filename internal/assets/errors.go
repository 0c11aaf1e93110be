package assets

import "errors"

// Lookup failures. The resolver falls back to built-in assets only on the
// two not-found errors.
var (
	ErrStyleNotFound = errors.New("style not found")
	ErrThemeNotFound = errors.New("theme not found")
)

// Name and directory problems.
var (
	// ErrInvalidAssetName rejects names that could address another file.
	ErrInvalidAssetName = errors.New("invalid asset name")
	// ErrInvalidBasePath rejects an asset directory that cannot be read.
	ErrInvalidBasePath = errors.New("invalid asset directory")
	// ErrPathTraversal reports a symlink leading out of the asset directory.
	ErrPathTraversal = errors.New("asset escapes its directory")
)

// Content problems.
var (
	ErrAssetRead  = errors.New("reading asset")
	ErrThemeParse = errors.New("parsing theme")
)
