package md2doc

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown   = errors.New("markdown content cannot be empty")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrRender          = errors.New("rendering failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrPrintPDF        = errors.New("browser PDF printing failed")
	ErrConverterClosed = errors.New("converter pool is closed")

	// Theme and TOC validation errors.
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidTOCRange = errors.New("invalid TOC range")

	// Asset loading errors.
	ErrThemeNotFound    = errors.New("theme not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
