package main

import (
	"errors"
	"os"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/config"
)

// Process exit codes. Values above 2 stay below the shell-reserved 126.
const (
	ExitSuccess = 0
	ExitGeneral = 1 // anything unclassified
	ExitUsage   = 2 // flags, config, themes, validation
	ExitIO      = 3 // reading inputs, writing outputs
	ExitBrowser = 4 // headless Chrome of the print format
)

// exitClasses are checked in order; the first class holding an error that
// matches with errors.Is decides the code.
var exitClasses = []struct {
	code int
	errs []error
}{
	{ExitBrowser, []error{
		md2doc.ErrBrowserConnect, md2doc.ErrPageCreate, md2doc.ErrPageLoad, md2doc.ErrPrintPDF,
	}},
	{ExitIO, []error{
		os.ErrNotExist, os.ErrPermission,
		ErrReadMarkdown, ErrWriteOutput, ErrRasterDir, ErrNoInput,
	}},
	{ExitUsage, []error{
		config.ErrConfigNotFound, config.ErrConfigParse, config.ErrFieldTooLong, config.ErrInvalidValue,
		md2doc.ErrEmptyMarkdown, md2doc.ErrUnknownFormat, md2doc.ErrInvalidTheme,
		md2doc.ErrInvalidTOCRange, md2doc.ErrThemeNotFound, md2doc.ErrInvalidAssetPath,
		ErrInvalidExtension, ErrInvalidWorkerCount, ErrInvalidTimeout, ErrUsage,
	}},
}

// exitCodeFor maps err to an exit code. Wrapping must keep %w for the
// classification to see through it.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	for _, class := range exitClasses {
		for _, target := range class.errs {
			if errors.Is(err, target) {
				return class.code
			}
		}
	}
	return ExitGeneral
}
