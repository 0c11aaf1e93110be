package fileutil

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// TempFilePrefix starts the name of every file created by WriteTempFile.
const TempFilePrefix = "md2doc-"

// ValidateExtension accepts a bare extension such as "html".
func ValidateExtension(ext string) error {
	if ext == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(ext, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// WriteTempFile stores content in a new file of the temp directory. The
// caller removes the file with cleanup once done; on error nothing is left
// behind and cleanup is nil.
func WriteTempFile(content, ext string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(ext); err != nil {
		return "", nil, err
	}

	f, err := os.CreateTemp("", TempFilePrefix+"*."+ext)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	remove := func() { _ = os.Remove(path) }

	_, err = f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		remove()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, remove, nil
}
