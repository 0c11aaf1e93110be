package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2doc/internal/fileutil"
)

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	const doc = "<!DOCTYPE html><html><body><h1 id=\"café\">Café</h1></body></html>"

	path, cleanup, err := fileutil.WriteTempFile(doc, "html")
	if err != nil {
		t.Fatalf("WriteTempFile() unexpected error: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, fileutil.TempFilePrefix) || filepath.Ext(name) != ".html" {
		t.Errorf("WriteTempFile() path = %q, want %s*.html", path, fileutil.TempFilePrefix)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() unexpected error: %v", err)
	}
	if string(data) != doc {
		t.Errorf("content = %q, want %q", data, doc)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Errorf("file %s still exists after cleanup", path)
	}
}

func TestWriteTempFile_Extension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext     string
		wantErr error
	}{
		{"", fileutil.ErrExtensionEmpty},
		{"../html", fileutil.ErrExtensionPathTraversal},
		{`..\html`, fileutil.ErrExtensionPathTraversal},
		{"html\x00.exe", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()

			path, cleanup, err := fileutil.WriteTempFile("x", tt.ext)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WriteTempFile(%q) error = %v, want %v", tt.ext, err, tt.wantErr)
			}
			if path != "" || cleanup != nil {
				t.Errorf("WriteTempFile(%q) = %q, cleanup set; want nothing on error", tt.ext, path)
			}
		})
	}
}

// Changes TMPDIR, so not parallel.
func TestWriteTempFile_MissingTempDir(t *testing.T) {
	t.Setenv("TMPDIR", filepath.Join(t.TempDir(), "gone"))

	_, cleanup, err := fileutil.WriteTempFile("x", "html")
	if err == nil || !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %v, want creating temp file", err)
	}
	if cleanup != nil {
		t.Error("cleanup set on error")
	}
}
