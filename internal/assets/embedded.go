package assets

import (
	"embed"
	"io/fs"
	"slices"

	"github.com/alnah/go-md2doc/internal/model"
)

//go:embed styles/*.css themes/*.yaml
var builtin embed.FS

// EmbeddedLoader serves the assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader returns the built-in loader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

func (*EmbeddedLoader) read(path string) ([]byte, error) {
	return fs.ReadFile(builtin, path)
}

// LoadStyle implements AssetLoader.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return readStyle(e.read, name)
}

// LoadTheme implements AssetLoader.
func (e *EmbeddedLoader) LoadTheme(name string) (model.Theme, error) {
	return readTheme(e.read, name)
}

// ThemeNames lists the built-in themes, sorted.
func (*EmbeddedLoader) ThemeNames() []string {
	names := listThemes(builtin)
	slices.Sort(names)
	return names
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
