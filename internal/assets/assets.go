package assets

import "github.com/alnah/go-md2doc/internal/model"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTheme loads a built-in theme by name.
func LoadTheme(name string) (model.Theme, error) {
	return defaultLoader.LoadTheme(name)
}

// ThemeNames lists the built-in themes, sorted.
func ThemeNames() []string {
	return defaultLoader.ThemeNames()
}
