package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/alnah/go-md2doc/internal/model"
)

// Built-in asset names.
const (
	DefaultThemeName = "default"
	DefaultStyleName = "base"
)

// MaxAssetNameLength bounds theme and style names.
const MaxAssetNameLength = 64

// Layout of an asset tree.
const (
	stylesDir = "styles"
	themesDir = "themes"
	styleExt  = ".css"
)

// themeExts are tried in order.
var themeExts = []string{".yaml", ".yml"}

// AssetLoader loads themes and stylesheets by bare name.
type AssetLoader interface {
	// LoadStyle returns the CSS of styles/<name>.css, or ErrStyleNotFound.
	LoadStyle(name string) (string, error)

	// LoadTheme parses themes/<name>.yaml, fills unset fields from
	// model.DefaultTheme and validates it. Missing themes give
	// ErrThemeNotFound.
	LoadTheme(name string) (model.Theme, error)
}

// ValidateAssetName rejects names that are empty, longer than
// MaxAssetNameLength, or hold a separator, a dot or a NUL byte.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > MaxAssetNameLength:
		return fmt.Errorf("%w: %d chars (max %d)", ErrInvalidAssetName, len(name), MaxAssetNameLength)
	case strings.ContainsAny(name, "/\\.\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// readFunc reads a slash-separated path of an asset tree.
type readFunc func(path string) ([]byte, error)

func readStyle(read readFunc, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	data, err := read(stylesDir + "/" + name + styleExt)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readTheme(read readFunc, name string) (model.Theme, error) {
	if err := ValidateAssetName(name); err != nil {
		return model.Theme{}, err
	}
	for _, ext := range themeExts {
		data, err := read(themesDir + "/" + name + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return model.Theme{}, err
		}
		return ParseTheme(name, data)
	}
	return model.Theme{}, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
}

// listThemes returns the theme names of fsys, without extension. Missing
// directories list nothing.
func listThemes(fsys fs.FS) []string {
	entries, err := fs.ReadDir(fsys, themesDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, ext := range themeExts {
			if name, ok := strings.CutSuffix(entry.Name(), ext); ok && ValidateAssetName(name) == nil {
				names = append(names, name)
				break
			}
		}
	}
	return names
}
