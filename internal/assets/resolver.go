package assets

import (
	"errors"
	"slices"

	"github.com/alnah/go-md2doc/internal/model"
)

// AssetResolver looks assets up in an optional custom directory, then in
// the built-in set. Only a not-found result falls through; a custom theme
// that fails to parse is an error, not a reason to use the built-in one.
type AssetResolver struct {
	custom   *FilesystemLoader
	embedded *EmbeddedLoader
}

// NewAssetResolver builds a resolver over dir. An empty dir means built-in
// assets only.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{embedded: NewEmbeddedLoader()}
	if dir == "" {
		return r, nil
	}
	custom, err := NewFilesystemLoader(dir)
	if err != nil {
		return nil, err
	}
	r.custom = custom
	return r, nil
}

// layers returns the loaders in lookup order.
func (r *AssetResolver) layers() []AssetLoader {
	if r.custom == nil {
		return []AssetLoader{r.embedded}
	}
	return []AssetLoader{r.custom, r.embedded}
}

// LoadStyle implements AssetLoader.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return firstFound(r.layers(), func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTheme implements AssetLoader.
func (r *AssetResolver) LoadTheme(name string) (model.Theme, error) {
	return firstFound(r.layers(), func(l AssetLoader) (model.Theme, error) {
		return l.LoadTheme(name)
	})
}

// ThemeNames lists every resolvable theme once, sorted.
func (r *AssetResolver) ThemeNames() []string {
	names := r.embedded.ThemeNames()
	if r.custom != nil {
		names = append(names, r.custom.ThemeNames()...)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// firstFound returns the result of the first layer that has the asset.
func firstFound[T any](layers []AssetLoader, load func(AssetLoader) (T, error)) (T, error) {
	var (
		zero T
		err  error
	)
	for _, l := range layers {
		var v T
		if v, err = load(l); err == nil {
			return v, nil
		}
		if !isNotFound(err) {
			return zero, err
		}
	}
	return zero, err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrThemeNotFound)
}

var _ AssetLoader = (*AssetResolver)(nil)
