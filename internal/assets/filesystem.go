package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alnah/go-md2doc/internal/model"
)

// FilesystemLoader serves assets from a directory on disk. Every read goes
// through an os.Root, so symlinks cannot lead outside the directory.
type FilesystemLoader struct {
	dir string
}

// NewFilesystemLoader checks that dir is a readable directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrInvalidBasePath, dir)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidBasePath, dir)
	}

	l := &FilesystemLoader{dir: dir}
	err = l.withRoot(func(root *os.Root) error {
		_, err := fs.ReadDir(root.FS(), ".")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return l, nil
}

func (l *FilesystemLoader) withRoot(fn func(*os.Root) error) error {
	root, err := os.OpenRoot(l.dir)
	if err != nil {
		return err
	}
	defer root.Close()
	return fn(root)
}

// read returns fs.ErrNotExist for missing files and ErrPathTraversal when
// path is a symlink pointing out of the directory.
func (l *FilesystemLoader) read(path string) ([]byte, error) {
	var data []byte
	err := l.withRoot(func(root *os.Root) error {
		var err error
		data, err = fs.ReadFile(root.FS(), path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if info, lerr := root.Lstat(path); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s", ErrPathTraversal, path)
		}
		return fmt.Errorf("%w: %v", ErrAssetRead, err)
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// LoadStyle implements AssetLoader.
func (l *FilesystemLoader) LoadStyle(name string) (string, error) {
	return readStyle(l.read, name)
}

// LoadTheme implements AssetLoader. themes/<name>.yaml wins over .yml.
func (l *FilesystemLoader) LoadTheme(name string) (model.Theme, error) {
	return readTheme(l.read, name)
}

// ThemeNames lists the themes of the directory, unsorted.
func (l *FilesystemLoader) ThemeNames() []string {
	var names []string
	_ = l.withRoot(func(root *os.Root) error {
		names = listThemes(root.FS())
		return nil
	})
	return names
}

var _ AssetLoader = (*FilesystemLoader)(nil)
