// Package assets provides the themes and stylesheets used for rendering.
//
// Three loaders implement AssetLoader:
//
//	EmbeddedLoader    built-in assets compiled into the binary
//	FilesystemLoader  a user directory (--asset-path)
//	AssetResolver     the user directory first, built-ins on a miss
//
// A directory can override a single theme and keep the others. Its layout:
//
//	<dir>/styles/<name>.css    extra CSS for the HTML output
//	<dir>/themes/<name>.yaml   page, fonts, colors and footer (.yml also works)
//
// Names never carry separators or dots, and FilesystemLoader reads through
// an os.Root, so neither a name nor a symlink reaches outside the directory.
package assets
