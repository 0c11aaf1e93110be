// Package render defines the contract between the document model and the
// output formats. Each format lives in its own subpackage.
package render

import (
	"context"
	"errors"

	"github.com/alnah/go-md2doc/internal/model"
)

// ErrNilDocument is returned when a renderer is given no document.
var ErrNilDocument = errors.New("nil document")

// Renderer turns a processed document into the bytes of one output format.
// Implementations must not modify doc.
type Renderer interface {
	Render(ctx context.Context, doc *model.Document, theme model.Theme) ([]byte, error)
}

// Func adapts a function to the Renderer interface.
type Func func(ctx context.Context, doc *model.Document, theme model.Theme) ([]byte, error)

// Render calls f.
func (f Func) Render(ctx context.Context, doc *model.Document, theme model.Theme) ([]byte, error) {
	return f(ctx, doc, theme)
}
