// Package yamlutil is the single entry point to the YAML library. Config
// files and theme files are decoded strictly; the theme dump is encoded with
// a fixed indent.
package yamlutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds decoded documents, in bytes.
var MaxInputSize = 1 << 20

// Indent is the number of spaces per nesting level of encoded output.
const Indent = 2

var (
	ErrEmptyInput     = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrInputTooLarge  = errors.New("yamlutil: document too large")
)

// UnmarshalStrict decodes data into v. Keys with no matching field are
// errors, so typos in config and theme files surface instead of being
// silently dropped.
func UnmarshalStrict(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrEmptyInput
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Encode writes v to w as one YAML document.
func Encode(w io.Writer, v any) (err error) {
	enc := yaml.NewEncoder(w, yaml.Indent(Indent))
	defer func() {
		if cerr := enc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("yamlutil: %w", cerr)
		}
	}()
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
