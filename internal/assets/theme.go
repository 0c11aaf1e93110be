package assets

import (
	"fmt"

	"github.com/alnah/go-md2doc/internal/model"
	"github.com/alnah/go-md2doc/internal/yamlutil"
)

// ParseTheme decodes a YAML theme, fills unset fields from the default theme
// and validates the result. Unknown fields are rejected. name is used when
// the file does not set one.
func ParseTheme(name string, data []byte) (model.Theme, error) {
	var th model.Theme
	if err := yamlutil.UnmarshalStrict(data, &th); err != nil {
		return model.Theme{}, fmt.Errorf("%w: %s: %v", ErrThemeParse, name, err)
	}
	if th.Name == "" {
		th.Name = name
	}
	th = th.WithDefaults()
	if err := th.Validate(); err != nil {
		return model.Theme{}, err
	}
	return th, nil
}
