package document

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// parseTOML parses TOML data into the generic tree. go-toml already decodes
// tables as map[string]any, arrays as []any and integers as int64, which is
// exactly the tree shape.
func parseTOML(path string, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		pe := &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return nil, pe
	}

	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
