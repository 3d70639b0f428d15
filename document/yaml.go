package document

import (
	"math"

	"gopkg.in/yaml.v3"
)

// parseYAML parses YAML data into the generic tree. The node API is walked
// directly so mapping keys keep their literal text instead of being decoded
// into typed values.
func parseYAML(path string, data []byte) (map[string]any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}

	// An empty file produces a zero node.
	if root.Kind == 0 || len(root.Content) == 0 {
		return map[string]any{}, nil
	}

	doc := resolveAlias(root.Content[0])
	if doc == nil {
		return nil, aliasCycleError(path, root.Content[0])
	}
	switch doc.Kind {
	case yaml.MappingNode:
		return yamlMapping(path, doc, make(map[*yaml.Node]bool))
	case yaml.ScalarNode:
		if doc.Tag == "!!null" {
			return map[string]any{}, nil
		}
	}

	return nil, &SchemaError{
		Path:   path,
		Reason: "top level is not a mapping",
	}
}

// yamlMapping converts a mapping node, keying entries by the literal key
// text. active holds the containers of the current descent; an alias that
// leads back into one of them is a cycle and is reported, not followed.
func yamlMapping(path string, n *yaml.Node, active map[*yaml.Node]bool) (map[string]any, error) {
	if active[n] {
		return nil, aliasCycleError(path, n)
	}
	if len(active) >= maxNestingDepth {
		pe := errNesting(path)
		pe.Line, pe.Column = n.Line, n.Column
		return nil, pe
	}
	active[n] = true
	defer delete(active, n)

	out := make(map[string]any, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := resolveAlias(n.Content[i])
		if key == nil || key.Kind != yaml.ScalarNode {
			field := ""
			if key != nil {
				field = key.Value
			}
			return nil, &SchemaError{
				Path:   path,
				Field:  field,
				Reason: "mapping key is not a scalar",
			}
		}

		val, err := yamlValue(path, n.Content[i+1], active)
		if err != nil {
			return nil, err
		}
		out[key.Value] = val
	}

	return out, nil
}

// yamlValue converts an arbitrary node into a tree value.
func yamlValue(path string, n *yaml.Node, active map[*yaml.Node]bool) (any, error) {
	resolved := resolveAlias(n)
	if resolved == nil {
		return nil, aliasCycleError(path, n)
	}
	n = resolved

	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{
				Path:    path,
				Line:    n.Line,
				Column:  n.Column,
				Message: err.Error(),
				Err:     err,
			}
		}
		return normalizeScalar(v), nil

	case yaml.SequenceNode:
		if active[n] {
			return nil, aliasCycleError(path, n)
		}
		if len(active) >= maxNestingDepth {
			pe := errNesting(path)
			pe.Line, pe.Column = n.Line, n.Column
			return nil, pe
		}
		active[n] = true
		defer delete(active, n)

		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(path, c, active)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.MappingNode:
		return yamlMapping(path, n, active)
	}

	return nil, &SchemaError{
		Path:   path,
		Reason: "unsupported node kind",
	}
}

// resolveAlias follows alias nodes to their anchor. It returns nil when the
// alias chain loops back on itself.
func resolveAlias(n *yaml.Node) *yaml.Node {
	if n.Kind != yaml.AliasNode {
		return n
	}
	seen := map[*yaml.Node]bool{n: true}
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
		if seen[n] {
			return nil
		}
		seen[n] = true
	}
	return n
}

// aliasCycleError reports a node whose aliased value contains itself.
func aliasCycleError(path string, n *yaml.Node) *ParseError {
	return &ParseError{
		Path:    path,
		Line:    n.Line,
		Column:  n.Column,
		Message: "aliased value contains itself",
	}
}

// normalizeScalar widens integer scalars to int64 so YAML, TOML and JSON
// documents present numbers uniformly.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
	}
	return v
}
