package document

import (
	"math"

	"github.com/tidwall/gjson"
)

// parseJSON parses JSON data into the generic tree using gjson.
func parseJSON(path string, data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{
			Path:    path,
			Message: "invalid JSON",
		}
	}

	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil, &SchemaError{
			Path:   path,
			Reason: "top level is not an object",
		}
	}

	return jsonObject(path, res, 1)
}

// jsonObject converts an object result into a tree mapping. depth counts
// the containers entered so far and is bounded by maxNestingDepth.
func jsonObject(path string, r gjson.Result, depth int) (map[string]any, error) {
	if depth > maxNestingDepth {
		return nil, errNesting(path)
	}

	out := make(map[string]any)
	var werr error
	r.ForEach(func(key, value gjson.Result) bool {
		v, err := jsonValue(path, value, depth+1)
		if err != nil {
			werr = err
			return false
		}
		out[key.String()] = v
		return true
	})
	if werr != nil {
		return nil, werr
	}
	return out, nil
}

// jsonValue converts an arbitrary result into a tree value. Whole numbers
// are narrowed to int64 to match the other formats.
func jsonValue(path string, r gjson.Result, depth int) (any, error) {
	switch {
	case r.IsObject():
		return jsonObject(path, r, depth)
	case r.IsArray():
		if depth > maxNestingDepth {
			return nil, errNesting(path)
		}
		arr := r.Array()
		out := make([]any, 0, len(arr))
		for _, item := range arr {
			v, err := jsonValue(path, item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	switch r.Type {
	case gjson.String:
		return r.Str, nil
	case gjson.Number:
		if r.Num == math.Trunc(r.Num) && math.Abs(r.Num) < 1<<53 {
			return int64(r.Num), nil
		}
		return r.Num, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	default:
		return nil, nil
	}
}
