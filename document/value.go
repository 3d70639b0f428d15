package document

import (
	"math"
	"strconv"
)

// String coerces a scalar tree value to its string form. Numbers and
// booleans convert to their literal text; mappings and sequences don't.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// Int coerces a scalar tree value to an int. Strings holding integer text
// convert, matching the loose scalar typing of the source formats; other
// values don't.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}
