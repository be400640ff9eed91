package assertions

import (
	"fmt"
	"reflect"
	"strconv"
)

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// toFloat64 widens numeric types only. Strings never coerce: a numeric
// string is not a number, and comparing one fails closed.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// valuesEqual is type-sensitive structural equality with one leniency:
// 30 and 30.0 compare equal across YAML and JSON decodings. Values of
// different non-numeric types are never equal.
func valuesEqual(a, b any) bool {
	if IsMissing(a) || IsMissing(b) {
		return false
	}
	if reflect.DeepEqual(a, b) {
		return true
	}
	aNum, aOK := toFloat64(a)
	bNum, bOK := toFloat64(b)
	return aOK && bOK && aNum == bNum
}

// valueLength returns the length of a measurable value, 0 otherwise.
func valueLength(v any) int {
	switch t := v.(type) {
	case nil, Missing:
		return 0
	case string:
		return len(t)
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len()
	}
	return 0
}
