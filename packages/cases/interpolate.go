package cases

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateValue walks strings, maps and lists replacing ${...}
// placeholders. Non-string scalars pass through untouched.
func (l *Loader) interpolateValue(v any, vars map[string]any) any {
	switch t := v.(type) {
	case string:
		return l.interpolateString(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = l.interpolateValue(item, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = l.interpolateValue(item, vars)
		}
		return out
	}
	return v
}

// interpolateString substitutes placeholders in one string. When the
// whole string is a single placeholder the resolved value keeps its
// type, so `count: "${maxItems}"` can stay numeric. Unresolvable
// placeholders are left as written.
func (l *Loader) interpolateString(s string, vars map[string]any) any {
	if m := placeholderPattern.FindStringSubmatch(s); m != nil && m[0] == s {
		if v, ok := l.resolve(m[1], vars); ok {
			return v
		}
		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		expr := match[2 : len(match)-1]
		if v, ok := l.resolve(expr, vars); ok {
			return fmt.Sprint(v)
		}
		return match
	})
}

// resolve looks an expression up as, in order: an env.NAME environment
// variable, a loader/case variable, a builtin function call.
func (l *Loader) resolve(expr string, vars map[string]any) (any, bool) {
	if strings.HasPrefix(expr, "env.") {
		if v, ok := os.LookupEnv(strings.TrimPrefix(expr, "env.")); ok {
			return v, true
		}
		return nil, false
	}

	if v, ok := vars[expr]; ok {
		return v, true
	}

	if l.builtins != nil {
		if v, ok := l.builtins.Call(expr); ok {
			return v, true
		}
	}

	return nil, false
}
