// Package binding resolves {{path}} expressions embedded in schema
// fields against a data context.
//
// Resolution is fail-soft: an interpolation whose path cannot be
// resolved is left as literal "{{path}}" text so partially-invalid
// schemas stay visibly debuggable, and a condition that fails to
// resolve evaluates to false so rendering skips the node instead of
// crashing.
package binding

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/siciyuan404/llm2ui/pkg/path"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// IsExpr reports whether s consists of exactly one {{path}} expression
// and nothing else. Such values resolve with their original type
// preserved instead of being stringified.
func IsExpr(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, openDelim) || !strings.HasSuffix(s, closeDelim) {
		return false
	}
	inner := s[len(openDelim) : len(s)-len(closeDelim)]
	return !strings.Contains(inner, openDelim) && !strings.Contains(inner, closeDelim)
}

// Inner strips the {{ }} delimiters from a single-binding expression.
// A bare path is returned unchanged, so conditions may be written either
// way.
func Inner(expr string) string {
	expr = strings.TrimSpace(expr)
	if IsExpr(expr) {
		expr = strings.TrimSpace(expr[len(openDelim) : len(expr)-len(closeDelim)])
	}
	return expr
}

// ResolveValue resolves a single binding expression against data with
// its original type preserved (object, array, number, boolean). The
// expression may be {{wrapped}} or a bare path. Syntax errors are logged
// and reported as misses; the schema author sees the literal text
// elsewhere.
func ResolveValue(expr string, data map[string]any) (any, bool) {
	inner := Inner(expr)
	v, ok, err := path.Lookup(data, inner)
	if err != nil {
		slog.Warn("binding: invalid path expression", "expr", inner, "error", err)
		return nil, false
	}
	return v, ok
}

// ResolveString substitutes every {{path}} occurrence in s with the
// stringified resolved value. Unmatched or failed bindings are left as
// literal {{path}} text.
func ResolveString(s string, data map[string]any) string {
	if !strings.Contains(s, openDelim) {
		return s
	}

	var sb strings.Builder
	rest := s
	for {
		start := strings.Index(rest, openDelim)
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], closeDelim)
		if end < 0 {
			sb.WriteString(rest)
			break
		}
		end += start

		sb.WriteString(rest[:start])
		token := rest[start : end+len(closeDelim)]
		inner := strings.TrimSpace(rest[start+len(openDelim) : end])

		v, ok, err := path.Lookup(data, inner)
		if err != nil || !ok {
			if err != nil {
				slog.Warn("binding: invalid path expression", "expr", inner, "error", err)
			}
			sb.WriteString(token)
		} else {
			sb.WriteString(Stringify(v))
		}
		rest = rest[end+len(closeDelim):]
	}
	return sb.String()
}

// Stringify renders a resolved value as text content: primitives via
// their natural formatting, containers as compact JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return t.String()
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// EvalCondition resolves a condition expression and reports its
// truthiness. Conditions that fail to parse or resolve are false.
func EvalCondition(expr string, data map[string]any) bool {
	v, ok := ResolveValue(expr, data)
	if !ok {
		return false
	}
	return Truthy(v)
}

// Truthy mirrors the truthiness rules bindings were authored against:
// non-empty string, non-zero number, true, non-empty container.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
