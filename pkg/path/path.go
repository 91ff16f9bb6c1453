// Package path parses and resolves dotted/indexed path expressions such
// as "user.items[2].name" against JSON-shaped data.
//
// Parsing is strict: malformed expressions fail with a *SyntaxError,
// since they indicate an authoring bug in a schema or theme. Resolution
// is soft: a missing key, a wrong container type, or an out-of-range
// index is a miss reported as (nil, false), never an error.
package path

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind distinguishes property-name and numeric-index segments.
type SegmentKind int

const (
	// KindField selects a key from a mapping.
	KindField SegmentKind = iota
	// KindIndex selects an element from an ordered sequence.
	KindIndex
)

// Segment is one step of a parsed path.
type Segment struct {
	Kind  SegmentKind
	Field string
	Index int
}

// Path is an ordered list of segments.
type Path []Segment

// SyntaxError reports a malformed path expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("path: invalid expression %q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Parse splits an expression into field and index segments.
//
// Grammar: identifier('.'identifier | '['nonNegativeInteger']')*.
// Negative indices are not supported.
func Parse(expr string) (Path, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, &SyntaxError{Expr: expr, Pos: 0, Msg: "empty expression"}
	}
	expr = strings.TrimSpace(expr)

	var segs Path
	i := 0
	for i < len(expr) {
		switch expr[i] {
		case '.':
			if len(segs) == 0 {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "leading dot"}
			}
			i++
			field, n, err := scanField(expr, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, Segment{Kind: KindField, Field: field})
			i = n
		case '[':
			if len(segs) == 0 {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "index without container"}
			}
			close := strings.IndexByte(expr[i:], ']')
			if close < 0 {
				return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "unmatched '['"}
			}
			raw := expr[i+1 : i+close]
			idx, err := strconv.Atoi(raw)
			if err != nil || idx < 0 || strings.TrimSpace(raw) != raw || raw == "" {
				return nil, &SyntaxError{Expr: expr, Pos: i + 1, Msg: fmt.Sprintf("invalid index %q", raw)}
			}
			segs = append(segs, Segment{Kind: KindIndex, Index: idx})
			i += close + 1
		case ']':
			return nil, &SyntaxError{Expr: expr, Pos: i, Msg: "unmatched ']'"}
		default:
			field, n, err := scanField(expr, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, Segment{Kind: KindField, Field: field})
			i = n
		}
	}
	return segs, nil
}

func scanField(expr string, start int) (string, int, error) {
	end := start
	for end < len(expr) && expr[end] != '.' && expr[end] != '[' && expr[end] != ']' {
		end++
	}
	if end == start {
		return "", 0, &SyntaxError{Expr: expr, Pos: start, Msg: "empty segment"}
	}
	return expr[start:end], end, nil
}

// Resolve walks the path against a root value. A field segment requires
// the current value to be a mapping with the key present; an index
// segment requires an ordered sequence with the index in range. Any
// violation is a miss, reported as (nil, false).
func (p Path) Resolve(root any) (any, bool) {
	cur := root
	for _, seg := range p {
		switch seg.Kind {
		case KindField:
			switch m := cur.(type) {
			case map[string]any:
				v, ok := m[seg.Field]
				if !ok {
					return nil, false
				}
				cur = v
			case map[string]string:
				v, ok := m[seg.Field]
				if !ok {
					return nil, false
				}
				cur = v
			default:
				return nil, false
			}
		case KindIndex:
			seq, ok := cur.([]any)
			if !ok || seg.Index >= len(seq) {
				return nil, false
			}
			cur = seq[seg.Index]
		}
	}
	return cur, true
}

// String renders the path back in expression form.
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		switch seg.Kind {
		case KindField:
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(seg.Field)
		case KindIndex:
			fmt.Fprintf(&sb, "[%d]", seg.Index)
		}
	}
	return sb.String()
}

// Lookup parses and resolves in one step. The error is non-nil only for
// syntactically invalid expressions; resolution misses surface as ok ==
// false with a nil error.
func Lookup(root any, expr string) (any, bool, error) {
	p, err := Parse(expr)
	if err != nil {
		return nil, false, err
	}
	v, ok := p.Resolve(root)
	return v, ok, nil
}
