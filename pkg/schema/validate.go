package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRoot is returned for documents without a root component.
	ErrNilRoot = errors.New("schema: nil root component")

	// ErrVersionMismatch is returned when a document declares a version
	// this engine does not understand.
	ErrVersionMismatch = errors.New("schema: unsupported version")
)

// DuplicateIDError reports a component id that appears more than once in
// a single document. ID uniqueness is required for loop-derived keys and
// host-runtime reconciliation.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("schema: duplicate component id %q", e.ID)
}

// Validate performs the structural checks that JSON decoding alone
// cannot express: version compatibility, root presence, per-document id
// uniqueness, and non-empty loop sources.
func Validate(s *UISchema) error {
	if s == nil || s.Root == nil {
		return ErrNilRoot
	}
	if s.Version != Version {
		return fmt.Errorf("%w: %q (want %q)", ErrVersionMismatch, s.Version, Version)
	}

	seen := make(map[string]struct{})
	var dup *DuplicateIDError
	s.Root.Walk(func(c *UIComponent) bool {
		if c.ID != "" {
			if _, ok := seen[c.ID]; ok {
				dup = &DuplicateIDError{ID: c.ID}
				return false
			}
			seen[c.ID] = struct{}{}
		}
		return true
	})
	if dup != nil {
		return dup
	}

	var bad error
	s.Root.Walk(func(c *UIComponent) bool {
		switch {
		case c.ID == "":
			bad = fmt.Errorf("schema: component of type %q has no id", c.Type)
		case c.Type == "":
			bad = fmt.Errorf("schema: component %q has no type", c.ID)
		case c.Loop != nil && c.Loop.Source == "":
			bad = fmt.Errorf("schema: component %q has a loop with no source", c.ID)
		default:
			return true
		}
		return false
	})
	return bad
}
