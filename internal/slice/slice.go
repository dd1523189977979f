// Package slice defines the value types for analyzable code units.
//
// A Slice is a contiguous, semantically meaningful unit of source (a class
// or a method) with structural metrics attached. Slices are created once per
// slicing pass and are immutable afterwards; downstream stages attach
// findings but never mutate a slice's span or text.
package slice

// Kind distinguishes class-level from method-level slices.
type Kind string

const (
	KindClass  Kind = "class"
	KindMethod Kind = "method"
)

// ParseStatus describes how completely a file was sliced.
type ParseStatus string

const (
	// StatusComplete means the whole file parsed cleanly
	StatusComplete ParseStatus = "complete"
	// StatusPartial means the file was truncated to the last balanced
	// boundary and re-sliced; every slice carries Partial=true
	StatusPartial ParseStatus = "partial"
	// StatusUnparsed means the file could not be parsed at all; the set
	// is empty but not an error
	StatusUnparsed ParseStatus = "unparsed"
)

// Metrics contains structural measures for a slice. All values are
// non-negative. Class-only fields are zero on method slices and vice versa.
type Metrics struct {
	// Lines is the number of source lines covered by the span
	Lines int `json:"lines"`

	// Cyclomatic is the decision-point count + 1
	Cyclomatic int `json:"cyclomatic"`

	// NestingDepth is the maximum control-flow nesting inside the slice
	NestingDepth int `json:"nestingDepth"`

	// FanOut is the number of distinct external type/field references
	FanOut int `json:"fanOut"`

	// FieldCount is the number of declared fields (classes)
	FieldCount int `json:"fieldCount,omitempty"`

	// MethodCount is the number of declared methods (classes)
	MethodCount int `json:"methodCount,omitempty"`

	// GetterSetterRatio is the share of trivial accessors among methods
	// (classes); evidence for Data Class detection
	GetterSetterRatio float64 `json:"getterSetterRatio,omitempty"`

	// ParameterCount is the number of declared parameters (methods)
	ParameterCount int `json:"parameterCount,omitempty"`
}

// Slice is one analyzable code unit.
type Slice struct {
	// ID is the stable identifier; a deterministic function of
	// (path, kind, qualified name, start line). See ComputeID.
	ID string `json:"id"`

	Kind Kind `json:"kind"`

	// QualifiedName is the enclosing-type-qualified name, unique within
	// a file for a given kind (e.g. "Outer.Inner.process")
	QualifiedName string `json:"qualifiedName"`

	// Path is the repo-relative file path
	Path string `json:"path"`

	// StartLine and EndLine are 1-indexed and inclusive
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	// Text is the exact source substring covering the span
	Text string `json:"-"`

	Metrics Metrics `json:"metrics"`

	// ParentID references the immediate enclosing class for methods.
	// Relation only, not ownership.
	ParentID string `json:"parentId,omitempty"`

	// Partial marks slices recovered from a truncated parse
	Partial bool `json:"partial,omitempty"`
}

// SpanContains reports whether other's span nests inside s's span.
func (s *Slice) SpanContains(other *Slice) bool {
	return s.StartLine <= other.StartLine && other.EndLine <= s.EndLine
}

// SpanOverlaps reports whether the two spans partially overlap, i.e. they
// intersect but neither nests inside the other. Such pairs violate the
// slicing invariant.
func (s *Slice) SpanOverlaps(other *Slice) bool {
	if s.EndLine < other.StartLine || other.EndLine < s.StartLine {
		return false // disjoint
	}
	return !s.SpanContains(other) && !other.SpanContains(s)
}
