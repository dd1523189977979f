package slice

import (
	"fmt"
	"sort"
)

// Set is the output of slicing one file: the flat slice sequence in document
// order plus the parent/child index linking methods to their enclosing
// classes.
type Set struct {
	// Path is the repo-relative file path the set was sliced from
	Path string `json:"path"`

	// Language is the language tag the front-end was selected by
	Language string `json:"language"`

	Status ParseStatus `json:"status"`

	// Slices holds all slices in document order (by start line, classes
	// before their methods)
	Slices []*Slice `json:"slices"`

	// LineCount is the total line count of the input file
	LineCount int `json:"lineCount"`

	byID     map[string]*Slice
	children map[string][]string
}

// NewSet creates an empty set for a file.
func NewSet(path, language string, lineCount int) *Set {
	return &Set{
		Path:      path,
		Language:  language,
		Status:    StatusComplete,
		LineCount: lineCount,
		byID:      make(map[string]*Slice),
		children:  make(map[string][]string),
	}
}

// Add appends a slice and indexes it. Duplicate ids are rejected: two slices
// of the same kind with the same qualified name and start line cannot
// coexist in one file.
func (s *Set) Add(sl *Slice) error {
	if _, ok := s.byID[sl.ID]; ok {
		return fmt.Errorf("duplicate slice id %s (%s)", sl.ID, sl.QualifiedName)
	}
	s.Slices = append(s.Slices, sl)
	s.byID[sl.ID] = sl
	if sl.ParentID != "" {
		s.children[sl.ParentID] = append(s.children[sl.ParentID], sl.ID)
	}
	return nil
}

// ByID returns the slice with the given id, or nil.
func (s *Set) ByID(id string) *Slice {
	return s.byID[id]
}

// Children returns the ids of slices whose ParentID is id, in document order.
func (s *Set) Children(id string) []string {
	return s.children[id]
}

// Classes returns the class slices in document order.
func (s *Set) Classes() []*Slice {
	return s.ofKind(KindClass)
}

// Methods returns the method slices in document order.
func (s *Set) Methods() []*Slice {
	return s.ofKind(KindMethod)
}

func (s *Set) ofKind(kind Kind) []*Slice {
	var out []*Slice
	for _, sl := range s.Slices {
		if sl.Kind == kind {
			out = append(out, sl)
		}
	}
	return out
}

// Validate checks the span invariants:
//   - every span is within file bounds and startLine <= endLine
//   - a method's span nests inside its parent class's span
//   - two slices of the same kind are disjoint or nested, never
//     partially overlapping
func (s *Set) Validate() error {
	for _, sl := range s.Slices {
		if sl.StartLine < 1 || sl.EndLine < sl.StartLine {
			return fmt.Errorf("slice %s: invalid span %d-%d", sl.QualifiedName, sl.StartLine, sl.EndLine)
		}
		if s.LineCount > 0 && sl.EndLine > s.LineCount {
			return fmt.Errorf("slice %s: span end %d exceeds file line count %d", sl.QualifiedName, sl.EndLine, s.LineCount)
		}
		if sl.ParentID != "" {
			parent := s.byID[sl.ParentID]
			if parent == nil {
				return fmt.Errorf("slice %s: parent %s not in set", sl.QualifiedName, sl.ParentID)
			}
			if !parent.SpanContains(sl) {
				return fmt.Errorf("slice %s: span %d-%d escapes parent %s span %d-%d",
					sl.QualifiedName, sl.StartLine, sl.EndLine,
					parent.QualifiedName, parent.StartLine, parent.EndLine)
			}
		}
	}

	byKind := map[Kind][]*Slice{}
	for _, sl := range s.Slices {
		byKind[sl.Kind] = append(byKind[sl.Kind], sl)
	}
	for kind, slices := range byKind {
		ordered := make([]*Slice, len(slices))
		copy(ordered, slices)
		sort.Slice(ordered, func(i, j int) bool {
			return ordered[i].StartLine < ordered[j].StartLine
		})
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if ordered[i].SpanOverlaps(ordered[j]) {
					return fmt.Errorf("%s slices %s and %s partially overlap",
						kind, ordered[i].QualifiedName, ordered[j].QualifiedName)
				}
			}
		}
	}
	return nil
}
