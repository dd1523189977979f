package slicer

import (
	"context"
	goerrors "errors"
	"strings"

	"debtguardian/internal/errors"
	"debtguardian/internal/logging"
	"debtguardian/internal/slice"
)

// Slicer drives a language front-end over a file, assigns stable slice
// identities, and builds the parent/child index linking methods to their
// enclosing classes.
type Slicer struct {
	registry *Registry
	logger   *logging.Logger
}

// New creates a slicer over the given front-end registry.
func New(registry *Registry, logger *logging.Logger) *Slicer {
	return &Slicer{registry: registry, logger: logger}
}

// SliceFile slices one file.
//
// An unregistered language fails with UNSUPPORTED_LANGUAGE. A parse error
// triggers one retry on input truncated to the last balanced boundary, with
// every recovered slice flagged partial; if the retry also fails the result
// is an empty set with status Unparsed rather than an error, so one broken
// file never aborts a run.
func (s *Slicer) SliceFile(ctx context.Context, path, text, language string) (*slice.Set, error) {
	fe, ok := s.registry.Lookup(language)
	if !ok {
		return nil, errors.Newf(errors.UnsupportedLanguage,
			"no front-end registered for language %q (file %s)", language, path)
	}

	lineCount := countLines(text)

	raw, err := fe.Slice(ctx, []byte(text))
	if err == nil {
		return s.assemble(path, language, lineCount, raw, false)
	}

	var pe *ParseError
	if !goerrors.As(err, &pe) {
		return nil, errors.New(errors.InternalError, "front-end failed", err)
	}

	s.logger.Warn("Parse error, retrying on truncated input", map[string]interface{}{
		"path":   path,
		"line":   pe.Line,
		"reason": pe.Reason,
	})

	// Assume the file is syntactically partial: cut back to the last
	// balanced boundary and try once more
	truncated := truncateBalanced(text, language)
	if truncated != "" && truncated != text {
		if raw, err = fe.Slice(ctx, []byte(truncated)); err == nil {
			set, aerr := s.assemble(path, language, lineCount, raw, true)
			if aerr != nil {
				return nil, aerr
			}
			set.Status = slice.StatusPartial
			return set, nil
		}
	}

	// Total parse failure: empty set tagged Unparsed, not an error
	s.logger.Warn("File could not be parsed", map[string]interface{}{
		"path": path,
	})
	set := slice.NewSet(path, language, lineCount)
	set.Status = slice.StatusUnparsed
	return set, nil
}

// assemble turns raw candidates into an id-assigned, parent-linked set.
func (s *Slicer) assemble(path, language string, lineCount int, raw []RawSlice, partial bool) (*slice.Set, error) {
	set := slice.NewSet(path, language, lineCount)

	// Class ids first; methods link to them by qualified name
	type classRef struct {
		id         string
		start, end int
	}
	classes := make(map[string]classRef)
	for _, r := range raw {
		if r.Kind == slice.KindClass {
			classes[r.QualifiedName] = classRef{
				id:    slice.ComputeID(path, r.Kind, r.QualifiedName, r.StartLine),
				start: r.StartLine,
				end:   r.EndLine,
			}
		}
	}

	for _, r := range raw {
		// Only lexically nested members get a parent link. Go receiver
		// methods carry the type in their qualified name but are declared
		// outside the type's span, so they stay top-level.
		parentID := ""
		if ref, ok := classes[r.ParentQualifiedName]; ok &&
			ref.start <= r.StartLine && r.EndLine <= ref.end {
			parentID = ref.id
		}
		sl := &slice.Slice{
			ID:            slice.ComputeID(path, r.Kind, r.QualifiedName, r.StartLine),
			Kind:          r.Kind,
			QualifiedName: r.QualifiedName,
			Path:          path,
			StartLine:     r.StartLine,
			EndLine:       r.EndLine,
			Text:          r.Text,
			Metrics:       r.Metrics,
			ParentID:      parentID,
			Partial:       partial,
		}
		if err := set.Add(sl); err != nil {
			return nil, errors.New(errors.InvariantViolation, "slice identity collision", err)
		}
	}

	attachAccessorRatios(set)

	if err := set.Validate(); err != nil {
		return nil, errors.New(errors.InvariantViolation, "slice set failed span validation", err)
	}
	return set, nil
}

// attachAccessorRatios computes each class's getter/setter ratio from its
// child methods: trivial accessors are short methods named like accessors.
func attachAccessorRatios(set *slice.Set) {
	for _, cls := range set.Classes() {
		children := set.Children(cls.ID)
		if len(children) == 0 {
			continue
		}
		accessors := 0
		for _, id := range children {
			m := set.ByID(id)
			if m == nil || m.Kind != slice.KindMethod {
				continue
			}
			if isAccessorName(simpleName(m.QualifiedName)) && m.Metrics.Lines <= 3 {
				accessors++
			}
		}
		total := cls.Metrics.MethodCount
		if total == 0 {
			total = len(children)
		}
		if total > 0 {
			cls.Metrics.GetterSetterRatio = float64(accessors) / float64(total)
		}
	}
}

func isAccessorName(name string) bool {
	return strings.HasPrefix(name, "get") ||
		strings.HasPrefix(name, "set") ||
		strings.HasPrefix(name, "is")
}

func simpleName(qualified string) string {
	if idx := strings.LastIndexByte(qualified, '.'); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// truncateBalanced cuts the input back to the last position where the file
// is syntactically balanced: the last brace-depth-zero boundary for brace
// languages, the last top-level statement boundary for Python. Returns ""
// when no such boundary exists.
func truncateBalanced(text, language string) string {
	if language == "python" {
		return truncateIndent(text)
	}
	return truncateBraces(text)
}

// truncateBraces tracks brace depth outside string, char and comment
// contexts and remembers the last offset where depth returned to zero.
func truncateBraces(text string) string {
	depth := 0
	lastBalanced := -1
	inString, inChar, inLineComment, inBlockComment, escape := false, false, false, false, false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if escape {
			escape = false
			continue
		}
		switch {
		case inLineComment:
			if c == '\n' {
				inLineComment = false
			}
			continue
		case inBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				inBlockComment = false
				i++
			}
			continue
		case inString:
			if c == '\\' {
				escape = true
			} else if c == '"' {
				inString = false
			}
			continue
		case inChar:
			if c == '\\' {
				escape = true
			} else if c == '\'' {
				inChar = false
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(text) {
				switch text[i+1] {
				case '/':
					inLineComment = true
					i++
				case '*':
					inBlockComment = true
					i++
				}
			}
		case '"':
			inString = true
		case '\'':
			inChar = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				lastBalanced = i
			}
		}
	}

	if lastBalanced < 0 {
		return ""
	}
	return text[:lastBalanced+1]
}

// truncateIndent drops the trailing incomplete top-level block: everything
// from the last column-zero statement onward is cut.
func truncateIndent(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i > 0; i-- {
		line := lines[i]
		if line == "" || line[0] == ' ' || line[0] == '\t' || line[0] == '#' {
			continue
		}
		return strings.Join(lines[:i], "\n")
	}
	return ""
}
