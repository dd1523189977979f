package slicer

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"debtguardian/internal/slice"
)

// languageSpec captures everything language-specific the generic tree-sitter
// front-end needs: which node types delimit classes and methods, which
// contribute to cyclomatic complexity and nesting, and how names, parameters
// and references are read off the tree.
type languageSpec struct {
	tag        string
	sitterLang *sitter.Language

	classTypes    map[string]bool
	methodTypes   map[string]bool
	decisionTypes map[string]bool
	nestingTypes  map[string]bool
	fieldTypes    map[string]bool

	// refTypes maps reference node types to the field name holding the
	// receiver expression; distinct receiver identifiers make up fan-out
	refTypes map[string]string

	// selfNames are receiver identifiers excluded from fan-out
	selfNames map[string]bool

	nameOf   func(n *sitter.Node, src []byte) string
	paramsOf func(n *sitter.Node, src []byte) int

	// containerOf resolves the enclosing type for method nodes that are
	// not lexically nested in a class node (Go receiver methods). May be
	// nil.
	containerOf func(n *sitter.Node, src []byte) string

	// classFilter narrows classTypes matches (Go type_specs cover
	// aliases too, not just structs/interfaces). May be nil.
	classFilter func(n *sitter.Node) bool
}

// frontEnd is the generic tree-sitter front-end. A fresh parser is created
// per invocation so instances are safe for concurrent use.
type frontEnd struct {
	spec languageSpec
}

func (f *frontEnd) Language() string {
	return f.spec.tag
}

func (f *frontEnd) Slice(ctx context.Context, source []byte) ([]RawSlice, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(f.spec.sitterLang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{Line: 1, Reason: err.Error()}
	}
	root := tree.RootNode()

	if line, ok := firstErrorLine(root); ok {
		return nil, &ParseError{Line: line, Reason: "syntax error"}
	}

	var out []RawSlice
	f.walk(root, source, nil, &out)
	return out, nil
}

// walk traverses the tree in document order, tracking the stack of enclosing
// class names so qualified names and parent links come out right for nested
// classes.
func (f *frontEnd) walk(node *sitter.Node, src []byte, classStack []string, out *[]RawSlice) {
	nodeType := node.Type()

	switch {
	case f.spec.classTypes[nodeType] && (f.spec.classFilter == nil || f.spec.classFilter(node)):
		name := f.spec.nameOf(node, src)
		if name == "" {
			break
		}
		qualified := joinQualified(classStack, name)
		*out = append(*out, RawSlice{
			Kind:                slice.KindClass,
			Name:                name,
			QualifiedName:       qualified,
			StartLine:           int(node.StartPoint().Row) + 1,
			EndLine:             int(node.EndPoint().Row) + 1,
			Text:                string(src[node.StartByte():node.EndByte()]),
			ParentQualifiedName: joinQualified(classStack, ""),
			Metrics:             f.classMetrics(node, src),
		})
		childStack := append(append([]string{}, classStack...), name)
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil {
				f.walk(child, src, childStack, out)
			}
		}
		return

	case f.spec.methodTypes[nodeType]:
		name := f.spec.nameOf(node, src)
		if name == "" {
			break
		}
		container := joinQualified(classStack, "")
		if container == "" && f.spec.containerOf != nil {
			container = f.spec.containerOf(node, src)
		}
		qualified := name
		if container != "" {
			qualified = container + "." + name
		}
		*out = append(*out, RawSlice{
			Kind:                slice.KindMethod,
			Name:                name,
			QualifiedName:       qualified,
			StartLine:           int(node.StartPoint().Row) + 1,
			EndLine:             int(node.EndPoint().Row) + 1,
			Text:                string(src[node.StartByte():node.EndByte()]),
			ParentQualifiedName: container,
			Metrics:             f.methodMetrics(node, src),
		})
		// Fall through into the body: local classes declared inside a
		// method still produce class slices
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child != nil {
			f.walk(child, src, classStack, out)
		}
	}
}

func (f *frontEnd) methodMetrics(node *sitter.Node, src []byte) slice.Metrics {
	return slice.Metrics{
		Lines:          int(node.EndPoint().Row) - int(node.StartPoint().Row) + 1,
		Cyclomatic:     f.cyclomatic(node, src),
		NestingDepth:   f.nestingDepth(node, 0),
		FanOut:         f.fanOut(node, src),
		ParameterCount: f.spec.paramsOf(node, src),
	}
}

func (f *frontEnd) classMetrics(node *sitter.Node, src []byte) slice.Metrics {
	fields, methods := 0, 0
	f.countDecls(node, node, &fields, &methods)
	return slice.Metrics{
		Lines:        int(node.EndPoint().Row) - int(node.StartPoint().Row) + 1,
		Cyclomatic:   f.cyclomatic(node, src),
		NestingDepth: f.nestingDepth(node, 0),
		FanOut:       f.fanOut(node, src),
		FieldCount:   fields,
		MethodCount:  methods,
	}
}

// countDecls counts field and method declarations belonging to root,
// stopping at nested class boundaries so inner classes don't inflate the
// outer class's counts.
func (f *frontEnd) countDecls(root, node *sitter.Node, fields, methods *int) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		t := child.Type()
		if f.spec.classTypes[t] {
			continue
		}
		if f.spec.fieldTypes[t] {
			*fields++
		}
		if f.spec.methodTypes[t] {
			*methods++
			continue
		}
		f.countDecls(root, child, fields, methods)
	}
}

// cyclomatic counts decision points + 1. Binary expressions only count when
// the operator is a short-circuit boolean.
func (f *frontEnd) cyclomatic(node *sitter.Node, src []byte) int {
	complexity := 1
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		t := n.Type()
		if f.spec.decisionTypes[t] {
			if t == "binary_expression" || t == "boolean_operator" {
				if isBooleanOperator(n, src) {
					complexity++
				}
			} else {
				complexity++
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(node)
	return complexity
}

// nestingDepth returns the maximum control-flow nesting below node.
func (f *frontEnd) nestingDepth(node *sitter.Node, depth int) int {
	max := depth
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		childDepth := depth
		if f.spec.nestingTypes[child.Type()] {
			childDepth++
		}
		if d := f.nestingDepth(child, childDepth); d > max {
			max = d
		}
	}
	return max
}

// fanOut counts distinct external receiver identifiers in member accesses
// and invocations, excluding the language's self reference.
func (f *frontEnd) fanOut(node *sitter.Node, src []byte) int {
	seen := map[string]bool{}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if field, ok := f.spec.refTypes[n.Type()]; ok {
			if obj := n.ChildByFieldName(field); obj != nil && obj.Type() == "identifier" {
				name := string(src[obj.StartByte():obj.EndByte()])
				if !f.spec.selfNames[name] {
					seen[name] = true
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(node)
	return len(seen)
}

// isBooleanOperator checks whether a binary expression is && or || (or
// Python's and/or, which surface as boolean_operator children).
func isBooleanOperator(node *sitter.Node, src []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "&&", "||", "and", "or":
			return true
		}
		content := string(src[child.StartByte():child.EndByte()])
		if content == "&&" || content == "||" {
			return true
		}
	}
	return false
}

// firstErrorLine finds the first syntax error in the tree, if any.
func firstErrorLine(root *sitter.Node) (int, bool) {
	if !root.HasError() {
		return 0, false
	}
	line := 0
	found := false
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if found {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			line = int(n.StartPoint().Row) + 1
			found = true
			return
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(root)
	if !found {
		line = 1
	}
	return line, true
}

// nameFromField reads the standard "name" field off a declaration node.
func nameFromField(n *sitter.Node, src []byte) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return string(src[nameNode.StartByte():nameNode.EndByte()])
}

func joinQualified(stack []string, name string) string {
	if name == "" {
		return strings.Join(stack, ".")
	}
	return strings.Join(append(append([]string{}, stack...), name), ".")
}
