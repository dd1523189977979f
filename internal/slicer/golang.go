package slicer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// NewGoFrontEnd returns the Go front-end. Struct and interface type specs
// produce class slices; functions and methods produce method slices, with
// receiver methods linked to their receiver type's slice.
func NewGoFrontEnd() Sliceable {
	return &frontEnd{spec: languageSpec{
		tag:        "go",
		sitterLang: golang.GetLanguage(),
		classTypes: map[string]bool{
			"type_spec": true,
		},
		classFilter: goIsClassSpec,
		methodTypes: map[string]bool{
			"function_declaration": true,
			"method_declaration":   true,
		},
		decisionTypes: map[string]bool{
			"if_statement":       true,
			"for_statement":      true,
			"range_clause":       true,
			"expression_case":    true,
			"type_case":          true,
			"select_statement":   true,
			"communication_case": true,
			"binary_expression":  true, // only && and ||
		},
		nestingTypes: map[string]bool{
			"if_statement":                true,
			"for_statement":               true,
			"select_statement":            true,
			"type_switch_statement":       true,
			"expression_switch_statement": true,
			"func_literal":                true,
		},
		fieldTypes: map[string]bool{
			"field_declaration": true,
		},
		refTypes: map[string]string{
			"selector_expression": "operand",
		},
		selfNames:   map[string]bool{},
		nameOf:      nameFromField,
		paramsOf:    goParamCount,
		containerOf: goReceiverType,
	}}
}

// goIsClassSpec keeps only struct and interface type specs; aliases and
// named basic types are not class slices.
func goIsClassSpec(n *sitter.Node) bool {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return false
	}
	switch typeNode.Type() {
	case "struct_type", "interface_type":
		return true
	}
	return false
}

// goReceiverType reads the receiver's base type name off a
// method_declaration, stripping any pointer.
func goReceiverType(n *sitter.Node, src []byte) string {
	receiver := n.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}
	for i := 0; i < int(receiver.NamedChildCount()); i++ {
		decl := receiver.NamedChild(i)
		if decl == nil || decl.Type() != "parameter_declaration" {
			continue
		}
		typeNode := decl.ChildByFieldName("type")
		if typeNode == nil {
			continue
		}
		name := string(src[typeNode.StartByte():typeNode.EndByte()])
		name = strings.TrimPrefix(name, "*")
		// Drop type parameters on generic receivers
		if idx := strings.IndexByte(name, '['); idx >= 0 {
			name = name[:idx]
		}
		return name
	}
	return ""
}

// goParamCount counts declared parameter names; an unnamed parameter
// declaration still counts as one.
func goParamCount(n *sitter.Node, src []byte) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		decl := params.NamedChild(i)
		if decl == nil {
			continue
		}
		switch decl.Type() {
		case "parameter_declaration", "variadic_parameter_declaration":
			names := 0
			for j := 0; j < int(decl.ChildCount()); j++ {
				if c := decl.Child(j); c != nil && c.Type() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1
			}
			count += names
		}
	}
	return count
}
