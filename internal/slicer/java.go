package slicer

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// NewJavaFrontEnd returns the Java front-end. Classes, interfaces and enums
// all produce class slices; methods and constructors produce method slices.
func NewJavaFrontEnd() Sliceable {
	return &frontEnd{spec: languageSpec{
		tag:        "java",
		sitterLang: java.GetLanguage(),
		classTypes: map[string]bool{
			"class_declaration":     true,
			"interface_declaration": true,
			"enum_declaration":      true,
		},
		methodTypes: map[string]bool{
			"method_declaration":      true,
			"constructor_declaration": true,
		},
		decisionTypes: map[string]bool{
			"if_statement":                 true,
			"for_statement":                true,
			"enhanced_for_statement":       true,
			"while_statement":              true,
			"do_statement":                 true,
			"switch_expression":            true,
			"switch_block_statement_group": true,
			"catch_clause":                 true,
			"ternary_expression":           true,
			"binary_expression":            true, // only && and ||
		},
		nestingTypes: map[string]bool{
			"if_statement":           true,
			"for_statement":          true,
			"enhanced_for_statement": true,
			"while_statement":        true,
			"do_statement":           true,
			"switch_expression":      true,
			"try_statement":          true,
			"lambda_expression":      true,
		},
		fieldTypes: map[string]bool{
			"field_declaration": true,
		},
		refTypes: map[string]string{
			"method_invocation": "object",
			"field_access":      "object",
		},
		selfNames: map[string]bool{"this": true, "super": true},
		nameOf:    nameFromField,
		paramsOf:  javaParamCount,
	}}
}

func javaParamCount(n *sitter.Node, src []byte) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "formal_parameter", "spread_parameter", "receiver_parameter":
			count++
		}
	}
	return count
}
