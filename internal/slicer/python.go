package slicer

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// NewPythonFrontEnd returns the Python front-end. Class definitions produce
// class slices; function definitions produce method slices, qualified by
// their enclosing class when nested.
func NewPythonFrontEnd() Sliceable {
	return &frontEnd{spec: languageSpec{
		tag:        "python",
		sitterLang: python.GetLanguage(),
		classTypes: map[string]bool{
			"class_definition": true,
		},
		methodTypes: map[string]bool{
			"function_definition": true,
		},
		decisionTypes: map[string]bool{
			"if_statement":             true,
			"elif_clause":              true,
			"for_statement":            true,
			"while_statement":          true,
			"except_clause":            true,
			"with_statement":           true,
			"boolean_operator":         true, // and, or
			"conditional_expression":   true,
			"list_comprehension":       true,
			"dictionary_comprehension": true,
			"set_comprehension":        true,
			"generator_expression":     true,
		},
		nestingTypes: map[string]bool{
			"if_statement":             true,
			"for_statement":            true,
			"while_statement":          true,
			"try_statement":            true,
			"with_statement":           true,
			"lambda":                   true,
			"list_comprehension":       true,
			"dictionary_comprehension": true,
			"set_comprehension":        true,
			"generator_expression":     true,
		},
		fieldTypes: map[string]bool{
			"assignment": true,
		},
		refTypes: map[string]string{
			"attribute": "object",
		},
		selfNames: map[string]bool{"self": true, "cls": true},
		nameOf:    nameFromField,
		paramsOf:  pythonParamCount,
	}}
}

// pythonParamCount counts declared parameters, excluding self and cls.
func pythonParamCount(n *sitter.Node, src []byte) int {
	params := n.ChildByFieldName("parameters")
	if params == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p == nil {
			continue
		}
		name := string(src[p.StartByte():p.EndByte()])
		if name == "self" || name == "cls" {
			continue
		}
		count++
	}
	return count
}
