package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/quillpath/codeatlas/internal/model"
)

func init() {
	Languages["javascript"] = &Language{
		Name:             "javascript",
		Extensions:       []string{".js", ".jsx", ".mjs", ".cjs"},
		DefaultExtension: ".js",
		IndexFile:        "index.js",
		CallKeywords:     jsCallKeywords,
		lang:             javascript.GetLanguage(),
		Extract:          extractJS,
	}
}

var jsCallKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
	"return": {}, "function": {}, "super": {}, "constructor": {},
	"typeof": {}, "require": {}, "parseInt": {}, "parseFloat": {},
	"setTimeout": {}, "setInterval": {}, "String": {}, "Number": {},
	"Boolean": {}, "Array": {}, "Object": {}, "Promise": {}, "Error": {},
	"Symbol": {}, "Map": {}, "Set": {},
}

// extractJS walks a JavaScript or TypeScript syntax tree. The two grammars
// share node types for everything this extractor recognizes, so the
// typescript adapter reuses it.
func extractJS(root *sitter.Node, source []byte) ([]model.Symbol, []model.Import) {
	var symbols []model.Symbol
	var imports []model.Import

	var visit func(node *sitter.Node, parent string)
	visit = func(node *sitter.Node, parent string) {
		switch node.Type() {
		case "function_declaration", "generator_function_declaration":
			name := fieldText(node, "name", source)
			if name == "" {
				name = "anonymous"
			}
			symbols = append(symbols, jsSymbol(node, name, parent, jsParams(node, source)))

		case "method_definition":
			name := fieldText(node, "name", source)
			if name == "" {
				name = "anonymous"
			}
			symbols = append(symbols, jsSymbol(node, name, parent, jsParams(node, source)))

		case "class_declaration":
			name := fieldText(node, "name", source)
			if name == "" {
				name = "anonymous"
			}
			start, end := span(node)
			symbols = append(symbols, model.Symbol{
				Name:      name,
				Kind:      model.Class,
				StartLine: start,
				EndLine:   end,
				Parent:    parent,
			})
			if body := node.ChildByFieldName("body"); body != nil {
				for i := 0; i < int(body.NamedChildCount()); i++ {
					visit(body.NamedChild(i), name)
				}
			}

		case "lexical_declaration", "variable_declaration":
			for i := 0; i < int(node.NamedChildCount()); i++ {
				decl := node.NamedChild(i)
				if decl.Type() != "variable_declarator" {
					continue
				}
				value := decl.ChildByFieldName("value")
				if value == nil {
					continue
				}
				switch value.Type() {
				case "arrow_function", "function", "function_expression":
					name := fieldText(decl, "name", source)
					if name == "" {
						continue
					}
					symbols = append(symbols, jsSymbol(node, name, parent, jsParams(value, source)))
				}
			}

		case "import_statement":
			if imp, ok := jsImport(node, source); ok {
				imports = append(imports, imp)
			}

		default:
			for i := 0; i < int(node.NamedChildCount()); i++ {
				visit(node.NamedChild(i), parent)
			}
		}
	}

	visit(root, "")
	return symbols, imports
}

func jsSymbol(node *sitter.Node, name, parent, params string) model.Symbol {
	kind := model.Function
	if parent != "" {
		kind = model.Method
	}
	start, end := span(node)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: params,
		StartLine: start,
		EndLine:   end,
		Parent:    parent,
	}
}

// jsParams returns the parameter list text of a function-like node.
// Single-parameter arrow functions carry the parameter outside parentheses.
func jsParams(node *sitter.Node, source []byte) string {
	if params := node.ChildByFieldName("parameters"); params != nil {
		return CollapseWhitespace(NodeText(params, source))
	}
	if param := node.ChildByFieldName("parameter"); param != nil {
		return "(" + NodeText(param, source) + ")"
	}
	return "()"
}

func jsImport(node *sitter.Node, source []byte) (model.Import, bool) {
	src := node.ChildByFieldName("source")
	if src == nil {
		return model.Import{}, false
	}
	imp := model.Import{Module: strings.Trim(NodeText(src, source), "'\"`")}
	imp.IsRelative = strings.HasPrefix(imp.Module, ".")

	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			child := clause.NamedChild(j)
			switch child.Type() {
			case "identifier":
				imp.Items = append(imp.Items, NodeText(child, source))
			case "named_imports":
				for k := 0; k < int(child.NamedChildCount()); k++ {
					spec := child.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					if name := fieldText(spec, "name", source); name != "" {
						imp.Items = append(imp.Items, name)
					}
				}
			case "namespace_import":
				for k := 0; k < int(child.NamedChildCount()); k++ {
					if id := child.NamedChild(k); id.Type() == "identifier" {
						imp.Alias = NodeText(id, source)
					}
				}
			}
		}
	}

	return imp, true
}
