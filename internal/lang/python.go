package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/quillpath/codeatlas/internal/model"
)

func init() {
	Languages["python"] = &Language{
		Name:             "python",
		Extensions:       []string{".py", ".pyw"},
		DefaultExtension: ".py",
		IndexFile:        "__init__.py",
		CallKeywords:     pythonCallKeywords,
		lang:             python.GetLanguage(),
		Extract:          extractPython,
	}
}

// pythonCallKeywords excludes control-flow keywords and common builtins from
// lexical callee detection.
var pythonCallKeywords = map[string]struct{}{
	"if": {}, "for": {}, "while": {}, "with": {}, "try": {}, "except": {},
	"return": {}, "print": {}, "len": {}, "str": {}, "int": {}, "float": {},
	"list": {}, "dict": {}, "set": {}, "tuple": {}, "range": {},
	"enumerate": {}, "zip": {}, "map": {}, "filter": {}, "sorted": {},
	"open": {}, "isinstance": {}, "super": {}, "type": {}, "hasattr": {},
	"getattr": {}, "setattr": {},
}

func extractPython(root *sitter.Node, source []byte) ([]model.Symbol, []model.Import) {
	var symbols []model.Symbol
	var imports []model.Import

	var visit func(node *sitter.Node, parent string)
	visit = func(node *sitter.Node, parent string) {
		switch node.Type() {
		case "function_definition":
			name := fieldText(node, "name", source)
			if name == "" {
				name = "unknown"
			}
			params := CollapseWhitespace(fieldText(node, "parameters", source))
			if params == "" {
				params = "()"
			}
			sig := params
			if ret := fieldText(node, "return_type", source); ret != "" {
				sig += " -> " + ret
			}
			kind := model.Function
			if parent != "" {
				kind = model.Method
			}
			start, end := span(node)
			symbols = append(symbols, model.Symbol{
				Name:      name,
				Kind:      kind,
				Signature: sig,
				StartLine: start,
				EndLine:   end,
				Docstring: pythonDocstring(node, source),
				Parent:    parent,
			})

		case "class_definition":
			name := fieldText(node, "name", source)
			if name == "" {
				name = "unknown"
			}
			var sig string
			for i := 0; i < int(node.ChildCount()); i++ {
				if child := node.Child(i); child.Type() == "argument_list" {
					sig = NodeText(child, source)
					break
				}
			}
			start, end := span(node)
			symbols = append(symbols, model.Symbol{
				Name:      name,
				Kind:      model.Class,
				Signature: sig,
				StartLine: start,
				EndLine:   end,
				Docstring: pythonDocstring(node, source),
				Parent:    parent,
			})
			if body := node.ChildByFieldName("body"); body != nil {
				for i := 0; i < int(body.NamedChildCount()); i++ {
					visit(body.NamedChild(i), name)
				}
			}

		case "import_statement":
			for i := 0; i < int(node.NamedChildCount()); i++ {
				child := node.NamedChild(i)
				switch child.Type() {
				case "dotted_name":
					imports = append(imports, model.Import{Module: NodeText(child, source)})
				case "aliased_import":
					imports = append(imports, model.Import{
						Module: fieldText(child, "name", source),
						Alias:  fieldText(child, "alias", source),
					})
				}
			}

		case "import_from_statement":
			imp := pythonImportFrom(node, source)
			if imp.Module != "" || len(imp.Items) > 0 {
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

func pythonImportFrom(node *sitter.Node, source []byte) model.Import {
	var imp model.Import

	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode != nil {
		imp.Module = NodeText(moduleNode, source)
		imp.IsRelative = moduleNode.Type() == "relative_import" || strings.HasPrefix(imp.Module, ".")
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier", "aliased_import", "wildcard_import":
			imp.Items = append(imp.Items, CollapseWhitespace(NodeText(child, source)))
		}
	}

	return imp
}

// pythonDocstring returns the first string-literal expression statement at
// the start of a function or class body, stripped of its quotes.
func pythonDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	return strings.TrimSpace(strings.Trim(NodeText(str, source), "\"'"))
}
