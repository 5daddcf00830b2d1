// Package parse implements the language parse adapter: file bytes in,
// symbols and imports out. Unparseable or unsupported content yields nil,
// never a partial result.
package parse

import (
	"context"
	"os"
	"path/filepath"

	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/model"
)

// Parse runs the adapter for l over source. It returns nil when l is nil,
// the source is empty, or the tree is pure parse error with nothing
// extractable. Callers treat nil as "contributes nothing", not an error.
func Parse(source []byte, l *lang.Language) *model.ParsedFile {
	if l == nil || len(source) == 0 {
		return nil
	}

	parser := l.NewParser()
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	symbols, imports := l.Extract(tree.RootNode(), source)
	if len(symbols) == 0 && len(imports) == 0 && tree.RootNode().HasError() {
		return nil
	}

	var exports []string
	for _, s := range symbols {
		if model.Exported(s.Name) {
			exports = append(exports, s.Name)
		}
	}

	return &model.ParsedFile{
		Language: l.Name,
		Symbols:  symbols,
		Imports:  imports,
		Exports:  exports,
	}
}

// File reads and parses path, detecting the language from its extension.
func File(path string) *model.ParsedFile {
	l := lang.ForExtension(filepath.Ext(path))
	if l == nil {
		return nil
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	pf := Parse(source, l)
	if pf != nil {
		pf.Path = path
	}
	return pf
}
