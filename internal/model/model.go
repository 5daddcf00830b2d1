// Package model defines core data structures for codeatlas.
package model

// SymbolKind indicates the syntactic kind of a symbol.
type SymbolKind string

const (
	Function SymbolKind = "function"
	Method   SymbolKind = "method"
	Class    SymbolKind = "class"
	Variable SymbolKind = "variable"
)

// Symbol represents a declared program entity extracted from source code.
// StartLine and EndLine are 1-indexed and inclusive, taken from the parser's
// own source span for the declaration node.
type Symbol struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Signature string     `json:"signature"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	Docstring string     `json:"docstring,omitempty"`
	Parent    string     `json:"parent,omitempty"` // enclosing class name, empty at module level
}

// Import represents one import-like statement as written in the source.
// Resolution to a concrete file is a derived fact stored in the index graph,
// never on the Import itself.
type Import struct {
	Module     string   `json:"module"`
	Items      []string `json:"items,omitempty"`
	Alias      string   `json:"alias,omitempty"`
	IsRelative bool     `json:"is_relative,omitempty"`
}

// ParsedFile is the result of running a parse adapter over one file.
type ParsedFile struct {
	Path     string
	Language string
	Symbols  []Symbol
	Imports  []Import
	Exports  []string
}

// Exported reports whether a symbol name is public under the
// leading-underscore privacy convention of the supported languages.
func Exported(name string) bool {
	return name != "" && name[0] != '_'
}
