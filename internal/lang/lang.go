// Package lang provides a language registry mapping file extensions to
// tree-sitter grammars and per-language symbol extraction.
package lang

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/quillpath/codeatlas/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds tree-sitter configuration and extraction hooks for a
// supported language.
type Language struct {
	Name       string
	Extensions []string

	// DefaultExtension is appended to best-effort import resolution
	// candidates when no probe succeeds.
	DefaultExtension string

	// IndexFile is the canonical package-entry filename probed during
	// import resolution ("__init__.py", "index.ts", ...).
	IndexFile string

	// CallKeywords are identifiers excluded from lexical callee detection:
	// control-flow keywords and common built-in operations.
	CallKeywords map[string]struct{}

	lang *sitter.Language

	// Extract walks a parsed syntax tree and returns the symbols and
	// imports declared in it.
	Extract func(root *sitter.Node, source []byte) ([]model.Symbol, []model.Import)
}

// GetLanguage returns the tree-sitter Language pointer.
func (l *Language) GetLanguage() *sitter.Language {
	return l.lang
}

// NewParser creates a fresh tree-sitter parser for this language.
// Parsers are not thread-safe; each goroutine must use its own.
func (l *Language) NewParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var (
	extensionMap  map[string]*Language
	extensionOnce sync.Once
)

func getExtensionMap() map[string]*Language {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]*Language)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language for a file extension, or nil if the
// extension has no parse adapter.
func ForExtension(ext string) *Language {
	return getExtensionMap()[strings.ToLower(ext)]
}

// ParseableExtensions returns every extension with a registered adapter,
// sorted for deterministic iteration.
func ParseableExtensions() []string {
	m := getExtensionMap()
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// NodeText returns the source text of a tree-sitter node.
func NodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return NodeText(child, source)
}

func span(node *sitter.Node) (int, int) {
	return int(node.StartPoint().Row) + 1, int(node.EndPoint().Row) + 1
}
