// Package index builds the aggregate symbol index for a repository: per-file
// symbols and imports, a name-to-occurrences map, and a bidirectional
// file-level import graph.
package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/model"
	"github.com/quillpath/codeatlas/internal/parse"
	"github.com/quillpath/codeatlas/internal/scan"
)

// Ref is one occurrence of a named symbol.
type Ref struct {
	File   string       `json:"file"`
	Symbol model.Symbol `json:"symbol"`
}

// SymbolIndex is the aggregate index for one repository, built fresh per
// query. It is immutable once Build returns; concurrent readers are safe,
// concurrent writers are not supported.
type SymbolIndex struct {
	Root string

	// SymbolsByFile preserves declaration order per file.
	SymbolsByFile map[string][]model.Symbol

	// SymbolsByName preserves scan order; consumers relying on "first
	// match wins" depend on it.
	SymbolsByName map[string][]Ref

	// ImportsByFile retains every import, resolved or not, for display.
	ImportsByFile map[string][]model.Import

	// ImportsOf and ImportedBy are exact inverses of each other; every
	// edge insertion updates both.
	ImportsOf  map[string]map[string]struct{}
	ImportedBy map[string]map[string]struct{}
}

// New returns an empty index.
func New() *SymbolIndex {
	return &SymbolIndex{
		SymbolsByFile: make(map[string][]model.Symbol),
		SymbolsByName: make(map[string][]Ref),
		ImportsByFile: make(map[string][]model.Import),
		ImportsOf:     make(map[string]map[string]struct{}),
		ImportedBy:    make(map[string]map[string]struct{}),
	}
}

// Build scans root for parseable files and folds every parsed file into a
// fresh index. Files are parsed concurrently; the fold runs sequentially in
// scan order so name-keyed insertion order is reproducible.
func Build(root string) (*SymbolIndex, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	files, err := scan.Scan(root, scan.Options{
		IncludeExtensions: lang.ParseableExtensions(),
	})
	if err != nil {
		return nil, err
	}

	parsed := make([]*model.ParsedFile, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, fd := range files {
		i, fd := i, fd
		g.Go(func() error {
			source, err := os.ReadFile(fd.Path)
			if err != nil {
				slog.Debug("skipping unreadable file", "path", fd.RelativePath, "err", err)
				return nil
			}
			parsed[i] = parse.Parse(source, lang.ForExtension(fd.Extension))
			return nil
		})
	}
	_ = g.Wait()

	ix := New()
	ix.Root = root

	for i, fd := range files {
		pf := parsed[i]
		if pf == nil {
			continue
		}
		rel := fd.RelativePath
		ix.SymbolsByFile[rel] = pf.Symbols
		ix.ImportsByFile[rel] = pf.Imports

		for _, s := range pf.Symbols {
			ix.SymbolsByName[s.Name] = append(ix.SymbolsByName[s.Name], Ref{File: rel, Symbol: s})
		}
		for _, imp := range pf.Imports {
			if target, ok := Resolve(root, rel, imp); ok {
				ix.addEdge(rel, target)
			}
		}
	}

	return ix, nil
}

// addEdge inserts from→to into both sides of the import graph.
func (ix *SymbolIndex) addEdge(from, to string) {
	if ix.ImportsOf[from] == nil {
		ix.ImportsOf[from] = make(map[string]struct{})
	}
	ix.ImportsOf[from][to] = struct{}{}

	if ix.ImportedBy[to] == nil {
		ix.ImportedBy[to] = make(map[string]struct{})
	}
	ix.ImportedBy[to][from] = struct{}{}
}

// FindSymbol returns all occurrences of name, in scan order.
func (ix *SymbolIndex) FindSymbol(name string) []Ref {
	return ix.SymbolsByName[name]
}

// Imports returns the resolved import targets of file, sorted.
func (ix *SymbolIndex) Imports(file string) []string {
	return sortedKeys(ix.ImportsOf[file])
}

// ImportedByFiles returns the files that import file, sorted.
func (ix *SymbolIndex) ImportedByFiles(file string) []string {
	return sortedKeys(ix.ImportedBy[file])
}

// FileDependencies is the dependency view of one file.
type FileDependencies struct {
	Imports    []string       `json:"imports"`
	ImportedBy []string       `json:"imported_by"`
	Symbols    []model.Symbol `json:"symbols"`
}

// Dependencies returns the import and usage information for file.
func (ix *SymbolIndex) Dependencies(file string) FileDependencies {
	return FileDependencies{
		Imports:    ix.Imports(file),
		ImportedBy: ix.ImportedByFiles(file),
		Symbols:    ix.SymbolsByFile[file],
	}
}

// Files returns every indexed file path, sorted.
func (ix *SymbolIndex) Files() []string {
	files := make([]string, 0, len(ix.SymbolsByFile))
	for f := range ix.SymbolsByFile {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
