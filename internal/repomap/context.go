package repomap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillpath/codeatlas/internal/index"
	"github.com/quillpath/codeatlas/internal/model"
	"github.com/quillpath/codeatlas/internal/parse"
)

// ErrFileNotFound reports a missing context target.
var ErrFileNotFound = errors.New("file not found")

// relatedFileLimit bounds how many related files each side contributes.
const relatedFileLimit = 5

// FileDetail is the target file portion of a context result.
type FileDetail struct {
	Path     string   `json:"path"`
	Content  string   `json:"content"`
	Language string   `json:"language"`
	Symbols  []string `json:"symbols"`
	Imports  []string `json:"imports"`
}

// RelatedFile is a neighbor of the target in the import graph.
type RelatedFile struct {
	File         string   `json:"file"`
	Relationship string   `json:"relationship"` // "imports" or "used_by"
	Symbols      []string `json:"symbols,omitempty"`
}

// Context is a file plus its import-graph neighborhood.
type Context struct {
	File    FileDetail    `json:"file"`
	Related []RelatedFile `json:"related_files"`
}

// FileContext returns targetFile's content and symbols together with the
// files it imports (including their top symbols) and the files that import
// it.
func FileContext(ix *index.SymbolIndex, targetFile string) (*Context, error) {
	fullPath := filepath.Join(ix.Root, filepath.FromSlash(targetFile))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, targetFile)
	}

	detail := FileDetail{
		Path:     targetFile,
		Content:  string(data),
		Language: "unknown",
	}
	if pf := parse.File(fullPath); pf != nil {
		detail.Language = pf.Language
		for _, s := range pf.Symbols {
			detail.Symbols = append(detail.Symbols, formatSymbol(s))
		}
		for _, imp := range pf.Imports {
			detail.Imports = append(detail.Imports, imp.Module)
		}
	}

	seen := map[string]struct{}{targetFile: {}}
	var related []RelatedFile

	for i, imported := range ix.Imports(targetFile) {
		if i >= relatedFileLimit {
			break
		}
		if _, dup := seen[imported]; dup {
			continue
		}
		seen[imported] = struct{}{}

		var symbols []string
		for j, s := range ix.SymbolsByFile[imported] {
			if j >= 10 {
				break
			}
			symbols = append(symbols, formatSymbol(s))
		}
		related = append(related, RelatedFile{
			File:         imported,
			Relationship: "imports",
			Symbols:      symbols,
		})
	}

	for i, user := range ix.ImportedByFiles(targetFile) {
		if i >= relatedFileLimit {
			break
		}
		if _, dup := seen[user]; dup {
			continue
		}
		seen[user] = struct{}{}
		related = append(related, RelatedFile{File: user, Relationship: "used_by"})
	}

	return &Context{File: detail, Related: related}, nil
}

func formatSymbol(s model.Symbol) string {
	return fmt.Sprintf("%s %s%s", s.Kind, s.Name, s.Signature)
}
