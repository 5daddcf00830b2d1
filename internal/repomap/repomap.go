// Package repomap renders a condensed markdown overview of every symbol in
// an indexed repository.
package repomap

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/quillpath/codeatlas/internal/index"
	"github.com/quillpath/codeatlas/internal/model"
	"github.com/quillpath/codeatlas/internal/rank"
)

const charsPerToken = 4

// Options controls map rendering.
type Options struct {
	// MaxTokens truncates the rendered map. 0 means the 8000-token
	// default.
	MaxTokens int

	// IncludeDocstrings adds truncated docstrings under declarations.
	IncludeDocstrings bool

	// MaxFiles keeps only the top-N files by import-graph PageRank.
	// 0 keeps everything.
	MaxFiles int
}

// DefaultMaxTokens is the rendering budget when none is given.
const DefaultMaxTokens = 8000

// Generate renders the repository map for an already-built index.
func Generate(ix *index.SymbolIndex, repoName string, opts Options) string {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	keep := map[string]struct{}{}
	if opts.MaxFiles > 0 {
		for _, f := range rank.Top(ix, opts.MaxFiles) {
			keep[f] = struct{}{}
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("# Repository Map: %s", repoName), "")

	filesByDir := make(map[string][]string)
	for _, file := range ix.Files() {
		if opts.MaxFiles > 0 {
			if _, ok := keep[file]; !ok {
				continue
			}
		}
		dir := path.Dir(file)
		filesByDir[dir] = append(filesByDir[dir], file)
	}

	dirs := make([]string, 0, len(filesByDir))
	for d := range filesByDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		if dir != "" && dir != "." {
			lines = append(lines, fmt.Sprintf("## %s/", dir))
		} else {
			lines = append(lines, "## ./")
		}
		lines = append(lines, "")

		for _, file := range filesByDir[dir] {
			lines = append(lines, fmt.Sprintf("### %s", path.Base(file)))
			lines = append(lines, importLine(ix.ImportsByFile[file])...)
			lines = append(lines, symbolLines(ix.SymbolsByFile[file], opts.IncludeDocstrings)...)
			lines = append(lines, "")
		}
	}

	result := strings.Join(lines, "\n")
	if len(result)/charsPerToken > maxTokens {
		return truncate(lines, maxTokens)
	}
	return result
}

// importLine summarizes up to five imports of a file.
func importLine(imports []model.Import) []string {
	if len(imports) == 0 {
		return nil
	}
	var parts []string
	for i, imp := range imports {
		if i >= 5 {
			break
		}
		if len(imp.Items) > 0 {
			items := imp.Items
			if len(items) > 3 {
				items = items[:3]
			}
			parts = append(parts, fmt.Sprintf("{%s} from %s", strings.Join(items, ", "), imp.Module))
		} else {
			parts = append(parts, imp.Module)
		}
	}
	return []string{fmt.Sprintf("  imports: %s", strings.Join(parts, ", "))}
}

func symbolLines(symbols []model.Symbol, docstrings bool) []string {
	var lines []string

	for _, cls := range symbols {
		if cls.Kind != model.Class {
			continue
		}
		sig := ""
		if cls.Signature != "" {
			sig = fmt.Sprintf("(%s)", strings.Trim(cls.Signature, "()"))
		}
		lines = append(lines, fmt.Sprintf("  class %s%s:", cls.Name, sig))
		if docstrings && cls.Docstring != "" {
			lines = append(lines, fmt.Sprintf("    %q", clip(cls.Docstring, 100)))
		}
		for _, m := range symbols {
			if m.Kind == model.Method && m.Parent == cls.Name {
				lines = append(lines, fmt.Sprintf("    def %s%s", m.Name, m.Signature))
			}
		}
	}

	for _, fn := range symbols {
		if fn.Kind != model.Function {
			continue
		}
		lines = append(lines, fmt.Sprintf("  def %s%s", fn.Name, fn.Signature))
		if docstrings && fn.Docstring != "" {
			lines = append(lines, fmt.Sprintf("    %q", clip(fn.Docstring, 80)))
		}
	}

	return lines
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// truncate packs whole lines until the token budget is reached.
func truncate(lines []string, maxTokens int) string {
	var out []string
	tokens := 0
	for _, line := range lines {
		lineTokens := len(line)/charsPerToken + 1
		if tokens+lineTokens > maxTokens {
			out = append(out, "... (truncated)")
			break
		}
		out = append(out, line)
		tokens += lineTokens
	}
	return strings.Join(out, "\n")
}
