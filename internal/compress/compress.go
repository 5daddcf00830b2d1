// Package compress renders file lists under a token budget, either in full
// or as signature-only summaries.
package compress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quillpath/codeatlas/internal/model"
	"github.com/quillpath/codeatlas/internal/parse"
)

// Mode selects the rendering policy.
type Mode string

const (
	// Full emits complete file contents.
	Full Mode = "full"

	// Signatures emits only declaration lines, re-derived from a fresh
	// parse.
	Signatures Mode = "signatures"

	// Smart picks Signatures for files over SmartLineThreshold lines,
	// Full otherwise. Large files dominate token budgets out of
	// proportion to their marginal information at summary granularity.
	Smart Mode = "smart"
)

// SmartLineThreshold is the line count above which Smart falls back to
// signatures.
const SmartLineThreshold = 100

// charsPerToken is the character-count proxy used for token estimates.
const charsPerToken = 4

// Result is the rendered output plus accounting.
type Result struct {
	Content         string `json:"content"`
	FilesIncluded   int    `json:"files_included"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Mode            Mode   `json:"mode"`
}

// Compress renders files (repo-relative paths under root) per mode. budget
// is a token count; packing is greedy, so the file that crosses the budget
// is still emitted in full; only subsequent files are dropped. budget <= 0
// means unlimited. Missing or unreadable files are noted inline, never
// fatal.
func Compress(root string, files []string, mode Mode, budget int) *Result {
	var sections []string
	totalChars := 0
	included := 0

	for _, file := range files {
		if budget > 0 && totalChars/charsPerToken >= budget {
			sections = append(sections, "... (budget exhausted)\n")
			break
		}

		fullPath := filepath.Join(root, filepath.FromSlash(file))
		if _, err := os.Stat(fullPath); err != nil {
			sections = append(sections, fmt.Sprintf("### %s (not found)\n", file))
			continue
		}

		data, err := os.ReadFile(fullPath)
		if err != nil {
			sections = append(sections, fmt.Sprintf("### %s (error: %v)\n", file, err))
			continue
		}
		content := string(data)
		included++

		var section string
		switch mode {
		case Full:
			section = fenced(file, content)
		case Signatures:
			section = signaturesOnly(fullPath, file)
		default: // Smart
			if strings.Count(content, "\n")+1 > SmartLineThreshold {
				section = signaturesOnly(fullPath, file)
			} else {
				section = fenced(file, content)
			}
		}
		sections = append(sections, section)
		totalChars += len(section)
	}

	content := strings.Join(sections, "\n")
	return &Result{
		Content:         content,
		FilesIncluded:   included,
		EstimatedTokens: len(content) / charsPerToken,
		Mode:            mode,
	}
}

func fenced(file, content string) string {
	return fmt.Sprintf("### %s\n```\n%s\n```\n", file, content)
}

// signaturesOnly renders only declaration lines, with methods indented one
// level under their class.
func signaturesOnly(fullPath, rel string) string {
	pf := parse.File(fullPath)
	if pf == nil {
		return fmt.Sprintf("### %s (could not parse)\n", rel)
	}

	declWord := "function"
	if pf.Language == "python" {
		declWord = "def"
	}

	lines := []string{fmt.Sprintf("### %s (signatures only)", rel)}
	for _, sym := range pf.Symbols {
		switch sym.Kind {
		case model.Class:
			lines = append(lines, fmt.Sprintf("class %s:", sym.Name))
		case model.Function, model.Method:
			indent := ""
			if sym.Parent != "" {
				indent = "    "
			}
			lines = append(lines, fmt.Sprintf("%s%s %s%s", indent, declWord, sym.Name, sym.Signature))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
