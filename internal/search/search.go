// Package search finds symbol usages and assembles question-driven context
// by lightweight keyword matching over the index.
package search

import (
	"os"
	"regexp"
	"strings"

	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/scan"
)

// Usage is one line-level occurrence of a symbol name.
type Usage struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// FindUsages scans every parseable file under root for word-boundary
// occurrences of symbolName.
func FindUsages(root, symbolName string) ([]Usage, error) {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(symbolName) + `\b`)

	files, err := scan.Scan(root, scan.Options{IncludeExtensions: lang.ParseableExtensions()})
	if err != nil {
		return nil, err
	}

	var usages []Usage
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(data), "\n") {
			if !pattern.MatchString(line) {
				continue
			}
			usages = append(usages, Usage{
				File:    f.RelativePath,
				Line:    i + 1,
				Content: clip(strings.TrimSpace(line), 150),
				Type:    classifyUsage(line, symbolName),
			})
		}
	}
	return usages, nil
}

// classifyUsage buckets a matching line into a coarse usage type.
func classifyUsage(line, symbolName string) string {
	line = strings.TrimSpace(line)
	call := symbolName + "("

	switch {
	case (strings.HasPrefix(line, "def ") || strings.HasPrefix(line, "async def ")) && strings.Contains(line, call):
		return "definition"
	case strings.HasPrefix(line, "function ") && strings.Contains(line, call):
		return "definition"
	case strings.HasPrefix(line, "class ") && strings.Contains(line, symbolName):
		return "definition"
	case strings.Contains(line, "import") && strings.Contains(line, symbolName):
		return "import"
	case strings.Contains(line, call):
		return "call"
	case strings.Contains(line, "."+symbolName):
		return "attribute"
	case strings.Contains(line, symbolName+" =") || strings.Contains(line, symbolName+":"):
		return "assignment"
	default:
		return "reference"
	}
}

var wordRe = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)

// stopWords are filtered from question text before keyword matching.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "shall": {}, "can": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"what": {}, "which": {}, "who": {}, "when": {}, "where": {}, "why": {},
	"how": {}, "all": {}, "each": {}, "every": {}, "both": {}, "few": {},
	"more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "no": {},
	"nor": {}, "not": {}, "only": {}, "own": {}, "same": {}, "so": {},
	"than": {}, "too": {}, "very": {}, "just": {}, "and": {}, "but": {},
	"if": {}, "or": {}, "because": {}, "as": {}, "until": {}, "while": {},
	"of": {}, "at": {}, "by": {}, "for": {}, "with": {}, "about": {},
	"against": {}, "between": {}, "into": {}, "through": {}, "during": {},
	"before": {}, "after": {}, "above": {}, "below": {}, "to": {}, "from": {},
	"up": {}, "down": {}, "in": {}, "out": {}, "on": {}, "off": {},
	"over": {}, "under": {}, "again": {}, "further": {}, "then": {},
	"once": {}, "here": {}, "there": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "work": {}, "works": {}, "working": {},
	"code": {}, "file": {}, "files": {}, "function": {}, "find": {},
	"show": {}, "get": {}, "make": {}, "explain": {}, "understand": {},
}

// ExtractKeywords pulls identifier-like words out of free text, dropping
// stop words and anything shorter than three characters. Order of first
// appearance is preserved.
func ExtractKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, word := range wordRe.FindAllString(text, -1) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
