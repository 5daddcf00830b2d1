package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quillpath/codeatlas/internal/index"
)

// Match is one search hit, either a symbol definition or a content line.
type Match struct {
	File      string `json:"file"`
	MatchType string `json:"match_type"` // "symbol" or "content"
	Symbol    string `json:"symbol,omitempty"`
	Content   string `json:"content,omitempty"`
	Line      int    `json:"line"`
	UsageType string `json:"usage_type,omitempty"`
	Relevance string `json:"relevance"`
}

// Query searches the index by keyword: symbol-name matches first (exact
// names rank high), then content-line matches. Returns at most topK hits.
func Query(ix *index.SymbolIndex, query string, topK int) ([]Match, error) {
	keywords := ExtractKeywords(query)

	var matches []Match
	seen := make(map[string]struct{})

	names := make([]string, 0, len(ix.SymbolsByName))
	for name := range ix.SymbolsByName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		for _, name := range names {
			if !strings.Contains(strings.ToLower(name), kw) {
				continue
			}
			relevance := "medium"
			if kw == strings.ToLower(name) {
				relevance = "high"
			}
			for _, ref := range ix.SymbolsByName[name] {
				if _, dup := seen[ref.File]; dup {
					continue
				}
				seen[ref.File] = struct{}{}
				matches = append(matches, Match{
					File:      ref.File,
					MatchType: "symbol",
					Symbol:    fmt.Sprintf("%s %s%s", ref.Symbol.Kind, ref.Symbol.Name, ref.Symbol.Signature),
					Line:      ref.Symbol.StartLine,
					Relevance: relevance,
				})
			}
		}
	}

	for _, keyword := range keywords {
		usages, err := FindUsages(ix.Root, keyword)
		if err != nil {
			continue
		}
		for i, u := range usages {
			if i >= 5 {
				break
			}
			key := fmt.Sprintf("%s:%d", u.File, u.Line)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			matches = append(matches, Match{
				File:      u.File,
				MatchType: "content",
				Content:   u.Content,
				Line:      u.Line,
				UsageType: u.Type,
				Relevance: "medium",
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ri, rj := relevanceOrder(matches[i]), relevanceOrder(matches[j])
		return ri < rj
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func relevanceOrder(m Match) int {
	order := 0
	if m.Relevance != "high" {
		order += 2
	}
	if m.MatchType != "symbol" {
		order++
	}
	return order
}
