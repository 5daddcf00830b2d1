package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quillpath/codeatlas/internal/index"
)

const (
	charsPerToken = 4

	// scoredFileLimit bounds how many candidate files smart context reads.
	scoredFileLimit = 20

	// alwaysIncludeFiles are truncated rather than dropped when the
	// budget runs out, so the top matches always appear.
	alwaysIncludeFiles = 3
)

// ScoredFile is one file selected by smart context.
type ScoredFile struct {
	File           string   `json:"file"`
	RelevanceScore float64  `json:"relevance_score"`
	MatchedSymbols []string `json:"matched_symbols,omitempty"`
	Content        string   `json:"content"`
}

// SmartContext is the result of question-driven context assembly.
type SmartContext struct {
	Question        string       `json:"question"`
	Keywords        []string     `json:"keywords_detected"`
	FilesAnalyzed   int          `json:"files_analyzed"`
	Files           []ScoredFile `json:"relevant_files"`
	EstimatedTokens int          `json:"total_tokens_estimate"`
}

// Smart scores indexed files against the question's keywords (exact symbol
// name matches score 10, substring matches 5, each textual usage 1) and
// packs the highest-scoring files greedily into maxTokens.
func Smart(ix *index.SymbolIndex, question string, maxTokens int) (*SmartContext, error) {
	keywords := ExtractKeywords(question)

	fileScores := make(map[string]float64)
	matched := make(map[string][]string)

	for _, keyword := range keywords {
		kw := strings.ToLower(keyword)
		for name, refs := range ix.SymbolsByName {
			if !strings.Contains(strings.ToLower(name), kw) {
				continue
			}
			score := 5.0
			if kw == strings.ToLower(name) {
				score = 10.0
			}
			for _, ref := range refs {
				fileScores[ref.File] += score
				matched[ref.File] = append(matched[ref.File],
					fmt.Sprintf("%s %s%s", ref.Symbol.Kind, ref.Symbol.Name, ref.Symbol.Signature))
			}
		}
	}

	for _, keyword := range keywords {
		usages, err := FindUsages(ix.Root, keyword)
		if err != nil {
			continue
		}
		for _, u := range usages {
			fileScores[u.File]++
		}
	}

	type scored struct {
		file  string
		score float64
	}
	ranked := make([]scored, 0, len(fileScores))
	for f, s := range fileScores {
		ranked = append(ranked, scored{f, s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].file < ranked[j].file
	})
	if len(ranked) > scoredFileLimit {
		ranked = ranked[:scoredFileLimit]
	}

	result := &SmartContext{
		Question:      question,
		Keywords:      keywords,
		FilesAnalyzed: len(fileScores),
	}

	totalChars := 0
	maxChars := maxTokens * charsPerToken

	for _, cand := range ranked {
		data, err := os.ReadFile(filepath.Join(ix.Root, filepath.FromSlash(cand.file)))
		if err != nil {
			continue
		}
		content := string(data)

		if totalChars+len(content) > maxChars {
			if len(result.Files) < alwaysIncludeFiles {
				content = content[:max(0, maxChars-totalChars)]
			} else {
				continue
			}
		}

		totalChars += len(content)
		result.Files = append(result.Files, ScoredFile{
			File:           cand.file,
			RelevanceScore: cand.score,
			MatchedSymbols: dedupe(matched[cand.file]),
			Content:        content,
		})

		if totalChars >= maxChars {
			break
		}
	}

	result.EstimatedTokens = totalChars / charsPerToken
	return result, nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
