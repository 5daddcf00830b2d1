// Package impact classifies the blast radius of changing a file, based on
// the import graph's dependent counts.
package impact

import (
	"errors"
	"fmt"
	"sort"

	"github.com/quillpath/codeatlas/internal/index"
	"github.com/quillpath/codeatlas/internal/model"
)

// ErrFileNotFound reports that the target file is not in the index.
var ErrFileNotFound = errors.New("file not found in index")

// Risk levels by total affected file count. Thresholds are design
// constants, not configurable.
const (
	RiskLow    = "low"    // 0 dependents
	RiskMedium = "medium" // 1–5
	RiskHigh   = "high"   // >5
)

// Report describes what changing one file would affect.
type Report struct {
	File               string   `json:"file"`
	ExportedSymbols    []string `json:"symbols_exported"`
	DirectDependents   []string `json:"direct_dependents"`
	IndirectDependents []string `json:"indirect_dependents"`
	TotalAffected      int      `json:"total_affected_files"`
	Risk               string   `json:"risk_level"`
	Recommendation     string   `json:"recommendation"`
}

// Analyze computes direct dependents (files importing filePath), indirect
// dependents (exactly one hop further, disjoint from direct and the target)
// and a risk classification.
func Analyze(ix *index.SymbolIndex, filePath string) (*Report, error) {
	if _, ok := ix.SymbolsByFile[filePath]; !ok {
		if _, edge := ix.ImportedBy[filePath]; !edge {
			return nil, fmt.Errorf("%w: %q", ErrFileNotFound, filePath)
		}
	}

	direct := ix.ImportedByFiles(filePath)
	directSet := make(map[string]struct{}, len(direct))
	for _, d := range direct {
		directSet[d] = struct{}{}
	}

	indirectSet := make(map[string]struct{})
	for _, d := range direct {
		for dep := range ix.ImportedBy[d] {
			if dep == filePath {
				continue
			}
			if _, isDirect := directSet[dep]; isDirect {
				continue
			}
			indirectSet[dep] = struct{}{}
		}
	}
	indirect := make([]string, 0, len(indirectSet))
	for f := range indirectSet {
		indirect = append(indirect, f)
	}
	sort.Strings(indirect)

	var exported []string
	for _, s := range ix.SymbolsByFile[filePath] {
		if model.Exported(s.Name) {
			exported = append(exported, fmt.Sprintf("%s %s%s", s.Kind, s.Name, s.Signature))
		}
	}

	total := len(direct) + len(indirect)
	risk := classify(total)

	return &Report{
		File:               filePath,
		ExportedSymbols:    exported,
		DirectDependents:   direct,
		IndirectDependents: indirect,
		TotalAffected:      total,
		Risk:               risk,
		Recommendation:     recommendation(risk, total),
	}, nil
}

func classify(totalAffected int) string {
	switch {
	case totalAffected == 0:
		return RiskLow
	case totalAffected <= 5:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func recommendation(risk string, affected int) string {
	switch risk {
	case RiskLow:
		return "Safe to modify. No other files depend on this."
	case RiskMedium:
		return fmt.Sprintf("Moderate caution. %d files may be affected. Review before changing public interfaces.", affected)
	default:
		return fmt.Sprintf("High impact. %d files depend on this. Consider backward compatibility and thorough testing.", affected)
	}
}
