// Package callgraph computes textual caller/callee relations around a
// target symbol. Detection is lexical, not semantic: it over-matches call
// lookalikes in strings and comments and under-matches aliased dispatch.
package callgraph

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quillpath/codeatlas/internal/index"
	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/model"
)

// ErrSymbolNotFound reports that the requested symbol has no definition in
// the index.
var ErrSymbolNotFound = errors.New("symbol not found")

const (
	// MaxCallers caps the caller list.
	MaxCallers = 50

	// MaxCallees caps the callee list.
	MaxCallees = 30
)

// Direction selects which side of the graph to compute.
type Direction string

const (
	Callers Direction = "callers"
	Callees Direction = "callees"
	Both    Direction = "both"
)

// Caller is a function or method whose body textually calls the target.
type Caller struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
}

// Callee is a name the target's body appears to call.
type Callee struct {
	Name string `json:"function"`
}

// Result is the call graph around one target symbol.
type Result struct {
	Function string   `json:"function"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Callers  []Caller `json:"callers,omitempty"`
	Callees  []Callee `json:"callees,omitempty"`
	Mermaid  string   `json:"mermaid"`
}

// Analyze resolves functionName to its first definition in the index and
// computes the requested sides of its call graph.
func Analyze(ix *index.SymbolIndex, functionName string, direction Direction) (*Result, error) {
	refs := ix.FindSymbol(functionName)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, functionName)
	}
	ref := refs[0]

	r := &Result{
		Function: functionName,
		File:     ref.File,
		Line:     ref.Symbol.StartLine,
	}

	if direction == Callers || direction == Both {
		r.Callers = findCallers(ix, functionName)
	}
	if direction == Callees || direction == Both {
		r.Callees = findCallees(ix.Root, ref.File, ref.Symbol)
	}
	r.Mermaid = mermaid(r)

	return r, nil
}

// findCallers scans every indexed file containing the literal call token and
// records each function or method whose line range contains it.
func findCallers(ix *index.SymbolIndex, functionName string) []Caller {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(functionName) + `\s*\(`)

	var callers []Caller
	for _, file := range ix.Files() {
		data, err := os.ReadFile(filepath.Join(ix.Root, filepath.FromSlash(file)))
		if err != nil {
			continue
		}
		content := string(data)
		if !pattern.MatchString(content) {
			continue
		}

		lines := strings.Split(content, "\n")
		for _, sym := range ix.SymbolsByFile[file] {
			if sym.Kind != model.Function && sym.Kind != model.Method {
				continue
			}
			if sym.Name == functionName {
				continue
			}
			if pattern.MatchString(symbolBody(lines, sym)) {
				callers = append(callers, Caller{File: file, Function: sym.Name, Line: sym.StartLine})
				if len(callers) >= MaxCallers {
					return callers
				}
			}
		}
	}
	return callers
}

var callTokenRe = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)

// findCallees re-reads the target's own line range and collects
// identifier-followed-by-paren tokens, excluding per-language keywords,
// duplicates and self-recursion.
func findCallees(root, file string, sym model.Symbol) []Callee {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(file)))
	if err != nil {
		return nil
	}
	body := symbolBody(strings.Split(string(data), "\n"), sym)

	keywords := pythonKeywords()
	if l := lang.ForExtension(path.Ext(file)); l != nil {
		keywords = l.CallKeywords
	}

	seen := make(map[string]struct{})
	var callees []Callee
	for _, m := range callTokenRe.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if name == sym.Name {
			continue
		}
		if _, kw := keywords[name]; kw {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		callees = append(callees, Callee{Name: name})
		if len(callees) >= MaxCallees {
			break
		}
	}
	return callees
}

func symbolBody(lines []string, sym model.Symbol) string {
	start := sym.StartLine - 1
	end := sym.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

func pythonKeywords() map[string]struct{} {
	if l, ok := lang.Languages["python"]; ok {
		return l.CallKeywords
	}
	return nil
}

// mermaid renders a flowchart of up to ten callers and callees around the
// target.
func mermaid(r *Result) string {
	lines := []string{"graph TD"}
	nodeID := strings.ReplaceAll(r.Function, ".", "_")
	lines = append(lines, fmt.Sprintf("    %s[%q]", nodeID, r.Function))

	for i, caller := range r.Callers {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("    caller_%d[%q] --> %s", i, caller.Function, nodeID))
	}
	for i, callee := range r.Callees {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("    %s --> callee_%d[%q]", nodeID, i, callee.Name))
	}
	return strings.Join(lines, "\n")
}
