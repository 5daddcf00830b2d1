// Package rank scores indexed files by PageRank over the file-level import
// graph, so budget-limited views can keep the most central files.
package rank

import (
	"math"
	"sort"

	"github.com/quillpath/codeatlas/internal/index"
)

const (
	alpha   = 0.85
	maxIter = 100
	tol     = 1e-6
)

// Files computes a PageRank score per indexed file. An edge from a to b
// means a imports b, so heavily-imported files rank highest.
func Files(ix *index.SymbolIndex) map[string]float64 {
	nodes := make(map[string]struct{}, len(ix.SymbolsByFile))
	for f := range ix.SymbolsByFile {
		nodes[f] = struct{}{}
	}
	n := len(nodes)
	if n == 0 {
		return nil
	}

	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for src, targets := range ix.ImportsOf {
		if _, ok := nodes[src]; !ok {
			continue
		}
		for tgt := range targets {
			if _, ok := nodes[tgt]; !ok {
				continue
			}
			outEdges[src] = append(outEdges[src], tgt)
			outDegree[src]++
		}
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}
		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

// Top returns the n highest-ranked files, ties broken by path for
// determinism. n <= 0 returns all files ranked.
func Top(ix *index.SymbolIndex, n int) []string {
	ranks := Files(ix)
	files := make([]string, 0, len(ranks))
	for f := range ranks {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		if ranks[files[i]] != ranks[files[j]] {
			return ranks[files[i]] > ranks[files[j]]
		}
		return files[i] < files[j]
	})
	if n > 0 && n < len(files) {
		files = files[:n]
	}
	return files
}
