package scan

import (
	"bytes"
	"os"
)

// RepoStats aggregates file counts across a repository scan.
type RepoStats struct {
	TotalFiles int            `json:"total_files"`
	TotalLines int            `json:"total_lines"`
	Languages  map[string]int `json:"languages"`
	FileTypes  map[string]int `json:"file_types"`
}

// Stats scans root and tallies files, lines, languages and extensions.
// Files that cannot be read count toward totals but contribute no lines.
func Stats(root string, opts Options) (*RepoStats, error) {
	files, err := Scan(root, opts)
	if err != nil {
		return nil, err
	}

	stats := &RepoStats{
		Languages: make(map[string]int),
		FileTypes: make(map[string]int),
	}

	for _, f := range files {
		stats.TotalFiles++
		stats.Languages[f.Language]++

		ext := f.Extension
		if ext == "" {
			ext = "no_extension"
		}
		stats.FileTypes[ext]++

		data, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		stats.TotalLines += countLines(data)
	}

	return stats, nil
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}
