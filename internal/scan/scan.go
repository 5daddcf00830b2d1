// Package scan discovers source files in a repository, applying ignore
// rules, depth bounds and size bounds.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

const (
	// DefaultMaxDepth bounds directory descent relative to the root.
	DefaultMaxDepth = 15

	// DefaultMaxFileSize is the per-file size ceiling in bytes. Larger
	// files are skipped to protect downstream parsing.
	DefaultMaxFileSize = 1_000_000
)

// FileDescriptor describes one discovered file. RelativePath is
// forward-slash normalized and is the canonical file identity everywhere
// downstream.
type FileDescriptor struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Extension    string `json:"extension"`
	Size         int64  `json:"size"`
	Language     string `json:"language"`
}

// Options configures a scan. Zero values select the defaults.
type Options struct {
	MaxDepth          int
	MaxFileSize       int64
	IncludeExtensions []string
	// IncludeGlobs restricts results to relative paths matching at least
	// one doublestar pattern.
	IncludeGlobs []string
}

// languageByExtension maps file extensions to language names for stats and
// descriptors. Only a subset of these has a parse adapter.
var languageByExtension = map[string]string{
	".py": "python", ".pyw": "python",
	".ts": "typescript", ".tsx": "typescript",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".json": "json", ".yaml": "yaml", ".yml": "yaml",
	".md": "markdown", ".txt": "text", ".html": "html",
	".css": "css", ".scss": "scss", ".sql": "sql",
	".sh": "shell", ".bash": "shell", ".toml": "toml",
	".ini": "ini", ".cfg": "ini", ".xml": "xml",
	".go": "golang", ".rs": "rust", ".java": "java",
	".c": "c", ".h": "c", ".cpp": "cpp", ".hpp": "cpp",
}

// Language returns the language name for a file extension, or "unknown".
func Language(ext string) string {
	if l, ok := languageByExtension[strings.ToLower(ext)]; ok {
		return l
	}
	return "unknown"
}

// defaultIgnorePatterns is the built-in deny-list, merged with the
// project's .gitignore when present.
var defaultIgnorePatterns = []string{
	".git/",
	".git",
	"__pycache__/",
	"*.pyc",
	"node_modules/",
	".venv/",
	"venv/",
	".env",
	"dist/",
	"build/",
	"*.egg-info/",
	".idea/",
	".vscode/",
	"*.min.js",
	"*.min.css",
	"*.map",
	".DS_Store",
	"Thumbs.db",
	"*.log",
	"coverage/",
	".pytest_cache/",
	".mypy_cache/",
	".ruff_cache/",
}

func loadIgnore(root string) *ignore.GitIgnore {
	patterns := append([]string(nil), defaultIgnorePatterns...)
	if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				patterns = append(patterns, line)
			}
		}
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// Scan walks the tree under root and returns descriptors for every file
// that survives the ignore rules and bounds. Results are sorted by relative
// path so scan order is reproducible. Per-file read errors are swallowed;
// only a missing root is an error.
func Scan(root string, opts Options) ([]FileDescriptor, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	gi := loadIgnore(root)

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	extSet := make(map[string]struct{}, len(opts.IncludeExtensions))
	for _, ext := range opts.IncludeExtensions {
		extSet[strings.ToLower(ext)] = struct{}{}
	}

	var files []FileDescriptor

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			// Prune before descending: hidden directories, ignore
			// matches, and anything past the depth bound.
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if gi.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			if strings.Count(rel, "/")+1 > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi.MatchesPath(rel) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if len(extSet) > 0 {
			if _, ok := extSet[ext]; !ok {
				return nil
			}
		}
		if len(opts.IncludeGlobs) > 0 && !matchesAny(opts.IncludeGlobs, rel) {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if fi.Size() > maxSize {
			slog.Debug("skipping oversized file", "path", rel, "size", fi.Size())
			return nil
		}

		files = append(files, FileDescriptor{
			Path:         p,
			RelativePath: rel,
			Extension:    ext,
			Size:         fi.Size(),
			Language:     Language(ext),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	return files, nil
}

func matchesAny(globs []string, rel string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}
