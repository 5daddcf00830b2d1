package index

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/model"
)

// resolveExtensions is the probing priority order for import targets.
var resolveExtensions = []string{".py", ".ts", ".tsx", ".js", ".jsx"}

// resolveIndexFiles are the package-entry filenames probed when no direct
// file match exists.
var resolveIndexFiles = []string{"__init__.py", "index.ts", "index.tsx", "index.js", "index.jsx"}

// Resolve maps a relative import in fromFile to a repo-relative file path.
// Absolute and package imports are never resolved; that requires manifest
// knowledge outside this engine. When no probe succeeds, a best-effort
// candidate with the importing file's primary extension is returned;
// non-existence is tolerated downstream.
func Resolve(root, fromFile string, imp model.Import) (string, bool) {
	if imp.Module == "" || !imp.IsRelative {
		return "", false
	}

	dir := path.Dir(fromFile)
	ascend, segments := splitRelative(imp.Module)
	for i := 0; i < ascend; i++ {
		dir = path.Dir(dir)
	}
	target := path.Join(append([]string{dir}, segments...)...)

	for _, ext := range resolveExtensions {
		candidate := target + ext
		if fileExists(filepath.Join(root, filepath.FromSlash(candidate))) {
			return candidate, true
		}
	}
	for _, idx := range resolveIndexFiles {
		candidate := path.Join(target, idx)
		if fileExists(filepath.Join(root, filepath.FromSlash(candidate))) {
			return candidate, true
		}
	}

	ext := ".py"
	indexFile := "__init__.py"
	if l := lang.ForExtension(path.Ext(fromFile)); l != nil {
		ext = l.DefaultExtension
		indexFile = l.IndexFile
	}
	if target == "." {
		// A bare "from . import x" style reference at the repo root can
		// only mean the package entry file.
		return indexFile, true
	}
	return target + ext, true
}

// splitRelative decodes both relative-import spellings: dotted
// ("..pkg.mod") and slashed ("../pkg/mod"). It returns how many directory
// levels to ascend from the importing file's parent and the remaining
// segments to descend.
func splitRelative(module string) (int, []string) {
	if strings.Contains(module, "/") {
		ascend := 0
		rest := module
		for {
			switch {
			case strings.HasPrefix(rest, "./"):
				rest = rest[2:]
			case strings.HasPrefix(rest, "../"):
				ascend++
				rest = rest[3:]
			default:
				if rest == "." {
					rest = ""
				} else if rest == ".." {
					ascend++
					rest = ""
				}
				var segments []string
				for _, s := range strings.Split(rest, "/") {
					if s != "" {
						segments = append(segments, s)
					}
				}
				return ascend, segments
			}
		}
	}

	dots := 0
	for dots < len(module) && module[dots] == '.' {
		dots++
	}
	ascend := dots - 1
	if ascend < 0 {
		ascend = 0
	}
	var segments []string
	if rest := module[dots:]; rest != "" {
		segments = strings.Split(rest, ".")
	}
	return ascend, segments
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
