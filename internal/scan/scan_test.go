package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanBasic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	writeFile(t, dir, "readme.md", "# hi")

	files, err := Scan(dir, Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), relPaths(files))
	}

	// Sorted by relative path.
	want := []string{"lib/util.py", "main.py", "readme.md"}
	for i, w := range want {
		if files[i].RelativePath != w {
			t.Errorf("file %d: got %q, want %q", i, files[i].RelativePath, w)
		}
	}

	if files[1].Language != "python" {
		t.Errorf("main.py language = %q, want python", files[1].Language)
	}
	if files[2].Language != "markdown" {
		t.Errorf("readme.md language = %q, want markdown", files[2].Language)
	}
}

func TestScanSkipsIgnoredDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.pyc", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, "dist/out.py", "pass")

	files, err := Scan(dir, Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d: %v", len(files), relPaths(files))
	}
	if files[0].RelativePath != "main.py" {
		t.Errorf("got %q, want main.py", files[0].RelativePath)
	}
}

func TestScanHonorsGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*.gen.py\n")
	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "generated/code.py", "pass")
	writeFile(t, dir, "types.gen.py", "pass")

	files, err := Scan(dir, Options{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	for _, f := range files {
		if strings.HasPrefix(f.RelativePath, "generated/") {
			t.Errorf("gitignored directory leaked: %q", f.RelativePath)
		}
		if strings.HasSuffix(f.RelativePath, ".gen.py") {
			t.Errorf("gitignored pattern leaked: %q", f.RelativePath)
		}
	}
}

func TestScanDepthBound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a/one.py", "pass")
	writeFile(t, dir, "a/b/two.py", "pass")
	writeFile(t, dir, "a/b/c/three.py", "pass")

	files, err := Scan(dir, Options{MaxDepth: 2})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got := relPaths(files)
	if len(got) != 2 {
		t.Fatalf("expected 2 files within depth 2, got %v", got)
	}
	for _, p := range got {
		if strings.Count(p, "/") > 2 {
			t.Errorf("file beyond depth bound: %q", p)
		}
	}
}

func TestScanSizeBound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "small.py", "pass")
	writeFile(t, dir, "big.py", strings.Repeat("x", 200))

	files, err := Scan(dir, Options{MaxFileSize: 100})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(files) != 1 || files[0].RelativePath != "small.py" {
		t.Fatalf("expected only small.py, got %v", relPaths(files))
	}
}

func TestScanExtensionFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "app.ts", "export {}")
	writeFile(t, dir, "readme.md", "# hi")

	files, err := Scan(dir, Options{IncludeExtensions: []string{".py", ".ts"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got := relPaths(files)
	if len(got) != 2 || got[0] != "app.ts" || got[1] != "main.py" {
		t.Fatalf("extension filter: got %v", got)
	}
}

func TestScanIncludeGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/app.py", "pass")
	writeFile(t, dir, "tests/test_app.py", "pass")

	files, err := Scan(dir, Options{IncludeGlobs: []string{"src/**"}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	got := relPaths(files)
	if len(got) != 1 || got[0] != "src/app.py" {
		t.Fatalf("glob filter: got %v", got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Scan(filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "line1\nline2\nline3")
	writeFile(t, dir, "b.ts", "const x = 1")

	stats, err := Stats(dir, Options{})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.Languages["python"] != 1 || stats.Languages["typescript"] != 1 {
		t.Errorf("Languages = %v", stats.Languages)
	}
	if stats.TotalLines != 4 {
		t.Errorf("TotalLines = %d, want 4", stats.TotalLines)
	}
}

func relPaths(files []FileDescriptor) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelativePath
	}
	return out
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
