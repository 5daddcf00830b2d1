package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quillpath/codeatlas/internal/model"
)

func TestResolveDottedSibling(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pkg/helpers.py", "def h(): pass")

	got, ok := Resolve(dir, "pkg/app.py", model.Import{Module: ".helpers", IsRelative: true})
	if !ok || got != "pkg/helpers.py" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolveDottedParent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pkg/common/util.py", "def u(): pass")

	got, ok := Resolve(dir, "pkg/sub/app.py", model.Import{Module: "..common.util", IsRelative: true})
	if !ok || got != "pkg/common/util.py" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolveSlashed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/utils/format.ts", "export function f() {}")

	got, ok := Resolve(dir, "src/app/main.ts", model.Import{Module: "../utils/format", IsRelative: true})
	if !ok || got != "src/utils/format.ts" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolveIndexFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "src/components/index.ts", "export {}")

	got, ok := Resolve(dir, "src/app.ts", model.Import{Module: "./components", IsRelative: true})
	if !ok || got != "src/components/index.ts" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolvePackageInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "pkg/__init__.py", "")
	writeFile(t, dir, "pkg/mod.py", "x = 1")

	got, ok := Resolve(dir, "app.py", model.Import{Module: ".pkg", IsRelative: true})
	if !ok || got != "pkg/__init__.py" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolveFallbackCandidate(t *testing.T) {
	t.Parallel()

	// Target does not exist; the candidate still resolves with the
	// importing file's extension so graph edges stay visible.
	dir := t.TempDir()

	got, ok := Resolve(dir, "app.py", model.Import{Module: ".missing", IsRelative: true})
	if !ok || got != "missing.py" {
		t.Fatalf("got %q, %v", got, ok)
	}

	got, ok = Resolve(dir, "src/main.ts", model.Import{Module: "./gone", IsRelative: true})
	if !ok || got != "src/gone.ts" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestResolveSkipsAbsoluteImports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, ok := Resolve(dir, "app.py", model.Import{Module: "os"}); ok {
		t.Error("absolute import should not resolve")
	}
	if _, ok := Resolve(dir, "app.py", model.Import{}); ok {
		t.Error("empty module should not resolve")
	}
}

func TestSplitRelative(t *testing.T) {
	t.Parallel()

	cases := []struct {
		module   string
		ascend   int
		segments []string
	}{
		{".mod", 0, []string{"mod"}},
		{"..pkg.mod", 1, []string{"pkg", "mod"}},
		{"...a", 2, []string{"a"}},
		{".", 0, nil},
		{"./mod", 0, []string{"mod"}},
		{"../pkg/mod", 1, []string{"pkg", "mod"}},
		{"../../x", 2, []string{"x"}},
		{"..", 1, nil},
	}

	for _, tc := range cases {
		ascend, segments := splitRelative(tc.module)
		if ascend != tc.ascend {
			t.Errorf("%q: ascend = %d, want %d", tc.module, ascend, tc.ascend)
		}
		if len(segments) != len(tc.segments) {
			t.Errorf("%q: segments = %v, want %v", tc.module, segments, tc.segments)
			continue
		}
		for i := range segments {
			if segments[i] != tc.segments[i] {
				t.Errorf("%q: segments = %v, want %v", tc.module, segments, tc.segments)
				break
			}
		}
	}
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
