package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quillpath/codeatlas/internal/lang"
)

func TestParseNilCases(t *testing.T) {
	t.Parallel()

	if pf := Parse([]byte("def f(): pass"), nil); pf != nil {
		t.Error("nil language should yield nil")
	}
	if pf := Parse(nil, lang.ForExtension(".py")); pf != nil {
		t.Error("empty source should yield nil")
	}
}

func TestParseGarbageYieldsNil(t *testing.T) {
	t.Parallel()

	pf := Parse([]byte("%%% ??? not python at all }{"), lang.ForExtension(".py"))
	if pf != nil {
		t.Errorf("expected nil for unparseable source, got %+v", pf)
	}
}

func TestParseExports(t *testing.T) {
	t.Parallel()

	source := `def public(): pass

def _private(): pass

class Thing: pass
`
	pf := Parse([]byte(source), lang.ForExtension(".py"))
	if pf == nil {
		t.Fatal("expected parsed file")
	}
	if pf.Language != "python" {
		t.Errorf("language = %q", pf.Language)
	}
	if len(pf.Exports) != 2 {
		t.Fatalf("exports = %v, want [public Thing]", pf.Exports)
	}
	if pf.Exports[0] != "public" || pf.Exports[1] != "Thing" {
		t.Errorf("exports = %v", pf.Exports)
	}
}

func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	if err := os.WriteFile(path, []byte("def run(): pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pf := File(path)
	if pf == nil {
		t.Fatal("expected parsed file")
	}
	if pf.Path != path {
		t.Errorf("path = %q, want %q", pf.Path, path)
	}
	if len(pf.Symbols) != 1 || pf.Symbols[0].Name != "run" {
		t.Errorf("symbols = %+v", pf.Symbols)
	}
}

func TestFileUnsupportedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if pf := File(path); pf != nil {
		t.Errorf("expected nil for .txt, got %+v", pf)
	}
}
