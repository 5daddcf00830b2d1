package rank

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/quillpath/codeatlas/internal/index"
)

func buildIndex(t *testing.T, files map[string]string) *index.SymbolIndex {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	ix, err := index.Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func TestFilesHeavilyImportedRanksHighest(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"core.py": "def shared(): pass\n",
		"a.py":    "from .core import shared\n",
		"b.py":    "from .core import shared\n",
		"c.py":    "from .core import shared\n",
	})

	ranks := Files(ix)
	if len(ranks) != 4 {
		t.Fatalf("ranks = %v", ranks)
	}

	for _, other := range []string{"a.py", "b.py", "c.py"} {
		if ranks["core.py"] <= ranks[other] {
			t.Errorf("core.py (%f) should outrank %s (%f)", ranks["core.py"], other, ranks[other])
		}
	}
}

func TestFilesRanksSumToOne(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"core.py": "def shared(): pass\n",
		"a.py":    "from .core import shared\n",
		"b.py":    "def standalone(): pass\n",
	})

	ranks := Files(ix)
	var sum float64
	for _, r := range ranks {
		sum += r
	}
	if math.Abs(sum-1.0) > 0.01 {
		t.Errorf("ranks sum to %f, want ~1.0", sum)
	}
}

func TestFilesEmptyIndex(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{})
	if ranks := Files(ix); ranks != nil {
		t.Errorf("expected nil for empty index, got %v", ranks)
	}
}

func TestTop(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"core.py": "def shared(): pass\n",
		"a.py":    "from .core import shared\n",
		"b.py":    "from .core import shared\n",
	})

	top := Top(ix, 1)
	if len(top) != 1 || top[0] != "core.py" {
		t.Errorf("Top(1) = %v, want [core.py]", top)
	}

	all := Top(ix, 0)
	if len(all) != 3 {
		t.Errorf("Top(0) = %v, want all files", all)
	}
}
