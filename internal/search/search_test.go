package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quillpath/codeatlas/internal/index"
)

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

func buildIndex(t *testing.T, files map[string]string) *index.SymbolIndex {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		writeFile(t, dir, rel, content)
	}
	ix, err := index.Build(dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func TestFindUsages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "core.py", `def process(data):
    return data
`)
	writeFile(t, dir, "app.py", `from .core import process

result = process(input_data)
value = obj.process
`)

	usages, err := FindUsages(dir, "process")
	if err != nil {
		t.Fatalf("FindUsages: %v", err)
	}

	byType := make(map[string]int)
	for _, u := range usages {
		byType[u.Type]++
	}

	if byType["definition"] != 1 {
		t.Errorf("definitions = %d, usages: %+v", byType["definition"], usages)
	}
	if byType["import"] != 1 {
		t.Errorf("imports = %d, usages: %+v", byType["import"], usages)
	}
	if byType["call"] != 1 {
		t.Errorf("calls = %d, usages: %+v", byType["call"], usages)
	}
	if byType["attribute"] != 1 {
		t.Errorf("attributes = %d, usages: %+v", byType["attribute"], usages)
	}
}

func TestFindUsagesWordBoundary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", `run()
rerun()
running = True
`)

	usages, err := FindUsages(dir, "run")
	if err != nil {
		t.Fatalf("FindUsages: %v", err)
	}
	if len(usages) != 1 || usages[0].Line != 1 {
		t.Errorf("usages = %+v, want only the exact match", usages)
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	got := ExtractKeywords("How does the parse_file function work with UserModel?")
	want := []string{"parse_file", "UserModel"}

	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClassifyUsage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		line, symbol, want string
	}{
		{"def handle(req):", "handle", "definition"},
		{"async def handle(req):", "handle", "definition"},
		{"function handle(req) {", "handle", "definition"},
		{"class Handler:", "Handler", "definition"},
		{"from .api import handle", "handle", "import"},
		{"handle(request)", "handle", "call"},
		{"obj.handle", "handle", "attribute"},
		{"handle = make()", "handle", "assignment"},
		{"# see handle for details", "handle", "reference"},
	}
	for _, tc := range cases {
		if got := classifyUsage(tc.line, tc.symbol); got != tc.want {
			t.Errorf("classifyUsage(%q, %q) = %q, want %q", tc.line, tc.symbol, got, tc.want)
		}
	}
}

func TestQuery(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"auth.py": `def authenticate(user):
    pass

def authorize(user):
    pass
`,
	})

	matches, err := Query(ix, "authenticate", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches")
	}

	first := matches[0]
	if first.MatchType != "symbol" || first.Relevance != "high" {
		t.Errorf("first match: %+v", first)
	}
	if first.File != "auth.py" {
		t.Errorf("first match file = %q", first.File)
	}
}

func TestQueryTopK(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"a.py": "def handler_a(): pass\n",
		"b.py": "def handler_b(): pass\n",
		"c.py": "def handler_c(): pass\n",
	})

	matches, err := Query(ix, "handler", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) > 2 {
		t.Errorf("topK not applied: %d matches", len(matches))
	}
}

func TestSmart(t *testing.T) {
	t.Parallel()

	ix := buildIndex(t, map[string]string{
		"auth.py":  "def authenticate(user):\n    pass\n",
		"other.py": "def unrelated(): pass\n",
	})

	result, err := Smart(ix, "how does authenticate work", 1000)
	if err != nil {
		t.Fatalf("Smart: %v", err)
	}

	if len(result.Files) == 0 {
		t.Fatal("expected relevant files")
	}
	if result.Files[0].File != "auth.py" {
		t.Errorf("top file = %q, want auth.py", result.Files[0].File)
	}
	if result.Files[0].RelevanceScore <= 0 {
		t.Errorf("score = %f", result.Files[0].RelevanceScore)
	}
	if len(result.Files[0].MatchedSymbols) == 0 {
		t.Error("expected matched symbols")
	}
	if result.EstimatedTokens <= 0 {
		t.Error("expected token estimate")
	}
}

func TestSmartBudget(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".py"] = "def handler_" + name + "():\n" +
			"    data = 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx'\n"
	}
	ix := buildIndex(t, files)

	result, err := Smart(ix, "handler", 10)
	if err != nil {
		t.Fatalf("Smart: %v", err)
	}

	// The budget clamps output but the top matches still appear.
	if len(result.Files) == 0 {
		t.Fatal("expected at least the always-included files")
	}
	if result.EstimatedTokens > 15 {
		t.Errorf("estimated tokens = %d, want near the budget", result.EstimatedTokens)
	}
}
