package gitlog

import (
	"strings"
	"testing"
)

func TestParseLog(t *testing.T) {
	t.Parallel()

	out := `abcdef1234567890|Fix login bug|Ana|2026-08-20
src/auth.py
src/session.py

1234567890abcdef|Add caching layer|Bo|2026-08-19
src/cache.py
src/auth.py
`
	changes := parseLog(out)

	if len(changes) != 3 {
		t.Fatalf("changes = %+v, want 3", changes)
	}

	first := changes[0]
	if first.File != "src/auth.py" {
		t.Errorf("first file = %q", first.File)
	}
	if first.Commit != "abcdef12" {
		t.Errorf("commit = %q, want 8-char hash", first.Commit)
	}
	if first.Message != "Fix login bug" || first.Author != "Ana" || first.Date != "2026-08-20" {
		t.Errorf("first change: %+v", first)
	}

	// src/auth.py appears in both commits; only the newest entry survives.
	authCount := 0
	for _, c := range changes {
		if c.File == "src/auth.py" {
			authCount++
			if c.Commit != "abcdef12" {
				t.Errorf("auth.py attributed to %q", c.Commit)
			}
		}
	}
	if authCount != 1 {
		t.Errorf("auth.py appears %d times", authCount)
	}

	if changes[2].File != "src/cache.py" || changes[2].Author != "Bo" {
		t.Errorf("third change: %+v", changes[2])
	}
}

func TestParseLogTruncatesMessage(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("m", 80)
	changes := parseLog("aaaabbbbccccdddd|" + long + "|Ana|2026-08-20\nfile.py\n")

	if len(changes) != 1 {
		t.Fatalf("changes = %+v", changes)
	}
	if len(changes[0].Message) != 50 {
		t.Errorf("message length = %d, want 50", len(changes[0].Message))
	}
}

func TestParseLogCapsChanges(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("aaaabbbbccccdddd|msg|Ana|2026-08-20\n")
	for i := 0; i < 100; i++ {
		b.WriteString(strings.Repeat("x", i+1) + ".py\n")
	}

	changes := parseLog(b.String())
	if len(changes) != maxChanges {
		t.Errorf("changes = %d, want %d", len(changes), maxChanges)
	}
}

func TestParseLogEmpty(t *testing.T) {
	t.Parallel()

	if changes := parseLog(""); len(changes) != 0 {
		t.Errorf("changes = %+v, want none", changes)
	}
}

func TestRecentChangesNotARepo(t *testing.T) {
	t.Parallel()

	_, err := RecentChanges(t.TempDir(), 7)
	if err == nil {
		t.Fatal("expected error outside a git repository")
	}
}
