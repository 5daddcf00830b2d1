// Package gitlog answers recency queries against a repository's git
// history via an external git subprocess.
package gitlog

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNotRepository reports that git failed, typically because the target is
// not a git repository.
var ErrNotRepository = errors.New("not a git repository")

// ErrGitUnavailable reports that the git binary is not installed.
var ErrGitUnavailable = errors.New("git not found")

const (
	gitTimeout = 30 * time.Second

	// maxChanges caps the returned change list.
	maxChanges = 50
)

// Change is one recently modified file with its most recent commit.
type Change struct {
	File    string `json:"file"`
	Commit  string `json:"commit"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// RecentChanges lists files changed in the last days days, newest first,
// one entry per file. Failures are returned as error values, never panics:
// a missing git binary, a timeout, or a non-repository all report cleanly.
func RecentChanges(root string, days int) ([]Change, error) {
	since := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		"--since="+since,
		"--name-only",
		"--pretty=format:%H|%s|%an|%ad",
		"--date=short",
	)
	cmd.Dir = root

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("git log timed out after %s", gitTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrGitUnavailable
		}
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, root)
	}

	return parseLog(string(out)), nil
}

func parseLog(out string) []Change {
	var changes []Change
	var current *Change
	seen := make(map[string]struct{})

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Count(line, "|") >= 3 {
			parts := strings.SplitN(line, "|", 4)
			current = &Change{
				Commit:  clipStr(parts[0], 8),
				Message: clipStr(parts[1], 50),
				Author:  parts[2],
				Date:    parts[3],
			}
			continue
		}

		if current == nil {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}

		c := *current
		c.File = line
		changes = append(changes, c)
		if len(changes) >= maxChanges {
			break
		}
	}
	return changes
}

func clipStr(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
