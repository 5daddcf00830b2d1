// codeatlas builds a navigable model of a source codebase (symbols, imports,
// and the dependency and call graphs over them) and answers queries
// against it.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/quillpath/codeatlas/internal/arch"
	"github.com/quillpath/codeatlas/internal/callgraph"
	"github.com/quillpath/codeatlas/internal/compress"
	"github.com/quillpath/codeatlas/internal/gitlog"
	"github.com/quillpath/codeatlas/internal/impact"
	"github.com/quillpath/codeatlas/internal/index"
	"github.com/quillpath/codeatlas/internal/lang"
	"github.com/quillpath/codeatlas/internal/repomap"
	"github.com/quillpath/codeatlas/internal/scan"
	"github.com/quillpath/codeatlas/internal/search"
)

var version = "dev"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "codeatlas",
		Usage:     "code index and dependency graph engine",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Value: ".", Usage: "project root directory"},
			&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelWarn
			if c.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
		Commands: []*cli.Command{
			mapCommand(),
			symbolsCommand(),
			depsCommand(),
			callgraphCommand(),
			traceCommand(),
			impactCommand(),
			contextCommand(),
			usagesCommand(),
			searchCommand(),
			recentCommand(),
			statsCommand(),
			archCommand(),
		},
	}
}

func projectRoot(c *cli.Context) (string, error) {
	root, err := filepath.Abs(c.String("root"))
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", root)
	}
	return root, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "emit JSON instead of text"}
}

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "render a condensed repository map of all symbols",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-tokens", Value: repomap.DefaultMaxTokens, Usage: "token budget for the map"},
			&cli.IntFlag{Name: "max-files", Aliases: []string{"n"}, Usage: "keep only the top N files by rank"},
			&cli.BoolFlag{Name: "docstrings", Usage: "include docstrings"},
			&cli.StringFlag{Name: "cache", Usage: "cache file path"},
		},
		Action: func(c *cli.Context) error {
			root, err := projectRoot(c)
			if err != nil {
				return err
			}

			cachePath := c.String("cache")
			if cachePath != "" {
				files, err := scan.Scan(root, scan.Options{IncludeExtensions: lang.ParseableExtensions()})
				if err != nil {
					return err
				}
				if cacheIsFresh(cachePath, files) {
					if data, err := os.ReadFile(cachePath); err == nil {
						_, _ = c.App.Writer.Write(data)
						return nil
					}
				}
			}

			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			output := repomap.Generate(ix, filepath.Base(root), repomap.Options{
				MaxTokens:         c.Int("max-tokens"),
				IncludeDocstrings: c.Bool("docstrings"),
				MaxFiles:          c.Int("max-files"),
			})

			if cachePath != "" {
				_ = os.WriteFile(cachePath, []byte(output+"\n"), 0o644)
			}
			_, _ = fmt.Fprintln(c.App.Writer, output)
			return nil
		},
	}
}

// cacheIsFresh reports whether the cache file is newer than every scanned
// source file.
func cacheIsFresh(cachePath string, files []scan.FileDescriptor) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(f.Path)
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:      "symbols",
		Usage:     "find all definitions of a symbol by name",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: symbols <name>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			refs := ix.FindSymbol(c.Args().First())
			if c.Bool("json") {
				return printJSON(c.App.Writer, refs)
			}
			if len(refs) == 0 {
				_, _ = fmt.Fprintf(c.App.Writer, "no definitions of %q found\n", c.Args().First())
				return nil
			}
			for _, ref := range refs {
				parent := ""
				if ref.Symbol.Parent != "" {
					parent = " in " + ref.Symbol.Parent
				}
				_, _ = fmt.Fprintf(c.App.Writer, "%s:%d  %s %s%s%s\n",
					ref.File, ref.Symbol.StartLine, ref.Symbol.Kind, ref.Symbol.Name, ref.Symbol.Signature, parent)
			}
			return nil
		},
	}
}

func depsCommand() *cli.Command {
	return &cli.Command{
		Name:      "deps",
		Usage:     "show what a file imports and what imports it",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: deps <file>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			deps := ix.Dependencies(c.Args().First())
			if c.Bool("json") {
				return printJSON(c.App.Writer, deps)
			}
			w := c.App.Writer
			_, _ = fmt.Fprintf(w, "imports (%d):\n", len(deps.Imports))
			for _, f := range deps.Imports {
				_, _ = fmt.Fprintf(w, "  %s\n", f)
			}
			_, _ = fmt.Fprintf(w, "imported by (%d):\n", len(deps.ImportedBy))
			for _, f := range deps.ImportedBy {
				_, _ = fmt.Fprintf(w, "  %s\n", f)
			}
			_, _ = fmt.Fprintf(w, "symbols (%d):\n", len(deps.Symbols))
			for _, s := range deps.Symbols {
				_, _ = fmt.Fprintf(w, "  %s %s%s\n", s.Kind, s.Name, s.Signature)
			}
			return nil
		},
	}
}

func callgraphCommand() *cli.Command {
	return &cli.Command{
		Name:      "callgraph",
		Usage:     "show callers and callees of a function",
		ArgsUsage: "<function>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "direction", Value: string(callgraph.Both), Usage: "callers, callees, or both"},
			&cli.BoolFlag{Name: "mermaid", Usage: "print a Mermaid diagram"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: callgraph <function>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			result, err := callgraph.Analyze(ix, c.Args().First(), callgraph.Direction(c.String("direction")))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, result)
			}
			w := c.App.Writer
			_, _ = fmt.Fprintf(w, "%s @ %s:%d\n", result.Function, result.File, result.Line)
			if result.Callers != nil {
				_, _ = fmt.Fprintf(w, "callers (%d):\n", len(result.Callers))
				for _, caller := range result.Callers {
					_, _ = fmt.Fprintf(w, "  %s @ %s:%d\n", caller.Function, caller.File, caller.Line)
				}
			}
			if result.Callees != nil {
				_, _ = fmt.Fprintf(w, "callees (%d):\n", len(result.Callees))
				for _, callee := range result.Callees {
					_, _ = fmt.Fprintf(w, "  %s\n", callee.Name)
				}
			}
			if c.Bool("mermaid") {
				_, _ = fmt.Fprintln(w, result.Mermaid)
			}
			return nil
		},
	}
}

func traceCommand() *cli.Command {
	return &cli.Command{
		Name:      "trace",
		Usage:     "trace execution flow from an entry function",
		ArgsUsage: "<function>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-depth", Value: 10, Usage: "maximum trace depth"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: trace <function>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			trace, err := callgraph.TraceFlow(ix, c.Args().First(), c.Int("max-depth"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, trace)
			}
			_, _ = fmt.Fprintln(c.App.Writer, trace.Text())
			return nil
		},
	}
}

func impactCommand() *cli.Command {
	return &cli.Command{
		Name:      "impact",
		Usage:     "analyze what changing a file would affect",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: impact <file>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}
			report, err := impact.Analyze(ix, c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, report)
			}
			w := c.App.Writer
			_, _ = fmt.Fprintf(w, "%s: risk %s (%d affected)\n", report.File, report.Risk, report.TotalAffected)
			_, _ = fmt.Fprintf(w, "direct dependents (%d):\n", len(report.DirectDependents))
			for _, f := range report.DirectDependents {
				_, _ = fmt.Fprintf(w, "  %s\n", f)
			}
			_, _ = fmt.Fprintf(w, "indirect dependents (%d):\n", len(report.IndirectDependents))
			for _, f := range report.IndirectDependents {
				_, _ = fmt.Fprintf(w, "  %s\n", f)
			}
			_, _ = fmt.Fprintln(w, report.Recommendation)
			return nil
		},
	}
}

func contextCommand() *cli.Command {
	return &cli.Command{
		Name:      "context",
		Usage:     "render files in token-efficient form",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: string(compress.Smart), Usage: "full, signatures, or smart"},
			&cli.IntFlag{Name: "budget", Usage: "approximate token budget (0 = unlimited)"},
			&cli.BoolFlag{Name: "related", Usage: "treat the single argument as a target file and include its import neighborhood"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: context <file>...")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}

			if c.Bool("related") {
				if c.NArg() != 1 {
					return fmt.Errorf("--related takes exactly one file")
				}
				ix, err := index.Build(root)
				if err != nil {
					return err
				}
				ctx, err := repomap.FileContext(ix, c.Args().First())
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, ctx)
			}

			result := compress.Compress(root, c.Args().Slice(), compress.Mode(c.String("mode")), c.Int("budget"))
			if c.Bool("json") {
				return printJSON(c.App.Writer, result)
			}
			_, _ = fmt.Fprintln(c.App.Writer, result.Content)
			return nil
		},
	}
}

func usagesCommand() *cli.Command {
	return &cli.Command{
		Name:      "usages",
		Usage:     "find every textual usage of a symbol",
		ArgsUsage: "<symbol>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: usages <symbol>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			usages, err := search.FindUsages(root, c.Args().First())
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, usages)
			}
			for _, u := range usages {
				_, _ = fmt.Fprintf(c.App.Writer, "%s:%d [%s] %s\n", u.File, u.Line, u.Type, u.Content)
			}
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search symbols and content by keyword",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "top", Value: 10, Usage: "maximum number of results"},
			&cli.IntFlag{Name: "max-tokens", Usage: "assemble smart context under this token budget instead"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("usage: search <query>")
			}
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			ix, err := index.Build(root)
			if err != nil {
				return err
			}

			query := c.Args().First()
			if budget := c.Int("max-tokens"); budget > 0 {
				smart, err := search.Smart(ix, query, budget)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, smart)
			}

			matches, err := search.Query(ix, query, c.Int("top"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, matches)
			}
			for _, m := range matches {
				if m.MatchType == "symbol" {
					_, _ = fmt.Fprintf(c.App.Writer, "%s:%d [%s] %s\n", m.File, m.Line, m.Relevance, m.Symbol)
				} else {
					_, _ = fmt.Fprintf(c.App.Writer, "%s:%d [%s] %s\n", m.File, m.Line, m.UsageType, m.Content)
				}
			}
			return nil
		},
	}
}

func recentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "list recently changed files from git history",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: 7, Usage: "look back this many days"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			changes, err := gitlog.RecentChanges(root, c.Int("days"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, changes)
			}
			for _, ch := range changes {
				_, _ = fmt.Fprintf(c.App.Writer, "%s %s %s (%s)\n", ch.Date, ch.Commit, ch.File, ch.Message)
			}
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show repository statistics",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "include", Usage: "restrict to paths matching these glob patterns"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			stats, err := scan.Stats(root, scan.Options{IncludeGlobs: c.StringSlice("include")})
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(c.App.Writer, stats)
			}
			w := c.App.Writer
			_, _ = fmt.Fprintf(w, "files: %d, lines: %d\n", stats.TotalFiles, stats.TotalLines)
			for _, l := range sortedCountKeys(stats.Languages) {
				_, _ = fmt.Fprintf(w, "  %-12s %d\n", l, stats.Languages[l])
			}
			return nil
		},
	}
}

func archCommand() *cli.Command {
	return &cli.Command{
		Name:  "arch",
		Usage: "render an architecture diagram of project layers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "mermaid", Usage: "mermaid or ascii"},
		},
		Action: func(c *cli.Context) error {
			root, err := projectRoot(c)
			if err != nil {
				return err
			}
			diagram, err := arch.Diagram(root, c.String("format"))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.App.Writer, diagram)
			return nil
		},
	}
}

// sortedCountKeys orders map keys by descending count, name as tiebreak.
func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
