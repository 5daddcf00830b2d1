// Package arch classifies files into architectural layers by path keywords
// and renders the result as a Mermaid or ASCII diagram.
package arch

import (
	"fmt"
	"path"
	"strings"

	"github.com/quillpath/codeatlas/internal/scan"
)

// layer classification order matters: the first matching bucket wins.
var layerRules = []struct {
	name     string
	keywords []string
}{
	{"api", []string{"api/", "routes/", "endpoints/", "handlers/"}},
	{"services", []string{"service", "business", "logic", "core/"}},
	{"models", []string{"model", "schema", "entity", "database", "db/"}},
	{"components", []string{"component", "ui/", "views/", "pages/"}},
	{"utils", []string{"util", "helper", "lib/", "common/"}},
	{"config", []string{"config", "setting", "env"}},
}

// Layers maps layer names to the files classified into them.
type Layers map[string][]string

// Classify scans root and buckets every file into a layer by path keywords.
func Classify(root string) (Layers, string, error) {
	files, err := scan.Scan(root, scan.Options{})
	if err != nil {
		return nil, "", err
	}

	layers := make(Layers)
	for _, f := range files {
		p := strings.ToLower(f.RelativePath)
		for _, rule := range layerRules {
			if containsAny(p, rule.keywords) {
				layers[rule.name] = append(layers[rule.name], f.RelativePath)
				break
			}
		}
	}
	return layers, path.Base(root), nil
}

// Diagram renders the layer classification of root. format is "mermaid" or
// "ascii".
func Diagram(root, format string) (string, error) {
	layers, name, err := Classify(root)
	if err != nil {
		return "", err
	}
	if format == "ascii" {
		return asciiDiagram(layers, name), nil
	}
	return mermaidDiagram(layers, name), nil
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func mermaidDiagram(layers Layers, projectName string) string {
	lines := []string{
		"graph TB",
		fmt.Sprintf("    subgraph %s", projectName),
	}

	sub := func(key, id, title, prefix string) {
		if len(layers[key]) == 0 {
			return
		}
		lines = append(lines, fmt.Sprintf("        subgraph %s[%q]", id, title))
		for i, f := range layers[key] {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("            %s%d[%q]", prefix, i, path.Base(f)))
		}
		lines = append(lines, "        end")
	}

	sub("components", "UI", "UI Layer", "comp")
	sub("api", "API", "API Layer", "api")
	sub("services", "Services", "Business Logic", "svc")
	sub("models", "Data", "Data Layer", "model")

	lines = append(lines, "    end")

	if len(layers["components"]) > 0 && len(layers["api"]) > 0 {
		lines = append(lines, "    UI --> API")
	}
	if len(layers["api"]) > 0 && len(layers["services"]) > 0 {
		lines = append(lines, "    API --> Services")
	}
	switch {
	case len(layers["services"]) > 0 && len(layers["models"]) > 0:
		lines = append(lines, "    Services --> Data")
	case len(layers["api"]) > 0 && len(layers["models"]) > 0:
		lines = append(lines, "    API --> Data")
	}

	return strings.Join(lines, "\n")
}

func asciiDiagram(layers Layers, projectName string) string {
	lines := []string{
		fmt.Sprintf("=== %s Architecture ===", projectName),
		"",
	}

	order := []struct{ key, title string }{
		{"components", "UI Layer"},
		{"api", "API Layer"},
		{"services", "Business Logic"},
		{"models", "Data Layer"},
		{"utils", "Utilities"},
		{"config", "Configuration"},
	}

	for _, l := range order {
		files := layers[l.key]
		if len(files) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("┌─ %s (%d files)", l.title, len(files)))
		for i, f := range files {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("│  └─ %s", path.Base(f)))
		}
		if len(files) > 5 {
			lines = append(lines, fmt.Sprintf("│  └─ ... and %d more", len(files)-5))
		}
		lines = append(lines, "│")
	}

	return strings.Join(lines, "\n")
}
