package callgraph

import (
	"fmt"
	"strings"

	"github.com/quillpath/codeatlas/internal/index"
)

// tracedCalleesPerStep bounds how many callees each traced symbol expands.
const tracedCalleesPerStep = 5

// Step is one node visited by a flow trace.
type Step struct {
	Depth     int    `json:"depth"`
	Function  string `json:"function"`
	File      string `json:"file"`
	Line      int    `json:"line,omitempty"`
	Signature string `json:"signature,omitempty"`
	External  bool   `json:"external,omitempty"`
}

// Trace is the execution-flow expansion from one entry symbol.
type Trace struct {
	EntryPoint string `json:"entry_point"`
	Steps      []Step `json:"flow"`
}

// TraceFlow expands callees from entry up to maxDepth. A visited-name set
// guarantees each name is expanded at most once, so the trace terminates
// even under mutual recursion. Names with no definition in the index are
// recorded as external leaves.
func TraceFlow(ix *index.SymbolIndex, entry string, maxDepth int) (*Trace, error) {
	if len(ix.FindSymbol(entry)) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrSymbolNotFound, entry)
	}

	visited := make(map[string]struct{})
	var steps []Step

	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		if depth > maxDepth {
			return
		}
		if _, seen := visited[name]; seen {
			return
		}
		visited[name] = struct{}{}

		refs := ix.FindSymbol(name)
		if len(refs) == 0 {
			steps = append(steps, Step{
				Depth:    depth,
				Function: name,
				File:     "(external)",
				External: true,
			})
			return
		}

		ref := refs[0]
		steps = append(steps, Step{
			Depth:     depth,
			Function:  name,
			File:      ref.File,
			Line:      ref.Symbol.StartLine,
			Signature: ref.Symbol.Signature,
		})

		callees := findCallees(ix.Root, ref.File, ref.Symbol)
		if len(callees) > tracedCalleesPerStep {
			callees = callees[:tracedCalleesPerStep]
		}
		for _, c := range callees {
			walk(c.Name, depth+1)
		}
	}

	walk(entry, 0)
	return &Trace{EntryPoint: entry, Steps: steps}, nil
}

// Text renders the trace as an indented arrow listing.
func (t *Trace) Text() string {
	var b strings.Builder
	for i, step := range t.Steps {
		if i > 0 {
			b.WriteByte('\n')
		}
		indent := strings.Repeat("  ", step.Depth)
		if step.External {
			fmt.Fprintf(&b, "%s→ %s() [external]", indent, step.Function)
		} else {
			fmt.Fprintf(&b, "%s→ %s() @ %s:%d", indent, step.Function, step.File, step.Line)
		}
	}
	return b.String()
}
