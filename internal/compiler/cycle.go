package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/midiscript/midiscript/internal/ast"
)

// CycleWarning describes a cycle in the sequence reference graph.
//
// A cycle reachable from the play target makes generation fail, so it is
// reported at level "error". Cycles among sequences that are never played
// are harmless to the output and reported as "warning".
type CycleWarning struct {
	Path    []string `json:"path"` // e.g. ["a", "b", "a"]
	Message string   `json:"message"`
	Level   string   `json:"level"` // "error" or "warning"
	Pos     ast.Pos  `json:"-"`     // declaration of Path[0]
}

// AnalyzeCycles finds every cycle among the declared sequences.
//
// It builds the reference graph (sequence -> sequences it references),
// finds strongly connected components with Tarjan's algorithm and reports
// each component with more than one member, or a single member that
// references itself. Unlike generation, which stops at the first cycle on
// the expansion path, this reports all of them. Results follow declaration
// order, so the output is deterministic.
func AnalyzeCycles(prog *ast.Program) []CycleWarning {
	if prog == nil {
		return nil
	}
	seqs := prog.Sequences()
	if len(seqs) == 0 {
		return nil
	}

	graph, order := buildReferenceGraph(prog)
	reachable := reachableFrom(prog, graph)

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(prog, scc, graph, order, reachable))
		}
	}

	// Tarjan emits components in reverse topological order; report them in
	// the order their first member was declared.
	slices.SortStableFunc(warnings, func(a, b CycleWarning) int {
		return slices.Index(order, a.Path[0]) - slices.Index(order, b.Path[0])
	})
	return warnings
}

// referenceGraph maps a sequence name to the declared sequences it
// references, in first-reference order without duplicates.
type referenceGraph map[string][]string

func buildReferenceGraph(prog *ast.Program) (referenceGraph, []string) {
	graph := make(referenceGraph)
	var order []string

	for _, seq := range prog.Sequences() {
		order = append(order, seq.Name)
		edges := []string{}
		for _, ev := range seq.Events {
			ref, ok := ev.(*ast.SequenceRef)
			if !ok {
				continue
			}
			if _, declared := prog.Lookup(ref.Name); !declared {
				continue
			}
			if !slices.Contains(edges, ref.Name) {
				edges = append(edges, ref.Name)
			}
		}
		graph[seq.Name] = edges
	}
	return graph, order
}

// reachableFrom returns the sequences the play target expands into,
// including itself. It is empty when the program has no valid play target.
func reachableFrom(prog *ast.Program, graph referenceGraph) map[string]bool {
	seen := make(map[string]bool)
	root := prog.MainName()
	if _, ok := graph[root]; !ok {
		return seen
	}

	queue := []string{root}
	seen[root] = true
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range graph[v] {
			if !seen[w] {
				seen[w] = true
				queue = append(queue, w)
			}
		}
	}
	return seen
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components, visiting roots in order.
func tarjanSCC(graph referenceGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(prog *ast.Program, scc []string, graph referenceGraph, order []string, reachable map[string]bool) CycleWarning {
	// Start from the member declared first.
	start := slices.MinFunc(scc, func(a, b string) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})
	path := shortestCycle(start, scc, graph)

	w := CycleWarning{
		Path:  path,
		Level: "warning",
	}
	if seq, ok := prog.Lookup(start); ok {
		w.Pos = seq.Start
	}

	played := false
	for _, name := range scc {
		if reachable[name] {
			played = true
			break
		}
	}

	joined := strings.Join(path, " -> ")
	switch {
	case played:
		w.Level = "error"
		w.Message = fmt.Sprintf("cyclic sequence reference: %s", joined)
	case len(path) == 2:
		w.Message = fmt.Sprintf("sequence %q references itself (never played)", start)
	default:
		w.Message = fmt.Sprintf("cycle among unplayed sequences: %s", joined)
	}
	return w
}

// shortestCycle returns the shortest path start -> ... -> start that stays
// inside the component, found breadth first.
func shortestCycle(start string, scc []string, graph referenceGraph) []string {
	if hasSelfLoop(start, graph) {
		return []string{start, start}
	}

	inSCC := make(map[string]bool, len(scc))
	for _, name := range scc {
		inSCC[name] = true
	}

	parent := map[string]string{}
	queue := []string{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range graph[v] {
			if !inSCC[w] {
				continue
			}
			if w == start {
				path := []string{start}
				for n := v; n != start; n = parent[n] {
					path = append(path, n)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if _, seen := parent[w]; !seen {
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}
	return []string{start}
}
