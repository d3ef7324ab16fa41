package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/modinit/internal/ir"
)

// CycleReport describes one import cycle found by AnalyzeCycles.
type CycleReport struct {
	Members []string `json:"members"` // strongly connected component, registry order
	Path    []string `json:"path"`    // closed import chain: ["a", "b", "a"]
	Message string   `json:"message"`
}

// AnalyzeCycles finds every import cycle in the manifest.
//
// The engine stops at the first cycle it reaches. This analysis reports all
// of them, which is more useful while authoring a manifest:
//  1. Build the module -> import graph, ignoring unknown imports
//  2. Find strongly connected components with Tarjan's algorithm
//  3. Report each component with more than one member, or a self-import
//
// Reports are ordered by the registry position of their first member, and
// each path starts at that member and follows imports back to it. A DAG
// returns an empty list.
func AnalyzeCycles(m *ir.Manifest) []CycleReport {
	if m == nil || len(m.Modules) == 0 {
		return []CycleReport{}
	}

	graph, order := buildImportGraph(m)
	sccs := tarjanSCC(graph, order)

	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	reports := []CycleReport{}
	for _, scc := range sccs {
		if len(scc) == 1 && !slices.Contains(graph[scc[0]], scc[0]) {
			continue
		}
		slices.SortFunc(scc, func(a, b string) int { return rank[a] - rank[b] })
		path := shortestCycle(scc, graph)
		reports = append(reports, CycleReport{
			Members: scc,
			Path:    path,
			Message: fmt.Sprintf("import cycle: %s", strings.Join(path, " -> ")),
		})
	}
	slices.SortFunc(reports, func(a, b CycleReport) int {
		return rank[a.Members[0]] - rank[b.Members[0]]
	})
	return reports
}

// importGraph maps a module name to the names it imports, in declaration order.
type importGraph map[string][]string

// buildImportGraph returns the graph and the distinct module names in
// registry order. Imports of undeclared modules are dropped; Validate
// reports them separately.
func buildImportGraph(m *ir.Manifest) (importGraph, []string) {
	graph := make(importGraph, len(m.Modules))
	var order []string
	for _, mod := range m.Modules {
		if _, seen := graph[mod.Name]; !seen {
			graph[mod.Name] = []string{}
			order = append(order, mod.Name)
		}
	}
	for _, mod := range m.Modules {
		for _, imp := range mod.Imports {
			if _, known := graph[imp]; known {
				graph[mod.Name] = append(graph[mod.Name], imp)
			}
		}
	}
	return graph, order
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm,
// starting roots in the given order.
func tarjanSCC(graph importGraph, order []string) [][]string {
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

// shortestCycle returns the shortest closed import chain through scc[0]
// that stays inside the component. A self-import yields [a, a].
func shortestCycle(scc []string, graph importGraph) []string {
	start := scc[0]
	member := make(map[string]bool, len(scc))
	for _, name := range scc {
		member[name] = true
	}

	parent := map[string]string{}
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, w := range graph[u] {
			if w == start {
				path := []string{start}
				for n := u; n != start; n = parent[n] {
					path = append(path, n)
				}
				// Collected backwards from u.
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if member[w] && !visited[w] {
				visited[w] = true
				parent[w] = u
				queue = append(queue, w)
			}
		}
	}
	return []string{start, start}
}
