// Package dag provides directed acyclic graph operations over indicator
// dependencies. Calculated indicators reference other indicators in their
// formulas; the graph orders recomputation and rejects definition cycles.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed graph keyed by indicator ID.
type Graph struct {
	nodes   map[int]bool
	edges   map[int][]int // dependency -> dependents
	parents map[int][]int // dependent -> dependencies
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[int]bool),
		edges:   make(map[int][]int),
		parents: make(map[int][]int),
	}
}

// AddNode adds an indicator to the graph. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id int) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.edges[id] = []int{}
		g.parents[id] = []int{}
	}
}

// AddEdge records that dependent is computed from dependency.
func (g *Graph) AddEdge(dependency, dependent int) error {
	if !g.nodes[dependency] {
		return fmt.Errorf("indicator %d does not exist", dependency)
	}
	if !g.nodes[dependent] {
		return fmt.Errorf("indicator %d does not exist", dependent)
	}
	if dependency == dependent {
		return fmt.Errorf("indicator %d references itself", dependency)
	}

	if !containsInt(g.edges[dependency], dependent) {
		g.edges[dependency] = append(g.edges[dependency], dependent)
	}
	if !containsInt(g.parents[dependent], dependency) {
		g.parents[dependent] = append(g.parents[dependent], dependency)
	}

	return nil
}

// Has reports whether the indicator is in the graph.
func (g *Graph) Has(id int) bool {
	return g.nodes[id]
}

// Dependencies returns the indicators the given one is computed from.
func (g *Graph) Dependencies(id int) []int {
	return g.parents[id]
}

// Dependents returns the indicators computed from the given one.
func (g *Graph) Dependents(id int) []int {
	return g.edges[id]
}

// NodeCount returns the number of indicators in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path for error reporting.
func (g *Graph) HasCycle() (bool, []int) {
	visited := make(map[int]bool)
	recStack := make(map[int]bool)
	path := make(map[int]int)

	var cyclePath []int

	var dfs func(id int) bool
	dfs = func(id int) bool {
		visited[id] = true
		recStack[id] = true

		for _, next := range g.edges[id] {
			if !visited[next] {
				path[next] = id
				if dfs(next) {
					return true
				}
			} else if recStack[next] {
				// Found cycle, reconstruct path
				cyclePath = []int{next}
				for curr := id; curr != next; curr = path[curr] {
					cyclePath = append([]int{curr}, cyclePath...)
				}
				cyclePath = append([]int{next}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	ids := g.sortedIDs()
	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// TopologicalSort returns indicator IDs with every dependency ordered before
// its dependents. Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]int, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[int]bool)
	var result []int

	var visit func(id int)
	visit = func(id int) {
		if visited[id] {
			return
		}
		visited[id] = true

		for _, dep := range g.parents[id] {
			visit(dep)
		}

		result = append(result, id)
	}

	// Sorted start order keeps ties deterministic
	for _, id := range g.sortedIDs() {
		visit(id)
	}

	return result, nil
}

func (g *Graph) sortedIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func containsInt(slice []int, n int) bool {
	for _, v := range slice {
		if v == n {
			return true
		}
	}
	return false
}
