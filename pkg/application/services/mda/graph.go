package mda

import (
	"sort"
)

// Component is a strongly connected set of disciplines. Acyclic disciplines
// form singleton components; feedback loops form cyclic ones.
type Component struct {
	Members []int    // registration indices, ascending
	Names   []string // discipline names, in Members order
	Cyclic  bool
	Level   int // longest path from a source component
}

// DependencyGraph links producers to consumers of each variable
type DependencyGraph struct {
	names      []string
	successors [][]int
	components []Component
}

// BuildDependencyGraph builds the graph from descriptors in registration order
func BuildDependencyGraph(descriptors []Descriptor) *DependencyGraph {
	n := len(descriptors)
	g := &DependencyGraph{
		names:      make([]string, n),
		successors: make([][]int, n),
	}

	producers := make(map[string][]int)
	for i, d := range descriptors {
		g.names[i] = d.Name
		for _, out := range d.Outputs {
			producers[out.Name] = append(producers[out.Name], i)
		}
	}

	for consumer, d := range descriptors {
		linked := make(map[int]bool)
		for _, in := range d.Inputs {
			for _, producer := range producers[in.Name] {
				if linked[producer] {
					continue
				}
				linked[producer] = true
				g.successors[producer] = append(g.successors[producer], consumer)
			}
		}
	}
	for i := range g.successors {
		sort.Ints(g.successors[i])
	}

	g.components = g.orderComponents(g.stronglyConnected())
	return g
}

// Components returns the components in execution order
func (g *DependencyGraph) Components() []Component {
	return g.components
}

// Levels groups components that can execute concurrently
func (g *DependencyGraph) Levels() [][]Component {
	var levels [][]Component
	for _, c := range g.components {
		for len(levels) <= c.Level {
			levels = append(levels, nil)
		}
		levels[c.Level] = append(levels[c.Level], c)
	}
	return levels
}

// Order returns discipline names in execution order
func (g *DependencyGraph) Order() []string {
	order := make([]string, 0, len(g.names))
	for _, c := range g.components {
		order = append(order, c.Names...)
	}
	return order
}

// HasCycles reports whether any feedback loop exists
func (g *DependencyGraph) HasCycles() bool {
	for _, c := range g.components {
		if c.Cyclic {
			return true
		}
	}
	return false
}

// stronglyConnected runs Tarjan's algorithm and returns components as
// ascending member lists.
func (g *DependencyGraph) stronglyConnected() [][]int {
	n := len(g.names)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var (
		counter    int
		stack      []int
		components [][]int
	)

	var visit func(v int)
	visit = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.successors[v] {
			if index[w] == -1 {
				visit(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				lowlink[v] = index[w]
			}
		}

		if lowlink[v] == index[v] {
			var members []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sort.Ints(members)
			components = append(components, members)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			visit(v)
		}
	}
	return components
}

// orderComponents sorts the condensed graph with Kahn's algorithm. Among
// ready components the one registered first runs first.
func (g *DependencyGraph) orderComponents(sccs [][]int) []Component {
	componentOf := make([]int, len(g.names))
	for c, members := range sccs {
		for _, m := range members {
			componentOf[m] = c
		}
	}

	inDegree := make([]int, len(sccs))
	next := make([]map[int]bool, len(sccs))
	cyclic := make([]bool, len(sccs))
	for c := range sccs {
		next[c] = make(map[int]bool)
		cyclic[c] = len(sccs[c]) > 1
	}
	for v, succ := range g.successors {
		from := componentOf[v]
		for _, w := range succ {
			to := componentOf[w]
			if from == to {
				if v == w {
					cyclic[from] = true
				}
				continue
			}
			if !next[from][to] {
				next[from][to] = true
				inDegree[to]++
			}
		}
	}

	// Components are keyed by their first registered member
	firstMember := func(c int) int { return sccs[c][0] }

	ready := make([]int, 0)
	for c, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, c)
		}
	}

	level := make([]int, len(sccs))
	result := make([]Component, 0, len(sccs))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return firstMember(ready[i]) < firstMember(ready[j]) })
		current := ready[0]
		ready = ready[1:]

		names := make([]string, len(sccs[current]))
		for i, m := range sccs[current] {
			names[i] = g.names[m]
		}
		result = append(result, Component{
			Members: sccs[current],
			Names:   names,
			Cyclic:  cyclic[current],
			Level:   level[current],
		})

		for to := range next[current] {
			if level[current]+1 > level[to] {
				level[to] = level[current] + 1
			}
			inDegree[to]--
			if inDegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	return result
}
