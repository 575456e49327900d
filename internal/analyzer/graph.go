// Package analyzer builds the relation dependency graph, detects
// strongly connected components, validates the recursion-in-iterate
// discipline, and emits the ordered, stratified program.
package analyzer

// dependencyGraph is a directed graph over relation names. Edges run
// body_relation -> head_relation for every positive body literal of
// every rule. The graph is small (one node per relation), so a plain
// adjacency list plus a name-to-id symbol table is all it needs.
type dependencyGraph struct {
	nameToID map[string]int
	names    []string
	adj      [][]int
	selfLoop []bool
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{nameToID: make(map[string]int)}
}

func (g *dependencyGraph) getOrCreate(name string) int {
	if id, ok := g.nameToID[name]; ok {
		return id
	}
	id := len(g.names)
	g.nameToID[name] = id
	g.names = append(g.names, name)
	g.adj = append(g.adj, nil)
	g.selfLoop = append(g.selfLoop, false)
	return id
}

func (g *dependencyGraph) addEdge(from, to int) {
	if from == to {
		g.selfLoop[from] = true
	}
	g.adj[from] = append(g.adj[from], to)
}

// scc is an ordered sequence of node ids produced by Tarjan's
// algorithm; it is recursive iff it has more than one node or its
// single node carries a self-edge.
type scc struct {
	nodes       []int
	isRecursive bool
}

// tarjanSCCs runs Tarjan's strongly-connected-components algorithm
// over g. The returned order is whatever order components finish
// popping off Tarjan's internal stack; callers needing a topological
// order over the condensation must compute one separately (see
// topoSortComponents).
func (g *dependencyGraph) tarjanSCCs() []scc {
	n := len(g.names)
	indices := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range indices {
		indices[i] = -1
	}

	var stack []int
	var next int
	var out []scc

	var strongconnect func(v int)
	strongconnect = func(v int) {
		indices[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if indices[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if indices[w] < low[v] {
					low[v] = indices[w]
				}
			}
		}

		if low[v] == indices[v] {
			var nodes []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				nodes = append(nodes, w)
				if w == v {
					break
				}
			}
			isRecursive := len(nodes) > 1
			if !isRecursive {
				isRecursive = g.selfLoop[nodes[0]]
			}
			out = append(out, scc{nodes: nodes, isRecursive: isRecursive})
		}
	}

	for v := 0; v < n; v++ {
		if indices[v] == -1 {
			strongconnect(v)
		}
	}
	return out
}

// topoSortComponents returns the indices into sccs in an order such
// that, for every dependency-graph edge u -> v whose endpoints fall in
// different components, u's component index precedes v's.
func topoSortComponents(g *dependencyGraph, sccs []scc) []int {
	nodeToComponent := make([]int, len(g.names))
	for ci, c := range sccs {
		for _, n := range c.nodes {
			nodeToComponent[n] = ci
		}
	}

	condAdj := make([][]int, len(sccs))
	seen := make(map[[2]int]bool)
	for u := range g.names {
		for _, v := range g.adj[u] {
			cu, cv := nodeToComponent[u], nodeToComponent[v]
			if cu == cv {
				continue
			}
			key := [2]int{cu, cv}
			if seen[key] {
				continue
			}
			seen[key] = true
			condAdj[cu] = append(condAdj[cu], cv)
		}
	}

	visited := make([]bool, len(sccs))
	var order []int
	var visit func(u int)
	visit = func(u int) {
		visited[u] = true
		for _, v := range condAdj[u] {
			if !visited[v] {
				visit(v)
			}
		}
		order = append(order, u)
	}
	for u := range sccs {
		if !visited[u] {
			visit(u)
		}
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
