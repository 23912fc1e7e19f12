package validator

import "github.com/ontoforge/ontoforge-go/pkg/models"

// NodeCount returns the number of graph nodes: entity ids plus any ids
// referenced only by relationship endpoints
func (v *Validator) NodeCount(o *models.Ontology) int {
	return len(buildGraph(o).nodes)
}

// EdgeCount returns the number of relationships, duplicates and
// self-loops included
func (v *Validator) EdgeCount(o *models.Ontology) int {
	return len(buildGraph(o).edges)
}

// ConnectedComponentsCount returns the number of connected components
// under undirected reachability over the edge set
func (v *Validator) ConnectedComponentsCount(o *models.Ontology) int {
	g := buildGraph(o)
	return undirectedComponents(g)
}

// WeaklyConnectedCount returns the number of weakly connected
// components of the directed graph, which coincides with undirected
// reachability
func (v *Validator) WeaklyConnectedCount(o *models.Ontology) int {
	return v.ConnectedComponentsCount(o)
}

// StronglyConnectedCount returns the number of strongly connected
// components via an iterative Tarjan traversal. A graph with no cycles
// has one SCC per node.
func (v *Validator) StronglyConnectedCount(o *models.Ontology) int {
	g := buildGraph(o)
	return len(tarjanSCC(g))
}

// undirectedComponents counts components by BFS over the undirected
// view of the graph
func undirectedComponents(g *digraph) int {
	n := len(g.nodes)
	visited := make([]bool, n)
	count := 0
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		count++
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.neighbors(cur) {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return count
}

// tarjanSCC computes strongly connected components with an explicit
// stack instead of recursion, so deep chains cannot overflow the
// goroutine stack
func tarjanSCC(g *digraph) [][]int {
	n := len(g.nodes)
	const unvisited = -1
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}
	var (
		sccs    [][]int
		stack   []int
		counter int
	)

	type frame struct {
		node int
		next int // next successor offset to visit
	}

	for start := 0; start < n; start++ {
		if index[start] != unvisited {
			continue
		}
		call := []frame{{node: start}}
		index[start] = counter
		lowlink[start] = counter
		counter++
		stack = append(stack, start)
		onStack[start] = true

		for len(call) > 0 {
			f := &call[len(call)-1]
			if f.next < len(g.succ[f.node]) {
				w := g.succ[f.node][f.next]
				f.next++
				if index[w] == unvisited {
					index[w] = counter
					lowlink[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					call = append(call, frame{node: w})
				} else if onStack[w] && index[w] < lowlink[f.node] {
					lowlink[f.node] = index[w]
				}
				continue
			}
			// All successors visited: pop frame, fold lowlink upward.
			node := f.node
			call = call[:len(call)-1]
			if len(call) > 0 {
				parent := call[len(call)-1].node
				if lowlink[node] < lowlink[parent] {
					lowlink[parent] = lowlink[node]
				}
			}
			if lowlink[node] == index[node] {
				var scc []int
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					scc = append(scc, top)
					if top == node {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs
}
