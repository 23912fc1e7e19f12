package validator

import (
	"sort"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// NodeInDegree returns the in-degree of every node, duplicate edges
// counted
func (v *Validator) NodeInDegree(o *models.Ontology) map[string]int {
	g := buildGraph(o)
	degrees := make(map[string]int, len(g.nodes))
	for _, id := range g.nodes {
		degrees[id] = 0
	}
	for _, e := range g.edges {
		degrees[e.dst]++
	}
	return degrees
}

// NodeOutDegree returns the out-degree of every node, duplicate edges
// counted
func (v *Validator) NodeOutDegree(o *models.Ontology) map[string]int {
	g := buildGraph(o)
	degrees := make(map[string]int, len(g.nodes))
	for _, id := range g.nodes {
		degrees[id] = 0
	}
	for _, e := range g.edges {
		degrees[e.src]++
	}
	return degrees
}

// AverageInDegree returns edge count divided by node count, 0 for an
// empty graph
func (v *Validator) AverageInDegree(o *models.Ontology) float64 {
	g := buildGraph(o)
	if len(g.nodes) == 0 {
		return 0
	}
	return float64(len(g.edges)) / float64(len(g.nodes))
}

// AverageOutDegree returns edge count divided by node count, 0 for an
// empty graph. In a directed graph this always equals AverageInDegree.
func (v *Validator) AverageOutDegree(o *models.Ontology) float64 {
	return v.AverageInDegree(o)
}

// LeafNodes returns the sorted ids of nodes with no outgoing edges
func (v *Validator) LeafNodes(o *models.Ontology) []string {
	g := buildGraph(o)
	out := v.NodeOutDegree(o)
	leaves := []string{}
	for _, id := range g.nodes {
		if out[id] == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// RootNodes returns the sorted ids of nodes with no incoming edges
func (v *Validator) RootNodes(o *models.Ontology) []string {
	g := buildGraph(o)
	in := v.NodeInDegree(o)
	roots := []string{}
	for _, id := range g.nodes {
		if in[id] == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// HubNodes returns the sorted ids of nodes whose total degree (in plus
// out) is at least minDegree
func (v *Validator) HubNodes(o *models.Ontology, minDegree int) []string {
	g := buildGraph(o)
	in := v.NodeInDegree(o)
	out := v.NodeOutDegree(o)
	hubs := []string{}
	for _, id := range g.nodes {
		if in[id]+out[id] >= minDegree {
			hubs = append(hubs, id)
		}
	}
	return hubs
}

// BridgeNodes returns the sorted ids of nodes that appear both as a
// relationship source and as a relationship target
func (v *Validator) BridgeNodes(o *models.Ontology) []string {
	g := buildGraph(o)
	sources := map[string]bool{}
	targets := map[string]bool{}
	for _, e := range g.edges {
		sources[e.src] = true
		targets[e.dst] = true
	}
	bridges := []string{}
	for _, id := range g.nodes {
		if sources[id] && targets[id] {
			bridges = append(bridges, id)
		}
	}
	return bridges
}

// SelfLoopCount returns the number of relationships whose source and
// target are the same node
func (v *Validator) SelfLoopCount(o *models.Ontology) int {
	g := buildGraph(o)
	count := 0
	for _, e := range g.edges {
		if e.src == e.dst {
			count++
		}
	}
	return count
}

// RelationshipLoopCount returns the number of relationships that close
// a loop of length one or two: self-loops, plus edges whose reverse
// edge also exists
func (v *Validator) RelationshipLoopCount(o *models.Ontology) int {
	g := buildGraph(o)
	forward := map[[2]string]bool{}
	for _, e := range g.edges {
		forward[[2]string{e.src, e.dst}] = true
	}
	count := 0
	for _, e := range g.edges {
		if e.src == e.dst || forward[[2]string{e.dst, e.src}] {
			count++
		}
	}
	return count
}

// TriangleCount returns the number of directed 3-cycles, each counted
// once, via successor-set intersection
func (v *Validator) TriangleCount(o *models.Ontology) int {
	g := buildGraph(o)
	succSet := make([]map[int]bool, len(g.nodes))
	for i, succ := range g.succ {
		succSet[i] = map[int]bool{}
		for _, j := range succ {
			succSet[i][j] = true
		}
	}
	count := 0
	for u := range g.nodes {
		for _, w := range g.succ[u] {
			if w == u {
				continue
			}
			for _, x := range g.succ[w] {
				if x == u || x == w {
					continue
				}
				if succSet[x][u] {
					count++
				}
			}
		}
	}
	// Each directed triangle is discovered once per participating node.
	return count / 3
}

// ClusteringCoefficientApprox returns the fraction of neighbor pairs of
// degree-2-or-more nodes that are themselves connected, averaged over
// those nodes. Direction is ignored.
func (v *Validator) ClusteringCoefficientApprox(o *models.Ontology) float64 {
	g := buildGraph(o)
	connected := map[[2]int]bool{}
	for _, e := range g.edges {
		s, d := g.index[e.src], g.index[e.dst]
		connected[[2]int{s, d}] = true
		connected[[2]int{d, s}] = true
	}
	sum := 0.0
	counted := 0
	for i := range g.nodes {
		nbrs := g.neighbors(i)
		if len(nbrs) < 2 {
			continue
		}
		pairs := 0
		linked := 0
		for a := 0; a < len(nbrs); a++ {
			for b := a + 1; b < len(nbrs); b++ {
				pairs++
				if connected[[2]int{nbrs[a], nbrs[b]}] {
					linked++
				}
			}
		}
		sum += float64(linked) / float64(pairs)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// ArticulationPointCount returns the number of nodes whose removal
// increases the number of connected components of the undirected view
func (v *Validator) ArticulationPointCount(o *models.Ontology) int {
	g := buildGraph(o)
	n := len(g.nodes)
	if n == 0 {
		return 0
	}
	base := undirectedComponents(g)
	count := 0
	for removed := 0; removed < n; removed++ {
		if componentsWithout(g, removed) > base {
			count++
		}
	}
	return count
}

// componentsWithout counts undirected components with one node excluded
func componentsWithout(g *digraph, removed int) int {
	n := len(g.nodes)
	visited := make([]bool, n)
	visited[removed] = true
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
				if next != removed && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return count
}

// SymmetricPairCount returns the number of unordered node pairs linked
// in both directions by relationships of the same type
func (v *Validator) SymmetricPairCount(o *models.Ontology) int {
	g := buildGraph(o)
	typed := map[[3]string]bool{}
	for _, e := range g.edges {
		typed[[3]string{e.src, e.dst, e.typ}] = true
	}
	seen := map[[3]string]bool{}
	count := 0
	for _, e := range g.edges {
		if e.src == e.dst {
			continue
		}
		if !typed[[3]string{e.dst, e.src, e.typ}] {
			continue
		}
		a, b := e.src, e.dst
		if a > b {
			a, b = b, a
		}
		key := [3]string{a, b, e.typ}
		if !seen[key] {
			seen[key] = true
			count++
		}
	}
	return count
}

// FanoutRatio returns the number of unique relationship targets divided
// by the total number of relationships, 0 when there are none
func (v *Validator) FanoutRatio(o *models.Ontology) float64 {
	g := buildGraph(o)
	if len(g.edges) == 0 {
		return 0
	}
	targets := map[string]bool{}
	for _, e := range g.edges {
		targets[e.dst] = true
	}
	return float64(len(targets)) / float64(len(g.edges))
}

// RedundancyScore returns the fraction of relationships that duplicate
// an earlier (source, target, type) triple
func (v *Validator) RedundancyScore(o *models.Ontology) float64 {
	g := buildGraph(o)
	if len(g.edges) == 0 {
		return 0
	}
	unique := map[[3]string]bool{}
	for _, e := range g.edges {
		unique[[3]string{e.src, e.dst, e.typ}] = true
	}
	duplicates := len(g.edges) - len(unique)
	return float64(duplicates) / float64(len(g.edges))
}

// DensityStats compares the actual edge count against the maximum a
// directed graph with self-loops could carry
type DensityStats struct {
	Nodes         int     `json:"nodes"`
	Edges         int     `json:"edges"`
	PossibleEdges int     `json:"possible_edges"`
	Density       float64 `json:"density"`
}

// DensityComparison returns actual versus maximum density, where the
// maximum for n nodes is n squared (self-loops allowed)
func (v *Validator) DensityComparison(o *models.Ontology) DensityStats {
	g := buildGraph(o)
	stats := DensityStats{
		Nodes:         len(g.nodes),
		Edges:         len(g.edges),
		PossibleEdges: len(g.nodes) * len(g.nodes),
	}
	if stats.PossibleEdges > 0 {
		stats.Density = float64(stats.Edges) / float64(stats.PossibleEdges)
	}
	return stats
}

// CycleCountEstimate returns max(0, E - V + components), the first
// Betti number of the undirected view, as a cheap cycle-count
// approximation
func (v *Validator) CycleCountEstimate(o *models.Ontology) int {
	g := buildGraph(o)
	if len(g.nodes) == 0 {
		return 0
	}
	estimate := len(g.edges) - len(g.nodes) + undirectedComponents(g)
	if estimate < 0 {
		return 0
	}
	return estimate
}

// AcyclicCheck reports whether the directed graph is acyclic, using
// DFS with recursion-stack detection. A self-loop counts as a cycle.
func (v *Validator) AcyclicCheck(o *models.Ontology) bool {
	g := buildGraph(o)
	for _, e := range g.edges {
		if e.src == e.dst {
			return false
		}
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.nodes))
	var visit func(node int) bool
	visit = func(node int) bool {
		color[node] = gray
		for _, next := range g.succ[node] {
			if color[next] == gray {
				return false
			}
			if color[next] == white && !visit(next) {
				return false
			}
		}
		color[node] = black
		return true
	}
	for i := range g.nodes {
		if color[i] == white && !visit(i) {
			return false
		}
	}
	return true
}

// NodeIDs returns every graph node id in the deterministic sorted
// order the validator uses internally
func (v *Validator) NodeIDs(o *models.Ontology) []string {
	g := buildGraph(o)
	ids := make([]string, len(g.nodes))
	copy(ids, g.nodes)
	sort.Strings(ids)
	return ids
}
