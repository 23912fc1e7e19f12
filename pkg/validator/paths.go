package validator

import "github.com/ontoforge/ontoforge-go/pkg/models"

// CyclicPath is the sentinel returned by LongestPath when a cycle is
// reachable from the source. It is a deliberate sentinel preserved for
// the JSON boundary, not an error.
const CyclicPath = -1

// PathResult is the tagged form of a longest-path query
type PathResult struct {
	Length int  `json:"length"`
	Cyclic bool `json:"cyclic"`
}

// Sentinel folds the tagged result into the numeric wire form:
// the path length, or CyclicPath when a cycle was reached.
func (p PathResult) Sentinel() int {
	if p.Cyclic {
		return CyclicPath
	}
	return p.Length
}

// LongestPathFrom returns the longest path (in edges) reachable from
// the given source. If any cycle is reachable from the source the
// result is tagged cyclic; path length is undefined on cyclic reach.
func (v *Validator) LongestPathFrom(o *models.Ontology, sourceID string) PathResult {
	g := buildGraph(o)
	start, ok := g.index[sourceID]
	if !ok {
		return PathResult{Length: 0}
	}
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(g.nodes))
	longest := make([]int, len(g.nodes))
	cyclic := false

	var visit func(node int)
	visit = func(node int) {
		color[node] = gray
		best := 0
		for _, next := range g.succ[node] {
			switch color[next] {
			case gray:
				cyclic = true
				return
			case white:
				visit(next)
				if cyclic {
					return
				}
			}
			if longest[next]+1 > best {
				best = longest[next] + 1
			}
		}
		longest[node] = best
		color[node] = black
	}
	visit(start)
	if cyclic {
		return PathResult{Cyclic: true}
	}
	return PathResult{Length: longest[start]}
}

// LongestPath returns the longest path length from the source, or the
// CyclicPath sentinel (-1) when a cycle is reachable from it
func (v *Validator) LongestPath(o *models.Ontology, sourceID string) int {
	return v.LongestPathFrom(o, sourceID).Sentinel()
}

// MultiHopCount returns the number of distinct nodes reachable from the
// source within maxHops edges, excluding the source itself. Unknown
// sources and non-positive hop budgets yield 0.
func (v *Validator) MultiHopCount(o *models.Ontology, sourceID string, maxHops int) int {
	g := buildGraph(o)
	start, ok := g.index[sourceID]
	if !ok || maxHops <= 0 {
		return 0
	}
	dist := g.bfsFrom(start)
	count := 0
	for node, d := range dist {
		if node != start && d >= 0 && d <= maxHops {
			count++
		}
	}
	return count
}

// MaxDAGDepth returns the longest path (in edges) anywhere in the
// graph, or the CyclicPath sentinel when the graph contains a cycle
func (v *Validator) MaxDAGDepth(o *models.Ontology) int {
	if !v.AcyclicCheck(o) {
		return CyclicPath
	}
	g := buildGraph(o)
	max := 0
	for _, id := range g.nodes {
		if r := v.LongestPathFrom(o, id); r.Length > max {
			max = r.Length
		}
	}
	return max
}

// NodeEccentricity pairs a node id with its eccentricity: the maximum
// BFS distance to any node reachable from it, self-loops ignored.
type NodeEccentricity struct {
	NodeID       string `json:"node_id"`
	Eccentricity int    `json:"eccentricity"`
}

// EccentricityDistribution returns the per-node eccentricities sorted
// by node id for determinism
func (v *Validator) EccentricityDistribution(o *models.Ontology) []NodeEccentricity {
	g := buildGraph(o)
	out := make([]NodeEccentricity, 0, len(g.nodes))
	for i, id := range g.nodes {
		out = append(out, NodeEccentricity{NodeID: id, Eccentricity: g.eccentricity(i)})
	}
	return out
}

// DiameterApprox returns the maximum over all-pairs BFS shortest-path
// distances, ignoring self-loops. Empty and edgeless graphs yield 0.
func (v *Validator) DiameterApprox(o *models.Ontology) int {
	g := buildGraph(o)
	max := 0
	for i := range g.nodes {
		if ecc := g.eccentricity(i); ecc > max {
			max = ecc
		}
	}
	return max
}

// RadiusApprox returns the minimum positive eccentricity, or 0 when no
// node can reach another
func (v *Validator) RadiusApprox(o *models.Ontology) int {
	g := buildGraph(o)
	radius := 0
	for i := range g.nodes {
		ecc := g.eccentricity(i)
		if ecc > 0 && (radius == 0 || ecc < radius) {
			radius = ecc
		}
	}
	return radius
}

// PeripherySize returns the number of nodes whose eccentricity equals
// the diameter. A graph with diameter 0 has no periphery.
func (v *Validator) PeripherySize(o *models.Ontology) int {
	g := buildGraph(o)
	diameter := 0
	eccs := make([]int, len(g.nodes))
	for i := range g.nodes {
		eccs[i] = g.eccentricity(i)
		if eccs[i] > diameter {
			diameter = eccs[i]
		}
	}
	if diameter == 0 {
		return 0
	}
	count := 0
	for _, ecc := range eccs {
		if ecc == diameter {
			count++
		}
	}
	return count
}

// bfsFrom returns shortest-path distances from start to every node;
// unreachable nodes carry -1. Self-loops never shorten a distance and
// are skipped outright.
func (g *digraph) bfsFrom(start int) []int {
	dist := make([]int, len(g.nodes))
	for i := range dist {
		dist[i] = -1
	}
	dist[start] = 0
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.succ[cur] {
			if next == cur {
				continue // self-loop
			}
			if dist[next] == -1 {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}

// eccentricity returns the maximum BFS distance from node i to any
// reachable node, self-loops ignored
func (g *digraph) eccentricity(i int) int {
	dist := g.bfsFrom(i)
	max := 0
	for _, d := range dist {
		if d > max {
			max = d
		}
	}
	return max
}
