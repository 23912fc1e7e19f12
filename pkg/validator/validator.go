// Package validator answers structural questions about an ontology
// treated as a directed graph: nodes are every entity id plus every id
// referenced by a relationship endpoint, edges are relationships, and
// self-loops are permitted. All methods are pure, accept empty or
// missing entity/relationship sets gracefully, and produce
// deterministic sorted output.
package validator

import (
	"fmt"
	"sort"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Validator performs structural analysis of ontologies. It holds no
// state; every method builds its view of the graph from the ontology
// passed in.
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

// DanglingReference reports a relationship endpoint id with no
// corresponding entity
type DanglingReference struct {
	RelationshipID string `json:"relationship_id"`
	MissingID      string `json:"missing_id"`
	Field          string `json:"field"` // "source_id" or "target_id"
}

// ConsistencyResult is the outcome of a consistency check. Structural
// defects are reported as data, never as errors.
type ConsistencyResult struct {
	Valid              bool                `json:"valid"`
	DanglingReferences []DanglingReference `json:"dangling_references"`
}

// Fix is a suggested corrective action for a structural defect,
// consumed by the mediator
type Fix struct {
	Type        string  `json:"type"`
	Target      string  `json:"target"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// FixTypeDanglingReference is the fix type emitted for dangling
// relationship endpoints.
const FixTypeDanglingReference = "add_entity_or_remove_relationship"

// ConsistencyCheck builds the entity-id set and reports every
// relationship endpoint that references a missing entity. Output is
// sorted by relationship id, then field.
func (v *Validator) ConsistencyCheck(o *models.Ontology) ConsistencyResult {
	result := ConsistencyResult{Valid: true, DanglingReferences: []DanglingReference{}}
	if o == nil {
		return result
	}
	ids := o.EntityIDSet()
	for i := range o.Relationships {
		r := &o.Relationships[i]
		if !ids[r.SourceID] {
			result.DanglingReferences = append(result.DanglingReferences, DanglingReference{
				RelationshipID: r.ID,
				MissingID:      r.SourceID,
				Field:          "source_id",
			})
		}
		if !ids[r.TargetID] {
			result.DanglingReferences = append(result.DanglingReferences, DanglingReference{
				RelationshipID: r.ID,
				MissingID:      r.TargetID,
				Field:          "target_id",
			})
		}
	}
	sort.Slice(result.DanglingReferences, func(i, j int) bool {
		a, b := result.DanglingReferences[i], result.DanglingReferences[j]
		if a.RelationshipID != b.RelationshipID {
			return a.RelationshipID < b.RelationshipID
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.MissingID < b.MissingID
	})
	result.Valid = len(result.DanglingReferences) == 0
	return result
}

// SuggestFixesForResult maps each distinct dangling id in a
// consistency result to one fix record, sorted by target id
func (v *Validator) SuggestFixesForResult(result ConsistencyResult) []Fix {
	seen := make(map[string]bool)
	fixes := []Fix{}
	for _, ref := range result.DanglingReferences {
		if seen[ref.MissingID] {
			continue
		}
		seen[ref.MissingID] = true
		fixes = append(fixes, Fix{
			Type:        FixTypeDanglingReference,
			Target:      ref.MissingID,
			Description: fmt.Sprintf("relationship %s references missing entity %s; add the entity or remove the relationship", ref.RelationshipID, ref.MissingID),
			Confidence:  0.8,
		})
	}
	sort.Slice(fixes, func(i, j int) bool { return fixes[i].Target < fixes[j].Target })
	return fixes
}

// edge is one directed relationship in the structural view of the graph
type edge struct {
	src string
	dst string
	typ string
}

// digraph is the per-call structural view. Node order is sorted for
// deterministic traversal and output.
type digraph struct {
	nodes []string
	index map[string]int
	succ  [][]int // deduplicated successor indexes, sorted
	pred  [][]int // deduplicated predecessor indexes, sorted
	edges []edge  // raw edges, duplicates and self-loops included
}

// buildGraph constructs the directed-graph view of an ontology. Nodes
// are entity ids plus any id referenced by a relationship endpoint, so
// dangling references still participate in structural analysis.
func buildGraph(o *models.Ontology) *digraph {
	g := &digraph{index: map[string]int{}}
	if o == nil {
		return g
	}
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := g.index[id]; !ok {
			g.index[id] = -1 // placeholder until sorted
			g.nodes = append(g.nodes, id)
		}
	}
	for i := range o.Entities {
		add(o.Entities[i].ID)
	}
	for i := range o.Relationships {
		r := &o.Relationships[i]
		add(r.SourceID)
		add(r.TargetID)
		if r.SourceID != "" && r.TargetID != "" {
			g.edges = append(g.edges, edge{src: r.SourceID, dst: r.TargetID, typ: r.Type})
		}
	}
	sort.Strings(g.nodes)
	for i, id := range g.nodes {
		g.index[id] = i
	}
	succSet := make([]map[int]bool, len(g.nodes))
	predSet := make([]map[int]bool, len(g.nodes))
	for i := range g.nodes {
		succSet[i] = map[int]bool{}
		predSet[i] = map[int]bool{}
	}
	for _, e := range g.edges {
		s, d := g.index[e.src], g.index[e.dst]
		succSet[s][d] = true
		predSet[d][s] = true
	}
	g.succ = make([][]int, len(g.nodes))
	g.pred = make([][]int, len(g.nodes))
	for i := range g.nodes {
		g.succ[i] = sortedKeys(succSet[i])
		g.pred[i] = sortedKeys(predSet[i])
	}
	return g
}

// neighbors returns the deduplicated undirected adjacency of node i
func (g *digraph) neighbors(i int) []int {
	set := map[int]bool{}
	for _, j := range g.succ[i] {
		if j != i {
			set[j] = true
		}
	}
	for _, j := range g.pred[i] {
		if j != i {
			set[j] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
