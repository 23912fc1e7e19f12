package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// chain builds a simple ontology from directed edges, creating one
// entity per distinct id
func chain(edges ...[2]string) *models.Ontology {
	o := models.NewOntology("test")
	seen := map[string]bool{}
	for _, e := range edges {
		for _, id := range e {
			if !seen[id] {
				seen[id] = true
				o.Entities = append(o.Entities, models.Entity{ID: id, Type: "node", Confidence: 1})
			}
		}
	}
	for i, e := range edges {
		o.Relationships = append(o.Relationships, models.Relationship{
			ID:       string(rune('r' + i)),
			SourceID: e[0],
			TargetID: e[1],
			Type:     "links",
		})
	}
	return o
}

func TestConsistencyCheckDanglingReference(t *testing.T) {
	o := &models.Ontology{
		Entities: []models.Entity{{ID: "e1"}},
		Relationships: []models.Relationship{
			{ID: "r1", SourceID: "e1", TargetID: "MISSING"},
		},
	}

	v := New()
	result := v.ConsistencyCheck(o)
	assert.False(t, result.Valid)
	require.Len(t, result.DanglingReferences, 1)
	assert.Equal(t, "MISSING", result.DanglingReferences[0].MissingID)
	assert.Equal(t, "target_id", result.DanglingReferences[0].Field)

	fixes := v.SuggestFixesForResult(result)
	require.Len(t, fixes, 1)
	assert.Equal(t, "MISSING", fixes[0].Target)
	assert.Equal(t, FixTypeDanglingReference, fixes[0].Type)
	assert.Greater(t, fixes[0].Confidence, 0.0)
}

func TestConsistencyCheckDeduplicatesFixesPerMissingID(t *testing.T) {
	o := &models.Ontology{
		Entities: []models.Entity{{ID: "e1"}},
		Relationships: []models.Relationship{
			{ID: "r1", SourceID: "e1", TargetID: "ghost"},
			{ID: "r2", SourceID: "ghost", TargetID: "e1"},
		},
	}

	v := New()
	result := v.ConsistencyCheck(o)
	assert.Len(t, result.DanglingReferences, 2)

	fixes := v.SuggestFixesForResult(result)
	assert.Len(t, fixes, 1)
	assert.Equal(t, "ghost", fixes[0].Target)
}

func TestConsistencyCheckValidOntology(t *testing.T) {
	v := New()
	result := v.ConsistencyCheck(chain([2]string{"a", "b"}))
	assert.True(t, result.Valid)
	assert.Empty(t, result.DanglingReferences)
}

func TestThreeCycle(t *testing.T) {
	// A -> B -> C -> A
	o := chain([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})
	v := New()

	assert.False(t, v.AcyclicCheck(o))
	assert.Equal(t, 1, v.CycleCountEstimate(o))
	assert.Equal(t, 1, v.StronglyConnectedCount(o))
	assert.Equal(t, 1, v.TriangleCount(o))
	assert.Equal(t, CyclicPath, v.LongestPath(o, "A"))
	assert.Equal(t, CyclicPath, v.MaxDAGDepth(o))
}

func TestAcyclicChain(t *testing.T) {
	o := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	v := New()

	assert.True(t, v.AcyclicCheck(o))
	assert.Equal(t, 4, v.NodeCount(o))
	assert.Equal(t, 3, v.EdgeCount(o))
	assert.Equal(t, 1, v.ConnectedComponentsCount(o))
	assert.Equal(t, 1, v.WeaklyConnectedCount(o))
	// No cycles: one SCC per node.
	assert.Equal(t, 4, v.StronglyConnectedCount(o))
	assert.Equal(t, 3, v.LongestPath(o, "a"))
	assert.Equal(t, 1, v.LongestPath(o, "c"))
	assert.Equal(t, 0, v.LongestPath(o, "d"))
	assert.Equal(t, 3, v.MaxDAGDepth(o))
	assert.Equal(t, 0, v.CycleCountEstimate(o))
}

func TestSelfLoopCountsAsCycle(t *testing.T) {
	o := chain([2]string{"a", "a"})
	v := New()

	assert.False(t, v.AcyclicCheck(o))
	assert.Equal(t, 1, v.SelfLoopCount(o))
	assert.Equal(t, 1, v.RelationshipLoopCount(o))
	assert.Equal(t, 1, v.CycleCountEstimate(o))
}

func TestDiameterRadiusProperties(t *testing.T) {
	cases := []struct {
		name  string
		graph *models.Ontology
	}{
		{"chain", chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})},
		{"cycle", chain([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})},
		{"star", chain([2]string{"hub", "x"}, [2]string{"hub", "y"}, [2]string{"hub", "z"})},
		{"two components", chain([2]string{"a", "b"}, [2]string{"c", "d"})},
		{"empty", models.NewOntology("test")},
	}

	v := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dist := v.EccentricityDistribution(tc.graph)
			diameter := v.DiameterApprox(tc.graph)
			radius := v.RadiusApprox(tc.graph)

			maxEcc := 0
			for _, ne := range dist {
				if ne.Eccentricity > maxEcc {
					maxEcc = ne.Eccentricity
				}
			}
			assert.Equal(t, maxEcc, diameter, "diameter must equal max eccentricity")
			assert.LessOrEqual(t, radius, diameter, "radius must not exceed diameter")

			minPositive := 0
			for _, ne := range dist {
				if ne.Eccentricity > 0 && (minPositive == 0 || ne.Eccentricity < minPositive) {
					minPositive = ne.Eccentricity
				}
			}
			assert.Equal(t, minPositive, radius, "radius must equal min positive eccentricity")
		})
	}
}

func TestEccentricityDistributionSortedByNodeID(t *testing.T) {
	o := chain([2]string{"z", "m"}, [2]string{"m", "a"})
	v := New()

	dist := v.EccentricityDistribution(o)
	require.Len(t, dist, 3)
	assert.Equal(t, "a", dist[0].NodeID)
	assert.Equal(t, "m", dist[1].NodeID)
	assert.Equal(t, "z", dist[2].NodeID)
	assert.Equal(t, 0, dist[0].Eccentricity)
	assert.Equal(t, 1, dist[1].Eccentricity)
	assert.Equal(t, 2, dist[2].Eccentricity)
}

func TestPeripherySize(t *testing.T) {
	// a->b->c: eccentricities a=2, b=1, c=0; diameter 2, periphery {a}.
	o := chain([2]string{"a", "b"}, [2]string{"b", "c"})
	v := New()
	assert.Equal(t, 2, v.DiameterApprox(o))
	assert.Equal(t, 1, v.PeripherySize(o))

	// No edges: diameter 0, no periphery.
	assert.Equal(t, 0, v.PeripherySize(&models.Ontology{Entities: []models.Entity{{ID: "solo"}}}))
}

func TestMultiHopCount(t *testing.T) {
	o := chain([2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
	v := New()

	assert.Equal(t, 1, v.MultiHopCount(o, "a", 1))
	assert.Equal(t, 2, v.MultiHopCount(o, "a", 2))
	assert.Equal(t, 3, v.MultiHopCount(o, "a", 10))
	assert.Equal(t, 0, v.MultiHopCount(o, "a", 0))
	assert.Equal(t, 0, v.MultiHopCount(o, "unknown", 3))
}

func TestDegreeFamilies(t *testing.T) {
	o := chain([2]string{"hub", "a"}, [2]string{"hub", "b"}, [2]string{"c", "hub"})
	v := New()

	in := v.NodeInDegree(o)
	out := v.NodeOutDegree(o)
	assert.Equal(t, 1, in["hub"])
	assert.Equal(t, 2, out["hub"])
	assert.Equal(t, 0, in["c"])
	assert.Equal(t, 0, out["a"])

	assert.Equal(t, []string{"a", "b"}, v.LeafNodes(o))
	assert.Equal(t, []string{"c"}, v.RootNodes(o))
	assert.Equal(t, []string{"hub"}, v.HubNodes(o, 3))
	assert.Equal(t, []string{"hub"}, v.BridgeNodes(o))
	assert.InDelta(t, 0.75, v.AverageInDegree(o), 1e-9)
	assert.InDelta(t, 0.75, v.AverageOutDegree(o), 1e-9)
}

func TestSymmetricPairAndRedundancy(t *testing.T) {
	o := &models.Ontology{
		Entities: []models.Entity{{ID: "a"}, {ID: "b"}},
		Relationships: []models.Relationship{
			{ID: "r1", SourceID: "a", TargetID: "b", Type: "knows"},
			{ID: "r2", SourceID: "b", TargetID: "a", Type: "knows"},
			{ID: "r3", SourceID: "a", TargetID: "b", Type: "knows"}, // duplicate of r1
		},
	}
	v := New()

	assert.Equal(t, 1, v.SymmetricPairCount(o))
	assert.InDelta(t, 1.0/3.0, v.RedundancyScore(o), 1e-9)
	assert.InDelta(t, 2.0/3.0, v.FanoutRatio(o), 1e-9)
}

func TestSymmetricPairRequiresSameType(t *testing.T) {
	o := &models.Ontology{
		Entities: []models.Entity{{ID: "a"}, {ID: "b"}},
		Relationships: []models.Relationship{
			{ID: "r1", SourceID: "a", TargetID: "b", Type: "knows"},
			{ID: "r2", SourceID: "b", TargetID: "a", Type: "manages"},
		},
	}
	assert.Equal(t, 0, New().SymmetricPairCount(o))
}

func TestClusteringCoefficient(t *testing.T) {
	// Triangle: every neighbor pair connected.
	triangle := chain([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})
	v := New()
	assert.InDelta(t, 1.0, v.ClusteringCoefficientApprox(triangle), 1e-9)

	// Path a-b-c: b's neighbors a and c are not connected.
	path := chain([2]string{"a", "b"}, [2]string{"b", "c"})
	assert.InDelta(t, 0.0, v.ClusteringCoefficientApprox(path), 1e-9)
}

func TestArticulationPointCount(t *testing.T) {
	// b is the cut vertex of a-b-c.
	path := chain([2]string{"a", "b"}, [2]string{"b", "c"})
	v := New()
	assert.Equal(t, 1, v.ArticulationPointCount(path))

	// A cycle has no articulation points.
	cycle := chain([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"})
	assert.Equal(t, 0, v.ArticulationPointCount(cycle))
}

func TestDensityComparison(t *testing.T) {
	o := chain([2]string{"a", "b"}, [2]string{"b", "a"})
	stats := New().DensityComparison(o)
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)
	assert.Equal(t, 4, stats.PossibleEdges)
	assert.InDelta(t, 0.5, stats.Density, 1e-9)
}

func TestEmptyAndNilOntologyZeroValues(t *testing.T) {
	v := New()
	for _, o := range []*models.Ontology{nil, {}, models.NewOntology("x")} {
		assert.Equal(t, 0, v.NodeCount(o))
		assert.Equal(t, 0, v.EdgeCount(o))
		assert.Equal(t, 0, v.ConnectedComponentsCount(o))
		assert.Equal(t, 0, v.StronglyConnectedCount(o))
		assert.Equal(t, 0, v.DiameterApprox(o))
		assert.Equal(t, 0, v.RadiusApprox(o))
		assert.Equal(t, 0, v.SelfLoopCount(o))
		assert.Equal(t, 0, v.TriangleCount(o))
		assert.Equal(t, 0, v.CycleCountEstimate(o))
		assert.Equal(t, 0.0, v.FanoutRatio(o))
		assert.Equal(t, 0.0, v.RedundancyScore(o))
		assert.Equal(t, 0.0, v.ClusteringCoefficientApprox(o))
		assert.Empty(t, v.LeafNodes(o))
		assert.Empty(t, v.RootNodes(o))
		assert.Empty(t, v.EccentricityDistribution(o))
		assert.True(t, v.AcyclicCheck(o))
		assert.True(t, v.ConsistencyCheck(o).Valid)
	}
}

func TestDanglingNodesParticipateInGraph(t *testing.T) {
	// "ghost" has no entity record but is still a graph node.
	o := &models.Ontology{
		Entities: []models.Entity{{ID: "e1"}},
		Relationships: []models.Relationship{
			{ID: "r1", SourceID: "e1", TargetID: "ghost"},
		},
	}
	v := New()
	assert.Equal(t, 2, v.NodeCount(o))
	assert.Equal(t, 1, v.EdgeCount(o))
	assert.Equal(t, 1, v.ConnectedComponentsCount(o))
}
