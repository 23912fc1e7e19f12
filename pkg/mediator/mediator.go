// Package mediator applies one discrete corrective action per call to
// an ontology, guided by critic feedback and validator fix
// suggestions, and tracks action usage for diagnostics.
package mediator

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/ontoforge/ontoforge-go/pkg/models"
	"github.com/ontoforge/ontoforge-go/pkg/validator"
)

// Action names tracked by the mediator's usage counters
const (
	ActionMergeEntities       = "merge_entities"
	ActionRenameEntity        = "rename_entity"
	ActionRemoveEntity        = "remove_entity"
	ActionAddRelationship     = "add_relationship"
	ActionRemoveRelationship  = "remove_relationship"
	ActionFilterLowConfidence = "filter_low_confidence"
)

// Recommendation is one corrective suggestion consumed by the mediator
type Recommendation struct {
	Action           string  `json:"action"`
	TargetID         string  `json:"target_id,omitempty"`
	SecondaryID      string  `json:"secondary_id,omitempty"`
	NewType          string  `json:"new_type,omitempty"`
	RelationshipType string  `json:"relationship_type,omitempty"`
	RelationshipID   string  `json:"relationship_id,omitempty"`
	Confidence       float64 `json:"confidence"`
}

// Feedback bundles the critic score with the recommendations and
// validator fixes that drive the next corrective action
type Feedback struct {
	Score           models.CriticScore `json:"score"`
	Recommendations []Recommendation   `json:"recommendations,omitempty"`
	Fixes           []validator.Fix    `json:"fixes,omitempty"`
}

// Mediator mutates ontologies one action at a time and owns the
// action usage counters. It is not safe for concurrent use; callers
// must serialize access.
type Mediator struct {
	actionCounts    map[string]int
	confidenceFloor float64
}

// New creates a mediator. The confidence floor drives the
// filter_low_confidence action and must lie in [0,1].
func New(confidenceFloor float64) (*Mediator, error) {
	if confidenceFloor < 0 || confidenceFloor > 1 {
		return nil, fmt.Errorf("confidence floor %f outside [0,1]", confidenceFloor)
	}
	return &Mediator{
		actionCounts:    map[string]int{},
		confidenceFloor: confidenceFloor,
	}, nil
}

// actionPriority orders candidate actions; lower runs first
var actionPriority = map[string]int{
	ActionMergeEntities:       0,
	ActionRemoveRelationship:  1,
	ActionRenameEntity:        2,
	ActionRemoveEntity:        3,
	ActionAddRelationship:     4,
	ActionFilterLowConfidence: 5,
}

// RefineOntology applies the highest-priority applicable action from
// the feedback, mutating the ontology in place. It returns whether a
// change occurred and the action applied. Recommendations referencing
// unknown entity or relationship ids are silently skipped.
func (m *Mediator) RefineOntology(o *models.Ontology, fb Feedback, rng *rand.Rand) (bool, string) {
	if o == nil {
		return false, ""
	}
	candidates := make([]Recommendation, 0, len(fb.Recommendations)+len(fb.Fixes))
	candidates = append(candidates, fb.Recommendations...)
	// Dangling-reference fixes translate into relationship removals.
	for _, fix := range fb.Fixes {
		if fix.Type == validator.FixTypeDanglingReference {
			candidates = append(candidates, Recommendation{
				Action:     ActionRemoveRelationship,
				TargetID:   fix.Target,
				Confidence: fix.Confidence,
			})
		}
	}
	// Stable selection: best priority first, recommendation order as
	// tie-break. A candidate that turns out to be a no-op (unknown ids)
	// is skipped silently and the next one is tried.
	order := make([]int, 0, len(candidates))
	for i, cand := range candidates {
		if _, known := actionPriority[cand.Action]; known {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return actionPriority[candidates[order[a]].Action] < actionPriority[candidates[order[b]].Action]
	})
	// With an rng, equal-priority candidates are tried in random order;
	// without one the recommendation order stands.
	if rng != nil {
		for lo := 0; lo < len(order); {
			hi := lo + 1
			for hi < len(order) && actionPriority[candidates[order[hi]].Action] == actionPriority[candidates[order[lo]].Action] {
				hi++
			}
			group := order[lo:hi]
			rng.Shuffle(len(group), func(a, b int) { group[a], group[b] = group[b], group[a] })
			lo = hi
		}
	}
	for _, idx := range order {
		cand := candidates[idx]
		if m.apply(o, cand) {
			m.actionCounts[cand.Action]++
			return true, cand.Action
		}
	}
	return false, ""
}

// apply executes a single recommendation; returns whether the ontology
// changed
func (m *Mediator) apply(o *models.Ontology, rec Recommendation) bool {
	switch rec.Action {
	case ActionMergeEntities:
		return m.mergeEntities(o, rec.TargetID, rec.SecondaryID)
	case ActionRenameEntity:
		return m.renameEntity(o, rec.TargetID, rec.NewType)
	case ActionRemoveEntity:
		return m.removeEntity(o, rec.TargetID)
	case ActionAddRelationship:
		return m.addRelationship(o, rec.TargetID, rec.SecondaryID, rec.RelationshipType, rec.Confidence)
	case ActionRemoveRelationship:
		return m.removeRelationship(o, rec)
	case ActionFilterLowConfidence:
		return m.filterLowConfidence(o)
	default:
		return false
	}
}

// mergeEntities redirects every relationship endpoint from drop to
// keep, then deletes drop. No relationship may reference the dropped
// id afterwards.
func (m *Mediator) mergeEntities(o *models.Ontology, keepID, dropID string) bool {
	if keepID == dropID {
		return false
	}
	keep := o.EntityByID(keepID)
	drop := o.EntityByID(dropID)
	if keep == nil || drop == nil {
		return false
	}
	// Keep the higher confidence and union the properties.
	if drop.Confidence > keep.Confidence {
		keep.Confidence = drop.Confidence
	}
	for k, v := range drop.Properties {
		if keep.Properties == nil {
			keep.Properties = map[string]any{}
		}
		if _, exists := keep.Properties[k]; !exists {
			keep.Properties[k] = v
		}
	}
	for i := range o.Relationships {
		r := &o.Relationships[i]
		if r.SourceID == dropID {
			r.SourceID = keepID
		}
		if r.TargetID == dropID {
			r.TargetID = keepID
		}
	}
	m.deleteEntity(o, dropID)
	return true
}

// renameEntity retypes an entity in place
func (m *Mediator) renameEntity(o *models.Ontology, id, newType string) bool {
	if newType == "" {
		return false
	}
	e := o.EntityByID(id)
	if e == nil || e.Type == newType {
		return false
	}
	e.Type = newType
	return true
}

// removeEntity deletes an entity and every relationship touching it
func (m *Mediator) removeEntity(o *models.Ontology, id string) bool {
	if o.EntityByID(id) == nil {
		return false
	}
	m.deleteEntity(o, id)
	kept := o.Relationships[:0]
	for _, r := range o.Relationships {
		if r.SourceID != id && r.TargetID != id {
			kept = append(kept, r)
		}
	}
	o.Relationships = kept
	return true
}

// addRelationship links two existing entities; both endpoints must
// resolve or the action is a no-op
func (m *Mediator) addRelationship(o *models.Ontology, sourceID, targetID, relType string, confidence float64) bool {
	if relType == "" || !o.HasEntity(sourceID) || !o.HasEntity(targetID) {
		return false
	}
	o.Relationships = append(o.Relationships, models.Relationship{
		ID:         uuid.NewString(),
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Confidence: models.Clamp01(confidence),
	})
	return true
}

// removeRelationship deletes by relationship id when given, otherwise
// every relationship whose endpoint matches the target id (the
// dangling-reference fix path)
func (m *Mediator) removeRelationship(o *models.Ontology, rec Recommendation) bool {
	kept := o.Relationships[:0]
	removed := false
	for _, r := range o.Relationships {
		match := false
		if rec.RelationshipID != "" {
			match = r.ID == rec.RelationshipID
		} else if rec.TargetID != "" {
			match = r.SourceID == rec.TargetID || r.TargetID == rec.TargetID
		}
		if match {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	o.Relationships = kept
	return removed
}

// filterLowConfidence drops entities below the confidence floor along
// with their relationships
func (m *Mediator) filterLowConfidence(o *models.Ontology) bool {
	removedIDs := map[string]bool{}
	keptEntities := o.Entities[:0]
	for _, e := range o.Entities {
		if e.Confidence < m.confidenceFloor {
			removedIDs[e.ID] = true
			continue
		}
		keptEntities = append(keptEntities, e)
	}
	if len(removedIDs) == 0 {
		return false
	}
	o.Entities = keptEntities
	keptRels := o.Relationships[:0]
	for _, r := range o.Relationships {
		if removedIDs[r.SourceID] || removedIDs[r.TargetID] {
			continue
		}
		keptRels = append(keptRels, r)
	}
	o.Relationships = keptRels
	return true
}

// deleteEntity removes the entity record with the given id
func (m *Mediator) deleteEntity(o *models.Ontology, id string) {
	kept := o.Entities[:0]
	for _, e := range o.Entities {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	o.Entities = kept
}

// ApplyActionBulk increments the usage counters for a list of action
// names without touching any ontology. Analytics-only scenarios use
// this to replay recorded action sequences.
func (m *Mediator) ApplyActionBulk(actions []string) {
	for _, a := range actions {
		m.actionCounts[a]++
	}
}

// ResetActionStats clears the usage counters
func (m *Mediator) ResetActionStats() {
	m.actionCounts = map[string]int{}
}
