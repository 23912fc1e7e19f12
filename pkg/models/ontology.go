package models

import (
	"encoding/json"
	"fmt"
)

// Span marks the source text region an entity was extracted from.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entity represents a typed node in an extracted ontology
type Entity struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Text       string         `json:"text,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence float64        `json:"confidence"`
	SourceSpan *Span          `json:"source_span,omitempty"`
}

// Validate checks the entity invariants enforced at the extraction boundary
func (e *Entity) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("entity id must not be empty")
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("entity %s: confidence %f outside [0,1]", e.ID, e.Confidence)
	}
	return nil
}

// Relationship represents a directed, typed edge between two entities
type Relationship struct {
	ID         string         `json:"id"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Validate checks the relationship invariants enforced at the extraction boundary.
// Dangling endpoint ids are NOT validated here; they are a structural
// diagnostic reported by the validator, not a construction error.
func (r *Relationship) Validate() error {
	if r.SourceID == "" || r.TargetID == "" {
		return fmt.Errorf("relationship %s: source and target ids must not be empty", r.ID)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("relationship %s: confidence %f outside [0,1]", r.ID, r.Confidence)
	}
	return nil
}

// Ontology is the entities+relationships graph produced by extraction
// and refined by the optimization loop. It is passed by reference
// through the loop; only the mediator mutates it in place.
type Ontology struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Domain        string         `json:"domain,omitempty"`
	Version       string         `json:"version,omitempty"`
}

// NewOntology creates an empty ontology for the given domain
func NewOntology(domain string) *Ontology {
	return &Ontology{
		Entities:      []Entity{},
		Relationships: []Relationship{},
		Metadata:      map[string]any{},
		Domain:        domain,
		Version:       "1.0",
	}
}

// EntityByID returns the entity with the given id, or nil if absent
func (o *Ontology) EntityByID(id string) *Entity {
	for i := range o.Entities {
		if o.Entities[i].ID == id {
			return &o.Entities[i]
		}
	}
	return nil
}

// HasEntity reports whether an entity with the given id exists
func (o *Ontology) HasEntity(id string) bool {
	return o.EntityByID(id) != nil
}

// EntityIDSet returns the set of entity ids in the ontology
func (o *Ontology) EntityIDSet() map[string]bool {
	ids := make(map[string]bool, len(o.Entities))
	for i := range o.Entities {
		ids[o.Entities[i].ID] = true
	}
	return ids
}

// Clone returns a deep copy of the ontology. Round history snapshots
// (best/worst ontology per round) must not alias the live ontology the
// mediator keeps mutating.
func (o *Ontology) Clone() *Ontology {
	if o == nil {
		return nil
	}
	clone := &Ontology{
		Entities:      make([]Entity, len(o.Entities)),
		Relationships: make([]Relationship, len(o.Relationships)),
		Domain:        o.Domain,
		Version:       o.Version,
	}
	for i, e := range o.Entities {
		ce := e
		ce.Properties = cloneMap(e.Properties)
		if e.SourceSpan != nil {
			span := *e.SourceSpan
			ce.SourceSpan = &span
		}
		clone.Entities[i] = ce
	}
	for i, r := range o.Relationships {
		cr := r
		cr.Properties = cloneMap(r.Properties)
		clone.Relationships[i] = cr
	}
	clone.Metadata = cloneMap(o.Metadata)
	return clone
}

// Validate checks all entity and relationship invariants plus entity id
// uniqueness within the snapshot
func (o *Ontology) Validate() error {
	seen := make(map[string]bool, len(o.Entities))
	for i := range o.Entities {
		if err := o.Entities[i].Validate(); err != nil {
			return err
		}
		if seen[o.Entities[i].ID] {
			return fmt.Errorf("duplicate entity id %s", o.Entities[i].ID)
		}
		seen[o.Entities[i].ID] = true
	}
	for i := range o.Relationships {
		if err := o.Relationships[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON ensures the wire shape always carries entities and
// relationships arrays, never null
func (o *Ontology) MarshalJSON() ([]byte, error) {
	type alias Ontology
	a := alias(*o)
	if a.Entities == nil {
		a.Entities = []Entity{}
	}
	if a.Relationships == nil {
		a.Relationships = []Relationship{}
	}
	return json.Marshal(a)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
