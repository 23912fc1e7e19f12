// Package versioning derives content-addressed version hashes for
// ontology snapshots. Two ontologies with the same entities and
// relationships hash identically regardless of slice order, which
// makes no-op refinement rounds detectable by hash comparison.
package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// Version tags one ontology snapshot
type Version struct {
	Hash              string    `json:"hash"`
	Domain            string    `json:"domain"`
	EntityCount       int       `json:"entity_count"`
	RelationshipCount int       `json:"relationship_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Hash returns the Merkle root over the ontology content: leaf hashes
// of canonically encoded entities and relationships, sorted by id,
// combined pairwise up to a single root.
func Hash(o *models.Ontology) (string, error) {
	if o == nil {
		return "", fmt.Errorf("ontology is required")
	}

	leaves := make([][]byte, 0, len(o.Entities)+len(o.Relationships)+1)

	entityLeaves, err := entityLeaves(o.Entities)
	if err != nil {
		return "", err
	}
	leaves = append(leaves, entityLeaves...)

	relationshipLeaves, err := relationshipLeaves(o.Relationships)
	if err != nil {
		return "", err
	}
	leaves = append(leaves, relationshipLeaves...)

	// The domain participates so identical graphs in different domains
	// version independently.
	domainLeaf := sha256.Sum256([]byte("domain\x00" + o.Domain))
	leaves = append(leaves, domainLeaf[:])

	return hex.EncodeToString(merkleRoot(leaves)), nil
}

// Snapshot builds a version tag for the ontology
func Snapshot(o *models.Ontology) (*Version, error) {
	hash, err := Hash(o)
	if err != nil {
		return nil, err
	}
	return &Version{
		Hash:              hash,
		Domain:            o.Domain,
		EntityCount:       len(o.Entities),
		RelationshipCount: len(o.Relationships),
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// Changed reports whether two snapshots differ in content
func Changed(before, after *models.Ontology) (bool, error) {
	beforeHash, err := Hash(before)
	if err != nil {
		return false, err
	}
	afterHash, err := Hash(after)
	if err != nil {
		return false, err
	}
	return beforeHash != afterHash, nil
}

// entityLeaves hashes each entity's canonical encoding, ordered by id
func entityLeaves(entities []models.Entity) ([][]byte, error) {
	sorted := make([]models.Entity, len(entities))
	copy(sorted, entities)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	leaves := make([][]byte, 0, len(sorted))
	for _, entity := range sorted {
		encoded, err := canonicalEncode(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entity %s: %w", entity.ID, err)
		}
		leaf := sha256.Sum256(append([]byte("entity\x00"), encoded...))
		leaves = append(leaves, leaf[:])
	}
	return leaves, nil
}

// relationshipLeaves hashes each relationship's canonical encoding,
// ordered by id
func relationshipLeaves(relationships []models.Relationship) ([][]byte, error) {
	sorted := make([]models.Relationship, len(relationships))
	copy(sorted, relationships)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	leaves := make([][]byte, 0, len(sorted))
	for _, rel := range sorted {
		encoded, err := canonicalEncode(rel)
		if err != nil {
			return nil, fmt.Errorf("failed to encode relationship %s: %w", rel.ID, err)
		}
		leaf := sha256.Sum256(append([]byte("relationship\x00"), encoded...))
		leaves = append(leaves, leaf[:])
	}
	return leaves, nil
}

// canonicalEncode produces a stable byte encoding; encoding/json sorts
// map keys, which keeps property maps deterministic
func canonicalEncode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// merkleRoot folds leaf hashes pairwise until one remains. An odd leaf
// is promoted unchanged. No leaves hash to the empty-tree sentinel.
func merkleRoot(leaves [][]byte) []byte {
	if len(leaves) == 0 {
		empty := sha256.Sum256([]byte("empty"))
		return empty[:]
	}
	level := leaves
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			combined := sha256.Sum256(append(append([]byte{}, level[i]...), level[i+1]...))
			next = append(next, combined[:])
		}
		level = next
	}
	return level[0]
}
