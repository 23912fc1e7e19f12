package extraction

import (
	"context"
	"fmt"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// DocumentGenerator adapts an extractor over a fixed document to the
// optimizer's generate step: each round re-extracts with the current
// learning hint as the confidence threshold.
type DocumentGenerator struct {
	extractor Extractor
	text      string
	domain    string
}

// NewDocumentGenerator creates a generator over one document
func NewDocumentGenerator(extractor Extractor, text, domain string) (*DocumentGenerator, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	return &DocumentGenerator{extractor: extractor, text: text, domain: domain}, nil
}

// Generate extracts an ontology candidate from the document using the
// hint as the confidence threshold
func (g *DocumentGenerator) Generate(ctx context.Context, hint float64) (*models.Ontology, error) {
	result, err := g.extractor.Extract(ctx, g.text, hint)
	if err != nil {
		return nil, fmt.Errorf("failed to generate candidate: %w", err)
	}
	ontology := models.NewOntology(g.domain)
	ontology.Entities = result.Entities
	ontology.Relationships = result.Relationships
	ontology.Metadata["strategy"] = string(result.Strategy)
	ontology.Metadata["source"] = result.Source
	return ontology, nil
}
