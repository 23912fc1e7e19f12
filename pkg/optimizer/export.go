package optimizer

import (
	"github.com/ontoforge/ontoforge-go/pkg/export"
	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// ExportHistoryCSV renders the round-score series as CSV diagnostics
func (o *Optimizer) ExportHistoryCSV() ([]byte, error) {
	return export.HistoryCSV(o.scores)
}

// ExportToGraphML renders an ontology snapshot as GraphML
func (o *Optimizer) ExportToGraphML(ontology *models.Ontology) ([]byte, error) {
	return export.ToGraphML(ontology)
}
