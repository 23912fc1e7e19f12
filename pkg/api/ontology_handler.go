package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ontoforge/ontoforge-go/pkg/critic"
	"github.com/ontoforge/ontoforge-go/pkg/export"
	"github.com/ontoforge/ontoforge-go/pkg/models"
	"github.com/ontoforge/ontoforge-go/pkg/validator"
	"github.com/ontoforge/ontoforge-go/pkg/versioning"
)

// decodeOntology parses an ontology from the request body
func decodeOntology(r *http.Request) (*models.Ontology, error) {
	var ontology models.Ontology
	if err := json.NewDecoder(r.Body).Decode(&ontology); err != nil {
		return nil, fmt.Errorf("invalid ontology body: %w", err)
	}
	return &ontology, nil
}

// handleValidateOntology runs the consistency check and fix suggestions
func (s *Server) handleValidateOntology(w http.ResponseWriter, r *http.Request) {
	ontology, err := decodeOntology(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	v := validator.New()
	result := v.ConsistencyCheck(ontology)
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"consistency": result,
		"fixes":       v.SuggestFixesForResult(result),
		"acyclic":     v.AcyclicCheck(ontology),
		"components":  v.ConnectedComponentsCount(ontology),
	})
}

// scoreRequest optionally carries evaluation context beside the ontology
type scoreRequest struct {
	Ontology *models.Ontology `json:"ontology"`
	Domain   string           `json:"domain,omitempty"`
	Keywords []string         `json:"keywords,omitempty"`
}

// handleScoreOntology evaluates an ontology with the default critic
func (s *Server) handleScoreOntology(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Ontology == nil {
		writeErrorResponse(w, http.StatusBadRequest, "ontology is required")
		return
	}

	score := critic.MustNew(critic.DefaultWeights()).EvaluateOntology(req.Ontology, critic.EvaluationContext{
		Domain:   req.Domain,
		Keywords: req.Keywords,
	})
	writeJSONResponse(w, http.StatusOK, score)
}

// handleVersionOntology returns the content-addressed snapshot tag
func (s *Server) handleVersionOntology(w http.ResponseWriter, r *http.Request) {
	ontology, err := decodeOntology(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := versioning.Snapshot(ontology)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSONResponse(w, http.StatusOK, version)
}

// handleGraphML renders the posted ontology as GraphML
func (s *Server) handleGraphML(w http.ResponseWriter, r *http.Request) {
	ontology, err := decodeOntology(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := export.ToGraphML(ontology)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
