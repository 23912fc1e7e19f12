package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ontoforge/ontoforge-go/pkg/export"
)

// handleRefine runs a refinement session over the posted document
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	response, err := s.service.Refine(r.Context(), req)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSONResponse(w, http.StatusCreated, response)
}

// handleListSessions lists persisted sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.Sessions()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessions)
}

// handleGetSession retrieves one session descriptor
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := s.service.Session(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, session)
}

// handleDeleteSession removes a session and its rounds
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.DeleteSession(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"deleted": id})
}

// handleListRounds retrieves a session's round history
func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.service.Session(id); err != nil {
		writeStoreError(w, err)
		return
	}
	rounds, err := s.service.Rounds(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, rounds)
}

// handleHistoryCSV streams a session's score history as CSV
func (s *Server) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.service.Session(id); err != nil {
		writeStoreError(w, err)
		return
	}
	rounds, err := s.service.Rounds(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	scores := make([]float64, 0, len(rounds))
	for _, round := range rounds {
		if round.Failed() {
			continue
		}
		scores = append(scores, round.AverageScore)
	}
	data, err := export.HistoryCSV(scores)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleGetAdapter retrieves the learning state for a domain
func (s *Server) handleGetAdapter(w http.ResponseWriter, r *http.Request) {
	domain := mux.Vars(r)["domain"]
	record, err := s.service.AdapterState(domain)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, record)
}
