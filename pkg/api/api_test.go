package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge-go/pkg/config"
	"github.com/ontoforge/ontoforge-go/pkg/extraction"
	"github.com/ontoforge/ontoforge-go/pkg/metadatastore"
	"github.com/ontoforge/ontoforge-go/pkg/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := metadatastore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := config.Defaults()
	cfg.MaxRounds = 4
	cfg.MinSamples = 2

	patterns := []extraction.Pattern{
		{Type: "Drug", Keywords: []string{"aspirin", "ibuprofen"}},
		{Type: "Disease", Keywords: []string{"headache", "migraine"}},
	}
	service, err := NewService(cfg, store, nil, patterns, nil)
	require.NoError(t, err)

	server, err := NewServer(service)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func runSession(t *testing.T, server *Server) RefineResponse {
	t.Helper()
	recorder := doJSON(t, server, http.MethodPost, "/api/v1/sessions", RefineRequest{
		Domain: "medicine",
		Text:   "Aspirin treats headache. Ibuprofen treats migraine.",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var response RefineResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestHealthEndpoint(t *testing.T) {
	recorder := doJSON(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "healthy")
}

func TestRefineSessionEndToEnd(t *testing.T) {
	server := newTestServer(t)
	response := runSession(t, server)

	require.NotNil(t, response.Session)
	assert.Equal(t, "medicine", response.Session.Domain)
	assert.NotEmpty(t, response.StopReason)
	assert.Greater(t, response.Rounds, 0)
	require.NotNil(t, response.Best)
	assert.NotEmpty(t, response.Best.Entities)
}

func TestRefineRequiresText(t *testing.T) {
	recorder := doJSON(t, newTestServer(t), http.MethodPost, "/api/v1/sessions", RefineRequest{Domain: "medicine"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRefineRejectsUnknownStrategy(t *testing.T) {
	recorder := doJSON(t, newTestServer(t), http.MethodPost, "/api/v1/sessions", RefineRequest{
		Domain: "medicine", Text: "Aspirin.", Strategy: "telepathy",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSessionLifecycle(t *testing.T) {
	server := newTestServer(t)
	created := runSession(t, server)
	id := created.Session.ID

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var sessions []models.RefinementSession
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSessionNotFound(t *testing.T) {
	server := newTestServer(t)
	recorder := doJSON(t, server, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doJSON(t, server, http.MethodDelete, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/sessions/missing/rounds", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRoundHistoryEndpoints(t *testing.T) {
	server := newTestServer(t)
	created := runSession(t, server)
	id := created.Session.ID

	recorder := doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s/rounds", id), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var rounds []models.OptimizationRound
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &rounds))
	assert.Equal(t, created.Rounds, len(rounds))

	recorder = doJSON(t, server, http.MethodGet, fmt.Sprintf("/api/v1/sessions/%s/history.csv", id), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(recorder.Body.String(), "batch_from,batch_to,"))
}

func TestAdapterStatePersistedAcrossSessions(t *testing.T) {
	server := newTestServer(t)
	runSession(t, server)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/adapters/medicine", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "current_threshold")

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/adapters/unseen", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestValidateOntologyEndpoint(t *testing.T) {
	server := newTestServer(t)
	ontology := map[string]any{
		"entities": []map[string]any{{"id": "e1", "confidence": 0.9}},
		"relationships": []map[string]any{
			{"id": "r1", "source_id": "e1", "target_id": "MISSING", "confidence": 0.8},
		},
		"domain": "medicine",
	}

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/ontology/validate", ontology)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Consistency struct {
			DanglingReferences []map[string]any `json:"dangling_references"`
		} `json:"consistency"`
		Fixes   []map[string]any `json:"fixes"`
		Acyclic bool             `json:"acyclic"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Fixes, 1)
	assert.True(t, response.Acyclic)
}

func TestScoreOntologyEndpoint(t *testing.T) {
	server := newTestServer(t)
	body := map[string]any{
		"ontology": map[string]any{
			"entities": []map[string]any{
				{"id": "e1", "type": "Drug", "text": "aspirin", "confidence": 0.9},
			},
			"domain": "medicine",
		},
		"domain": "medicine",
	}

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/ontology/score", body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var score models.CriticScore
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &score))
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 1.0)

	recorder = doJSON(t, server, http.MethodPost, "/api/v1/ontology/score", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestVersionOntologyEndpoint(t *testing.T) {
	server := newTestServer(t)
	ontology := map[string]any{
		"entities": []map[string]any{{"id": "e1", "confidence": 0.9}},
		"domain":   "medicine",
	}

	first := doJSON(t, server, http.MethodPost, "/api/v1/ontology/version", ontology)
	require.Equal(t, http.StatusOK, first.Code)
	second := doJSON(t, server, http.MethodPost, "/api/v1/ontology/version", ontology)
	require.Equal(t, http.StatusOK, second.Code)

	var v1, v2 struct {
		Hash string `json:"hash"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &v1))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &v2))
	assert.Equal(t, v1.Hash, v2.Hash)
	assert.Len(t, v1.Hash, 64)
}

func TestGraphMLEndpoint(t *testing.T) {
	server := newTestServer(t)
	ontology := map[string]any{
		"entities": []map[string]any{
			{"id": "e1", "type": "Drug", "text": "aspirin", "confidence": 0.9},
			{"id": "e2", "type": "Disease", "text": "headache", "confidence": 0.8},
		},
		"relationships": []map[string]any{
			{"id": "r1", "type": "treats", "source_id": "e1", "target_id": "e2", "confidence": 0.85},
		},
		"domain": "medicine",
	}

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/ontology/graphml", ontology)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/xml", recorder.Header().Get("Content-Type"))
	body := recorder.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Equal(t, 2, strings.Count(body, "<node "))
	assert.Equal(t, 1, strings.Count(body, "<edge "))
}

func TestCORSHeaders(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
