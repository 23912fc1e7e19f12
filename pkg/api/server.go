package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ontoforge/ontoforge-go/utils"
)

// Server provides the HTTP API endpoints
type Server struct {
	router  *mux.Router
	service *Service
	logger  *utils.Logger
}

// NewServer creates a new API server over the refinement service
func NewServer(service *Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service is required")
	}
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		logger:  service.logger,
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP routes
func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Refinement sessions
	v1.HandleFunc("/sessions", s.handleRefine).Methods("POST")
	v1.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	v1.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	v1.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	v1.HandleFunc("/sessions/{id}/rounds", s.handleListRounds).Methods("GET")
	v1.HandleFunc("/sessions/{id}/history.csv", s.handleHistoryCSV).Methods("GET")

	// Ontology diagnostics
	v1.HandleFunc("/ontology/validate", s.handleValidateOntology).Methods("POST")
	v1.HandleFunc("/ontology/score", s.handleScoreOntology).Methods("POST")
	v1.HandleFunc("/ontology/version", s.handleVersionOntology).Methods("POST")
	v1.HandleFunc("/ontology/graphml", s.handleGraphML).Methods("POST")

	// Learning state
	v1.HandleFunc("/adapters/{domain}", s.handleGetAdapter).Methods("GET")
}

// Handler returns the router wrapped with CORS middleware
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)
}

// Start starts the HTTP server on the given port
func (s *Server) Start(port string) error {
	addr := fmt.Sprintf(":%s", port)
	s.logger.Info("starting api server", utils.Component("api"), utils.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // sessions run synchronously
	}
	return server.ListenAndServe()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}
