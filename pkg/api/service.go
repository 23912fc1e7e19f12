// Package api exposes the refinement engine over HTTP: session
// lifecycle, round histories, ontology diagnostics, and the GraphML
// and CSV exports.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontoforge-go/pkg/config"
	"github.com/ontoforge/ontoforge-go/pkg/critic"
	"github.com/ontoforge/ontoforge-go/pkg/extraction"
	"github.com/ontoforge/ontoforge-go/pkg/learning"
	"github.com/ontoforge/ontoforge-go/pkg/mediator"
	"github.com/ontoforge/ontoforge-go/pkg/metadatastore"
	"github.com/ontoforge/ontoforge-go/pkg/models"
	"github.com/ontoforge/ontoforge-go/pkg/optimizer"
	"github.com/ontoforge/ontoforge-go/utils"
)

// RefineRequest starts one refinement session over a document
type RefineRequest struct {
	Domain   string               `json:"domain"`
	Text     string               `json:"text"`
	Strategy string               `json:"strategy,omitempty"`
	Keywords []string             `json:"keywords,omitempty"`
	Patterns []extraction.Pattern `json:"patterns,omitempty"`
}

// RefineResponse summarizes a finished session
type RefineResponse struct {
	Session    *models.RefinementSession  `json:"session"`
	StopReason string                     `json:"stop_reason"`
	Rounds     int                        `json:"rounds"`
	FinalScore float64                    `json:"final_score"`
	Best       *models.Ontology           `json:"best_ontology,omitempty"`
	History    []models.OptimizationRound `json:"history,omitempty"`
}

// Service wires extraction, the refinement loop, and persistence
// behind the HTTP surface. Sessions run synchronously; the store
// serializes history writes.
type Service struct {
	cfg      *config.Config
	store    metadatastore.Store
	client   extraction.InferenceClient
	patterns []extraction.Pattern
	logger   *utils.Logger
}

// NewService creates the refinement service. client may be nil; LLM
// extraction then degrades to the rule-based path.
func NewService(cfg *config.Config, store metadatastore.Store, client extraction.InferenceClient, patterns []extraction.Pattern, logger *utils.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		client:   client,
		patterns: patterns,
		logger:   logger,
	}, nil
}

// Refine runs a full refinement session and persists its outcome
func (s *Service) Refine(ctx context.Context, req RefineRequest) (*RefineResponse, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	domain := req.Domain
	if domain == "" {
		domain = s.cfg.Domain
	}

	gen, err := s.buildGenerator(req, domain)
	if err != nil {
		return nil, err
	}
	adapter, err := s.loadOrCreateAdapter(domain)
	if err != nil {
		return nil, err
	}
	med, err := mediator.New(s.cfg.ConfidenceFloor)
	if err != nil {
		return nil, fmt.Errorf("failed to build mediator: %w", err)
	}
	opt, err := optimizer.New(optimizer.Config{
		MaxRounds:         s.cfg.MaxRounds,
		Tolerance:         s.cfg.Tolerance,
		ConvergenceWindow: s.cfg.ConvergenceWindow,
		RegressionRounds:  s.cfg.RegressionRounds,
		Domain:            domain,
		Keywords:          req.Keywords,
		Seed:              time.Now().UnixNano(),
	}, critic.MustNew(critic.DefaultWeights()), med, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to build optimizer: %w", err)
	}

	stopReason, err := opt.RunSession(ctx, gen)
	if err != nil {
		return nil, fmt.Errorf("refinement session failed: %w", err)
	}

	now := time.Now().UTC()
	session := &models.RefinementSession{
		ID:         uuid.NewString(),
		Domain:     domain,
		StopReason: string(stopReason),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.persist(session, opt.History(), adapter); err != nil {
		return nil, err
	}

	scores := opt.Scores()
	response := &RefineResponse{
		Session:    session,
		StopReason: string(stopReason),
		Rounds:     len(opt.History()),
		Best:       opt.BestOntology(),
		History:    opt.History(),
	}
	if len(scores) > 0 {
		response.FinalScore = scores[len(scores)-1]
	}

	s.logger.Info("refinement session finished",
		utils.Component("api"),
		utils.String("session_id", session.ID),
		utils.String("stop_reason", string(stopReason)),
		utils.Int("rounds", response.Rounds),
		utils.Float("final_score", response.FinalScore),
	)
	return response, nil
}

// buildGenerator assembles the extraction strategy for one request
func (s *Service) buildGenerator(req RefineRequest, domain string) (optimizer.Generator, error) {
	patterns := req.Patterns
	if len(patterns) == 0 {
		patterns = s.patterns
	}
	ruleBased, err := extraction.NewRuleBasedExtractor(patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule-based extractor: %w", err)
	}
	llm, err := extraction.NewLLMExtractor(s.client, ruleBased)
	if err != nil {
		return nil, fmt.Errorf("failed to build llm extractor: %w", err)
	}

	strategy := models.StrategyRuleBased
	if req.Strategy != "" {
		strategy, err = models.ParseExtractionStrategy(req.Strategy)
		if err != nil {
			return nil, err
		}
	}
	extractor, err := extraction.ForStrategy(strategy, ruleBased, llm)
	if err != nil {
		return nil, err
	}
	return extraction.NewDocumentGenerator(extractor, req.Text, domain)
}

// loadOrCreateAdapter restores the domain's learning state, or starts
// fresh when none is persisted
func (s *Service) loadOrCreateAdapter(domain string) (*learning.Adapter, error) {
	record, err := s.store.GetAdapterState(domain)
	if err == nil {
		adapter, restoreErr := learning.FromRecord(record)
		if restoreErr == nil {
			return adapter, nil
		}
		s.logger.Warn("discarding unusable adapter state",
			utils.Component("api"), utils.String("domain", domain))
	}
	return learning.NewAdapter(domain, s.cfg.BaseThreshold, s.cfg.EMAAlpha, s.cfg.MinSamples)
}

// persist writes the session, its rounds, and the adapter state
func (s *Service) persist(session *models.RefinementSession, history []models.OptimizationRound, adapter *learning.Adapter) error {
	if err := s.store.SaveSession(session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	for _, round := range history {
		if err := s.store.AppendRound(session.ID, round); err != nil {
			return fmt.Errorf("failed to persist round %d: %w", round.Round, err)
		}
	}
	if err := s.store.SaveAdapterState(adapter.ToRecord()); err != nil {
		return fmt.Errorf("failed to persist adapter state: %w", err)
	}
	return nil
}

// Sessions lists persisted session descriptors
func (s *Service) Sessions() ([]*models.RefinementSession, error) {
	return s.store.ListSessions()
}

// Session retrieves one session descriptor
func (s *Service) Session(id string) (*models.RefinementSession, error) {
	return s.store.GetSession(id)
}

// DeleteSession removes a session and its rounds
func (s *Service) DeleteSession(id string) error {
	return s.store.DeleteSession(id)
}

// Rounds retrieves a session's round history
func (s *Service) Rounds(sessionID string) ([]models.OptimizationRound, error) {
	return s.store.ListRounds(sessionID)
}

// AdapterState retrieves the persisted learning state for a domain
func (s *Service) AdapterState(domain string) (learning.Record, error) {
	return s.store.GetAdapterState(domain)
}
