package metadatastore

import (
	"errors"

	"github.com/ontoforge/ontoforge-go/pkg/learning"
	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Store is the interface for refinement metadata persistence: session
// descriptors, their append-only round histories, and serialized
// learning-adapter state per domain.
type Store interface {
	// Session operations
	SaveSession(session *models.RefinementSession) error
	GetSession(id string) (*models.RefinementSession, error)
	ListSessions() ([]*models.RefinementSession, error)
	DeleteSession(id string) error

	// Round operations
	AppendRound(sessionID string, round models.OptimizationRound) error
	ListRounds(sessionID string) ([]models.OptimizationRound, error)

	// Learning-adapter state operations
	SaveAdapterState(record learning.Record) error
	GetAdapterState(domain string) (learning.Record, error)
	DeleteAdapterState(domain string) error

	Close() error
}
