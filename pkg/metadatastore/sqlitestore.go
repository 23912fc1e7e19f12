package metadatastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ontoforge/ontoforge-go/pkg/learning"
	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// SQLiteStore provides SQLite-based persistence for refinement
// sessions, round histories, and learning-adapter state
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based storage instance. Use
// ":memory:" as the path for an ephemeral test store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes anyway, so the pool stays small. An
	// in-memory database exists per connection, so it gets exactly one.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}

	// In-memory databases report "delete" or "memory" journal mode,
	// which is acceptable for tests.
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return nil, fmt.Errorf("failed to check journal mode: %w", err)
	}
	if journalMode != "wal" && journalMode != "delete" && journalMode != "memory" {
		return nil, fmt.Errorf("unexpected journal mode: got %s", journalMode)
	}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// initSchema creates the database schema if it doesn't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		stop_reason TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_domain ON sessions(domain);

	CREATE TABLE IF NOT EXISTS rounds (
		session_id TEXT NOT NULL,
		round INTEGER NOT NULL,
		average_score REAL NOT NULL,
		trend TEXT NOT NULL,
		failed INTEGER NOT NULL,
		recorded_at DATETIME NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (session_id, round),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_session_id ON rounds(session_id);

	CREATE TABLE IF NOT EXISTS adapter_state (
		domain TEXT PRIMARY KEY,
		updated_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSession saves a session descriptor to the database
func (s *SQLiteStore) SaveSession(session *models.RefinementSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO sessions (id, domain, stop_reason, created_at, updated_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		session.ID,
		session.Domain,
		session.StopReason,
		session.CreatedAt,
		session.UpdatedAt,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *SQLiteStore) GetSession(id string) (*models.RefinementSession, error) {
	var data string
	query := `SELECT data FROM sessions WHERE id = ?`

	err := s.db.QueryRow(query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.RefinementSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// ListSessions retrieves all sessions, newest first
func (s *SQLiteStore) ListSessions() ([]*models.RefinementSession, error) {
	query := `SELECT data FROM sessions ORDER BY created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.RefinementSession{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		var session models.RefinementSession
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// DeleteSession removes a session and its rounds
func (s *SQLiteStore) DeleteSession(id string) error {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}

	// Cascade deletes need foreign keys enabled, which modernc's driver
	// leaves off by default; delete the rounds explicitly.
	if _, err := s.db.Exec(`DELETE FROM rounds WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session rounds: %w", err)
	}

	return nil
}

// AppendRound persists one round of a session's history
func (s *SQLiteStore) AppendRound(sessionID string, round models.OptimizationRound) error {
	if _, err := s.GetSession(sessionID); err != nil {
		return err
	}

	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	query := `
		INSERT INTO rounds (session_id, round, average_score, trend, failed, recorded_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	failed := 0
	if round.Failed() {
		failed = 1
	}

	_, err = s.db.Exec(query,
		sessionID,
		round.Round,
		round.AverageScore,
		string(round.Trend),
		failed,
		round.RecordedAt,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to append round: %w", err)
	}

	return nil
}

// ListRounds retrieves a session's rounds in round order
func (s *SQLiteStore) ListRounds(sessionID string) ([]models.OptimizationRound, error) {
	query := `SELECT data FROM rounds WHERE session_id = ? ORDER BY round ASC`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []models.OptimizationRound{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		var round models.OptimizationRound
		if err := json.Unmarshal([]byte(data), &round); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round: %w", err)
		}
		rounds = append(rounds, round)
	}

	return rounds, rows.Err()
}

// SaveAdapterState upserts the serialized learning-adapter state for a
// domain
func (s *SQLiteStore) SaveAdapterState(record learning.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal adapter state: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO adapter_state (domain, updated_at, data)
		VALUES (?, ?, ?)
	`

	if _, err := s.db.Exec(query, record.Domain, time.Now().UTC(), string(data)); err != nil {
		return fmt.Errorf("failed to save adapter state: %w", err)
	}

	return nil
}

// GetAdapterState retrieves the learning-adapter state for a domain
func (s *SQLiteStore) GetAdapterState(domain string) (learning.Record, error) {
	var data string
	query := `SELECT data FROM adapter_state WHERE domain = ?`

	err := s.db.QueryRow(query, domain).Scan(&data)
	if err == sql.ErrNoRows {
		return learning.Record{}, fmt.Errorf("adapter state for %s: %w", domain, ErrNotFound)
	}
	if err != nil {
		return learning.Record{}, fmt.Errorf("failed to get adapter state: %w", err)
	}

	var record learning.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return learning.Record{}, fmt.Errorf("failed to unmarshal adapter state: %w", err)
	}

	return record, nil
}

// DeleteAdapterState removes the learning-adapter state for a domain
func (s *SQLiteStore) DeleteAdapterState(domain string) error {
	result, err := s.db.Exec(`DELETE FROM adapter_state WHERE domain = ?`, domain)
	if err != nil {
		return fmt.Errorf("failed to delete adapter state: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete adapter state: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("adapter state for %s: %w", domain, ErrNotFound)
	}

	return nil
}
