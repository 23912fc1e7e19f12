package metadatastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge-go/pkg/learning"
	"github.com/ontoforge/ontoforge-go/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(id string) *models.RefinementSession {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.RefinementSession{
		ID:        id,
		Domain:    "medicine",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	session := sampleSession("s1")
	require.NoError(t, store.SaveSession(session))

	loaded, err := store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, session.Domain, loaded.Domain)
	assert.True(t, session.CreatedAt.Equal(loaded.CreatedAt))
}

func TestGetSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetSession("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveSessionUpserts(t *testing.T) {
	store := newTestStore(t)

	session := sampleSession("s1")
	require.NoError(t, store.SaveSession(session))

	session.StopReason = "converged"
	require.NoError(t, store.SaveSession(session))

	loaded, err := store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "converged", loaded.StopReason)

	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestListSessionsEmpty(t *testing.T) {
	store := newTestStore(t)
	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NotNil(t, sessions)
}

func TestDeleteSessionRemovesRounds(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveSession(sampleSession("s1")))
	require.NoError(t, store.AppendRound("s1", models.OptimizationRound{
		Round: 1, AverageScore: 0.5, Trend: models.TrendStable, RecordedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.DeleteSession("s1"))
	_, err := store.GetSession("s1")
	assert.ErrorIs(t, err, ErrNotFound)

	rounds, err := store.ListRounds("s1")
	require.NoError(t, err)
	assert.Empty(t, rounds)

	assert.ErrorIs(t, store.DeleteSession("s1"), ErrNotFound)
}

func TestAppendAndListRounds(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveSession(sampleSession("s1")))

	for i, score := range []float64{0.3, 0.5, 0.7} {
		round := models.OptimizationRound{
			Round:        i + 1,
			AverageScore: score,
			Trend:        models.TrendImproving,
			Metadata:     map[string]any{"action": "merge_entities"},
			RecordedAt:   time.Now().UTC(),
		}
		require.NoError(t, store.AppendRound("s1", round))
	}

	rounds, err := store.ListRounds("s1")
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, 1, rounds[0].Round)
	assert.Equal(t, 0.7, rounds[2].AverageScore)
	assert.Equal(t, "merge_entities", rounds[0].Metadata["action"])
}

func TestAppendRoundRequiresSession(t *testing.T) {
	store := newTestStore(t)
	err := store.AppendRound("missing", models.OptimizationRound{Round: 1, RecordedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendRoundPersistsFailureMarker(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveSession(sampleSession("s1")))

	round := models.OptimizationRound{
		Round:      1,
		Trend:      models.TrendStable,
		Metadata:   map[string]any{"failed": true, "error": "backend unavailable"},
		RecordedAt: time.Now().UTC(),
	}
	require.NoError(t, store.AppendRound("s1", round))

	rounds, err := store.ListRounds("s1")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.True(t, rounds[0].Failed())
}

func TestAdapterStateRoundTrip(t *testing.T) {
	store := newTestStore(t)

	adapter, err := learning.NewAdapter("medicine", 0.7, 0.3, 3)
	require.NoError(t, err)
	adapter.ApplyFeedback(0.9, []string{"merge_entities"}, nil)
	adapter.ApplyFeedback(0.8, nil, nil)

	require.NoError(t, store.SaveAdapterState(adapter.ToRecord()))

	record, err := store.GetAdapterState("medicine")
	require.NoError(t, err)

	restored, err := learning.FromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, adapter.CurrentThreshold(), restored.CurrentThreshold())
	assert.Equal(t, adapter.FeedbackCount(), restored.FeedbackCount())
	assert.Equal(t, adapter.ActionSuccessRates(), restored.ActionSuccessRates())
}

func TestAdapterStateNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetAdapterState("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteAdapterState("missing"), ErrNotFound)
}

func TestAdapterStateUpsert(t *testing.T) {
	store := newTestStore(t)

	adapter, err := learning.NewAdapter("medicine", 0.7, 0.3, 3)
	require.NoError(t, err)
	require.NoError(t, store.SaveAdapterState(adapter.ToRecord()))

	adapter.ApplyFeedback(0.9, nil, nil)
	require.NoError(t, store.SaveAdapterState(adapter.ToRecord()))

	record, err := store.GetAdapterState("medicine")
	require.NoError(t, err)
	assert.Len(t, record.Feedback, 1)

	require.NoError(t, store.DeleteAdapterState("medicine"))
	_, err = store.GetAdapterState("medicine")
	assert.ErrorIs(t, err, ErrNotFound)
}
