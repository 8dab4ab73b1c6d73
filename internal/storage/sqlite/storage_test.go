package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goose keeps global state, so tests in this package stay sequential.

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3}
	blob, err := serializeVector(in)
	require.NoError(t, err)
	assert.Len(t, blob, 12)

	out, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestTurnsRepo_AddAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewTurnsRepo(newTestDB(t))

	texts := []string{"one", "two", "three", "four"}
	var ids []int64
	for i, text := range texts {
		role := core.RoleUser
		if i%2 == 1 {
			role = core.RoleAssistant
		}
		id, err := repo.AddTurn(ctx, core.Turn{Role: role, Text: text})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := repo.RecentTurns(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "two", recent[0].Text)
	assert.Equal(t, "four", recent[2].Text)
	assert.Equal(t, core.RoleAssistant, recent[2].Role)

	// The latest turn can be excluded by id.
	recent, err = repo.RecentTurns(ctx, 2, ids[3])
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Text)
	assert.Equal(t, "three", recent[1].Text)
}

func TestTurnsRepo_RejectsUnknownRole(t *testing.T) {
	repo := NewTurnsRepo(newTestDB(t))
	_, err := repo.AddTurn(context.Background(), core.Turn{Role: "tool", Text: "x"})
	assert.Error(t, err)
}

func TestTurnsRepo_NearestUserTurns(t *testing.T) {
	ctx := context.Background()
	repo := NewTurnsRepo(newTestDB(t))

	add := func(role core.Role, text string, vec []float32) int64 {
		id, err := repo.AddTurn(ctx, core.Turn{Role: role, Text: text, Embedding: vec})
		require.NoError(t, err)
		return id
	}

	add(core.RoleUser, "far", []float32{10, 10, 10})
	add(core.RoleUser, "near", []float32{0.1, 0, 0})
	add(core.RoleAssistant, "assistant near", []float32{0, 0, 0})
	add(core.RoleUser, "no vector", nil)
	add(core.RoleUser, "other dims", []float32{0, 0})
	add(core.RoleUser, "mid", []float32{1, 1, 1})
	current := add(core.RoleUser, "current", []float32{0, 0, 0})

	got, err := repo.NearestUserTurns(ctx, []float32{0, 0, 0}, current, 5)
	require.NoError(t, err)

	var texts []string
	for _, turn := range got {
		texts = append(texts, turn.Text)
		assert.Equal(t, core.RoleUser, turn.Role)
	}
	assert.Equal(t, []string{"near", "mid", "far"}, texts)
	assert.Less(t, got[0].Distance, got[1].Distance)

	got, err = repo.NearestUserTurns(ctx, []float32{0, 0, 0}, current, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].Text)

	vec, err := storedEmbedding(ctx, repo, current)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, vec)
}

func TestTurnsRepo_NearestTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	repo := NewTurnsRepo(newTestDB(t))

	for _, text := range []string{"first", "second"} {
		_, err := repo.AddTurn(ctx, core.Turn{Role: core.RoleUser, Text: text, Embedding: []float32{1, 0}})
		require.NoError(t, err)
	}

	got, err := repo.NearestUserTurns(ctx, []float32{1, 0}, 0, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestTurnsRepo_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewTurnsRepo(newTestDB(t))

	now := time.Now()
	_, err := repo.AddTurn(ctx, core.Turn{Role: core.RoleUser, Text: "old", CreatedAt: now.Add(-48 * time.Hour)})
	require.NoError(t, err)
	_, err = repo.AddTurn(ctx, core.Turn{Role: core.RoleUser, Text: "fresh", CreatedAt: now})
	require.NoError(t, err)

	n, err := repo.DeleteTurnsBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	recent, err := repo.RecentTurns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "fresh", recent[0].Text)
}

func TestKnowledgeRepo_AddAndNearest(t *testing.T) {
	ctx := context.Background()
	repo := NewKnowledgeRepo(newTestDB(t))

	fragments := []core.KnowledgeFragment{
		{DocumentID: "doc-1", Filename: "a.txt", Index: 0, Text: "alpha", TokenCount: 1, Embedding: []float32{5, 5}},
		{DocumentID: "doc-1", Filename: "a.txt", Index: 1, Text: "beta", TokenCount: 1, Embedding: []float32{0, 1}},
		{DocumentID: "doc-1", Filename: "a.txt", Index: 2, Text: "gamma", TokenCount: 1},
	}
	require.NoError(t, repo.AddFragments(ctx, fragments))

	got, err := repo.NearestFragments(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "beta", got[0].Text)
	assert.Equal(t, "alpha", got[1].Text)
	assert.Equal(t, "a.txt", got[0].Filename)

	all, err := repo.DocumentFragments(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "gamma", all[2].Text)
}

func TestKnowledgeRepo_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewKnowledgeRepo(newTestDB(t))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, repo.AddFragments(ctx, []core.KnowledgeFragment{
		{DocumentID: "old", Filename: "o.txt", Text: "old", CreatedAt: old},
		{DocumentID: "new", Filename: "n.txt", Text: "new"},
	}))

	n, err := repo.DeleteFragmentsBefore(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMarketRepo_Samples(t *testing.T) {
	ctx := context.Background()
	repo := NewMarketRepo(newTestDB(t))

	base := time.Now().Add(-10 * time.Minute)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.AddPriceSample(ctx, core.PriceSample{
			Symbol:    "NQ=F",
			Price:     100 + float64(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.AddPriceSample(ctx, core.PriceSample{Symbol: "ES=F", Price: 1}))

	samples, err := repo.RecentPriceSamples(ctx, "NQ=F", 3)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.Equal(t, 102.0, samples[0].Price)
	assert.Equal(t, 104.0, samples[2].Price)
	assert.True(t, samples[0].CreatedAt.Before(samples[2].CreatedAt))

	n, err := repo.DeletePriceSamplesBefore(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMarketRepo_Settings(t *testing.T) {
	ctx := context.Background()
	repo := NewMarketRepo(newTestDB(t))

	defaults := core.AlertSetting{Symbol: "NQ=F", ThresholdPercent: 1.0, Active: true}
	s, err := repo.GetOrCreateSetting(ctx, defaults)
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, 1.0, s.ThresholdPercent)
	assert.True(t, s.Active)
	assert.Nil(t, s.LastAlertAt)

	s.ThresholdPercent = 2.5
	s.Active = false
	require.NoError(t, repo.UpdateSetting(ctx, s))

	// Defaults never overwrite an existing row.
	again, err := repo.GetOrCreateSetting(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)
	assert.Equal(t, 2.5, again.ThresholdPercent)
	assert.False(t, again.Active)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.MarkAlerted(ctx, s.ID, at))
	again, err = repo.GetOrCreateSetting(ctx, defaults)
	require.NoError(t, err)
	require.NotNil(t, again.LastAlertAt)
	assert.True(t, at.Equal(*again.LastAlertAt))

	assert.Error(t, repo.UpdateSetting(ctx, core.AlertSetting{ID: 999, ThresholdPercent: 1}))
}

func storedEmbedding(ctx context.Context, repo *TurnsRepo, id int64) ([]float32, error) {
	var blob []byte
	if err := repo.db.QueryRowContext(ctx, `SELECT embedding FROM turns WHERE id = ?`, id).Scan(&blob); err != nil {
		return nil, err
	}
	return deserializeVector(blob)
}

func deserializeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to deserialize vector: %w", err)
	}
	return vec, nil
}
