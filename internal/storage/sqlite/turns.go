package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
	"github.com/sandevgo/tuskdash/pkg/log"
)

type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

func (r *TurnsRepo) AddTurn(ctx context.Context, turn core.Turn) (int64, error) {
	if !turn.Role.Valid() {
		return 0, fmt.Errorf("invalid role %q", turn.Role)
	}

	vecBlob, err := nullableVector(turn.Embedding)
	if err != nil {
		return 0, err
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (role, content, embedding, created_at) VALUES (?, ?, ?, ?)`,
		string(turn.Role), turn.Text, vecBlob, utc(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read turn id: %w", err)
	}
	return id, nil
}

// NearestUserTurns ranks prior user turns by L2 distance to vector.
// Rows with a vector of another dimensionality are ignored.
func (r *TurnsRepo) NearestUserTurns(ctx context.Context, vector []float32, excludeID int64, k int) ([]core.Turn, error) {
	if len(vector) == 0 || k <= 0 {
		return nil, nil
	}

	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, role, content, created_at, vec_distance_L2(embedding, ?) AS distance
		FROM turns
		WHERE role = 'user'
		  AND embedding IS NOT NULL
		  AND length(embedding) = ?
		  AND id != ?
		ORDER BY distance ASC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, len(vecBlob), excludeID, k)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		var role string
		if err := rows.Scan(&t.ID, &role, &t.Text, &t.CreatedAt, &t.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = core.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}

// RecentTurns returns the newest limit turns in chronological order.
// excludeID of zero excludes nothing.
func (r *TurnsRepo) RecentTurns(ctx context.Context, limit int, excludeID int64) ([]core.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT id, role, content, created_at FROM turns WHERE id != ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		var role string
		if err := rows.Scan(&t.ID, &role, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = core.Role(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest -> Oldest from the query; callers want Oldest -> Newest.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Msg("loaded recent turns")
	return turns, nil
}

func (r *TurnsRepo) DeleteTurnsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM turns WHERE created_at < ?`, utc(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune turns: %w", err)
	}
	return res.RowsAffected()
}
