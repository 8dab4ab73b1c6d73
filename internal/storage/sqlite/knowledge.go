package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/tuskdash/internal/core"
)

type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// AddFragments stores all fragments of one upload atomically.
func (r *KnowledgeRepo) AddFragments(ctx context.Context, fragments []core.KnowledgeFragment) error {
	if len(fragments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_fragments (document_id, filename, chunk_index, content, token_count, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fragment insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, f := range fragments {
		vecBlob, err := nullableVector(f.Embedding)
		if err != nil {
			return err
		}

		createdAt := f.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		if _, err := stmt.ExecContext(ctx,
			f.DocumentID, f.Filename, f.Index, f.Text, f.TokenCount, vecBlob, utc(createdAt),
		); err != nil {
			return fmt.Errorf("failed to insert fragment %d: %w", f.Index, err)
		}
	}

	return tx.Commit()
}

func (r *KnowledgeRepo) NearestFragments(ctx context.Context, vector []float32, k int) ([]core.KnowledgeFragment, error) {
	if len(vector) == 0 || k <= 0 {
		return nil, nil
	}

	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, document_id, filename, chunk_index, content, token_count, created_at,
		       vec_distance_L2(embedding, ?) AS distance
		FROM knowledge_fragments
		WHERE embedding IS NOT NULL
		  AND length(embedding) = ?
		ORDER BY distance ASC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, len(vecBlob), k)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	defer rows.Close()

	var fragments []core.KnowledgeFragment
	for rows.Next() {
		var f core.KnowledgeFragment
		if err := rows.Scan(
			&f.ID, &f.DocumentID, &f.Filename, &f.Index, &f.Text, &f.TokenCount, &f.CreatedAt, &f.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return fragments, nil
}

func (r *KnowledgeRepo) DeleteFragmentsBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM knowledge_fragments WHERE created_at < ?`, utc(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune fragments: %w", err)
	}
	return res.RowsAffected()
}

// DocumentFragments returns the fragments of one document in split order.
func (r *KnowledgeRepo) DocumentFragments(ctx context.Context, documentID string) ([]core.KnowledgeFragment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, document_id, filename, chunk_index, content, token_count, created_at
		FROM knowledge_fragments
		WHERE document_id = ?
		ORDER BY chunk_index ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fragments: %w", err)
	}
	defer rows.Close()

	var fragments []core.KnowledgeFragment
	for rows.Next() {
		var f core.KnowledgeFragment
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.Filename, &f.Index, &f.Text, &f.TokenCount, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}
