package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles per-(user, topic) linear progress cursors
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// AdvanceProgress moves the user's cursor for topicID to phraseID unless it
// already points further. The cursor never decreases, and a phrase that does
// not belong to the topic yields ErrNotFound.
func (r *ProgressRepository) AdvanceProgress(ctx context.Context, userID, topicID, phraseID int64) error {
	greatest := "MAX"
	if r.db.DriverName() == DriverPostgres {
		greatest = "GREATEST"
	}

	// The WHERE on the SELECT is required by SQLite to parse the upsert.
	query := r.db.Rebind(`
		INSERT INTO user_topic_progress (user_id, topic_id, last_phrase_id, updated_at)
		SELECT CAST(? AS BIGINT), topic_id, id, CURRENT_TIMESTAMP FROM phrases WHERE id = ? AND topic_id = ?
		ON CONFLICT (user_id, topic_id) DO UPDATE SET
			last_phrase_id = ` + greatest + `(user_topic_progress.last_phrase_id, excluded.last_phrase_id),
			updated_at = excluded.updated_at
	`)

	res, err := r.db.ExecContext(ctx, query, userID, phraseID, topicID)
	if err != nil {
		return fmt.Errorf("failed to advance progress: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("phrase %d in topic %d: %w", phraseID, topicID, ErrNotFound)
	}
	return nil
}

// GetProgress returns the user's cursor for a topic
func (r *ProgressRepository) GetProgress(ctx context.Context, userID, topicID int64) (*models.ProgressCursor, error) {
	var cursor models.ProgressCursor
	query := r.db.Rebind(`
		SELECT user_id, topic_id, last_phrase_id, updated_at
		FROM user_topic_progress WHERE user_id = ? AND topic_id = ?
	`)
	err := r.db.GetContext(ctx, &cursor, query, userID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("progress for topic %d: %w", topicID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &cursor, nil
}

// ResetProgress removes the user's cursor so the topic restarts from its
// first phrase
func (r *ProgressRepository) ResetProgress(ctx context.Context, userID, topicID int64) error {
	query := r.db.Rebind("DELETE FROM user_topic_progress WHERE user_id = ? AND topic_id = ?")
	if _, err := r.db.ExecContext(ctx, query, userID, topicID); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}
