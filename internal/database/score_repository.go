package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/phrasebot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ScoreRepository handles the append-only score log
type ScoreRepository struct {
	db *sqlx.DB
}

// NewScoreRepository creates a new repository instance
func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// RecordScore appends a score record. Records are never updated or deleted.
func (r *ScoreRepository) RecordScore(ctx context.Context, userID, phraseID int64, score int) (*models.ScoreRecord, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score %d out of range 0-100", score)
	}

	record := &models.ScoreRecord{
		UserID:    userID,
		PhraseID:  phraseID,
		Score:     score,
		CreatedAt: time.Now().UTC(),
	}

	query := r.db.Rebind(`
		INSERT INTO user_scores (user_id, phrase_id, score, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		record.UserID,
		record.PhraseID,
		record.Score,
		record.CreatedAt,
	).Scan(&record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}
	return record, nil
}

// AverageScore returns the mean of all the user's scores across every topic
// and level, or 0 when there are none
func (r *ScoreRepository) AverageScore(ctx context.Context, userID int64) (float64, error) {
	query := r.db.Rebind(`
		SELECT CAST(COALESCE(AVG(score), 0) AS DOUBLE PRECISION)
		FROM user_scores WHERE user_id = ?
	`)

	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, userID); err != nil {
		return 0, fmt.Errorf("failed to get average score: %w", err)
	}
	return avg, nil
}
