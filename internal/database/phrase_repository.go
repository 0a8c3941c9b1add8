package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/phrasebot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const phraseColumns = "p.id, p.topic_id, p.level_id, p.text_ru, p.text_en, p.text_uz"

// PhraseRepository handles database operations for phrases
type PhraseRepository struct {
	db *sqlx.DB
}

// NewPhraseRepository creates a new repository instance
func NewPhraseRepository(db *sqlx.DB) *PhraseRepository {
	return &PhraseRepository{db: db}
}

// GetPhrase returns a phrase by ID
func (r *PhraseRepository) GetPhrase(ctx context.Context, id int64) (*models.Phrase, error) {
	var phrase models.Phrase
	query := r.db.Rebind("SELECT " + phraseColumns + " FROM phrases p WHERE p.id = ?")
	err := r.db.GetContext(ctx, &phrase, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("phrase %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phrase: %w", err)
	}
	return &phrase, nil
}

// NextPhrase returns the first phrase of (topic, level) past the user's
// cursor for that topic, or nil when the topic is exhausted. Without a
// cursor the first phrase of the pair is returned.
func (r *PhraseRepository) NextPhrase(ctx context.Context, userID, topicID, levelID int64) (*models.Phrase, error) {
	query := r.db.Rebind(`
		SELECT ` + phraseColumns + ` FROM phrases p
		WHERE p.topic_id = ? AND p.level_id = ?
		  AND p.id > COALESCE(
			(SELECT last_phrase_id FROM user_topic_progress WHERE user_id = ? AND topic_id = ?), 0)
		ORDER BY p.id
		LIMIT 1
	`)

	var phrase models.Phrase
	err := r.db.GetContext(ctx, &phrase, query, topicID, levelID, userID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next phrase: %w", err)
	}
	return &phrase, nil
}

// PhrasesBelowThreshold returns the phrases of (topic, level) whose best
// score for the user is strictly below threshold. Phrases the user never
// attempted are not included.
func (r *PhraseRepository) PhrasesBelowThreshold(ctx context.Context, userID, topicID, levelID int64, threshold int) ([]models.Phrase, error) {
	query := r.db.Rebind(`
		SELECT ` + phraseColumns + ` FROM phrases p
		JOIN (
			SELECT phrase_id FROM user_scores
			WHERE user_id = ?
			GROUP BY phrase_id
			HAVING MAX(score) < ?
		) s ON s.phrase_id = p.id
		WHERE p.topic_id = ? AND p.level_id = ?
		ORDER BY p.id
	`)

	var phrases []models.Phrase
	if err := r.db.SelectContext(ctx, &phrases, query, userID, threshold, topicID, levelID); err != nil {
		return nil, fmt.Errorf("failed to get phrases for repetition: %w", err)
	}
	return phrases, nil
}

// CreatePhrase inserts a phrase and sets its ID
func (r *PhraseRepository) CreatePhrase(ctx context.Context, phrase *models.Phrase) error {
	query := r.db.Rebind(`
		INSERT INTO phrases (topic_id, level_id, text_ru, text_en, text_uz)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		phrase.TopicID,
		phrase.LevelID,
		phrase.TextRU,
		phrase.TextEN,
		phrase.TextUZ,
	).Scan(&phrase.ID)
	if err != nil {
		return fmt.Errorf("failed to create phrase: %w", err)
	}
	return nil
}

// FindPhrase looks a phrase up by its Russian text within a topic and level
func (r *PhraseRepository) FindPhrase(ctx context.Context, topicID, levelID int64, textRU string) (*models.Phrase, error) {
	var phrase models.Phrase
	query := r.db.Rebind(`
		SELECT ` + phraseColumns + `
		FROM phrases p
		WHERE p.topic_id = ? AND p.level_id = ? AND p.text_ru = ?
		ORDER BY p.id
		LIMIT 1
	`)
	err := r.db.GetContext(ctx, &phrase, query, topicID, levelID, textRU)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("phrase %q: %w", textRU, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find phrase: %w", err)
	}
	return &phrase, nil
}
