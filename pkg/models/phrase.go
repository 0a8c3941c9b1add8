package models

import "time"

// Phrase belongs to exactly one (topic, level) pair. Its ID defines catalog order.
type Phrase struct {
	ID      int64  `json:"id" db:"id"`
	TopicID int64  `json:"topic_id" db:"topic_id"`
	LevelID int64  `json:"level_id" db:"level_id"`
	TextRU  string `json:"text_ru" db:"text_ru"`
	TextEN  string `json:"text_en" db:"text_en"`
	TextUZ  string `json:"text_uz" db:"text_uz"`
}

// Text returns the phrase in the given locale
func (p *Phrase) Text(locale string) string {
	switch locale {
	case LocaleEN:
		return p.TextEN
	case LocaleUZ:
		return p.TextUZ
	default:
		return p.TextRU
	}
}

// ScoreRecord is an immutable result of one scored attempt
type ScoreRecord struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PhraseID  int64     `json:"phrase_id" db:"phrase_id"`
	Score     int       `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProgressCursor tracks linear progress through one topic
type ProgressCursor struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	TopicID      int64     `json:"topic_id" db:"topic_id"`
	LastPhraseID int64     `json:"last_phrase_id" db:"last_phrase_id"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
