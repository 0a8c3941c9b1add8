// Package session tracks the phrase currently awaiting an answer from each user.
package session

import (
	"context"
	"time"
)

// Session is the per-user training state between presenting a phrase and scoring the answer
type Session struct {
	PhraseID    int64     `json:"phrase_id"`
	Repetition  bool      `json:"repetition"`
	PresentedAt time.Time `json:"presented_at"`
}

// Store keeps at most one Session per user
type Store interface {
	Get(ctx context.Context, userID int64) (Session, bool, error)
	Put(ctx context.Context, userID int64, s Session) error
	// Take returns and removes the session in one step
	Take(ctx context.Context, userID int64) (Session, bool, error)
	Delete(ctx context.Context, userID int64) error
}
