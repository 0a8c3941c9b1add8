// Package training decides which phrase a user sees next and records the outcome of each answer.
//
// A user is in linear mode by default: phrases of the selected topic and level are served in
// ascending id order past the per-topic progress cursor. In repetition mode phrases are drawn at
// random from those whose best score is still below the threshold, and the cursor is left alone.
package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/example/phrasebot/internal/session"
	"github.com/example/phrasebot/pkg/models"
)

// DefaultThreshold is the best score below which a phrase is due for repetition
const DefaultThreshold = 90

var (
	// ErrPreconditionMissing means the user has not chosen a topic, level and direction yet
	ErrPreconditionMissing = errors.New("topic, level and direction must be set")
	// ErrNoActivePhrase means an answer arrived while no phrase was awaiting one
	ErrNoActivePhrase = errors.New("no phrase is awaiting an answer")
	// ErrEmptyAnswer means the submitted translation was blank
	ErrEmptyAnswer = errors.New("empty answer")
)

// Repository is the slice of the persistence layer the engine uses
type Repository interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error)
	GetPhrase(ctx context.Context, id int64) (*models.Phrase, error)
	NextPhrase(ctx context.Context, userID, topicID, levelID int64) (*models.Phrase, error)
	PhrasesBelowThreshold(ctx context.Context, userID, topicID, levelID int64, threshold int) ([]models.Phrase, error)
	RecordScore(ctx context.Context, userID, phraseID int64, score int) (*models.ScoreRecord, error)
	AdvanceProgress(ctx context.Context, userID, topicID, phraseID int64) error
}

// Scorer evaluates a translation; it always returns a verdict
type Scorer interface {
	Evaluate(ctx context.Context, req models.EvaluationRequest) models.Evaluation
}

// Status is the outcome of asking for the next phrase
type Status int

const (
	StatusPhrase Status = iota
	StatusTopicComplete
	StatusNoErrorsToRepeat
)

func (s Status) String() string {
	switch s {
	case StatusPhrase:
		return "phrase"
	case StatusTopicComplete:
		return "topic_complete"
	case StatusNoErrorsToRepeat:
		return "no_errors_to_repeat"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Presentation is what StartSession hands to the front end
type Presentation struct {
	Status     Status
	Phrase     *models.Phrase
	Text       string // phrase in the direction's source locale
	Repetition bool
}

// Result is the scored outcome of one answer
type Result struct {
	Phrase     *models.Phrase
	Evaluation models.Evaluation
	Repetition bool
}

type Config struct {
	Threshold int
}

type Engine struct {
	repo      Repository
	scorer    Scorer
	sessions  session.Store
	threshold int
	pick      func(n int) int
	now       func() time.Time
	logger    *slog.Logger
}

func NewEngine(repo Repository, scorer Scorer, sessions session.Store, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		repo:      repo,
		scorer:    scorer,
		sessions:  sessions,
		threshold: cfg.Threshold,
		pick:      rand.Intn,
		now:       time.Now,
		logger:    logger,
	}
}

// NextPhrase selects the phrase to present without changing any state.
// A nil phrase means the pool for the current mode is exhausted.
func (e *Engine) NextPhrase(ctx context.Context, user *models.User) (*models.Phrase, error) {
	if !user.ReadyForTraining() {
		return nil, ErrPreconditionMissing
	}

	if !user.RepeatingErrors {
		phrase, err := e.repo.NextPhrase(ctx, user.ID, *user.TopicID, *user.LevelID)
		if err != nil {
			return nil, fmt.Errorf("select next phrase: %w", err)
		}
		return phrase, nil
	}

	pool, err := e.repo.PhrasesBelowThreshold(ctx, user.ID, *user.TopicID, *user.LevelID, e.threshold)
	if err != nil {
		return nil, fmt.Errorf("select repetition pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, nil
	}
	phrase := pool[e.pick(len(pool))]
	return &phrase, nil
}

// StartSession presents the next phrase and remembers it as awaiting an answer.
// An exhausted repetition pool switches the user back to linear mode.
func (e *Engine) StartSession(ctx context.Context, telegramID int64) (*Presentation, error) {
	user, err := e.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	phrase, err := e.NextPhrase(ctx, user)
	if err != nil {
		return nil, err
	}

	if phrase == nil {
		if err := e.sessions.Delete(ctx, telegramID); err != nil {
			return nil, fmt.Errorf("clear session: %w", err)
		}
		if !user.RepeatingErrors {
			return &Presentation{Status: StatusTopicComplete}, nil
		}
		if err := e.setRepetition(ctx, telegramID, false); err != nil {
			return nil, err
		}
		e.logger.Info("repetition pool exhausted", "user", telegramID)
		return &Presentation{Status: StatusNoErrorsToRepeat}, nil
	}

	s := session.Session{
		PhraseID:    phrase.ID,
		Repetition:  user.RepeatingErrors,
		PresentedAt: e.now().UTC(),
	}
	if err := e.sessions.Put(ctx, telegramID, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &Presentation{
		Status:     StatusPhrase,
		Phrase:     phrase,
		Text:       phrase.Text(user.Direction.Source()),
		Repetition: user.RepeatingErrors,
	}, nil
}

// SubmitAnswer scores the answer to the phrase awaiting one, records the score and,
// for phrases served in linear mode, advances the topic cursor past it.
func (e *Engine) SubmitAnswer(ctx context.Context, telegramID int64, answer string) (*Result, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	s, ok, err := e.sessions.Take(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, ErrNoActivePhrase
	}

	user, err := e.repo.GetUser(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.Direction == nil || !user.Direction.Valid() {
		return nil, ErrPreconditionMissing
	}

	phrase, err := e.repo.GetPhrase(ctx, s.PhraseID)
	if err != nil {
		return nil, fmt.Errorf("get phrase %d: %w", s.PhraseID, err)
	}

	direction := *user.Direction
	verdict := e.scorer.Evaluate(ctx, models.EvaluationRequest{
		Original:  phrase.Text(direction.Source()),
		Answer:    answer,
		Reference: phrase.Text(direction.Target()),
		Locale:    user.Locale,
		Direction: direction,
	})

	if _, err := e.repo.RecordScore(ctx, user.ID, phrase.ID, verdict.Score); err != nil {
		return nil, fmt.Errorf("record score: %w", err)
	}

	if !s.Repetition {
		if err := e.repo.AdvanceProgress(ctx, user.ID, phrase.TopicID, phrase.ID); err != nil {
			return nil, fmt.Errorf("advance progress: %w", err)
		}
	}

	e.logger.Debug("answer scored",
		"user", telegramID,
		"phrase", phrase.ID,
		"score", verdict.Score,
		"repetition", s.Repetition,
		"fallback", verdict.Fallback,
	)

	return &Result{
		Phrase:     phrase,
		Evaluation: verdict,
		Repetition: s.Repetition,
	}, nil
}

// EnterRepetitionMode turns repetition on when at least one phrase is due and
// returns the pool size. A zero size leaves the mode disabled.
func (e *Engine) EnterRepetitionMode(ctx context.Context, telegramID int64) (int, error) {
	user, err := e.repo.GetUser(ctx, telegramID)
	if err != nil {
		return 0, fmt.Errorf("get user: %w", err)
	}
	if user.TopicID == nil || user.LevelID == nil {
		return 0, ErrPreconditionMissing
	}

	pool, err := e.repo.PhrasesBelowThreshold(ctx, user.ID, *user.TopicID, *user.LevelID, e.threshold)
	if err != nil {
		return 0, fmt.Errorf("select repetition pool: %w", err)
	}

	enable := len(pool) > 0
	if user.RepeatingErrors != enable {
		if err := e.setRepetition(ctx, telegramID, enable); err != nil {
			return 0, err
		}
	}
	return len(pool), nil
}

// ExitRepetitionMode returns the user to linear progression
func (e *Engine) ExitRepetitionMode(ctx context.Context, telegramID int64) error {
	return e.setRepetition(ctx, telegramID, false)
}

// Abandon drops any phrase awaiting an answer
func (e *Engine) Abandon(ctx context.Context, telegramID int64) error {
	if err := e.sessions.Delete(ctx, telegramID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Awaiting reports whether a phrase is waiting for the user's answer
func (e *Engine) Awaiting(ctx context.Context, telegramID int64) (bool, error) {
	_, ok, err := e.sessions.Get(ctx, telegramID)
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	return ok, nil
}

func (e *Engine) setRepetition(ctx context.Context, telegramID int64, on bool) error {
	if _, err := e.repo.UpdateUser(ctx, telegramID, models.UserUpdate{RepeatingErrors: &on}); err != nil {
		return fmt.Errorf("set repetition mode: %w", err)
	}
	return nil
}
