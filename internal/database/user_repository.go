package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/phrasebot/pkg/models"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, telegram_id, locale, topic_id, level_id, direction, repeating_errors,
	notifications_enabled, notification_time, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreateUser returns the user with the given Telegram ID, creating a
// default-configured row on first contact. Concurrent first calls still
// produce exactly one row.
func (r *UserRepository) GetOrCreateUser(ctx context.Context, telegramID int64) (*models.User, error) {
	now := time.Now().UTC()
	query := r.db.Rebind(`
		INSERT INTO users (telegram_id, locale, repeating_errors, notifications_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO NOTHING
	`)
	_, err := r.db.ExecContext(ctx, query, telegramID, models.DefaultLocale, false, false, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return r.GetUser(ctx, telegramID)
}

// GetUser returns a user by Telegram ID
func (r *UserRepository) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE telegram_id = ?")
	err := r.db.GetContext(ctx, &user, query, telegramID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUser applies a partial update and returns the resulting row
func (r *UserRepository) UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return r.GetUser(ctx, telegramID)
	}

	var (
		sets []string
		args []interface{}
	)
	set := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if upd.Locale != nil {
		set("locale", *upd.Locale)
	}
	if upd.TopicID != nil {
		set("topic_id", *upd.TopicID)
	}
	if upd.LevelID != nil {
		set("level_id", *upd.LevelID)
	}
	if upd.Direction != nil {
		set("direction", string(*upd.Direction))
	}
	if upd.RepeatingErrors != nil {
		set("repeating_errors", *upd.RepeatingErrors)
	}
	if upd.NotificationsEnabled != nil {
		set("notifications_enabled", *upd.NotificationsEnabled)
	}
	if upd.NotificationTime != nil {
		set("notification_time", *upd.NotificationTime)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, telegramID)

	query := r.db.Rebind("UPDATE users SET " + strings.Join(sets, ", ") +
		" WHERE telegram_id = ? RETURNING " + userColumns)

	var user models.User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", telegramID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// UsersDueForNotification returns users with reminders enabled at exactly
// the given time of day ("15:04")
func (r *UserRepository) UsersDueForNotification(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
	query := r.db.Rebind(`
		SELECT telegram_id, locale FROM users
		WHERE notifications_enabled = ? AND notification_time = ?
		ORDER BY id
	`)

	var users []models.DueUser
	if err := r.db.SelectContext(ctx, &users, query, true, timeOfDay); err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
