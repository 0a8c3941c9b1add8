package models

import "time"

// User represents a Telegram user working through the phrase catalog
type User struct {
	ID                   int64      `json:"id" db:"id"`
	TelegramID           int64      `json:"telegram_id" db:"telegram_id"`
	Locale               string     `json:"locale" db:"locale"`
	TopicID              *int64     `json:"topic_id" db:"topic_id"`
	LevelID              *int64     `json:"level_id" db:"level_id"`
	Direction            *Direction `json:"direction" db:"direction"`
	RepeatingErrors      bool       `json:"repeating_errors" db:"repeating_errors"`
	NotificationsEnabled bool       `json:"notifications_enabled" db:"notifications_enabled"`
	NotificationTime     *string    `json:"notification_time" db:"notification_time"` // "15:04", UTC
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// ReadyForTraining reports whether topic, level and direction are all chosen
func (u *User) ReadyForTraining() bool {
	return u.TopicID != nil && u.LevelID != nil && u.Direction != nil && u.Direction.Valid()
}

// UserUpdate is a partial update: nil fields are left unchanged
type UserUpdate struct {
	Locale               *string
	TopicID              *int64
	LevelID              *int64
	Direction            *Direction
	RepeatingErrors      *bool
	NotificationsEnabled *bool
	NotificationTime     *string
}

// Empty reports whether the update touches no field
func (u UserUpdate) Empty() bool {
	return u.Locale == nil && u.TopicID == nil && u.LevelID == nil && u.Direction == nil &&
		u.RepeatingErrors == nil && u.NotificationsEnabled == nil && u.NotificationTime == nil
}

// DueUser is a recipient of the daily reminder
type DueUser struct {
	TelegramID int64  `db:"telegram_id"`
	Locale     string `db:"locale"`
}
