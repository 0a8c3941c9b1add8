package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/pkg/models"
)

type mockRepo struct {
	usersDueFunc   func(ctx context.Context, timeOfDay string) ([]models.DueUser, error)
	updateUserFunc func(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error)
}

func (m *mockRepo) UsersDueForNotification(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
	return m.usersDueFunc(ctx, timeOfDay)
}

func (m *mockRepo) UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error) {
	return m.updateUserFunc(ctx, telegramID, upd)
}

type mockSender struct {
	mu       sync.Mutex
	sent     map[int64]string
	sendFunc func(telegramID int64) error
}

func (m *mockSender) SendNotification(ctx context.Context, telegramID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sent == nil {
		m.sent = make(map[int64]string)
	}
	if err := m.sendFunc(telegramID); err != nil {
		return err
	}
	m.sent[telegramID] = text
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTick_ClassifiesDeliveryFailures(t *testing.T) {
	var disabled []int64
	repo := &mockRepo{
		usersDueFunc: func(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
			assert.Equal(t, "08:30", timeOfDay)
			return []models.DueUser{
				{TelegramID: 1, Locale: models.LocaleEN},
				{TelegramID: 2, Locale: models.LocaleRU},
				{TelegramID: 3, Locale: models.LocaleUZ},
			}, nil
		},
		updateUserFunc: func(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error) {
			require.NotNil(t, upd.NotificationsEnabled)
			assert.False(t, *upd.NotificationsEnabled)
			disabled = append(disabled, telegramID)
			return &models.User{TelegramID: telegramID}, nil
		},
	}
	sender := &mockSender{
		sendFunc: func(telegramID int64) error {
			switch telegramID {
			case 2:
				return fmt.Errorf("telegram: Forbidden: bot was blocked by the user: %w", ErrPermanentDelivery)
			case 3:
				return errors.New("connection reset")
			}
			return nil
		},
	}
	d := New(repo, sender, Config{}, discardLogger())

	now := time.Date(2024, 5, 1, 8, 30, 42, 0, time.UTC)
	report := d.Tick(context.Background(), now)

	assert.Equal(t, Report{Due: 3, Sent: 1, Disabled: 1, Failed: 1}, report)
	assert.Equal(t, []int64{2}, disabled)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgNotification), sender.sent[1])
}

func TestTick_UsesUTC(t *testing.T) {
	var got string
	repo := &mockRepo{
		usersDueFunc: func(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
			got = timeOfDay
			return nil, nil
		},
	}
	d := New(repo, &mockSender{}, Config{}, discardLogger())

	tashkent := time.FixedZone("UZT", 5*60*60)
	d.Tick(context.Background(), time.Date(2024, 5, 1, 13, 5, 0, 0, tashkent))

	assert.Equal(t, "08:05", got)
}

func TestTick_RepositoryFailure(t *testing.T) {
	repo := &mockRepo{
		usersDueFunc: func(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
			return nil, errors.New("db down")
		},
	}
	d := New(repo, &mockSender{}, Config{}, discardLogger())

	assert.Equal(t, Report{}, d.Tick(context.Background(), time.Now()))
}

func TestRegister_Idempotent(t *testing.T) {
	d := New(&mockRepo{}, &mockSender{}, Config{Interval: time.Hour}, discardLogger())

	require.NoError(t, d.Register(context.Background()))
	require.NoError(t, d.Register(context.Background()))

	assert.Len(t, d.scheduler.Jobs(), 1)
}

func TestRegister_RunsSweep(t *testing.T) {
	ticks := make(chan string, 4)
	repo := &mockRepo{
		usersDueFunc: func(ctx context.Context, timeOfDay string) ([]models.DueUser, error) {
			ticks <- timeOfDay
			return nil, nil
		},
	}
	d := New(repo, &mockSender{}, Config{Interval: time.Hour, FirstRun: 0}, discardLogger())
	require.NoError(t, d.Register(context.Background()))

	d.Start()
	defer d.Stop()

	select {
	case tod := <-ticks:
		assert.Len(t, tod, 5)
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not run")
	}
}
