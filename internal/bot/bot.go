// Package bot is the Telegram front end: it routes messages and button presses
// to the training engine and renders the results in the user's language.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/training"
	"github.com/example/phrasebot/pkg/models"
)

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Repository is the slice of the persistence layer the front end reads and writes directly
type Repository interface {
	GetOrCreateUser(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error)
	ListTopics(ctx context.Context) ([]models.Topic, error)
	GetTopic(ctx context.Context, id int64) (*models.Topic, error)
	ListLevels(ctx context.Context) ([]models.Level, error)
	GetLevel(ctx context.Context, id int64) (*models.Level, error)
	AverageScore(ctx context.Context, userID int64) (float64, error)
	ResetProgress(ctx context.Context, userID, topicID int64) error
}

// Trainer runs the translation exercise
type Trainer interface {
	StartSession(ctx context.Context, telegramID int64) (*training.Presentation, error)
	SubmitAnswer(ctx context.Context, telegramID int64, answer string) (*training.Result, error)
	EnterRepetitionMode(ctx context.Context, telegramID int64) (int, error)
	ExitRepetitionMode(ctx context.Context, telegramID int64) error
	Awaiting(ctx context.Context, telegramID int64) (bool, error)
	Abandon(ctx context.Context, telegramID int64) error
}

// Bot represents the Telegram bot application
type Bot struct {
	api     telegramAPI
	repo    Repository
	trainer Trainer
	config  *BotConfig
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewBot authorizes against the Bot API with token
func NewBot(token string, repo Repository, trainer Trainer, config *BotConfig, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	if config == nil {
		config = DefaultConfig()
	}
	api.Debug = config.Debug

	b := newBot(api, repo, trainer, config, logger)
	b.logger.Info("authorized on telegram", "account", api.Self.UserName)
	return b, nil
}

func newBot(api telegramAPI, repo Repository, trainer Trainer, config *BotConfig, logger *slog.Logger) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:     api,
		repo:    repo,
		trainer: trainer,
		config:  config,
		logger:  logger,
	}
}

// Run receives updates until ctx is cancelled, then waits for in-flight handlers
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.waitHandlers()
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// waitHandlers blocks until in-flight updates finish or ShutdownTimeout passes
func (b *Bot) waitHandlers() {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	if b.config.ShutdownTimeout <= 0 {
		<-done
		return
	}
	select {
	case <-done:
	case <-time.After(b.config.ShutdownTimeout):
		b.logger.Warn("shutdown timeout reached with updates still in flight")
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", "update", update.UpdateID, "panic", r)
		}
	}()

	// handlers must finish even when shutdown starts mid-update
	ctx = context.WithoutCancel(ctx)

	switch {
	case update.Message != nil && update.Message.From != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}
