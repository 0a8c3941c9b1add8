package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/pkg/models"
)

// Defaults for the reminder sweep
const (
	DefaultInterval = time.Minute
	DefaultFirstRun = 10 * time.Second

	jobTag = "daily-reminders"
)

// ErrPermanentDelivery marks a recipient that can no longer be reached, e.g. one that blocked the bot
var ErrPermanentDelivery = errors.New("recipient unreachable")

// Repository is the slice of the persistence layer the dispatcher uses
type Repository interface {
	UsersDueForNotification(ctx context.Context, timeOfDay string) ([]models.DueUser, error)
	UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error)
}

// Sender delivers a message; errors wrapping ErrPermanentDelivery are permanent,
// everything else is treated as transient
type Sender interface {
	SendNotification(ctx context.Context, telegramID int64, text string) error
}

type Config struct {
	Interval time.Duration
	FirstRun time.Duration
}

// Report summarizes one sweep
type Report struct {
	Due      int
	Sent     int
	Disabled int
	Failed   int
}

// Dispatcher sends the daily training reminder to every user due at the current minute
type Dispatcher struct {
	scheduler *gocron.Scheduler
	repo      Repository
	sender    Sender
	cfg       Config
	now       func() time.Time
	logger    *slog.Logger
}

func New(repo Repository, sender Sender, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FirstRun < 0 {
		cfg.FirstRun = DefaultFirstRun
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := gocron.NewScheduler(time.UTC)
	// a slow sweep must not overlap with the next one
	s.SingletonModeAll()

	return &Dispatcher{
		scheduler: s,
		repo:      repo,
		sender:    sender,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// Register installs the periodic sweep. Calling it again is a no-op.
func (d *Dispatcher) Register(ctx context.Context) error {
	if jobs, err := d.scheduler.FindJobsByTag(jobTag); err == nil && len(jobs) > 0 {
		d.logger.Debug("reminder job already registered")
		return nil
	}

	job := d.scheduler.Every(d.cfg.Interval).Tag(jobTag)
	if d.cfg.FirstRun > 0 {
		job = job.StartAt(d.now().Add(d.cfg.FirstRun))
	} else {
		job = job.StartImmediately()
	}

	_, err := job.Do(func() {
		tickCtx, cancel := context.WithTimeout(ctx, d.cfg.Interval)
		defer cancel()
		d.Tick(tickCtx, d.now())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	d.logger.Info("reminder job registered", "interval", d.cfg.Interval, "first_run", d.cfg.FirstRun)
	return nil
}

// Start runs registered jobs in the background
func (d *Dispatcher) Start() {
	d.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs
func (d *Dispatcher) Stop() {
	d.scheduler.Stop()
}

// Tick sends reminders to everyone due at now, truncated to the minute in UTC.
// Failures are logged and never abort the sweep.
func (d *Dispatcher) Tick(ctx context.Context, now time.Time) Report {
	timeOfDay := now.UTC().Format(models.TimeOfDayLayout)

	users, err := d.repo.UsersDueForNotification(ctx, timeOfDay)
	if err != nil {
		d.logger.Error("failed to load users due for reminder", "time", timeOfDay, "err", err)
		return Report{}
	}

	report := Report{Due: len(users)}
	for _, u := range users {
		err := d.sender.SendNotification(ctx, u.TelegramID, texts.Message(u.Locale, texts.MsgNotification))
		switch {
		case err == nil:
			report.Sent++
		case errors.Is(err, ErrPermanentDelivery):
			d.disable(ctx, u.TelegramID, err)
			report.Disabled++
		default:
			d.logger.Warn("reminder not delivered", "user", u.TelegramID, "err", err)
			report.Failed++
		}
	}

	if report.Due > 0 {
		d.logger.Info("reminders sent",
			"time", timeOfDay,
			"due", report.Due,
			"sent", report.Sent,
			"disabled", report.Disabled,
			"failed", report.Failed,
		)
	}
	return report
}

func (d *Dispatcher) disable(ctx context.Context, telegramID int64, cause error) {
	off := false
	if _, err := d.repo.UpdateUser(ctx, telegramID, models.UserUpdate{NotificationsEnabled: &off}); err != nil {
		d.logger.Error("failed to disable reminders", "user", telegramID, "err", err)
		return
	}
	d.logger.Info("reminders disabled for unreachable user", "user", telegramID, "cause", cause)
}
