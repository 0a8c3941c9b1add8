package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/database"
	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/internal/training"
	"github.com/example/phrasebot/pkg/models"
)

// callbackReply is the toast (or alert) shown after a button press
type callbackReply struct {
	text  string
	alert bool
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	user, err := b.repo.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("failed to load user", "user", message.From.ID, "err", err)
		_ = b.sendText(chatID, texts.Message(models.DefaultLocale, texts.MsgErrorOccurred), nil)
		return
	}

	if message.IsCommand() {
		err = b.handleCommand(ctx, message, user)
	} else if key, ok := texts.MenuKey(strings.TrimSpace(message.Text)); ok {
		err = b.handleMenu(ctx, chatID, user, key)
	} else if message.Text != "" {
		err = b.handleAnswer(ctx, chatID, user, message.Text)
	}

	if err != nil {
		b.logger.Error("failed to handle message", "user", user.TelegramID, "err", err)
		_ = b.sendText(chatID, texts.Message(user.Locale, texts.MsgErrorOccurred), nil)
	}
}

// handleCommand handles /start, /menu, /training, /profile, /settings and /time
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message, user *models.User) error {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "menu":
		if err := b.trainer.Abandon(ctx, user.TelegramID); err != nil {
			return err
		}
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgWelcome), mainMenuKeyboard(user.Locale))
	case "training":
		return b.startTraining(ctx, chatID, user)
	case "profile":
		return b.showProfile(ctx, chatID, 0, user)
	case "settings":
		return b.showSettings(chatID, 0, user)
	case "time":
		return b.handleTimeCommand(ctx, chatID, user, message.CommandArguments())
	default:
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgUnknownAction), mainMenuKeyboard(user.Locale))
	}
}

func (b *Bot) handleMenu(ctx context.Context, chatID int64, user *models.User, key string) error {
	switch key {
	case texts.BtnTraining:
		return b.startTraining(ctx, chatID, user)
	case texts.BtnProfile:
		return b.showProfile(ctx, chatID, 0, user)
	case texts.BtnSettings:
		return b.showSettings(chatID, 0, user)
	}
	return nil
}

func (b *Bot) handleTimeCommand(ctx context.Context, chatID int64, user *models.User, args string) error {
	tod, err := models.ParseTimeOfDay(args)
	if err != nil {
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgTimeUsage), nil)
	}

	on := true
	if _, err := b.repo.UpdateUser(ctx, user.TelegramID, models.UserUpdate{NotificationTime: &tod, NotificationsEnabled: &on}); err != nil {
		return err
	}
	return b.sendText(chatID, texts.Message(user.Locale, texts.MsgTimeUpdated, tod), nil)
}

func (b *Bot) startTraining(ctx context.Context, chatID int64, user *models.User) error {
	p, err := b.trainer.StartSession(ctx, user.TelegramID)
	if errors.Is(err, training.ErrPreconditionMissing) {
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgCompleteProfile), editProfileKeyboard(user.Locale))
	}
	if err != nil {
		return err
	}

	switch p.Status {
	case training.StatusTopicComplete:
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgTopicFinished), nil)
	case training.StatusNoErrorsToRepeat:
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgNoErrorsToRepeat), nil)
	}

	msg := tgbotapi.NewMessage(chatID, texts.Message(user.Locale, texts.MsgTranslatePrompt, p.Text))
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true, Selective: true}
	return b.sendMessage(msg)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, user *models.User, answer string) error {
	awaiting, err := b.trainer.Awaiting(ctx, user.TelegramID)
	if err != nil {
		return err
	}
	if !awaiting {
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgNoActivePhrase), mainMenuKeyboard(user.Locale))
	}

	if err := b.sendText(chatID, texts.Message(user.Locale, texts.MsgAnalyzing), nil); err != nil {
		b.logger.Warn("failed to send progress note", "user", user.TelegramID, "err", err)
	}

	res, err := b.trainer.SubmitAnswer(ctx, user.TelegramID, answer)
	switch {
	case errors.Is(err, training.ErrNoActivePhrase), errors.Is(err, training.ErrEmptyAnswer):
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgNoActivePhrase), nil)
	case errors.Is(err, training.ErrPreconditionMissing):
		return b.sendText(chatID, texts.Message(user.Locale, texts.MsgCompleteProfile), editProfileKeyboard(user.Locale))
	case err != nil:
		return err
	}

	return b.sendText(chatID, formatResult(user.Locale, res.Evaluation), afterAnswerKeyboard(user.Locale))
}

func formatResult(locale string, ev models.Evaluation) string {
	var sb strings.Builder
	sb.WriteString(texts.Message(locale, texts.MsgResultFormat, ev.Score, ev.Explanation, ev.CorrectedTranslation))
	if len(ev.Mistakes) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(texts.Message(locale, texts.MsgMistakesHeader))
		for _, m := range ev.Mistakes {
			fmt.Fprintf(&sb, "\n• %s: %s", m.Type, m.Description)
		}
	}
	return sb.String()
}

func (b *Bot) showProfile(ctx context.Context, chatID int64, messageID int, user *models.User) error {
	text, err := b.profileText(ctx, user)
	if err != nil {
		return err
	}
	return b.showMenu(chatID, messageID, text, profileKeyboard(user.Locale))
}

func (b *Bot) profileText(ctx context.Context, user *models.User) (string, error) {
	locale := user.Locale
	notSelected := texts.Message(locale, texts.MsgNotSelected)

	topic := notSelected
	if user.TopicID != nil {
		t, err := b.repo.GetTopic(ctx, *user.TopicID)
		switch {
		case err == nil:
			topic = t.Name(locale)
		case !errors.Is(err, database.ErrNotFound):
			return "", err
		}
	}

	level := notSelected
	if user.LevelID != nil {
		l, err := b.repo.GetLevel(ctx, *user.LevelID)
		switch {
		case err == nil:
			level = l.Name(locale)
		case !errors.Is(err, database.ErrNotFound):
			return "", err
		}
	}

	direction := notSelected
	if user.Direction != nil && user.Direction.Valid() {
		direction = directionLabel(*user.Direction)
	}

	avg, err := b.repo.AverageScore(ctx, user.ID)
	if err != nil {
		return "", err
	}

	return texts.Message(locale, texts.MsgProfileFormat, texts.LanguageNames[locale], topic, level, direction, avg), nil
}

func (b *Bot) showSettings(chatID int64, messageID int, user *models.User) error {
	return b.showMenu(chatID, messageID, texts.Message(user.Locale, texts.MsgSettingsTitle), settingsKeyboard(user))
}

// handleCallback answers every button press exactly once
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		b.answerCallback(callback.ID, callbackReply{})
		return
	}

	user, err := b.repo.GetOrCreateUser(ctx, callback.From.ID)
	if err != nil {
		b.logger.Error("failed to load user", "user", callback.From.ID, "err", err)
		b.answerCallback(callback.ID, callbackReply{text: texts.Message(models.DefaultLocale, texts.MsgErrorOccurred)})
		return
	}

	action, err := DecodeAction(callback.Data)
	if err != nil {
		b.logger.Warn("undecodable callback", "user", user.TelegramID, "data", callback.Data)
		b.answerCallback(callback.ID, callbackReply{text: texts.Message(user.Locale, texts.MsgUnknownAction)})
		return
	}

	chatID, messageID := callback.Message.Chat.ID, callback.Message.MessageID

	var reply callbackReply
	switch a := action.(type) {
	case ProfileAction:
		reply, err = b.handleProfileAction(ctx, chatID, messageID, user, a)
	case SettingsAction:
		reply, err = b.handleSettingsAction(ctx, chatID, messageID, user, a)
	case TrainingAction:
		reply, err = b.handleTrainingAction(ctx, chatID, user, a)
	}

	if err != nil {
		b.logger.Error("failed to handle callback", "user", user.TelegramID, "action", callback.Data, "err", err)
		b.answerCallback(callback.ID, callbackReply{text: texts.Message(user.Locale, texts.MsgErrorOccurred), alert: true})
		return
	}
	b.answerCallback(callback.ID, reply)
}

func (b *Bot) handleProfileAction(ctx context.Context, chatID int64, messageID int, user *models.User, a ProfileAction) (callbackReply, error) {
	locale := user.Locale

	switch a.Op {
	case ProfileShow:
		return callbackReply{}, b.showProfile(ctx, chatID, messageID, user)

	case ProfileEdit:
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgEditProfile), editProfileKeyboard(locale))

	case ProfileChooseTopic:
		topics, err := b.repo.ListTopics(ctx)
		if err != nil {
			return callbackReply{}, err
		}
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseTopic), topicsKeyboard(locale, topics))

	case ProfileChooseLevel:
		levels, err := b.repo.ListLevels(ctx)
		if err != nil {
			return callbackReply{}, err
		}
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseLevel), levelsKeyboard(locale, levels))

	case ProfileChooseDir:
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseDirection), directionsKeyboard(locale))

	case ProfileSetTopic:
		if _, err := b.repo.GetTopic(ctx, a.ID); err != nil {
			return callbackReply{}, err
		}
		return b.updateProfile(ctx, chatID, messageID, user, models.UserUpdate{TopicID: &a.ID})

	case ProfileSetLevel:
		if _, err := b.repo.GetLevel(ctx, a.ID); err != nil {
			return callbackReply{}, err
		}
		return b.updateProfile(ctx, chatID, messageID, user, models.UserUpdate{LevelID: &a.ID})

	case ProfileSetDirection:
		dir, err := models.ParseDirection(a.Value)
		if err != nil {
			return callbackReply{text: texts.Message(locale, texts.MsgUnknownAction)}, nil
		}
		return b.updateProfile(ctx, chatID, messageID, user, models.UserUpdate{Direction: &dir})

	case ProfileRestartTopic:
		if user.TopicID == nil {
			return callbackReply{text: texts.Message(locale, texts.MsgCompleteProfile), alert: true}, nil
		}
		if err := b.trainer.Abandon(ctx, user.TelegramID); err != nil {
			return callbackReply{}, err
		}
		if err := b.repo.ResetProgress(ctx, user.ID, *user.TopicID); err != nil {
			return callbackReply{}, err
		}
		return callbackReply{text: texts.Message(locale, texts.MsgProgressReset), alert: true}, nil
	}

	return callbackReply{text: texts.Message(locale, texts.MsgUnknownAction)}, nil
}

// updateProfile applies a topic, level or direction change and drops the
// phrase awaiting an answer, since it belongs to the old selection
func (b *Bot) updateProfile(ctx context.Context, chatID int64, messageID int, user *models.User, upd models.UserUpdate) (callbackReply, error) {
	if err := b.trainer.Abandon(ctx, user.TelegramID); err != nil {
		return callbackReply{}, err
	}
	updated, err := b.repo.UpdateUser(ctx, user.TelegramID, upd)
	if err != nil {
		return callbackReply{}, err
	}
	if err := b.showProfile(ctx, chatID, messageID, updated); err != nil {
		return callbackReply{}, err
	}
	return callbackReply{text: texts.Message(updated.Locale, texts.MsgProfileUpdated)}, nil
}

func (b *Bot) handleSettingsAction(ctx context.Context, chatID int64, messageID int, user *models.User, a SettingsAction) (callbackReply, error) {
	locale := user.Locale

	switch a.Op {
	case SettingsShow:
		return callbackReply{}, b.showSettings(chatID, messageID, user)

	case SettingsNotificationsOn:
		on := true
		updated, err := b.repo.UpdateUser(ctx, user.TelegramID, models.UserUpdate{NotificationsEnabled: &on})
		if err != nil {
			return callbackReply{}, err
		}
		if updated.NotificationTime == nil {
			return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseTime), timesKeyboard(locale, b.config.TimeChoices))
		}
		return callbackReply{text: texts.Message(locale, texts.MsgNotificationsOn)}, b.showSettings(chatID, messageID, updated)

	case SettingsNotificationsOff:
		off := false
		updated, err := b.repo.UpdateUser(ctx, user.TelegramID, models.UserUpdate{NotificationsEnabled: &off})
		if err != nil {
			return callbackReply{}, err
		}
		return callbackReply{text: texts.Message(locale, texts.MsgNotificationsOff)}, b.showSettings(chatID, messageID, updated)

	case SettingsChooseTime:
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseTime), timesKeyboard(locale, b.config.TimeChoices))

	case SettingsSetTime:
		tod, err := models.ParseTimeOfDay(a.Value)
		if err != nil {
			return callbackReply{text: texts.Message(locale, texts.MsgTimeUsage), alert: true}, nil
		}
		on := true
		updated, err := b.repo.UpdateUser(ctx, user.TelegramID, models.UserUpdate{NotificationTime: &tod, NotificationsEnabled: &on})
		if err != nil {
			return callbackReply{}, err
		}
		return callbackReply{text: texts.Message(locale, texts.MsgTimeUpdated, tod)}, b.showSettings(chatID, messageID, updated)

	case SettingsRepeatOn:
		n, err := b.trainer.EnterRepetitionMode(ctx, user.TelegramID)
		if errors.Is(err, training.ErrPreconditionMissing) {
			return callbackReply{text: texts.Message(locale, texts.MsgCompleteProfile), alert: true}, nil
		}
		if err != nil {
			return callbackReply{}, err
		}
		if n == 0 {
			return callbackReply{text: texts.Message(locale, texts.MsgNoErrorsToRepeat), alert: true}, nil
		}
		user.RepeatingErrors = true
		return callbackReply{text: texts.Message(locale, texts.MsgRepeatErrorsOn), alert: true}, b.showSettings(chatID, messageID, user)

	case SettingsRepeatOff:
		if err := b.trainer.ExitRepetitionMode(ctx, user.TelegramID); err != nil {
			return callbackReply{}, err
		}
		user.RepeatingErrors = false
		return callbackReply{text: texts.Message(locale, texts.MsgRepeatErrorsOff)}, b.showSettings(chatID, messageID, user)

	case SettingsChooseLanguage:
		return callbackReply{}, b.showMenu(chatID, messageID, texts.Message(locale, texts.MsgChooseLanguage), languagesKeyboard(locale))

	case SettingsSetLanguage:
		if !models.IsLocale(a.Value) {
			return callbackReply{text: texts.Message(locale, texts.MsgUnknownAction)}, nil
		}
		lang := a.Value
		updated, err := b.repo.UpdateUser(ctx, user.TelegramID, models.UserUpdate{Locale: &lang})
		if err != nil {
			return callbackReply{}, err
		}
		// the reply keyboard only changes with a new message
		if err := b.sendText(chatID, texts.Message(lang, texts.MsgLanguageUpdated), mainMenuKeyboard(lang)); err != nil {
			return callbackReply{}, err
		}
		return callbackReply{}, b.showSettings(chatID, messageID, updated)
	}

	return callbackReply{text: texts.Message(locale, texts.MsgUnknownAction)}, nil
}

func (b *Bot) handleTrainingAction(ctx context.Context, chatID int64, user *models.User, a TrainingAction) (callbackReply, error) {
	switch a.Op {
	case TrainingNext:
		return callbackReply{}, b.startTraining(ctx, chatID, user)

	case TrainingChangeTopic:
		if err := b.trainer.Abandon(ctx, user.TelegramID); err != nil {
			return callbackReply{}, err
		}
		topics, err := b.repo.ListTopics(ctx)
		if err != nil {
			return callbackReply{}, err
		}
		return callbackReply{}, b.sendText(chatID, texts.Message(user.Locale, texts.MsgChooseTopic), topicsKeyboard(user.Locale, topics))
	}

	return callbackReply{text: texts.Message(user.Locale, texts.MsgUnknownAction)}, nil
}
