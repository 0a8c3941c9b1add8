package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/phrasebot/internal/scheduler"
	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/internal/training"
	"github.com/example/phrasebot/pkg/models"
)

// fakeAPI records everything the bot sends
type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	updates  chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if msg, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return msg
		}
	}
	t.Fatal("no message sent")
	return tgbotapi.MessageConfig{}
}

func (f *fakeAPI) callbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type mockRepo struct {
	getOrCreateUserFunc func(ctx context.Context, telegramID int64) (*models.User, error)
	updateUserFunc      func(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error)
	listTopicsFunc      func(ctx context.Context) ([]models.Topic, error)
	getTopicFunc        func(ctx context.Context, id int64) (*models.Topic, error)
	listLevelsFunc      func(ctx context.Context) ([]models.Level, error)
	getLevelFunc        func(ctx context.Context, id int64) (*models.Level, error)
	averageScoreFunc    func(ctx context.Context, userID int64) (float64, error)
	resetProgressFunc   func(ctx context.Context, userID, topicID int64) error
}

var errUnexpectedCall = errors.New("unexpected call")

func (m *mockRepo) GetOrCreateUser(ctx context.Context, telegramID int64) (*models.User, error) {
	if m.getOrCreateUserFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getOrCreateUserFunc(ctx, telegramID)
}

func (m *mockRepo) UpdateUser(ctx context.Context, telegramID int64, upd models.UserUpdate) (*models.User, error) {
	if m.updateUserFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.updateUserFunc(ctx, telegramID, upd)
}

func (m *mockRepo) ListTopics(ctx context.Context) ([]models.Topic, error) {
	if m.listTopicsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.listTopicsFunc(ctx)
}

func (m *mockRepo) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	if m.getTopicFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getTopicFunc(ctx, id)
}

func (m *mockRepo) ListLevels(ctx context.Context) ([]models.Level, error) {
	if m.listLevelsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.listLevelsFunc(ctx)
}

func (m *mockRepo) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	if m.getLevelFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getLevelFunc(ctx, id)
}

func (m *mockRepo) AverageScore(ctx context.Context, userID int64) (float64, error) {
	if m.averageScoreFunc == nil {
		return 0, errUnexpectedCall
	}
	return m.averageScoreFunc(ctx, userID)
}

func (m *mockRepo) ResetProgress(ctx context.Context, userID, topicID int64) error {
	if m.resetProgressFunc == nil {
		return errUnexpectedCall
	}
	return m.resetProgressFunc(ctx, userID, topicID)
}

type mockTrainer struct {
	startSessionFunc        func(ctx context.Context, telegramID int64) (*training.Presentation, error)
	submitAnswerFunc        func(ctx context.Context, telegramID int64, answer string) (*training.Result, error)
	enterRepetitionModeFunc func(ctx context.Context, telegramID int64) (int, error)
	exitRepetitionModeFunc  func(ctx context.Context, telegramID int64) error
	awaitingFunc            func(ctx context.Context, telegramID int64) (bool, error)
	abandoned               int
}

func (m *mockTrainer) StartSession(ctx context.Context, telegramID int64) (*training.Presentation, error) {
	if m.startSessionFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.startSessionFunc(ctx, telegramID)
}

func (m *mockTrainer) SubmitAnswer(ctx context.Context, telegramID int64, answer string) (*training.Result, error) {
	if m.submitAnswerFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.submitAnswerFunc(ctx, telegramID, answer)
}

func (m *mockTrainer) EnterRepetitionMode(ctx context.Context, telegramID int64) (int, error) {
	if m.enterRepetitionModeFunc == nil {
		return 0, errUnexpectedCall
	}
	return m.enterRepetitionModeFunc(ctx, telegramID)
}

func (m *mockTrainer) ExitRepetitionMode(ctx context.Context, telegramID int64) error {
	if m.exitRepetitionModeFunc == nil {
		return errUnexpectedCall
	}
	return m.exitRepetitionModeFunc(ctx, telegramID)
}

func (m *mockTrainer) Awaiting(ctx context.Context, telegramID int64) (bool, error) {
	if m.awaitingFunc == nil {
		return false, errUnexpectedCall
	}
	return m.awaitingFunc(ctx, telegramID)
}

func (m *mockTrainer) Abandon(context.Context, int64) error {
	m.abandoned++
	return nil
}

const testTelegramID = 1001

func ptr[T any](v T) *T { return &v }

func readyUser() *models.User {
	return &models.User{
		ID:         7,
		TelegramID: testTelegramID,
		Locale:     models.LocaleEN,
		TopicID:    ptr(int64(1)),
		LevelID:    ptr(int64(2)),
		Direction:  ptr(models.Direction("ru-en")),
	}
}

func setupBot(repo *mockRepo, trainer *mockTrainer) (*Bot, *fakeAPI) {
	if repo.getOrCreateUserFunc == nil {
		repo.getOrCreateUserFunc = func(context.Context, int64) (*models.User, error) {
			return readyUser(), nil
		}
	}
	api := &fakeAPI{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newBot(api, repo, trainer, DefaultConfig(), logger), api
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: testTelegramID},
		Chat:      &tgbotapi.Chat{ID: testTelegramID},
		Text:      text,
	}
}

func commandMessage(command string) *tgbotapi.Message {
	msg := textMessage(command)
	name := strings.SplitN(command, " ", 2)[0]
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}}
	return msg
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: testTelegramID},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: testTelegramID}},
		Data:    data,
	}
}

func TestSendNotificationClassifiesErrors(t *testing.T) {
	tests := []struct {
		name      string
		sendErr   error
		permanent bool
	}{
		{"delivered", nil, false},
		{"blocked", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, true},
		{"rate limited", &tgbotapi.Error{Code: 429, Message: "Too Many Requests"}, false},
		{"network", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api := setupBot(&mockRepo{}, &mockTrainer{})
			api.sendErr = tt.sendErr

			err := b.SendNotification(context.Background(), testTelegramID, "time to practice")
			if tt.sendErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.permanent, errors.Is(err, scheduler.ErrPermanentDelivery))
		})
	}
}

func TestStartCommandShowsMainMenu(t *testing.T) {
	trainer := &mockTrainer{}
	b, api := setupBot(&mockRepo{}, trainer)

	b.handleMessage(context.Background(), commandMessage("/start"))

	msg := api.lastMessage(t)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgWelcome), msg.Text)
	assert.IsType(t, tgbotapi.ReplyKeyboardMarkup{}, msg.ReplyMarkup)
	assert.Equal(t, 1, trainer.abandoned)
}

func TestTimeCommand(t *testing.T) {
	t.Run("valid time enables reminders", func(t *testing.T) {
		var got models.UserUpdate
		repo := &mockRepo{
			updateUserFunc: func(_ context.Context, _ int64, upd models.UserUpdate) (*models.User, error) {
				got = upd
				return readyUser(), nil
			},
		}
		b, api := setupBot(repo, &mockTrainer{})

		b.handleMessage(context.Background(), commandMessage("/time 07:30"))

		require.NotNil(t, got.NotificationTime)
		assert.Equal(t, "07:30", *got.NotificationTime)
		require.NotNil(t, got.NotificationsEnabled)
		assert.True(t, *got.NotificationsEnabled)
		assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgTimeUpdated, "07:30"), api.lastMessage(t).Text)
	})

	t.Run("invalid time shows usage", func(t *testing.T) {
		b, api := setupBot(&mockRepo{}, &mockTrainer{})

		b.handleMessage(context.Background(), commandMessage("/time 25:99"))

		assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgTimeUsage), api.lastMessage(t).Text)
	})
}

func TestTrainingButtonPresentsPhrase(t *testing.T) {
	trainer := &mockTrainer{
		startSessionFunc: func(context.Context, int64) (*training.Presentation, error) {
			return &training.Presentation{Status: training.StatusPhrase, Text: "Привет"}, nil
		},
	}
	b, api := setupBot(&mockRepo{}, trainer)

	b.handleMessage(context.Background(), textMessage(texts.Button(models.LocaleEN, texts.BtnTraining)))

	msg := api.lastMessage(t)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgTranslatePrompt, "Привет"), msg.Text)
}

func TestStartTrainingOutcomes(t *testing.T) {
	tests := []struct {
		name string
		pres *training.Presentation
		err  error
		want string
	}{
		{"topic complete", &training.Presentation{Status: training.StatusTopicComplete}, nil, texts.MsgTopicFinished},
		{"nothing to repeat", &training.Presentation{Status: training.StatusNoErrorsToRepeat}, nil, texts.MsgNoErrorsToRepeat},
		{"profile incomplete", nil, training.ErrPreconditionMissing, texts.MsgCompleteProfile},
		{"repository failure", nil, errors.New("db down"), texts.MsgErrorOccurred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := &mockTrainer{
				startSessionFunc: func(context.Context, int64) (*training.Presentation, error) {
					return tt.pres, tt.err
				},
			}
			b, api := setupBot(&mockRepo{}, trainer)

			b.handleMessage(context.Background(), commandMessage("/training"))

			assert.Equal(t, texts.Message(models.LocaleEN, tt.want), api.lastMessage(t).Text)
		})
	}
}

func TestAnswerWithoutActivePhrase(t *testing.T) {
	trainer := &mockTrainer{
		awaitingFunc: func(context.Context, int64) (bool, error) { return false, nil },
	}
	b, api := setupBot(&mockRepo{}, trainer)

	b.handleMessage(context.Background(), textMessage("Hello"))

	assert.Equal(t, []string{texts.Message(models.LocaleEN, texts.MsgNoActivePhrase)}, api.texts())
}

func TestAnswerIsScored(t *testing.T) {
	var submitted string
	trainer := &mockTrainer{
		awaitingFunc: func(context.Context, int64) (bool, error) { return true, nil },
		submitAnswerFunc: func(_ context.Context, _ int64, answer string) (*training.Result, error) {
			submitted = answer
			return &training.Result{Evaluation: models.Evaluation{
				Score:                80,
				Explanation:          "Almost",
				CorrectedTranslation: "Hello",
				Mistakes:             []models.Mistake{{Type: "spelling", Description: "Helo"}},
			}}, nil
		},
	}
	b, api := setupBot(&mockRepo{}, trainer)

	b.handleMessage(context.Background(), textMessage("Helo"))

	assert.Equal(t, "Helo", submitted)
	sent := api.texts()
	require.Len(t, sent, 2)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgAnalyzing), sent[0])

	result := api.lastMessage(t)
	assert.True(t, strings.HasPrefix(result.Text, texts.Message(models.LocaleEN, texts.MsgResultFormat, 80, "Almost", "Hello")))
	assert.Contains(t, result.Text, "spelling: Helo")
	assert.Equal(t, afterAnswerKeyboard(models.LocaleEN), result.ReplyMarkup)
}

func TestAnswerRaceLost(t *testing.T) {
	trainer := &mockTrainer{
		awaitingFunc: func(context.Context, int64) (bool, error) { return true, nil },
		submitAnswerFunc: func(context.Context, int64, string) (*training.Result, error) {
			return nil, training.ErrNoActivePhrase
		},
	}
	b, api := setupBot(&mockRepo{}, trainer)

	b.handleMessage(context.Background(), textMessage("Hello"))

	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgNoActivePhrase), api.lastMessage(t).Text)
}

func TestProfileShowsNotSelected(t *testing.T) {
	repo := &mockRepo{
		getOrCreateUserFunc: func(context.Context, int64) (*models.User, error) {
			return &models.User{ID: 7, TelegramID: testTelegramID, Locale: models.LocaleEN}, nil
		},
		averageScoreFunc: func(_ context.Context, userID int64) (float64, error) {
			assert.Equal(t, int64(7), userID)
			return 0, nil
		},
	}
	b, api := setupBot(repo, &mockTrainer{})

	b.handleMessage(context.Background(), commandMessage("/profile"))

	ns := texts.Message(models.LocaleEN, texts.MsgNotSelected)
	want := texts.Message(models.LocaleEN, texts.MsgProfileFormat, texts.LanguageNames[models.LocaleEN], ns, ns, ns, 0.0)
	assert.Equal(t, want, api.lastMessage(t).Text)
}

func TestCallbackUnknownData(t *testing.T) {
	b, api := setupBot(&mockRepo{}, &mockTrainer{})

	b.handleCallback(context.Background(), callback("zz:top"))

	answers := api.callbackAnswers()
	require.Len(t, answers, 1)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgUnknownAction), answers[0].Text)
	assert.Empty(t, api.texts())
}

func TestCallbackSetTopic(t *testing.T) {
	var got models.UserUpdate
	repo := &mockRepo{
		getTopicFunc: func(_ context.Context, id int64) (*models.Topic, error) {
			return &models.Topic{ID: id, LocalizedName: models.LocalizedName{NameRU: "Еда", NameEN: "Food", NameUZ: "Ovqat"}}, nil
		},
		getLevelFunc: func(_ context.Context, id int64) (*models.Level, error) {
			return &models.Level{ID: id, LocalizedName: models.LocalizedName{NameRU: "Начальный", NameEN: "Beginner", NameUZ: "Boshlang'ich"}}, nil
		},
		updateUserFunc: func(_ context.Context, _ int64, upd models.UserUpdate) (*models.User, error) {
			got = upd
			u := readyUser()
			u.TopicID = upd.TopicID
			return u, nil
		},
		averageScoreFunc: func(context.Context, int64) (float64, error) { return 72.5, nil },
	}
	trainer := &mockTrainer{}
	b, api := setupBot(repo, trainer)

	b.handleCallback(context.Background(), callback(ProfileAction{Op: ProfileSetTopic, ID: 4}.Encode()))

	require.NotNil(t, got.TopicID)
	assert.Equal(t, int64(4), *got.TopicID)
	assert.Equal(t, 1, trainer.abandoned)

	answers := api.callbackAnswers()
	require.Len(t, answers, 1)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgProfileUpdated), answers[0].Text)
}

func TestCallbackRepeatOn(t *testing.T) {
	tests := []struct {
		name  string
		count int
		err   error
		want  string
	}{
		{"nothing to repeat", 0, nil, texts.MsgNoErrorsToRepeat},
		{"profile incomplete", 0, training.ErrPreconditionMissing, texts.MsgCompleteProfile},
		{"enabled", 3, nil, texts.MsgRepeatErrorsOn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := &mockTrainer{
				enterRepetitionModeFunc: func(context.Context, int64) (int, error) { return tt.count, tt.err },
			}
			b, api := setupBot(&mockRepo{}, trainer)

			b.handleCallback(context.Background(), callback(SettingsAction{Op: SettingsRepeatOn}.Encode()))

			answers := api.callbackAnswers()
			require.Len(t, answers, 1)
			assert.Equal(t, texts.Message(models.LocaleEN, tt.want), answers[0].Text)
			assert.True(t, answers[0].ShowAlert)
		})
	}
}

func TestCallbackNotificationsOnWithoutTime(t *testing.T) {
	repo := &mockRepo{
		updateUserFunc: func(_ context.Context, _ int64, upd models.UserUpdate) (*models.User, error) {
			u := readyUser()
			u.NotificationsEnabled = *upd.NotificationsEnabled
			return u, nil
		},
	}
	b, api := setupBot(repo, &mockTrainer{})

	b.handleCallback(context.Background(), callback(SettingsAction{Op: SettingsNotificationsOn}.Encode()))

	api.mu.Lock()
	defer api.mu.Unlock()
	var edited bool
	for _, c := range api.requests {
		if edit, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			edited = true
			assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgChooseTime), edit.Text)
		}
	}
	assert.True(t, edited)
}

func TestCallbackFailureAnswersOnce(t *testing.T) {
	repo := &mockRepo{
		resetProgressFunc: func(context.Context, int64, int64) error { return errors.New("db down") },
	}
	b, api := setupBot(repo, &mockTrainer{})

	b.handleCallback(context.Background(), callback(ProfileAction{Op: ProfileRestartTopic}.Encode()))

	answers := api.callbackAnswers()
	require.Len(t, answers, 1)
	assert.Equal(t, texts.Message(models.LocaleEN, texts.MsgErrorOccurred), answers[0].Text)
}

func TestRunStopsOnCancel(t *testing.T) {
	trainer := &mockTrainer{}
	b, api := setupBot(&mockRepo{}, trainer)
	api.updates = make(chan tgbotapi.Update, 1)
	api.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage("/start")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(api.texts()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
