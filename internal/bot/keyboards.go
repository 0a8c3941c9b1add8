package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/phrasebot/internal/texts"
	"github.com/example/phrasebot/pkg/models"
)

// MenuButton represents a button in an inline menu
type MenuButton struct {
	Text   string
	Action Action
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.Action.Encode()))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// mainMenuKeyboard is the persistent reply keyboard with the three sections
func mainMenuKeyboard(locale string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.Button(locale, texts.BtnTraining))),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(texts.Button(locale, texts.BtnProfile)),
			tgbotapi.NewKeyboardButton(texts.Button(locale, texts.BtnSettings)),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func profileKeyboard(locale string) tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{
		{{Text: texts.Button(locale, texts.BtnEditProfile), Action: ProfileAction{Op: ProfileEdit}}},
	})
}

func editProfileKeyboard(locale string) tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{
		{{Text: texts.Button(locale, texts.BtnEditTopic), Action: ProfileAction{Op: ProfileChooseTopic}}},
		{{Text: texts.Button(locale, texts.BtnEditLevel), Action: ProfileAction{Op: ProfileChooseLevel}}},
		{{Text: texts.Button(locale, texts.BtnEditDirection), Action: ProfileAction{Op: ProfileChooseDir}}},
		{{Text: texts.Button(locale, texts.BtnRestartTopic), Action: ProfileAction{Op: ProfileRestartTopic}}},
		{{Text: texts.Button(locale, texts.BtnBackToProfile), Action: ProfileAction{Op: ProfileShow}}},
	})
}

func topicsKeyboard(locale string, topics []models.Topic) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]MenuButton, 0, len(topics)+1)
	for _, t := range topics {
		rows = append(rows, []MenuButton{{Text: t.Name(locale), Action: ProfileAction{Op: ProfileSetTopic, ID: t.ID}}})
	}
	rows = append(rows, []MenuButton{{Text: texts.Button(locale, texts.BtnBackToEditProfile), Action: ProfileAction{Op: ProfileEdit}}})
	return createKeyboard(rows)
}

func levelsKeyboard(locale string, levels []models.Level) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]MenuButton, 0, len(levels)+1)
	for _, l := range levels {
		rows = append(rows, []MenuButton{{Text: l.Name(locale), Action: ProfileAction{Op: ProfileSetLevel, ID: l.ID}}})
	}
	rows = append(rows, []MenuButton{{Text: texts.Button(locale, texts.BtnBackToEditProfile), Action: ProfileAction{Op: ProfileEdit}}})
	return createKeyboard(rows)
}

func directionsKeyboard(locale string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]MenuButton
	for i := 0; i < len(models.Directions); i += 2 {
		row := []MenuButton{directionButton(models.Directions[i])}
		if i+1 < len(models.Directions) {
			row = append(row, directionButton(models.Directions[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []MenuButton{{Text: texts.Button(locale, texts.BtnBackToEditProfile), Action: ProfileAction{Op: ProfileEdit}}})
	return createKeyboard(rows)
}

func directionButton(d models.Direction) MenuButton {
	return MenuButton{
		Text:   directionLabel(d),
		Action: ProfileAction{Op: ProfileSetDirection, Value: string(d)},
	}
}

var flags = map[string]string{
	models.LocaleRU: "🇷🇺",
	models.LocaleEN: "🇬🇧",
	models.LocaleUZ: "🇺🇿",
}

func directionLabel(d models.Direction) string {
	return flags[d.Source()] + " → " + flags[d.Target()]
}

func settingsKeyboard(user *models.User) tgbotapi.InlineKeyboardMarkup {
	locale := user.Locale

	notify := MenuButton{Text: texts.Button(locale, texts.BtnNotificationsOff), Action: SettingsAction{Op: SettingsNotificationsOn}}
	if user.NotificationsEnabled {
		notify = MenuButton{Text: texts.Button(locale, texts.BtnNotificationsOn), Action: SettingsAction{Op: SettingsNotificationsOff}}
	}

	repeat := MenuButton{Text: texts.Button(locale, texts.BtnRepeatErrors), Action: SettingsAction{Op: SettingsRepeatOn}}
	if user.RepeatingErrors {
		repeat = MenuButton{Text: texts.Button(locale, texts.BtnRepeatErrorsOff), Action: SettingsAction{Op: SettingsRepeatOff}}
	}

	timeLabel := texts.Button(locale, texts.BtnNotificationTime)
	if user.NotificationTime != nil {
		timeLabel += " " + *user.NotificationTime
	}

	return createKeyboard([][]MenuButton{
		{notify},
		{{Text: timeLabel, Action: SettingsAction{Op: SettingsChooseTime}}},
		{repeat},
		{{Text: texts.Button(locale, texts.BtnEditLanguage), Action: SettingsAction{Op: SettingsChooseLanguage}}},
	})
}

func timesKeyboard(locale string, choices []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]MenuButton
	for i := 0; i < len(choices); i += 3 {
		end := i + 3
		if end > len(choices) {
			end = len(choices)
		}
		var row []MenuButton
		for _, c := range choices[i:end] {
			row = append(row, MenuButton{Text: c, Action: SettingsAction{Op: SettingsSetTime, Value: c}})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []MenuButton{{Text: texts.Button(locale, texts.BtnBackToSettings), Action: SettingsAction{Op: SettingsShow}}})
	return createKeyboard(rows)
}

func languagesKeyboard(locale string) tgbotapi.InlineKeyboardMarkup {
	var row []MenuButton
	for _, l := range models.Locales {
		row = append(row, MenuButton{Text: flags[l] + " " + texts.LanguageNames[l], Action: SettingsAction{Op: SettingsSetLanguage, Value: l}})
	}
	return createKeyboard([][]MenuButton{
		row,
		{{Text: texts.Button(locale, texts.BtnBackToSettings), Action: SettingsAction{Op: SettingsShow}}},
	})
}

func afterAnswerKeyboard(locale string) tgbotapi.InlineKeyboardMarkup {
	return createKeyboard([][]MenuButton{{
		{Text: texts.Button(locale, texts.BtnNextPhrase), Action: TrainingAction{Op: TrainingNext}},
		{Text: texts.Button(locale, texts.BtnChangeTopic), Action: TrainingAction{Op: TrainingChangeTopic}},
	}})
}
