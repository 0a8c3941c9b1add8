// Package texts holds every user-facing string in each supported locale.
package texts

import (
	"fmt"

	"github.com/example/phrasebot/pkg/models"
)

type localized map[string]string

// Button keys
const (
	BtnTraining          = "training"
	BtnProfile           = "profile"
	BtnSettings          = "settings"
	BtnNextPhrase        = "next_phrase"
	BtnChangeTopic       = "change_topic"
	BtnRepeatErrors      = "repeat_errors"
	BtnRepeatErrorsOff   = "repeat_errors_off"
	BtnNotificationsOn   = "notifications_on"
	BtnNotificationsOff  = "notifications_off"
	BtnNotificationTime  = "notification_time"
	BtnEditProfile       = "edit_profile"
	BtnEditTopic         = "edit_topic"
	BtnEditLevel         = "edit_level"
	BtnEditDirection     = "edit_direction"
	BtnRestartTopic      = "restart_topic"
	BtnEditLanguage      = "edit_language"
	BtnBackToProfile     = "back_to_profile"
	BtnBackToEditProfile = "back_to_edit_profile"
	BtnBackToSettings    = "back_to_settings"
)

var buttons = map[string]localized{
	BtnTraining:          {"ru": "Тренировка", "en": "Training", "uz": "Mashgʻulot"},
	BtnProfile:           {"ru": "Профиль", "en": "Profile", "uz": "Profil"},
	BtnSettings:          {"ru": "Настройки", "en": "Settings", "uz": "Sozlamalar"},
	BtnNextPhrase:        {"ru": "Следующая фраза", "en": "Next phrase", "uz": "Keyingi ibora"},
	BtnChangeTopic:       {"ru": "Сменить тему", "en": "Change topic", "uz": "Mavzuni oʻzgartirish"},
	BtnRepeatErrors:      {"ru": "Повторение ошибок", "en": "Repeat mistakes", "uz": "Xatolarni takrorlash"},
	BtnRepeatErrorsOff:   {"ru": "✅ Повторение ошибок: Вкл", "en": "✅ Mistake Repetition: On", "uz": "✅ Xatolarni takrorlash: Yoqilgan"},
	BtnNotificationsOn:   {"ru": "🔔 Уведомления: Вкл", "en": "🔔 Notifications: On", "uz": "🔔 Bildirishnomalar: Yoqilgan"},
	BtnNotificationsOff:  {"ru": "🔕 Уведомления: Выкл", "en": "🔕 Notifications: Off", "uz": "🔕 Bildirishnomalar: Oʻchirilgan"},
	BtnNotificationTime:  {"ru": "⏰ Время уведомлений", "en": "⏰ Reminder time", "uz": "⏰ Eslatma vaqti"},
	BtnEditProfile:       {"ru": "✏️ Изменить профиль", "en": "✏️ Edit Profile", "uz": "✏️ Profilni tahrirlash"},
	BtnEditTopic:         {"ru": "📚 Сменить тему", "en": "📚 Change Topic", "uz": "📚 Mavzuni oʻzgartirish"},
	BtnEditLevel:         {"ru": "⭐ Сменить уровень", "en": "⭐ Change Level", "uz": "⭐ Darajani oʻzgartirish"},
	BtnEditDirection:     {"ru": "🔄 Сменить направление", "en": "🔄 Change Direction", "uz": "🔄 Yoʻnalishni oʻzgartirish"},
	BtnRestartTopic:      {"ru": "⏮ Начать тему заново", "en": "⏮ Restart Topic", "uz": "⏮ Mavzuni qaytadan boshlash"},
	BtnEditLanguage:      {"ru": "🌐 Сменить язык", "en": "🌐 Change Language", "uz": "🌐 Tilni oʻzgartirish"},
	BtnBackToProfile:     {"ru": "⬅️ Назад к профилю", "en": "⬅️ Back to Profile", "uz": "⬅️ Profilga qaytish"},
	BtnBackToEditProfile: {"ru": "⬅️ Назад", "en": "⬅️ Back", "uz": "⬅️ Orqaga"},
	BtnBackToSettings:    {"ru": "⬅️ Назад к настройкам", "en": "⬅️ Back to Settings", "uz": "⬅️ Sozlamalarga qaytish"},
}

// Message keys
const (
	MsgWelcome            = "welcome"
	MsgProfileFormat      = "profile_format"
	MsgNotSelected        = "not_selected"
	MsgTopicFinished      = "topic_finished"
	MsgErrorOccurred      = "error_occurred"
	MsgCompleteProfile    = "complete_profile"
	MsgChooseTopic        = "choose_topic"
	MsgChooseLevel        = "choose_level"
	MsgChooseDirection    = "choose_direction"
	MsgChooseLanguage     = "choose_language"
	MsgChooseTime         = "choose_time"
	MsgEditProfile        = "edit_profile"
	MsgProfileUpdated     = "profile_updated"
	MsgProgressReset      = "progress_reset"
	MsgLanguageUpdated    = "language_updated"
	MsgSettingsTitle      = "settings_title"
	MsgNotificationsOn    = "notifications_on_msg"
	MsgNotificationsOff   = "notifications_off_msg"
	MsgTimeUpdated        = "time_updated"
	MsgTimeUsage          = "time_usage"
	MsgRepeatErrorsOn     = "repeat_errors_on"
	MsgRepeatErrorsOff    = "repeat_errors_off_msg"
	MsgNoErrorsToRepeat   = "no_errors_to_repeat"
	MsgTranslatePrompt    = "translate_prompt"
	MsgAnalyzing          = "analyzing"
	MsgResultFormat       = "result_format"
	MsgMistakesHeader     = "mistakes_header"
	MsgScoringUnavailable = "scoring_unavailable"
	MsgNoActivePhrase     = "no_active_phrase"
	MsgNotification       = "notification_text"
	MsgUnknownAction      = "unknown_action"
)

var messages = map[string]localized{
	MsgWelcome: {
		"ru": "Добро пожаловать! Выберите опцию в меню.",
		"en": "Welcome! Please select an option from the menu.",
		"uz": "Xush kelibsiz! Menudan variant tanlang.",
	},
	MsgProfileFormat: {
		"ru": "👤 Ваш профиль\n\n🌐 Язык: %s\n📚 Тема: %s\n⭐ Уровень: %s\n🔄 Направление: %s\n📊 Средний балл: %.1f",
		"en": "👤 Your Profile\n\n🌐 Language: %s\n📚 Topic: %s\n⭐ Level: %s\n🔄 Direction: %s\n📊 Average score: %.1f",
		"uz": "👤 Sizning profilingiz\n\n🌐 Til: %s\n📚 Mavzu: %s\n⭐ Daraja: %s\n🔄 Yoʻnalish: %s\n📊 Oʻrtacha ball: %.1f",
	},
	MsgNotSelected: {
		"ru": "Не выбрано",
		"en": "Not selected",
		"uz": "Tanlanmagan",
	},
	MsgTopicFinished: {
		"ru": "🎉 Поздравляем! Вы завершили все фразы в этой теме. Вы можете сменить тему в профиле или начать повторение ошибок.",
		"en": "🎉 Congratulations! You have completed all phrases in this topic. You can change the topic in your profile or start repeating mistakes.",
		"uz": "🎉 Tabriklaymiz! Siz bu mavzudagi barcha iboralarni tugatdingiz. Profilingizda mavzuni oʻzgartirishingiz yoki xatolarni takrorlashni boshlashingiz mumkin.",
	},
	MsgErrorOccurred: {
		"ru": "Произошла ошибка. Пожалуйста, попробуйте позже.",
		"en": "An error occurred. Please try again later.",
		"uz": "Xatolik yuz berdi. Iltimos, keyinroq qayta urinib koʻring.",
	},
	MsgCompleteProfile: {
		"ru": "Пожалуйста, сначала настройте тему, уровень и направление в профиле.",
		"en": "Please set your topic, level and direction in the profile first.",
		"uz": "Iltimos, avval profilda mavzu, daraja va yoʻnalishni sozlang.",
	},
	MsgChooseTopic: {
		"ru": "Пожалуйста, выберите новую тему:",
		"en": "Please select a new topic:",
		"uz": "Iltimos, yangi mavzuni tanlang:",
	},
	MsgChooseLevel: {
		"ru": "Пожалуйста, выберите новый уровень:",
		"en": "Please select a new level:",
		"uz": "Iltimos, yangi darajani tanlang:",
	},
	MsgChooseDirection: {
		"ru": "Пожалуйста, выберите направление перевода:",
		"en": "Please select the translation direction:",
		"uz": "Iltimos, tarjima yoʻnalishini tanlang:",
	},
	MsgChooseLanguage: {
		"ru": "Пожалуйста, выберите язык интерфейса:",
		"en": "Please select the interface language:",
		"uz": "Iltimos, interfeys tilini tanlang:",
	},
	MsgChooseTime: {
		"ru": "Выберите время ежедневного напоминания (UTC) или отправьте /time ЧЧ:ММ",
		"en": "Choose the daily reminder time (UTC) or send /time HH:MM",
		"uz": "Kundalik eslatma vaqtini tanlang (UTC) yoki /time SS:DD yuboring",
	},
	MsgEditProfile: {
		"ru": "Что вы хотите изменить?",
		"en": "What would you like to change?",
		"uz": "Nimani oʻzgartirmoqchisiz?",
	},
	MsgProfileUpdated: {
		"ru": "✅ Профиль обновлен!",
		"en": "✅ Profile updated!",
		"uz": "✅ Profil yangilandi!",
	},
	MsgProgressReset: {
		"ru": "⏮ Прогресс по теме сброшен.",
		"en": "⏮ Topic progress has been reset.",
		"uz": "⏮ Mavzu boʻyicha natijalar qayta tiklandi.",
	},
	MsgLanguageUpdated: {
		"ru": "✅ Язык обновлен!",
		"en": "✅ Language updated!",
		"uz": "✅ Til yangilandi!",
	},
	MsgSettingsTitle: {
		"ru": "⚙️ Настройки",
		"en": "⚙️ Settings",
		"uz": "⚙️ Sozlamalar",
	},
	MsgNotificationsOn: {
		"ru": "✅ Уведомления включены.",
		"en": "✅ Notifications enabled.",
		"uz": "✅ Bildirishnomalar yoqildi.",
	},
	MsgNotificationsOff: {
		"ru": "🔕 Уведомления выключены.",
		"en": "🔕 Notifications disabled.",
		"uz": "🔕 Bildirishnomalar oʻchirildi.",
	},
	MsgTimeUpdated: {
		"ru": "⏰ Напоминание будет приходить в %s (UTC).",
		"en": "⏰ You will be reminded at %s (UTC).",
		"uz": "⏰ Eslatma %s da (UTC) keladi.",
	},
	MsgTimeUsage: {
		"ru": "Используйте формат /time ЧЧ:ММ, например /time 08:30",
		"en": "Use the format /time HH:MM, e.g. /time 08:30",
		"uz": "/time SS:DD formatidan foydalaning, masalan /time 08:30",
	},
	MsgRepeatErrorsOn: {
		"ru": "✅ Режим повторения ошибок включен. Нажмите \"Тренировка\", чтобы начать.",
		"en": "✅ Mistake repetition mode is ON. Press \"Training\" to start.",
		"uz": "✅ Xatolarni takrorlash rejimi yoqildi. Boshlash uchun \"Mashgʻulot\" tugmasini bosing.",
	},
	MsgRepeatErrorsOff: {
		"ru": "Режим повторения ошибок выключен.",
		"en": "Mistake repetition mode is OFF.",
		"uz": "Xatolarni takrorlash rejimi oʻchirildi.",
	},
	MsgNoErrorsToRepeat: {
		"ru": "🎉 У вас нет ошибок для повторения в этой теме! Так держать!",
		"en": "🎉 You have no mistakes to repeat in this topic! Keep it up!",
		"uz": "🎉 Bu mavzuda takrorlash uchun xatolaringiz yoʻq! Barakalla!",
	},
	MsgTranslatePrompt: {
		"ru": "Переведите фразу: %s",
		"en": "Translate the phrase: %s",
		"uz": "Iborani tarjima qiling: %s",
	},
	MsgAnalyzing: {
		"ru": "🧠 Анализирую ваш перевод...",
		"en": "🧠 Analyzing your translation...",
		"uz": "🧠 Tarjimangiz tahlil qilinmoqda...",
	},
	MsgResultFormat: {
		"ru": "📝 Результат проверки\n\n⭐ Ваша оценка: %d/100\n\n💬 Комментарий: %s\n\n✅ Правильный вариант: %s",
		"en": "📝 Result\n\n⭐ Your score: %d/100\n\n💬 Comment: %s\n\n✅ Correct version: %s",
		"uz": "📝 Natija\n\n⭐ Sizning bahoingiz: %d/100\n\n💬 Izoh: %s\n\n✅ Toʻgʻri variant: %s",
	},
	MsgMistakesHeader: {
		"ru": "❗ Ошибки:",
		"en": "❗ Mistakes:",
		"uz": "❗ Xatolar:",
	},
	MsgScoringUnavailable: {
		"ru": "Произошла ошибка при анализе вашего ответа. Пожалуйста, попробуйте позже.",
		"en": "Something went wrong while analyzing your answer. Please try again later.",
		"uz": "Javobingizni tahlil qilishda xatolik yuz berdi. Iltimos, keyinroq urinib koʻring.",
	},
	MsgNoActivePhrase: {
		"ru": "Нажмите \"Тренировка\", чтобы получить фразу для перевода.",
		"en": "Press \"Training\" to get a phrase to translate.",
		"uz": "Tarjima uchun ibora olish uchun \"Mashgʻulot\" tugmasini bosing.",
	},
	MsgNotification: {
		"ru": "👋 Пора потренироваться! Нажмите \"Тренировка\", чтобы продолжить.",
		"en": "👋 Time to practice! Press \"Training\" to continue.",
		"uz": "👋 Mashq qilish vaqti keldi! Davom etish uchun \"Mashgʻulot\" tugmasini bosing.",
	},
	MsgUnknownAction: {
		"ru": "Неизвестная команда.",
		"en": "Unknown command.",
		"uz": "Nomaʼlum buyruq.",
	},
}

// LanguageNames are the native names of each interface locale
var LanguageNames = localized{
	models.LocaleRU: "Русский",
	models.LocaleEN: "English",
	models.LocaleUZ: "Oʻzbekcha",
}

func lookup(table map[string]localized, key, locale string) string {
	entry, ok := table[key]
	if !ok {
		return key
	}
	if s, ok := entry[locale]; ok {
		return s
	}
	return entry[models.DefaultLocale]
}

// Button returns a button label
func Button(locale, key string) string {
	return lookup(buttons, key, locale)
}

// Message returns a message, formatting it with args when given
func Message(locale, key string, args ...interface{}) string {
	s := lookup(messages, key, locale)
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}

// MenuKey maps a main-menu label in any locale back to its button key
func MenuKey(label string) (string, bool) {
	for _, key := range []string{BtnTraining, BtnProfile, BtnSettings} {
		for _, l := range buttons[key] {
			if l == label {
				return key, true
			}
		}
	}
	return "", false
}
