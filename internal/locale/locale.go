// Package locale maps prompt keys to display text for the supported
// languages. The flow engine only ever emits keys; the transport layer
// renders them just before sending, so adding a language touches this
// package alone.
package locale

import (
	"fmt"
	"strings"

	"github.com/ermekov/club-table-reservation/internal/model"
)

// Key names a guest-facing prompt. Keys are opaque to the engine and
// resolved here at send time.
type Key string

const (
	KeyChooseLanguage  Key = "choose_language"
	KeyAskName         Key = "ask_name"
	KeyGreeting        Key = "greeting"          // args: display name
	KeyUnknownCommand  Key = "unknown_command"
	KeyMenuItems       Key = "menu_items"
	KeyAskDate         Key = "ask_date"
	KeyBadDate         Key = "bad_date"
	KeyAskTime         Key = "ask_time"
	KeyBadTime         Key = "bad_time"          // args: open from, open until
	KeyAskPartySize    Key = "ask_party_size"
	KeyBadPartySize    Key = "bad_party_size"    // args: max party size
	KeyAskZone         Key = "ask_zone"          // args: zone list
	KeyBadZone         Key = "bad_zone"          // args: zone list
	KeyZoneFull        Key = "zone_full"         // args: zone name
	KeyAskTable        Key = "ask_table"         // args: free table list
	KeyBadTable        Key = "bad_table"         // args: free table list
	KeyTableTaken      Key = "table_taken"       // args: free table list
	KeyConfirmSummary  Key = "confirm_summary"   // args: date, time, guests, zone, table
	KeyConfirmRepeat   Key = "confirm_repeat"
	KeyBookingDone     Key = "booking_done"
	KeyBookingDeclined Key = "booking_declined"
	KeyCancelled       Key = "cancelled"
	KeyAskAllergies    Key = "ask_allergies"
	KeyFilteredMenu    Key = "filtered_menu"     // args: item list
	KeyNoMenuItems     Key = "no_menu_items"
	KeyAskTrack        Key = "ask_track"
	KeyTrackOrdered    Key = "track_ordered"
	KeyFeedbackChoice  Key = "feedback_choice"
	KeyFeedbackAsk     Key = "feedback_ask"
	KeyFeedbackThanks  Key = "feedback_thanks"
	KeyInternalError   Key = "internal_error"
	KeySlowDown        Key = "slow_down"
)

// texts holds every prompt in both languages. Formats use fmt verbs;
// T applies the arguments with Sprintf.
var texts = map[model.Language]map[Key]string{
	model.LangRU: {
		KeyChooseLanguage:  "Выберите язык / Choose language:",
		KeyAskName:         "Как я могу к вам обращаться?",
		KeyGreeting:        "Привет, %s! Выберите раздел:",
		KeyUnknownCommand:  "Не понял, выберите пункт меню.",
		KeyMenuItems:       "1) Салат\n2) Стейк\n3) Десерт",
		KeyAskDate:         "Введите дату бронирования (YYYY-MM-DD):",
		KeyBadDate:         "Не получилось разобрать дату. Введите дату в формате YYYY-MM-DD, не раньше сегодняшней.",
		KeyAskTime:         "Введите время (HH:MM):",
		KeyBadTime:         "Не получилось разобрать время. Введите время в формате HH:MM в пределах работы клуба (%s–%s).",
		KeyAskPartySize:    "Сколько гостей?",
		KeyBadPartySize:    "Введите число гостей от 1 до %d.",
		KeyAskZone:         "Выберите зону: %s",
		KeyBadZone:         "Такой зоны нет. Доступные зоны: %s",
		KeyZoneFull:        "В зоне %s нет свободных столиков на это время. Выберите другую зону.",
		KeyAskTable:        "Свободные столики: %s. Выберите столик.",
		KeyBadTable:        "Такого столика нет в выбранной зоне. Свободные столики: %s",
		KeyTableTaken:      "Этот столик уже заняли. Свободные столики: %s",
		KeyConfirmSummary:  "Дата: %s\nВремя: %s\nГостей: %d\nЗона: %s\nСтолик: %s\nПодтвердить бронь и оплатить 1000 сом? (да/нет)",
		KeyConfirmRepeat:   "Ответьте «да» или «нет».",
		KeyBookingDone:     "Бронь оформлена!",
		KeyBookingDeclined: "Отменено.",
		KeyCancelled:       "Операция отменена.",
		KeyAskAllergies:    "Есть ли у вас аллергии? Перечислите через запятую или напишите «нет».",
		KeyFilteredMenu:    "Вам подойдёт:\n%s",
		KeyNoMenuItems:     "Нет доступных блюд.",
		KeyAskTrack:        "Введите название трека:",
		KeyTrackOrdered:    "Оплата 500 сом… (заглушка)\nТрек заказан!",
		KeyFeedbackChoice:  "Анонимно или с именем?",
		KeyFeedbackAsk:     "Напишите отзыв:",
		KeyFeedbackThanks:  "Спасибо за отзыв!",
		KeyInternalError:   "Что-то пошло не так. Пожалуйста, попробуйте ещё раз.",
		KeySlowDown:        "Слишком много сообщений, подождите немного.",
	},
	model.LangEN: {
		KeyChooseLanguage:  "Выберите язык / Choose language:",
		KeyAskName:         "What is your name?",
		KeyGreeting:        "Hello, %s! Choose section:",
		KeyUnknownCommand:  "Sorry, I didn't get that. Pick a menu item.",
		KeyMenuItems:       "1) Salad\n2) Steak\n3) Dessert",
		KeyAskDate:         "Enter booking date (YYYY-MM-DD):",
		KeyBadDate:         "Couldn't parse that date. Enter a date as YYYY-MM-DD, today or later.",
		KeyAskTime:         "Enter time (HH:MM):",
		KeyBadTime:         "Couldn't parse that time. Enter a time as HH:MM within opening hours (%s–%s).",
		KeyAskPartySize:    "How many guests?",
		KeyBadPartySize:    "Enter a guest count between 1 and %d.",
		KeyAskZone:         "Choose zone: %s",
		KeyBadZone:         "No such zone. Available zones: %s",
		KeyZoneFull:        "No free tables in %s at that time. Choose another zone.",
		KeyAskTable:        "Free tables: %s. Pick a table.",
		KeyBadTable:        "That table is not in the chosen zone. Free tables: %s",
		KeyTableTaken:      "That table was just taken. Free tables: %s",
		KeyConfirmSummary:  "Date: %s\nTime: %s\nGuests: %d\nZone: %s\nTable: %s\nConfirm and pay 1000 som? (yes/no)",
		KeyConfirmRepeat:   "Please answer yes or no.",
		KeyBookingDone:     "Booking complete!",
		KeyBookingDeclined: "Cancelled.",
		KeyCancelled:       "Operation cancelled.",
		KeyAskAllergies:    "Any allergies? List them separated by commas, or say 'no'.",
		KeyFilteredMenu:    "These should work for you:\n%s",
		KeyNoMenuItems:     "No items available.",
		KeyAskTrack:        "Enter track title:",
		KeyTrackOrdered:    "Payment 500 som… (stub)\nTrack ordered!",
		KeyFeedbackChoice:  "Anonymous or with your name?",
		KeyFeedbackAsk:     "Write your feedback:",
		KeyFeedbackThanks:  "Thank you for the feedback!",
		KeyInternalError:   "Something went wrong. Please try again.",
		KeySlowDown:        "Too many messages, please wait a moment.",
	},
}

// T renders a prompt key in the given language. Unknown languages fall
// back to English so a broken session still gets readable text.
func T(lang model.Language, key Key, args ...interface{}) string {
	pack, ok := texts[lang]
	if !ok {
		pack = texts[model.LangEN]
	}
	format, ok := pack[key]
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// zoneNames localizes zone identifiers for display.
var zoneNames = map[model.Language]map[string]string{
	model.LangRU: {
		"vip":        "VIP",
		"balcony":    "Балкон",
		"dancefloor": "Танцпол",
		"bar":        "Бар",
	},
	model.LangEN: {
		"vip":        "VIP",
		"balcony":    "Balcony",
		"dancefloor": "Dancefloor",
		"bar":        "Bar",
	},
}

// zoneAliases maps normalized guest input to the configured zone id.
// Both languages' names are accepted regardless of the session
// language, mirroring how guests actually type.
var zoneAliases = map[string]string{
	"vip":        "VIP",
	"вип":        "VIP",
	"balcony":    "Balcony",
	"балкон":     "Balcony",
	"dancefloor": "Dancefloor",
	"танцпол":    "Dancefloor",
	"bar":        "Bar",
	"бар":        "Bar",
}

// ZoneName returns the localized display name for a zone id. Zones not
// covered by the built-in table are shown by their raw id, so custom
// venue files still work.
func ZoneName(lang model.Language, zoneID string) string {
	if names, ok := zoneNames[lang]; ok {
		if n, ok := names[strings.ToLower(zoneID)]; ok {
			return n
		}
	}
	return zoneID
}

// ResolveZone normalizes guest input and maps localized zone names to
// the configured identifier. Input that is not a known alias is
// returned as-is so raw zone ids keep working.
func ResolveZone(input string) string {
	norm := strings.ToLower(strings.TrimSpace(input))
	if id, ok := zoneAliases[norm]; ok {
		return id
	}
	return strings.TrimSpace(input)
}

// Affirmative and negative token sets. The original bot matched both
// languages' tokens in a single pattern, so the session language is
// deliberately ignored here.
var (
	yesTokens = map[string]bool{"да": true, "yes": true, "y": true}
	noTokens  = map[string]bool{"нет": true, "no": true, "n": true}
)

// IsYes reports whether the input is an affirmative answer.
func IsYes(s string) bool { return yesTokens[strings.ToLower(strings.TrimSpace(s))] }

// IsNo reports whether the input is a negative answer.
func IsNo(s string) bool { return noTokens[strings.ToLower(strings.TrimSpace(s))] }

// Menu button labels, one slice entry per keyboard row. The emoji are
// part of the label and survive round-trips through the chat client.
var menuButtons = map[model.Language][][]string{
	model.LangRU: {
		{"📅 Просмотреть меню", "🪑 Забронировать столик"},
		{"🤖 AI-меню", "🎵 Заказать музыку"},
		{"✍️ Оставить отзыв"},
	},
	model.LangEN: {
		{"📅 View menu", "🪑 Book a table"},
		{"🤖 AI menu", "🎵 Order music"},
		{"✍️ Leave feedback"},
	},
}

// MenuKeyboard returns the main-menu button rows for a language.
func MenuKeyboard(lang model.Language) [][]string {
	if rows, ok := menuButtons[lang]; ok {
		return rows
	}
	return menuButtons[model.LangEN]
}

// LanguageKeyboard returns the language-selection rows shown on first
// contact.
func LanguageKeyboard() [][]string {
	return [][]string{{"🇷🇺 Русский"}, {"🇬🇧 English"}}
}

// FeedbackKeyboard returns the anonymous/named choice rows.
func FeedbackKeyboard(lang model.Language) [][]string {
	if lang == model.LangRU {
		return [][]string{{"Анонимно"}, {"С именем"}}
	}
	return [][]string{{"Anonymous"}, {"With my name"}}
}

// AnonymousAuthor is the author label used for anonymous feedback.
func AnonymousAuthor(lang model.Language) string {
	if lang == model.LangRU {
		return "Аноним"
	}
	return "Anonymous"
}
