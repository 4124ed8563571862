package flow

import (
	"strings"

	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/model"
)

// intent is the finite set of main-menu actions. Free text is mapped
// to an intent exactly once, here at the boundary; every flow after
// that works with the enum, never with the raw button text.
type intent int

const (
	intentUnknown intent = iota
	intentViewMenu
	intentBook
	intentAIMenu
	intentMusic
	intentFeedback
)

// intentByLabel indexes the normalized button labels of every shipped
// language. Built once at package init.
var intentByLabel = map[string]intent{}

func init() {
	for _, lang := range []model.Language{model.LangRU, model.LangEN} {
		rows := locale.MenuKeyboard(lang)
		labels := []struct {
			row, col int
			in       intent
		}{
			{0, 0, intentViewMenu},
			{0, 1, intentBook},
			{1, 0, intentAIMenu},
			{1, 1, intentMusic},
			{2, 0, intentFeedback},
		}
		for _, l := range labels {
			intentByLabel[normLabel(rows[l.row][l.col])] = l.in
		}
	}
}

func normLabel(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// intentFor resolves guest input to a menu intent. Only exact
// (normalized) label matches count; anything else is unknown and gets
// a re-prompt rather than a guess.
func intentFor(text string) intent {
	return intentByLabel[normLabel(text)]
}

// handleLanguage runs on first contact and on any message while the
// language is still unknown. Unrecognized input re-shows the language
// keyboard.
func (e *Engine) handleLanguage(s *model.Session, text string) Result {
	norm := strings.ToLower(text)
	switch {
	case strings.Contains(norm, "рус") || strings.Contains(norm, "🇷🇺"):
		s.Language = model.LangRU
	case strings.Contains(norm, "eng") || strings.Contains(norm, "🇬🇧"):
		s.Language = model.LangEN
	default:
		return Result{Replies: []Reply{
			reply(model.LangEN, locale.KeyChooseLanguage).withKeyboard(locale.LanguageKeyboard()),
		}}
	}
	s.State = model.StateAskName
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyAskName).removingKeyboard(),
	}}
}

// handleAskName stores the display name and opens the main menu.
func (e *Engine) handleAskName(s *model.Session, text string) Result {
	name := strings.TrimSpace(text)
	if name == "" {
		return Result{Replies: []Reply{reply(s.Language, locale.KeyAskName)}}
	}
	s.DisplayName = name
	s.State = model.StateMenu
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyGreeting, name).withKeyboard(locale.MenuKeyboard(s.Language)),
	}}
}

// handleMenu routes a main-menu choice into the matching sub-flow.
func (e *Engine) handleMenu(s *model.Session, text string) Result {
	switch intentFor(text) {
	case intentBook:
		s.State = model.StateAwaitingDate
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyAskDate).removingKeyboard(),
		}}
	case intentAIMenu:
		s.State = model.StateAllergyInput
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyAskAllergies).removingKeyboard(),
		}}
	case intentMusic:
		s.State = model.StateMusicTitle
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyAskTrack).removingKeyboard(),
		}}
	case intentFeedback:
		s.State = model.StateFeedbackChoice
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyFeedbackChoice).withKeyboard(locale.FeedbackKeyboard(s.Language)),
		}}
	case intentViewMenu:
		return Result{Replies: []Reply{reply(s.Language, locale.KeyMenuItems)}}
	default:
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyUnknownCommand).withKeyboard(locale.MenuKeyboard(s.Language)),
		}}
	}
}
