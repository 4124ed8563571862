package flow

import (
	"context"
	"strings"
	"time"

	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/menu"
	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/queue"
)

// The sibling flows are single-field collectors: they reuse the
// session machinery and the notification dispatcher but never touch
// the availability model.

// handleMusicTitle takes the track title, emits the DJ notification
// and returns to the menu. Payment is a stub by design; the original
// service never settled it either.
func (e *Engine) handleMusicTitle(s *model.Session, text string) Result {
	track := strings.TrimSpace(text)
	if track == "" {
		return Result{Replies: []Reply{reply(s.Language, locale.KeyAskTrack)}}
	}
	s.State = model.StateMenu
	return Result{
		Replies: []Reply{
			reply(s.Language, locale.KeyTrackOrdered).withKeyboard(locale.MenuKeyboard(s.Language)),
		},
		Notification: queue.MusicRequestedEvent{
			GuestName:   s.DisplayName,
			Track:       track,
			DJ:          e.djName,
			RequestedAt: e.now().UTC().Format(time.RFC3339),
		},
	}
}

// handleFeedbackChoice records whether the feedback should carry the
// guest's name.
func (e *Engine) handleFeedbackChoice(s *model.Session, text string) Result {
	norm := strings.ToLower(strings.TrimSpace(text))
	s.FeedbackAnon = strings.HasPrefix(norm, "аноним") || strings.HasPrefix(norm, "anonym")
	s.State = model.StateFeedbackText
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyFeedbackAsk).removingKeyboard(),
	}}
}

// handleFeedbackText emits the feedback notification and returns to
// the menu.
func (e *Engine) handleFeedbackText(s *model.Session, text string) Result {
	body := strings.TrimSpace(text)
	if body == "" {
		return Result{Replies: []Reply{reply(s.Language, locale.KeyFeedbackAsk)}}
	}
	author := s.DisplayName
	if s.FeedbackAnon {
		author = locale.AnonymousAuthor(s.Language)
	}
	s.State = model.StateMenu
	return Result{
		Replies: []Reply{
			reply(s.Language, locale.KeyFeedbackThanks).withKeyboard(locale.MenuKeyboard(s.Language)),
		},
		Notification: queue.FeedbackReceivedEvent{
			Author:     author,
			Text:       body,
			ReceivedAt: e.now().UTC().Format(time.RFC3339),
		},
	}
}

// handleAllergies filters the menu for the listed allergies and shows
// the result. The catalog falls back to local filtering when the
// model-backed filter is unavailable, so this always answers.
func (e *Engine) handleAllergies(ctx context.Context, s *model.Session, text string) Result {
	allergies := menu.ParseAllergies(text)
	items := e.catalog.Filter(ctx, s.Language, allergies)
	s.State = model.StateMenu
	if len(items) == 0 {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyNoMenuItems).withKeyboard(locale.MenuKeyboard(s.Language)),
		}}
	}
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyFilteredMenu, strings.Join(items, "\n")).withKeyboard(locale.MenuKeyboard(s.Language)),
	}}
}
