package flow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ermekov/club-table-reservation/internal/availability"
	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/menu"
	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/store"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// Engine drives every guest conversation. One engine serves all
// guests; per-guest serialization is the session store's job, and the
// availability model guards its own state, so the engine itself keeps
// no mutable fields.
type Engine struct {
	venue    *venue.Venue
	avail    *availability.Model
	sessions *store.Store
	catalog  *menu.Catalog
	djName   string
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

// Option tweaks engine construction; used by tests to pin the clock.
type Option func(*Engine)

// WithNow overrides the engine's clock.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an engine. loc is the venue's local timezone, used for
// the "not in the past" date check.
func New(v *venue.Venue, avail *availability.Model, sessions *store.Store, catalog *menu.Catalog, djName string, loc *time.Location, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		venue:    v,
		avail:    avail,
		sessions: sessions,
		catalog:  catalog,
		djName:   djName,
		loc:      loc,
		now:      time.Now,
		log:      log,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// HandleMessage processes one inbound guest message and returns the
// effects to execute. Malformed input never returns an error; it
// re-prompts in place. A non-nil error means an internal fault, in
// which case the session was left untouched and retrying the same
// message is safe.
func (e *Engine) HandleMessage(ctx context.Context, guestID int64, text string) (Result, error) {
	var res Result
	err := e.sessions.WithSession(guestID, func(s *model.Session) error {
		var err error
		res, err = e.dispatch(ctx, s, strings.TrimSpace(text))
		return err
	})
	if err != nil {
		e.log.Error("flow: message handling failed",
			zap.Int64("guest_id", guestID), zap.Error(err))
	}
	return res, err
}

// dispatch routes by current state. The session is mutated only on a
// successful transition; every validator failure leaves both state and
// draft exactly as they were.
func (e *Engine) dispatch(ctx context.Context, s *model.Session, text string) (Result, error) {
	// A committed flow is terminal: the next message starts over from
	// the menu as a fresh entry.
	if s.State == model.StateCommitted {
		s.State = model.StateMenu
		s.Draft = model.Draft{}
	}

	if e.isCancel(text) && s.State != model.StateMenu && s.Language != "" && s.DisplayName != "" {
		s.State = model.StateMenu
		s.Draft = model.Draft{}
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyCancelled).withKeyboard(locale.MenuKeyboard(s.Language)),
		}}, nil
	}

	switch s.State {
	case model.StateLanguage:
		return e.handleLanguage(s, text), nil
	case model.StateAskName:
		return e.handleAskName(s, text), nil
	case model.StateMenu:
		return e.handleMenu(s, text), nil
	case model.StateAwaitingDate:
		return e.handleDate(s, text), nil
	case model.StateAwaitingTime:
		return e.handleTime(s, text), nil
	case model.StateAwaitingPartySize:
		return e.handlePartySize(s, text), nil
	case model.StateAwaitingZone:
		return e.handleZone(s, text)
	case model.StateAwaitingTable:
		return e.handleTable(s, text)
	case model.StateAwaitingConfirmation:
		return e.handleConfirmation(ctx, s, text)
	case model.StateMusicTitle:
		return e.handleMusicTitle(s, text), nil
	case model.StateFeedbackChoice:
		return e.handleFeedbackChoice(s, text), nil
	case model.StateFeedbackText:
		return e.handleFeedbackText(s, text), nil
	case model.StateAllergyInput:
		return e.handleAllergies(ctx, s, text), nil
	default:
		// An unknown state can only come from a programming error;
		// recover the guest to the menu instead of wedging the session.
		e.log.Error("flow: session in unknown state",
			zap.Int64("guest_id", s.GuestID), zap.Int("state", int(s.State)))
		s.State = model.StateMenu
		s.Draft = model.Draft{}
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyUnknownCommand).withKeyboard(locale.MenuKeyboard(s.Language)),
		}}, nil
	}
}

// isCancel matches the global cancel command in either language.
func (e *Engine) isCancel(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	return norm == "/cancel" || norm == "отмена" || norm == "cancel"
}

// today returns the current calendar date in the venue's timezone.
func (e *Engine) today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}
