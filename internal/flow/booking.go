package flow

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ermekov/club-table-reservation/internal/availability"
	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/queue"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// handleDate validates a YYYY-MM-DD date that is not in the past,
// relative to the venue's local calendar.
func (e *Engine) handleDate(s *model.Session, text string) Result {
	d, err := time.ParseInLocation("2006-01-02", text, e.loc)
	if err != nil || d.Before(e.today()) {
		return Result{Replies: []Reply{reply(s.Language, locale.KeyBadDate)}}
	}
	s.Draft.Date = d.Format("2006-01-02")
	s.State = model.StateAwaitingTime
	return Result{Replies: []Reply{reply(s.Language, locale.KeyAskTime)}}
}

// handleTime validates an HH:MM time inside the venue's operating
// window, which may wrap past midnight.
func (e *Engine) handleTime(s *model.Session, text string) Result {
	t, err := time.Parse("15:04", strings.TrimSpace(text))
	if err != nil || !e.venue.WithinHours(t.Hour(), t.Minute()) {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyBadTime, e.venue.OpenFrom, e.venue.OpenUntil),
		}}
	}
	s.Draft.Time = t.Format("15:04")
	s.State = model.StateAwaitingPartySize
	return Result{Replies: []Reply{reply(s.Language, locale.KeyAskPartySize)}}
}

// handlePartySize validates a positive integer no larger than the
// venue's biggest table.
func (e *Engine) handlePartySize(s *model.Session, text string) Result {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > e.venue.MaxPartySize() {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyBadPartySize, e.venue.MaxPartySize()),
		}}
	}
	s.Draft.PartySize = n
	s.State = model.StateAwaitingZone
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyAskZone, e.zoneList(s.Language)).withKeyboard(e.zoneKeyboard(s.Language)),
	}}
}

// handleZone matches the input against configured zones (localized
// names accepted) and, on success, presents the live availability of
// tables in that zone for the drafted slot.
func (e *Engine) handleZone(s *model.Session, text string) (Result, error) {
	z, ok := e.venue.Zone(locale.ResolveZone(text))
	if !ok {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyBadZone, e.zoneList(s.Language)),
		}}, nil
	}
	free, err := e.avail.ListFreeTables(z.ID, s.Draft.Date, s.Draft.Time)
	if err != nil {
		// Internal fault: leave the session untouched so a retry is safe.
		return Result{Replies: []Reply{reply(s.Language, locale.KeyInternalError)}}, err
	}
	if len(free) == 0 {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyZoneFull, locale.ZoneName(s.Language, z.ID)),
		}}, nil
	}
	s.Draft.ZoneID = z.ID
	s.State = model.StateAwaitingTable
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyAskTable, tableList(free)).withKeyboard(tableKeyboard(free)),
	}}, nil
}

// handleTable accepts a table from the drafted zone. Occupancy is
// re-checked at this moment, not only at the earlier listing: another
// guest may have taken the table since.
func (e *Engine) handleTable(s *model.Session, text string) (Result, error) {
	t, ok := e.venue.TableInZone(s.Draft.ZoneID, text)
	free, err := e.avail.ListFreeTables(s.Draft.ZoneID, s.Draft.Date, s.Draft.Time)
	if err != nil {
		return Result{Replies: []Reply{reply(s.Language, locale.KeyInternalError)}}, err
	}
	if !ok {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyBadTable, tableList(free)).withKeyboard(tableKeyboard(free)),
		}}, nil
	}
	stillFree := false
	for _, f := range free {
		if f.ID == t.ID {
			stillFree = true
			break
		}
	}
	if !stillFree {
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyTableTaken, tableList(free)).withKeyboard(tableKeyboard(free)),
		}}, nil
	}
	s.Draft.TableID = t.ID
	s.State = model.StateAwaitingConfirmation
	return Result{Replies: []Reply{
		reply(s.Language, locale.KeyConfirmSummary,
			s.Draft.Date, s.Draft.Time, s.Draft.PartySize,
			locale.ZoneName(s.Language, s.Draft.ZoneID), s.Draft.TableID,
		).withKeyboard(yesNoKeyboard(s.Language)),
	}}, nil
}

// handleConfirmation resolves the yes/no decision. "Yes" attempts the
// atomic commit; losing the race sends the guest back to table
// selection with a refreshed list, because the no-double-booking
// invariant outranks finishing this guest's request.
func (e *Engine) handleConfirmation(ctx context.Context, s *model.Session, text string) (Result, error) {
	switch {
	case locale.IsNo(text):
		s.Draft = model.Draft{}
		s.State = model.StateMenu
		return Result{Replies: []Reply{
			reply(s.Language, locale.KeyBookingDeclined).withKeyboard(locale.MenuKeyboard(s.Language)),
		}}, nil
	case locale.IsYes(text):
		// fall through to commit
	default:
		return Result{Replies: []Reply{reply(s.Language, locale.KeyConfirmRepeat)}}, nil
	}

	r, err := e.avail.TryCommit(ctx,
		s.Draft.ZoneID, s.Draft.TableID, s.Draft.Date, s.Draft.Time,
		s.Draft.PartySize, s.GuestID, s.DisplayName,
	)
	if err != nil {
		if errors.Is(err, availability.ErrSlotTaken) {
			// Concurrent booking won the slot. Drop the table choice and
			// re-offer what is actually free now.
			s.Draft.TableID = ""
			s.State = model.StateAwaitingTable
			free, lerr := e.avail.ListFreeTables(s.Draft.ZoneID, s.Draft.Date, s.Draft.Time)
			if lerr != nil {
				return Result{Replies: []Reply{reply(s.Language, locale.KeyInternalError)}}, lerr
			}
			return Result{Replies: []Reply{
				reply(s.Language, locale.KeyTableTaken, tableList(free)).withKeyboard(tableKeyboard(free)),
			}}, nil
		}
		// Internal fault (archive down and such): session untouched,
		// same confirmation can simply be retried.
		return Result{Replies: []Reply{reply(s.Language, locale.KeyInternalError)}}, err
	}

	s.State = model.StateCommitted
	return Result{
		Replies: []Reply{
			reply(s.Language, locale.KeyBookingDone).withKeyboard(locale.MenuKeyboard(s.Language)),
		},
		Notification: queue.BookingConfirmedEvent{
			ReservationID: r.ID,
			GuestID:       r.GuestID,
			GuestName:     r.GuestName,
			Date:          r.Date,
			Time:          r.Time,
			PartySize:     r.PartySize,
			Zone:          r.ZoneID,
			Table:         r.TableID,
			ConfirmedAt:   r.CreatedAt.Format(time.RFC3339),
		},
	}, nil
}

// zoneList renders the configured zones as a localized, comma
// separated list for prompts.
func (e *Engine) zoneList(lang model.Language) string {
	names := make([]string, 0, len(e.venue.Zones))
	for _, z := range e.venue.Zones {
		names = append(names, locale.ZoneName(lang, z.ID))
	}
	return strings.Join(names, ", ")
}

// zoneKeyboard offers one zone per row.
func (e *Engine) zoneKeyboard(lang model.Language) [][]string {
	rows := make([][]string, 0, len(e.venue.Zones))
	for _, z := range e.venue.Zones {
		rows = append(rows, []string{locale.ZoneName(lang, z.ID)})
	}
	return rows
}

func tableList(free []venue.Table) string {
	ids := make([]string, 0, len(free))
	for _, t := range free {
		ids = append(ids, t.ID)
	}
	return strings.Join(ids, ", ")
}

// tableKeyboard chunks free tables into rows of three buttons.
func tableKeyboard(free []venue.Table) [][]string {
	var rows [][]string
	var row []string
	for _, t := range free {
		row = append(row, t.ID)
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func yesNoKeyboard(lang model.Language) [][]string {
	if lang == model.LangRU {
		return [][]string{{"да", "нет"}}
	}
	return [][]string{{"yes", "no"}}
}
