package flow

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ermekov/club-table-reservation/internal/availability"
	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/menu"
	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/queue"
	"github.com/ermekov/club-table-reservation/internal/store"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// fixedNow keeps every date check relative to a known day.
var fixedNow = func() time.Time {
	return time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *availability.Model) {
	t.Helper()
	v := venue.Default()
	avail := availability.New(v, nil)
	sessions := store.New()
	e := New(v, avail, sessions, menu.New(nil), "DJ Nox", time.UTC, zap.NewNop(), WithNow(fixedNow))
	return e, sessions, avail
}

func send(t *testing.T, e *Engine, guest int64, text string) Result {
	t.Helper()
	res, err := e.HandleMessage(context.Background(), guest, text)
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", text, err)
	}
	return res
}

func wantState(t *testing.T, s *store.Store, guest int64, want model.FlowState) {
	t.Helper()
	snap, ok := s.Snapshot(guest)
	if !ok {
		t.Fatalf("no session for guest %d", guest)
	}
	if snap.State != want {
		t.Fatalf("guest %d: state = %v, want %v", guest, snap.State, want)
	}
}

func wantKey(t *testing.T, res Result, want locale.Key) {
	t.Helper()
	if len(res.Replies) == 0 {
		t.Fatalf("no replies, want key %q", want)
	}
	if res.Replies[0].Key != want {
		t.Fatalf("reply key = %q, want %q", res.Replies[0].Key, want)
	}
}

// onboard walks a guest to the main menu.
func onboard(t *testing.T, e *Engine, guest int64, name string) {
	t.Helper()
	send(t, e, guest, "🇷🇺 Русский")
	send(t, e, guest, name)
}

func TestHappyPathBooking(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(100)

	res := send(t, e, guest, "/start")
	wantKey(t, res, locale.KeyChooseLanguage)
	wantState(t, sessions, guest, model.StateLanguage)

	res = send(t, e, guest, "🇷🇺 Русский")
	wantKey(t, res, locale.KeyAskName)
	wantState(t, sessions, guest, model.StateAskName)

	res = send(t, e, guest, "Айдана")
	wantKey(t, res, locale.KeyGreeting)
	wantState(t, sessions, guest, model.StateMenu)

	res = send(t, e, guest, "🪑 Забронировать столик")
	wantKey(t, res, locale.KeyAskDate)
	wantState(t, sessions, guest, model.StateAwaitingDate)

	res = send(t, e, guest, "2025-07-20")
	wantKey(t, res, locale.KeyAskTime)

	res = send(t, e, guest, "21:30")
	wantKey(t, res, locale.KeyAskPartySize)

	res = send(t, e, guest, "4")
	wantKey(t, res, locale.KeyAskZone)
	wantState(t, sessions, guest, model.StateAwaitingZone)

	res = send(t, e, guest, "вип")
	wantKey(t, res, locale.KeyAskTable)

	res = send(t, e, guest, "VIP-1")
	wantKey(t, res, locale.KeyConfirmSummary)
	wantState(t, sessions, guest, model.StateAwaitingConfirmation)

	res = send(t, e, guest, "да")
	wantKey(t, res, locale.KeyBookingDone)
	wantState(t, sessions, guest, model.StateCommitted)

	ev, ok := res.Notification.(queue.BookingConfirmedEvent)
	if !ok {
		t.Fatalf("notification = %T, want BookingConfirmedEvent", res.Notification)
	}
	if ev.Date != "2025-07-20" || ev.Time != "21:30" || ev.PartySize != 4 ||
		ev.Zone != "VIP" || ev.Table != "VIP-1" || ev.GuestName != "Айдана" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestInvalidInputNeverAdvances(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(101)
	onboard(t, e, guest, "Bek")
	send(t, e, guest, "🪑 Забронировать столик")

	cases := []struct {
		state model.FlowState
		bad   []string
		good  string
		key   locale.Key
	}{
		{model.StateAwaitingDate, []string{"tomorrow", "2025-13-40", "2025-07-10"}, "2025-07-20", locale.KeyBadDate},
		{model.StateAwaitingTime, []string{"half past nine", "25:00", "12:00"}, "21:30", locale.KeyBadTime},
		{model.StateAwaitingPartySize, []string{"many", "0", "-3", "99"}, "4", locale.KeyBadPartySize},
		{model.StateAwaitingZone, []string{"Rooftop", "Кухня"}, "VIP", locale.KeyBadZone},
		{model.StateAwaitingTable, []string{"B-1", "VIP-99"}, "VIP-1", locale.KeyBadTable},
	}
	for _, c := range cases {
		wantState(t, sessions, guest, c.state)
		before, _ := sessions.Snapshot(guest)
		for _, bad := range c.bad {
			res := send(t, e, guest, bad)
			wantKey(t, res, c.key)
			after, _ := sessions.Snapshot(guest)
			if after.State != before.State || after.Draft != before.Draft {
				t.Fatalf("state %v: input %q mutated the session", c.state, bad)
			}
		}
		send(t, e, guest, c.good)
	}
	wantState(t, sessions, guest, model.StateAwaitingConfirmation)

	// Gibberish at confirmation re-prompts without committing.
	res := send(t, e, guest, "maybe")
	wantKey(t, res, locale.KeyConfirmRepeat)
	wantState(t, sessions, guest, model.StateAwaitingConfirmation)
}

func TestCancelResetsFromEveryBookingState(t *testing.T) {
	e, sessions, _ := newTestEngine(t)

	steps := []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "4", "VIP", "VIP-1"}
	for depth := 1; depth <= len(steps); depth++ {
		guest := int64(200 + depth)
		onboard(t, e, guest, "Dana")
		for _, msg := range steps[:depth] {
			send(t, e, guest, msg)
		}
		res := send(t, e, guest, "отмена")
		wantKey(t, res, locale.KeyCancelled)
		wantState(t, sessions, guest, model.StateMenu)
		snap, _ := sessions.Snapshot(guest)
		if !snap.Draft.Empty() {
			t.Fatalf("depth %d: draft not cleared: %+v", depth, snap.Draft)
		}
		// Identity survives the reset.
		if snap.DisplayName != "Dana" || snap.Language != model.LangRU {
			t.Fatalf("depth %d: identity lost on cancel: %+v", depth, snap)
		}
	}
}

func TestDeclineAtConfirmation(t *testing.T) {
	e, sessions, avail := newTestEngine(t)
	const guest = int64(300)
	onboard(t, e, guest, "Erlan")
	for _, msg := range []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "4", "VIP", "VIP-1"} {
		send(t, e, guest, msg)
	}
	res := send(t, e, guest, "нет")
	wantKey(t, res, locale.KeyBookingDeclined)
	wantState(t, sessions, guest, model.StateMenu)
	if res.Notification != nil {
		t.Fatalf("decline must not emit a notification")
	}
	free, _ := avail.ListFreeTables("VIP", "2025-07-20", "21:30")
	if len(free) != 3 {
		t.Fatalf("decline must not occupy the slot, got %d free tables", len(free))
	}
}

func TestLosingGuestReturnsToTableSelection(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	winner, loser := int64(400), int64(401)

	for _, g := range []int64{winner, loser} {
		onboard(t, e, g, "Guest")
		for _, msg := range []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "4", "VIP", "VIP-1"} {
			send(t, e, g, msg)
		}
	}
	// Both drafted VIP-1; only the first confirmation wins.
	res := send(t, e, winner, "да")
	wantKey(t, res, locale.KeyBookingDone)
	wantState(t, sessions, winner, model.StateCommitted)

	res = send(t, e, loser, "да")
	wantKey(t, res, locale.KeyTableTaken)
	wantState(t, sessions, loser, model.StateAwaitingTable)
	if res.Notification != nil {
		t.Fatalf("losing guest must not emit a notification")
	}
	snap, _ := sessions.Snapshot(loser)
	if snap.Draft.TableID != "" {
		t.Fatalf("loser's table choice should be dropped, got %q", snap.Draft.TableID)
	}
	// The refreshed list no longer offers VIP-1; the rest of the flow
	// still completes on another table.
	res = send(t, e, loser, "VIP-1")
	wantKey(t, res, locale.KeyTableTaken)
	send(t, e, loser, "VIP-2")
	res = send(t, e, loser, "да")
	wantKey(t, res, locale.KeyBookingDone)
}

func TestTakenTableRejectedAtSelection(t *testing.T) {
	e, _, avail := newTestEngine(t)
	if _, err := avail.TryCommit(context.Background(), "Bar", "BAR-1", "2025-07-20", "21:30", 2, 999, "Other"); err != nil {
		t.Fatalf("seed commit: %v", err)
	}
	const guest = int64(500)
	onboard(t, e, guest, "Aida")
	for _, msg := range []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "2", "бар"} {
		send(t, e, guest, msg)
	}
	res := send(t, e, guest, "BAR-1")
	wantKey(t, res, locale.KeyTableTaken)
}

func TestCommittedSessionStartsFresh(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(600)
	onboard(t, e, guest, "Nur")
	for _, msg := range []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "4", "VIP", "VIP-1", "да"} {
		send(t, e, guest, msg)
	}
	wantState(t, sessions, guest, model.StateCommitted)

	// Next message is treated as a fresh menu entry; a second booking on
	// a different table is possible right away.
	res := send(t, e, guest, "🪑 Забронировать столик")
	wantKey(t, res, locale.KeyAskDate)
	snap, _ := sessions.Snapshot(guest)
	if !snap.Draft.Empty() {
		t.Fatalf("old draft leaked into the new flow: %+v", snap.Draft)
	}
}

func TestZoneFullOffersAnotherZone(t *testing.T) {
	e, sessions, avail := newTestEngine(t)
	ctx := context.Background()
	for _, tbl := range []string{"BAR-1", "BAR-2", "BAR-3"} {
		if _, err := avail.TryCommit(ctx, "Bar", tbl, "2025-07-20", "21:30", 2, 999, "Other"); err != nil {
			t.Fatalf("seed commit %s: %v", tbl, err)
		}
	}
	const guest = int64(700)
	onboard(t, e, guest, "Aida")
	for _, msg := range []string{"🪑 Забронировать столик", "2025-07-20", "21:30", "2", "бар"} {
		send(t, e, guest, msg)
	}
	wantState(t, sessions, guest, model.StateAwaitingZone)
	res := send(t, e, guest, "VIP")
	wantKey(t, res, locale.KeyAskTable)
}

func TestMusicFlow(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(800)
	onboard(t, e, guest, "Dana")
	send(t, e, guest, "🎵 Заказать музыку")
	wantState(t, sessions, guest, model.StateMusicTitle)

	res := send(t, e, guest, "Daft Punk - One More Time")
	wantKey(t, res, locale.KeyTrackOrdered)
	wantState(t, sessions, guest, model.StateMenu)
	ev, ok := res.Notification.(queue.MusicRequestedEvent)
	if !ok {
		t.Fatalf("notification = %T, want MusicRequestedEvent", res.Notification)
	}
	if ev.Track != "Daft Punk - One More Time" || ev.DJ != "DJ Nox" || ev.GuestName != "Dana" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestFeedbackFlowAnonymous(t *testing.T) {
	e, _, _ := newTestEngine(t)
	const guest = int64(801)
	onboard(t, e, guest, "Dana")
	send(t, e, guest, "✍️ Оставить отзыв")
	send(t, e, guest, "Анонимно")
	res := send(t, e, guest, "Отличный вечер!")
	wantKey(t, res, locale.KeyFeedbackThanks)
	ev, ok := res.Notification.(queue.FeedbackReceivedEvent)
	if !ok {
		t.Fatalf("notification = %T, want FeedbackReceivedEvent", res.Notification)
	}
	if ev.Author != "Аноним" || ev.Text != "Отличный вечер!" {
		t.Fatalf("unexpected event payload: %+v", ev)
	}
}

func TestFeedbackFlowNamed(t *testing.T) {
	e, _, _ := newTestEngine(t)
	const guest = int64(802)
	onboard(t, e, guest, "Dana")
	send(t, e, guest, "✍️ Оставить отзыв")
	send(t, e, guest, "С именем")
	res := send(t, e, guest, "Great night!")
	ev, ok := res.Notification.(queue.FeedbackReceivedEvent)
	if !ok {
		t.Fatalf("notification = %T, want FeedbackReceivedEvent", res.Notification)
	}
	if ev.Author != "Dana" {
		t.Fatalf("author = %q, want the guest's name", ev.Author)
	}
}

func TestAllergyFlow(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(803)
	onboard(t, e, guest, "Dana")
	send(t, e, guest, "🤖 AI-меню")
	wantState(t, sessions, guest, model.StateAllergyInput)

	res := send(t, e, guest, "молоко, орехи")
	wantKey(t, res, locale.KeyFilteredMenu)
	wantState(t, sessions, guest, model.StateMenu)
	if res.Notification != nil {
		t.Fatalf("allergy flow must not emit notifications")
	}

	// "нет" means no allergies, so the full menu qualifies.
	send(t, e, guest, "🤖 AI-меню")
	res = send(t, e, guest, "нет")
	wantKey(t, res, locale.KeyFilteredMenu)
}

func TestEnglishBookingUsesEnglishMenu(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(900)
	send(t, e, guest, "🇬🇧 English")
	send(t, e, guest, "John")
	res := send(t, e, guest, "🪑 Book a table")
	wantKey(t, res, locale.KeyAskDate)
	wantState(t, sessions, guest, model.StateAwaitingDate)
	snap, _ := sessions.Snapshot(guest)
	if snap.Language != model.LangEN {
		t.Fatalf("language = %q, want en", snap.Language)
	}
}

func TestUnknownMenuInputReprompts(t *testing.T) {
	e, sessions, _ := newTestEngine(t)
	const guest = int64(901)
	onboard(t, e, guest, "Dana")
	res := send(t, e, guest, "сделай что-нибудь")
	wantKey(t, res, locale.KeyUnknownCommand)
	wantState(t, sessions, guest, model.StateMenu)
}
