package availability

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// fakeArchive records calls in memory and can be told to fail.
type fakeArchive struct {
	mu       sync.Mutex
	rows     map[uint64]model.Reservation
	failNext bool
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{rows: make(map[uint64]model.Reservation)}
}

func (f *fakeArchive) Create(_ context.Context, r *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("archive down")
	}
	f.rows[r.ID] = *r
	return nil
}

func (f *fakeArchive) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeArchive) ListAll(_ context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func TestTryCommitSingleWinner(t *testing.T) {
	m := New(venue.Default(), nil)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, conflicts int
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(guest int64) {
			defer wg.Done()
			_, err := m.TryCommit(ctx, "VIP", "VIP-1", "2025-07-20", "21:30", 4, guest, "guest")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrSlotTaken):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", wins)
	}
	if conflicts != workers-1 {
		t.Fatalf("expected %d conflicts, got %d", workers-1, conflicts)
	}
}

func TestListExcludesCommittedAndCancelRestores(t *testing.T) {
	m := New(venue.Default(), nil)
	ctx := context.Background()

	free, err := m.ListFreeTables("VIP", "2025-07-20", "21:30")
	if err != nil {
		t.Fatalf("ListFreeTables: %v", err)
	}
	if len(free) != 3 {
		t.Fatalf("expected 3 free VIP tables, got %d", len(free))
	}

	r, err := m.TryCommit(ctx, "VIP", "VIP-1", "2025-07-20", "21:30", 4, 7, "Aida")
	if err != nil {
		t.Fatalf("TryCommit: %v", err)
	}
	free, _ = m.ListFreeTables("VIP", "2025-07-20", "21:30")
	for _, tb := range free {
		if tb.ID == "VIP-1" {
			t.Fatalf("VIP-1 should not be listed after commit")
		}
	}

	// A different slot stays unaffected; the key is exact, not an interval.
	other, _ := m.ListFreeTables("VIP", "2025-07-20", "22:00")
	if len(other) != 3 {
		t.Fatalf("other slot should be fully free, got %d tables", len(other))
	}

	if err := m.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	free, _ = m.ListFreeTables("VIP", "2025-07-20", "21:30")
	if len(free) != 3 {
		t.Fatalf("expected VIP-1 back after cancel, got %d tables", len(free))
	}
}

func TestCancelIdempotent(t *testing.T) {
	m := New(venue.Default(), nil)
	ctx := context.Background()
	if err := m.Cancel(ctx, 12345); err != nil {
		t.Fatalf("cancelling an absent id must be a no-op, got %v", err)
	}
	r, err := m.TryCommit(ctx, "Bar", "BAR-1", "2025-07-20", "21:30", 2, 7, "Aida")
	if err != nil {
		t.Fatalf("TryCommit: %v", err)
	}
	if err := m.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if err := m.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("second cancel must also succeed, got %v", err)
	}
}

func TestListOrderDeterministic(t *testing.T) {
	m := New(venue.Default(), nil)
	a, _ := m.ListFreeTables("Balcony", "2025-07-20", "21:30")
	b, _ := m.ListFreeTables("Balcony", "2025-07-20", "21:30")
	if len(a) != len(b) {
		t.Fatalf("repeated listings differ in length")
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("repeated listings differ at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
	want := []string{"B-1", "B-2", "B-3", "B-4"}
	for i, tb := range a {
		if tb.ID != want[i] {
			t.Fatalf("expected configured order %v, got %s at %d", want, tb.ID, i)
		}
	}
}

func TestUnknownZoneAndTable(t *testing.T) {
	m := New(venue.Default(), nil)
	if _, err := m.ListFreeTables("Rooftop", "2025-07-20", "21:30"); err == nil {
		t.Fatalf("expected error for unknown zone")
	}
	_, err := m.TryCommit(context.Background(), "VIP", "B-1", "2025-07-20", "21:30", 2, 7, "Aida")
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestArchiveWriteThrough(t *testing.T) {
	arch := newFakeArchive()
	m := New(venue.Default(), arch)
	ctx := context.Background()

	r, err := m.TryCommit(ctx, "VIP", "VIP-2", "2025-07-20", "21:30", 4, 7, "Aida")
	if err != nil {
		t.Fatalf("TryCommit: %v", err)
	}
	if _, ok := arch.rows[r.ID]; !ok {
		t.Fatalf("reservation not written to archive")
	}
	if err := m.Cancel(ctx, r.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, ok := arch.rows[r.ID]; ok {
		t.Fatalf("reservation not deleted from archive")
	}
}

func TestArchiveFailureRollsBack(t *testing.T) {
	arch := newFakeArchive()
	arch.failNext = true
	m := New(venue.Default(), arch)
	ctx := context.Background()

	if _, err := m.TryCommit(ctx, "VIP", "VIP-1", "2025-07-20", "21:30", 4, 7, "Aida"); err == nil {
		t.Fatalf("expected commit to fail while archive is down")
	}
	// The slot must still be free: the model never claims a booking it
	// could not persist.
	free, _ := m.ListFreeTables("VIP", "2025-07-20", "21:30")
	if len(free) != 3 {
		t.Fatalf("slot should remain free after archive failure, got %d tables", len(free))
	}
	if _, err := m.TryCommit(ctx, "VIP", "VIP-1", "2025-07-20", "21:30", 4, 7, "Aida"); err != nil {
		t.Fatalf("retry after archive recovery: %v", err)
	}
}

func TestLoadWarmsFromArchive(t *testing.T) {
	arch := newFakeArchive()
	arch.rows[5] = model.Reservation{
		ID: 5, TableID: "VIP-1", ZoneID: "VIP",
		Date: "2025-07-20", Time: "21:30", PartySize: 4, GuestID: 7, GuestName: "Aida",
	}
	// A row for a table that no longer exists must be skipped, not fatal.
	arch.rows[6] = model.Reservation{
		ID: 6, TableID: "GONE-1", ZoneID: "VIP",
		Date: "2025-07-20", Time: "21:30", PartySize: 2, GuestID: 8, GuestName: "Bek",
	}
	m := New(venue.Default(), arch)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	free, _ := m.ListFreeTables("VIP", "2025-07-20", "21:30")
	for _, tb := range free {
		if tb.ID == "VIP-1" {
			t.Fatalf("archived reservation should occupy VIP-1")
		}
	}
	// New ids must not collide with archived ones.
	r, err := m.TryCommit(context.Background(), "VIP", "VIP-2", "2025-07-20", "21:30", 4, 9, "Dana")
	if err != nil {
		t.Fatalf("TryCommit: %v", err)
	}
	if r.ID <= 5 {
		t.Fatalf("expected id above archived maximum, got %d", r.ID)
	}
}
