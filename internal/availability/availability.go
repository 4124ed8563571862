// Package availability is the authoritative source of truth for table
// occupancy. It is the only component allowed to create or remove
// reservations, and it enforces the one invariant that matters: at
// most one non-cancelled reservation per (table, date, time).
package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

// ErrSlotTaken is reported by TryCommit when another reservation
// already holds the requested (table, date, time) slot.
var ErrSlotTaken = errors.New("table already reserved for this slot")

// ErrUnknownTable is reported when the requested table does not exist
// in the requested zone.
var ErrUnknownTable = errors.New("unknown table")

// Archive persists committed reservations outside process memory. The
// in-memory state stays authoritative; the archive exists so a restart
// can reload what was booked. A nil Archive disables persistence.
type Archive interface {
	Create(ctx context.Context, r *model.Reservation) error
	Delete(ctx context.Context, id uint64) error
	ListAll(ctx context.Context) ([]model.Reservation, error)
}

// slotKey is the exact occupancy key. Date and time are normalized
// strings, so equal slots always collide in the map.
type slotKey struct {
	table string
	date  string
	time  string
}

// Model tracks all committed reservations. A single mutex serializes
// every check-and-create; booking volume for one venue never justifies
// finer sharding.
type Model struct {
	mu      sync.Mutex
	venue   *venue.Venue
	bySlot  map[slotKey]*model.Reservation
	byID    map[uint64]*model.Reservation
	nextID  uint64
	archive Archive
	now     func() time.Time
}

// New builds an empty availability model over the given venue
// topology. archive may be nil for memory-only operation.
func New(v *venue.Venue, archive Archive) *Model {
	return &Model{
		venue:   v,
		bySlot:  make(map[slotKey]*model.Reservation),
		byID:    make(map[uint64]*model.Reservation),
		nextID:  1,
		archive: archive,
		now:     time.Now,
	}
}

// Load replays archived reservations into memory. Called once at
// startup, before any guest traffic. Archived rows referring to tables
// no longer in the venue config are skipped rather than failing the
// boot.
func (m *Model) Load(ctx context.Context) error {
	if m.archive == nil {
		return nil
	}
	rows, err := m.archive.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load reservation archive: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range rows {
		r := rows[i]
		if _, ok := m.venue.TableInZone(r.ZoneID, r.TableID); !ok {
			continue
		}
		key := slotKey{table: normID(r.TableID), date: r.Date, time: r.Time}
		if _, taken := m.bySlot[key]; taken {
			continue
		}
		m.bySlot[key] = &r
		m.byID[r.ID] = &r
		if r.ID >= m.nextID {
			m.nextID = r.ID + 1
		}
	}
	return nil
}

// ListFreeTables returns the zone's tables that have no reservation for
// the exact (date, time) slot, in configured zone order. The ordering
// is deterministic so repeated queries under no state change are
// stable.
func (m *Model) ListFreeTables(zoneID, date, tm string) ([]venue.Table, error) {
	z, ok := m.venue.Zone(zoneID)
	if !ok {
		return nil, fmt.Errorf("list free tables: unknown zone %q", zoneID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	free := make([]venue.Table, 0, len(z.Tables))
	for _, t := range z.Tables {
		if _, taken := m.bySlot[slotKey{table: normID(t.ID), date: date, time: tm}]; !taken {
			free = append(free, t)
		}
	}
	return free, nil
}

// TryCommit atomically checks that the slot is free and creates the
// reservation. On a collision it returns ErrSlotTaken without mutating
// anything. When an archive is configured the write-through happens
// inside the same critical section; an archive failure rolls the
// in-memory entry back so the model never claims a booking it could
// not persist.
func (m *Model) TryCommit(ctx context.Context, zoneID, tableID, date, tm string, partySize int, guestID int64, guestName string) (*model.Reservation, error) {
	t, ok := m.venue.TableInZone(zoneID, tableID)
	if !ok {
		return nil, fmt.Errorf("commit %s/%s: %w", zoneID, tableID, ErrUnknownTable)
	}
	key := slotKey{table: normID(t.ID), date: date, time: tm}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.bySlot[key]; taken {
		return nil, ErrSlotTaken
	}
	r := &model.Reservation{
		ID:        m.nextID,
		TableID:   t.ID,
		ZoneID:    zoneID,
		Date:      date,
		Time:      tm,
		PartySize: partySize,
		GuestID:   guestID,
		GuestName: guestName,
		CreatedAt: m.now().UTC(),
	}
	if m.archive != nil {
		if err := m.archive.Create(ctx, r); err != nil {
			return nil, fmt.Errorf("archive reservation: %w", err)
		}
	}
	m.bySlot[key] = r
	m.byID[r.ID] = r
	m.nextID++
	return r, nil
}

// Cancel removes a reservation by id. Cancelling an id that does not
// exist is a no-op, not an error, so staff tooling can retry freely.
// An archive delete failure is returned but the in-memory slot is
// freed regardless; the worst case is a stale archive row that the
// next startup load skips over when re-reserved.
func (m *Model) Cancel(ctx context.Context, id uint64) error {
	m.mu.Lock()
	r, ok := m.byID[id]
	if ok {
		delete(m.byID, id)
		delete(m.bySlot, slotKey{table: normID(r.TableID), date: r.Date, time: r.Time})
	}
	m.mu.Unlock()
	if !ok || m.archive == nil {
		return nil
	}
	if err := m.archive.Delete(ctx, id); err != nil {
		return fmt.Errorf("archive delete: %w", err)
	}
	return nil
}

// Reservations returns a copy of every committed reservation ordered
// by id. Used by the staff API.
func (m *Model) Reservations() []model.Reservation {
	m.mu.Lock()
	out := make([]model.Reservation, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, *r)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normID(id string) string { return strings.ToLower(strings.TrimSpace(id)) }
