// Package repository persists committed reservations to MySQL. The
// availability model owns all booking decisions; this layer is a plain
// write-through archive so a process restart does not forget what was
// booked.
package repository

import (
	"context"
	"database/sql"

	"github.com/ermekov/club-table-reservation/internal/model"
)

// ReservationRepo provides archive operations over the reservations
// table. IDs are assigned by the availability model, not the database,
// so the in-memory state and the archive always agree on identifiers.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a repo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// EnsureSchema creates the reservations table when it does not exist.
// The (table_id, booking_date, booking_time) unique key is a second
// line of defence behind the in-memory invariant.
func (r *ReservationRepo) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS reservations (
        id BIGINT UNSIGNED NOT NULL,
        table_id VARCHAR(32) NOT NULL,
        zone_id VARCHAR(32) NOT NULL,
        booking_date CHAR(10) NOT NULL,
        booking_time CHAR(5) NOT NULL,
        party_size INT NOT NULL,
        guest_id BIGINT NOT NULL,
        guest_name VARCHAR(128) NOT NULL,
        created_at DATETIME NOT NULL,
        PRIMARY KEY (id),
        UNIQUE KEY uniq_slot (table_id, booking_date, booking_time)
    ) CHARACTER SET utf8mb4`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

// Create inserts a committed reservation.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
        (id, table_id, zone_id, booking_date, booking_time, party_size, guest_id, guest_name, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		res.ID, res.TableID, res.ZoneID, res.Date, res.Time,
		res.PartySize, res.GuestID, res.GuestName, res.CreatedAt.UTC(),
	)
	return err
}

// Delete removes a reservation by id. Deleting an absent id succeeds;
// cancellation is idempotent all the way down.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// ListAll returns every archived reservation ordered by id. Called
// once at startup to warm the availability model.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT id, table_id, zone_id, booking_date, booking_time, party_size, guest_id, guest_name, created_at
               FROM reservations ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(
			&res.ID, &res.TableID, &res.ZoneID, &res.Date, &res.Time,
			&res.PartySize, &res.GuestID, &res.GuestName, &res.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
