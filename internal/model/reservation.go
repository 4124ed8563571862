package model

import "time"

// Reservation is a committed booking. It is created only by a
// successful confirmation transition and is never mutated afterwards;
// the only way it goes away is an explicit cancellation.
//
// Fields:
//  ID        – identifier assigned by the availability model.
//  TableID   – booked table, unique within the venue.
//  ZoneID    – zone the table belongs to; denormalized for notifications.
//  Date      – booking date, YYYY-MM-DD.
//  Time      – booking time, HH:MM. Date and Time together form the
//              exact slot key; there is no interval semantics.
//  PartySize – number of guests.
//  GuestID   – platform user id of the guest who booked.
//  GuestName – display name captured at the start of the conversation.
//  CreatedAt – UTC creation timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`
	TableID   string    `json:"table_id"`
	ZoneID    string    `json:"zone_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize int       `json:"party_size"`
	GuestID   int64     `json:"guest_id"`
	GuestName string    `json:"guest_name"`
	CreatedAt time.Time `json:"created_at"`
}
