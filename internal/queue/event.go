// Package queue defines the staff notification pipeline: event
// payloads, the RabbitMQ publisher/consumer pair, and the dispatcher
// the flow effects go through. Delivery is at-least-once; the
// reservation itself remains the durable record of truth.
package queue

// Queue names. All three are durable so notifications survive a broker
// restart.
const (
	BookingConfirmedQueue = "booking.confirmed"
	MusicRequestedQueue   = "music.requested"
	FeedbackReceivedQueue = "feedback.received"
)

// BookingConfirmedEvent is published when a reservation commits. It
// carries everything the staff message needs so consumers never query
// the booking state.
type BookingConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	GuestID       int64  `json:"guest_id"`
	GuestName     string `json:"guest_name"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	Zone          string `json:"zone"`
	Table         string `json:"table"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// MusicRequestedEvent is published when a guest orders a track.
type MusicRequestedEvent struct {
	GuestName   string `json:"guest_name"`
	Track       string `json:"track"`
	DJ          string `json:"dj"`
	RequestedAt string `json:"requested_at"`
}

// FeedbackReceivedEvent is published when a guest leaves feedback.
// Author is either the display name or the localized anonymous label.
type FeedbackReceivedEvent struct {
	Author     string `json:"author"`
	Text       string `json:"text"`
	ReceivedAt string `json:"received_at"`
}
