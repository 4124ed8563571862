package queue

import "fmt"

// Staff notifications keep the short single-line shape the floor staff
// are used to reading on their phones. The text is intentionally not
// localized per guest; it goes to one staff channel.

// FormatBooking renders a confirmed reservation for the staff channel.
func FormatBooking(ev BookingConfirmedEvent) string {
	return fmt.Sprintf("Новая бронь: %s %s, %d guests, zone %s, table %s by %s",
		ev.Date, ev.Time, ev.PartySize, ev.Zone, ev.Table, ev.GuestName)
}

// FormatMusic renders a music request for the staff channel.
func FormatMusic(ev MusicRequestedEvent) string {
	return fmt.Sprintf("Заказ музыки: %s | DJ: %s | by %s", ev.Track, ev.DJ, ev.GuestName)
}

// FormatFeedback renders guest feedback for the staff channel.
func FormatFeedback(ev FeedbackReceivedEvent) string {
	return fmt.Sprintf("Отзыв от %s: %s", ev.Author, ev.Text)
}
