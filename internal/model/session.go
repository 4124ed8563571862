package model

import "time"

// Language identifies the guest's chosen conversation language.
// Only Russian and English packs are shipped; adding a language is a
// locale-pack change, not a model change.
type Language string

const (
	LangRU Language = "ru" // Russian
	LangEN Language = "en" // English
)

// FlowState enumerates every position a guest's conversation can be in.
// The booking states are strictly linear: each one is reachable only
// from its predecessor, and a cancel command returns the guest to the
// main menu from any non-terminal state.
type FlowState int

const (
	StateLanguage FlowState = iota      // waiting for the guest to pick a language; zero value on purpose
	StateAskName                        // waiting for a display name
	StateMenu                           // main menu; idle with respect to the booking flow
	StateAwaitingDate                   // booking: waiting for YYYY-MM-DD
	StateAwaitingTime                   // booking: waiting for HH:MM
	StateAwaitingPartySize              // booking: waiting for guest count
	StateAwaitingZone                   // booking: waiting for a zone name
	StateAwaitingTable                  // booking: waiting for a table in the chosen zone
	StateAwaitingConfirmation           // booking: waiting for yes/no
	StateCommitted                      // booking committed; next input starts a fresh flow
	StateMusicTitle                     // music flow: waiting for a track title
	StateFeedbackChoice                 // feedback flow: anonymous or named
	StateFeedbackText                   // feedback flow: waiting for the text
	StateAllergyInput                   // AI menu flow: waiting for allergy list
)

// String returns a stable name for logging and test output.
func (s FlowState) String() string {
	switch s {
	case StateLanguage:
		return "language"
	case StateAskName:
		return "ask_name"
	case StateMenu:
		return "menu"
	case StateAwaitingDate:
		return "awaiting_date"
	case StateAwaitingTime:
		return "awaiting_time"
	case StateAwaitingPartySize:
		return "awaiting_party_size"
	case StateAwaitingZone:
		return "awaiting_zone"
	case StateAwaitingTable:
		return "awaiting_table"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateCommitted:
		return "committed"
	case StateMusicTitle:
		return "music_title"
	case StateFeedbackChoice:
		return "feedback_choice"
	case StateFeedbackText:
		return "feedback_text"
	case StateAllergyInput:
		return "allergy_input"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state ends the booking flow. Cancel
// commands are ignored in terminal states because there is nothing to
// abandon.
func (s FlowState) Terminal() bool { return s == StateCommitted }

// Draft holds the in-progress reservation fields collected step by
// step. Fields are populated strictly in state-machine order: Time is
// never set before Date, Table never before Zone, and so on. A failed
// validation never touches the draft.
type Draft struct {
	Date      string // normalized YYYY-MM-DD
	Time      string // normalized HH:MM, 24-hour
	PartySize int    // number of guests, 1..largest table capacity
	ZoneID    string // configured zone identifier
	TableID   string // table identifier within ZoneID
}

// Empty reports whether no booking field has been collected yet.
func (d Draft) Empty() bool {
	return d.Date == "" && d.Time == "" && d.PartySize == 0 && d.ZoneID == "" && d.TableID == ""
}

// Session is the one mutable record kept per guest identity. It is
// created lazily on first contact and mutated only by the flow engine
// while the store's per-session lock is held.
type Session struct {
	GuestID      int64     // platform user id
	Language     Language  // chosen language; empty until StateLanguage completes
	DisplayName  string    // how the guest asked to be addressed
	State        FlowState // current position in the conversation
	Draft        Draft     // in-progress reservation fields
	FeedbackAnon bool      // feedback flow: submit without the display name
	LastActivity time.Time // UTC timestamp of the last inbound message; used for idle GC
}
