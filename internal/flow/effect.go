// Package flow implements the per-guest conversation state machine:
// language selection, the main menu, the table-booking flow with its
// availability checks and atomic commit, and the music / feedback /
// AI-menu sibling flows. The engine performs no chat I/O itself; every
// transition returns a description of effects for the transport to
// execute.
package flow

import (
	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/model"
)

// Reply describes one outbound guest message. The engine emits opaque
// locale keys with arguments; the transport renders them at send time.
type Reply struct {
	Lang           model.Language
	Key            locale.Key
	Args           []interface{}
	Keyboard       [][]string // reply-keyboard rows; nil keeps the current keyboard
	RemoveKeyboard bool       // drop the custom keyboard
}

// Result is the full outcome of processing one inbound message: the
// replies to send and, only on a confirmation transition, a single
// notification event for the dispatcher.
type Result struct {
	Replies      []Reply
	Notification interface{} // one of the queue event types, or nil
}

func reply(lang model.Language, key locale.Key, args ...interface{}) Reply {
	return Reply{Lang: lang, Key: key, Args: args}
}

func (r Reply) withKeyboard(rows [][]string) Reply {
	r.Keyboard = rows
	return r
}

func (r Reply) removingKeyboard() Reply {
	r.RemoveKeyboard = true
	return r
}
