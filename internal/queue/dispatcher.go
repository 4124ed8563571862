package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher is what the chat transport hands flow notification
// effects to. With a broker configured, events go through RabbitMQ and
// the staff notifier consumes them (at-least-once). Without one,
// events are formatted and delivered directly on a best-effort retry.
// Either way dispatch is fire-and-forget: a slow or dead notification
// channel never stalls the guest-visible reply, and a delivery failure
// never rolls back a reservation.
type Dispatcher struct {
	pub    *Publisher  // nil when no broker is configured
	direct DeliverFunc // fallback path straight to the staff channel
	log    *zap.Logger
}

// NewDispatcher wires the dispatcher. direct must be non-nil; pub may
// be nil.
func NewDispatcher(pub *Publisher, direct DeliverFunc, log *zap.Logger) *Dispatcher {
	return &Dispatcher{pub: pub, direct: direct, log: log}
}

// Dispatch routes a notification event asynchronously. ev must be one
// of the event types in this package; anything else is logged and
// dropped.
func (d *Dispatcher) Dispatch(ev interface{}) {
	var queueName, text string
	switch e := ev.(type) {
	case BookingConfirmedEvent:
		queueName, text = BookingConfirmedQueue, FormatBooking(e)
	case MusicRequestedEvent:
		queueName, text = MusicRequestedQueue, FormatMusic(e)
	case FeedbackReceivedEvent:
		queueName, text = FeedbackReceivedQueue, FormatFeedback(e)
	default:
		d.log.Error("dispatcher: unknown event type", zap.Any("event", ev))
		return
	}

	go func() {
		if d.pub != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := d.pub.Publish(ctx, queueName, ev); err == nil {
				return
			}
			// Broker unreachable; fall through to direct delivery so the
			// staff still hear about it.
		}
		for attempt := 0; attempt < 3; attempt++ {
			if err := d.direct(text); err == nil {
				return
			} else if attempt == 2 {
				d.log.Error("dispatcher: direct delivery failed", zap.String("queue", queueName), zap.Error(err))
			}
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
	}()
}
