package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DeliverFunc sends a formatted notification to the staff channel. It
// is implemented by the chat transport.
type DeliverFunc func(text string) error

// StartStaffNotifier consumes the three notification queues and
// forwards formatted text to the staff channel. It runs a reconnect
// loop forever: broker outages are retried with capped backoff, and a
// failed delivery is requeued so notifications are delivered at least
// once. Call it from a goroutine.
func StartStaffNotifier(url string, deliver DeliverFunc, log *zap.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("staff-notifier: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, deliver, log); err != nil {
			log.Warn("staff-notifier: consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, deliver DeliverFunc, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Warn("staff-notifier: set QoS failed", zap.Error(err))
	}

	// Fan the three queues into one channel. When the connection drops
	// every consume channel closes, the WaitGroup drains, and the merged
	// channel closes so the loop below can trigger a reconnect.
	queues := []string{BookingConfirmedQueue, MusicRequestedQueue, FeedbackReceivedQueue}
	merged := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				merged <- d
			}
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for d := range merged {
		text, err := formatDelivery(d)
		if err != nil {
			// Malformed payloads can never succeed; drop without requeue.
			log.Error("staff-notifier: bad payload", zap.String("queue", d.RoutingKey), zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		if err := deliver(text); err != nil {
			// Requeue for another attempt; at-least-once is the target.
			log.Warn("staff-notifier: delivery failed, requeueing", zap.Error(err))
			_ = d.Nack(false, true)
			time.Sleep(time.Second)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// formatDelivery picks the formatter by routing key, which equals the
// queue name on the default exchange.
func formatDelivery(d amqp.Delivery) (string, error) {
	switch d.RoutingKey {
	case BookingConfirmedQueue:
		var ev BookingConfirmedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal booking event: %w", err)
		}
		return FormatBooking(ev), nil
	case MusicRequestedQueue:
		var ev MusicRequestedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal music event: %w", err)
		}
		return FormatMusic(ev), nil
	case FeedbackReceivedQueue:
		var ev FeedbackReceivedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal feedback event: %w", err)
		}
		return FormatFeedback(ev), nil
	default:
		return "", fmt.Errorf("unexpected routing key %q", d.RoutingKey)
	}
}
