// Package transport adapts the Telegram Bot API to the flow engine.
// It owns all chat I/O: the long-polling update loop, rendering locale
// keys into text, reply keyboards, and delivering staff notifications.
package transport

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ermekov/club-table-reservation/internal/flow"
	"github.com/ermekov/club-table-reservation/internal/locale"
	"github.com/ermekov/club-table-reservation/internal/model"
	"github.com/ermekov/club-table-reservation/internal/queue"
	"github.com/ermekov/club-table-reservation/internal/ratelimit"
)

// Bot runs the guest-facing Telegram side of the service.
type Bot struct {
	api         *tgbotapi.BotAPI
	engine      *flow.Engine
	dispatcher  *queue.Dispatcher
	limiter     *ratelimit.Limiter
	staffChatID int64
	log         *zap.Logger
}

// New connects to the Telegram Bot API with the given token.
func New(token string, engine *flow.Engine, limiter *ratelimit.Limiter, staffChatID int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{
		api:         api,
		engine:      engine,
		limiter:     limiter,
		staffChatID: staffChatID,
		log:         log,
	}, nil
}

// SetDispatcher attaches the notification dispatcher. Set after
// construction because the dispatcher's direct-delivery path needs the
// bot itself.
func (b *Bot) SetDispatcher(d *queue.Dispatcher) { b.dispatcher = d }

// DeliverToStaff sends one formatted notification line to the staff
// group chat. Used both by the queue consumer and by the dispatcher's
// direct fallback.
func (b *Bot) DeliverToStaff(text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(b.staffChatID, text))
	return err
}

// Run consumes updates until the context is cancelled. Updates are
// handled on the polling goroutine; ordering within one guest's
// message stream is therefore trivially preserved, and the session
// store's per-guest lock covers any future fan-out.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	guestID := msg.From.ID
	chatID := msg.Chat.ID

	if !b.limiter.Allow(ctx, guestID) {
		b.send(chatID, locale.T(model.LangEN, locale.KeySlowDown), nil, false)
		return
	}

	res, err := b.engine.HandleMessage(ctx, guestID, msg.Text)
	if err != nil {
		// The engine already attached a generic failure reply and left
		// the session untouched; nothing more to do than log.
		b.log.Error("engine error", zap.Int64("guest_id", guestID), zap.Error(err))
	}
	for _, r := range res.Replies {
		b.send(chatID, locale.T(r.Lang, r.Key, r.Args...), r.Keyboard, r.RemoveKeyboard)
	}
	if res.Notification != nil && b.dispatcher != nil {
		b.dispatcher.Dispatch(res.Notification)
	}
}

// send renders one outbound message with its keyboard effect applied.
func (b *Bot) send(chatID int64, text string, keyboard [][]string, removeKeyboard bool) {
	m := tgbotapi.NewMessage(chatID, text)
	switch {
	case len(keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(keyboard))
		for _, row := range keyboard {
			btns := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				btns = append(btns, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, btns)
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		m.ReplyMarkup = kb
	case removeKeyboard:
		m.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}
	if _, err := b.api.Send(m); err != nil {
		b.log.Warn("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
