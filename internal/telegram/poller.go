package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ledgerbot/internal/bot"
)

// Handler получатель входящих событий
type Handler interface {
	HandleMessage(ctx context.Context, m bot.Message)
	HandleCallback(ctx context.Context, c bot.Callback)
}

// Poller long polling; события обрабатываются строго по одному
type Poller struct {
	api     API
	handler Handler
	timeout int
	logger  *log.Logger
}

func NewPoller(api API, handler Handler, timeout int, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Poller{api: api, handler: handler, timeout: timeout, logger: logger}
}

// Run читает обновления до отмены ctx
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)
	defer p.api.StopReceivingUpdates()

	p.logger.Info("polling telegram updates")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.dispatch(ctx, update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		m, ok := toMessage(update.Message)
		if !ok {
			p.logger.WithField("telegram_update", update.UpdateID).Debug("skip message without sender")
			return
		}
		p.handler.HandleMessage(ctx, m)
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		// снимаем "часики" с кнопки до обработки
		if _, err := p.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			p.logger.WithError(err).Warn("answer callback failed")
		}
		c, ok := toCallback(q)
		if !ok {
			return
		}
		p.handler.HandleCallback(ctx, c)
	}
}

func toMessage(m *tgbotapi.Message) (bot.Message, bool) {
	if m.From == nil || m.Chat == nil {
		return bot.Message{}, false
	}
	return bot.Message{
		ChatID:    m.Chat.ID,
		UserID:    m.From.ID,
		Username:  m.From.UserName,
		FirstName: m.From.FirstName,
		LastName:  m.From.LastName,
		Text:      m.Text,
	}, true
}

func toCallback(q *tgbotapi.CallbackQuery) (bot.Callback, bool) {
	if q.From == nil {
		return bot.Callback{}, false
	}
	chatID := q.From.ID
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}
	return bot.Callback{ID: q.ID, ChatID: chatID, UserID: q.From.ID, Data: q.Data}, true
}
