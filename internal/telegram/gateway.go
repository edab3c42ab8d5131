// Package telegram связывает бота с Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ledgerbot/internal/bot"
)

// API часть *tgbotapi.BotAPI, которой пользуются шлюз и поллер
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Connect авторизуется по токену
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = debug
	return api, nil
}

// Gateway отправка сообщений от имени бота
type Gateway struct {
	api API
}

func NewGateway(api API) *Gateway {
	return &Gateway{api: api}
}

var _ bot.Notifier = (*Gateway)(nil)

func (g *Gateway) SendText(ctx context.Context, chatID int64, text string, kb *bot.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil && len(kb.Rows) > 0 {
		msg.ReplyMarkup = replyKeyboard(kb)
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

func (g *Gateway) SendInline(ctx context.Context, chatID int64, text string, buttons []bot.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = inlineKeyboard(buttons)
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("send inline to %d: %w", chatID, err)
	}
	return nil
}

// SetCommands меню команд клиента telegram
func (g *Gateway) SetCommands(commands []bot.Command) error {
	list := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, c := range commands {
		list = append(list, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	if _, err := g.api.Request(tgbotapi.NewSetMyCommands(list...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

func replyKeyboard(kb *bot.Keyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.Rows))
	for _, r := range kb.Rows {
		row := make([]tgbotapi.KeyboardButton, 0, len(r))
		for _, label := range r {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}

// inlineKeyboard все кнопки в одну строку
func inlineKeyboard(buttons []bot.InlineButton) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}
