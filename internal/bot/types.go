// Package bot ведёт диалоги администраторов и клиентов и вызывает учёт.
package bot

import "context"

//go:generate mockgen -destination=mocks/notifier_mock.go -package=mocks ledgerbot/internal/bot Notifier

// Message входящее текстовое сообщение
type Message struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Text      string
}

// Callback нажатие inline-кнопки; Data вида "<action>_<id>"
type Callback struct {
	ID     string
	ChatID int64
	UserID int64
	Data   string
}

// Keyboard reply-клавиатура: строки подписей
type Keyboard struct {
	Rows [][]string
}

// InlineButton кнопка под сообщением
type InlineButton struct {
	Text string
	Data string
}

// Notifier исходящие сообщения. Ошибка доставки не отменяет уже записанную операцию.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendInline(ctx context.Context, chatID int64, text string, buttons []InlineButton) error
}

func keyboard(rows ...[]string) *Keyboard {
	return &Keyboard{Rows: rows}
}

// column клавиатура по одной кнопке в строке
func column(labels ...string) *Keyboard {
	kb := &Keyboard{}
	for _, l := range labels {
		kb.Rows = append(kb.Rows, []string{l})
	}
	return kb
}
