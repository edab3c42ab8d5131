package bot

import (
	"context"
	"fmt"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/service"
)

// Уведомления клиентам о решениях по учёту. Вызываются и из диалогов, и из HTTP API;
// ошибка доставки только пишется в лог.

// PaymentConfirmed сообщает клиенту о подтверждённой оплате и новом долге
func (b *Bot) PaymentConfirmed(ctx context.Context, res *service.PaymentResult) {
	if res.Client.TelegramID == 0 {
		return
	}
	b.send(ctx, res.Client.TelegramID, fmt.Sprintf("To'lovingiz (%s) tasdiqlandi. Joriy qarz: %s", money(res.Payment.Amount), money(res.Client.Debt)), nil)
}

// PaymentRejected сообщает клиенту об отклонённой оплате
func (b *Bot) PaymentRejected(ctx context.Context, res *service.PaymentResult) {
	if res.Client.TelegramID == 0 {
		return
	}
	b.send(ctx, res.Client.TelegramID, fmt.Sprintf("To'lovingiz (%s) rad etildi.", money(res.Payment.Amount)), nil)
}

// OrderDeleted сообщает владельцу удалённого заказа его долг после отката
func (b *Bot) OrderDeleted(ctx context.Context, o *domain.Order) {
	client, err := b.clients.ByID(ctx, o.UserID)
	if err != nil {
		b.logger.WithError(err).WithField("order_id", o.ID).Debug("deleted order owner not found")
		return
	}
	b.send(ctx, client.TelegramID, fmt.Sprintf("Buyurtma %d o'chirildi. Joriy qarz: %s", o.ID, money(client.Debt)), nil)
}
