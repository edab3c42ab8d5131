package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
)

func (b *Bot) cmdPay(ctx context.Context, req *request) error {
	b.states.Set(req.UserID, session.AwaitingPaymentAmount{})
	b.send(ctx, req.ChatID, fmt.Sprintf("Joriy qarz: %s\n%s", money(req.user.Debt), txtEnterPayment), keyboard([]string{BtnMainMenu}))
	return nil
}

func (b *Bot) onPaymentAmount(ctx context.Context, req *request) error {
	amount, err := parseAmount(req.Text)
	if err != nil {
		b.send(ctx, req.ChatID, txtPaymentNotDigit, nil)
		return nil
	}
	if amount <= 0 {
		b.send(ctx, req.ChatID, txtPaymentNotPos, nil)
		return nil
	}
	if amount > service.MaxAmount {
		b.send(ctx, req.ChatID, txtAmountTooLarge, nil)
		return nil
	}
	b.states.Set(req.UserID, session.AwaitingPaymentComment{Amount: amount})
	b.send(ctx, req.ChatID, txtEnterComment, keyboard([]string{BtnNoComment}, []string{BtnMainMenu}))
	return nil
}

func (b *Bot) onPaymentComment(ctx context.Context, req *request, s session.AwaitingPaymentComment) error {
	comment := req.Text
	if comment == BtnNoComment {
		comment = ""
	}
	res, err := b.payments.RecordPayment(ctx, req.user.ID, s.Amount, comment)
	if errors.Is(err, service.ErrNonPositiveAmount) || errors.Is(err, service.ErrAmountTooLarge) {
		b.states.Set(req.UserID, session.AwaitingPaymentAmount{})
		b.send(ctx, req.ChatID, txtPaymentNotPos, nil)
		return nil
	}
	if err != nil {
		return err
	}
	req.log.WithField("payment_id", res.Payment.ID).WithField("amount", res.Payment.Amount).Info("payment submitted")
	b.send(ctx, req.ChatID, txtPaymentSubmitted, nil)
	b.notifyAdmins(ctx, "Yangi to'lov:\n"+renderPayment(res.Payment, res.Client.DisplayName()), paymentButtons(res.Payment.ID), 0)
	return b.done(ctx, req)
}

func paymentButtons(paymentID int64) []InlineButton {
	return []InlineButton{
		{Text: "Tasdiqlash", Data: fmt.Sprintf("%s%d", cbConfirmPayment, paymentID)},
		{Text: "Rad etish", Data: fmt.Sprintf("%s%d", cbRejectPayment, paymentID)},
	}
}

// cmdPendingPayments повторно присылает кнопки по неподтверждённым оплатам
func (b *Bot) cmdPendingPayments(ctx context.Context, req *request) error {
	pending, err := b.payments.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		b.send(ctx, req.ChatID, txtNoPending, nil)
		return nil
	}
	for _, p := range pending {
		name := "Noma`lum"
		if u, err := b.clients.ByID(ctx, p.UserID); err == nil {
			name = u.DisplayName()
		}
		b.sendInline(ctx, req.ChatID, renderPayment(p, name), paymentButtons(p.ID))
	}
	return nil
}

// HandleCallback обрабатывает нажатие inline-кнопки
func (b *Bot) HandleCallback(ctx context.Context, c Callback) {
	req := &request{Message: Message{ChatID: c.ChatID, UserID: c.UserID, Text: c.Data}}
	req.log = b.logger.WithFields(log.Fields{
		"update_id": uuid.NewString(),
		"user_id":   c.UserID,
		"callback":  c.Data,
	})
	req.log.Debug("callback received")

	defer func() {
		if r := recover(); r != nil {
			req.log.WithField("panic", r).Error("callback handler panicked")
			b.send(ctx, req.ChatID, txtFailure, nil)
		}
	}()
	if err := b.dispatchCallback(ctx, req, c.Data); err != nil {
		req.log.WithError(err).Error("callback handler failed")
		b.send(ctx, req.ChatID, txtFailure, nil)
	}
}

// parseCallback "confirm_order_42" -> ("confirm_order_", 42)
func parseCallback(data string) (string, int64, bool) {
	for _, prefix := range []string{cbConfirmOrder, cbRejectOrder, cbConfirmPayment, cbRejectPayment} {
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
		if err != nil || id <= 0 {
			return "", 0, false
		}
		return prefix, id, true
	}
	return "", 0, false
}

func (b *Bot) dispatchCallback(ctx context.Context, req *request, data string) error {
	u, err := b.clients.ByTelegramID(ctx, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, txtNoProfile, nil)
		return nil
	}
	if err != nil {
		return err
	}
	req.user = u

	action, id, ok := parseCallback(data)
	if !ok {
		req.log.Warn("unknown callback")
		b.send(ctx, req.ChatID, txtUnknownAction, nil)
		return nil
	}
	switch action {
	case cbConfirmOrder:
		return b.onConfirmOrder(ctx, req, id)
	case cbRejectOrder:
		return b.onRejectOrder(ctx, req, id)
	}
	if !u.IsAdmin() {
		b.send(ctx, req.ChatID, txtDenied, nil)
		return nil
	}
	if action == cbConfirmPayment {
		return b.onConfirmPayment(ctx, req, id)
	}
	return b.onRejectPayment(ctx, req, id)
}

func (b *Bot) onConfirmOrder(ctx context.Context, req *request, orderID int64) error {
	receipt, err := b.orders.ConfirmOrder(ctx, orderID, req.user.ID)
	switch {
	case errors.Is(err, service.ErrAlreadyConfirmed):
		b.send(ctx, req.ChatID, txtAlreadyConfirmed, nil)
		return nil
	case errors.Is(err, service.ErrForbidden):
		b.send(ctx, req.ChatID, txtNotYourOrder, nil)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		b.send(ctx, req.ChatID, fmt.Sprintf("Buyurtma %d topilmadi.", orderID), nil)
		return nil
	case err != nil:
		return err
	}
	req.log.WithField("order_id", orderID).Info("order confirmed")
	b.send(ctx, req.ChatID, txtOrderConfirmed, nil)
	b.notifyAdmins(ctx, fmt.Sprintf("Mijoz %s buyurtmani tasdiqladi.\n\n%s", req.user.DisplayName(), renderReceipt(receipt)), nil, req.UserID)
	return nil
}

// onRejectOrder заказ остаётся неподтверждённым, администраторы получают уведомление
func (b *Bot) onRejectOrder(ctx context.Context, req *request, orderID int64) error {
	o, err := b.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, fmt.Sprintf("Buyurtma %d topilmadi.", orderID), nil)
		return nil
	}
	if err != nil {
		return err
	}
	if o.UserID != req.user.ID {
		b.send(ctx, req.ChatID, txtNotYourOrder, nil)
		return nil
	}
	if o.IsConfirmed {
		b.send(ctx, req.ChatID, txtAlreadyConfirmed, nil)
		return nil
	}
	req.log.WithField("order_id", orderID).Info("order rejected by client")
	b.send(ctx, req.ChatID, txtOrderRejected, nil)
	b.notifyAdmins(ctx, fmt.Sprintf("Mijoz %s buyurtma %d ni rad etdi.", req.user.DisplayName(), orderID), nil, req.UserID)
	return nil
}

func (b *Bot) onConfirmPayment(ctx context.Context, req *request, paymentID int64) error {
	res, err := b.payments.ConfirmPayment(ctx, paymentID)
	switch {
	case errors.Is(err, service.ErrAlreadyConfirmed):
		b.send(ctx, req.ChatID, txtPaymentDone, nil)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		b.send(ctx, req.ChatID, fmt.Sprintf("To'lov %d topilmadi.", paymentID), nil)
		return nil
	case err != nil:
		return err
	}
	req.log.WithField("payment_id", paymentID).WithField("debt", res.Client.Debt).Info("payment confirmed")
	b.send(ctx, req.ChatID, fmt.Sprintf("To'lov %d tasdiqlandi. %s qarzi: %s", paymentID, res.Client.DisplayName(), money(res.Client.Debt)), nil)
	b.PaymentConfirmed(ctx, res)
	return nil
}

func (b *Bot) onRejectPayment(ctx context.Context, req *request, paymentID int64) error {
	res, err := b.payments.RejectPayment(ctx, paymentID)
	switch {
	case errors.Is(err, service.ErrAlreadyConfirmed):
		b.send(ctx, req.ChatID, txtPaymentDone, nil)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		b.send(ctx, req.ChatID, fmt.Sprintf("To'lov %d topilmadi.", paymentID), nil)
		return nil
	case err != nil:
		return err
	}
	req.log.WithField("payment_id", paymentID).Info("payment rejected")
	b.send(ctx, req.ChatID, fmt.Sprintf("To'lov %d rad etildi.", paymentID), nil)
	b.PaymentRejected(ctx, res)
	return nil
}
