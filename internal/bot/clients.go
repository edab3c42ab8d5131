package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
)

var fieldByLabel = map[string]service.Field{
	BtnUsername:  service.FieldUsername,
	BtnFirstName: service.FieldFirstName,
	BtnLastName:  service.FieldLastName,
	BtnSavedName: service.FieldSavedName,
	BtnDebt:      service.FieldDebt,
	BtnRole:      service.FieldRole,
}

func fieldKeyboard() *Keyboard {
	return keyboard(
		[]string{BtnUsername, BtnFirstName, BtnLastName},
		[]string{BtnSavedName, BtnDebt, BtnRole},
		[]string{BtnDiscount, BtnDeleteClient},
		[]string{BtnMainMenu},
	)
}

func yesNoKeyboard() *Keyboard {
	return keyboard([]string{BtnYes, BtnNo}, []string{BtnMainMenu})
}

func (b *Bot) onFieldChosen(ctx context.Context, req *request, s session.ChoosingField) error {
	switch req.Text {
	case BtnDiscount:
		b.states.Set(req.UserID, session.ApplyingDiscount{ClientID: s.ClientID})
		b.send(ctx, req.ChatID, txtEnterDiscount, keyboard([]string{BtnMainMenu}))
		return nil
	case BtnDeleteClient:
		b.states.Set(req.UserID, session.ConfirmingClientDeletion{ClientID: s.ClientID})
		b.send(ctx, req.ChatID, fmt.Sprintf("Siz haqiqatan ham mijozni o'chirishni xohlaysizmi? (%d)", s.ClientID), yesNoKeyboard())
		return nil
	}
	field, ok := fieldByLabel[req.Text]
	if !ok {
		b.send(ctx, req.ChatID, txtBadField, fieldKeyboard())
		return nil
	}
	b.states.Set(req.UserID, session.EditingField{ClientID: s.ClientID, Field: field})
	if field == service.FieldRole {
		b.send(ctx, req.ChatID, txtChooseRole, keyboard([]string{BtnAdmin, BtnClient}, []string{BtnMainMenu}))
		return nil
	}
	b.send(ctx, req.ChatID, fmt.Sprintf("Yangi %s kiriting:", strings.ToLower(req.Text)), keyboard([]string{BtnMainMenu}))
	return nil
}

// onFieldValue запись поля; при неверном долге или роли остаёмся в том же шаге
func (b *Bot) onFieldValue(ctx context.Context, req *request, s session.EditingField) error {
	var (
		text string
		err  error
	)
	switch s.Field {
	case service.FieldDebt:
		debt, perr := parseAmount(req.Text)
		if perr != nil || debt < 0 || debt > service.MaxAmount {
			b.send(ctx, req.ChatID, txtBadDebt, nil)
			return nil
		}
		_, err = b.clients.SetDebt(ctx, s.ClientID, debt)
		text = fmt.Sprintf("Qarz o`zgartirildi %s.", money(debt))
	case service.FieldRole:
		if req.Text != BtnAdmin && req.Text != BtnClient {
			b.send(ctx, req.ChatID, txtBadRole, nil)
			return nil
		}
		_, err = b.clients.UpdateProfile(ctx, s.ClientID, s.Field, req.Text)
		text = fmt.Sprintf("User type o`zgartirildi '%s'.", strings.ToLower(req.Text))
	default:
		_, err = b.clients.UpdateProfile(ctx, s.ClientID, s.Field, req.Text)
		text = fmt.Sprintf("%s o`zgartirildi '%s'.", fieldTitle(s.Field), req.Text)
	}
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, txtClientNotFound, nil)
		return b.done(ctx, req)
	}
	if err != nil {
		return err
	}
	req.log.WithField("client_id", s.ClientID).WithField("field", s.Field).Info("client updated")
	b.send(ctx, req.ChatID, text, nil)
	return b.done(ctx, req)
}

func fieldTitle(f service.Field) string {
	for label, field := range fieldByLabel {
		if field == f {
			return label
		}
	}
	return string(f)
}

func (b *Bot) onDiscount(ctx context.Context, req *request, s session.ApplyingDiscount) error {
	spec, err := service.ParseDiscount(req.Text)
	if err != nil {
		b.send(ctx, req.ChatID, txtBadDiscount, nil)
		return nil
	}
	res, err := b.orders.ApplyDiscount(ctx, s.ClientID, spec)
	switch {
	case errors.Is(err, service.ErrDiscountExceedsDebt):
		client, cerr := b.clients.ByID(ctx, s.ClientID)
		if cerr != nil {
			return cerr
		}
		b.send(ctx, req.ChatID, fmt.Sprintf("Chegirma qarzdan oshmasligi kerak. Joriy qarz: %s", money(client.Debt)), nil)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		b.send(ctx, req.ChatID, txtClientNotFound, nil)
		return b.done(ctx, req)
	case err != nil:
		return err
	}
	req.log.WithField("client_id", s.ClientID).WithField("amount", res.Amount).Info("discount applied")
	text := fmt.Sprintf("Chegirma: %s\nYangi qarz: %s", money(res.Amount), money(res.Debt))
	b.send(ctx, req.ChatID, text, nil)
	if client, err := b.clients.ByID(ctx, s.ClientID); err == nil {
		b.send(ctx, client.TelegramID, "Sizga chegirma qilindi.\n"+text, nil)
	}
	return b.done(ctx, req)
}

// onClientDeletion удалённого клиента предупреждаем до удаления, ошибка доставки не мешает
func (b *Bot) onClientDeletion(ctx context.Context, req *request, s session.ConfirmingClientDeletion) error {
	switch req.Text {
	case BtnYes:
	case BtnNo:
		b.send(ctx, req.ChatID, txtClientKept, nil)
		return b.done(ctx, req)
	default:
		b.send(ctx, req.ChatID, txtChooseYesNo, yesNoKeyboard())
		return nil
	}
	client, err := b.clients.ByID(ctx, s.ClientID)
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, txtClientNotFound, nil)
		return b.done(ctx, req)
	}
	if err != nil {
		return err
	}
	b.send(ctx, client.TelegramID, txtYouWereDeleted, nil)
	if _, err := b.clients.Delete(ctx, client.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			b.send(ctx, req.ChatID, txtClientNotFound, nil)
			return b.done(ctx, req)
		}
		return err
	}
	req.log.WithField("client_id", client.ID).Info("client deleted")
	b.send(ctx, req.ChatID, fmt.Sprintf("Mijoz (%d) muvaffaqiyatli o'chirildi.", client.ID), nil)
	if client.TelegramID == req.UserID {
		// администратор удалил сам себя
		b.states.Reset(req.UserID)
		b.send(ctx, req.ChatID, txtNoProfile, nil)
		return nil
	}
	return b.done(ctx, req)
}
