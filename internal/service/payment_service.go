package service

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
)

var ErrNonPositiveAmount = errors.New("amount must be positive")

// PaymentService оплаты клиентов: регистрация, подтверждение, отклонение
type PaymentService struct {
	users    repository.UserRepository
	payments repository.PaymentRepository
	entries  repository.DebtEntryRepository
	tx       repository.TxManager
}

func NewPaymentService(l repository.Ledger) *PaymentService {
	return &PaymentService{users: l.Users, payments: l.Payments, entries: l.Entries, tx: l.Tx}
}

// PaymentResult оплата и долг клиента после операции
type PaymentResult struct {
	Payment domain.Payment
	Client  domain.User
}

// RecordPayment создаёт неподтверждённую оплату; долг не меняется до подтверждения
func (s *PaymentService) RecordPayment(ctx context.Context, clientID, amount int64, comment string) (*PaymentResult, error) {
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}
	if amount > MaxAmount {
		return nil, ErrAmountTooLarge
	}
	u, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	p := domain.Payment{UserID: u.ID, Amount: amount, Comment: strings.TrimSpace(comment)}
	if err := s.payments.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: p, Client: *u}, nil
}

// ConfirmPayment уменьшает долг на сумму оплаты, не опуская его ниже нуля
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID int64) (*PaymentResult, error) {
	if paymentID <= 0 {
		return nil, ErrInvalidInput
	}
	var res *PaymentResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.IsConfirmed {
			return ErrAlreadyConfirmed
		}
		u, err := s.users.GetByID(ctx, p.UserID)
		if err != nil {
			return err
		}
		if err := s.payments.Confirm(ctx, p.ID); err != nil {
			return err
		}
		p.IsConfirmed = true
		debt := u.Debt - p.Amount
		if debt < 0 {
			debt = 0
		}
		delta := debt - u.Debt
		u.Debt = debt
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		if err := s.entries.Append(ctx, &domain.DebtEntry{UserID: u.ID, Kind: domain.EntryPayment, Delta: delta, Balance: debt, RefID: p.ID}); err != nil {
			return err
		}
		res = &PaymentResult{Payment: *p, Client: *u}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RejectPayment удаляет оплату без изменения долга
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID int64) (*PaymentResult, error) {
	if paymentID <= 0 {
		return nil, ErrInvalidInput
	}
	var res *PaymentResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.IsConfirmed {
			return ErrAlreadyConfirmed
		}
		if err := s.payments.Delete(ctx, p.ID); err != nil {
			return err
		}
		res = &PaymentResult{Payment: *p}
		if u, err := s.users.GetByID(ctx, p.UserID); err == nil {
			res.Client = *u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *PaymentService) List(ctx context.Context, f repository.PaymentFilter) ([]domain.Payment, error) {
	return s.payments.List(ctx, f)
}

// Pending оплаты, ожидающие решения администратора
func (s *PaymentService) Pending(ctx context.Context) ([]domain.Payment, error) {
	return s.payments.List(ctx, repository.PaymentFilter{Pending: true})
}
