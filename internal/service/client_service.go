package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
)

// Field редактируемое поле профиля клиента
type Field string

const (
	FieldUsername  Field = "username"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldSavedName Field = "saved_name"
	FieldDebt      Field = "debt"
	FieldRole      Field = "role"
)

// Profile данные отправителя при первом контакте
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// ClientService управляет пользователями: регистрация, правка профиля, удаление
type ClientService struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	entries  repository.DebtEntryRepository
	tx       repository.TxManager
	admins   []int64
}

// NewClientService admins — telegram id, которые получают роль admin при регистрации
func NewClientService(l repository.Ledger, admins []int64) *ClientService {
	return &ClientService{users: l.Users, orders: l.Orders, payments: l.Payments, entries: l.Entries, tx: l.Tx, admins: admins}
}

// Register создаёт пользователя при первом обращении. created=false, если он уже был.
// Роль admin из конфигурации выдаётся только при создании.
func (s *ClientService) Register(ctx context.Context, p Profile) (u *domain.User, created bool, err error) {
	if p.TelegramID == 0 {
		return nil, false, ErrInvalidInput
	}
	existing, err := s.users.GetByTelegramID(ctx, p.TelegramID)
	switch {
	case err == nil:
		// роль уже заведённого пользователя меняется только через UpdateProfile
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}
	u = &domain.User{
		TelegramID: p.TelegramID,
		Username:   p.Username,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Role:       domain.RoleClient,
	}
	if s.isBootstrapAdmin(p.TelegramID) {
		u.Role = domain.RoleAdmin
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *ClientService) isBootstrapAdmin(telegramID int64) bool {
	return slices.Contains(s.admins, telegramID)
}

func (s *ClientService) ByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

func (s *ClientService) ByID(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.users.GetByID(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, repository.UserFilter{Role: domain.RoleClient})
}

func (s *ClientService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, repository.UserFilter{Role: domain.RoleAdmin})
}

func (s *ClientService) ListAll(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx, repository.UserFilter{})
}

// UpdateProfile записывает текстовое поле. Долг меняется только через SetDebt.
func (s *ClientService) UpdateProfile(ctx context.Context, clientID int64, field Field, value string) (*domain.User, error) {
	value = strings.TrimSpace(value)
	var out *domain.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		switch field {
		case FieldUsername:
			u.Username = value
		case FieldFirstName:
			u.FirstName = value
		case FieldLastName:
			u.LastName = value
		case FieldSavedName:
			u.SavedName = value
		case FieldRole:
			role, err := ParseRole(value)
			if err != nil {
				return err
			}
			u.Role = role
		default:
			return fmt.Errorf("%w: field %q", ErrInvalidInput, field)
		}
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseRole принимает "Admin"/"Client" в любом регистре
func ParseRole(value string) (domain.Role, error) {
	switch domain.Role(strings.ToLower(strings.TrimSpace(value))) {
	case domain.RoleAdmin:
		return domain.RoleAdmin, nil
	case domain.RoleClient:
		return domain.RoleClient, nil
	}
	return "", fmt.Errorf("%w: role %q", ErrInvalidInput, value)
}

// SetDebt ручная правка долга администратором
func (s *ClientService) SetDebt(ctx context.Context, clientID, debt int64) (*domain.User, error) {
	if debt < 0 || debt > MaxAmount {
		return nil, ErrInvalidInput
	}
	var out *domain.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		delta := debt - u.Debt
		u.Debt = debt
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		if err := s.entries.Append(ctx, &domain.DebtEntry{UserID: u.ID, Kind: domain.EntryManual, Delta: delta, Balance: debt}); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete удаляет клиента вместе с заказами, оплатами и журналом долга
func (s *ClientService) Delete(ctx context.Context, clientID int64) (*domain.User, error) {
	var removed *domain.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		orders, err := s.orders.List(ctx, repository.OrderFilter{UserID: u.ID})
		if err != nil {
			return err
		}
		for _, o := range orders {
			if err := s.orders.Delete(ctx, o.ID); err != nil {
				return err
			}
		}
		payments, err := s.payments.List(ctx, repository.PaymentFilter{UserID: u.ID})
		if err != nil {
			return err
		}
		for _, p := range payments {
			if err := s.payments.Delete(ctx, p.ID); err != nil {
				return err
			}
		}
		if err := s.entries.DeleteByUser(ctx, u.ID); err != nil {
			return err
		}
		if err := s.users.Delete(ctx, u.ID); err != nil {
			return err
		}
		removed = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Entries журнал изменений долга клиента
func (s *ClientService) Entries(ctx context.Context, clientID int64) ([]domain.DebtEntry, error) {
	if _, err := s.ByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.entries.List(ctx, clientID)
}
