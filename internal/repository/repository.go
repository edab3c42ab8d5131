package repository

import (
	"context"
	"errors"
	"strings"

	"ledgerbot/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ErrDuplicate нарушение уникальности (имя товара, telegram id)
var ErrDuplicate = errors.New("duplicate")

// UserFilter фильтр пользователей; пустая роль — все
type UserFilter struct {
	Role domain.Role
}

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	MinPrice      *int64
	MaxPrice      *int64
}

// OrderFilter фильтр заказов; UserID == 0 — все заказы
type OrderFilter struct {
	UserID int64
}

// PaymentFilter фильтр оплат
type PaymentFilter struct {
	UserID  int64
	Pending bool
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f UserFilter) ([]domain.User, error)
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// OrderRepository интерфейс репозитория заказов. Delete удаляет и позиции заказа.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
	AddItems(ctx context.Context, orderID int64, items []domain.OrderItem) error
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	Confirm(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error)
}

// DebtEntryRepository журнал изменений долга, только добавление
type DebtEntryRepository interface {
	Append(ctx context.Context, e *domain.DebtEntry) error
	List(ctx context.Context, userID int64) ([]domain.DebtEntry, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

// TxManager абстракция транзакции: одна логическая операция над учётом — одна транзакция.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Ledger набор репозиториев одного хранилища
type Ledger struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	Payments PaymentRepository
	Entries  DebtEntryRepository
	Tx       TxManager
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchProduct(p domain.Product, f ProductFilter) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}
