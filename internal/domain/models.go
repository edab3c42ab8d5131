package domain

import (
	"strings"
	"time"
)

// Role роль пользователя бота
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User клиент или администратор, заведённый при первом обращении
type User struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"uniqueIndex"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	SavedName  string    `json:"saved_name"`
	Role       Role      `json:"role" gorm:"index;default:client"`
	Debt       int64     `json:"debt"`
	Discount   int64     `json:"discount"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName имя и фамилия через пробел, без пустой фамилии
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

// Product товар с ценой в целых единицах валюты
type Product struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex"`
	Price int64  `json:"price"`
}

// Order заказ клиента. TotalDebt фиксирует долг сразу после заказа и позже не меняется.
type Order struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	UserID          int64     `json:"user_id" gorm:"index"`
	CreatedAt       time.Time `json:"created_at"`
	TotalSum        int64     `json:"total_sum"`
	TotalQuantity   int64     `json:"total_quantity"`
	BeforeOrderDebt int64     `json:"before_order_debt"`
	TotalDebt       int64     `json:"total_debt"`
	IsConfirmed     bool      `json:"is_confirmed"`
}

// OrderItem позиция в заказе; название и цена копируются на момент заказа
type OrderItem struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	OrderID     int64  `json:"order_id" gorm:"index"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
}

func (it OrderItem) Sum() int64 { return it.Price * it.Quantity }

// Payment оплата от клиента, ждёт подтверждения администратора
type Payment struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      int64     `json:"user_id" gorm:"index"`
	Amount      int64     `json:"amount"`
	Comment     string    `json:"comment"`
	IsConfirmed bool      `json:"is_confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntryKind причина изменения долга
type EntryKind string

const (
	EntryOrder        EntryKind = "order"
	EntryOrderDeleted EntryKind = "order_deleted"
	EntryDiscount     EntryKind = "discount"
	EntryPayment      EntryKind = "payment"
	EntryManual       EntryKind = "manual"
)

// DebtEntry запись журнала долга. Balance — долг после применения Delta.
type DebtEntry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"index"`
	Kind      EntryKind `json:"kind"`
	Delta     int64     `json:"delta"`
	Balance   int64     `json:"balance"`
	RefID     int64     `json:"ref_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CartLine строка корзины до оформления заказа
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}
