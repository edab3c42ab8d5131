package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
)

// OrderService реализует учёт заказов и долга: оформление, подтверждение, удаление, скидка
type OrderService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	entries  repository.DebtEntryRepository
	tx       repository.TxManager
}

func NewOrderService(l repository.Ledger) *OrderService {
	return &OrderService{users: l.Users, products: l.Products, orders: l.Orders, entries: l.Entries, tx: l.Tx}
}

var (
	ErrEmptyCart           = errors.New("empty cart")
	ErrAlreadyConfirmed    = errors.New("already confirmed")
	ErrForbidden           = errors.New("forbidden")
	ErrDiscountExceedsDebt = errors.New("discount exceeds debt")
)

// Receipt заказ вместе с позициями и клиентом
type Receipt struct {
	Order  domain.Order
	Items  []domain.OrderItem
	Client domain.User
}

// OrderView строка списка заказов с именем клиента
type OrderView struct {
	domain.Order
	ClientName string `json:"client_name"`
}

func validateCart(clientID int64, lines []domain.CartLine) error {
	if clientID <= 0 {
		return ErrInvalidInput
	}
	return validateLines(lines)
}

func validateLines(lines []domain.CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if l.ProductID <= 0 || l.Quantity <= 0 || l.Quantity > MaxQuantity {
			return ErrInvalidInput
		}
	}
	return nil
}

// priceCart копирует название и цену товаров на момент заказа
func (s *OrderService) priceCart(ctx context.Context, lines []domain.CartLine) ([]domain.OrderItem, int64, int64, error) {
	items := make([]domain.OrderItem, 0, len(lines))
	var sum, qty int64
	for _, l := range lines {
		p, err := s.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("product %d: %w", l.ProductID, err)
		}
		it := domain.OrderItem{ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: l.Quantity}
		line, err := lineSum(it.Price, it.Quantity)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("product %d: %w", l.ProductID, err)
		}
		if sum, err = addAmount(sum, line); err != nil {
			return nil, 0, 0, err
		}
		items = append(items, it)
		qty += it.Quantity
	}
	return items, sum, qty, nil
}

// Preview считает итоги корзины без записи в учёт
func (s *OrderService) Preview(ctx context.Context, lines []domain.CartLine) (*Receipt, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	items, sum, qty, err := s.priceCart(ctx, lines)
	if err != nil {
		return nil, err
	}
	return &Receipt{Order: domain.Order{TotalSum: sum, TotalQuantity: qty}, Items: items}, nil
}

// BuildOrder атомарно создаёт заказ и переносит его сумму в долг клиента.
// Долг после заказа равен BeforeOrderDebt + TotalSum.
func (s *OrderService) BuildOrder(ctx context.Context, clientID int64, lines []domain.CartLine) (*Receipt, error) {
	if err := validateCart(clientID, lines); err != nil {
		return nil, err
	}
	var created *Receipt
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		client, err := s.users.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		items, sum, qty, err := s.priceCart(ctx, lines)
		if err != nil {
			return err
		}
		before := client.Debt
		if before < 0 {
			before = 0
		}
		total, err := addAmount(before, sum)
		if err != nil {
			return err
		}
		o := domain.Order{
			UserID:          client.ID,
			TotalSum:        sum,
			TotalQuantity:   qty,
			BeforeOrderDebt: before,
			TotalDebt:       total,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		if err := s.orders.AddItems(ctx, o.ID, items); err != nil {
			return err
		}
		client.Debt = o.TotalDebt
		if err := s.users.Update(ctx, client); err != nil {
			return err
		}
		if err := s.entries.Append(ctx, &domain.DebtEntry{UserID: client.ID, Kind: domain.EntryOrder, Delta: sum, Balance: client.Debt, RefID: o.ID}); err != nil {
			return err
		}
		created = &Receipt{Order: o, Items: items, Client: *client}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ConfirmOrder подтверждение заказа клиентом-владельцем. Долг не меняется.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID, byUserID int64) (*Receipt, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != byUserID {
			return ErrForbidden
		}
		if o.IsConfirmed {
			return ErrAlreadyConfirmed
		}
		o.IsConfirmed = true
		return s.orders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return s.Receipt(ctx, orderID)
}

// DeleteOrder удаляет заказ с позициями и вычитает его сумму из долга клиента.
// Обратная операция точна, только если долг не менялся после создания заказа.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	if orderID <= 0 {
		return nil, ErrInvalidInput
	}
	var removed *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.orders.Delete(ctx, o.ID); err != nil {
			return err
		}
		removed = o
		client, err := s.users.GetByID(ctx, o.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		debt := client.Debt - o.TotalSum
		if debt < 0 {
			debt = 0
		}
		delta := debt - client.Debt
		client.Debt = debt
		if err := s.users.Update(ctx, client); err != nil {
			return err
		}
		return s.entries.Append(ctx, &domain.DebtEntry{UserID: client.ID, Kind: domain.EntryOrderDeleted, Delta: delta, Balance: debt, RefID: o.ID})
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Receipt заказ с позициями и владельцем
func (s *OrderService) Receipt(ctx context.Context, orderID int64) (*Receipt, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ListItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	r := &Receipt{Order: *o, Items: items}
	if u, err := s.users.GetByID(ctx, o.UserID); err == nil {
		r.Client = *u
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return r, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

// List заказы клиента или все заказы, если UserID == 0
func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]OrderView, error) {
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string)
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		name, ok := names[o.UserID]
		if !ok {
			if u, err := s.users.GetByID(ctx, o.UserID); err == nil {
				name = u.DisplayName()
			}
			names[o.UserID] = name
		}
		out = append(out, OrderView{Order: o, ClientName: name})
	}
	return out, nil
}

// DiscountSpec скидка в процентах от текущего долга или в абсолютной сумме
type DiscountSpec struct {
	Percent bool
	Value   int64
}

// ParseDiscount принимает "10%" или "1300"
func ParseDiscount(text string) (DiscountSpec, error) {
	text = strings.ReplaceAll(strings.TrimSpace(text), " ", "")
	spec := DiscountSpec{}
	if strings.HasSuffix(text, "%") {
		spec.Percent = true
		text = strings.TrimSuffix(text, "%")
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil || v <= 0 || v > MaxAmount || (spec.Percent && v > 100) {
		return DiscountSpec{}, fmt.Errorf("%w: discount %q", ErrInvalidInput, text)
	}
	spec.Value = v
	return spec, nil
}

// Amount сумма скидки для данного долга
func (d DiscountSpec) Amount(debt int64) int64 {
	if d.Percent {
		return percentOf(debt, d.Value)
	}
	return d.Value
}

// DiscountResult итог применения скидки
type DiscountResult struct {
	Amount int64
	Debt   int64
}

// ApplyDiscount уменьшает долг на скидку; скидка больше долга отклоняется без изменений
func (s *OrderService) ApplyDiscount(ctx context.Context, clientID int64, spec DiscountSpec) (*DiscountResult, error) {
	if spec.Value <= 0 {
		return nil, ErrInvalidInput
	}
	var res *DiscountResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		amount := spec.Amount(u.Debt)
		if amount > u.Debt {
			return ErrDiscountExceedsDebt
		}
		u.Debt -= amount
		u.Discount = amount
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		if err := s.entries.Append(ctx, &domain.DebtEntry{UserID: u.ID, Kind: domain.EntryDiscount, Delta: -amount, Balance: u.Debt}); err != nil {
			return err
		}
		res = &DiscountResult{Amount: amount, Debt: u.Debt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
