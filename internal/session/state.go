// Package session хранит шаг диалога каждого пользователя бота.
package session

import (
	"slices"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/service"
)

// State текущий шаг диалога. Набор реализаций закрыт.
type State interface {
	Name() string
	isState()
}

// Purpose для чего администратор выбирает клиента
type Purpose int

const (
	PurposeOrder Purpose = iota
	PurposeEdit
	PurposeDeleteOrder
)

type Idle struct{}

type SelectingClient struct {
	Purpose Purpose
}

// BuildingCart корзина открыта, ждём товар или команду
type BuildingCart struct {
	Draft *Draft
}

// AddingProduct ждём ввод нового товара "Nomi, narxi"
type AddingProduct struct {
	Draft *Draft
}

type AwaitingQuantity struct {
	Draft     *Draft
	ProductID int64
}

type ConfirmingOrder struct {
	Draft *Draft
}

// SelectingOrderForDeletion Choices: подпись кнопки -> id заказа
type SelectingOrderForDeletion struct {
	ClientID int64
	Choices  map[string]int64
}

type ChoosingField struct {
	ClientID int64
}

type EditingField struct {
	ClientID int64
	Field    service.Field
}

type ApplyingDiscount struct {
	ClientID int64
}

type ConfirmingClientDeletion struct {
	ClientID int64
}

type AwaitingPaymentAmount struct{}

type AwaitingPaymentComment struct {
	Amount int64
}

func (Idle) Name() string { return "idle" }
func (s SelectingClient) Name() string {
	switch s.Purpose {
	case PurposeEdit:
		return "selecting_client_for_edit"
	case PurposeDeleteOrder:
		return "selecting_client_for_order_deletion"
	}
	return "selecting_client"
}
func (BuildingCart) Name() string              { return "awaiting_order_data" }
func (AddingProduct) Name() string             { return "adding_new_product" }
func (AwaitingQuantity) Name() string          { return "awaiting_product_quantity" }
func (ConfirmingOrder) Name() string           { return "confirming_order" }
func (SelectingOrderForDeletion) Name() string { return "selecting_order_for_deletion" }
func (ChoosingField) Name() string             { return "choosing_field_to_edit" }
func (s EditingField) Name() string            { return "editing_" + string(s.Field) }
func (ApplyingDiscount) Name() string          { return "applying_discount" }
func (ConfirmingClientDeletion) Name() string  { return "confirming_client_deletion" }
func (AwaitingPaymentAmount) Name() string     { return "awaiting_payment_amount" }
func (AwaitingPaymentComment) Name() string    { return "awaiting_payment_comment" }

func (Idle) isState()                      {}
func (SelectingClient) isState()           {}
func (BuildingCart) isState()              {}
func (AddingProduct) isState()             {}
func (AwaitingQuantity) isState()          {}
func (ConfirmingOrder) isState()           {}
func (SelectingOrderForDeletion) isState() {}
func (ChoosingField) isState()             {}
func (EditingField) isState()              {}
func (ApplyingDiscount) isState()          {}
func (ConfirmingClientDeletion) isState()  {}
func (AwaitingPaymentAmount) isState()     {}
func (AwaitingPaymentComment) isState()    {}

// Draft корзина администратора для одного клиента.
// Строки хранятся по id товара в порядке добавления.
type Draft struct {
	ClientID int64
	Lines    []domain.CartLine
	// Choices подпись кнопки последней клавиатуры -> id товара
	Choices map[string]int64
}

func NewDraft(clientID int64) *Draft {
	return &Draft{ClientID: clientID, Choices: make(map[string]int64)}
}

// Set задаёт количество товара; 0 убирает строку
func (d *Draft) Set(productID, qty int64) {
	i := slices.IndexFunc(d.Lines, func(l domain.CartLine) bool { return l.ProductID == productID })
	switch {
	case qty <= 0 && i >= 0:
		d.Lines = slices.Delete(d.Lines, i, i+1)
	case qty <= 0:
	case i >= 0:
		d.Lines[i].Quantity = qty
	default:
		d.Lines = append(d.Lines, domain.CartLine{ProductID: productID, Quantity: qty})
	}
}

func (d *Draft) Quantity(productID int64) int64 {
	for _, l := range d.Lines {
		if l.ProductID == productID {
			return l.Quantity
		}
	}
	return 0
}

func (d *Draft) Empty() bool { return len(d.Lines) == 0 }

// Resolve ищет товар по подписи кнопки
func (d *Draft) Resolve(label string) (int64, bool) {
	id, ok := d.Choices[label]
	return id, ok
}

// Cart копия строк для передачи в сервис
func (d *Draft) Cart() []domain.CartLine {
	return slices.Clone(d.Lines)
}
