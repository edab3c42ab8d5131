package service

import (
	"context"
	"errors"
	"testing"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
)

type fixture struct {
	ledger   repository.Ledger
	products *ProductService
	clients  *ClientService
	orders   *OrderService
	payments *PaymentService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	l := repository.NewMemoryLedger(repository.NewMemoryStore())
	return &fixture{
		ledger:   l,
		products: NewProductService(l.Products),
		clients:  NewClientService(l, []int64{900}),
		orders:   NewOrderService(l),
		payments: NewPaymentService(l),
	}
}

func (f *fixture) client(t *testing.T, telegramID int64) *domain.User {
	t.Helper()
	u, _, err := f.clients.Register(context.Background(), Profile{TelegramID: telegramID, FirstName: "Ali"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func (f *fixture) product(t *testing.T, name string, price int64) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), domain.Product{Name: name, Price: price})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (f *fixture) debt(t *testing.T, id int64) int64 {
	t.Helper()
	u, err := f.clients.ByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	return u.Debt
}

func TestBuildOrder_Totals(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 5000)
	b := f.product(t, "B", 3000)

	r, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("build order: %v", err)
	}
	if r.Order.TotalSum != 13000 || r.Order.TotalQuantity != 3 {
		t.Fatalf("totals: %+v", r.Order)
	}
	if r.Order.BeforeOrderDebt != 0 || r.Order.TotalDebt != 13000 {
		t.Fatalf("debt snapshot: %+v", r.Order)
	}
	if r.Order.IsConfirmed {
		t.Fatalf("new order must be unconfirmed")
	}
	if got := f.debt(t, c.ID); got != 13000 {
		t.Fatalf("client debt expected 13000, got %v", got)
	}
	if len(r.Items) != 2 || r.Items[0].ProductName != "A" || r.Items[0].Price != 5000 {
		t.Fatalf("items not copied: %+v", r.Items)
	}
}

func TestBuildOrder_AddsToExistingDebt(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 700)
	if _, err := f.clients.SetDebt(ctx, c.ID, 1000); err != nil {
		t.Fatal(err)
	}
	r, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("build order: %v", err)
	}
	if r.Order.BeforeOrderDebt != 1000 || r.Order.TotalDebt != 3100 {
		t.Fatalf("unexpected snapshot: %+v", r.Order)
	}
	if got := f.debt(t, c.ID); got != r.Order.TotalDebt {
		t.Fatalf("debt %v != total_debt %v", got, r.Order.TotalDebt)
	}
}

func TestBuildOrder_PriceCopiedAtOrderTime(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 100)
	r, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 1}})
	if err != nil {
		t.Fatal(err)
	}
	a.Price = 999
	if _, err := f.products.Update(ctx, *a); err != nil {
		t.Fatal(err)
	}
	again, err := f.orders.Receipt(ctx, r.Order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Items[0].Price != 100 {
		t.Fatalf("historical price changed: %+v", again.Items[0])
	}
}

func TestBuildOrder_InvalidInput(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 100)
	if _, err := f.orders.BuildOrder(ctx, c.ID, nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
	if _, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 0}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := f.orders.BuildOrder(ctx, 999, []domain.CartLine{{ProductID: a.ID, Quantity: 1}}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected client not found, got %v", err)
	}
}

func TestBuildOrder_UnknownProductRollsBack(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 100)
	_, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 1}, {ProductID: 42, Quantity: 1}})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, _ := f.orders.List(ctx, repository.OrderFilter{})
	if len(list) != 0 {
		t.Fatalf("order must not be persisted: %+v", list)
	}
	if got := f.debt(t, c.ID); got != 0 {
		t.Fatalf("debt changed: %v", got)
	}
}

func TestDeleteOrder_RestoresDebt(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 2500)
	if _, err := f.clients.SetDebt(ctx, c.ID, 4000); err != nil {
		t.Fatal(err)
	}
	r, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 4}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.DeleteOrder(ctx, r.Order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.debt(t, c.ID); got != 4000 {
		t.Fatalf("debt expected 4000, got %v", got)
	}
	if _, err := f.orders.GetOrder(ctx, r.Order.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("order still present: %v", err)
	}
	items, _ := f.ledger.Orders.ListItems(ctx, r.Order.ID)
	if len(items) != 0 {
		t.Fatalf("items not deleted")
	}
	if _, err := f.orders.DeleteOrder(ctx, r.Order.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestConfirmOrder_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	other := f.client(t, 2)
	a := f.product(t, "A", 100)
	r, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.ConfirmOrder(ctx, r.Order.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	got, err := f.orders.ConfirmOrder(ctx, r.Order.ID, c.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !got.Order.IsConfirmed {
		t.Fatalf("expected confirmed")
	}
	if _, err := f.orders.ConfirmOrder(ctx, r.Order.ID, c.ID); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("expected already confirmed, got %v", err)
	}
	if d := f.debt(t, c.ID); d != 100 {
		t.Fatalf("confirmation must not touch debt: %v", d)
	}
}

func TestApplyDiscount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	if _, err := f.clients.SetDebt(ctx, c.ID, 13000); err != nil {
		t.Fatal(err)
	}

	res, err := f.orders.ApplyDiscount(ctx, c.ID, DiscountSpec{Percent: true, Value: 10})
	if err != nil {
		t.Fatalf("discount: %v", err)
	}
	if res.Amount != 1300 || res.Debt != 11700 {
		t.Fatalf("unexpected result %+v", res)
	}
	u, _ := f.clients.ByID(ctx, c.ID)
	if u.Discount != 1300 || u.Debt != 11700 {
		t.Fatalf("user not updated: %+v", u)
	}

	if _, err := f.orders.ApplyDiscount(ctx, c.ID, DiscountSpec{Value: 20000}); !errors.Is(err, ErrDiscountExceedsDebt) {
		t.Fatalf("expected exceeds debt, got %v", err)
	}
	if d := f.debt(t, c.ID); d != 11700 {
		t.Fatalf("rejected discount changed debt: %v", d)
	}

	res, err = f.orders.ApplyDiscount(ctx, c.ID, DiscountSpec{Value: 11700})
	if err != nil || res.Debt != 0 {
		t.Fatalf("full discount: %+v %v", res, err)
	}
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		input   string
		want    DiscountSpec
		wantErr bool
	}{
		{"10%", DiscountSpec{Percent: true, Value: 10}, false},
		{" 1 300 ", DiscountSpec{Value: 1300}, false},
		{"100%", DiscountSpec{Percent: true, Value: 100}, false},
		{"101%", DiscountSpec{}, true},
		{"0", DiscountSpec{}, true},
		{"-5", DiscountSpec{}, true},
		{"abc", DiscountSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDiscount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDiscount(%q) err = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDiscount(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestOrderList_WithClientNames(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c1 := f.client(t, 1)
	c2 := f.client(t, 2)
	a := f.product(t, "A", 100)
	for _, id := range []int64{c1.ID, c2.ID, c1.ID} {
		if _, err := f.orders.BuildOrder(ctx, id, []domain.CartLine{{ProductID: a.ID, Quantity: 1}}); err != nil {
			t.Fatal(err)
		}
	}
	all, err := f.orders.List(ctx, repository.OrderFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %v %d", err, len(all))
	}
	if all[0].ClientName != "Ali" {
		t.Fatalf("client name missing: %+v", all[0])
	}
	own, _ := f.orders.List(ctx, repository.OrderFilter{UserID: c1.ID})
	if len(own) != 2 {
		t.Fatalf("expected 2 own orders, got %d", len(own))
	}
}

func TestBuildOrder_RejectsOverflowingTotals(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "Pomidor", 5000)
	b := f.product(t, "Olma", MaxAmount)

	if _, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 1844674407370956}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: b.ID, Quantity: 2}}); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected line overflow, got %v", err)
	}
	cart := []domain.CartLine{{ProductID: a.ID, Quantity: 1}, {ProductID: b.ID, Quantity: 1}}
	if _, err := f.orders.Preview(ctx, cart); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected total overflow, got %v", err)
	}
	if got := f.debt(t, c.ID); got != 0 {
		t.Fatalf("debt changed by rejected orders: %v", got)
	}
	orders, err := f.orders.List(ctx, repository.OrderFilter{UserID: c.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 0 {
		t.Fatalf("rejected orders were stored: %+v", orders)
	}
}

func TestBuildOrder_DebtLimit(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	a := f.product(t, "A", 10)
	if _, err := f.clients.SetDebt(ctx, c.ID, MaxAmount-5); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.BuildOrder(ctx, c.ID, []domain.CartLine{{ProductID: a.ID, Quantity: 1}}); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected debt overflow, got %v", err)
	}
	if got := f.debt(t, c.ID); got != MaxAmount-5 {
		t.Fatalf("debt changed: %v", got)
	}
	if _, err := f.clients.SetDebt(ctx, c.ID, MaxAmount+1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid debt, got %v", err)
	}
}

func TestDiscountAmount_LargeDebt(t *testing.T) {
	spec := DiscountSpec{Percent: true, Value: 10}
	if got := spec.Amount(1 << 62); got != (1<<62)/10 {
		t.Fatalf("percent of large debt: %v", got)
	}
	if got := spec.Amount(13050); got != 1305 {
		t.Fatalf("percent: %v", got)
	}
	if got := (DiscountSpec{Percent: true, Value: 33}).Amount(199); got != 65 {
		t.Fatalf("rounding: %v", got)
	}
	if _, err := ParseDiscount("99999999999999999"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid discount, got %v", err)
	}
}

func TestLimits_ProductAndPayment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	c := f.client(t, 1)
	if _, err := f.products.Create(ctx, domain.Product{Name: "X", Price: MaxAmount + 1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid price, got %v", err)
	}
	if _, err := ParseProductInput("X, 9223372036854775807"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid price input, got %v", err)
	}
	if _, err := f.payments.RecordPayment(ctx, c.ID, MaxAmount+1, ""); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected too large payment, got %v", err)
	}
}
