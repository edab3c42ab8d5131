package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
)

const (
	adminTG  int64 = 900
	clientTG int64 = 100
)

type sent struct {
	chatID  int64
	text    string
	kb      *Keyboard
	buttons []InlineButton
}

// recorder запоминает исходящие сообщения; failFor — чаты, куда доставка падает
type recorder struct {
	mu      sync.Mutex
	out     []sent
	failFor map[int64]bool
}

func (r *recorder) SendText(_ context.Context, chatID int64, text string, kb *Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[chatID] {
		return errors.New("chat unreachable")
	}
	r.out = append(r.out, sent{chatID: chatID, text: text, kb: kb})
	return nil
}

func (r *recorder) SendInline(_ context.Context, chatID int64, text string, buttons []InlineButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[chatID] {
		return errors.New("chat unreachable")
	}
	r.out = append(r.out, sent{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (r *recorder) to(chatID int64) []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []sent
	for _, s := range r.out {
		if s.chatID == chatID {
			res = append(res, s)
		}
	}
	return res
}

func (r *recorder) last(t *testing.T, chatID int64) sent {
	t.Helper()
	msgs := r.to(chatID)
	require.NotEmpty(t, msgs, "no messages to %d", chatID)
	return msgs[len(msgs)-1]
}

// saw есть ли среди сообщений в чат текст с подстрокой
func (r *recorder) saw(chatID int64, substr string) bool {
	for _, s := range r.to(chatID) {
		if strings.Contains(s.text, substr) {
			return true
		}
	}
	return false
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = nil
}

type harness struct {
	bot      *Bot
	out      *recorder
	states   *session.MemoryStore
	clients  *service.ClientService
	products *service.ProductService
	orders   *service.OrderService
	payments *service.PaymentService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	l := repository.NewMemoryLedger(repository.NewMemoryStore())
	h := &harness{
		out:      &recorder{failFor: map[int64]bool{}},
		states:   session.NewMemoryStore(0),
		clients:  service.NewClientService(l, []int64{adminTG}),
		products: service.NewProductService(l.Products),
		orders:   service.NewOrderService(l),
		payments: service.NewPaymentService(l),
	}
	logger := log.New()
	logger.SetOutput(io.Discard)
	h.bot = New(Services{Clients: h.clients, Products: h.products, Orders: h.orders, Payments: h.payments}, h.states, h.out, logger)
	return h
}

func (h *harness) say(from int64, text string) {
	h.bot.HandleMessage(context.Background(), Message{ChatID: from, UserID: from, FirstName: fmt.Sprintf("U%d", from), Text: text})
}

func (h *harness) press(from int64, data string) {
	h.bot.HandleCallback(context.Background(), Callback{ID: "cb", ChatID: from, UserID: from, Data: data})
}

func (h *harness) user(t *testing.T, tg int64) *domain.User {
	t.Helper()
	u, err := h.clients.ByTelegramID(context.Background(), tg)
	require.NoError(t, err)
	return u
}

func (h *harness) product(t *testing.T, name string, price int64) *domain.Product {
	t.Helper()
	p, err := h.products.Create(context.Background(), domain.Product{Name: name, Price: price})
	require.NoError(t, err)
	return p
}

// registered админ и один клиент
func registered(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	h.say(adminTG, "/start")
	h.say(clientTG, "/start")
	require.True(t, h.user(t, adminTG).IsAdmin())
	require.False(t, h.user(t, clientTG).IsAdmin())
	h.out.clear()
	return h
}

// placeOrder админ оформляет заказ клиенту: 3 x Pomidor по 5000
func (h *harness) placeOrder(t *testing.T) *domain.Order {
	t.Helper()
	h.product(t, "Pomidor", 5000)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, "Pomidor")
	h.say(adminTG, "3")
	h.say(adminTG, BtnCartDone)
	h.say(adminTG, BtnYes)
	orders, err := h.orders.List(context.Background(), repository.OrderFilter{UserID: h.user(t, clientTG).ID})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0].Order
	return &o
}

func TestStart_RegistersOnceWithRoles(t *testing.T) {
	h := newHarness(t)
	h.say(adminTG, "/start")
	assert.True(t, h.out.saw(adminTG, "ma`lumotlarinigiz saqlandi"))
	h.say(adminTG, "/start")
	assert.True(t, h.out.saw(adminTG, "Qaytadan salom"))

	menu := h.out.last(t, adminTG)
	require.NotNil(t, menu.kb)
	assert.Equal(t, BtnAddOrder, menu.kb.Rows[0][0])

	h.say(clientTG, "/start")
	menu = h.out.last(t, clientTG)
	require.NotNil(t, menu.kb)
	assert.Equal(t, []string{BtnListOrders, BtnPay}, menu.kb.Rows[0])
}

func TestUnregisteredUserIsAskedToStart(t *testing.T) {
	h := newHarness(t)
	h.say(clientTG, "/list_orders")
	assert.Equal(t, txtNoProfile, h.out.last(t, clientTG).text)
	h.say(clientTG, "salom")
	assert.Equal(t, txtNoProfile, h.out.last(t, clientTG).text)
}

func TestMainMenuEscapesAnyState(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	require.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))

	h.say(adminTG, BtnMainMenu)
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
	assert.Equal(t, txtMenu, h.out.last(t, adminTG).text)

	h.say(clientTG, "/pay")
	require.IsType(t, session.AwaitingPaymentAmount{}, h.states.Get(clientTG))
	h.say(clientTG, BtnMainMenu)
	assert.IsType(t, session.Idle{}, h.states.Get(clientTG))
}

func TestCommandInterruptsFlow(t *testing.T) {
	h := registered(t)
	h.say(adminTG, "/edit_client")
	require.IsType(t, session.SelectingClient{}, h.states.Get(adminTG))

	h.say(adminTG, "/list_orders")
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
	assert.True(t, h.out.saw(adminTG, txtOrdersNotFound))

	// подпись меню работает как команда
	h.say(adminTG, BtnEditClient)
	assert.Equal(t, session.SelectingClient{Purpose: session.PurposeEdit}, h.states.Get(adminTG))

	h.say(adminTG, "/help@ledger_bot")
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
	assert.True(t, h.out.saw(adminTG, "/add_order"))
}

func TestAdminCommandsDeniedForClientKeepState(t *testing.T) {
	h := registered(t)
	h.say(clientTG, "/pay")
	h.say(clientTG, "5000")
	require.Equal(t, session.AwaitingPaymentComment{Amount: 5000}, h.states.Get(clientTG))

	for cmd, denied := range map[string]string{
		"/add_order":    txtDeniedAddOrder,
		"/delete_order": txtDeniedDeleteOrder,
		"/edit_client":  txtDeniedEditClient,
		"/payments":     txtDenied,
	} {
		h.say(clientTG, cmd)
		assert.Equal(t, denied, h.out.last(t, clientTG).text, cmd)
		assert.Equal(t, session.AwaitingPaymentComment{Amount: 5000}, h.states.Get(clientTG), cmd)
	}

	h.say(adminTG, "/pay")
	assert.Equal(t, txtClientsOnly, h.out.last(t, adminTG).text)
}

func TestOrderFlow(t *testing.T) {
	h := registered(t)
	o := h.placeOrder(t)

	assert.Equal(t, int64(15000), o.TotalSum)
	assert.Equal(t, int64(3), o.TotalQuantity)
	assert.Equal(t, int64(0), o.BeforeOrderDebt)
	assert.Equal(t, int64(15000), o.TotalDebt)
	assert.False(t, o.IsConfirmed)
	assert.Equal(t, int64(15000), h.user(t, clientTG).Debt)
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
	assert.True(t, h.out.saw(adminTG, txtOrderCreated))
	assert.True(t, h.out.saw(adminTG, "Jami summa: 15 000 so'm"))

	invite := h.out.last(t, clientTG)
	require.Len(t, invite.buttons, 2)
	assert.Equal(t, fmt.Sprintf("confirm_order_%d", o.ID), invite.buttons[0].Data)
	assert.Contains(t, invite.text, "Umumiy qarz: 15 000 so'm")

	h.out.clear()
	h.press(clientTG, invite.buttons[0].Data)
	assert.Equal(t, txtOrderConfirmed, h.out.last(t, clientTG).text)
	assert.True(t, h.out.saw(adminTG, "buyurtmani tasdiqladi"))

	got, err := h.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.IsConfirmed)

	h.press(clientTG, invite.buttons[0].Data)
	assert.Equal(t, txtAlreadyConfirmed, h.out.last(t, clientTG).text)
}

func TestOrderFlow_SecondOrderSnapshotsDebt(t *testing.T) {
	h := registered(t)
	h.placeOrder(t)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, "Pomidor")
	h.say(adminTG, "1")
	h.say(adminTG, BtnCartDone)
	h.say(adminTG, BtnYes)

	orders, err := h.orders.List(context.Background(), repository.OrderFilter{UserID: h.user(t, clientTG).ID})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	var second domain.Order
	for _, o := range orders {
		if o.TotalSum == 5000 {
			second = o.Order
		}
	}
	assert.Equal(t, int64(15000), second.BeforeOrderDebt)
	assert.Equal(t, int64(20000), second.TotalDebt)
	assert.Equal(t, int64(20000), h.user(t, clientTG).Debt)
}

func TestCartInputErrors(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	h.say(adminTG, "/add_order")
	h.say(adminTG, "Kimdir")
	assert.Equal(t, txtBadClient, h.out.last(t, adminTG).text)
	assert.IsType(t, session.SelectingClient{}, h.states.Get(adminTG))

	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, BtnCartDone)
	assert.Equal(t, txtCartEmpty, h.out.last(t, adminTG).text)
	assert.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))

	h.say(adminTG, "Bodring")
	assert.Equal(t, txtUnknownProduct, h.out.last(t, adminTG).text)
	assert.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))

	h.say(adminTG, "Pomidor")
	require.IsType(t, session.AwaitingQuantity{}, h.states.Get(adminTG))
	h.say(adminTG, "uch")
	assert.Equal(t, txtQuantityNotDigit, h.out.last(t, adminTG).text)
	h.say(adminTG, "-2")
	assert.Equal(t, txtQuantityNotDigit, h.out.last(t, adminTG).text)
	assert.IsType(t, session.AwaitingQuantity{}, h.states.Get(adminTG))

	h.say(adminTG, "2")
	st, ok := h.states.Get(adminTG).(session.BuildingCart)
	require.True(t, ok)
	assert.Equal(t, int64(2), st.Draft.Lines[0].Quantity)

	// подпись товара теперь с количеством
	kb := h.out.last(t, adminTG).kb
	require.NotNil(t, kb)
	assert.Equal(t, "Pomidor (2)", kb.Rows[0][0])
	h.say(adminTG, "Pomidor (2)")
	h.say(adminTG, "0")
	st = h.states.Get(adminTG).(session.BuildingCart)
	assert.True(t, st.Draft.Empty())

	h.say(adminTG, BtnCartDone)
	assert.Equal(t, txtCartEmpty, h.out.last(t, adminTG).text)
}

func TestAddProductFromCart(t *testing.T) {
	h := registered(t)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, BtnAddProduct)
	require.IsType(t, session.AddingProduct{}, h.states.Get(adminTG))

	h.say(adminTG, "Bodring")
	assert.Equal(t, txtNewProduct, h.out.last(t, adminTG).text)

	h.say(adminTG, "Bodring, 7000")
	assert.Equal(t, txtProductAdded, h.out.last(t, adminTG).text)
	assert.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))

	h.say(adminTG, BtnAddProduct)
	h.say(adminTG, "Bodring, 8000")
	assert.Equal(t, txtProductExists, h.out.last(t, adminTG).text)
}

func TestOrderCancelledOnNo(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, "Pomidor")
	h.say(adminTG, "1")
	h.say(adminTG, BtnCartDone)
	h.say(adminTG, "balki")
	assert.Equal(t, txtChooseYesNo, h.out.last(t, adminTG).text)
	h.say(adminTG, BtnNo)
	assert.True(t, h.out.saw(adminTG, txtOrderCancelled))
	assert.Equal(t, int64(0), h.user(t, clientTG).Debt)
}

func TestDeleteOrderRestoresDebt(t *testing.T) {
	h := registered(t)
	o := h.placeOrder(t)

	h.say(adminTG, "/delete_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	require.IsType(t, session.SelectingOrderForDeletion{}, h.states.Get(adminTG))
	h.say(adminTG, "Buyurtma ID: 999")
	assert.Equal(t, txtBadOrder, h.out.last(t, adminTG).text)

	h.say(adminTG, orderLabel(*o))
	assert.True(t, h.out.saw(adminTG, fmt.Sprintf("Buyurtma %d muvaffaqiyatli", o.ID)))
	assert.True(t, h.out.saw(clientTG, fmt.Sprintf("Buyurtma %d o'chirildi", o.ID)))
	assert.Equal(t, int64(0), h.user(t, clientTG).Debt)
	_, err := h.orders.GetOrder(context.Background(), o.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	h.say(adminTG, "/delete_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	assert.True(t, h.out.saw(adminTG, txtClientHasNoOrders))
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
}

func TestDiscount(t *testing.T) {
	h := registered(t)
	h.placeOrder(t)
	h.say(adminTG, "/edit_client")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, BtnDiscount)
	require.IsType(t, session.ApplyingDiscount{}, h.states.Get(adminTG))

	h.say(adminTG, "o'n foiz")
	assert.Equal(t, txtBadDiscount, h.out.last(t, adminTG).text)
	h.say(adminTG, "20000")
	assert.Contains(t, h.out.last(t, adminTG).text, "Joriy qarz: 15 000 so'm")
	assert.IsType(t, session.ApplyingDiscount{}, h.states.Get(adminTG))

	h.say(adminTG, "10%")
	assert.True(t, h.out.saw(adminTG, "Yangi qarz: 13 500 so'm"))
	assert.True(t, h.out.saw(clientTG, "Sizga chegirma qilindi"))
	u := h.user(t, clientTG)
	assert.Equal(t, int64(13500), u.Debt)
	assert.Equal(t, int64(1500), u.Discount)
	assert.IsType(t, session.Idle{}, h.states.Get(adminTG))
}

func TestEditClientFields(t *testing.T) {
	h := registered(t)
	label := clientLabel(*h.user(t, clientTG))

	h.say(adminTG, "/edit_client")
	h.say(adminTG, label)
	h.say(adminTG, "Yosh")
	assert.Equal(t, txtBadField, h.out.last(t, adminTG).text)
	h.say(adminTG, BtnSavedName)
	assert.Equal(t, session.EditingField{ClientID: h.user(t, clientTG).ID, Field: service.FieldSavedName}, h.states.Get(adminTG))
	h.say(adminTG, "Ali aka")
	assert.Equal(t, "Ali aka", h.user(t, clientTG).SavedName)

	h.say(adminTG, "/edit_client")
	h.say(adminTG, label)
	h.say(adminTG, BtnDebt)
	h.say(adminTG, "-5")
	assert.Equal(t, txtBadDebt, h.out.last(t, adminTG).text)
	h.say(adminTG, "7 000")
	assert.Equal(t, int64(7000), h.user(t, clientTG).Debt)

	h.say(adminTG, "/edit_client")
	h.say(adminTG, label)
	h.say(adminTG, BtnRole)
	h.say(adminTG, "Boss")
	assert.Equal(t, txtBadRole, h.out.last(t, adminTG).text)
	h.say(adminTG, BtnAdmin)
	assert.True(t, h.user(t, clientTG).IsAdmin())
}

func TestDeleteClient(t *testing.T) {
	h := registered(t)
	h.placeOrder(t)
	label := clientLabel(*h.user(t, clientTG))

	h.say(adminTG, "/edit_client")
	h.say(adminTG, label)
	h.say(adminTG, BtnDeleteClient)
	h.say(adminTG, "balki")
	assert.Equal(t, txtChooseYesNo, h.out.last(t, adminTG).text)
	h.say(adminTG, BtnNo)
	assert.True(t, h.out.saw(adminTG, txtClientKept))

	h.say(adminTG, "/edit_client")
	h.say(adminTG, label)
	h.say(adminTG, BtnDeleteClient)
	h.say(adminTG, BtnYes)
	assert.True(t, h.out.saw(clientTG, txtYouWereDeleted))
	assert.True(t, h.out.saw(adminTG, "muvaffaqiyatli o'chirildi"))

	_, err := h.clients.ByTelegramID(context.Background(), clientTG)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	orders, err := h.orders.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)

	h.say(clientTG, "/list_orders")
	assert.Equal(t, txtNoProfile, h.out.last(t, clientTG).text)
}

func TestPaymentFlow(t *testing.T) {
	h := registered(t)
	h.placeOrder(t)
	h.out.clear()

	h.say(clientTG, BtnPay)
	assert.Contains(t, h.out.last(t, clientTG).text, "Joriy qarz: 15 000 so'm")
	h.say(clientTG, "besh ming")
	assert.Equal(t, txtPaymentNotDigit, h.out.last(t, clientTG).text)
	h.say(clientTG, "0")
	assert.Equal(t, txtPaymentNotPos, h.out.last(t, clientTG).text)
	h.say(clientTG, "20 000")
	h.say(clientTG, BtnNoComment)
	assert.True(t, h.out.saw(clientTG, txtPaymentSubmitted))
	assert.Equal(t, int64(15000), h.user(t, clientTG).Debt)

	ask := h.out.last(t, adminTG)
	require.Len(t, ask.buttons, 2)
	assert.Contains(t, ask.text, "20 000 so'm")

	// клиент не может подтвердить оплату
	h.press(clientTG, ask.buttons[0].Data)
	assert.Equal(t, txtDenied, h.out.last(t, clientTG).text)

	h.press(adminTG, ask.buttons[0].Data)
	assert.Equal(t, int64(0), h.user(t, clientTG).Debt)
	assert.Contains(t, h.out.last(t, clientTG).text, "tasdiqlandi")

	h.press(adminTG, ask.buttons[1].Data)
	assert.Equal(t, txtPaymentDone, h.out.last(t, adminTG).text)

	h.say(adminTG, "/payments")
	assert.Equal(t, txtNoPending, h.out.last(t, adminTG).text)
}

func TestPaymentRejected(t *testing.T) {
	h := registered(t)
	h.placeOrder(t)
	h.say(clientTG, "/pay")
	h.say(clientTG, "5000")
	h.say(clientTG, "naqd")

	pending, err := h.payments.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "naqd", pending[0].Comment)

	h.say(adminTG, BtnPayments)
	ask := h.out.last(t, adminTG)
	assert.Contains(t, ask.text, "Izoh: naqd")

	h.press(adminTG, fmt.Sprintf("reject_payment_%d", pending[0].ID))
	assert.Contains(t, h.out.last(t, clientTG).text, "rad etildi")
	assert.Equal(t, int64(15000), h.user(t, clientTG).Debt)
	pending, err = h.payments.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCallbackEdgeCases(t *testing.T) {
	h := registered(t)
	o := h.placeOrder(t)

	h.press(clientTG, "launch_rocket_1")
	assert.Equal(t, txtUnknownAction, h.out.last(t, clientTG).text)
	h.press(clientTG, "confirm_order_abc")
	assert.Equal(t, txtUnknownAction, h.out.last(t, clientTG).text)

	// чужой заказ
	h.press(adminTG, fmt.Sprintf("confirm_order_%d", o.ID))
	assert.Equal(t, txtNotYourOrder, h.out.last(t, adminTG).text)

	h.press(clientTG, fmt.Sprintf("reject_order_%d", o.ID))
	assert.Equal(t, txtOrderRejected, h.out.last(t, clientTG).text)
	assert.True(t, h.out.saw(adminTG, "rad etdi"))
	got, err := h.orders.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.False(t, got.IsConfirmed)

	h.press(777, fmt.Sprintf("confirm_order_%d", o.ID))
	assert.Equal(t, txtNoProfile, h.out.last(t, 777).text)
}

func TestListProductsHidesForeignOrders(t *testing.T) {
	h := registered(t)
	o := h.placeOrder(t)
	h.say(200, "/start")

	h.say(200, fmt.Sprintf("/list_products %d", o.ID))
	assert.Equal(t, fmt.Sprintf("Buyurtma ID %d topilmadi.", o.ID), h.out.last(t, 200).text)

	h.say(clientTG, fmt.Sprintf("/list_products %d", o.ID))
	assert.Contains(t, h.out.last(t, clientTG).text, "Pomidor: 3 x 5 000 = 15 000")

	h.say(clientTG, "/list_products")
	assert.Equal(t, txtListProductsUsage, h.out.last(t, clientTG).text)
}

func TestSendFailureKeepsOrder(t *testing.T) {
	h := registered(t)
	h.out.failFor[clientTG] = true
	o := h.placeOrder(t)
	assert.Equal(t, int64(15000), o.TotalSum)
	assert.Equal(t, int64(15000), h.user(t, clientTG).Debt)
	assert.True(t, h.out.saw(adminTG, txtOrderCreated))
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1 000", 13000: "13 000", 1234567: "1 234 567", -5000: "-5 000"}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(in), in)
	}
}

func TestParseClientLabel(t *testing.T) {
	id, err := ParseClientLabel("Ali (Toshkent) Valiyev (12)")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"Ali", "Ali (x)", "Ali (0)", "Ali (12"} {
		_, err := ParseClientLabel(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCommand(t *testing.T) {
	cmd, arg := parseCommand("/list_products@ledger_bot 7")
	assert.Equal(t, CmdListProducts, cmd)
	assert.Equal(t, "7", arg)

	cmd, _ = parseCommand(BtnPay)
	assert.Equal(t, CmdPay, cmd)

	cmd, _ = parseCommand("Pomidor")
	assert.Empty(t, cmd)
}

func TestQuantityLimits(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	h.product(t, "Oltin", service.MaxAmount)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))

	h.say(adminTG, "Pomidor")
	h.say(adminTG, "1844674407370956")
	assert.Equal(t, txtQuantityTooLarge, h.out.last(t, adminTG).text)
	assert.IsType(t, session.AwaitingQuantity{}, h.states.Get(adminTG))
	h.say(adminTG, "3")
	require.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))

	// строка, после которой сумма корзины выходит за предел, не сохраняется
	h.say(adminTG, "Oltin")
	h.say(adminTG, "2")
	assert.Equal(t, txtOrderTooLarge, h.out.last(t, adminTG).text)
	st, ok := h.states.Get(adminTG).(session.AwaitingQuantity)
	require.True(t, ok)
	assert.Equal(t, int64(0), st.Draft.Quantity(st.ProductID))
	require.Len(t, st.Draft.Lines, 1)
	assert.Equal(t, int64(3), st.Draft.Lines[0].Quantity)

	h.say(adminTG, BtnMainMenu)
	assert.Equal(t, int64(0), h.user(t, clientTG).Debt)
}

func TestOrderRejectedWhenDebtLimitReached(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	_, err := h.clients.SetDebt(context.Background(), h.user(t, clientTG).ID, service.MaxAmount-1000)
	require.NoError(t, err)

	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, "Pomidor")
	h.say(adminTG, "1")
	h.say(adminTG, BtnCartDone)
	h.say(adminTG, BtnYes)
	assert.Equal(t, txtOrderTooLarge, h.out.last(t, adminTG).text)
	assert.IsType(t, session.BuildingCart{}, h.states.Get(adminTG))
	assert.Equal(t, service.MaxAmount-1000, h.user(t, clientTG).Debt)

	orders, err := h.orders.List(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPaymentAmountLimit(t *testing.T) {
	h := registered(t)
	h.say(clientTG, "/pay")
	h.say(clientTG, "2 000 000 000 000")
	assert.Equal(t, txtAmountTooLarge, h.out.last(t, clientTG).text)
	assert.IsType(t, session.AwaitingPaymentAmount{}, h.states.Get(clientTG))
}

func TestZeroQuantityReplies(t *testing.T) {
	h := registered(t)
	h.product(t, "Pomidor", 5000)
	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))

	h.out.clear()
	h.say(adminTG, "Pomidor")
	h.say(adminTG, "0")
	assert.True(t, h.out.saw(adminTG, txtCartUnchanged))
	assert.False(t, h.out.saw(adminTG, txtLineAdded))

	h.say(adminTG, "Pomidor")
	h.say(adminTG, "2")
	h.out.clear()
	h.say(adminTG, "Pomidor (2)")
	h.say(adminTG, "0")
	assert.True(t, h.out.saw(adminTG, txtLineRemoved))
	st := h.states.Get(adminTG).(session.BuildingCart)
	assert.True(t, st.Draft.Empty())
}

func TestProductLabelsDoNotCollide(t *testing.T) {
	h := registered(t)
	olma := h.product(t, "Olma", 1000)
	olma2 := h.product(t, "Olma (2)", 3000)
	tolov := h.product(t, BtnPayments, 500)
	slash := h.product(t, "/start", 700)

	h.say(adminTG, "/add_order")
	h.say(adminTG, clientLabel(*h.user(t, clientTG)))
	h.say(adminTG, "Olma")
	h.say(adminTG, "2")

	st := h.states.Get(adminTG).(session.BuildingCart)
	seen := map[int64]string{}
	for label, id := range st.Draft.Choices {
		seen[id] = label
	}
	require.Len(t, seen, 4)
	assert.Equal(t, "Olma (2)", seen[olma.ID])
	assert.Equal(t, fmt.Sprintf("Olma (2) #%d", olma2.ID), seen[olma2.ID])
	assert.Equal(t, fmt.Sprintf("%s #%d", BtnPayments, tolov.ID), seen[tolov.ID])
	assert.Equal(t, fmt.Sprintf("#%d /start", slash.ID), seen[slash.ID])

	// товар с подписью как у меню выбирается, корзина не сбрасывается
	h.say(adminTG, seen[tolov.ID])
	q, ok := h.states.Get(adminTG).(session.AwaitingQuantity)
	require.True(t, ok)
	assert.Equal(t, tolov.ID, q.ProductID)
	h.say(adminTG, "4")

	h.say(adminTG, seen[olma2.ID])
	q, ok = h.states.Get(adminTG).(session.AwaitingQuantity)
	require.True(t, ok)
	assert.Equal(t, olma2.ID, q.ProductID)
	h.say(adminTG, "1")

	st = h.states.Get(adminTG).(session.BuildingCart)
	assert.Equal(t, int64(2), st.Draft.Quantity(olma.ID))
	assert.Equal(t, int64(1), st.Draft.Quantity(olma2.ID))
	assert.Equal(t, int64(4), st.Draft.Quantity(tolov.ID))
}
