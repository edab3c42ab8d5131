package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
)

// startClientSelection первый шаг admin-диалогов: клавиатура клиентов
func (b *Bot) startClientSelection(ctx context.Context, req *request, purpose session.Purpose) error {
	clients, err := b.clients.ListClients(ctx)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		b.send(ctx, req.ChatID, txtClientsNotFound, keyboard([]string{BtnMainMenu}))
		return nil
	}
	labels := make([]string, 0, len(clients)+1)
	for _, c := range clients {
		labels = append(labels, clientLabel(c))
	}
	b.states.Set(req.UserID, session.SelectingClient{Purpose: purpose})
	b.send(ctx, req.ChatID, txtChooseClient, column(append(labels, BtnMainMenu)...))
	return nil
}

func (b *Bot) onClientSelected(ctx context.Context, req *request, s session.SelectingClient) error {
	id, err := ParseClientLabel(req.Text)
	if err != nil {
		b.send(ctx, req.ChatID, txtBadClient, nil)
		return nil
	}
	client, err := b.clients.ByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, txtClientNotFound, nil)
		return b.done(ctx, req)
	}
	if err != nil {
		return err
	}
	switch s.Purpose {
	case session.PurposeOrder:
		draft := session.NewDraft(client.ID)
		kb, err := b.productKeyboard(ctx, draft)
		if err != nil {
			return err
		}
		b.states.Set(req.UserID, session.BuildingCart{Draft: draft})
		b.send(ctx, req.ChatID, txtChooseProducts, kb)
	case session.PurposeEdit:
		b.send(ctx, req.ChatID, renderClient(client), nil)
		b.states.Set(req.UserID, session.ChoosingField{ClientID: client.ID})
		b.send(ctx, req.ChatID, txtChooseField, fieldKeyboard())
	case session.PurposeDeleteOrder:
		return b.showOrdersForDeletion(ctx, req, client.ID)
	}
	return nil
}

// productKeyboard клавиатура товаров; запоминает подпись -> id в черновике
func (b *Bot) productKeyboard(ctx context.Context, d *session.Draft) (*Keyboard, error) {
	products, err := b.products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	if d.Choices == nil {
		d.Choices = make(map[string]int64, len(products))
	}
	clear(d.Choices)
	kb := &Keyboard{}
	for _, p := range products {
		label := productLabel(p.Name, d.Quantity(p.ID), p.ID, d.Choices)
		d.Choices[label] = p.ID
		kb.Rows = append(kb.Rows, []string{label})
	}
	kb.Rows = append(kb.Rows, []string{BtnMainMenu}, []string{BtnAddProduct}, []string{BtnCartDone})
	return kb, nil
}

// productLabel подпись товара: "Olma" или "Olma (2)". Подпись, совпадающая с кнопкой меню,
// командой или уже занятой подписью, получает суффикс " #id".
func productLabel(name string, qty, id int64, taken map[string]int64) string {
	label := name
	if qty > 0 {
		label = fmt.Sprintf("%s (%d)", name, qty)
	}
	if strings.HasPrefix(label, "/") {
		label = fmt.Sprintf("#%d %s", id, label)
	}
	for {
		_, used := taken[label]
		if !used && !reservedLabel(label) {
			return label
		}
		label = fmt.Sprintf("%s #%d", label, id)
	}
}

// reservedLabel текст, который диалог корзины разбирает до поиска товара
func reservedLabel(label string) bool {
	switch label {
	case BtnMainMenu, BtnAddProduct, BtnCartDone:
		return true
	}
	_, ok := menuCommands[label]
	return ok
}

// onCartInput ожидание товара, нового товара или завершения корзины
func (b *Bot) onCartInput(ctx context.Context, req *request, s session.BuildingCart) error {
	d := s.Draft
	switch req.Text {
	case BtnAddProduct:
		b.states.Set(req.UserID, session.AddingProduct{Draft: d})
		b.send(ctx, req.ChatID, txtNewProduct, keyboard([]string{BtnMainMenu}))
		return nil
	case BtnCartDone:
		if d.Empty() {
			return b.promptCart(ctx, req, d, txtCartEmpty)
		}
		preview, err := b.orders.Preview(ctx, d.Cart())
		if errors.Is(err, repository.ErrNotFound) {
			b.send(ctx, req.ChatID, txtOrderGone, nil)
			return b.done(ctx, req)
		}
		if errors.Is(err, service.ErrAmountTooLarge) {
			return b.promptCart(ctx, req, d, txtOrderTooLarge)
		}
		if err != nil {
			return err
		}
		b.states.Set(req.UserID, session.ConfirmingOrder{Draft: d})
		b.send(ctx, req.ChatID, renderCart(preview)+"\n\n"+txtConfirmOrder, keyboard([]string{BtnYes, BtnNo}, []string{BtnMainMenu}))
		return nil
	}
	productID, ok := d.Resolve(req.Text)
	if !ok {
		return b.promptCart(ctx, req, d, txtUnknownProduct)
	}
	b.states.Set(req.UserID, session.AwaitingQuantity{Draft: d, ProductID: productID})
	text := txtEnterQuantity
	if q := d.Quantity(productID); q > 0 {
		text = fmt.Sprintf("%s (hozir: %d, 0 - olib tashlash)", txtEnterQuantity, q)
	}
	b.send(ctx, req.ChatID, text, keyboard([]string{BtnMainMenu}))
	return nil
}

// promptCart повторно показывает клавиатуру товаров, состояние корзины не меняется
func (b *Bot) promptCart(ctx context.Context, req *request, d *session.Draft, text string) error {
	kb, err := b.productKeyboard(ctx, d)
	if err != nil {
		return err
	}
	b.states.Set(req.UserID, session.BuildingCart{Draft: d})
	b.send(ctx, req.ChatID, text, kb)
	return nil
}

func (b *Bot) onNewProduct(ctx context.Context, req *request, s session.AddingProduct) error {
	p, err := service.ParseProductInput(req.Text)
	if err != nil {
		b.send(ctx, req.ChatID, txtNewProduct, nil)
		return nil
	}
	if _, err := b.products.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			b.send(ctx, req.ChatID, txtProductExists, nil)
			return nil
		}
		if errors.Is(err, service.ErrInvalidInput) {
			b.send(ctx, req.ChatID, txtNewProduct, nil)
			return nil
		}
		return err
	}
	req.log.WithField("product", p.Name).Info("product created")
	return b.promptCart(ctx, req, s.Draft, txtProductAdded)
}

// parseAmount целое число, пробелы между разрядами допускаются
func parseAmount(text string) (int64, error) {
	return strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(text), " ", ""), 10, 64)
}

func (b *Bot) onQuantity(ctx context.Context, req *request, s session.AwaitingQuantity) error {
	qty, err := parseAmount(req.Text)
	if err != nil || qty < 0 {
		b.send(ctx, req.ChatID, txtQuantityNotDigit, nil)
		return nil
	}
	if qty > service.MaxQuantity {
		b.send(ctx, req.ChatID, txtQuantityTooLarge, nil)
		return nil
	}
	d := s.Draft
	prev := d.Quantity(s.ProductID)
	d.Set(s.ProductID, qty)
	if d.Empty() {
		b.send(ctx, req.ChatID, lineChangeText(prev, qty), nil)
		return b.promptCart(ctx, req, d, txtChooseProduct)
	}
	preview, err := b.orders.Preview(ctx, d.Cart())
	switch {
	case errors.Is(err, service.ErrAmountTooLarge):
		// строка откатывается, ждём другое количество
		d.Set(s.ProductID, prev)
		b.send(ctx, req.ChatID, txtOrderTooLarge, nil)
		return nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}
	b.send(ctx, req.ChatID, lineChangeText(prev, qty), nil)
	if err == nil {
		b.send(ctx, req.ChatID, renderCart(preview), nil)
	}
	return b.promptCart(ctx, req, d, txtChooseProduct)
}

// lineChangeText ответ на ввод количества
func lineChangeText(prev, qty int64) string {
	switch {
	case qty > 0:
		return txtLineAdded
	case prev > 0:
		return txtLineRemoved
	}
	return txtCartUnchanged
}

func (b *Bot) onOrderConfirmation(ctx context.Context, req *request, s session.ConfirmingOrder) error {
	switch req.Text {
	case BtnYes:
	case BtnNo:
		b.send(ctx, req.ChatID, txtOrderCancelled, nil)
		return b.done(ctx, req)
	default:
		b.send(ctx, req.ChatID, txtChooseYesNo, keyboard([]string{BtnYes, BtnNo}, []string{BtnMainMenu}))
		return nil
	}

	receipt, err := b.orders.BuildOrder(ctx, s.Draft.ClientID, s.Draft.Cart())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		b.send(ctx, req.ChatID, txtOrderGone, nil)
		return b.done(ctx, req)
	case errors.Is(err, service.ErrEmptyCart):
		return b.promptCart(ctx, req, s.Draft, txtCartEmpty)
	case errors.Is(err, service.ErrAmountTooLarge):
		return b.promptCart(ctx, req, s.Draft, txtOrderTooLarge)
	case err != nil:
		return err
	}
	req.log.WithField("order_id", receipt.Order.ID).
		WithField("client_id", receipt.Client.ID).
		WithField("total_sum", receipt.Order.TotalSum).
		Info("order created")

	b.send(ctx, req.ChatID, txtOrderCreated+"\n\n"+renderReceipt(receipt), nil)
	b.sendInline(ctx, receipt.Client.TelegramID, txtNewOrderForYou+"\n\n"+renderReceipt(receipt), orderButtons(receipt.Order.ID))
	return b.done(ctx, req)
}

func orderButtons(orderID int64) []InlineButton {
	return []InlineButton{
		{Text: "Tasdiqlash", Data: fmt.Sprintf("%s%d", cbConfirmOrder, orderID)},
		{Text: "Rad etish", Data: fmt.Sprintf("%s%d", cbRejectOrder, orderID)},
	}
}

func (b *Bot) showOrdersForDeletion(ctx context.Context, req *request, clientID int64) error {
	orders, err := b.orders.List(ctx, repository.OrderFilter{UserID: clientID})
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		b.states.Reset(req.UserID)
		b.send(ctx, req.ChatID, txtClientHasNoOrders, keyboard([]string{BtnMainMenu}))
		return nil
	}
	choices := make(map[string]int64, len(orders))
	labels := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		label := orderLabel(o.Order)
		choices[label] = o.ID
		labels = append(labels, label)
	}
	b.states.Set(req.UserID, session.SelectingOrderForDeletion{ClientID: clientID, Choices: choices})
	b.send(ctx, req.ChatID, txtChooseOrderToDelete, column(append(labels, BtnMainMenu)...))
	return nil
}

func (b *Bot) onOrderForDeletion(ctx context.Context, req *request, s session.SelectingOrderForDeletion) error {
	orderID, ok := s.Choices[req.Text]
	if !ok {
		b.send(ctx, req.ChatID, txtBadOrder, nil)
		return nil
	}
	removed, err := b.orders.DeleteOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		b.send(ctx, req.ChatID, fmt.Sprintf("Buyurtma %d topilmadi.", orderID), nil)
		return b.done(ctx, req)
	}
	if err != nil {
		return err
	}
	req.log.WithField("order_id", removed.ID).Info("order deleted")
	b.send(ctx, req.ChatID, fmt.Sprintf("Buyurtma %d muvaffaqiyatli o`chirildi.", removed.ID), nil)
	b.OrderDeleted(ctx, removed)
	return b.done(ctx, req)
}

func (b *Bot) cmdListOrders(ctx context.Context, req *request) error {
	admin := req.user.IsAdmin()
	f := repository.OrderFilter{}
	if !admin {
		f.UserID = req.user.ID
	}
	orders, err := b.orders.List(ctx, f)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		if admin {
			b.send(ctx, req.ChatID, txtOrdersNotFound, nil)
		} else {
			b.send(ctx, req.ChatID, txtOwnOrdersNotFound, nil)
		}
		return b.showMenu(ctx, req)
	}
	var sb strings.Builder
	if admin {
		sb.WriteString("Barcha buyurtmalar:\n\n")
	} else {
		sb.WriteString("Sizning buyurtmalaringiz:\n\n")
	}
	for _, o := range orders {
		sb.WriteString(renderOrderLine(o, admin))
		sb.WriteString("\n")
	}
	if !admin {
		fmt.Fprintf(&sb, "Joriy qarz: %s", money(req.user.Debt))
	}
	b.send(ctx, req.ChatID, strings.TrimRight(sb.String(), "\n"), nil)
	return b.showMenu(ctx, req)
}

// cmdListProducts чек одного заказа; клиент видит только свои
func (b *Bot) cmdListProducts(ctx context.Context, req *request, arg string) error {
	orderID, err := strconv.ParseInt(arg, 10, 64)
	if arg == "" || err != nil || orderID <= 0 {
		b.send(ctx, req.ChatID, txtListProductsUsage, nil)
		return nil
	}
	receipt, err := b.orders.Receipt(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !req.user.IsAdmin() && receipt.Order.UserID != req.user.ID) {
		b.send(ctx, req.ChatID, fmt.Sprintf("Buyurtma ID %d topilmadi.", orderID), nil)
		return nil
	}
	if err != nil {
		return err
	}
	b.send(ctx, req.ChatID, renderReceipt(receipt), nil)
	return nil
}
