package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
	"ledgerbot/internal/session"
)

// Services сервисы учёта, которыми пользуется бот
type Services struct {
	Clients  *service.ClientService
	Products *service.ProductService
	Orders   *service.OrderService
	Payments *service.PaymentService
}

// Bot конечный автомат диалогов. Обработчики вызываются последовательно.
type Bot struct {
	clients  *service.ClientService
	products *service.ProductService
	orders   *service.OrderService
	payments *service.PaymentService
	states   session.Store
	out      Notifier
	logger   *log.Logger
}

func New(svc Services, states session.Store, out Notifier, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bot{
		clients:  svc.Clients,
		products: svc.Products,
		orders:   svc.Orders,
		payments: svc.Payments,
		states:   states,
		out:      out,
		logger:   logger,
	}
}

// request входящее сообщение вместе с отправителем
type request struct {
	Message
	user *domain.User
	log  *log.Entry
}

// admin-команды проверяются до сброса состояния
var adminCommands = map[string]string{
	CmdAddOrder:    txtDeniedAddOrder,
	CmdDeleteOrder: txtDeniedDeleteOrder,
	CmdEditClient:  txtDeniedEditClient,
	CmdPayments:    txtDenied,
}

var menuCommands = map[string]string{
	BtnAddOrder:    CmdAddOrder,
	BtnDeleteOrder: CmdDeleteOrder,
	BtnEditClient:  CmdEditClient,
	BtnListOrders:  CmdListOrders,
	BtnPay:         CmdPay,
	BtnPayments:    CmdPayments,
}

// parseCommand "/list_products 5" -> ("list_products", "5"); подписи меню тоже считаются командами
func parseCommand(text string) (cmd, arg string) {
	if c, ok := menuCommands[text]; ok {
		return c, ""
	}
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return "", ""
	}
	cmd = fields[0]
	// /cmd@botname
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	if len(fields) > 1 {
		arg = fields[1]
	}
	return cmd, arg
}

// HandleMessage обрабатывает одно сообщение до конца. Ошибки и паники не выходят наружу.
func (b *Bot) HandleMessage(ctx context.Context, m Message) {
	st := b.states.Get(m.UserID)
	req := &request{Message: m}
	req.Text = strings.TrimSpace(m.Text)
	req.log = b.logger.WithFields(log.Fields{
		"update_id": uuid.NewString(),
		"user_id":   m.UserID,
		"state":     st.Name(),
	})
	req.log.Debug("message received")

	defer func() {
		if r := recover(); r != nil {
			req.log.WithField("panic", r).Error("message handler panicked")
			b.fail(ctx, req)
		}
	}()
	if err := b.dispatch(ctx, req, st); err != nil {
		req.log.WithError(err).Error("message handler failed")
		b.fail(ctx, req)
	}
}

// fail общий ответ на непредвиденную ошибку; диалог сбрасывается
func (b *Bot) fail(ctx context.Context, req *request) {
	b.states.Reset(req.UserID)
	b.send(ctx, req.ChatID, txtFailure, nil)
}

func (b *Bot) dispatch(ctx context.Context, req *request, st session.State) error {
	if req.Text == BtnMainMenu {
		b.states.Reset(req.UserID)
		return b.showMenu(ctx, req)
	}

	cmd, arg := parseCommand(req.Text)
	if cmd == CmdStart {
		b.states.Reset(req.UserID)
		return b.cmdStart(ctx, req)
	}

	u, err := b.clients.ByTelegramID(ctx, req.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		b.states.Reset(req.UserID)
		b.send(ctx, req.ChatID, txtNoProfile, nil)
		return nil
	}
	if err != nil {
		return err
	}
	req.user = u

	if cmd != "" {
		return b.runCommand(ctx, req, cmd, arg)
	}

	switch s := st.(type) {
	case session.Idle:
		return b.unknownInput(ctx, req)
	case session.SelectingClient:
		return b.onClientSelected(ctx, req, s)
	case session.BuildingCart:
		return b.onCartInput(ctx, req, s)
	case session.AddingProduct:
		return b.onNewProduct(ctx, req, s)
	case session.AwaitingQuantity:
		return b.onQuantity(ctx, req, s)
	case session.ConfirmingOrder:
		return b.onOrderConfirmation(ctx, req, s)
	case session.SelectingOrderForDeletion:
		return b.onOrderForDeletion(ctx, req, s)
	case session.ChoosingField:
		return b.onFieldChosen(ctx, req, s)
	case session.EditingField:
		return b.onFieldValue(ctx, req, s)
	case session.ApplyingDiscount:
		return b.onDiscount(ctx, req, s)
	case session.ConfirmingClientDeletion:
		return b.onClientDeletion(ctx, req, s)
	case session.AwaitingPaymentAmount:
		return b.onPaymentAmount(ctx, req)
	case session.AwaitingPaymentComment:
		return b.onPaymentComment(ctx, req, s)
	default:
		return fmt.Errorf("unhandled state %T", st)
	}
}

// runCommand команда прерывает текущий диалог; запрет по роли состояние не трогает
func (b *Bot) runCommand(ctx context.Context, req *request, cmd, arg string) error {
	if denied, ok := adminCommands[cmd]; ok && !req.user.IsAdmin() {
		b.send(ctx, req.ChatID, denied, nil)
		return nil
	}
	if cmd == CmdPay && req.user.IsAdmin() {
		b.send(ctx, req.ChatID, txtClientsOnly, nil)
		return nil
	}
	b.states.Reset(req.UserID)
	switch cmd {
	case CmdHelp:
		b.send(ctx, req.ChatID, helpText(req.user.IsAdmin()), nil)
		return nil
	case CmdAddOrder:
		return b.startClientSelection(ctx, req, session.PurposeOrder)
	case CmdDeleteOrder:
		return b.startClientSelection(ctx, req, session.PurposeDeleteOrder)
	case CmdEditClient:
		return b.startClientSelection(ctx, req, session.PurposeEdit)
	case CmdListOrders:
		return b.cmdListOrders(ctx, req)
	case CmdListProducts:
		return b.cmdListProducts(ctx, req, arg)
	case CmdPay:
		return b.cmdPay(ctx, req)
	case CmdPayments:
		return b.cmdPendingPayments(ctx, req)
	}
	return b.unknownInput(ctx, req)
}

func (b *Bot) cmdStart(ctx context.Context, req *request) error {
	u, created, err := b.clients.Register(ctx, service.Profile{
		TelegramID: req.UserID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		return err
	}
	req.user = u
	if created {
		req.log.WithField("role", u.Role).Info("user registered")
		b.send(ctx, req.ChatID, fmt.Sprintf("Salom, %s! Sizning ma`lumotlarinigiz saqlandi.", req.FirstName), nil)
	} else {
		b.send(ctx, req.ChatID, fmt.Sprintf("Qaytadan salom, %s!", req.FirstName), nil)
	}
	return b.showMenu(ctx, req)
}

func (b *Bot) unknownInput(ctx context.Context, req *request) error {
	b.send(ctx, req.ChatID, txtUnknownCommand+"\n"+helpText(req.user.IsAdmin()), nil)
	return nil
}

func menuKeyboard(u *domain.User) *Keyboard {
	if u.IsAdmin() {
		return keyboard(
			[]string{BtnAddOrder, BtnDeleteOrder},
			[]string{BtnEditClient, BtnListOrders},
			[]string{BtnPayments},
		)
	}
	return keyboard([]string{BtnListOrders, BtnPay})
}

// showMenu меню по роли; незарегистрированному предлагает /start
func (b *Bot) showMenu(ctx context.Context, req *request) error {
	if req.user == nil {
		u, err := b.clients.ByTelegramID(ctx, req.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			b.send(ctx, req.ChatID, txtNoProfile, nil)
			return nil
		}
		if err != nil {
			return err
		}
		req.user = u
	}
	b.send(ctx, req.ChatID, txtMenu, menuKeyboard(req.user))
	return nil
}

// done завершает диалог и возвращает меню
func (b *Bot) done(ctx context.Context, req *request) error {
	b.states.Reset(req.UserID)
	return b.showMenu(ctx, req)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, kb *Keyboard) {
	if err := b.out.SendText(ctx, chatID, text, kb); err != nil {
		b.logger.WithError(err).WithField("chat_id", chatID).Warn("send failed")
	}
}

func (b *Bot) sendInline(ctx context.Context, chatID int64, text string, buttons []InlineButton) {
	if err := b.out.SendInline(ctx, chatID, text, buttons); err != nil {
		b.logger.WithError(err).WithField("chat_id", chatID).Warn("send inline failed")
	}
}

// notifyAdmins рассылка всем администраторам, кроме except
func (b *Bot) notifyAdmins(ctx context.Context, text string, buttons []InlineButton, except int64) {
	admins, err := b.clients.ListAdmins(ctx)
	if err != nil {
		b.logger.WithError(err).Warn("list admins failed")
		return
	}
	for _, a := range admins {
		if a.TelegramID == except {
			continue
		}
		if len(buttons) > 0 {
			b.sendInline(ctx, a.TelegramID, text, buttons)
		} else {
			b.send(ctx, a.TelegramID, text, nil)
		}
	}
}
