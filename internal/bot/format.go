package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/service"
)

const dateLayout = "02/01/2006"

// FormatMoney группирует разряды пробелом: 13000 -> "13 000"
func FormatMoney(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

func money(v int64) string { return FormatMoney(v) + " " + currency }

// clientLabel подпись клиента на кнопке: "Ism Familiya (id)"
func clientLabel(u domain.User) string {
	name := u.DisplayName()
	if name == "" {
		name = "Mijoz"
	}
	return fmt.Sprintf("%s (%d)", name, u.ID)
}

var errBadLabel = errors.New("bad label")

// ParseClientLabel достаёт id из последних скобок подписи
func ParseClientLabel(text string) (int64, error) {
	text = strings.TrimSpace(text)
	open := strings.LastIndex(text, "(")
	if open < 0 || !strings.HasSuffix(text, ")") {
		return 0, errBadLabel
	}
	id, err := strconv.ParseInt(strings.TrimSpace(text[open+1:len(text)-1]), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadLabel
	}
	return id, nil
}

func orderLabel(o domain.Order) string {
	return fmt.Sprintf("Buyurtma ID: %d, Miqdor: %s, Sana: %s", o.ID, FormatMoney(o.TotalSum), o.CreatedAt.Format(dateLayout))
}

func confirmedText(ok bool) string {
	if ok {
		return BtnYes
	}
	return "Yo`q"
}

// renderReceipt чек заказа для администратора и клиента
func renderReceipt(r *service.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buyurtma ID: %d\n", r.Order.ID)
	fmt.Fprintf(&b, "Sana: %s\n", r.Order.CreatedAt.Format(dateLayout))
	if name := r.Client.DisplayName(); name != "" {
		fmt.Fprintf(&b, "Mijoz: %s\n", name)
	}
	b.WriteString("\n")
	b.WriteString(renderItems(r.Items))
	fmt.Fprintf(&b, "\nJami summa: %s\n", money(r.Order.TotalSum))
	fmt.Fprintf(&b, "Miqdor: %d\n", r.Order.TotalQuantity)
	fmt.Fprintf(&b, "Savdodan avvalgi qarz: %s\n", money(r.Order.BeforeOrderDebt))
	fmt.Fprintf(&b, "Umumiy qarz: %s\n", money(r.Order.TotalDebt))
	fmt.Fprintf(&b, "Tasdiq: %s", confirmedText(r.Order.IsConfirmed))
	return b.String()
}

func renderItems(items []domain.OrderItem) string {
	if len(items) == 0 {
		return "Mahsulotlar topilmadi.\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s: %d x %s = %s\n", it.ProductName, it.Quantity, FormatMoney(it.Price), FormatMoney(it.Sum()))
	}
	return b.String()
}

// renderCart итог корзины до оформления
func renderCart(r *service.Receipt) string {
	return "Sizning buyurtmangiz:\n" + renderItems(r.Items) + "Jami summa: " + money(r.Order.TotalSum)
}

func renderOrderLine(v service.OrderView, withClient bool) string {
	var b strings.Builder
	if withClient {
		name := v.ClientName
		if name == "" {
			name = "Noma`lum"
		}
		fmt.Fprintf(&b, "Mijoz: %s\n", name)
	}
	fmt.Fprintf(&b, "Buyurtma ID: %d\n", v.ID)
	fmt.Fprintf(&b, "Sana: %s\n", v.CreatedAt.Format(dateLayout))
	fmt.Fprintf(&b, "Jami summa: %s\n", money(v.TotalSum))
	fmt.Fprintf(&b, "Miqdor: %d\n", v.TotalQuantity)
	fmt.Fprintf(&b, "Qarzdan oldingi holat: %s\n", money(v.BeforeOrderDebt))
	fmt.Fprintf(&b, "Tasdiq: %s\n", confirmedText(v.IsConfirmed))
	return b.String()
}

func renderClient(u *domain.User) string {
	return fmt.Sprintf("Mijoz haqida:\nUsername: %s\nIsm: %s\nFamiliya: %s\nSistemadagi Ism: %s\nQarzi: %s\nChegirma: %s\nType: %s",
		u.Username, u.FirstName, u.LastName, u.SavedName, money(u.Debt), money(u.Discount), u.Role)
}

func renderPayment(p domain.Payment, client string) string {
	text := fmt.Sprintf("To'lov ID: %d\nMijoz: %s\nSumma: %s", p.ID, client, money(p.Amount))
	if p.Comment != "" {
		text += "\nIzoh: " + p.Comment
	}
	return text
}

func helpText(admin bool) string {
	var b strings.Builder
	b.WriteString("Buyurtma tizimi uchun mavjud komandalar:\n\n")
	b.WriteString("/start - Ro'yxatdan o'tkazish yoki qayta kirish\n")
	b.WriteString("/help - Barcha mavjud komandalarni ko'rsatish\n")
	if admin {
		b.WriteString("/add_order - Buyurtma qo'shish (faqat adminlar uchun)\n")
		b.WriteString("/delete_order - Buyurtmani o'chirish (faqat adminlar uchun)\n")
		b.WriteString("/edit_client - Mijoz ma'lumotlarini o'zgartirish (faqat adminlar uchun)\n")
		b.WriteString("/payments - Tasdiqlanmagan to'lovlar (faqat adminlar uchun)\n")
	} else {
		b.WriteString("/pay - To'lov qilish\n")
	}
	b.WriteString("/list_orders - Barcha buyurtmalarni ro'yxatini ko'rsatish\n")
	b.WriteString("/list_products <order_id> - Belgilangan buyurtma ID bo'yicha barcha mahsulotlarni ko'rsatish\n")
	return b.String()
}

// Command команда для меню клиента telegram
type Command struct {
	Name        string
	Description string
}

// Commands команды в порядке показа
func Commands() []Command {
	return []Command{
		{CmdStart, "Ro'yxatdan o'tkazish yoki qayta kirish"},
		{CmdHelp, "Barcha mavjud komandalarni ko'rsatish"},
		{CmdAddOrder, "Buyurtma qo'shish (faqat adminlar uchun)"},
		{CmdDeleteOrder, "Buyurtmani o'chirish (faqat adminlar uchun)"},
		{CmdEditClient, "Mijoz ma'lumotlarini o'zgartirish (faqat adminlar uchun)"},
		{CmdListOrders, "Barcha buyurtmalarni ro'yxatini ko'rsatish"},
		{CmdListProducts, "Belgilangan buyurtma ID bo'yicha barcha mahsulotlarni ko'rsatish"},
		{CmdPay, "To'lov qilish"},
		{CmdPayments, "Tasdiqlanmagan to'lovlar (faqat adminlar uchun)"},
	}
}
