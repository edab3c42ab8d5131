// Package export выгружает клиентов и заказы в xlsx.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
)

const (
	SheetClients = "Mijozlar"
	SheetOrders  = "Buyurtmalar"
	dateLayout   = "02/01/2006 15:04"
)

type ClientLister interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

type OrderLister interface {
	List(ctx context.Context, f repository.OrderFilter) ([]service.OrderView, error)
}

// Source откуда берутся строки отчёта
type Source struct {
	Clients ClientLister
	Orders  OrderLister
}

var (
	clientHeader = []any{"ID", "Telegram ID", "Username", "Ism", "Familiya", "Sistemadagi Ism", "Type", "Qarzi", "Chegirma"}
	orderHeader  = []any{"Buyurtma ID", "Mijoz", "Sana", "Jami summa", "Miqdor", "Savdodan avvalgi qarz", "Umumiy qarz", "Tasdiq"}
)

// WriteWorkbook пишет книгу с листами клиентов и заказов
func WriteWorkbook(ctx context.Context, w io.Writer, src Source) error {
	users, err := src.Clients.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list clients: %w", err)
	}
	orders, err := src.Orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetClients); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetOrders); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	clientRows := make([][]any, 0, len(users))
	for _, u := range users {
		clientRows = append(clientRows, []any{u.ID, u.TelegramID, u.Username, u.FirstName, u.LastName, u.SavedName, string(u.Role), u.Debt, u.Discount})
	}
	if err := writeSheet(f, SheetClients, bold, clientHeader, clientRows); err != nil {
		return err
	}

	orderRows := make([][]any, 0, len(orders))
	for _, o := range orders {
		confirmed := "Yo'q"
		if o.IsConfirmed {
			confirmed = "Ha"
		}
		orderRows = append(orderRows, []any{o.ID, o.ClientName, o.CreatedAt.Format(dateLayout), o.TotalSum, o.TotalQuantity, o.BeforeOrderDebt, o.TotalDebt, confirmed})
	}
	if err := writeSheet(f, SheetOrders, bold, orderHeader, orderRows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 18)
}
