package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledgerbot/internal/domain"
)

// OpenGorm открывает базу по имени драйвера: sqlite (по умолчанию) или postgres
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}

// Migrate создаёт или обновляет таблицы учёта
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Payment{},
		&domain.DebtEntry{},
	)
}

// NewGormLedger собирает репозитории поверх одного *gorm.DB
func NewGormLedger(db *gorm.DB) Ledger {
	base := gormBase{db: db}
	return Ledger{
		Users:    &GormUsers{base},
		Products: &GormProducts{base},
		Orders:   &GormOrders{base},
		Payments: &GormPayments{base},
		Entries:  &GormEntries{base},
		Tx:       &GormTx{base},
	}
}

type gormTxKey struct{}

type gormBase struct{ db *gorm.DB }

// conn возвращает транзакцию из контекста, если она открыта
func (b gormBase) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return b.db.WithContext(ctx)
}

func mapGormErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"),
		strings.Contains(err.Error(), "duplicate key value"):
		return ErrDuplicate
	default:
		return err
	}
}

func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return mapGormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type GormTx struct{ gormBase }

func (t *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}

type GormUsers struct{ gormBase }

var _ UserRepository = (*GormUsers)(nil)

func (r *GormUsers) Create(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleClient
	}
	return mapGormErr(r.conn(ctx).Create(u).Error)
}

func (r *GormUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.conn(ctx).First(&u, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &u, nil
}

func (r *GormUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var u domain.User
	if err := r.conn(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &u, nil
}

func (r *GormUsers) Update(ctx context.Context, u *domain.User) error {
	res := r.conn(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Select("*").Omit("id", "created_at").Updates(u)
	return deleted(res)
}

func (r *GormUsers) Delete(ctx context.Context, id int64) error {
	return deleted(r.conn(ctx).Delete(&domain.User{}, id))
}

func (r *GormUsers) List(ctx context.Context, f UserFilter) ([]domain.User, error) {
	q := r.conn(ctx).Order("id")
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var out []domain.User
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type GormProducts struct{ gormBase }

var _ ProductRepository = (*GormProducts)(nil)

func (r *GormProducts) Create(ctx context.Context, p *domain.Product) error {
	return mapGormErr(r.conn(ctx).Create(p).Error)
}

func (r *GormProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.conn(ctx).First(&p, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &p, nil
}

func (r *GormProducts) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	if err := r.conn(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &p, nil
}

func (r *GormProducts) Update(ctx context.Context, p *domain.Product) error {
	res := r.conn(ctx).Model(&domain.Product{}).Where("id = ?", p.ID).
		Updates(map[string]any{"name": p.Name, "price": p.Price})
	return deleted(res)
}

func (r *GormProducts) Delete(ctx context.Context, id int64) error {
	return deleted(r.conn(ctx).Delete(&domain.Product{}, id))
}

func (r *GormProducts) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	q := r.conn(ctx).Order("id")
	if f.NameSubstring != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.NameSubstring)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	var out []domain.Product
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type GormOrders struct{ gormBase }

var _ OrderRepository = (*GormOrders)(nil)

func (r *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	return r.conn(ctx).Create(o).Error
}

func (r *GormOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.conn(ctx).First(&o, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &o, nil
}

func (r *GormOrders) Update(ctx context.Context, o *domain.Order) error {
	res := r.conn(ctx).Model(&domain.Order{}).Where("id = ?", o.ID).Select("*").Omit("id", "created_at").Updates(o)
	return deleted(res)
}

func (r *GormOrders) Delete(ctx context.Context, id int64) error {
	db := r.conn(ctx)
	if err := db.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
		return err
	}
	return deleted(db.Delete(&domain.Order{}, id))
}

func (r *GormOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	q := r.conn(ctx).Order("id")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormOrders) AddItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return r.conn(ctx).Create(&items).Error
}

func (r *GormOrders) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	if err := r.conn(ctx).Where("order_id = ?", orderID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type GormPayments struct{ gormBase }

var _ PaymentRepository = (*GormPayments)(nil)

func (r *GormPayments) Create(ctx context.Context, p *domain.Payment) error {
	return r.conn(ctx).Create(p).Error
}

func (r *GormPayments) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.conn(ctx).First(&p, id).Error; err != nil {
		return nil, mapGormErr(err)
	}
	return &p, nil
}

func (r *GormPayments) Confirm(ctx context.Context, id int64) error {
	return deleted(r.conn(ctx).Model(&domain.Payment{}).Where("id = ?", id).Update("is_confirmed", true))
}

func (r *GormPayments) Delete(ctx context.Context, id int64) error {
	return deleted(r.conn(ctx).Delete(&domain.Payment{}, id))
}

func (r *GormPayments) List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error) {
	q := r.conn(ctx).Order("id")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Pending {
		q = q.Where("is_confirmed = ?", false)
	}
	var out []domain.Payment
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

type GormEntries struct{ gormBase }

var _ DebtEntryRepository = (*GormEntries)(nil)

func (r *GormEntries) Append(ctx context.Context, e *domain.DebtEntry) error {
	return r.conn(ctx).Create(e).Error
}

func (r *GormEntries) List(ctx context.Context, userID int64) ([]domain.DebtEntry, error) {
	var out []domain.DebtEntry
	if err := r.conn(ctx).Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormEntries) DeleteByUser(ctx context.Context, userID int64) error {
	return r.conn(ctx).Where("user_id = ?", userID).Delete(&domain.DebtEntry{}).Error
}
