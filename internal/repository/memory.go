package repository

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"ledgerbot/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  map[string]int64
	users   map[int64]domain.User
	prods   map[int64]domain.Product
	orders  map[int64]domain.Order
	items   map[int64][]domain.OrderItem
	pays    map[int64]domain.Payment
	entries map[int64]domain.DebtEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  make(map[string]int64),
		users:   make(map[int64]domain.User),
		prods:   make(map[int64]domain.Product),
		orders:  make(map[int64]domain.Order),
		items:   make(map[int64][]domain.OrderItem),
		pays:    make(map[int64]domain.Payment),
		entries: make(map[int64]domain.DebtEntry),
	}
}

// NewMemoryLedger собирает все репозитории поверх одного хранилища
func NewMemoryLedger(store *MemoryStore) Ledger {
	return Ledger{
		Users:    &MemoryUsers{store: store},
		Products: store,
		Orders:   &MemoryOrders{store: store},
		Payments: &MemoryPayments{store: store},
		Entries:  &MemoryEntries{store: store},
		Tx:       NewMemoryTx(store),
	}
}

func (m *MemoryStore) next(table string) int64 {
	m.nextID[table]++
	return m.nextID[table]
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

func sortedValues[T any](src map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(src))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, src[k])
	}
	return out
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	for _, existing := range m.prods {
		if existing.Name == p.Name {
			return ErrDuplicate
		}
	}
	p.ID = m.next("products")
	m.prods[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.prods[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	for _, p := range m.prods {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.prods[p.ID]; !ok {
		return ErrNotFound
	}
	for _, existing := range m.prods {
		if existing.ID != p.ID && existing.Name == p.Name {
			return ErrDuplicate
		}
	}
	m.prods[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.prods[id]; !ok {
		return ErrNotFound
	}
	delete(m.prods, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range sortedValues(m.prods) {
		if matchProduct(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	for _, existing := range mu.store.users {
		if existing.TelegramID == u.TelegramID {
			return ErrDuplicate
		}
	}
	u.ID = mu.store.next("users")
	if u.Role == "" {
		u.Role = domain.RoleClient
	}
	u.CreatedAt = time.Now().UTC()
	mu.store.users[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (mu *MemoryUsers) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.users {
		if u.TelegramID == telegramID {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mu *MemoryUsers) Update(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.users[u.ID]; !ok {
		return ErrNotFound
	}
	mu.store.users[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) Delete(ctx context.Context, id int64) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.users[id]; !ok {
		return ErrNotFound
	}
	delete(mu.store.users, id)
	return nil
}

func (mu *MemoryUsers) List(ctx context.Context, f UserFilter) ([]domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	out := make([]domain.User, 0)
	for _, u := range sortedValues(mu.store.users) {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.next("orders")
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	mo.store.orders[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.orders[o.ID] = *o
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.orders, id)
	delete(mo.store.items, id)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range sortedValues(mo.store.orders) {
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (mo *MemoryOrders) AddItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[orderID]; !ok {
		return ErrNotFound
	}
	for i := range items {
		items[i].ID = mo.store.next("order_items")
		items[i].OrderID = orderID
		mo.store.items[orderID] = append(mo.store.items[orderID], items[i])
	}
	return nil
}

func (mo *MemoryOrders) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	return append([]domain.OrderItem(nil), mo.store.items[orderID]...), nil
}

type MemoryPayments struct{ store *MemoryStore }

var _ PaymentRepository = (*MemoryPayments)(nil)

func (mp *MemoryPayments) Create(ctx context.Context, p *domain.Payment) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	p.ID = mp.store.next("payments")
	p.CreatedAt = time.Now().UTC()
	mp.store.pays[p.ID] = *p
	return nil
}

func (mp *MemoryPayments) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	p, ok := mp.store.pays[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (mp *MemoryPayments) Confirm(ctx context.Context, id int64) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	p, ok := mp.store.pays[id]
	if !ok {
		return ErrNotFound
	}
	p.IsConfirmed = true
	mp.store.pays[id] = p
	return nil
}

func (mp *MemoryPayments) Delete(ctx context.Context, id int64) error {
	mp.store.wlock(ctx)
	defer mp.store.wunlock(ctx)
	if _, ok := mp.store.pays[id]; !ok {
		return ErrNotFound
	}
	delete(mp.store.pays, id)
	return nil
}

func (mp *MemoryPayments) List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error) {
	mp.store.rlock(ctx)
	defer mp.store.runlock(ctx)
	out := make([]domain.Payment, 0)
	for _, p := range sortedValues(mp.store.pays) {
		if f.UserID != 0 && p.UserID != f.UserID {
			continue
		}
		if f.Pending && p.IsConfirmed {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type MemoryEntries struct{ store *MemoryStore }

var _ DebtEntryRepository = (*MemoryEntries)(nil)

func (me *MemoryEntries) Append(ctx context.Context, e *domain.DebtEntry) error {
	me.store.wlock(ctx)
	defer me.store.wunlock(ctx)
	e.ID = me.store.next("debt_entries")
	e.CreatedAt = time.Now().UTC()
	me.store.entries[e.ID] = *e
	return nil
}

func (me *MemoryEntries) List(ctx context.Context, userID int64) ([]domain.DebtEntry, error) {
	me.store.rlock(ctx)
	defer me.store.runlock(ctx)
	out := make([]domain.DebtEntry, 0)
	for _, e := range sortedValues(me.store.entries) {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (me *MemoryEntries) DeleteByUser(ctx context.Context, userID int64) error {
	me.store.wlock(ctx)
	defer me.store.wunlock(ctx)
	for id, e := range me.store.entries {
		if e.UserID == userID {
			delete(me.store.entries, id)
		}
	}
	return nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	// Блокировка записи на всё время транзакции, контекст помечается, чтобы репозитории пропускали внутренние локи.
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	snap := tx.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	nextID  map[string]int64
	users   map[int64]domain.User
	prods   map[int64]domain.Product
	orders  map[int64]domain.Order
	items   map[int64][]domain.OrderItem
	pays    map[int64]domain.Payment
	entries map[int64]domain.DebtEntry
}

func (m *MemoryStore) snapshot() memorySnapshot {
	items := make(map[int64][]domain.OrderItem, len(m.items))
	for k, v := range m.items {
		items[k] = slices.Clone(v)
	}
	return memorySnapshot{
		nextID:  maps.Clone(m.nextID),
		users:   maps.Clone(m.users),
		prods:   maps.Clone(m.prods),
		orders:  maps.Clone(m.orders),
		items:   items,
		pays:    maps.Clone(m.pays),
		entries: maps.Clone(m.entries),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.nextID = s.nextID
	m.users = s.users
	m.prods = s.prods
	m.orders = s.orders
	m.items = s.items
	m.pays = s.pays
	m.entries = s.entries
}
