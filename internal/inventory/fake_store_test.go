package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pantry-be/internal/db"
)

// memStore is an in-memory Repository with per-product row locks and
// writes that only become visible when the owning transaction commits.
type memStore struct {
	mu       sync.Mutex
	products map[string]*memProduct
	txs      []*StockTransaction
}

type memProduct struct {
	lock     sync.Mutex
	name     string
	stock    int
	variants map[string]int
}

type memTx struct {
	db.DBTX
	held   []*sync.Mutex
	writes []func()
}

func newMemStore() *memStore {
	return &memStore{products: map[string]*memProduct{}}
}

func (m *memStore) addProduct(id, name string, stock int, variants map[string]int) {
	m.products[id] = &memProduct{name: name, stock: stock, variants: variants}
}

func (m *memStore) stockOf(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].stock
}

func (m *memStore) variantStockOf(id, uom string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].variants[uom]
}

func (m *memStore) transactions() []*StockTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*StockTransaction(nil), m.txs...)
	return out
}

func (m *memStore) Execute(ctx context.Context, fn func(tx db.DBTX) error) error {
	tx := &memTx{}
	err := fn(tx)
	if err == nil {
		m.mu.Lock()
		for _, w := range tx.writes {
			w()
		}
		m.mu.Unlock()
	}
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	return err
}

func (m *memStore) LockProduct(ctx context.Context, q db.DBTX, productID string) (*lockedProduct, error) {
	m.mu.Lock()
	p, ok := m.products[productID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrProductNotFound
	}

	p.lock.Lock()
	tx := q.(*memTx)
	tx.held = append(tx.held, &p.lock)

	m.mu.Lock()
	defer m.mu.Unlock()
	return &lockedProduct{Name: p.name, Stock: p.stock, VariantCount: len(p.variants)}, nil
}

func (m *memStore) LockVariant(ctx context.Context, q db.DBTX, productID, uom string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stock, ok := m.products[productID].variants[uom]
	if !ok {
		return 0, ErrVariantNotFound
	}
	return stock, nil
}

func (m *memStore) SetProductStock(ctx context.Context, q db.DBTX, productID string, stock int) error {
	tx := q.(*memTx)
	tx.writes = append(tx.writes, func() { m.products[productID].stock = stock })
	return nil
}

func (m *memStore) SetVariantStock(ctx context.Context, q db.DBTX, productID, uom string, stock int) error {
	tx := q.(*memTx)
	tx.writes = append(tx.writes, func() { m.products[productID].variants[uom] = stock })
	return nil
}

func (m *memStore) FindByIdempotencyKey(ctx context.Context, q db.DBTX, key string) (*StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txs {
		if t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memStore) Insert(ctx context.Context, q db.DBTX, t *StockTransaction) error {
	t.CreatedAt = time.Now()
	tx := q.(*memTx)
	tx.writes = append(tx.writes, func() { m.txs = append(m.txs, t) })
	return nil
}

func (m *memStore) List(ctx context.Context, productID *string, limit int) ([]*StockTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*StockTransaction{}
	for i := len(m.txs) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.txs[i]
		if productID == nil || t.ProductID == *productID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) LowStock(ctx context.Context, threshold int) ([]LowStockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []LowStockItem{}
	for id, p := range m.products {
		if len(p.variants) == 0 && p.stock <= threshold {
			items = append(items, LowStockItem{ProductID: id, ProductName: p.name, Stock: p.stock})
		}
		for uom, stock := range p.variants {
			if stock <= threshold {
				u := uom
				items = append(items, LowStockItem{ProductID: id, ProductName: p.name, VariantSKU: &u, Stock: stock})
			}
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Stock < items[j].Stock })
	return items, nil
}
