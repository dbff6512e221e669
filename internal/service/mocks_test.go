package service

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing

type mockProductRepository struct {
	products      map[uuid.UUID]*domain.Product
	popularityErr error
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
	}
}

func (m *mockProductRepository) put(p *domain.Product) {
	cp := *p
	m.products[p.ID] = &cp
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.put(product)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	existing, exists := m.products[product.ID]
	if !exists {
		return repository.ErrProductNotFound
	}
	existing.Name = product.Name
	existing.Category = product.Category
	existing.Price = product.Price
	existing.ImgURL = product.ImgURL
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	cp := *product
	return &cp, nil
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		products = append(products, &cp)
	}
	return products, nil
}

func (m *mockProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, newStock int) error {
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Stock = newStock
	return nil
}

func (m *mockProductRepository) IncrementPopularity(ctx context.Context, id uuid.UUID) error {
	if m.popularityErr != nil {
		return m.popularityErr
	}
	product, exists := m.products[id]
	if !exists {
		return repository.ErrProductNotFound
	}
	product.Popularity++
	return nil
}

func (m *mockProductRepository) Restock(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	product.Stock = domain.RestockStock
	cp := *product
	return &cp, nil
}

func (m *mockProductRepository) DecrementStockIfAvailable(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, exists := m.products[id]
	if !exists {
		return false, nil
	}
	if product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

type mockCartRepository struct {
	lines map[uuid.UUID]*domain.CartLine
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{
		lines: make(map[uuid.UUID]*domain.CartLine),
	}
}

func (m *mockCartRepository) ListLines(ctx context.Context) ([]*domain.CartLine, error) {
	lines := make([]*domain.CartLine, 0, len(m.lines))
	for _, line := range m.lines {
		cp := *line
		lines = append(lines, &cp)
	}
	return lines, nil
}

func (m *mockCartRepository) ListLinesForUpdate(ctx context.Context) ([]*domain.CartLine, error) {
	return m.ListLines(ctx)
}

func (m *mockCartRepository) FindLineByID(ctx context.Context, id uuid.UUID) (*domain.CartLine, error) {
	line, exists := m.lines[id]
	if !exists {
		return nil, repository.ErrLineNotFound
	}
	cp := *line
	return &cp, nil
}

func (m *mockCartRepository) FindLineByProduct(ctx context.Context, productID uuid.UUID) (*domain.CartLine, error) {
	for _, line := range m.lines {
		if line.ProductID == productID {
			cp := *line
			return &cp, nil
		}
	}
	return nil, repository.ErrLineNotFound
}

func (m *mockCartRepository) CreateLine(ctx context.Context, line *domain.CartLine) error {
	cp := *line
	m.lines[line.ID] = &cp
	return nil
}

func (m *mockCartRepository) SetLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	line, exists := m.lines[id]
	if !exists {
		return repository.ErrLineNotFound
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	return nil
}

func (m *mockCartRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	if _, exists := m.lines[id]; !exists {
		return repository.ErrLineNotFound
	}
	delete(m.lines, id)
	return nil
}

func (m *mockCartRepository) DeleteAllLines(ctx context.Context) error {
	m.lines = make(map[uuid.UUID]*domain.CartLine)
	return nil
}

type mockTransactionRepository struct {
	transactions map[uuid.UUID]*domain.Transaction
	lines        map[uuid.UUID][]*domain.TransactionLine
	createErr    error
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{
		transactions: make(map[uuid.UUID]*domain.Transaction),
		lines:        make(map[uuid.UUID][]*domain.TransactionLine),
	}
}

func (m *mockTransactionRepository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *txn
	m.transactions[txn.ID] = &cp
	return nil
}

func (m *mockTransactionRepository) CreateTransactionLines(ctx context.Context, lines []*domain.TransactionLine) error {
	for _, line := range lines {
		cp := *line
		m.lines[line.TransactionID] = append(m.lines[line.TransactionID], &cp)
	}
	return nil
}

func (m *mockTransactionRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	txn, exists := m.transactions[id]
	if !exists {
		return nil, repository.ErrTransactionNotFound
	}
	cp := *txn
	return &cp, nil
}

func (m *mockTransactionRepository) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	transactions := make([]*domain.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		cp := *txn
		transactions = append(transactions, &cp)
	}
	return transactions, nil
}

func (m *mockTransactionRepository) ListTransactionLines(ctx context.Context, transactionID uuid.UUID) ([]*domain.TransactionLine, error) {
	lines := make([]*domain.TransactionLine, 0, len(m.lines[transactionID]))
	for _, line := range m.lines[transactionID] {
		cp := *line
		lines = append(lines, &cp)
	}
	return lines, nil
}

// mockTxManager runs the callback against shared mock repositories and
// emulates rollback by restoring a snapshot of their state when the
// callback fails.
type mockTxManager struct {
	products     *mockProductRepository
	cart         *mockCartRepository
	transactions *mockTransactionRepository
}

type mockTxRepos struct {
	m *mockTxManager
}

func (r *mockTxRepos) Products() repository.ProductRepository { return r.m.products }
func (r *mockTxRepos) Cart() repository.CartRepository { return r.m.cart }
func (r *mockTxRepos) Transactions() repository.TransactionRepository { return r.m.transactions }

func (m *mockTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	productsSnap := snapshotProducts(m.products.products)
	linesSnap := snapshotLines(m.cart.lines)
	txnsSnap := snapshotTransactions(m.transactions.transactions)
	txnLinesSnap := snapshotTransactionLines(m.transactions.lines)

	if err := fn(&mockTxRepos{m: m}); err != nil {
		m.products.products = productsSnap
		m.cart.lines = linesSnap
		m.transactions.transactions = txnsSnap
		m.transactions.lines = txnLinesSnap
		return err
	}
	return nil
}

func snapshotProducts(src map[uuid.UUID]*domain.Product) map[uuid.UUID]*domain.Product {
	dst := make(map[uuid.UUID]*domain.Product, len(src))
	for id, p := range src {
		cp := *p
		dst[id] = &cp
	}
	return dst
}

func snapshotLines(src map[uuid.UUID]*domain.CartLine) map[uuid.UUID]*domain.CartLine {
	dst := make(map[uuid.UUID]*domain.CartLine, len(src))
	for id, line := range src {
		cp := *line
		dst[id] = &cp
	}
	return dst
}

func snapshotTransactions(src map[uuid.UUID]*domain.Transaction) map[uuid.UUID]*domain.Transaction {
	dst := make(map[uuid.UUID]*domain.Transaction, len(src))
	for id, txn := range src {
		cp := *txn
		dst[id] = &cp
	}
	return dst
}

func snapshotTransactionLines(src map[uuid.UUID][]*domain.TransactionLine) map[uuid.UUID][]*domain.TransactionLine {
	dst := make(map[uuid.UUID][]*domain.TransactionLine, len(src))
	for id, lines := range src {
		cps := make([]*domain.TransactionLine, 0, len(lines))
		for _, line := range lines {
			cp := *line
			cps = append(cps, &cp)
		}
		dst[id] = cps
	}
	return dst
}
