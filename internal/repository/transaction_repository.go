package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionRepository defines the interface for transaction records.
// Records are write-once: there are no update or delete operations.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	CreateTransactionLines(ctx context.Context, lines []*domain.TransactionLine) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)
	ListTransactionLines(ctx context.Context, transactionID uuid.UUID) ([]*domain.TransactionLine, error)
}

type transactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db DBTX) TransactionRepository {
	return &transactionRepository{db: db}
}

// CreateTransaction inserts the immutable checkout record
func (r *transactionRepository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, total_price, quantities, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		txn.ID,
		txn.TotalPrice,
		txn.Quantities,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// CreateTransactionLines inserts one row per cart line captured at checkout
func (r *transactionRepository) CreateTransactionLines(ctx context.Context, lines []*domain.TransactionLine) error {
	query := `
		INSERT INTO transaction_items (id, transaction_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, line := range lines {
		_, err := r.db.ExecContext(
			ctx,
			query,
			line.ID,
			line.TransactionID,
			line.ProductID,
			line.Quantity,
			line.CreatedAt,
			line.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create transaction line: %w", err)
		}
	}

	return nil
}

// FindTransactionByID retrieves a transaction record
func (r *transactionRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, total_price, quantities, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	txn := &domain.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&txn.ID,
		&txn.TotalPrice,
		&txn.Quantities,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return txn, nil
}

// ListTransactions retrieves all transactions, newest first
func (r *transactionRepository) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT id, total_price, quantities, created_at, updated_at
		FROM transactions
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		txn := &domain.Transaction{}
		err := rows.Scan(
			&txn.ID,
			&txn.TotalPrice,
			&txn.Quantities,
			&txn.CreatedAt,
			&txn.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// ListTransactionLines retrieves the lines belonging to one transaction
func (r *transactionRepository) ListTransactionLines(ctx context.Context, transactionID uuid.UUID) ([]*domain.TransactionLine, error) {
	query := `
		SELECT id, transaction_id, product_id, quantity, created_at, updated_at
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.TransactionLine{}
	for rows.Next() {
		line := &domain.TransactionLine{}
		err := rows.Scan(
			&line.ID,
			&line.TransactionID,
			&line.ProductID,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction lines: %w", err)
	}

	return lines, nil
}
