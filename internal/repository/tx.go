package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TxRepos exposes the repositories bound to one database transaction.
type TxRepos interface {
	Products() ProductRepository
	Cart() CartRepository
	Transactions() TransactionRepository
}

// TxManager hides transaction begin/commit/rollback from the service layer.
// The callback either completes and commits, or returns an error and every
// write inside it rolls back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

type txRepos struct {
	tx *sql.Tx
}

func (r *txRepos) Products() ProductRepository { return NewProductRepository(r.tx) }
func (r *txRepos) Cart() CartRepository { return NewCartRepository(r.tx) }
func (r *txRepos) Transactions() TransactionRepository { return NewTransactionRepository(r.tx) }

type txManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager over the shared connection pool
func NewTxManager(db *sql.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txRepos{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
