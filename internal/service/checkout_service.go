package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrStockConflict = errors.New("insufficient stock for cart line")
)

// CheckoutTimeout bounds the checkout unit of work. It touches every cart
// line plus the referenced products, so the budget is generous, but the
// operation must fail rather than hold locks past it.
const CheckoutTimeout = 30 * time.Second

// CheckoutService converts the cart into an immutable transaction record.
// Checkout runs as a single all-or-nothing database transaction: the
// transaction record, its lines, the stock decrements and the cart sweep
// all commit together or not at all.
type CheckoutService interface {
	Checkout(ctx context.Context) (uuid.UUID, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]*domain.Transaction, error)
	ListTransactionLines(ctx context.Context, transactionID uuid.UUID) ([]*domain.TransactionLine, error)
}

type checkoutService struct {
	tx           repository.TxManager
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(
	tx repository.TxManager,
	transactions repository.TransactionRepository,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		tx:           tx,
		transactions: transactions,
		logger:       logger,
	}
}

// Checkout drains the cart into a transaction plus transaction lines and
// decrements catalog stock, atomically. On success it returns the new
// transaction's ID.
func (s *checkoutService) Checkout(ctx context.Context) (uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckoutTimeout)
	defer cancel()

	var transactionID uuid.UUID

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		// Row locks serialize concurrent checkouts over the shared cart.
		lines, err := r.Cart().ListLinesForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("failed to read cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		products := make(map[uuid.UUID]*domain.Product, len(lines))
		for _, line := range lines {
			product, ok := products[line.ProductID]
			if !ok {
				product, err = r.Products().FindByID(ctx, line.ProductID)
				if err != nil {
					return err
				}
				products[line.ProductID] = product
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		now := time.Now()
		txn := &domain.Transaction{
			ID:         uuid.New(),
			TotalPrice: total,
			Quantities: len(lines),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := r.Transactions().CreateTransaction(ctx, txn); err != nil {
			return err
		}

		txnLines := make([]*domain.TransactionLine, 0, len(lines))
		for _, line := range lines {
			txnLines = append(txnLines, &domain.TransactionLine{
				ID:            uuid.New(),
				TransactionID: txn.ID,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		if err := r.Transactions().CreateTransactionLines(ctx, txnLines); err != nil {
			return err
		}

		// Sum per product before decrementing. A product has at most one
		// line, but the decrement stays correct if that ever breaks.
		perProduct := make(map[uuid.UUID]int, len(lines))
		for _, line := range lines {
			perProduct[line.ProductID] += line.Quantity
		}
		for _, line := range lines {
			quantity, pending := perProduct[line.ProductID]
			if !pending {
				continue
			}
			delete(perProduct, line.ProductID)

			ok, err := r.Products().DecrementStockIfAvailable(ctx, line.ProductID, quantity)
			if err != nil {
				return err
			}
			if !ok {
				// Stock changed under us since the cart was filled.
				return fmt.Errorf("%w: product %s", ErrStockConflict, line.ProductID)
			}
		}

		if err := r.Cart().DeleteAllLines(ctx); err != nil {
			return err
		}

		// Post-condition: the cart really is empty before we commit.
		remaining, err := r.Cart().ListLines(ctx)
		if err != nil {
			return fmt.Errorf("failed to verify cart sweep: %w", err)
		}
		if len(remaining) != 0 {
			return fmt.Errorf("checkout left %d cart lines behind", len(remaining))
		}

		transactionID = txn.ID
		return nil
	})

	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("Checkout completed",
		zap.String("transaction_id", transactionID.String()),
	)

	return transactionID, nil
}

// GetTransaction retrieves one transaction record
func (s *checkoutService) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactions.FindTransactionByID(ctx, id)
}

// ListTransactions retrieves all transaction records, newest first
func (s *checkoutService) ListTransactions(ctx context.Context) ([]*domain.Transaction, error) {
	return s.transactions.ListTransactions(ctx)
}

// ListTransactionLines retrieves the lines captured for one transaction
func (s *checkoutService) ListTransactionLines(ctx context.Context, transactionID uuid.UUID) ([]*domain.TransactionLine, error) {
	if _, err := s.transactions.FindTransactionByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.transactions.ListTransactionLines(ctx, transactionID)
}
