package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
)

// CartRepository defines the interface for cart line data access. The cart
// is a single shared one, so no owner key appears anywhere.
type CartRepository interface {
	ListLines(ctx context.Context) ([]*domain.CartLine, error)
	ListLinesForUpdate(ctx context.Context) ([]*domain.CartLine, error)
	FindLineByID(ctx context.Context, id uuid.UUID) (*domain.CartLine, error)
	FindLineByProduct(ctx context.Context, productID uuid.UUID) (*domain.CartLine, error)
	CreateLine(ctx context.Context, line *domain.CartLine) error
	SetLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	DeleteAllLines(ctx context.Context) error
}

type cartRepository struct {
	db DBTX
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db DBTX) CartRepository {
	return &cartRepository{db: db}
}

const cartLineColumns = "id, product_id, quantity, checked, created_at, updated_at"

func scanCartLine(row interface{ Scan(dest ...any) error }) (*domain.CartLine, error) {
	line := &domain.CartLine{}
	err := row.Scan(
		&line.ID,
		&line.ProductID,
		&line.Quantity,
		&line.Checked,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *cartRepository) listLines(ctx context.Context, query string) ([]*domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	defer rows.Close()

	lines := []*domain.CartLine{}
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}

	return lines, nil
}

// ListLines retrieves all cart lines in insertion order
func (r *cartRepository) ListLines(ctx context.Context) ([]*domain.CartLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items ORDER BY created_at`, cartLineColumns)
	return r.listLines(ctx, query)
}

// ListLinesForUpdate retrieves all cart lines with row locks held, so that
// concurrent checkouts serialize rather than both draining the same cart.
// Only meaningful inside a transaction.
func (r *cartRepository) ListLinesForUpdate(ctx context.Context) ([]*domain.CartLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items ORDER BY created_at FOR UPDATE`, cartLineColumns)
	return r.listLines(ctx, query)
}

// FindLineByID retrieves a cart line by its own ID
func (r *cartRepository) FindLineByID(ctx context.Context, id uuid.UUID) (*domain.CartLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items WHERE id = $1`, cartLineColumns)

	line, err := scanCartLine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find cart line: %w", err)
	}

	return line, nil
}

// FindLineByProduct retrieves the cart line referencing a product. At most
// one line exists per product.
func (r *cartRepository) FindLineByProduct(ctx context.Context, productID uuid.UUID) (*domain.CartLine, error) {
	query := fmt.Sprintf(`SELECT %s FROM cart_items WHERE product_id = $1`, cartLineColumns)

	line, err := scanCartLine(r.db.QueryRowContext(ctx, query, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find cart line by product: %w", err)
	}

	return line, nil
}

// CreateLine inserts a new cart line
func (r *cartRepository) CreateLine(ctx context.Context, line *domain.CartLine) error {
	query := `
		INSERT INTO cart_items (id, product_id, quantity, checked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		line.ID,
		line.ProductID,
		line.Quantity,
		line.Checked,
		line.CreatedAt,
		line.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}

	return nil
}

// SetLineQuantity sets a cart line's quantity to an absolute value
func (r *cartRepository) SetLineQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, quantity, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set cart line quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrLineNotFound
	}

	return nil
}

// DeleteLine removes a cart line
func (r *cartRepository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrLineNotFound
	}

	return nil
}

// DeleteAllLines drains the cart
func (r *cartRepository) DeleteAllLines(ctx context.Context) error {
	query := `DELETE FROM cart_items`

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to delete cart lines: %w", err)
	}

	return nil
}
