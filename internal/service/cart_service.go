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
	ErrOutOfStock      = errors.New("product out of stock")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// CartService reconciles cart line quantities against live product stock.
// Every mutating operation re-reads the product inside the operation, so the
// stock ceiling is always enforced against current stock, not a value the
// client observed earlier. All operations return the refreshed cart.
type CartService interface {
	GetCart(ctx context.Context) (*CartView, error)
	AddOrIncrease(ctx context.Context, productID uuid.UUID) (*CartView, error)
	Decrease(ctx context.Context, productID uuid.UUID) (*CartView, error)
	SetQuantity(ctx context.Context, productID uuid.UUID, quantity *int) (*CartView, error)
	RemoveLine(ctx context.Context, productID uuid.UUID) (*CartView, error)
}

// CartLineView is one cart line joined with its product for display
type CartLineView struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the cart as the storefront renders it
type CartView struct {
	Lines []CartLineView  `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// ComputeTotal sums quantity times current catalog price over the cart
// lines. A line whose product is missing from the map contributes zero.
func ComputeTotal(lines []*domain.CartLine, products map[uuid.UUID]*domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

type cartService struct {
	products repository.ProductRepository
	cart     repository.CartRepository
	logger   *zap.Logger
}

// NewCartService creates a new instance of CartService
func NewCartService(
	products repository.ProductRepository,
	cart repository.CartRepository,
	logger *zap.Logger,
) CartService {
	return &cartService{
		products: products,
		cart:     cart,
		logger:   logger,
	}
}

// GetCart returns the current cart lines joined with catalog data
func (s *cartService) GetCart(ctx context.Context) (*CartView, error) {
	lines, err := s.cart.ListLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := &CartView{
		Lines: make([]CartLineView, 0, len(lines)),
		Total: ComputeTotal(lines, byID),
	}

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			// Dangling line: product removed out-of-band. It still counts
			// zero toward the total and is not rendered.
			s.logger.Warn("Cart line references missing product",
				zap.String("line_id", line.ID.String()),
				zap.String("product_id", line.ProductID.String()),
			)
			continue
		}

		view.Lines = append(view.Lines, CartLineView{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	return view, nil
}

// AddOrIncrease adds a product to the cart or increments its existing line
// by one, clamped at the product's current stock.
func (s *cartService) AddOrIncrease(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.bumpPopularity(ctx, product.ID)

	if product.Stock == 0 {
		return nil, ErrOutOfStock
	}

	line, err := s.cart.FindLineByProduct(ctx, product.ID)
	switch {
	case errors.Is(err, repository.ErrLineNotFound):
		if err := s.createLine(ctx, product.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to resolve cart line: %w", err)
	case line.Quantity >= product.Stock:
		// Ceiling already reached; re-assert it instead of incrementing.
		if err := s.cart.SetLineQuantity(ctx, line.ID, product.Stock); err != nil {
			return nil, fmt.Errorf("failed to clamp cart line: %w", err)
		}
	default:
		if err := s.cart.SetLineQuantity(ctx, line.ID, line.Quantity+1); err != nil {
			return nil, fmt.Errorf("failed to increment cart line: %w", err)
		}
	}

	return s.GetCart(ctx)
}

// Decrease lowers the product's cart line by one unit. Reaching zero
// deletes the line.
func (s *cartService) Decrease(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.cart.FindLineByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	s.bumpPopularity(ctx, product.ID)

	if err := s.applyQuantity(ctx, product, line, line.Quantity-1); err != nil {
		return nil, err
	}

	return s.GetCart(ctx)
}

// SetQuantity sets the product's cart line to an absolute quantity. A nil
// quantity models unparseable client input and re-asserts the line's current
// quantity, which makes debounced retries of the same edit idempotent.
func (s *cartService) SetQuantity(ctx context.Context, productID uuid.UUID, quantity *int) (*CartView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.cart.FindLineByProduct(ctx, product.ID)
	if errors.Is(err, repository.ErrLineNotFound) {
		s.bumpPopularity(ctx, product.ID)
		if quantity != nil {
			switch {
			case *quantity < 0:
				return nil, ErrInvalidQuantity
			case *quantity == 0:
				// Deleting an absent line is a no-op, so repeated
				// zero-sets stay idempotent.
				return s.GetCart(ctx)
			}
		}
		// Create-on-demand with the same semantics as AddOrIncrease.
		if product.Stock == 0 {
			return nil, ErrOutOfStock
		}
		if err := s.createLine(ctx, product.ID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart line: %w", err)
	}

	s.bumpPopularity(ctx, product.ID)

	if quantity == nil {
		// Malformed input: re-assert the current quantity.
		if err := s.cart.SetLineQuantity(ctx, line.ID, line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to re-assert cart line quantity: %w", err)
		}
		return s.GetCart(ctx)
	}

	if err := s.applyQuantity(ctx, product, line, *quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx)
}

// RemoveLine deletes the product's cart line outright
func (s *cartService) RemoveLine(ctx context.Context, productID uuid.UUID) (*CartView, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.cart.FindLineByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	s.bumpPopularity(ctx, product.ID)

	if err := s.cart.DeleteLine(ctx, line.ID); err != nil {
		return nil, fmt.Errorf("failed to delete cart line: %w", err)
	}

	return s.GetCart(ctx)
}

// applyQuantity enforces the quantity policy: negative refused, above stock
// clamps, zero deletes, otherwise exact set. Clamping against a product whose
// stock has dropped to zero resolves to a deletion, since persisted lines
// always carry a positive quantity. The ceiling comes from the product that
// was read within this same operation.
func (s *cartService) applyQuantity(ctx context.Context, product *domain.Product, line *domain.CartLine, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity > product.Stock {
		quantity = product.Stock
	}

	if quantity == 0 {
		if err := s.cart.DeleteLine(ctx, line.ID); err != nil {
			return fmt.Errorf("failed to delete cart line: %w", err)
		}
		return nil
	}

	if err := s.cart.SetLineQuantity(ctx, line.ID, quantity); err != nil {
		return fmt.Errorf("failed to set cart line quantity: %w", err)
	}
	return nil
}

func (s *cartService) createLine(ctx context.Context, productID uuid.UUID) error {
	now := time.Now()
	line := &domain.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  1,
		Checked:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cart.CreateLine(ctx, line); err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}

	return nil
}

// bumpPopularity records a cart interaction against the product. It is a
// best-effort ranking signal: a failure is logged and never surfaced, and it
// is not rolled back when the surrounding operation fails afterwards.
func (s *cartService) bumpPopularity(ctx context.Context, productID uuid.UUID) {
	if err := s.products.IncrementPopularity(ctx, productID); err != nil {
		s.logger.Warn("Failed to increment product popularity",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
