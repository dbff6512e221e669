package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	cp := *product
	m.products[product.ID] = &cp
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
	if !exists || product.Stock < quantity {
		return false, nil
	}
	product.Stock -= quantity
	return true, nil
}

func newCatalogRouter(repo repository.ProductRepository) chi.Router {
	r := chi.NewRouter()
	NewCatalogHandler(repo, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestCatalogHandler_Create(t *testing.T) {
	t.Run("creates the product", func(t *testing.T) {
		repo := newMockProductRepository()

		body, _ := json.Marshal(CreateProductRequest{
			Name:     "Mug",
			Category: "kitchen",
			Price:    "10.00",
			ImgURL:   "https://example.com/mug.png",
			Stock:    5,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newCatalogRouter(repo).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, repo.products, 1)
		for _, p := range repo.products {
			assert.Equal(t, "Mug", p.Name)
			assert.True(t, p.Price.Equal(decimal.RequireFromString("10.00")))
			assert.Equal(t, 5, p.Stock)
		}
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		repo := newMockProductRepository()

		body, _ := json.Marshal(CreateProductRequest{
			Name:     "Mug",
			Category: "kitchen",
			Price:    "-1.00",
			Stock:    5,
		})
		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newCatalogRouter(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, repo.products)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		repo := newMockProductRepository()

		body := []byte(`{"category": "kitchen", "price": "1.00"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newCatalogRouter(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCatalogHandler_Get(t *testing.T) {
	repo := newMockProductRepository()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      "Mug",
		Category:  "kitchen",
		Price:     decimal.RequireFromString("10.00"),
		Stock:     5,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), product))

	t.Run("returns the product", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+product.ID.String(), nil)
		rec := httptest.NewRecorder()
		newCatalogRouter(repo).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var got domain.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, product.ID, got.ID)
		assert.Equal(t, "Mug", got.Name)
	})

	t.Run("maps unknown product to 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		newCatalogRouter(repo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCatalogHandler_Restock(t *testing.T) {
	repo := newMockProductRepository()
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     "Mug",
		Category: "kitchen",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    0,
	}
	require.NoError(t, repo.Create(context.Background(), product))

	req := httptest.NewRequest(http.MethodPost, "/api/products/"+product.ID.String()+"/restock", nil)
	rec := httptest.NewRecorder()
	newCatalogRouter(repo).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, domain.RestockStock, got.Stock)
	assert.Equal(t, domain.RestockStock, repo.products[product.ID].Stock)
}
