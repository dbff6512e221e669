package transport

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the admin product creation payload
type CreateProductRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Category string `json:"category" validate:"required,max=256"`
	Price    string `json:"price" validate:"required"`
	ImgURL   string `json:"img_url" validate:"max=256"`
	Stock    int    `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest represents the admin product update payload
type UpdateProductRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Category string `json:"category" validate:"required,max=256"`
	Price    string `json:"price" validate:"required"`
	ImgURL   string `json:"img_url" validate:"max=256"`
}

// CatalogHandler handles HTTP requests for the product catalog
type CatalogHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products repository.ProductRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/restock", h.Restock)
	})
}

// List returns the catalog ordered by popularity
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns one product
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product to the catalog (admin/seed surface)
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	now := time.Now()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      req.Name,
		Category:  req.Category,
		Price:     price,
		ImgURL:    req.ImgURL,
		Stock:     req.Stock,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.products.Create(r.Context(), product); err != nil {
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update modifies a product's display attributes and price
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return
	}

	product := &domain.Product{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Price:     price,
		ImgURL:    req.ImgURL,
		UpdatedAt: time.Now(),
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	refreshed, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to reload product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reload product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, refreshed)
}

// Restock sets a sold-out product back to the restock stock level
func (h *CatalogHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.Restock(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to restock product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to restock product")
		return
	}

	h.logger.Info("Product restocked",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock", product.Stock),
	)
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// parseID reads a UUID path parameter, responding 400 on garbage
func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeRequest decodes and validates a JSON body, responding 400 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, v any, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
