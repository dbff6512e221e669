package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// SetQuantityRequest carries the raw quantity so that non-integer client
// input can be distinguished from a real number. The engine treats
// unparseable input as "re-assert the current quantity".
type SetQuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Post("/items/{productID}/decrease", h.DecreaseItem)
		r.Put("/items/{productID}", h.SetQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
}

// GetCart returns the current cart with its computed total
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context())
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem adds a product to the cart or increments its line by one
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	cart, err := h.cartService.AddOrIncrease(r.Context(), productID)
	if err != nil {
		h.respondCartError(w, err, "add to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// DecreaseItem lowers the product's cart line by one unit
func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productID")
	if !ok {
		return
	}

	cart, err := h.cartService.Decrease(r.Context(), productID)
	if err != nil {
		h.respondCartError(w, err, "decrease cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// SetQuantity sets the product's cart line to an absolute quantity
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productID")
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A missing or non-integer quantity is passed through as nil; the
	// engine re-asserts the line's current quantity for such input.
	var quantity *int
	if len(req.Quantity) > 0 {
		var parsed int
		if err := json.Unmarshal(req.Quantity, &parsed); err == nil {
			quantity = &parsed
		}
	}

	cart, err := h.cartService.SetQuantity(r.Context(), productID, quantity)
	if err != nil {
		h.respondCartError(w, err, "set cart item quantity")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// RemoveItem deletes the product's cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseID(w, r, "productID")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveLine(r.Context(), productID)
	if err != nil {
		h.respondCartError(w, err, "remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// respondCartError maps engine errors onto HTTP statuses. Callers are
// expected to re-fetch cart and catalog state after any failure.
func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrLineNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	case errors.Is(err, service.ErrOutOfStock):
		middleware.RespondWithError(w, http.StatusConflict, "product out of stock")
	case errors.Is(err, service.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid quantity")
	default:
		h.logger.Error("Cart operation failed",
			zap.String("action", action),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
