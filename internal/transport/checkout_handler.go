package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CheckoutResponse carries the new transaction's ID so the storefront can
// redirect to its detail view
type CheckoutResponse struct {
	TransactionID string `json:"transaction_id"`
}

// CheckoutHandler handles checkout and transaction detail requests
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// RegisterRoutes registers checkout and transaction routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checkout", h.Checkout)
	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Get("/{id}", h.GetTransaction)
		r.Get("/{id}/items", h.ListTransactionItems)
	})
}

// Checkout converts the cart into a transaction record
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	transactionID, err := h.checkoutService.Checkout(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrStockConflict):
			middleware.RespondWithError(w, http.StatusConflict, "insufficient stock for cart")
		case errors.Is(err, repository.ErrProductNotFound):
			middleware.RespondWithError(w, http.StatusConflict, "cart references a missing product")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{
		TransactionID: transactionID.String(),
	})
}

// ListTransactions returns all transactions, newest first
func (h *CheckoutHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.checkoutService.ListTransactions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, transactions)
}

// GetTransaction returns one transaction record
func (h *CheckoutHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	txn, err := h.checkoutService.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get transaction")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, txn)
}

// ListTransactionItems returns the lines captured for one transaction
func (h *CheckoutHandler) ListTransactionItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	lines, err := h.checkoutService.ListTransactionLines(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("Failed to list transaction items", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list transaction items")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, lines)
}
