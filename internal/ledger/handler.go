package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

// Handler wires HTTP endpoints for the credit ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/payments", h.handlePayment)
	r.Post("/credit-sales", h.handleCreditSale)
	r.Post("/adjustments", h.handleAdjustment)
	r.Get("/customers/{id}", h.handleAccount)
	r.Get("/customers/{id}/entries", h.handleEntries)
	r.Get("/overdue", h.handleOverdue)
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	result, err := h.service.RecordPayment(r.Context(), shared.UserFromContext(r.Context()), req, idemKey)
	if err != nil {
		h.logger.Error("record payment failed", slog.Any("error", err),
			slog.Int64("customer_id", req.CustomerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleCreditSale(w http.ResponseWriter, r *http.Request) {
	var req CreditSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	result, err := h.service.RecordCreditSale(r.Context(), shared.UserFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("record credit sale failed", slog.Any("error", err),
			slog.Int64("customer_id", req.CustomerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	entry, err := h.service.RecordAdjustment(r.Context(), shared.UserFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("record adjustment failed", slog.Any("error", err),
			slog.Int64("customer_id", req.CustomerID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return
	}
	summary, err := h.service.Account(r.Context(), id, shared.UserFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return
	}
	page, limit, offset := shared.PageParams(r, 20, 100)

	req := ListEntriesRequest{
		CustomerID: id,
		OwnerID:    shared.UserFromContext(r.Context()),
		Limit:      limit,
		Offset:     offset,
	}
	q := r.URL.Query()
	if t := q.Get("type"); t != "" {
		req.Type = TransactionType(t)
	}
	if from := q.Get("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			req.From = &ts
		}
	}
	if to := q.Get("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			req.To = &ts
		}
	}

	entries, total, err := h.service.ListEntries(r.Context(), req)
	if err != nil {
		h.logger.Error("list ledger entries failed", slog.Any("error", err), slog.Int64("customer_id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Overdue(r.Context(), shared.UserFromContext(r.Context()))
	if err != nil {
		h.logger.Error("overdue summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}
