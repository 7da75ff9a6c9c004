package statements

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

// Handler wires HTTP endpoints for account statements.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the statements handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers statement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers/{id}", h.handleStatement)
	r.Get("/customers/{id}/csv", h.handleStatementCSV)
}

func (h *Handler) statement(r *http.Request) (*Statement, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer id", httpx.ErrValidation)
	}

	now := time.Now()
	from := now.AddDate(0, -3, 0)
	to := now
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		ts, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", httpx.ErrValidation)
		}
		from = ts
	}
	if v := q.Get("to"); v != "" {
		ts, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", httpx.ErrValidation)
		}
		to = ts.AddDate(0, 0, 1).Add(-time.Second)
	}

	return h.service.Build(r.Context(), id, shared.UserFromContext(r.Context()), from, to)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	st, err := h.statement(r)
	if err != nil {
		h.logger.Error("build statement failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) handleStatementCSV(w http.ResponseWriter, r *http.Request) {
	st, err := h.statement(r)
	if err != nil {
		h.logger.Error("build statement failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("statement-%d-%s.csv", st.CustomerID, st.To.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.service.WriteCSV(w, st); err != nil {
		h.logger.Error("write statement csv failed", slog.Any("error", err))
	}
}
