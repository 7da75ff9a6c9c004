package promotions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/agromart/agromart/internal/platform/httpx"
	"github.com/agromart/agromart/internal/shared"
)

// Handler wires HTTP endpoints for the promotions module.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the promotions handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers promotion routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/active", h.handleActive)
	r.Post("/validate", h.handleValidate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDeactivate)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.UserFromContext(r.Context())
	page, limit, offset := shared.PageParams(r, 20, 100)

	req := ListPromotionsRequest{OwnerID: ownerID, Limit: limit, Offset: offset}
	if a := r.URL.Query().Get("is_active"); a != "" {
		val := a == "true"
		req.IsActive = &val
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list promotions failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"promotions": items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) handleActive(w http.ResponseWriter, r *http.Request) {
	ownerID := shared.UserFromContext(r.Context())
	items, _, err := h.service.List(r.Context(), ListPromotionsRequest{
		OwnerID:    ownerID,
		ActiveOnly: true,
		Limit:      100,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"promotions": items})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	promotion, err := h.service.Create(r.Context(), req, shared.UserFromContext(r.Context()))
	if err != nil {
		h.logger.Error("create promotion failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, promotion)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	result, err := h.service.Validate(r.Context(), shared.UserFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("validate promotion failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if !result.Valid {
		httpx.JSON(w, http.StatusBadRequest, result)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid promotion id")
		return
	}
	promotion, err := h.service.Get(r.Context(), id, shared.UserFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, promotion)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid promotion id")
		return
	}
	var req UpdatePromotionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if fields := httpx.FieldErrors(h.validate.Struct(req)); fields != nil {
		httpx.ValidationProblem(w, fields)
		return
	}

	promotion, err := h.service.Update(r.Context(), id, shared.UserFromContext(r.Context()), req)
	if err != nil {
		h.logger.Error("update promotion failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, promotion)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid promotion id")
		return
	}
	if err := h.service.Deactivate(r.Context(), id, shared.UserFromContext(r.Context())); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}
