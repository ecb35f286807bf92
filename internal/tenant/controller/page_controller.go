package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
)

type PageUseCase interface {
	PublicPage(ctx context.Context, slug string) (*dto.PublicPageDTO, error)
	Dashboard(ctx context.Context, accountID string) (*dto.AccountOverviewDTO, error)
	UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) error
	AddCoupon(ctx context.Context, accountID string, req dto.AddCouponRequest) error
	DeleteCoupon(ctx context.Context, accountID, code string) error
	AddMenuItem(ctx context.Context, accountID string, req dto.MenuItemRequest) error
	UpdateMenuItem(ctx context.Context, accountID, title string, req dto.MenuItemRequest) error
	DeleteMenuItem(ctx context.Context, accountID, title string) error
	ReorderMenu(ctx context.Context, accountID string, titles []string) error
	UpdatePlan(ctx context.Context, callerAccountID string, req dto.UpdatePlanRequest) error
}

type PageController struct {
	useCase PageUseCase
	logger  *zap.Logger
}

func NewPageController(useCase PageUseCase, logger *zap.Logger) *PageController {
	return &PageController{useCase: useCase, logger: logger}
}

func (c *PageController) GetPublicPage(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	slug := chi.URLParam(r, "slug")

	page, err := c.useCase.PublicPage(r.Context(), slug)
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, page)
}

func (c *PageController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	overview, err := c.useCase.Dashboard(r.Context(), accountID)
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, overview)
}

func (c *PageController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.useCase.UpdateProfile(r.Context(), accountID, req); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "updated"})
}

func (c *PageController) AddCoupon(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.AddCouponRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.useCase.AddCoupon(r.Context(), accountID, req); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, statusResponse{TraceID: traceID, Status: "created"})
}

func (c *PageController) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if err := c.useCase.DeleteCoupon(r.Context(), accountID, code); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "deleted"})
}

func (c *PageController) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.MenuItemRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.useCase.AddMenuItem(r.Context(), accountID, req); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, statusResponse{TraceID: traceID, Status: "created"})
}

func (c *PageController) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.MenuItemRequest
	if !c.decode(w, r, &req) {
		return
	}

	title := chi.URLParam(r, "title")
	if err := c.useCase.UpdateMenuItem(r.Context(), accountID, title, req); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "updated"})
}

func (c *PageController) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	title := chi.URLParam(r, "title")
	if err := c.useCase.DeleteMenuItem(r.Context(), accountID, title); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "deleted"})
}

func (c *PageController) ReorderMenu(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.ReorderMenuRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.useCase.ReorderMenu(r.Context(), accountID, req.Titles); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "updated"})
}

func (c *PageController) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := c.requireAccount(w, r)
	if !ok {
		return
	}

	var req dto.UpdatePlanRequest
	if !c.decode(w, r, &req) {
		return
	}

	if err := c.useCase.UpdatePlan(r.Context(), accountID, req); err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeJSON(w, http.StatusOK, statusResponse{TraceID: traceID, Status: "updated"})
}

type statusResponse struct {
	TraceID string `json:"traceId"`
	Status  string `json:"status"`
}

type errorResponse struct {
	TraceID string                       `json:"traceId"`
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

// requireAccount reads the authenticated account id injected by the external
// identity layer. Authentication itself is out of scope here.
func (c *PageController) requireAccount(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID := r.Header.Get("X-Account-ID")
	if accountID == "" {
		c.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Code:    "UNAUTHORIZED",
			Message: "missing account identity",
		})
		return "", false
	}
	return accountID, true
}

func (c *PageController) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (c *PageController) handleError(w http.ResponseWriter, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{
			TraceID: traceID, Code: "VALIDATION_ERROR", Message: ve.Message, Details: ve.Details,
		})
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, errorResponse{TraceID: traceID, Code: "NOT_FOUND", Message: err.Error()})
		return
	}
	if _, ok := apperrors.IsForbiddenError(err); ok {
		c.writeJSON(w, http.StatusForbidden, errorResponse{TraceID: traceID, Code: "FORBIDDEN", Message: err.Error()})
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeJSON(w, http.StatusConflict, errorResponse{TraceID: traceID, Code: "CONFLICT", Message: err.Error()})
		return
	}

	c.logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, errorResponse{
		TraceID: traceID, Code: "INTERNAL_ERROR", Message: "an unexpected error occurred",
	})
}

func (c *PageController) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
