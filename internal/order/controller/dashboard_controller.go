package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/order/usecase"
)

type FulfillmentUseCase interface {
	Advance(ctx context.Context, accountID, orderID string) (*domain.Order, error)
	Cancel(ctx context.Context, accountID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, accountID string, limit int) ([]domain.Order, error)
	Finance(ctx context.Context, accountID string, from, to time.Time) (*usecase.Financials, error)
}

// DashboardController is the merchant-facing fulfillment surface.
type DashboardController struct {
	useCase FulfillmentUseCase
	logger  *zap.Logger
}

func NewDashboardController(useCase FulfillmentUseCase, logger *zap.Logger) *DashboardController {
	return &DashboardController{useCase: useCase, logger: logger}
}

func (c *DashboardController) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := requireAccount(w, r, c.logger)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := c.useCase.Advance(r.Context(), accountID, orderID)
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return
	}

	writeJSON(w, c.logger, http.StatusOK, orderDTO(order))
}

func (c *DashboardController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := requireAccount(w, r, c.logger)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := c.useCase.Cancel(r.Context(), accountID, orderID)
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return
	}

	writeJSON(w, c.logger, http.StatusOK, orderDTO(order))
}

func (c *DashboardController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := requireAccount(w, r, c.logger)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleError(w, c.logger, traceID, apperrors.NewValidationError("invalid limit", apperrors.ValidationDetail{
				Field: "limit", Message: "limit must be an integer",
			}))
			return
		}
		limit = parsed
	}

	orders, err := c.useCase.ListOrders(r.Context(), accountID, limit)
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return
	}

	out := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, orderDTO(&orders[i]))
	}

	writeJSON(w, c.logger, http.StatusOK, out)
}

func (c *DashboardController) Finance(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	accountID, ok := requireAccount(w, r, c.logger)
	if !ok {
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		handleError(w, c.logger, traceID, apperrors.NewValidationError("invalid date range", apperrors.ValidationDetail{
			Field: "from", Message: "from must be a date in YYYY-MM-DD format",
		}))
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		handleError(w, c.logger, traceID, apperrors.NewValidationError("invalid date range", apperrors.ValidationDetail{
			Field: "to", Message: "to must be a date in YYYY-MM-DD format",
		}))
		return
	}

	// The range is inclusive of both days.
	result, err := c.useCase.Finance(r.Context(), accountID, from, to.Add(24*time.Hour))
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return
	}

	writeJSON(w, c.logger, http.StatusOK, dto.FinancialsDTO{
		From:          result.From,
		To:            result.To,
		OrderCount:    result.OrderCount,
		CanceledCount: result.CanceledCount,
		Revenue:       result.Revenue.StringFixed(2),
	})
}
