package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type AccountFinder interface {
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByTenant(ctx context.Context, tenantSlug string, limit int) ([]domain.Order, error)
	ListByDateRange(ctx context.Context, tenantSlug string, from, to time.Time) ([]domain.Order, error)
}

type StatusService interface {
	Advance(ctx context.Context, observed *domain.Order) (*domain.Order, error)
	Cancel(ctx context.Context, observed *domain.Order) (*domain.Order, error)
}

// Financials summarizes a tenant's orders over a date range. Canceled orders
// count separately and contribute nothing to revenue.
type Financials struct {
	From          time.Time
	To            time.Time
	OrderCount    int
	CanceledCount int
	Revenue       decimal.Decimal
}

// FulfillmentUseCase is the merchant dashboard surface: advancing and
// canceling orders plus the order list and finance queries.
type FulfillmentUseCase struct {
	accounts         AccountFinder
	orders           OrderReader
	status           StatusService
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewFulfillmentUseCase(
	accounts AccountFinder,
	orders OrderReader,
	status StatusService,
	logger *zap.Logger,
	maxRetryAttempts int,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		accounts:         accounts,
		orders:           orders,
		status:           status,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *FulfillmentUseCase) Advance(ctx context.Context, accountID, orderID string) (*domain.Order, error) {
	order, err := uc.authorize(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	return withDeadlockRetry(uc.maxRetryAttempts, func() (*domain.Order, error) {
		return uc.status.Advance(ctx, order)
	})
}

func (uc *FulfillmentUseCase) Cancel(ctx context.Context, accountID, orderID string) (*domain.Order, error) {
	order, err := uc.authorize(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	return withDeadlockRetry(uc.maxRetryAttempts, func() (*domain.Order, error) {
		return uc.status.Cancel(ctx, order)
	})
}

func (uc *FulfillmentUseCase) ListOrders(ctx context.Context, accountID string, limit int) ([]domain.Order, error) {
	account, err := uc.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.orders.ListByTenant(ctx, account.PageSlug, limit)
}

func (uc *FulfillmentUseCase) Finance(ctx context.Context, accountID string, from, to time.Time) (*Financials, error) {
	account, err := uc.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	orders, err := uc.orders.ListByDateRange(ctx, account.PageSlug, from, to)
	if err != nil {
		return nil, err
	}

	result := &Financials{From: from, To: to, Revenue: decimal.Zero}
	for _, o := range orders {
		if o.Status == domain.StatusCanceled {
			result.CanceledCount++
			continue
		}
		result.OrderCount++
		result.Revenue = result.Revenue.Add(o.Total)
	}

	return result, nil
}

// authorize loads the order and verifies it belongs to the caller's tenant.
func (uc *FulfillmentUseCase) authorize(ctx context.Context, accountID, orderID string) (*domain.Order, error) {
	account, err := uc.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.TenantSlug != account.PageSlug {
		return nil, apperrors.NewForbiddenError("order belongs to another tenant")
	}

	return order, nil
}
