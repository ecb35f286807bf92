package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/order/service"
)

type mockPageFinder struct {
	PageFunc func(ctx context.Context, slug string) (*domain.TenantPage, error)
}

func (m *mockPageFinder) Page(ctx context.Context, slug string) (*domain.TenantPage, error) {
	return m.PageFunc(ctx, slug)
}

type mockCheckoutService struct {
	SubmitFunc func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error)
	calls      int
}

func (m *mockCheckoutService) Submit(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
	m.calls++
	return m.SubmitFunc(ctx, tenant, c, sub)
}

type mockCreatedPublisher struct {
	PublishOrderCreatedFunc func(ctx context.Context, order *domain.Order) error
	calls                   int
}

func (m *mockCreatedPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.calls++
	if m.PublishOrderCreatedFunc != nil {
		return m.PublishOrderCreatedFunc(ctx, order)
	}
	return nil
}

func openPage() *domain.TenantPage {
	return &domain.TenantPage{
		Slug:     "lanchonete-da-ana",
		Title:    "Lanchonete da Ana",
		WhatsApp: "5511999990000",
		IsOpen:   true,
		Plan:     domain.PlanPro,
	}
}

func submittedOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		TenantSlug: "lanchonete-da-ana",
		Subtotal:   decimal.RequireFromString("68.00"),
		Total:      decimal.RequireFromString("68.00"),
		Status:     domain.StatusPending,
	}
}

func newTestSubmitUseCase(
	pages PageFinder,
	checkout CheckoutService,
	events CreatedPublisher,
) *SubmitOrderUseCase {
	return NewSubmitOrderUseCase(pages, checkout, events, zap.NewNop(), "https://comanda.app", 3)
}

func TestSubmitOrder_Success(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			assert.Equal(t, "lanchonete-da-ana", slug)
			return openPage(), nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			return submittedOrder(), nil
		},
	}
	events := &mockCreatedPublisher{}

	uc := newTestSubmitUseCase(pages, checkout, events)

	result, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{
		CustomerName:    "João",
		FulfillmentMode: domain.FulfillmentPickup,
	})

	require.NoError(t, err)
	assert.Equal(t, "order-1", result.Order.ID)
	assert.Equal(t, "https://comanda.app/lanchonete-da-ana/order/order-1", result.TrackingURL)
	assert.Contains(t, result.Message, "Lanchonete da Ana")
	assert.Contains(t, result.WhatsAppLink, "https://wa.me/5511999990000")
	assert.Equal(t, 1, events.calls)
}

func TestSubmitOrder_ClosedStore(t *testing.T) {
	page := openPage()
	page.IsOpen = false

	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return page, nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			t.Fatal("Submit should not be called")
			return nil, nil
		},
	}

	uc := newTestSubmitUseCase(pages, checkout, nil)

	_, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{})

	require.Error(t, err)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestSubmitOrder_UnknownTenant(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return nil, apperrors.NewNotFoundError("page not found")
		},
	}

	uc := newTestSubmitUseCase(pages, &mockCheckoutService{}, nil)

	_, err := uc.Submit(context.Background(), "ghost", cart.New(), service.Submission{})

	require.Error(t, err)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestSubmitOrder_CouponRequiresEntitlement(t *testing.T) {
	page := openPage()
	page.Plan = domain.PlanFree

	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return page, nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			t.Fatal("Submit should not be called")
			return nil, nil
		},
	}

	uc := newTestSubmitUseCase(pages, checkout, nil)

	_, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{
		CouponCode: "SAVE10",
	})

	require.Error(t, err)
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
}

func TestSubmitOrder_RetriesOnDeadlock(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return openPage(), nil
		},
	}
	checkout := &mockCheckoutService{}
	checkout.SubmitFunc = func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
		if checkout.calls < 3 {
			return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return submittedOrder(), nil
	}

	uc := newTestSubmitUseCase(pages, checkout, nil)

	result, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{})

	require.NoError(t, err)
	assert.Equal(t, "order-1", result.Order.ID)
	assert.Equal(t, 3, checkout.calls)
}

func TestSubmitOrder_DeadlockRetriesExhausted(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return openPage(), nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		},
	}

	uc := newTestSubmitUseCase(pages, checkout, nil)

	_, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{})

	require.Error(t, err)
	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, checkout.calls)
}

func TestSubmitOrder_ValidationErrorIsNotRetried(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return openPage(), nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			return nil, apperrors.ErrEmptyCart
		},
	}

	uc := newTestSubmitUseCase(pages, checkout, nil)

	_, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{})

	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Equal(t, 1, checkout.calls)
}

func TestSubmitOrder_PublishFailureDoesNotFailSubmission(t *testing.T) {
	pages := &mockPageFinder{
		PageFunc: func(ctx context.Context, slug string) (*domain.TenantPage, error) {
			return openPage(), nil
		},
	}
	checkout := &mockCheckoutService{
		SubmitFunc: func(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error) {
			return submittedOrder(), nil
		},
	}
	events := &mockCreatedPublisher{
		PublishOrderCreatedFunc: func(ctx context.Context, order *domain.Order) error {
			return errors.New("broker unavailable")
		},
	}

	uc := newTestSubmitUseCase(pages, checkout, events)

	result, err := uc.Submit(context.Background(), "lanchonete-da-ana", cart.New(), service.Submission{})

	require.NoError(t, err)
	assert.Equal(t, "order-1", result.Order.ID)
}
