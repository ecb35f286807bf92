package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/domain"
	"comanda/internal/entitlement"
	apperrors "comanda/internal/errors"
	"comanda/internal/order/service"
)

type PageFinder interface {
	Page(ctx context.Context, slug string) (*domain.TenantPage, error)
}

type CheckoutService interface {
	Submit(ctx context.Context, tenant *domain.TenantPage, c *cart.Cart, sub service.Submission) (*domain.Order, error)
}

type CreatedPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// SubmitResult bundles the persisted order with the presentation artifacts
// the caller hands to the shopper: the summary text, the chat deep-link and
// the tracking link.
type SubmitResult struct {
	Order        *domain.Order
	Message      string
	WhatsAppLink string
	TrackingURL  string
}

type SubmitOrderUseCase struct {
	pages            PageFinder
	checkout         CheckoutService
	events           CreatedPublisher
	logger           *zap.Logger
	baseURL          string
	maxRetryAttempts int
	now              func() time.Time
}

func NewSubmitOrderUseCase(
	pages PageFinder,
	checkout CheckoutService,
	events CreatedPublisher,
	logger *zap.Logger,
	baseURL string,
	maxRetryAttempts int,
) *SubmitOrderUseCase {
	return &SubmitOrderUseCase{
		pages:            pages,
		checkout:         checkout,
		events:           events,
		logger:           logger,
		baseURL:          baseURL,
		maxRetryAttempts: maxRetryAttempts,
		now:              time.Now,
	}
}

// Submit places an order against a tenant's published menu. Coupon entry is a
// pro capability: the gate lives here, not in the coupon resolver, so pricing
// logic stays separate from authorization. The caller remains responsible for
// clearing the session cart after a successful submission.
func (uc *SubmitOrderUseCase) Submit(
	ctx context.Context,
	slug string,
	c *cart.Cart,
	sub service.Submission,
) (*SubmitResult, error) {
	page, err := uc.pages.Page(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !page.IsOpen {
		return nil, apperrors.NewConflictError("store is currently closed")
	}

	if sub.CouponCode != "" {
		ent := entitlement.Resolve(page.Plan, page.TrialDeadline, uc.now())
		if !ent.ProFeaturesEnabled {
			return nil, apperrors.NewForbiddenError("coupons require the pro plan")
		}
	}

	order, err := withDeadlockRetry(uc.maxRetryAttempts, func() (*domain.Order, error) {
		return uc.checkout.Submit(ctx, page, c, sub)
	})
	if err != nil {
		return nil, err
	}

	if uc.events != nil {
		if perr := uc.events.PublishOrderCreated(ctx, order); perr != nil {
			uc.logger.Warn("failed to publish order created event",
				zap.String("orderId", order.ID), zap.Error(perr))
		}
	}

	message := service.SummaryMessage(page, order, uc.baseURL)

	return &SubmitResult{
		Order:        order,
		Message:      message,
		WhatsAppLink: service.WhatsAppLink(page.WhatsApp, message),
		TrackingURL:  service.TrackingURL(uc.baseURL, order),
	}, nil
}
