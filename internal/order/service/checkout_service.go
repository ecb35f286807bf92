package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/coupon"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type OrderWriter interface {
	Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) error
}

// Submission carries the customer and delivery data of one checkout attempt.
type Submission struct {
	CustomerName    string
	CustomerPhone   string
	CustomerRef     string
	FulfillmentMode domain.FulfillmentMode
	Street          string
	Number          string
	Neighborhood    string
	Complement      string
	CouponCode      string
}

// CheckoutService converts a finalized cart into exactly one persisted Order.
type CheckoutService struct {
	db        TransactionManager
	orders    OrderWriter
	logger    *zap.Logger
	txTimeout time.Duration
	now       func() time.Time
	newID     func() string
}

func NewCheckoutService(
	db TransactionManager,
	orders OrderWriter,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:        db,
		orders:    orders,
		logger:    logger,
		txTimeout: txTimeout,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Submit validates the submission, snapshots the cart and persists the order
// in pending status. Validation short-circuits in a fixed sequence: cart,
// customer name, delivery address, coupon. Nothing is written until every
// check passed, and at most one write happens per call.
func (s *CheckoutService) Submit(
	ctx context.Context,
	tenant *domain.TenantPage,
	c *cart.Cart,
	sub Submission,
) (*domain.Order, error) {
	if c.Empty() {
		return nil, apperrors.ErrEmptyCart
	}
	if strings.TrimSpace(sub.CustomerName) == "" {
		return nil, apperrors.ErrMissingCustomerName
	}

	var deliveryAddress *string
	if sub.FulfillmentMode == domain.FulfillmentDelivery {
		if strings.TrimSpace(sub.Street) == "" ||
			strings.TrimSpace(sub.Number) == "" ||
			strings.TrimSpace(sub.Neighborhood) == "" {
			return nil, apperrors.ErrIncompleteAddress
		}
		addr := formatAddress(sub)
		deliveryAddress = &addr
	}

	subtotal := c.Subtotal()
	discount := decimal.Zero
	var couponCode *string

	if strings.TrimSpace(sub.CouponCode) != "" {
		result, err := coupon.Resolve(sub.CouponCode, tenant.Coupons, subtotal)
		if err != nil {
			return nil, err
		}
		discount = result.Discount
		couponCode = &result.Code
	}

	order := &domain.Order{
		ID:              s.newID(),
		TenantSlug:      tenant.Slug,
		CustomerName:    strings.TrimSpace(sub.CustomerName),
		CustomerPhone:   optional(sub.CustomerPhone),
		CustomerRef:     optional(sub.CustomerRef),
		Items:           c.Items(),
		Subtotal:        subtotal,
		CouponCode:      couponCode,
		Discount:        discount,
		Total:           subtotal.Sub(discount),
		FulfillmentMode: sub.FulfillmentMode,
		DeliveryAddress: deliveryAddress,
		Status:          domain.StatusPending,
		CreatedAt:       s.now().UTC(),
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	if err := s.orders.Insert(txCtx, tx, order); err != nil {
		s.logger.Error("failed to insert order", zap.String("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit order", zap.String("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order submitted",
		zap.String("orderId", order.ID),
		zap.String("tenant", order.TenantSlug),
		zap.String("total", order.Total.StringFixed(2)),
	)

	return order, nil
}

func formatAddress(sub Submission) string {
	addr := strings.TrimSpace(sub.Street) + ", " + strings.TrimSpace(sub.Number)
	if c := strings.TrimSpace(sub.Complement); c != "" {
		addr += " (" + c + ")"
	}
	return addr + " - " + strings.TrimSpace(sub.Neighborhood)
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
