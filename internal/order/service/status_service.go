package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/tracking"
)

type OrderStatusRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error
}

type StatusPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error
}

// StatusService drives the order state machine. Transitions are monotonic and
// enforced at the persistence boundary with a compare-and-set rooted in the
// status the caller observed, so two racing advance calls can never move an
// order two steps.
type StatusService struct {
	orders OrderStatusRepository
	feed   *tracking.Feed
	events StatusPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewStatusService(
	orders OrderStatusRepository,
	feed *tracking.Feed,
	events StatusPublisher,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		orders: orders,
		feed:   feed,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Advance moves the order to the sole legal successor of the status the
// caller observed. When a concurrent writer got there first, the conflict is
// resolved by refetching: if the other writer already reached the successor,
// the call is an idempotent success; otherwise the conflict is surfaced.
func (s *StatusService) Advance(ctx context.Context, observed *domain.Order) (*domain.Order, error) {
	next, err := observed.Status.Next()
	if err != nil {
		return nil, err
	}

	err = s.orders.UpdateStatusCAS(ctx, observed.ID, observed.Status, next)
	if stderrors.Is(err, apperrors.ErrStatusConflict) {
		return s.resolveConflict(ctx, observed.ID, next)
	}
	if err != nil {
		return nil, err
	}

	updated := *observed
	updated.Status = next
	s.broadcast(ctx, &updated)

	s.logger.Info("order advanced",
		zap.String("orderId", updated.ID),
		zap.String("from", string(observed.Status)),
		zap.String("to", string(next)),
	)

	return &updated, nil
}

// Cancel withdraws a pending order. Cancellation is a distinct explicit
// operation, never reachable through Advance, and is legal from pending only.
func (s *StatusService) Cancel(ctx context.Context, observed *domain.Order) (*domain.Order, error) {
	if observed.Status.Terminal() {
		return nil, apperrors.ErrTerminalState
	}
	if !observed.Status.CanCancel() {
		return nil, apperrors.NewConflictError("order can only be canceled while pending")
	}

	err := s.orders.UpdateStatusCAS(ctx, observed.ID, observed.Status, domain.StatusCanceled)
	if stderrors.Is(err, apperrors.ErrStatusConflict) {
		return s.resolveConflict(ctx, observed.ID, domain.StatusCanceled)
	}
	if err != nil {
		return nil, err
	}

	updated := *observed
	updated.Status = domain.StatusCanceled
	s.broadcast(ctx, &updated)

	s.logger.Info("order canceled", zap.String("orderId", updated.ID))

	return &updated, nil
}

func (s *StatusService) resolveConflict(ctx context.Context, orderID string, desired domain.Status) (*domain.Order, error) {
	current, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.Status == desired {
		// Another writer already completed the same transition.
		return current, nil
	}
	if current.Status.Terminal() {
		return nil, apperrors.ErrTerminalState
	}
	return nil, apperrors.ErrStatusConflict
}

func (s *StatusService) broadcast(ctx context.Context, order *domain.Order) {
	s.feed.Publish(tracking.Update{
		OrderID: order.ID,
		Status:  order.Status,
		At:      s.now().UTC(),
	})

	if s.events == nil {
		return
	}
	// Event publishing is best-effort; the feed plus the pull endpoint remain
	// the source of truth for subscribers.
	if err := s.events.PublishOrderStatusChanged(ctx, order); err != nil {
		s.logger.Warn("failed to publish status change event",
			zap.String("orderId", order.ID), zap.Error(err))
	}
}
