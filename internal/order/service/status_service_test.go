package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/tracking"
)

type mockOrderStatusRepository struct {
	FindByIDFunc        func(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatusCASFunc func(ctx context.Context, id string, from, to domain.Status) error
	casCalls            int
}

func (m *mockOrderStatusRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderStatusRepository) UpdateStatusCAS(ctx context.Context, id string, from, to domain.Status) error {
	m.casCalls++
	return m.UpdateStatusCASFunc(ctx, id, from, to)
}

type mockStatusPublisher struct {
	PublishOrderStatusChangedFunc func(ctx context.Context, order *domain.Order) error
	published                     []domain.Status
}

func (m *mockStatusPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	m.published = append(m.published, order.Status)
	if m.PublishOrderStatusChangedFunc != nil {
		return m.PublishOrderStatusChangedFunc(ctx, order)
	}
	return nil
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:         "order-1",
		TenantSlug: "lanchonete-da-ana",
		Status:     domain.StatusPending,
	}
}

func TestAdvance_Success(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			assert.Equal(t, domain.StatusPending, from)
			assert.Equal(t, domain.StatusPreparing, to)
			return nil
		},
	}
	feed := tracking.NewFeed()
	events := &mockStatusPublisher{}
	svc := NewStatusService(repo, feed, events, zap.NewNop())

	updates, cancel := feed.Subscribe("order-1")
	defer cancel()

	updated, err := svc.Advance(context.Background(), pendingOrder())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, updated.Status)
	assert.Equal(t, []domain.Status{domain.StatusPreparing}, events.published)

	select {
	case got := <-updates:
		assert.Equal(t, domain.StatusPreparing, got.Status)
	case <-time.After(time.Second):
		t.Fatal("no feed update published")
	}
}

func TestAdvance_TerminalOrder(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			t.Fatal("UpdateStatusCAS should not be called")
			return nil
		},
	}
	svc := NewStatusService(repo, tracking.NewFeed(), nil, zap.NewNop())

	order := pendingOrder()
	order.Status = domain.StatusCompleted

	_, err := svc.Advance(context.Background(), order)

	assert.ErrorIs(t, err, apperrors.ErrTerminalState)
	assert.Equal(t, 0, repo.casCalls)
}

func TestAdvance_ConflictResolvedAsIdempotentSuccess(t *testing.T) {
	// A concurrent writer already performed the same pending -> preparing
	// transition; the losing call reports success with the fresh row and
	// publishes nothing of its own.
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			return apperrors.ErrStatusConflict
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			current := pendingOrder()
			current.Status = domain.StatusPreparing
			return current, nil
		},
	}
	events := &mockStatusPublisher{}
	svc := NewStatusService(repo, tracking.NewFeed(), events, zap.NewNop())

	updated, err := svc.Advance(context.Background(), pendingOrder())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, updated.Status)
	assert.Empty(t, events.published)
}

func TestAdvance_ConflictWithDivergedStatus(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			return apperrors.ErrStatusConflict
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			current := pendingOrder()
			current.Status = domain.StatusDelivery
			return current, nil
		},
	}
	svc := NewStatusService(repo, tracking.NewFeed(), nil, zap.NewNop())

	_, err := svc.Advance(context.Background(), pendingOrder())

	assert.ErrorIs(t, err, apperrors.ErrStatusConflict)
}

func TestAdvance_ConflictWithTerminalStatus(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			return apperrors.ErrStatusConflict
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			current := pendingOrder()
			current.Status = domain.StatusCanceled
			return current, nil
		},
	}
	svc := NewStatusService(repo, tracking.NewFeed(), nil, zap.NewNop())

	_, err := svc.Advance(context.Background(), pendingOrder())

	assert.ErrorIs(t, err, apperrors.ErrTerminalState)
}

func TestAdvance_RacingWritersProduceOneTransition(t *testing.T) {
	// Both callers observed pending. The stored row only matches once, so the
	// second CAS fails and resolves against the fresh row.
	stored := domain.StatusPending
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			if stored != from {
				return apperrors.ErrStatusConflict
			}
			stored = to
			return nil
		},
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			current := pendingOrder()
			current.Status = stored
			return current, nil
		},
	}
	events := &mockStatusPublisher{}
	svc := NewStatusService(repo, tracking.NewFeed(), events, zap.NewNop())

	first, err := svc.Advance(context.Background(), pendingOrder())
	require.NoError(t, err)
	second, err := svc.Advance(context.Background(), pendingOrder())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPreparing, first.Status)
	assert.Equal(t, domain.StatusPreparing, second.Status)
	assert.Equal(t, domain.StatusPreparing, stored)
	assert.Equal(t, []domain.Status{domain.StatusPreparing}, events.published)
}

func TestCancel_FromPending(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			assert.Equal(t, domain.StatusPending, from)
			assert.Equal(t, domain.StatusCanceled, to)
			return nil
		},
	}
	events := &mockStatusPublisher{}
	svc := NewStatusService(repo, tracking.NewFeed(), events, zap.NewNop())

	updated, err := svc.Cancel(context.Background(), pendingOrder())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, updated.Status)
	assert.Equal(t, []domain.Status{domain.StatusCanceled}, events.published)
}

func TestCancel_AfterPreparationStarted(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			t.Fatal("UpdateStatusCAS should not be called")
			return nil
		},
	}
	svc := NewStatusService(repo, tracking.NewFeed(), nil, zap.NewNop())

	for _, status := range []domain.Status{domain.StatusPreparing, domain.StatusDelivery} {
		order := pendingOrder()
		order.Status = status

		_, err := svc.Cancel(context.Background(), order)

		require.Error(t, err, "status %s", status)
		_, ok := apperrors.IsConflictError(err)
		assert.True(t, ok, "status %s", status)
	}
}

func TestCancel_TerminalOrder(t *testing.T) {
	svc := NewStatusService(&mockOrderStatusRepository{}, tracking.NewFeed(), nil, zap.NewNop())

	order := pendingOrder()
	order.Status = domain.StatusCompleted

	_, err := svc.Cancel(context.Background(), order)

	assert.ErrorIs(t, err, apperrors.ErrTerminalState)
}

func TestBroadcast_PublisherFailureIsSwallowed(t *testing.T) {
	repo := &mockOrderStatusRepository{
		UpdateStatusCASFunc: func(ctx context.Context, id string, from, to domain.Status) error {
			return nil
		},
	}
	events := &mockStatusPublisher{
		PublishOrderStatusChangedFunc: func(ctx context.Context, order *domain.Order) error {
			return errors.New("broker unavailable")
		},
	}
	svc := NewStatusService(repo, tracking.NewFeed(), events, zap.NewNop())

	_, err := svc.Advance(context.Background(), pendingOrder())

	assert.NoError(t, err)
}
