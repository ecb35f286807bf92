package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/tracking"
)

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

// TrackingController serves the public order tracking link. The order id is
// the capability token: anyone holding the link may read, nobody may write.
type TrackingController struct {
	orders OrderReader
	feed   *tracking.Feed
	logger *zap.Logger
}

func NewTrackingController(orders OrderReader, feed *tracking.Feed, logger *zap.Logger) *TrackingController {
	return &TrackingController{orders: orders, feed: feed, logger: logger}
}

// GetOrder is the pull fallback: the current snapshot of one order.
func (c *TrackingController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	order, ok := c.fetch(w, r, traceID)
	if !ok {
		return
	}

	writeJSON(w, c.logger, http.StatusOK, trackingDTO(order))
}

// StreamOrder pushes status changes over SSE. The first event is the current
// stored status so a late subscriber converges immediately; subsequent events
// follow the tracking feed until the client disconnects.
func (c *TrackingController) StreamOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	// Subscribe before reading the snapshot so a transition committed
	// between the two is buffered instead of lost.
	updates, cancel := c.feed.Subscribe(chi.URLParam(r, "id"))
	defer cancel()

	order, ok := c.fetch(w, r, traceID)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeJSON(w, c.logger, http.StatusInternalServerError, errorResponse{
			TraceID: traceID, Code: "INTERNAL_ERROR", Message: "streaming unsupported",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	c.writeEvent(w, tracking.Update{OrderID: order.ID, Status: order.Status, At: order.CreatedAt})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case update, open := <-updates:
			if !open {
				return
			}
			c.writeEvent(w, update)
			flusher.Flush()
			if update.Status.Terminal() {
				return
			}
		}
	}
}

func (c *TrackingController) fetch(w http.ResponseWriter, r *http.Request, traceID string) (*domain.Order, bool) {
	slug := chi.URLParam(r, "slug")
	orderID := chi.URLParam(r, "id")

	order, err := c.orders.FindByID(r.Context(), orderID)
	if err != nil {
		handleError(w, c.logger, traceID, err)
		return nil, false
	}

	// A valid id under the wrong tenant path is treated as unknown.
	if order.TenantSlug != slug {
		handleError(w, c.logger, traceID, apperrors.NewNotFoundError(fmt.Sprintf("order %s not found", orderID)))
		return nil, false
	}

	return order, true
}

func (c *TrackingController) writeEvent(w http.ResponseWriter, update tracking.Update) {
	payload, err := json.Marshal(update)
	if err != nil {
		c.logger.Error("failed to encode tracking update", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
}
