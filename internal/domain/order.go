package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"comanda/internal/errors"
)

// Status is the fulfillment state of an order. The string values are the
// wire/storage representation and must not change.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDelivery  Status = "delivery"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// nextStatus is the happy-path transition table. Each non-terminal status has
// exactly one successor; canceled is only reachable through Cancel.
var nextStatus = map[Status]Status{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusDelivery,
	StatusDelivery:  StatusCompleted,
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Next returns the sole legal successor of s. Terminal statuses have none.
func (s Status) Next() (Status, error) {
	if s.Terminal() {
		return "", errors.ErrTerminalState
	}
	next, ok := nextStatus[s]
	if !ok {
		return "", errors.NewInternalError("unknown order status "+string(s), nil)
	}
	return next, nil
}

// CanCancel reports whether cancellation is legal from s. Cancellation after
// preparation has begun is intentionally not supported.
func (s Status) CanCancel() bool {
	return s == StatusPending
}

func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusPreparing, StatusDelivery, StatusCompleted, StatusCanceled:
		return Status(raw), true
	}
	return "", false
}

type FulfillmentMode string

const (
	FulfillmentDelivery FulfillmentMode = "delivery"
	FulfillmentPickup   FulfillmentMode = "pickup"
)

func (m FulfillmentMode) Valid() bool {
	return m == FulfillmentDelivery || m == FulfillmentPickup
}

// OrderItem is a snapshot of one cart line, copied at submission time. The
// title doubles as the item identity since the menu has no catalog ids.
type OrderItem struct {
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Round(2)
}

// Order is the persisted result of a checkout. Every field except Status is
// write-once; Status is only ever changed through a compare-and-set against
// the stored value.
type Order struct {
	ID              string
	TenantSlug      string
	CustomerName    string
	CustomerPhone   *string
	CustomerRef     *string
	Items           []OrderItem
	Subtotal        decimal.Decimal
	CouponCode      *string
	Discount        decimal.Decimal
	Total           decimal.Decimal
	FulfillmentMode FulfillmentMode
	DeliveryAddress *string
	Status          Status
	CreatedAt       time.Time
}
