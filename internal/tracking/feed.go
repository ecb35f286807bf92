// Package tracking is the read-side projection of order status changes: an
// in-process publish/subscribe hub keyed by order id, feeding the merchant
// dashboard and the public tracking page. Delivery is best-effort push with
// the pull endpoint as fallback; a slow subscriber is coalesced to the latest
// state rather than ever blocking a writer.
package tracking

import (
	"sync"
	"time"

	"comanda/internal/domain"
)

type Update struct {
	OrderID string        `json:"orderId"`
	Status  domain.Status `json:"status"`
	At      time.Time     `json:"at"`
}

type subscriber struct {
	ch chan Update
}

type Feed struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]*subscriber
	nextID uint64
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[string]map[uint64]*subscriber)}
}

// Subscribe registers a listener for one order's status changes. The returned
// cancel closes the channel and stops delivery; cancel is idempotent and only
// ever means "stop listening", never undoing a transition.
func (f *Feed) Subscribe(orderID string) (<-chan Update, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	sub := &subscriber{ch: make(chan Update, 1)}

	if f.subs[orderID] == nil {
		f.subs[orderID] = make(map[uint64]*subscriber)
	}
	f.subs[orderID][id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if subs, ok := f.subs[orderID]; ok {
				if _, ok := subs[id]; ok {
					delete(subs, id)
					close(sub.ch)
				}
				if len(subs) == 0 {
					delete(f.subs, orderID)
				}
			}
		})
	}

	return sub.ch, cancel
}

// Publish pushes an update to every subscriber of the order. If a subscriber
// has not drained the previous update it is replaced, so each subscriber
// always converges to the latest published status.
func (f *Feed) Publish(u Update) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs[u.OrderID] {
		select {
		case sub.ch <- u:
		default:
			// Sends happen only under the feed lock, so after draining the
			// stale update the buffered slot is free again.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- u
		}
	}
}

// Subscribers reports the current listener count for an order.
func (f *Feed) Subscribers(orderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[orderID])
}
