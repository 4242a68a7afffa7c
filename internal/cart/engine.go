package cart

import (
	"sync"
	"time"

	"github.com/weeklybasket/storefront/internal/domain"
)

// notificationDelay is how long an add-to-cart notification stays visible
// before it is auto-hidden.
const notificationDelay = 2 * time.Second

// Engine owns the cart state for one shopper session. Exactly one Engine
// exists per process; consumers receive it by injection and read state
// only through Snapshot. Every operation is total and replaces the
// snapshot atomically.
type Engine struct {
	mu            sync.Mutex
	lines         []domain.CartLine
	minOrderValue float64
	notification  domain.Notification

	// notifGen guards the auto-hide timer: each notification-setting
	// action bumps it, and a timer only hides the notification if its
	// token is still current when it fires.
	notifGen uint64

	hideDelay time.Duration

	// onChange is invoked synchronously after every mutation that changes
	// lines, with a copy of the new sequence. The hook runs under the
	// engine lock so consecutive mutations deliver their snapshots in
	// mutation order; the hook must not call back into the engine. Its
	// failure handling is the hook's own business; the engine never rolls
	// back.
	onChange func(lines []domain.CartLine)
}

func NewEngine(onChange func(lines []domain.CartLine)) *Engine {
	return &Engine{
		hideDelay: notificationDelay,
		onChange:  onChange,
	}
}

// Restore seeds the engine with lines loaded from the persisted store.
// Called once at startup, before any consumer sees the engine.
func (e *Engine) Restore(lines []domain.CartLine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = append([]domain.CartLine(nil), lines...)
}

// Snapshot returns the current cart state. Total and item count are
// recomputed from the line sequence on every call; the returned lines
// slice is a copy the caller may keep.
func (e *Engine) Snapshot() domain.CartSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() domain.CartSnapshot {
	lines := append([]domain.CartLine(nil), e.lines...)
	total, itemCount := domain.ComputeCartTotals(lines)
	return domain.CartSnapshot{
		Lines:         lines,
		Total:         total,
		ItemCount:     itemCount,
		MinOrderValue: e.minOrderValue,
		Notification:  e.notification,
	}
}

// AddItem increments the line for the product, or appends a new line with
// quantity 1 at the end of the sequence. It always raises an add
// notification.
func (e *Engine) AddItem(p domain.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := false
	for i := range e.lines {
		if e.lines[i].Product.ID == p.ID {
			e.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		e.lines = append(e.lines, domain.CartLine{Product: p, Quantity: 1})
	}
	gen := e.setNotificationLocked(p.Name + " added to cart successfully!")
	e.scheduleHide(gen)
	e.fireOnChangeLocked()
}

// RemoveItem drops the matching line; no-op when the product is not in
// the cart. The notification is left as it was.
func (e *Engine) RemoveItem(productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID == productID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			e.fireOnChangeLocked()
			return
		}
	}
}

// UpdateQuantity sets the line's quantity to exactly quantity. A quantity
// of zero or less behaves like RemoveItem.
func (e *Engine) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		e.RemoveItem(productID)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.lines {
		if e.lines[i].Product.ID == productID {
			if e.lines[i].Quantity != quantity {
				e.lines[i].Quantity = quantity
				e.fireOnChangeLocked()
			}
			return
		}
	}
}

// ClearCart resets the cart to the empty snapshot, hiding any visible
// notification.
func (e *Engine) ClearCart() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lines = nil
	e.notification = domain.Notification{}
	e.notifGen++ // any pending hide timer is now stale
	e.fireOnChangeLocked()
}

// HideNotification makes the notification invisible without touching its
// message.
func (e *Engine) HideNotification() {
	e.mu.Lock()
	e.notification.Visible = false
	e.notifGen++
	e.mu.Unlock()
}

// SetMinOrderValue replaces the threshold the minimum-order gate compares
// against. Independent of line contents; no persistence side effect.
func (e *Engine) SetMinOrderValue(value float64) {
	e.mu.Lock()
	e.minOrderValue = value
	e.mu.Unlock()
}

func (e *Engine) setNotificationLocked(message string) uint64 {
	e.notification = domain.Notification{Visible: true, Message: message}
	e.notifGen++
	return e.notifGen
}

func (e *Engine) scheduleHide(gen uint64) {
	time.AfterFunc(e.hideDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.notifGen != gen {
			return // a newer notification or an explicit hide won
		}
		e.notification.Visible = false
	})
}

func (e *Engine) fireOnChangeLocked() {
	if e.onChange == nil {
		return
	}
	e.onChange(append([]domain.CartLine(nil), e.lines...))
}
