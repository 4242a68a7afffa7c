package checkout

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/cart"
	"github.com/weeklybasket/storefront/internal/domain"
	"github.com/weeklybasket/storefront/internal/gate"
)

var (
	// ErrSubmissionInFlight rejects a second submission while one is
	// running. Double clicks must not create duplicate orders.
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")

	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
)

// PreconditionError is caught before any network call: missing identity
// fields and similar caller mistakes.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return e.Message
}

// RejectionError is a normal business outcome (stock shortfall,
// minimum-order shortfall, backend validation). The cart is left
// untouched so the shopper can adjust and retry.
type RejectionError struct {
	Reasons []string
}

func (e *RejectionError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req *backend.OrderCreateRequest, idempotencyKey string) (*domain.Order, error)
}

// Submitter turns a validated cart plus shopper identity into an order.
// idle -> submitting -> (succeeded | failed) -> idle; single-flight.
type Submitter struct {
	engine   *cart.Engine
	stock    *gate.StockGate
	creator  orderCreator
	inFlight atomic.Bool
}

func NewSubmitter(engine *cart.Engine, stock *gate.StockGate, creator orderCreator) *Submitter {
	return &Submitter{
		engine:  engine,
		stock:   stock,
		creator: creator,
	}
}

// Submit runs the blocking gates and places the order. On success the
// cart is cleared and the created order's identifier returned. On any
// failure the cart is left as it was. adminContext bypasses the
// minimum-order gate only; identity checks, the credential included, and
// stock validation apply to every caller. The credential is the lookup
// key for the order afterwards, so an order placed without one would be
// unreachable.
func (s *Submitter) Submit(ctx context.Context, user domain.UserInfo, adminContext bool) (string, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return "", ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	snapshot := s.engine.Snapshot()
	if len(snapshot.Lines) == 0 {
		return "", ErrEmptyCart
	}

	if !user.Complete(true) {
		return "", &PreconditionError{Message: "all fields are required: name, email, phone, address and password"}
	}

	if !adminContext {
		if ok, _ := gate.CheckMinOrder(snapshot.Total, snapshot.MinOrderValue); !ok {
			return "", &RejectionError{
				Reasons: []string{gate.MinOrderMessage(snapshot.Total, snapshot.MinOrderValue)},
			}
		}
	}

	verdict := s.stock.Check(ctx, snapshot.Lines, gate.Blocking)
	if !verdict.Proceed {
		return "", &RejectionError{Reasons: verdict.Messages}
	}

	req := &backend.OrderCreateRequest{
		UserInfo: user,
		Items:    orderItemsFromLines(snapshot.Lines),
	}
	order, err := s.creator.CreateOrder(ctx, req, uuid.NewString())
	if err != nil {
		var remote *backend.RemoteError
		if errors.As(err, &remote) {
			// The backend re-checks stock at creation time; its reasons
			// come back already normalized to one string.
			return "", &RejectionError{Reasons: []string{remote.Message}}
		}
		return "", err
	}

	s.engine.ClearCart()
	log.Printf("order %s placed, status %s", order.ID, order.Status)
	return order.ID, nil
}

func orderItemsFromLines(lines []domain.CartLine) []domain.OrderItem {
	items := make([]domain.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = domain.OrderItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			Price:       l.Product.Price,
			Total:       l.Subtotal(),
		}
	}
	return items
}
