package orderedit

import (
	"context"
	"errors"
	"fmt"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/domain"
)

// Party identifies who is editing the order. Customers must present the
// order credential on save; administrators edit without one.
type Party int

const (
	Customer Party = iota
	Administrator
)

var (
	// ErrNotEditable means the order's status is past confirmed. Callers
	// must check Order.CanEdit before offering the action; hitting this
	// is a precondition violation, not a recoverable outcome.
	ErrNotEditable = errors.New("order can no longer be edited")

	// ErrLastLine blocks removing the only remaining line. An order must
	// keep at least one line until it is cancelled server-side.
	ErrLastLine = errors.New("an order must keep at least one item")

	ErrMissingIdentity = errors.New("all identity fields are required")
	ErrQuantityTooLow  = errors.New("quantity must be at least 1")
)

// Line is one entry of the working copy. Price is a re-snapshot taken
// when the line was added or its product swapped; it does not track the
// live product afterwards.
type Line struct {
	ProductID   string
	ProductName string
	Quantity    int
	Price       float64
}

func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

type orderEditor interface {
	ReplaceOrderItems(ctx context.Context, orderID string, update *backend.OrderItemsUpdate) (*domain.Order, error)
	AdminReplaceOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) (*domain.Order, error)
}

// Session is a local, throwaway working copy of an order's line items.
// All operations stay local until Save; discarding the session cancels
// the edit with no remote effect.
type Session struct {
	orderID  string
	party    Party
	lines    []Line
	identity domain.UserInfo
	editor   orderEditor
	saved    bool
}

// Open starts an edit session for an order still in an editable status.
func Open(order *domain.Order, party Party, editor orderEditor) (*Session, error) {
	if !order.CanEdit() {
		return nil, ErrNotEditable
	}

	lines := make([]Line, len(order.Items))
	for i, item := range order.Items {
		lines[i] = Line{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	return &Session{
		orderID: order.ID,
		party:   party,
		lines:   lines,
		identity: domain.UserInfo{
			Name:    order.UserName,
			Email:   order.UserEmail,
			Phone:   order.UserPhone,
			Address: order.UserAddress,
		},
		editor: editor,
	}, nil
}

// AddLine appends a new line defaulted to quantity 1 at the product's
// current price.
func (s *Session) AddLine(p domain.Product) {
	s.lines = append(s.lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    1,
		Price:       p.Price,
	})
}

// SetLineProduct swaps the product reference for a line, re-pricing it at
// the new product's current unit price.
func (s *Session) SetLineProduct(index int, p domain.Product) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.lines[index].ProductID = p.ID
	s.lines[index].ProductName = p.Name
	s.lines[index].Price = p.Price
	return nil
}

// SetLineQuantity sets a line's quantity; removal is a separate operation
// so anything below 1 is rejected.
func (s *Session) SetLineQuantity(index, quantity int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if quantity < 1 {
		return ErrQuantityTooLow
	}
	s.lines[index].Quantity = quantity
	return nil
}

// RemoveLine drops a line, refusing to empty the order. The refusal is
// local; no round trip happens.
func (s *Session) RemoveLine(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if len(s.lines) == 1 {
		return ErrLastLine
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// Total sums the line subtotals, recomputed on demand.
func (s *Session) Total() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the working copy's lines.
func (s *Session) Lines() []Line {
	return append([]Line(nil), s.lines...)
}

// SetIdentity replaces the identity bundle sent on save. Customers use
// this to supply the credential Open could not seed from the order.
func (s *Session) SetIdentity(u domain.UserInfo) {
	s.identity = u
}

// Save sends the full replacement item set to the order-edit
// collaborator. Stock is not re-validated on this path: the order already
// reserved its stock when it was placed.
func (s *Session) Save(ctx context.Context) (*domain.Order, error) {
	if len(s.lines) == 0 {
		return nil, ErrLastLine
	}
	if s.party == Customer && !s.identity.Complete(true) {
		return nil, ErrMissingIdentity
	}

	items := make([]domain.OrderItem, len(s.lines))
	for i, l := range s.lines {
		items[i] = domain.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Total:       l.Subtotal(),
		}
	}

	var (
		order *domain.Order
		err   error
	)
	switch s.party {
	case Administrator:
		order, err = s.editor.AdminReplaceOrderItems(ctx, s.orderID, items)
	default:
		update := &backend.OrderItemsUpdate{
			Items:    items,
			UserInfo: &s.identity,
		}
		order, err = s.editor.ReplaceOrderItems(ctx, s.orderID, update)
	}
	if err != nil {
		// Whatever shape the backend produced, the UI gets one string.
		return nil, fmt.Errorf("%s", backend.ErrorMessage(err))
	}

	s.saved = true
	return order, nil
}

// Saved reports whether the working copy was committed.
func (s *Session) Saved() bool {
	return s.saved
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("line index %d out of range", index)
	}
	return nil
}
