package orderedit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/domain"
)

type mockEditor struct {
	order        *domain.Order
	err          error
	customerSeen *backend.OrderItemsUpdate
	adminSeen    []domain.OrderItem
	calls        int
}

func (m *mockEditor) ReplaceOrderItems(_ context.Context, _ string, update *backend.OrderItemsUpdate) (*domain.Order, error) {
	m.calls++
	m.customerSeen = update
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockEditor) AdminReplaceOrderItems(_ context.Context, _ string, items []domain.OrderItem) (*domain.Order, error) {
	m.calls++
	m.adminSeen = items
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func editableOrder() *domain.Order {
	return &domain.Order{
		ID:          "o1",
		UserName:    "Asha",
		UserEmail:   "asha@example.com",
		UserPhone:   "9999999999",
		UserAddress: "12 Lake Road",
		Status:      domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "p1", ProductName: "Rice", Quantity: 2, Price: 100, Total: 200},
			{ProductID: "p2", ProductName: "Dal", Quantity: 1, Price: 50, Total: 50},
		},
		TotalAmount: 250,
	}
}

func TestOpen_EditableStatuses(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirmed} {
		order := editableOrder()
		order.Status = status

		_, err := Open(order, Customer, &mockEditor{})
		assert.NoError(t, err, "status %s must be editable", status)
	}
}

func TestOpen_RefusesFrozenStatuses(t *testing.T) {
	for _, status := range []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCancelled} {
		order := editableOrder()
		order.Status = status

		_, err := Open(order, Customer, &mockEditor{})
		assert.ErrorIs(t, err, ErrNotEditable, "status %s must refuse an edit session", status)
	}
}

func TestOpen_SeedsWorkingCopy(t *testing.T) {
	s, err := Open(editableOrder(), Customer, &mockEditor{})
	require.NoError(t, err)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 250.0, s.Total())
}

func TestAddLine_DefaultsToQuantityOne(t *testing.T) {
	s, _ := Open(editableOrder(), Customer, &mockEditor{})

	s.AddLine(domain.Product{ID: "p3", Name: "Ghee", Price: 300})

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, 1, lines[2].Quantity)
	assert.Equal(t, 300.0, lines[2].Price)
	assert.Equal(t, 550.0, s.Total())
}

func TestSetLineProduct_ResnapshotsPrice(t *testing.T) {
	s, _ := Open(editableOrder(), Customer, &mockEditor{})

	// Swap line 0 (Rice @100 x2) to Ghee at its current price.
	require.NoError(t, s.SetLineProduct(0, domain.Product{ID: "p3", Name: "Ghee", Price: 300}))

	lines := s.Lines()
	assert.Equal(t, "p3", lines[0].ProductID)
	assert.Equal(t, "Ghee", lines[0].ProductName)
	assert.Equal(t, 300.0, lines[0].Price)
	assert.Equal(t, 2, lines[0].Quantity, "quantity survives a product swap")
	assert.Equal(t, 650.0, s.Total())
}

func TestSetLineQuantity(t *testing.T) {
	s, _ := Open(editableOrder(), Customer, &mockEditor{})

	require.NoError(t, s.SetLineQuantity(1, 4))
	assert.Equal(t, 400.0, s.Total())

	assert.ErrorIs(t, s.SetLineQuantity(1, 0), ErrQuantityTooLow)
	assert.ErrorIs(t, s.SetLineQuantity(1, -1), ErrQuantityTooLow)
}

func TestRemoveLine(t *testing.T) {
	s, _ := Open(editableOrder(), Customer, &mockEditor{})

	require.NoError(t, s.RemoveLine(0))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
	assert.Equal(t, 50.0, s.Total())
}

func TestRemoveLine_RefusesLastLine(t *testing.T) {
	editor := &mockEditor{}
	s, _ := Open(editableOrder(), Customer, editor)
	require.NoError(t, s.RemoveLine(0))

	err := s.RemoveLine(0)

	assert.ErrorIs(t, err, ErrLastLine)
	assert.Len(t, s.Lines(), 1)
	assert.Equal(t, 0, editor.calls, "the refusal is local, no round trip")
}

func TestRemoveLine_BadIndex(t *testing.T) {
	s, _ := Open(editableOrder(), Customer, &mockEditor{})

	assert.Error(t, s.RemoveLine(7))
	assert.Error(t, s.RemoveLine(-1))
}

func TestSave_CustomerNeedsCredential(t *testing.T) {
	editor := &mockEditor{}
	s, _ := Open(editableOrder(), Customer, editor)

	// Open seeds the identity from the order, but the credential has to
	// come from the shopper.
	_, err := s.Save(context.Background())

	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Equal(t, 0, editor.calls)
}

func TestSave_CustomerPath(t *testing.T) {
	updated := editableOrder()
	updated.TotalAmount = 400
	editor := &mockEditor{order: updated}

	s, _ := Open(editableOrder(), Customer, editor)
	s.SetIdentity(domain.UserInfo{
		Name:     "Asha",
		Email:    "asha@example.com",
		Phone:    "9999999999",
		Address:  "12 Lake Road",
		Password: "secret",
	})
	require.NoError(t, s.SetLineQuantity(0, 3))

	order, err := s.Save(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 400.0, order.TotalAmount)
	assert.True(t, s.Saved())

	require.NotNil(t, editor.customerSeen)
	require.NotNil(t, editor.customerSeen.UserInfo)
	assert.Equal(t, "secret", editor.customerSeen.UserInfo.Password)
	require.Len(t, editor.customerSeen.Items, 2)
	assert.Equal(t, 3, editor.customerSeen.Items[0].Quantity)
	assert.Equal(t, 300.0, editor.customerSeen.Items[0].Total)
}

func TestSave_AdminPathNeedsNoCredential(t *testing.T) {
	editor := &mockEditor{order: editableOrder()}
	s, _ := Open(editableOrder(), Administrator, editor)

	_, err := s.Save(context.Background())

	require.NoError(t, err)
	assert.Nil(t, editor.customerSeen)
	require.Len(t, editor.adminSeen, 2)
}

func TestSave_NormalizesRemoteError(t *testing.T) {
	editor := &mockEditor{err: &backend.RemoteError{StatusCode: 400, Message: "Only 1 left"}}
	s, _ := Open(editableOrder(), Administrator, editor)

	_, err := s.Save(context.Background())

	require.Error(t, err)
	assert.Equal(t, "Only 1 left", err.Error())
}

func TestSave_OpaqueErrorFallsBackToGenericMessage(t *testing.T) {
	editor := &mockEditor{err: context.DeadlineExceeded}
	s, _ := Open(editableOrder(), Administrator, editor)

	_, err := s.Save(context.Background())

	require.Error(t, err)
	assert.Equal(t, backend.GenericFailureMessage, err.Error())
	assert.False(t, s.Saved())
}
