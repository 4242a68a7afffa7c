package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/domain"
	"github.com/weeklybasket/storefront/internal/orderedit"
)

type ordersBackend interface {
	UserOrders(ctx context.Context, email, password string) ([]domain.Order, error)
	AdminOrders(ctx context.Context) ([]domain.Order, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	ReplaceOrderItems(ctx context.Context, orderID string, update *backend.OrderItemsUpdate) (*domain.Order, error)
	AdminReplaceOrderItems(ctx context.Context, orderID string, items []domain.OrderItem) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)
}

type OrdersHandler struct {
	backend ordersBackend
	timeout time.Duration
}

func NewOrdersHandler(b ordersBackend, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		backend: b,
		timeout: timeout,
	}
}

type OrderLookupRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EditItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type EditOrderRequestDTO struct {
	Admin    bool            `json:"admin"`
	UserInfo domain.UserInfo `json:"user_info"`
	Items    []EditItemDTO   `json:"items"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

// Lookup returns all orders placed with the given email/password pair.
func (h *OrdersHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req OrderLookupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "email and password are required")
		return
	}

	orders, err := h.backend.UserOrders(ctx, req.Email, req.Password)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// EditItems opens an edit session on an order still in an editable
// status, reconciles its working copy to the requested item set and
// saves the full replacement. Stock is not re-validated here; the order
// reserved its stock when it was placed.
func (h *OrdersHandler) EditItems(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")

	var req EditOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Items) == 0 {
		// Precondition: blocked before any round trip.
		respondError(w, http.StatusBadRequest, "last_item", orderedit.ErrLastLine.Error())
		return
	}

	order, err := h.findOrder(ctx, orderID, &req)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	party := orderedit.Customer
	if req.Admin {
		party = orderedit.Administrator
	}

	session, err := orderedit.Open(order, party, h.backend)
	if err != nil {
		respondError(w, http.StatusConflict, "not_editable", err.Error())
		return
	}

	if err := h.reconcile(ctx, session, req.Items); err != nil {
		h.respondEditError(w, err)
		return
	}
	if !req.Admin {
		session.SetIdentity(req.UserInfo)
	}

	updated, err := session.Save(ctx)
	if err != nil {
		h.respondEditError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// reconcile drives the working copy toward the requested item set:
// existing lines are re-pointed (re-pricing at the product's current
// price), extra requested items are appended, and surplus lines are
// trimmed from the end.
func (h *OrdersHandler) reconcile(ctx context.Context, session *orderedit.Session, items []EditItemDTO) error {
	for i, item := range items {
		product, err := h.backend.Product(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if i < len(session.Lines()) {
			if err := session.SetLineProduct(i, *product); err != nil {
				return err
			}
		} else {
			session.AddLine(*product)
		}
		if err := session.SetLineQuantity(i, item.Quantity); err != nil {
			return err
		}
	}
	for len(session.Lines()) > len(items) {
		if err := session.RemoveLine(len(session.Lines()) - 1); err != nil {
			return err
		}
	}
	return nil
}

func (h *OrdersHandler) respondEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orderedit.ErrLastLine):
		respondError(w, http.StatusBadRequest, "last_item", err.Error())
	case errors.Is(err, orderedit.ErrQuantityTooLow):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, orderedit.ErrMissingIdentity):
		respondError(w, http.StatusBadRequest, "missing_identity", err.Error())
	default:
		var remote *backend.RemoteError
		if errors.As(err, &remote) {
			respondBackendError(w, err)
			return
		}
		// Save already normalized whatever the backend produced into a
		// single readable string.
		respondJSON(w, http.StatusUnprocessableEntity, RejectionResponse{Errors: []string{err.Error()}})
	}
}

// findOrder locates the order through the party's own lookup surface.
// Returns (nil, nil) when the order is simply absent.
func (h *OrdersHandler) findOrder(ctx context.Context, orderID string, req *EditOrderRequestDTO) (*domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)
	if req.Admin {
		orders, err = h.backend.AdminOrders(ctx)
	} else {
		orders, err = h.backend.UserOrders(ctx, req.UserInfo.Email, req.UserInfo.Password)
	}
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// UpdateStatus is the administrative status passthrough.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status := domain.OrderStatus(req.Status)
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusShipped,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled:
	default:
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status: "+req.Status)
		return
	}

	order, err := h.backend.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
