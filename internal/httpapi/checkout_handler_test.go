package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/weeklybasket/storefront/internal/backend"
	"github.com/weeklybasket/storefront/internal/cart"
	"github.com/weeklybasket/storefront/internal/checkout"
	"github.com/weeklybasket/storefront/internal/domain"
	"github.com/weeklybasket/storefront/internal/gate"
)

type creatorMock struct {
	order *domain.Order
	err   error
}

func (m *creatorMock) CreateOrder(_ context.Context, _ *backend.OrderCreateRequest, _ string) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func newCheckoutHandler(stock *stockMock, creator *creatorMock) (*CheckoutHandler, *cart.Engine) {
	engine := cart.NewEngine(nil)
	engine.SetMinOrderValue(100)
	submitter := checkout.NewSubmitter(engine, gate.NewStockGate(stock), creator)
	return NewCheckoutHandler(submitter, 5*time.Second), engine
}

func seedCart(engine *cart.Engine) {
	engine.Restore([]domain.CartLine{
		{Product: domain.Product{ID: "p1", Name: "Rice", Price: 100}, Quantity: 2},
	})
}

func checkoutBody(t *testing.T, admin bool) *bytes.Reader {
	t.Helper()
	req := &CheckoutRequestDTO{
		UserInfo: domain.UserInfo{
			Name:     "Asha",
			Email:    "asha@example.com",
			Phone:    "9999999999",
			Address:  "12 Lake Road",
			Password: "secret",
		},
		AdminContext: admin,
	}
	reqBytes, _ := json.Marshal(req)
	return bytes.NewReader(reqBytes)
}

func TestSubmit_Success(t *testing.T) {
	stock := &stockMock{result: &domain.StockValidationResult{Valid: true}}
	creator := &creatorMock{order: &domain.Order{ID: "o1", Status: domain.OrderStatusPending}}
	handler, engine := newCheckoutHandler(stock, creator)
	seedCart(engine)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, false))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response CheckoutResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.OrderID != "o1" {
		t.Errorf("Expected order_id 'o1', got '%s'", response.OrderID)
	}

	if got := engine.Snapshot().ItemCount; got != 0 {
		t.Errorf("Expected cart cleared after checkout, got %d items", got)
	}
}

func TestSubmit_InvalidJSON(t *testing.T) {
	handler, _ := newCheckoutHandler(&stockMock{}, &creatorMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", bytes.NewReader([]byte("invalid json")))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	handler, _ := newCheckoutHandler(&stockMock{}, &creatorMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, false))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "empty_cart" {
		t.Errorf("Expected error code 'empty_cart', got '%s'", response.Code)
	}
}

func TestSubmit_MissingIdentity(t *testing.T) {
	handler, engine := newCheckoutHandler(&stockMock{}, &creatorMock{})
	seedCart(engine)

	reqBytes, _ := json.Marshal(&CheckoutRequestDTO{UserInfo: domain.UserInfo{Name: "Asha"}})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", bytes.NewReader(reqBytes))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "precondition_failed" {
		t.Errorf("Expected error code 'precondition_failed', got '%s'", response.Code)
	}
}

func TestSubmit_StockShortfall(t *testing.T) {
	stock := &stockMock{result: &domain.StockValidationResult{
		Valid: false,
		InvalidItems: []domain.InvalidStockItem{
			{ProductID: "p1", Error: "Only 1 left"},
		},
	}}
	handler, engine := newCheckoutHandler(stock, &creatorMock{})
	seedCart(engine)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, false))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response RejectionResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Errors) != 1 || response.Errors[0] != "Only 1 left" {
		t.Errorf("Expected the shortfall reason verbatim, got %v", response.Errors)
	}

	if got := engine.Snapshot().ItemCount; got != 2 {
		t.Errorf("Expected cart untouched after rejection, got %d items", got)
	}
}

func TestSubmit_MinOrderShortfall(t *testing.T) {
	stock := &stockMock{result: &domain.StockValidationResult{Valid: true}}
	handler, engine := newCheckoutHandler(stock, &creatorMock{})
	engine.SetMinOrderValue(500)
	seedCart(engine) // total 200

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, false))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response RejectionResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if len(response.Errors) != 1 {
		t.Fatalf("Expected one rejection reason, got %v", response.Errors)
	}
}

func TestSubmit_AdminContextBypassesMinOrder(t *testing.T) {
	stock := &stockMock{result: &domain.StockValidationResult{Valid: true}}
	creator := &creatorMock{order: &domain.Order{ID: "o2", Status: domain.OrderStatusPending}}
	handler, engine := newCheckoutHandler(stock, creator)
	engine.SetMinOrderValue(500)
	seedCart(engine) // total 200, below threshold

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, true))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}
}

func TestSubmit_BackendRejection(t *testing.T) {
	stock := &stockMock{result: &domain.StockValidationResult{Valid: true}}
	creator := &creatorMock{err: &backend.RemoteError{StatusCode: 400, Message: "Only 1 left; Dal is out of stock"}}
	handler, engine := newCheckoutHandler(stock, creator)
	seedCart(engine)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", checkoutBody(t, false))

	handler.Submit(recorder, request)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status code %d, got %d", http.StatusUnprocessableEntity, recorder.Code)
	}

	var response RejectionResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if len(response.Errors) != 1 || response.Errors[0] != "Only 1 left; Dal is out of stock" {
		t.Errorf("Expected the normalized backend reason, got %v", response.Errors)
	}
}
