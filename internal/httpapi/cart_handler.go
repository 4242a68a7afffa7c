package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weeklybasket/storefront/internal/cart"
	"github.com/weeklybasket/storefront/internal/domain"
	"github.com/weeklybasket/storefront/internal/gate"
)

type productFetcher interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

type CartHandler struct {
	engine   *cart.Engine
	products productFetcher
	stock    *gate.StockGate
	timeout  time.Duration
}

func NewCartHandler(engine *cart.Engine, products productFetcher, stock *gate.StockGate, timeout time.Duration) *CartHandler {
	return &CartHandler{
		engine:   engine,
		products: products,
		stock:    stock,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ValidateResponseDTO struct {
	Proceed  bool     `json:"proceed"`
	Messages []string `json:"messages,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// AddItem fetches the product's current snapshot from the backend and
// adds it to the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.products.Product(ctx, req.ProductID)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	if !product.InStock() {
		respondError(w, http.StatusConflict, "out_of_stock", product.Name+" is out of stock")
		return
	}

	h.engine.AddItem(*product)
	respondJSON(w, http.StatusCreated, h.engine.Snapshot())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Zero or negative quantities drop the line, same as a remove.
	h.engine.UpdateQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	h.engine.RemoveItem(productID)
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearCart()
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *CartHandler) HideNotification(w http.ResponseWriter, r *http.Request) {
	h.engine.HideNotification()
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Validate is the informational stock check behind the cart icon: the
// shopper is warned about shortfalls, but navigation is never blocked by
// a failed round trip.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snapshot := h.engine.Snapshot()
	verdict := h.stock.Check(ctx, snapshot.Lines, gate.Informational)
	respondJSON(w, http.StatusOK, ValidateResponseDTO{
		Proceed:  verdict.Proceed,
		Messages: verdict.Messages,
	})
}
