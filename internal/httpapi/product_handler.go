package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/weeklybasket/storefront/internal/domain"
)

type catalogLister interface {
	Products(ctx context.Context, categoryID string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// ProductHandler proxies the backend's read-only catalog. The engine
// treats this data as cached snapshots that may go stale.
type ProductHandler struct {
	catalog catalogLister
	timeout time.Duration
}

func NewProductHandler(catalog catalogLister, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.Products(ctx, r.URL.Query().Get("category_id"))
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}
