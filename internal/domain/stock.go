package domain

// StockValidationItem is one requested product-quantity pair sent to the
// inventory collaborator.
type StockValidationItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type InvalidStockItem struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error"`
}

type StockValidationResult struct {
	Valid        bool               `json:"valid"`
	InvalidItems []InvalidStockItem `json:"invalid_items"`
}

// StockItemsFromLines maps cart lines to the wire shape of a stock
// validation request.
func StockItemsFromLines(lines []CartLine) []StockValidationItem {
	items := make([]StockValidationItem, len(lines))
	for i, l := range lines {
		items[i] = StockValidationItem{
			ProductID: l.Product.ID,
			Quantity:  l.Quantity,
		}
	}
	return items
}
