package domain

// CartLine is one product-quantity pairing held in the cart. The product
// is a snapshot taken when the line was created; price drift after that is
// accepted until the next stock validation.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the line's contribution to the cart total.
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

type Notification struct {
	Visible bool   `json:"visible"`
	Message string `json:"message"`
}

// CartSnapshot is an immutable view of the cart. Total and ItemCount are
// always recomputed from Lines, never carried over between snapshots.
type CartSnapshot struct {
	Lines         []CartLine   `json:"lines"`
	Total         float64      `json:"total"`
	ItemCount     int          `json:"item_count"`
	MinOrderValue float64      `json:"min_order_value"`
	Notification  Notification `json:"notification"`
}

// ComputeCartTotals derives the total and item count for a line sequence.
func ComputeCartTotals(lines []CartLine) (total float64, itemCount int) {
	for _, l := range lines {
		total += l.Subtotal()
		itemCount += l.Quantity
	}
	return total, itemCount
}
