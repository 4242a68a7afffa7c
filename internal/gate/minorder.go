package gate

import "fmt"

// DefaultMinOrderValue is used when the settings collaborator is absent
// or erroring at startup.
const DefaultMinOrderValue = 500

// MinOrderSettingName is the key the threshold lives under on the
// settings collaborator.
const MinOrderSettingName = "min_order_value"

// CheckMinOrder compares the cart total against the configured threshold.
// The boundary is inclusive: total == threshold passes. Pure comparison,
// no I/O; callers in an administrative context skip this gate entirely.
func CheckMinOrder(total, threshold float64) (ok bool, shortfall float64) {
	if total >= threshold {
		return true, 0
	}
	return false, threshold - total
}

// MinOrderMessage renders the shopper-facing rejection for a failed
// minimum-order check.
func MinOrderMessage(total, threshold float64) string {
	return fmt.Sprintf("Minimum order value is ₹%v. Current order total: ₹%.2f", threshold, total)
}
