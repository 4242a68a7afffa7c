package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckMinOrder_BelowThreshold(t *testing.T) {
	ok, shortfall := CheckMinOrder(300, 500)

	assert.False(t, ok)
	assert.Equal(t, 200.0, shortfall)
}

func TestCheckMinOrder_BoundaryIsInclusive(t *testing.T) {
	ok, shortfall := CheckMinOrder(500, 500)

	assert.True(t, ok)
	assert.Equal(t, 0.0, shortfall)
}

func TestCheckMinOrder_AboveThreshold(t *testing.T) {
	ok, _ := CheckMinOrder(750, 500)

	assert.True(t, ok)
}

func TestMinOrderMessage(t *testing.T) {
	msg := MinOrderMessage(300, 500)

	assert.Equal(t, "Minimum order value is ₹500. Current order total: ₹300.00", msg)
}
