package store

import (
	"context"

	"github.com/weeklybasket/storefront/internal/domain"
)

// CartStore is the durable slot holding the cart's line sequence across
// sessions. Load returns an empty sequence when the slot is missing or
// holds corrupt data; Save replaces the whole slot. No other component
// reads or writes the underlying storage directly.
type CartStore interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

// slotKey is the fixed namespaced key the cart slot lives under.
const slotKey = "storefront:cart"
