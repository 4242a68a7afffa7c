package gate

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/weeklybasket/storefront/internal/domain"
)

// Mode distinguishes the two stock-validation call sites. A blocking
// check fails closed on transport trouble because an order is about to be
// committed; an informational check only gates navigation and degrades to
// "proceed anyway" with a warning.
type Mode int

const (
	Informational Mode = iota
	Blocking
)

// UnableToValidateMessage is the synthetic error surfaced when the remote
// call itself failed.
const UnableToValidateMessage = "Unable to validate stock availability. Please try again."

// Verdict is the gate's answer. Proceed says whether the caller may move
// on; Messages carries the per-item shortfall strings (or the synthetic
// transport-failure message) for display, verbatim.
type Verdict struct {
	Proceed  bool
	Messages []string
}

type stockClient interface {
	ValidateStock(ctx context.Context, items []domain.StockValidationItem) (*domain.StockValidationResult, error)
}

// StockGate is the checkpoint in front of the inventory collaborator. The
// round trip runs behind a circuit breaker so a struggling backend is not
// hammered by every cart interaction; an open breaker is handled like any
// other transport failure, per mode.
type StockGate struct {
	client  stockClient
	breaker *gobreaker.CircuitBreaker[*domain.StockValidationResult]
}

func NewStockGate(client stockClient) *StockGate {
	breaker := gobreaker.NewCircuitBreaker[*domain.StockValidationResult](gobreaker.Settings{
		Name:        "stock-validate",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &StockGate{
		client:  client,
		breaker: breaker,
	}
}

// Check sends the candidate line set to the inventory collaborator and
// maps the outcome according to mode. An empty line set passes without a
// round trip.
func (g *StockGate) Check(ctx context.Context, lines []domain.CartLine, mode Mode) Verdict {
	if len(lines) == 0 {
		return Verdict{Proceed: true}
	}

	items := domain.StockItemsFromLines(lines)
	result, err := g.breaker.Execute(func() (*domain.StockValidationResult, error) {
		return g.client.ValidateStock(ctx, items)
	})
	if err != nil {
		return Verdict{
			Proceed:  mode == Informational,
			Messages: []string{UnableToValidateMessage},
		}
	}

	if !result.Valid {
		messages := make([]string, 0, len(result.InvalidItems))
		for _, item := range result.InvalidItems {
			messages = append(messages, item.Error)
		}
		return Verdict{Proceed: false, Messages: messages}
	}

	return Verdict{Proceed: true}
}
