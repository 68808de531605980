// Package strategy implements the drive loop: it reads frames from a
// streaming session, maintains a per-product market snapshot cache, and
// invokes a user-supplied strategy callback on each ticker update.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/veiloq/coinbase-connector/pkg/exchanges/interfaces"
)

// Trade is the most recent trade carried by a ticker update.
type Trade struct {
	// ID is the exchange-assigned trade id, monotonic per product.
	ID    int64
	Price decimal.Decimal
	Side  string
	Size  decimal.Decimal
}

// ProductSnapshot is the latest known market state for one product. Each
// ticker message fully replaces the prior snapshot for its product; fields
// are never merged across messages, so a snapshot is always internally
// consistent.
type ProductSnapshot struct {
	ProductID string
	Price     decimal.Decimal
	BestBid   decimal.Decimal
	BestAsk   decimal.Decimal
	High24h   decimal.Decimal
	Low24h    decimal.Decimal
	Volume24h decimal.Decimal
	Volume30d decimal.Decimal
	LastTrade Trade
}

// State is the market state cache handed to the strategy callback: the
// per-product snapshots plus arbitrary user-defined data. It is owned by the
// drive loop; the callback receives it for the duration of one invocation
// and must not retain it past that call.
type State[T any] struct {
	Products map[string]ProductSnapshot
	UserData T
}

// Func is the strategy callback. It runs synchronously inside the drive
// loop with a cache state reflecting every frame up to and including the one
// that triggered it. It may read and mutate the state and may issue gateway
// calls; a blocking call here stalls the loop for its duration (see
// WithWorkerQueue for the decoupled mode).
type Func[T any] func(ctx context.Context, gw interfaces.Gateway, state *State[T])
