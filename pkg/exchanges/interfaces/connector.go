package interfaces

import (
	"context"
)

// Gateway defines the authenticated REST surface of the exchange connector.
// The concrete implementation lives in pkg/exchanges/coinbase; strategy code
// and tests depend on this interface so that order placement can be faked.
//
// Implementations must be safe for concurrent use: every call is an
// independent round trip carrying its own timestamp and signature, and no
// state beyond immutable credentials is shared between calls.
type Gateway interface {
	// GetAccounts retrieves all trading accounts for the authenticated
	// profile.
	GetAccounts(ctx context.Context) ([]Account, error)

	// GetOrder retrieves a single order by its exchange-assigned id.
	GetOrder(ctx context.Context, id string) (*OpenOrder, error)

	// GetOrders retrieves orders filtered by status. Statuses are appended as
	// repeated query parameters in the order given; an empty list omits the
	// query string entirely and returns the exchange default (all orders).
	GetOrders(ctx context.Context, statuses []string) ([]OpenOrder, error)

	// PlaceOrder submits a market or limit order. The spec is validated
	// before any network call: size and price must be well-formed decimal
	// strings, and a limit order must carry a price.
	PlaceOrder(ctx context.Context, spec OrderSpec) (*OrderResponse, error)

	// Convert moves funds between two currency accounts. The amount must be
	// a well-formed decimal string.
	Convert(ctx context.Context, from, to, amount string) (*ConversionResponse, error)
}
