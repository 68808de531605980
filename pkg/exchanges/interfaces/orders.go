package interfaces

import (
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType selects the order variant carried by an OrderSpec.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// OrderSpec is a tagged union over the two supported order variants. Market
// orders carry side, product and size; limit orders additionally require a
// price. Size and price are arbitrary-precision decimal strings so that
// financial quantities never round through binary floating point.
type OrderSpec struct {
	Type      OrderType
	Side      Side
	ProductID string
	Price     string
	Size      string
}

// MarketOrder builds a market order spec.
func MarketOrder(side Side, productID, size string) OrderSpec {
	return OrderSpec{Type: Market, Side: side, ProductID: productID, Size: size}
}

// LimitOrder builds a limit order spec.
func LimitOrder(side Side, productID, price, size string) OrderSpec {
	return OrderSpec{Type: Limit, Side: side, ProductID: productID, Price: price, Size: size}
}

// Validate checks the numeric fields of the spec before any wire body is
// built. It returns a KindInvalidRequest error for an unparseable size, a
// limit order without a price, or an unparseable price.
func (s OrderSpec) Validate() error {
	switch s.Type {
	case Market, Limit:
	default:
		return NewInvalidRequest("unknown order type")
	}
	if s.Side != Buy && s.Side != Sell {
		return NewInvalidRequest("invalid side")
	}
	if _, err := decimal.NewFromString(s.Size); err != nil {
		return NewInvalidRequest("invalid size")
	}
	if s.Type == Limit {
		if s.Price == "" {
			return NewInvalidRequest("invalid price for limit order")
		}
		if _, err := decimal.NewFromString(s.Price); err != nil {
			return NewInvalidRequest("invalid price")
		}
	}
	return nil
}
