package strategy

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// tickerMessage is the wire shape of a ticker frame. Numeric quote fields
// arrive as decimal strings; trade_id is the one bare number.
type tickerMessage struct {
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
	Volume24h string `json:"volume_24h"`
	Volume30d string `json:"volume_30d"`
	TradeID   *int64 `json:"trade_id"`
	Side      string `json:"side"`
	LastSize  string `json:"last_size"`
}

// parseResult distinguishes frames that are simply not ticker updates from
// ticker frames that fail the strict schema.
type parseResult int

const (
	parseOK parseResult = iota

	// parseSkip: malformed JSON, or no string product_id, meaning some other
	// event type on the feed. Silently ignored.
	parseSkip

	// parseDrop: a ticker-shaped frame missing required fields or carrying
	// non-decimal values. The whole message is dropped; partial snapshots
	// are never applied.
	parseDrop
)

// parseTicker builds a full replacement snapshot from a text frame. The
// schema is strict: every required field must be present and parse as a
// decimal, or the message is dropped.
func parseTicker(data []byte) (ProductSnapshot, parseResult) {
	var msg tickerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ProductSnapshot{}, parseSkip
	}
	if msg.ProductID == "" {
		return ProductSnapshot{}, parseSkip
	}
	if msg.TradeID == nil || msg.Side == "" {
		return ProductSnapshot{}, parseDrop
	}

	fields := []string{
		msg.Price, msg.BestBid, msg.BestAsk,
		msg.High24h, msg.Low24h,
		msg.Volume24h, msg.Volume30d,
		msg.LastSize,
	}
	values := make([]decimal.Decimal, len(fields))
	for i, field := range fields {
		value, err := decimal.NewFromString(field)
		if err != nil {
			return ProductSnapshot{}, parseDrop
		}
		values[i] = value
	}

	return ProductSnapshot{
		ProductID: msg.ProductID,
		Price:     values[0],
		BestBid:   values[1],
		BestAsk:   values[2],
		High24h:   values[3],
		Low24h:    values[4],
		Volume24h: values[5],
		Volume30d: values[6],
		LastTrade: Trade{
			ID:    *msg.TradeID,
			Price: values[0],
			Side:  msg.Side,
			Size:  values[7],
		},
	}, parseOK
}
