package interfaces

// Wire-contract types for the exchange's REST endpoints. Decimal values are
// transmitted as strings per exchange convention to avoid precision loss;
// they are kept as strings here and parsed only where arithmetic is needed.

// Account describes a single currency account of the authenticated profile.
type Account struct {
	ID             string `json:"id"`
	Currency       string `json:"currency"`
	Balance        string `json:"balance"`
	Available      string `json:"available"`
	Hold           string `json:"hold"`
	ProfileID      string `json:"profile_id"`
	TradingEnabled bool   `json:"trading_enabled"`
}

// OrderResponse is the exchange's acknowledgement of a newly placed order.
type OrderResponse struct {
	ID            string `json:"id"`
	Price         string `json:"price,omitempty"`
	Size          string `json:"size"`
	ProductID     string `json:"product_id"`
	Side          string `json:"side"`
	STP           string `json:"stp"`
	Funds         string `json:"funds"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force,omitempty"`
	PostOnly      bool   `json:"post_only"`
	CreatedAt     string `json:"created_at"`
	FillFees      string `json:"fill_fees"`
	FilledSize    string `json:"filled_size"`
	ExecutedValue string `json:"executed_value"`
	Status        string `json:"status"`
	Settled       bool   `json:"settled"`
}

// OpenOrder describes an existing order as returned by the order query
// endpoints. Optional fields are empty strings when the exchange omits them.
type OpenOrder struct {
	ID             string `json:"id"`
	Price          string `json:"price,omitempty"`
	Size           string `json:"size,omitempty"`
	ProductID      string `json:"product_id"`
	ProfileID      string `json:"profile_id"`
	Side           string `json:"side"`
	Funds          string `json:"funds,omitempty"`
	SpecifiedFunds string `json:"specified_funds,omitempty"`
	STP            string `json:"stp,omitempty"`
	Type           string `json:"type"`
	TimeInForce    string `json:"time_in_force,omitempty"`
	PostOnly       bool   `json:"post_only"`
	CreatedAt      string `json:"created_at"`
	DoneAt         string `json:"done_at,omitempty"`
	DoneReason     string `json:"done_reason,omitempty"`
	FillFees       string `json:"fill_fees"`
	FilledSize     string `json:"filled_size"`
	ExecutedValue  string `json:"executed_value"`
	Status         string `json:"status"`
	Settled        bool   `json:"settled"`
}

// ConversionResponse is the exchange's acknowledgement of a currency
// conversion.
type ConversionResponse struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	From          string `json:"from"`
	To            string `json:"to"`
}
