package broker

import "bist-cli/internal/normalize"

// Account is the broker account summary.
type Account struct {
	AccountNumber    string  `json:"accountNumber"`
	CustomerID       string  `json:"customerId"`
	Status           string  `json:"status"`
	Currency         string  `json:"currency"`
	TotalBalance     float64 `json:"totalBalance"`
	AvailableBalance float64 `json:"availableBalance"`
	BlockedBalance   float64 `json:"blockedBalance"`
	PortfolioValue   float64 `json:"portfolioValue"`
}

// OrderRequest places a new order.
type OrderRequest struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"` // BUY or SELL
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
	OrderType string  `json:"orderType"` // LIMIT or MARKET
}

// OrderModify updates price and/or quantity of a resting order.
type OrderModify struct {
	Price    float64 `json:"price,omitempty"`
	Quantity int64   `json:"quantity,omitempty"`
}

// OrderResult is the platform's acknowledgement of an order operation.
type OrderResult struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Order is one row of the order history.
type Order struct {
	OrderID   string  `json:"orderId"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

// BookLevel is one price level of the order book.
type BookLevel struct {
	Price      float64
	Quantity   int64
	OrderCount int64
}

// OrderBook is a snapshot of resting orders for a symbol, best first.
type OrderBook struct {
	Symbol string
	Bids   []BookLevel
	Asks   []BookLevel
}

// Spread returns the best-ask/best-bid difference, zero when either side
// is empty.
func (b *OrderBook) Spread() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	return b.Asks[0].Price - b.Bids[0].Price
}

// MidPrice returns the midpoint of the best levels, zero when either side
// is empty.
func (b *OrderBook) MidPrice() float64 {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0
	}
	return (b.Asks[0].Price + b.Bids[0].Price) / 2
}

// WebsocketStatus reports the backend's upstream websocket connection.
type WebsocketStatus struct {
	Connected     bool   `json:"connected"`
	URL           string `json:"url"`
	Authenticated bool   `json:"authenticated"`
	LastHeartbeat string `json:"lastHeartbeat"`
	MessageCount  int64  `json:"messageCount"`
	Status        string `json:"status"`
	LastError     string `json:"lastError"`
}

// Positions re-exports the normalized record so UI callers only import
// this package for broker data.
type Position = normalize.Position
