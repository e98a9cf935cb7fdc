// Package broker exposes typed operations over the platform's broker REST
// surface: account, positions, orders, order book and the polled message
// endpoints backing the streaming views.
package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"bist-cli/internal/api"
	"bist-cli/internal/logger"
	"bist-cli/internal/normalize"
	"bist-cli/internal/trace"
)

// Service performs broker operations through the session client. Read
// calls are composed with the retry policy; order mutations are issued
// exactly once so a transient failure can never duplicate an order.
type Service struct {
	client *api.Client
	retry  *api.RetryPolicy
	log    *logger.Logger
}

// NewService wires a broker service.
func NewService(client *api.Client, retry *api.RetryPolicy, log *logger.Logger) *Service {
	return &Service{client: client, retry: retry, log: log}
}

func (s *Service) get(ctx context.Context, path string) (json.RawMessage, error) {
	return s.retry.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Get(ctx, path)
	})
}

// Account fetches the broker account summary, unwrapping the platform's
// content envelope.
func (s *Service) Account(ctx context.Context) (*Account, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Account")
	defer span.End()

	raw, err := s.get(ctx, "/api/v1/broker/account")
	if err != nil {
		return nil, err
	}

	var account Account
	if err := json.Unmarshal(normalize.UnwrapContent(raw), &account); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}
	return &account, nil
}

// Positions fetches and normalizes open positions. Summary rows are
// already filtered out of the result.
func (s *Service) Positions(ctx context.Context) ([]Position, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Positions")
	defer span.End()

	raw, err := s.get(ctx, "/api/v1/broker/positions")
	if err != nil {
		return nil, err
	}
	return normalize.PositionsFromResponse(raw), nil
}

// PlaceOrder submits a new order. Not retried.
func (s *Service) PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	s.log.Info(ctx, "placing order", "symbol", req.Symbol, "side", req.Side, "quantity", req.Quantity)

	raw, err := s.client.Post(ctx, "/api/v1/broker/orders", req)
	if err != nil {
		return nil, err
	}
	return orderResult(raw)
}

// CancelOrder cancels a resting order. Not retried.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.CancelOrder")
	defer span.End()

	s.log.Info(ctx, "cancelling order", "order_id", orderID)

	raw, err := s.client.Delete(ctx, "/api/v1/broker/orders/"+orderID)
	if err != nil {
		return nil, err
	}
	return orderResult(raw)
}

// ModifyOrder updates a resting order. Not retried.
func (s *Service) ModifyOrder(ctx context.Context, orderID string, mod OrderModify) (*OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ModifyOrder")
	defer span.End()

	s.log.Info(ctx, "modifying order", "order_id", orderID, "price", mod.Price, "quantity", mod.Quantity)

	raw, err := s.client.Put(ctx, "/api/v1/broker/orders/"+orderID, mod)
	if err != nil {
		return nil, err
	}
	return orderResult(raw)
}

func orderResult(raw json.RawMessage) (*OrderResult, error) {
	var result OrderResult
	if err := json.Unmarshal(normalize.UnwrapContent(raw), &result); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}
	return &result, nil
}

// OrderHistory fetches past orders.
func (s *Service) OrderHistory(ctx context.Context) ([]Order, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OrderHistory")
	defer span.End()

	raw, err := s.get(ctx, "/api/v1/broker/orders/history")
	if err != nil {
		return nil, err
	}

	content := normalize.UnwrapContent(raw)

	var orders []Order
	if err := json.Unmarshal(content, &orders); err == nil {
		return orders, nil
	}

	var wrapper struct {
		Orders []Order `json:"orders"`
	}
	if err := json.Unmarshal(content, &wrapper); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}
	return wrapper.Orders, nil
}

// OrderBook fetches a depth snapshot for symbol.
func (s *Service) OrderBook(ctx context.Context, symbol string) (*OrderBook, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OrderBook")
	defer span.End()

	raw, err := s.get(ctx, "/api/v1/broker/orderbook/"+symbol)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Bids []map[string]any `json:"bids"`
		Asks []map[string]any `json:"asks"`
	}
	if err := json.Unmarshal(normalize.UnwrapContent(raw), &payload); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}

	book := &OrderBook{Symbol: symbol}
	for _, level := range payload.Bids {
		book.Bids = append(book.Bids, bookLevel(level))
	}
	for _, level := range payload.Asks {
		book.Asks = append(book.Asks, bookLevel(level))
	}
	return book, nil
}

// bookLevel tolerates string-encoded numbers the same way positions do.
func bookLevel(raw map[string]any) BookLevel {
	return BookLevel{
		Price:      normalize.FloatField(raw, "price"),
		Quantity:   normalize.IntField(raw, "quantity"),
		OrderCount: normalize.IntField(raw, "orderCount"),
	}
}

// WebsocketStatus reports the backend's upstream websocket health.
func (s *Service) WebsocketStatus(ctx context.Context) (*WebsocketStatus, error) {
	raw, err := s.get(ctx, "/api/v1/broker/websocket/status")
	if err != nil {
		return nil, err
	}

	var status WebsocketStatus
	if err := json.Unmarshal(normalize.UnwrapContent(raw), &status); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}
	return &status, nil
}

// Subscribe asks the backend to subscribe its upstream websocket to a
// symbol channel before a streaming view starts polling.
func (s *Service) Subscribe(ctx context.Context, symbol, channel string) error {
	body := map[string]string{"symbol": symbol, "channel": channel}
	raw, err := s.client.Post(ctx, "/api/v1/broker/websocket/subscribe", body)
	if err != nil {
		return err
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return &api.Error{Message: "invalid response body"}
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "subscription rejected"
		}
		return fmt.Errorf("subscribing %s/%s: %s", symbol, channel, msg)
	}
	return nil
}

// messageEnvelope is the wire shape of one polled stream message.
type messageEnvelope struct {
	ReceivedAt string         `json:"receivedAt"`
	Data       map[string]any `json:"data"`
}

func (s *Service) recentMessages(ctx context.Context, kind, symbol string, limit int) ([]messageEnvelope, error) {
	path := fmt.Sprintf("/api/v1/broker/websocket/stream/%s/%s?limit=%d", kind, symbol, limit)
	raw, err := s.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Messages []messageEnvelope `json:"messages"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &api.Error{Message: "invalid response body"}
	}
	return resp.Messages, nil
}

// RecentTicks polls the latest tick messages for symbol, most recent last.
func (s *Service) RecentTicks(ctx context.Context, symbol string, limit int) ([]normalize.Tick, error) {
	messages, err := s.recentMessages(ctx, "ticks", symbol, limit)
	if err != nil {
		return nil, err
	}
	ticks := make([]normalize.Tick, 0, len(messages))
	for _, msg := range messages {
		ticks = append(ticks, normalize.TickFrom(msg.ReceivedAt, msg.Data, symbol))
	}
	return ticks, nil
}

// RecentTrades polls the latest executed trades for symbol.
func (s *Service) RecentTrades(ctx context.Context, symbol string, limit int) ([]normalize.Trade, error) {
	messages, err := s.recentMessages(ctx, "trades", symbol, limit)
	if err != nil {
		return nil, err
	}
	trades := make([]normalize.Trade, 0, len(messages))
	for _, msg := range messages {
		trades = append(trades, normalize.TradeFrom(msg.ReceivedAt, msg.Data, symbol))
	}
	return trades, nil
}
