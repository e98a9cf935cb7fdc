// Package normalize maps broker payloads with aliased, type-ambiguous
// fields into stable display records. Every normalizer is total: a field
// that cannot be coerced degrades to its zero value instead of failing the
// record, since the output is display-only.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// field is one entry of a resolution table: an ordered list of candidate
// source keys and a default used before coercion.
type field struct {
	keys []string
	def  string
}

// Position field resolution order, per the broker wire format. The broker
// reports AlgoLab-style names (code, totalstock, maliyet, unitprice,
// profit) while other platform endpoints use the camelCase aliases.
var (
	posSymbol   = field{keys: []string{"code", "symbol"}, def: ""}
	posQuantity = field{keys: []string{"totalstock", "quantity"}, def: "0"}
	posAvgPrice = field{keys: []string{"maliyet", "cost", "averagePrice"}, def: "0"}
	posLastPx   = field{keys: []string{"unitprice", "lastPrice"}, def: "0"}
	posProfit   = field{keys: []string{"profit", "profitLoss"}, def: "0"}
	posPnlPct   = field{keys: []string{"profitLossPercent"}, def: ""}
)

// Tick and trade message field resolution.
var (
	msgSymbol    = field{keys: []string{"symbol", "code"}, def: ""}
	tickPrice    = field{keys: []string{"lastPrice", "price"}, def: "0"}
	tickChange   = field{keys: []string{"changePercent", "change"}, def: "0"}
	tickVolume   = field{keys: []string{"totalVolume", "volume"}, def: "0"}
	tickBid      = field{keys: []string{"bidPrice", "bid"}, def: "0"}
	tickAsk      = field{keys: []string{"askPrice", "ask"}, def: "0"}
	tradePrice   = field{keys: []string{"price", "lastPrice"}, def: "0"}
	tradeQty     = field{keys: []string{"quantity", "qty"}, def: "0"}
	tradeSide    = field{keys: []string{"side", "direction"}, def: ""}
)

// Position is the normalized open-position record.
type Position struct {
	Symbol            string
	Quantity          int64
	AveragePrice      float64
	LastPrice         float64
	ProfitLoss        float64
	ProfitLossPercent float64
}

// Tick is one normalized tick message.
type Tick struct {
	ReceivedAt    time.Time
	Symbol        string
	Price         float64
	ChangePercent float64
	Volume        int64
	Bid           float64
	Ask           float64
}

// Trade is one normalized executed-trade message.
type Trade struct {
	ReceivedAt time.Time
	Symbol     string
	Price      float64
	Quantity   int64
	Side       string // BUY, SELL or empty when unknown
}

// resolve walks the candidate keys in order and returns the first present
// non-nil value rendered as a string, else the default.
func (f field) resolve(raw map[string]any) string {
	for _, key := range f.keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(val)
		default:
			return fmt.Sprintf("%v", val)
		}
	}
	return f.def
}

// present reports whether any candidate key carries a non-nil value,
// regardless of whether it coerces.
func (f field) present(raw map[string]any) bool {
	for _, key := range f.keys {
		if v, ok := raw[key]; ok && v != nil {
			return true
		}
	}
	return false
}

func (f field) float(raw map[string]any) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.resolve(raw)), 64)
	if err != nil {
		return 0
	}
	return v
}

// integer coerces through float so values like "365.000000" survive.
func (f field) integer(raw map[string]any) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.resolve(raw)), 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// isSummaryRow identifies synthetic aggregate rows the broker appends to
// position lists: a sentinel symbol or an explicit total marker.
func isSummaryRow(raw map[string]any) bool {
	if posSymbol.resolve(raw) == "-" {
		return true
	}
	if t, ok := raw["type"].(string); ok && t == "0" {
		return true
	}
	if e, ok := raw["explanation"].(string); ok && e == "total" {
		return true
	}
	return false
}

// PositionFrom normalizes a single raw position row.
func PositionFrom(raw map[string]any) Position {
	p := Position{
		Symbol:       posSymbol.resolve(raw),
		Quantity:     posQuantity.integer(raw),
		AveragePrice: posAvgPrice.float(raw),
		LastPrice:    posLastPx.float(raw),
		ProfitLoss:   posProfit.float(raw),
	}

	// The percentage is derived only when the broker omits the field
	// entirely; a present but empty or unparseable value stays 0.
	if posPnlPct.present(raw) {
		p.ProfitLossPercent = posPnlPct.float(raw)
	} else if p.AveragePrice > 0 && p.Quantity > 0 {
		p.ProfitLossPercent = p.ProfitLoss / (p.AveragePrice * float64(p.Quantity)) * 100
	}

	return p
}

// Positions normalizes a raw position list, dropping summary rows.
func Positions(rows []map[string]any) []Position {
	out := make([]Position, 0, len(rows))
	for _, raw := range rows {
		if isSummaryRow(raw) {
			continue
		}
		out = append(out, PositionFrom(raw))
	}
	return out
}

// PositionsFromResponse unwraps the broker positions payload, which may be
// a bare list, a content-wrapped list, or a content object holding a
// "positions" list.
func PositionsFromResponse(raw json.RawMessage) []Position {
	return Positions(rowsFromResponse(raw, "positions"))
}

func rowsFromResponse(raw json.RawMessage, listKey string) []map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil
	}
	if content, ok := wrapper["content"]; ok {
		return rowsFromResponse(content, listKey)
	}
	if list, ok := wrapper[listKey]; ok {
		return rowsFromResponse(list, listKey)
	}
	return nil
}

// UnwrapContent strips the platform's response envelope when present.
func UnwrapContent(raw json.RawMessage) json.RawMessage {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		if content, ok := wrapper["content"]; ok {
			return content
		}
	}
	return raw
}

// TickFrom normalizes one polled message envelope into a Tick.
// fallbackSymbol fills in when the payload omits the symbol.
func TickFrom(receivedAt string, data map[string]any, fallbackSymbol string) Tick {
	t := Tick{
		ReceivedAt:    parseTimestamp(receivedAt),
		Symbol:        msgSymbol.resolve(data),
		Price:         tickPrice.float(data),
		ChangePercent: tickChange.float(data),
		Volume:        tickVolume.integer(data),
		Bid:           tickBid.float(data),
		Ask:           tickAsk.float(data),
	}
	if t.Symbol == "" {
		t.Symbol = fallbackSymbol
	}
	return t
}

// TradeFrom normalizes one polled message envelope into a Trade.
func TradeFrom(receivedAt string, data map[string]any, fallbackSymbol string) Trade {
	t := Trade{
		ReceivedAt: parseTimestamp(receivedAt),
		Symbol:     msgSymbol.resolve(data),
		Price:      tradePrice.float(data),
		Quantity:   tradeQty.integer(data),
		Side:       normalizeSide(tradeSide.resolve(data)),
	}
	if t.Symbol == "" {
		t.Symbol = fallbackSymbol
	}
	return t
}

// StringField resolves the first present key in raw as a string.
func StringField(raw map[string]any, keys ...string) string {
	return field{keys: keys}.resolve(raw)
}

// FloatField resolves the first present key in raw as a float, zero when
// absent or malformed.
func FloatField(raw map[string]any, keys ...string) float64 {
	return field{keys: keys, def: "0"}.float(raw)
}

// IntField resolves the first present key in raw as an integer, zero when
// absent or malformed.
func IntField(raw map[string]any, keys ...string) int64 {
	return field{keys: keys, def: "0"}.integer(raw)
}

func normalizeSide(side string) string {
	switch strings.ToUpper(strings.TrimSpace(side)) {
	case "BUY":
		return "BUY"
	case "SELL":
		return "SELL"
	default:
		return ""
	}
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
