package ui

import (
	"fmt"
	"io"
	"strings"

	"bist-cli/internal/auth"
	"bist-cli/internal/broker"
	"bist-cli/internal/normalize"
)

// RenderAccount prints the broker account summary panel.
func RenderAccount(w io.Writer, account *broker.Account, currency string) {
	if account.Currency != "" {
		currency = account.Currency
	}
	lines := []string{
		titleStyle.Render("Broker Account"),
		"",
		fmt.Sprintf("Account:   %s", orDash(account.AccountNumber)),
		fmt.Sprintf("Customer:  %s", orDash(account.CustomerID)),
		fmt.Sprintf("Status:    %s", orDash(account.Status)),
		"",
		fmt.Sprintf("Total:     %s", FormatCurrency(account.TotalBalance, currency)),
		fmt.Sprintf("Available: %s", FormatCurrency(account.AvailableBalance, currency)),
		fmt.Sprintf("Blocked:   %s", FormatCurrency(account.BlockedBalance, currency)),
		fmt.Sprintf("Portfolio: %s", FormatCurrency(account.PortfolioValue, currency)),
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

// RenderPositions prints the open positions table with a total P&L line.
func RenderPositions(w io.Writer, positions []broker.Position, currency string) {
	if len(positions) == 0 {
		fmt.Fprintln(w, infoStyle.Render("no open positions"))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Open Positions"))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s %10s %12s %12s %14s %10s",
		"Symbol", "Qty", "Avg Price", "Last Price", "P&L", "P&L %")))

	var totalPnl float64
	for _, p := range positions {
		totalPnl += p.ProfitLoss
		pnlStyle := signStyle(p.ProfitLoss)
		fmt.Fprintf(w, "%s %10s %12s %12s %s %s\n",
			symbolStyle.Render(fmt.Sprintf("%-10s", p.Symbol)),
			FormatInt(p.Quantity),
			FormatCurrency(p.AveragePrice, currency),
			FormatCurrency(p.LastPrice, currency),
			pnlStyle.Render(fmt.Sprintf("%14s", FormatCurrency(p.ProfitLoss, currency))),
			pnlStyle.Render(fmt.Sprintf("%10s", FormatPercent(p.ProfitLossPercent))))
	}

	fmt.Fprintf(w, "\nTotal P&L: %s\n",
		signStyle(totalPnl).Render(FormatCurrency(totalPnl, currency)))
}

// RenderTicks prints a window of tick messages, most recent last.
func RenderTicks(w io.Writer, symbol string, ticks []normalize.Tick, currency string, waiting int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s — live ticks (last %d)", symbol, len(ticks))))
	if len(ticks) == 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("waiting for data... (%d empty polls)", waiting)))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-9s %-10s %12s %10s %14s %12s %12s",
		"Time", "Symbol", "Price", "Change", "Volume", "Bid", "Ask")))

	for _, t := range ticks {
		fmt.Fprintf(w, "%s %s %12s %s %14s %12s %12s\n",
			dimStyle.Render(fmt.Sprintf("%-9s", FormatTimestamp(t.ReceivedAt))),
			symbolStyle.Render(fmt.Sprintf("%-10s", t.Symbol)),
			FormatCurrency(t.Price, currency),
			signStyle(t.ChangePercent).Render(fmt.Sprintf("%10s", FormatPercent(t.ChangePercent))),
			FormatInt(t.Volume),
			FormatCurrency(t.Bid, currency),
			FormatCurrency(t.Ask, currency))
	}
}

// RenderTrades prints a window of executed trades, most recent last.
func RenderTrades(w io.Writer, symbol string, trades []normalize.Trade, currency string, waiting int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s — live trades (last %d)", symbol, len(trades))))
	if len(trades) == 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("waiting for trades... (%d empty polls)", waiting)))
		return
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-9s %-10s %12s %12s %-6s %15s",
		"Time", "Symbol", "Price", "Qty", "Side", "Amount")))

	for _, t := range trades {
		side := t.Side
		sideStyled := dimStyle.Render("-     ")
		switch side {
		case "BUY":
			sideStyled = gainStyle.Render("BUY   ")
		case "SELL":
			sideStyled = lossStyle.Render("SELL  ")
		}

		amount := t.Price * float64(t.Quantity)
		fmt.Fprintf(w, "%s %s %12s %12s %s %15s\n",
			dimStyle.Render(fmt.Sprintf("%-9s", FormatTimestamp(t.ReceivedAt))),
			symbolStyle.Render(fmt.Sprintf("%-10s", t.Symbol)),
			FormatCurrency(t.Price, currency),
			FormatInt(t.Quantity),
			sideStyled,
			FormatCurrency(amount, currency))
	}
}

// RenderOrderBook prints a ten-level depth snapshot with spread and mid.
func RenderOrderBook(w io.Writer, book *broker.OrderBook, currency string) {
	fmt.Fprintln(w, titleStyle.Render(book.Symbol+" — order book"))

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s | %-24s", "BIDS", "ASKS")))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%12s %6s %4s | %12s %6s %4s",
		"Price", "Qty", "Ords", "Price", "Qty", "Ords")))

	depth := len(book.Bids)
	if len(book.Asks) > depth {
		depth = len(book.Asks)
	}
	if depth > 10 {
		depth = 10
	}

	for i := 0; i < depth; i++ {
		bid, ask := "", ""
		if i < len(book.Bids) {
			l := book.Bids[i]
			bid = gainStyle.Render(fmt.Sprintf("%12s %6s %4s",
				FormatCurrency(l.Price, currency), FormatInt(l.Quantity), FormatInt(l.OrderCount)))
		} else {
			bid = fmt.Sprintf("%24s", "")
		}
		if i < len(book.Asks) {
			l := book.Asks[i]
			ask = lossStyle.Render(fmt.Sprintf("%12s %6s %4s",
				FormatCurrency(l.Price, currency), FormatInt(l.Quantity), FormatInt(l.OrderCount)))
		}
		fmt.Fprintf(w, "%s | %s\n", bid, ask)
	}

	if len(book.Bids) > 0 && len(book.Asks) > 0 {
		fmt.Fprintf(w, "\nSpread: %s   Mid: %s\n",
			FormatCurrency(book.Spread(), currency),
			FormatCurrency(book.MidPrice(), currency))
	}
}

// RenderOrders prints the order history table.
func RenderOrders(w io.Writer, orders []broker.Order, currency string) {
	if len(orders) == 0 {
		fmt.Fprintln(w, infoStyle.Render("no orders found"))
		return
	}

	fmt.Fprintln(w, titleStyle.Render("Order History"))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-14s %-10s %-6s %10s %12s %-12s %-20s",
		"Order ID", "Symbol", "Side", "Qty", "Price", "Status", "Created")))

	for _, o := range orders {
		sideStyled := dimStyle
		switch o.Side {
		case "BUY":
			sideStyled = gainStyle
		case "SELL":
			sideStyled = lossStyle
		}
		fmt.Fprintf(w, "%-14s %s %s %10s %12s %-12s %s\n",
			o.OrderID,
			symbolStyle.Render(fmt.Sprintf("%-10s", o.Symbol)),
			sideStyled.Render(fmt.Sprintf("%-6s", o.Side)),
			FormatInt(o.Quantity),
			FormatCurrency(o.Price, currency),
			o.Status,
			dimStyle.Render(FormatDateTime(o.CreatedAt)))
	}
}

// RenderProfile prints the user profile panel.
func RenderProfile(w io.Writer, profile *auth.UserProfile) {
	verified := func(ok bool) string {
		if ok {
			return successStyle.Render("yes")
		}
		return errorStyle.Render("no")
	}

	lines := []string{
		titleStyle.Render("User Profile"),
		"",
		fmt.Sprintf("Name:     %s %s", profile.FirstName, profile.LastName),
		fmt.Sprintf("Username: %s", orDash(profile.Username)),
		fmt.Sprintf("Email:    %s", orDash(profile.Email)),
		fmt.Sprintf("Phone:    %s", orDash(profile.PhoneNumber)),
		fmt.Sprintf("Role:     %s", orDash(profile.Role)),
		fmt.Sprintf("Status:   %s", orDash(profile.AccountStatus)),
		"",
		fmt.Sprintf("Email verified: %s   Phone verified: %s   KYC: %s",
			verified(profile.EmailVerified), verified(profile.PhoneVerified), verified(profile.KYCVerified)),
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

// RenderBrokerStatus prints the broker connection panel.
func RenderBrokerStatus(w io.Writer, status auth.BrokerStatus) {
	var lines []string
	if status.Authenticated {
		ws := "disconnected"
		if status.WebsocketConnected {
			ws = "connected"
		}
		lines = []string{
			successStyle.Render("broker connected"),
			"",
			fmt.Sprintf("User:      %s", orDash(status.Username)),
			fmt.Sprintf("Session:   %s", truncate(status.SessionID, 16)),
			fmt.Sprintf("Expires:   %s", FormatDateTime(status.ExpiresAt)),
			fmt.Sprintf("WebSocket: %s", ws),
		}
	} else {
		lines = []string{
			errorStyle.Render("broker not connected"),
			"",
			dimStyle.Render("authenticate from the main menu to enable broker views"),
		}
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

// RenderWebsocketStatus prints the backend websocket health panel.
func RenderWebsocketStatus(w io.Writer, status *broker.WebsocketStatus) {
	var lines []string
	if status.Connected {
		lines = []string{
			successStyle.Render("websocket connected"),
			"",
			fmt.Sprintf("URL:            %s", orDash(status.URL)),
			fmt.Sprintf("Authenticated:  %t", status.Authenticated),
			fmt.Sprintf("Last heartbeat: %s", FormatDateTime(status.LastHeartbeat)),
			fmt.Sprintf("Messages:       %s", FormatInt(status.MessageCount)),
		}
	} else {
		lines = []string{
			errorStyle.Render("websocket disconnected"),
			"",
			fmt.Sprintf("Status:     %s", orDash(status.Status)),
			fmt.Sprintf("Last error: %s", orDash(status.LastError)),
		}
	}
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

// RenderWatchlists prints every list with a symbol preview.
func RenderWatchlists(w io.Writer, lists map[string][]string, order []string) {
	fmt.Fprintln(w, titleStyle.Render("Watchlists"))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %8s  %s", "Name", "Symbols", "Preview")))

	for _, name := range order {
		symbols := lists[name]
		preview := strings.Join(symbols, ", ")
		if len(symbols) > 5 {
			preview = strings.Join(symbols[:5], ", ") + fmt.Sprintf(" ... (+%d)", len(symbols)-5)
		}
		if preview == "" {
			preview = dimStyle.Render("empty")
		}
		fmt.Fprintf(w, "%-16s %8d  %s\n", name, len(symbols), preview)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return orDash(s)
	}
	return s[:n] + "..."
}
