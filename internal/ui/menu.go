package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bist-cli/internal/api"
	"bist-cli/internal/auth"
	"bist-cli/internal/broker"
	"bist-cli/internal/config"
	"bist-cli/internal/logger"
	"bist-cli/internal/normalize"
	"bist-cli/internal/stream"
	"bist-cli/internal/watchlist"
)

const clearScreen = "\033[H\033[2J"

// App is the interactive menu controller. Every dependency is injected;
// the app owns no global state.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	client     *api.Client
	auth       *auth.Manager
	broker     *broker.Service
	watchlists *watchlist.Store
	prompt     *Prompter
	out        io.Writer
	viewDelay  time.Duration
}

// NewApp wires the controller.
func NewApp(cfg *config.Config, log *logger.Logger, client *api.Client, authMgr *auth.Manager,
	brokerSvc *broker.Service, watchlists *watchlist.Store, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		client:     client,
		auth:       authMgr,
		broker:     brokerSvc,
		watchlists: watchlists,
		prompt:     NewPrompter(in, out),
		out:        out,
		viewDelay:  600 * time.Millisecond,
	}
}

// Run is the main menu loop. It returns when the user quits or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, titleStyle.Render("BIST Trading Terminal"))
	if a.client.TestConnection(ctx) {
		fmt.Fprintln(a.out, successStyle.Render("platform reachable: "+a.client.BaseURL()))
	} else {
		fmt.Fprintln(a.out, warnStyle.Render("platform unreachable: "+a.client.BaseURL()))
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, headerStyle.Render("Main Menu"))
		fmt.Fprintln(a.out, a.sessionLine())
		fmt.Fprintln(a.out, ` 1) Login
 2) Broker authentication
 3) Broker account
 4) Market data
 5) Orders
 6) Watchlists
 7) Profile
 8) Settings
 9) Logout
 0) Quit`)

		switch a.prompt.Ask("choice") {
		case "1":
			a.loginView(ctx)
		case "2":
			a.brokerAuthView(ctx)
		case "3":
			a.accountView(ctx)
		case "4":
			a.marketMenu(ctx)
		case "5":
			a.ordersMenu(ctx)
		case "6":
			a.watchlistMenu(ctx)
		case "7":
			a.profileView(ctx)
		case "8":
			a.settingsMenu(ctx)
		case "9":
			a.logoutView(ctx)
		case "0", "q", "quit", "exit":
			return nil
		default:
			fmt.Fprintln(a.out, dimStyle.Render("unknown choice"))
		}
	}
}

func (a *App) sessionLine() string {
	if !a.auth.IsLoggedIn() {
		return dimStyle.Render("not logged in")
	}
	user := a.auth.CurrentUser()
	name := "?"
	if user != nil {
		name = user.Username
	}
	line := fmt.Sprintf("logged in as %s | broker: %s", name, a.auth.State())
	return infoStyle.Render(line)
}

// --- authentication views ---

func (a *App) loginView(ctx context.Context) {
	username := a.prompt.Ask("username")
	password := a.prompt.AskSecret("password")

	profile, err := a.auth.Login(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		fmt.Fprintln(a.out, errorStyle.Render("invalid username or password"))
	case errors.Is(err, auth.ErrAccountLocked):
		fmt.Fprintln(a.out, errorStyle.Render("account is locked, contact support"))
	case err != nil:
		a.fail(ctx, "login failed", err)
	default:
		fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("welcome, %s %s", profile.FirstName, profile.LastName)))
	}
}

func (a *App) brokerAuthView(ctx context.Context) {
	if !a.auth.IsLoggedIn() {
		fmt.Fprintln(a.out, warnStyle.Render("platform login required first"))
		return
	}
	if a.auth.IsBrokerAuthenticated() {
		fmt.Fprintln(a.out, infoStyle.Render("broker session already active"))
		RenderBrokerStatus(a.out, a.auth.CheckStatus(ctx))
		return
	}

	username := a.prompt.Ask("broker username")
	password := a.prompt.AskSecret("broker password")

	result, err := a.auth.BrokerLogin(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrBadBrokerCredentials):
		fmt.Fprintln(a.out, errorStyle.Render("broker rejected the credentials"))
		return
	case errors.Is(err, auth.ErrPlatformSessionStale):
		fmt.Fprintln(a.out, errorStyle.Render("platform session expired, log in again"))
		return
	case errors.Is(err, auth.ErrBrokerUnavailable):
		fmt.Fprintln(a.out, errorStyle.Render("broker gateway unavailable, try later"))
		return
	case err != nil:
		a.fail(ctx, "broker login failed", err)
		return
	}

	if !result.OTPRequired {
		fmt.Fprintln(a.out, successStyle.Render("broker authenticated"))
		return
	}

	fmt.Fprintln(a.out, infoStyle.Render("SMS code sent to your registered phone"))
	for {
		code := a.prompt.Ask("OTP code")
		if code == "" {
			fmt.Fprintln(a.out, warnStyle.Render("verification abandoned"))
			return
		}

		verified, err := a.auth.VerifyOTP(ctx, code)
		switch {
		case errors.Is(err, auth.ErrOTPTooShort):
			fmt.Fprintln(a.out, warnStyle.Render("code too short, try again"))
			continue
		case err != nil:
			fmt.Fprintln(a.out, errorStyle.Render("verification failed: "+err.Error()))
			continue
		}

		fmt.Fprintln(a.out, successStyle.Render("broker authenticated"))
		if verified.SessionExpiresAt != "" {
			fmt.Fprintln(a.out, dimStyle.Render("session valid until "+FormatDateTime(verified.SessionExpiresAt)))
		}
		return
	}
}

func (a *App) logoutView(ctx context.Context) {
	if !a.auth.IsLoggedIn() && !a.client.IsAuthenticated() {
		fmt.Fprintln(a.out, dimStyle.Render("not logged in"))
		return
	}
	if !a.prompt.Confirm("log out and clear stored tokens?") {
		return
	}
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, successStyle.Render("logged out"))
}

func (a *App) profileView(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	profile, err := a.auth.Profile(ctx)
	if err != nil {
		a.fail(ctx, "fetching profile failed", err)
		return
	}
	RenderProfile(a.out, profile)
}

// --- broker views ---

func (a *App) requireLogin() bool {
	if a.auth.IsLoggedIn() || a.client.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(a.out, warnStyle.Render("platform login required"))
	return false
}

func (a *App) requireBroker(ctx context.Context) bool {
	if !a.requireLogin() {
		return false
	}
	if a.auth.IsBrokerAuthenticated() {
		return true
	}
	// Local state may be stale after a restart; ask the backend.
	if a.auth.CheckStatus(ctx).Authenticated {
		return true
	}
	fmt.Fprintln(a.out, warnStyle.Render("broker authentication required"))
	return false
}

func (a *App) accountView(ctx context.Context) {
	if !a.requireBroker(ctx) {
		return
	}

	account, err := a.broker.Account(ctx)
	if err != nil {
		a.fail(ctx, "fetching account failed", err)
		return
	}
	RenderAccount(a.out, account, a.cfg.Display.Currency)

	positions, err := a.broker.Positions(ctx)
	if err != nil {
		a.fail(ctx, "fetching positions failed", err)
		return
	}
	fmt.Fprintln(a.out)
	RenderPositions(a.out, positions, a.cfg.Display.Currency)
}

// --- order views ---

func (a *App) ordersMenu(ctx context.Context) {
	if !a.requireBroker(ctx) {
		return
	}
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, headerStyle.Render("Orders"))
		fmt.Fprintln(a.out, ` 1) Order history
 2) Place order
 3) Cancel order
 4) Modify order
 0) Back`)

		switch a.prompt.Ask("choice") {
		case "1":
			a.orderHistoryView(ctx)
		case "2":
			a.placeOrderView(ctx)
		case "3":
			a.cancelOrderView(ctx)
		case "4":
			a.modifyOrderView(ctx)
		case "0", "":
			return
		default:
			fmt.Fprintln(a.out, dimStyle.Render("unknown choice"))
		}
	}
}

func (a *App) orderHistoryView(ctx context.Context) {
	orders, err := a.broker.OrderHistory(ctx)
	if err != nil {
		a.fail(ctx, "fetching orders failed", err)
		return
	}
	RenderOrders(a.out, orders, a.cfg.Display.Currency)
}

func (a *App) placeOrderView(ctx context.Context) {
	symbol := watchlist.NormalizeSymbol(a.prompt.Ask("symbol"))
	if symbol == "" {
		return
	}
	side := a.prompt.Choose("side", []string{"BUY", "SELL"}, "BUY")
	orderType := a.prompt.Choose("order type", []string{"LIMIT", "MARKET"}, "LIMIT")

	quantity, ok := a.askQuantity("quantity")
	if !ok {
		return
	}

	var price float64
	if orderType == "LIMIT" {
		p, ok := a.askPrice("limit price")
		if !ok {
			return
		}
		price = p
	}

	req := broker.OrderRequest{
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		OrderType: orderType,
	}

	summary := fmt.Sprintf("%s %d %s %s", side, quantity, symbol, orderType)
	if orderType == "LIMIT" {
		summary += " @ " + FormatCurrency(price, a.cfg.Display.Currency)
	}
	if !a.prompt.Confirm("place " + summary + "?") {
		fmt.Fprintln(a.out, dimStyle.Render("order cancelled"))
		return
	}

	result, err := a.broker.PlaceOrder(ctx, req)
	if err != nil {
		a.fail(ctx, "order placement failed", err)
		return
	}
	a.renderOrderResult(result, "order accepted")
}

func (a *App) cancelOrderView(ctx context.Context) {
	orderID := strings.TrimSpace(a.prompt.Ask("order ID"))
	if orderID == "" {
		return
	}
	if !a.prompt.Confirm("cancel order " + orderID + "?") {
		return
	}
	result, err := a.broker.CancelOrder(ctx, orderID)
	if err != nil {
		a.fail(ctx, "order cancel failed", err)
		return
	}
	a.renderOrderResult(result, "cancel accepted")
}

func (a *App) modifyOrderView(ctx context.Context) {
	orderID := strings.TrimSpace(a.prompt.Ask("order ID"))
	if orderID == "" {
		return
	}

	var mod broker.OrderModify
	if raw := a.prompt.Ask("new price (empty keeps current)"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price <= 0 {
			fmt.Fprintln(a.out, errorStyle.Render("invalid price"))
			return
		}
		mod.Price = price
	}
	if raw := a.prompt.Ask("new quantity (empty keeps current)"); raw != "" {
		quantity, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || quantity <= 0 {
			fmt.Fprintln(a.out, errorStyle.Render("invalid quantity"))
			return
		}
		mod.Quantity = quantity
	}
	if mod.Price == 0 && mod.Quantity == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("nothing to modify"))
		return
	}

	result, err := a.broker.ModifyOrder(ctx, orderID, mod)
	if err != nil {
		a.fail(ctx, "order modify failed", err)
		return
	}
	a.renderOrderResult(result, "modification accepted")
}

func (a *App) renderOrderResult(result *broker.OrderResult, okMsg string) {
	if result.Success {
		msg := okMsg
		if result.OrderID != "" {
			msg += " (order " + result.OrderID + ")"
		}
		fmt.Fprintln(a.out, successStyle.Render(msg))
	} else {
		fmt.Fprintln(a.out, errorStyle.Render("rejected: "+orDash(result.Message)))
	}
}

func (a *App) askQuantity(label string) (int64, bool) {
	raw := a.prompt.Ask(label)
	quantity, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || quantity <= 0 {
		fmt.Fprintln(a.out, errorStyle.Render("invalid quantity"))
		return 0, false
	}
	return quantity, true
}

func (a *App) askPrice(label string) (float64, bool) {
	raw := a.prompt.Ask(label)
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price <= 0 {
		fmt.Fprintln(a.out, errorStyle.Render("invalid price"))
		return 0, false
	}
	return price, true
}

// --- market data views ---

func (a *App) marketMenu(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, headerStyle.Render("Market Data"))
		fmt.Fprintln(a.out, ` 1) Live ticks
 2) Live trades
 3) Watchlist ticks
 4) Order book
 5) Websocket status
 0) Back`)

		switch a.prompt.Ask("choice") {
		case "1":
			a.liveTicksView(ctx)
		case "2":
			a.liveTradesView(ctx)
		case "3":
			a.watchlistTicksView(ctx)
		case "4":
			a.orderBookView(ctx)
		case "5":
			a.websocketStatusView(ctx)
		case "0", "":
			return
		default:
			fmt.Fprintln(a.out, dimStyle.Render("unknown choice"))
		}
	}
}

func (a *App) askSymbol() string {
	symbol := watchlist.NormalizeSymbol(a.prompt.Ask("symbol"))
	if symbol == "" {
		fmt.Fprintln(a.out, dimStyle.Render("no symbol given"))
	}
	return symbol
}

func (a *App) streamConfig() stream.Config {
	return stream.Config{
		Interval:     time.Duration(a.cfg.Stream.PollSeconds) * time.Second,
		ErrorBackoff: time.Duration(a.cfg.Stream.ErrorBackoffSeconds) * time.Second,
		Window:       a.cfg.Stream.WindowSize,
	}
}

// liveView runs until the user presses Enter or ctx is cancelled.
func (a *App) liveView(ctx context.Context, run func(ctx context.Context) error) {
	fmt.Fprintln(a.out, dimStyle.Render("press Enter to stop"))
	time.Sleep(a.viewDelay)

	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = run(viewCtx)
	}()

	// The reader signals over a channel so the view also ends when ctx is
	// cancelled mid-stream instead of waiting for a keypress.
	enter := make(chan struct{})
	go func() {
		_, _ = a.prompt.in.ReadString('\n')
		close(enter)
	}()

	select {
	case <-enter:
		cancel()
		<-done
	case <-done:
		// ctx is cancelled here. The read stays pending, but every menu
		// checks ctx before prompting again, so it cannot consume a line
		// meant for a later prompt.
	}
	fmt.Fprintln(a.out, dimStyle.Render("stream stopped"))
}

func (a *App) liveTicksView(ctx context.Context) {
	symbol := a.askSymbol()
	if symbol == "" {
		return
	}
	a.subscribeQuiet(ctx, symbol, "ticks")

	ticks := stream.New(a.streamConfig(), a.broker.RecentTicks, a.log)
	a.liveView(ctx, func(viewCtx context.Context) error {
		return ticks.Run(viewCtx, symbol, func(batch stream.Batch[normalize.Tick]) {
			fmt.Fprint(a.out, clearScreen)
			RenderTicks(a.out, batch.Symbol, batch.Items, a.cfg.Display.Currency, batch.ConsecutiveEmpty)
		})
	})
}

func (a *App) liveTradesView(ctx context.Context) {
	symbol := a.askSymbol()
	if symbol == "" {
		return
	}
	a.subscribeQuiet(ctx, symbol, "trades")

	trades := stream.New(a.streamConfig(), a.broker.RecentTrades, a.log)
	a.liveView(ctx, func(viewCtx context.Context) error {
		return trades.Run(viewCtx, symbol, func(batch stream.Batch[normalize.Trade]) {
			fmt.Fprint(a.out, clearScreen)
			RenderTrades(a.out, batch.Symbol, batch.Items, a.cfg.Display.Currency, batch.ConsecutiveEmpty)
		})
	})
}

// watchlistTicksView streams the latest tick per symbol of a watchlist.
// Symbols are fetched sequentially each poll; the frame redraws whole.
func (a *App) watchlistTicksView(ctx context.Context) {
	list := a.prompt.AskDefault("list", watchlist.DefaultList)
	symbols := a.watchlists.Symbols(list)
	if len(symbols) == 0 {
		fmt.Fprintln(a.out, dimStyle.Render("watchlist is empty"))
		return
	}
	for _, symbol := range symbols {
		a.subscribeQuiet(ctx, symbol, "ticks")
	}

	cfg := a.streamConfig()
	cfg.Window = 1 // one row per symbol
	ticks := stream.New(cfg, a.broker.RecentTicks, a.log)

	latest := make(map[string]stream.Batch[normalize.Tick], len(symbols))
	a.liveView(ctx, func(viewCtx context.Context) error {
		return ticks.RunMulti(viewCtx, symbols, func(batch stream.Batch[normalize.Tick]) {
			latest[batch.Symbol] = batch

			// Redraw the whole frame once per cycle, after the last symbol.
			if batch.Symbol != symbols[len(symbols)-1] {
				return
			}
			fmt.Fprint(a.out, clearScreen)
			fmt.Fprintln(a.out, titleStyle.Render(list+" — watchlist ticks"))
			fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("%-10s %12s %10s %14s",
				"Symbol", "Price", "Change", "Volume")))
			for _, symbol := range symbols {
				b, ok := latest[symbol]
				if !ok || len(b.Items) == 0 {
					fmt.Fprintf(a.out, "%s %s\n",
						symbolStyle.Render(fmt.Sprintf("%-10s", symbol)),
						dimStyle.Render("waiting for data..."))
					continue
				}
				tick := b.Items[len(b.Items)-1]
				fmt.Fprintf(a.out, "%s %12s %s %14s\n",
					symbolStyle.Render(fmt.Sprintf("%-10s", symbol)),
					FormatCurrency(tick.Price, a.cfg.Display.Currency),
					signStyle(tick.ChangePercent).Render(fmt.Sprintf("%10s", FormatPercent(tick.ChangePercent))),
					FormatInt(tick.Volume))
			}
		})
	})
}

// subscribeQuiet asks the backend to forward the symbol's feed. Failure is
// logged but never blocks the view: the backend may already be subscribed.
func (a *App) subscribeQuiet(ctx context.Context, symbol, channel string) {
	if err := a.broker.Subscribe(ctx, symbol, channel); err != nil {
		a.log.Debug(ctx, "subscribe failed", "symbol", symbol, "channel", channel, "error", err)
	}
}

func (a *App) orderBookView(ctx context.Context) {
	symbol := a.askSymbol()
	if symbol == "" {
		return
	}
	book, err := a.broker.OrderBook(ctx, symbol)
	if err != nil {
		a.fail(ctx, "fetching order book failed", err)
		return
	}
	RenderOrderBook(a.out, book, a.cfg.Display.Currency)
}

func (a *App) websocketStatusView(ctx context.Context) {
	status, err := a.broker.WebsocketStatus(ctx)
	if err != nil {
		a.fail(ctx, "fetching websocket status failed", err)
		return
	}
	RenderWebsocketStatus(a.out, status)
}

// --- watchlist views ---

func (a *App) watchlistMenu(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(a.out)
		a.renderAllWatchlists()
		fmt.Fprintln(a.out, ` 1) Add symbol
 2) Remove symbol
 3) Create list
 4) Delete list
 5) Rename list
 0) Back`)

		switch a.prompt.Ask("choice") {
		case "1":
			list := a.prompt.AskDefault("list", watchlist.DefaultList)
			symbol := a.askSymbol()
			if symbol == "" {
				continue
			}
			a.watchlistResult(a.watchlists.Add(list, symbol), symbol+" added to "+list)
		case "2":
			list := a.prompt.AskDefault("list", watchlist.DefaultList)
			symbol := a.askSymbol()
			if symbol == "" {
				continue
			}
			a.watchlistResult(a.watchlists.Remove(list, symbol), symbol+" removed from "+list)
		case "3":
			name := strings.TrimSpace(a.prompt.Ask("new list name"))
			if name == "" {
				continue
			}
			a.watchlistResult(a.watchlists.Create(name), "created "+name)
		case "4":
			name := strings.TrimSpace(a.prompt.Ask("list to delete"))
			if name == "" {
				continue
			}
			if !a.prompt.Confirm("delete list " + name + "?") {
				continue
			}
			a.watchlistResult(a.watchlists.Delete(name), "deleted "+name)
		case "5":
			oldName := strings.TrimSpace(a.prompt.Ask("current name"))
			newName := strings.TrimSpace(a.prompt.Ask("new name"))
			if oldName == "" || newName == "" {
				continue
			}
			a.watchlistResult(a.watchlists.Rename(oldName, newName), "renamed to "+newName)
		case "0", "":
			return
		default:
			fmt.Fprintln(a.out, dimStyle.Render("unknown choice"))
		}
	}
}

func (a *App) renderAllWatchlists() {
	order := a.watchlists.Lists()
	lists := make(map[string][]string, len(order))
	for _, name := range order {
		lists[name] = a.watchlists.Symbols(name)
	}
	RenderWatchlists(a.out, lists, order)
}

func (a *App) watchlistResult(err error, okMsg string) {
	switch {
	case err == nil:
		fmt.Fprintln(a.out, successStyle.Render(okMsg))
	case errors.Is(err, watchlist.ErrDuplicateSymbol):
		fmt.Fprintln(a.out, warnStyle.Render("symbol is already on the list"))
	case errors.Is(err, watchlist.ErrSymbolNotFound):
		fmt.Fprintln(a.out, warnStyle.Render("symbol is not on the list"))
	case errors.Is(err, watchlist.ErrListNotFound):
		fmt.Fprintln(a.out, warnStyle.Render("no such list"))
	case errors.Is(err, watchlist.ErrListExists):
		fmt.Fprintln(a.out, warnStyle.Render("a list with that name already exists"))
	case errors.Is(err, watchlist.ErrReservedList):
		fmt.Fprintln(a.out, warnStyle.Render("the default list cannot be removed"))
	default:
		fmt.Fprintln(a.out, errorStyle.Render(err.Error()))
	}
}

// --- settings views ---

func (a *App) settingsMenu(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, headerStyle.Render("Settings"))
		fmt.Fprintln(a.out, ` 1) Connection test
 2) Session info
 3) Broker status
 4) Clear stored tokens
 0) Back`)

		switch a.prompt.Ask("choice") {
		case "1":
			if a.client.TestConnection(ctx) {
				fmt.Fprintln(a.out, successStyle.Render("platform healthy: "+a.client.BaseURL()))
			} else {
				fmt.Fprintln(a.out, errorStyle.Render("platform unreachable: "+a.client.BaseURL()))
			}
		case "2":
			a.sessionInfoView()
		case "3":
			RenderBrokerStatus(a.out, a.auth.CheckStatus(ctx))
		case "4":
			if a.prompt.Confirm("clear stored tokens and local session?") {
				a.auth.Logout(ctx)
				fmt.Fprintln(a.out, successStyle.Render("stored credentials cleared"))
			}
		case "0", "":
			return
		default:
			fmt.Fprintln(a.out, dimStyle.Render("unknown choice"))
		}
	}
}

func (a *App) sessionInfoView() {
	lines := []string{
		titleStyle.Render("Session"),
		"",
		fmt.Sprintf("Base URL:      %s", a.client.BaseURL()),
		fmt.Sprintf("Authenticated: %t", a.client.IsAuthenticated()),
		fmt.Sprintf("Broker state:  %s", a.auth.State()),
		fmt.Sprintf("Poll interval: %ds", a.cfg.Stream.PollSeconds),
		fmt.Sprintf("Keyring:       %t", a.cfg.Tokens.UseKeyring),
	}
	if user := a.auth.CurrentUser(); user != nil {
		lines = append(lines, fmt.Sprintf("User:          %s", user.Username))
	}
	fmt.Fprintln(a.out, panelStyle.Render(strings.Join(lines, "\n")))
}

// fail reports an operation error, translating typed platform errors into
// readable messages.
func (a *App) fail(ctx context.Context, prefix string, err error) {
	if apiErr, ok := api.AsError(err); ok && apiErr.StatusCode == 401 {
		fmt.Fprintln(a.out, errorStyle.Render(prefix+": session expired, log in again"))
		return
	}
	a.log.ErrorWithErr(ctx, prefix, err)
	fmt.Fprintln(a.out, errorStyle.Render(prefix+": "+err.Error()))
}
