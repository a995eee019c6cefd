package sim

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/internal/id"
	"github.com/shine15/iridium/journal"
	"github.com/shine15/iridium/market"
)

// Trader owns the simulated account: its order book, its trades and its
// balance. Strategies place orders through it; the simulation driver fills,
// triggers and cancels them.
type Trader struct {
	params  *Parameters
	data    *MarketData
	journal journal.Journal

	// orders and trades are append-only, in creation order. Netting
	// consumes trades FIFO from the front of the open set.
	orders []*Order
	trades []*Trade
}

func NewTrader(params *Parameters, data *MarketData, j journal.Journal) *Trader {
	if j == nil {
		j = journal.Discard{}
	}
	return &Trader{params: params, data: data, journal: j}
}

func (t *Trader) Balance() float64 { return t.params.Balance }

// Orders returns every order created during the run, in creation order.
func (t *Trader) Orders() []*Order { return t.orders }

// Trades returns every trade opened during the run, in creation order.
func (t *Trader) Trades() []*Trade { return t.trades }

// PendingOrders returns the live order book in creation order.
func (t *Trader) PendingOrders() []*Order {
	var pending []*Order
	for _, o := range t.orders {
		if o.State == OrderPending {
			pending = append(pending, o)
		}
	}
	return pending
}

// OpenTrades returns the open positions in creation order.
func (t *Trader) OpenTrades() []*Trade {
	var open []*Trade
	for _, tr := range t.trades {
		if tr.State == TradeOpen {
			open = append(open, tr)
		}
	}
	return open
}

func (t *Trader) openTradeByID(tradeID string) *Trade {
	for _, tr := range t.trades {
		if tr.ID == tradeID && tr.State == TradeOpen {
			return tr
		}
	}
	return nil
}

// MarketOrderSpec is the strategy-facing request for a new market order.
// The optional exit levels spawn linked exit orders when the order fills.
type MarketOrderSpec struct {
	Instrument string
	Units      float64
	// Price is the market price the strategy observed; fills execute here.
	Price float64

	TakeProfit       *float64
	StopLoss         *float64
	TrailingDistance *float64

	TimeInForce TimeInForce
	GTDTime     time.Time
}

// CreateMarketOrder places a pending market order. The instrument must be
// one of the run's instruments, present in the tradable catalog, and the
// unit count non-zero.
func (t *Trader) CreateMarketOrder(spec MarketOrderSpec, at time.Time) (*Order, error) {
	if _, err := market.ParseInstrument(spec.Instrument); err != nil {
		return nil, err
	}
	if !t.data.Tradable(spec.Instrument) {
		return nil, fmt.Errorf("sim: instrument %s not in data catalog", spec.Instrument)
	}
	if !slices.Contains(t.params.Instruments, spec.Instrument) {
		return nil, fmt.Errorf("sim: instrument %s not in run instruments", spec.Instrument)
	}
	if spec.Units == 0 {
		return nil, fmt.Errorf("sim: market order for %s has zero units", spec.Instrument)
	}
	o := &Order{
		ID:          id.New(),
		Kind:        KindMarket,
		Instrument:  spec.Instrument,
		State:       OrderPending,
		CreateTime:  at,
		TimeInForce: spec.TimeInForce,
		GTDTime:     spec.GTDTime,
		Market: MarketLeg{
			Units:            spec.Units,
			Price:            spec.Price,
			TakeProfitPrice:  spec.TakeProfit,
			StopLossPrice:    spec.StopLoss,
			TrailingDistance: spec.TrailingDistance,
		},
	}
	t.orders = append(t.orders, o)
	return o, nil
}

// CreateTakeProfitOrder attaches a take-profit at the given price to an
// open trade. An existing pending take-profit on the trade is re-priced
// instead of duplicated.
func (t *Trader) CreateTakeProfitOrder(trade *Trade, price float64, at time.Time) *Order {
	if o := t.pendingOrderByID(trade.TakeProfitOrderID); o != nil {
		o.Exit.Price = price
		return o
	}
	o := t.appendExitOrder(KindTakeProfit, trade, ExitLeg{TradeID: trade.ID, Price: price}, at)
	trade.TakeProfitOrderID = o.ID
	return o
}

// CreateStopLossOrder attaches a stop-loss at the given price to an open
// trade, re-pricing any existing pending stop.
func (t *Trader) CreateStopLossOrder(trade *Trade, price float64, at time.Time) *Order {
	if o := t.pendingOrderByID(trade.StopLossOrderID); o != nil {
		o.Exit.Price = price
		return o
	}
	o := t.appendExitOrder(KindStopLoss, trade, ExitLeg{TradeID: trade.ID, Price: price}, at)
	trade.StopLossOrderID = o.ID
	return o
}

// CreateTrailingStopLossOrder attaches a trailing stop the given distance
// away from the trade's entry. Distance carries the sign of the protected
// side: positive trails below a long, negative trails above a short.
func (t *Trader) CreateTrailingStopLossOrder(trade *Trade, distance float64, at time.Time) *Order {
	if o := t.pendingOrderByID(trade.TrailingStopOrderID); o != nil {
		o.Exit.Distance = distance
		o.Exit.Price = trade.Price - distance
		return o
	}
	leg := ExitLeg{TradeID: trade.ID, Price: trade.Price - distance, Distance: distance}
	o := t.appendExitOrder(KindTrailingStopLoss, trade, leg, at)
	trade.TrailingStopOrderID = o.ID
	return o
}

func (t *Trader) pendingOrderByID(orderID string) *Order {
	if orderID == "" {
		return nil
	}
	for _, o := range t.orders {
		if o.ID == orderID && o.State == OrderPending {
			return o
		}
	}
	return nil
}

func (t *Trader) appendExitOrder(kind OrderKind, trade *Trade, leg ExitLeg, at time.Time) *Order {
	o := &Order{
		ID:         id.New(),
		Kind:       kind,
		Instrument: trade.Instrument,
		State:      OrderPending,
		CreateTime: at,
		Exit:       leg,
	}
	t.orders = append(t.orders, o)
	return o
}

// NetAssetValue is the balance plus the unrealized P&L of every open trade,
// valued at the minute bar for the given instant.
func (t *Trader) NetAssetValue(ctx context.Context, at time.Time) (float64, error) {
	open := t.OpenTrades()
	nav := t.params.Balance
	if len(open) == 0 {
		return nav, nil
	}
	instruments, quotes := openTradeCurrencies(open, func(i market.Instrument) string { return i.Quote })
	rates, err := t.data.AccountRates(ctx, t.params.AccountCurrency, quotes, at)
	if err != nil {
		return 0, err
	}
	bars, err := t.data.BarsAt(ctx, instruments, calendar.M1, at)
	if err != nil {
		return 0, err
	}
	for _, tr := range open {
		bar := bars[tr.Instrument]
		if bar == nil || bar.NaN() {
			return 0, fmt.Errorf("%w: %s at %v", ErrNoPriceData, tr.Instrument, at)
		}
		inst, _ := market.ParseInstrument(tr.Instrument)
		nav += tr.UnrealizedPL(bar.Close, rates[inst.Quote])
	}
	return nav, nil
}

// MarginUsed is the total margin held against the open trades at the given
// instant.
func (t *Trader) MarginUsed(ctx context.Context, at time.Time) (float64, error) {
	open := t.OpenTrades()
	if len(open) == 0 {
		return 0, nil
	}
	_, bases := openTradeCurrencies(open, func(i market.Instrument) string { return i.Base })
	rates, err := t.data.AccountRates(ctx, t.params.AccountCurrency, bases, at)
	if err != nil {
		return 0, err
	}
	var used float64
	for _, tr := range open {
		inst, _ := market.ParseInstrument(tr.Instrument)
		used += tr.MarginUsed(rates[inst.Base], t.params.Leverage)
	}
	return used, nil
}

// CloseTrade closes the whole position at the minute bar for the given
// instant, credits the realized P&L to the balance and journals the close.
func (t *Trader) CloseTrade(ctx context.Context, trade *Trade, at time.Time, reason string) (float64, error) {
	return t.closeTradeUnits(ctx, trade, trade.CurrentUnits, at, reason)
}

// PartialCloseTrade closes |units| of the position, leaving the rest open.
func (t *Trader) PartialCloseTrade(ctx context.Context, trade *Trade, units float64, at time.Time, reason string) (float64, error) {
	return t.closeTradeUnits(ctx, trade, units, at, reason)
}

func (t *Trader) closeTradeUnits(ctx context.Context, trade *Trade, units float64, at time.Time, reason string) (float64, error) {
	inst, err := market.ParseInstrument(trade.Instrument)
	if err != nil {
		return 0, err
	}
	rates, err := t.data.AccountRates(ctx, t.params.AccountCurrency, []string{inst.Quote}, at)
	if err != nil {
		return 0, err
	}
	bars, err := t.data.BarsAt(ctx, []string{trade.Instrument}, calendar.M1, at)
	if err != nil {
		return 0, err
	}
	bar := bars[trade.Instrument]
	if bar == nil || bar.NaN() {
		return 0, fmt.Errorf("%w: %s at %v", ErrNoPriceData, trade.Instrument, at)
	}
	closing := trade.CurrentUnits
	pl, err := trade.CloseUnits(units, bar.Close, rates[inst.Quote], at)
	if err != nil {
		return 0, err
	}
	closed := closing - trade.CurrentUnits
	t.params.Balance += pl
	rec := journal.TradeRecord{
		TradeID:    trade.ID,
		Instrument: trade.Instrument,
		Units:      closed,
		EntryPrice: trade.Price,
		ExitPrice:  bar.Close,
		OpenTime:   trade.OpenTime,
		CloseTime:  at,
		RealizedPL: pl,
		Reason:     reason,
	}
	if err := t.journal.RecordTrade(rec); err != nil {
		return pl, err
	}
	return pl, nil
}

// openTradeCurrencies collects the distinct instruments of the open trades
// together with one currency per trade picked by the selector.
func openTradeCurrencies(open []*Trade, pick func(market.Instrument) string) (instruments, currencies []string) {
	seenInst := make(map[string]bool)
	seenCur := make(map[string]bool)
	for _, tr := range open {
		inst, _ := market.ParseInstrument(tr.Instrument)
		if !seenInst[tr.Instrument] {
			seenInst[tr.Instrument] = true
			instruments = append(instruments, tr.Instrument)
		}
		if cur := pick(inst); !seenCur[cur] {
			seenCur[cur] = true
			currencies = append(currencies, cur)
		}
	}
	return instruments, currencies
}
