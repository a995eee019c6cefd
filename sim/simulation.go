package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shine15/iridium/calendar"
	"github.com/shine15/iridium/internal/id"
	"github.com/shine15/iridium/journal"
	"github.com/shine15/iridium/market"
)

// RunState describes where a simulation is in its lifecycle. MarginCalled
// and Complete are terminal.
type RunState int

const (
	NotStarted RunState = iota
	InSession
	BetweenSessions
	MarginCalled
	Complete
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case InSession:
		return "IN_SESSION"
	case BetweenSessions:
		return "BETWEEN_SESSIONS"
	case MarginCalled:
		return "MARGIN_CALLED"
	case Complete:
		return "COMPLETE"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Strategy receives one callback per simulated minute, before the order
// book is processed. Orders it places are eligible the same minute.
type Strategy interface {
	HandleTick(ctx context.Context, trader *Trader, frames map[string]*Frame, now time.Time) error
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(ctx context.Context, trader *Trader, frames map[string]*Frame, now time.Time) error

func (f StrategyFunc) HandleTick(ctx context.Context, trader *Trader, frames map[string]*Frame, now time.Time) error {
	return f(ctx, trader, frames, now)
}

// Result is the outcome of a run.
type Result struct {
	State   RunState
	Balance float64
	Perfs   []journal.PerfSnapshot
}

// Simulation drives the event loop: sessions from the calendar, one tick
// per minute, strategy callback, order processing, account snapshot.
type Simulation struct {
	params   *Parameters
	data     *MarketData
	trader   *Trader
	strategy Strategy
	journal  journal.Journal
	log      *slog.Logger

	state RunState
	perfs []journal.PerfSnapshot
}

func NewSimulation(params *Parameters, data *MarketData, strategy Strategy, j journal.Journal, log *slog.Logger) *Simulation {
	if j == nil {
		j = journal.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Simulation{
		params:   params,
		data:     data,
		trader:   NewTrader(params, data, j),
		strategy: strategy,
		journal:  j,
		log:      log,
		state:    NotStarted,
	}
}

// Trader exposes the account for inspection after (or during) a run.
func (s *Simulation) Trader() *Trader { return s.trader }

// State returns the current lifecycle state.
func (s *Simulation) State() RunState { return s.state }

// Run executes the simulation to completion, margin call or fatal error.
// Tick-scoped data gaps are logged and skipped; store failures, strategy
// errors and context cancellation abort the run.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	sessions, err := calendar.TradingSessions(s.params.Start, s.params.End, s.params.Frequency)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		ok, err := s.runSession(ctx, sess)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		s.state = BetweenSessions
	}
	if s.state != MarginCalled {
		s.state = Complete
	}
	return s.result(), nil
}

func (s *Simulation) result() *Result {
	return &Result{State: s.state, Balance: s.params.Balance, Perfs: s.perfs}
}

// runSession plays one trading session minute by minute. It returns false
// when the run must stop early.
func (s *Simulation) runSession(ctx context.Context, sess calendar.Session) (bool, error) {
	lookback, err := s.data.History(ctx, s.params.Instruments, s.params.Frequency, sess.Start, s.params.HistoryCount)
	if err != nil {
		return false, err
	}
	for _, instrument := range s.params.Instruments {
		if len(lookback[instrument]) < s.params.HistoryCount {
			s.log.Debug("insufficient lookback, skipping session",
				"instrument", instrument,
				"session_start", sess.Start,
				"bars", len(lookback[instrument]),
				"want", s.params.HistoryCount)
			s.state = BetweenSessions
			return true, nil
		}
	}

	s.state = InSession
	s.log.Info("session start", "start", sess.Start, "end", sess.End)

	frames := make(map[string]*Frame, len(s.params.Instruments))
	for _, instrument := range s.params.Instruments {
		frames[instrument] = NewFrame(instrument, lookback[instrument])
	}

	for minute := sess.Start; !minute.After(sess.End); minute = minute.Add(time.Minute) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		bars, err := s.data.BarsAt(ctx, s.params.Instruments, calendar.M1, minute)
		if err != nil {
			return false, err
		}
		for _, instrument := range s.params.Instruments {
			if bar := bars[instrument]; bar != nil {
				frames[instrument].Append(*bar)
			} else {
				frames[instrument].Append(market.NaNBar(minute))
			}
		}
		if err := s.strategy.HandleTick(ctx, s.trader, frames, minute); err != nil {
			return false, fmt.Errorf("sim: strategy at %v: %w", minute, err)
		}
		if err := s.tick(ctx, minute, bars); err != nil {
			if tickScoped(err) {
				s.log.Warn("skipping tick", "time", minute, "error", err)
				continue
			}
			return false, err
		}
		if s.state == MarginCalled {
			return false, nil
		}
	}
	return true, nil
}

// tick processes the order book at the given minute, then snapshots the
// account and checks for a margin call.
func (s *Simulation) tick(ctx context.Context, now time.Time, bars map[string]*market.Bar) error {
	if err := s.processOrders(ctx, now, bars); err != nil {
		return err
	}
	nav, err := s.trader.NetAssetValue(ctx, now)
	if err != nil {
		return err
	}
	used, err := s.trader.MarginUsed(ctx, now)
	if err != nil {
		return err
	}
	snap := journal.PerfSnapshot{
		Time:            now,
		NAV:             nav,
		MarginUsed:      used,
		MarginAvailable: MarginAvailable(nav, used),
	}
	s.perfs = append(s.perfs, snap)
	if err := s.journal.RecordPerf(snap); err != nil {
		return err
	}
	s.log.Debug("tick", "time", now, "nav", nav, "margin_used", used)
	if MarginCall(nav, used) {
		s.log.Info("margin call", "time", now, "nav", nav, "margin_used", used)
		s.state = MarginCalled
	}
	return nil
}

// processOrders walks the pending book in creation order. The snapshot is
// taken once, so exit orders spawned by fills this minute first run next
// minute.
func (s *Simulation) processOrders(ctx context.Context, now time.Time, bars map[string]*market.Bar) error {
	for _, o := range s.trader.PendingOrders() {
		if o.TimeInForce == GTD && !o.GTDTime.IsZero() && now.After(o.GTDTime) {
			if err := o.setState(OrderCancelled); err != nil {
				return err
			}
			continue
		}
		bar := bars[o.Instrument]
		if bar == nil || bar.NaN() {
			return fmt.Errorf("%w: %s at %v", ErrNoPriceData, o.Instrument, now)
		}
		var err error
		switch o.Kind {
		case KindMarket:
			err = s.processMarketOrder(ctx, o, bar.Close, now)
		default:
			err = s.processExitOrder(ctx, o, bar.Close, now)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// processMarketOrder nets the order against opposing open trades FIFO, then
// opens a trade with any residual units if margin allows.
func (s *Simulation) processMarketOrder(ctx context.Context, o *Order, price float64, now time.Time) error {
	remaining := o.Market.Units
	for _, tr := range s.trader.OpenTrades() {
		if remaining == 0 {
			break
		}
		if tr.Instrument != o.Instrument || tr.CurrentUnits*remaining >= 0 {
			continue
		}
		if math.Abs(remaining) >= math.Abs(tr.CurrentUnits) {
			closed := tr.CurrentUnits
			if _, err := s.trader.CloseTrade(ctx, tr, now, "netting"); err != nil {
				return err
			}
			remaining += closed
		} else {
			if _, err := s.trader.PartialCloseTrade(ctx, tr, remaining, now, "netting"); err != nil {
				return err
			}
			remaining = 0
		}
	}
	if remaining == 0 {
		return o.setState(OrderFilled)
	}

	inst, err := market.ParseInstrument(o.Instrument)
	if err != nil {
		return err
	}
	rates, err := s.data.AccountRates(ctx, s.params.AccountCurrency, []string{inst.Base}, now)
	if err != nil {
		return err
	}
	need := marginRequired(remaining, rates[inst.Base], s.params.Leverage)
	nav, err := s.trader.NetAssetValue(ctx, now)
	if err != nil {
		return err
	}
	used, err := s.trader.MarginUsed(ctx, now)
	if err != nil {
		return err
	}
	if need > MarginAvailable(nav, used) {
		s.log.Info("order cancelled, insufficient margin",
			"order", o.ID, "instrument", o.Instrument,
			"units", remaining, "margin_required", need,
			"margin_available", MarginAvailable(nav, used))
		return o.setState(OrderCancelled)
	}

	trade := &Trade{
		ID:            id.New(),
		Instrument:    o.Instrument,
		OpenTime:      now,
		State:         TradeOpen,
		InitialUnits:  remaining,
		CurrentUnits:  remaining,
		Price:         entryPrice(o.Market.Price, s.params.Spread, s.params.Commission, remaining),
		InitialMargin: need,
	}
	s.trader.trades = append(s.trader.trades, trade)
	if o.Market.TakeProfitPrice != nil {
		s.trader.CreateTakeProfitOrder(trade, *o.Market.TakeProfitPrice, now)
	}
	if o.Market.StopLossPrice != nil {
		s.trader.CreateStopLossOrder(trade, *o.Market.StopLossPrice, now)
	}
	if o.Market.TrailingDistance != nil {
		s.trader.CreateTrailingStopLossOrder(trade, *o.Market.TrailingDistance, now)
	}
	return o.setState(OrderFilled)
}

// processExitOrder tests the trigger condition against the current price,
// closing the linked trade on a hit. A trailing stop that does not trigger
// ratchets its level toward the price when the gap exceeds the distance.
func (s *Simulation) processExitOrder(ctx context.Context, o *Order, price float64, now time.Time) error {
	tr := s.trader.openTradeByID(o.Exit.TradeID)
	if tr == nil {
		// linked trade already closed, nothing left to protect
		return o.setState(OrderCancelled)
	}
	long := tr.CurrentUnits > 0
	var hit bool
	switch o.Kind {
	case KindTakeProfit:
		if long {
			hit = price >= o.Exit.Price
		} else {
			hit = price <= o.Exit.Price
		}
	case KindStopLoss, KindTrailingStopLoss:
		if long {
			hit = price <= o.Exit.Price
		} else {
			hit = price >= o.Exit.Price
		}
	default:
		return fmt.Errorf("sim: order %s has unexpected kind %s", o.ID, o.Kind)
	}
	if hit {
		if _, err := s.trader.CloseTrade(ctx, tr, now, o.Kind.String()); err != nil {
			return err
		}
		return o.setState(OrderTriggered)
	}
	if o.Kind == KindTrailingStopLoss && math.Abs(price-o.Exit.Price) > math.Abs(o.Exit.Distance) {
		o.Exit.Price = price - o.Exit.Distance
	}
	return nil
}
