package sim

import (
	"fmt"
	"time"
)

// OrderState is the lifecycle state of an order. Pending is the only state
// an order can leave; the other three are terminal.
type OrderState int

const (
	OrderPending OrderState = iota
	OrderFilled
	OrderCancelled
	OrderTriggered
)

func (s OrderState) String() string {
	switch s {
	case OrderPending:
		return "PENDING"
	case OrderFilled:
		return "FILLED"
	case OrderCancelled:
		return "CANCELLED"
	case OrderTriggered:
		return "TRIGGERED"
	default:
		return fmt.Sprintf("OrderState(%d)", int(s))
	}
}

// Terminal reports whether the order can no longer change state.
func (s OrderState) Terminal() bool { return s != OrderPending }

// OrderKind distinguishes the order variants the engine processes.
type OrderKind int

const (
	KindMarket OrderKind = iota
	KindStopLoss
	KindTakeProfit
	KindTrailingStopLoss
)

func (k OrderKind) String() string {
	switch k {
	case KindMarket:
		return "MARKET"
	case KindStopLoss:
		return "STOP_LOSS"
	case KindTakeProfit:
		return "TAKE_PROFIT"
	case KindTrailingStopLoss:
		return "TRAILING_STOP_LOSS"
	default:
		return fmt.Sprintf("OrderKind(%d)", int(k))
	}
}

// TimeInForce controls how long a pending order stays live.
type TimeInForce int

const (
	// GTC keeps the order pending until it fills, triggers or is cancelled.
	GTC TimeInForce = iota
	// GTD cancels the order once the simulation clock passes Order.GTDTime.
	GTD
)

// MarketLeg carries the fields specific to a market order. The optional
// exit prices spawn linked exit orders when the market order fills.
type MarketLeg struct {
	Units float64
	// Price is the market price observed when the order was created. Fills
	// execute at this price.
	Price float64

	TakeProfitPrice  *float64
	StopLossPrice    *float64
	TrailingDistance *float64
}

// ExitLeg carries the fields specific to stop-loss, take-profit and
// trailing-stop orders. For a trailing stop Price is the current stop level
// and is ratcheted as the market moves favorably.
type ExitLeg struct {
	TradeID  string
	Price    float64
	Distance float64
}

// Order is a tagged variant: Market is populated when Kind is KindMarket,
// Exit for the three exit kinds.
type Order struct {
	ID         string
	Kind       OrderKind
	Instrument string
	State      OrderState
	CreateTime time.Time

	TimeInForce TimeInForce
	GTDTime     time.Time

	Market MarketLeg
	Exit   ExitLeg
}

// setState moves the order to next. Only pending orders may transition, and
// pending is never a destination.
func (o *Order) setState(next OrderState) error {
	if o.State.Terminal() {
		return fmt.Errorf("sim: order %s already %s, cannot move to %s", o.ID, o.State, next)
	}
	if next == OrderPending {
		return fmt.Errorf("sim: order %s cannot return to %s", o.ID, next)
	}
	o.State = next
	return nil
}
