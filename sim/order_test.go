package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStateMachine(t *testing.T) {
	t.Parallel()

	for _, terminal := range []OrderState{OrderFilled, OrderCancelled, OrderTriggered} {
		o := &Order{ID: "o1", State: OrderPending}
		require.NoError(t, o.setState(terminal))
		assert.Equal(t, terminal, o.State)
		assert.True(t, o.State.Terminal())

		// terminal states are final
		assert.Error(t, o.setState(OrderFilled))
		assert.Error(t, o.setState(OrderCancelled))
		assert.Error(t, o.setState(OrderPending))
		assert.Equal(t, terminal, o.State)
	}
}

func TestOrderStateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PENDING", OrderPending.String())
	assert.Equal(t, "FILLED", OrderFilled.String())
	assert.Equal(t, "CANCELLED", OrderCancelled.String())
	assert.Equal(t, "TRIGGERED", OrderTriggered.String())
	assert.False(t, OrderPending.Terminal())

	assert.Equal(t, "MARKET", KindMarket.String())
	assert.Equal(t, "TRAILING_STOP_LOSS", KindTrailingStopLoss.String())
}
