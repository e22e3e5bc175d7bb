package production

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLess_PriorityThenSubmission(t *testing.T) {
	mk := func(priority int, seq int64) *Order {
		o, err := NewOrder(UnitTarget("Terran_Marine"), priority, seq, 0)
		require.NoError(t, err)
		return o
	}

	high := mk(5, 3)
	lowEarly := mk(3, 1)
	lowLate := mk(3, 2)

	assert.True(t, Less(high, lowEarly))
	assert.True(t, Less(lowEarly, lowLate))
	assert.False(t, Less(lowLate, lowEarly))
	assert.False(t, Less(high, high), "irreflexive")

	orders := []*Order{lowLate, high, lowEarly}
	SortOrders(orders)
	assert.Equal(t, []*Order{high, lowEarly, lowLate}, orders)
}

func TestLess_IsStrictTotalOrder(t *testing.T) {
	var orders []*Order
	seq := int64(0)
	for _, p := range []int{2, 9, 2, -1, 9, 0, 2} {
		seq++
		o, err := NewOrder(ResearchTarget("Stim_Packs"), p, seq, 0)
		require.NoError(t, err)
		orders = append(orders, o)
	}

	for _, a := range orders {
		for _, b := range orders {
			if a == b {
				continue
			}
			assert.NotEqual(t, Less(a, b), Less(b, a), "exactly one of a<b, b<a must hold")
		}
	}
}
