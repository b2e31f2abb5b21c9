package etorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusRank(t *testing.T) {
	t.Run("monotonic ordering", func(t *testing.T) {
		assert.Less(t, OrderStatusNotStarted.Rank(), OrderStatusCooking.Rank())
		assert.Less(t, OrderStatusCooking.Rank(), OrderStatusCooked.Rank())
		assert.Less(t, OrderStatusCooked.Rank(), OrderStatusDelivered.Rank())
		assert.Less(t, OrderStatusDelivered.Rank(), OrderStatusFailed.Rank())
	})

	t.Run("invalid status has no rank", func(t *testing.T) {
		assert.Equal(t, -1, OrderStatus("bogus").Rank())
		assert.False(t, OrderStatus("bogus").Valid())
	})
}

func TestCanAdvanceTo(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"not_started to cooking", OrderStatusNotStarted, OrderStatusCooking, true},
		{"cooking to cooked", OrderStatusCooking, OrderStatusCooked, true},
		{"cooked to failed", OrderStatusCooked, OrderStatusFailed, true},
		{"same status is not an advance", OrderStatusCooking, OrderStatusCooking, false},
		{"backwards is rejected", OrderStatusCooked, OrderStatusCooking, false},
		{"failed is final", OrderStatusFailed, OrderStatusCooked, false},
		{"invalid target", OrderStatusCooking, OrderStatus("bogus"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanAdvanceTo(tc.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, OrderStatusFailed.Terminal())
	assert.True(t, OrderStatusDelivered.Terminal())
	assert.False(t, OrderStatusCooked.Terminal())
	assert.False(t, OrderStatusNotStarted.Terminal())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("cooking")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCooking, status)

	_, err = ParseStatus("unknown")
	assert.Error(t, err)
}

func TestPriorStatuses(t *testing.T) {
	prior := PriorStatuses(OrderStatusCooked)
	assert.ElementsMatch(t, []OrderStatus{OrderStatusNotStarted, OrderStatusCooking}, prior)

	assert.Empty(t, PriorStatuses(OrderStatusNotStarted))
}
