package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-engine/internal/dice"
)

func TestRandomRoller_StaysInRange(t *testing.T) {
	roller := dice.NewRandomRoller()

	for i := 0; i < 100; i++ {
		result, err := roller.Roll(4, 6, 0)
		require.NoError(t, err)
		require.Len(t, result.Rolls, 4)
		for _, roll := range result.Rolls {
			assert.GreaterOrEqual(t, roll, 1)
			assert.LessOrEqual(t, roll, 6)
		}
		assert.Equal(t, result.RawTotal, result.Total)
	}
}

func TestRandomRoller_AppliesBonus(t *testing.T) {
	roller := dice.NewRandomRoller()

	result, err := roller.Roll(1, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, result.RawTotal+5, result.Total)
	assert.Equal(t, 5, result.Bonus)
}

func TestRandomRoller_RejectsBadDice(t *testing.T) {
	roller := dice.NewRandomRoller()

	_, err := roller.Roll(0, 6, 0)
	assert.Error(t, err)

	_, err = roller.Roll(1, 1, 0)
	assert.Error(t, err)
}

func TestRollResult_DropLowest(t *testing.T) {
	result := &dice.RollResult{
		Rolls:    []int{6, 5, 4, 1},
		RawTotal: 16,
	}
	assert.Equal(t, 15, result.DropLowest())

	empty := &dice.RollResult{}
	assert.Equal(t, 0, empty.DropLowest())
}

func TestManualMockRoller_ReplaysQueuedRolls(t *testing.T) {
	roller := dice.NewManualMockRoller()
	roller.SetRolls([]int{6, 5, 4, 1}, []int{3, 3, 3, 3})

	first, err := roller.Roll(4, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 5, 4, 1}, first.Rolls)
	assert.Equal(t, 16, first.Total)

	second, err := roller.Roll(4, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, 14, second.Total)

	// Exhausted queue falls back to all ones
	third, err := roller.Roll(2, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, third.Rolls)
}
