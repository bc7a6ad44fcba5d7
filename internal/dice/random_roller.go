package dice

import (
	"math/rand"

	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// randomRoller implements Roller with math/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 || sides < 2 {
		return nil, engerr.InvalidArgumentf("cannot roll %dd%d", count, sides)
	}

	rolls := make([]int, count)
	rawTotal := 0
	for i := range rolls {
		rolls[i] = rand.Intn(sides) + 1
		rawTotal += rolls[i]
	}

	return &RollResult{
		Total:    rawTotal + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: rawTotal,
	}, nil
}
