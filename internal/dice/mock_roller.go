package dice

// ManualMockRoller returns preset rolls in order, for deterministic
// tests without a gomock controller
type ManualMockRoller struct {
	rolls []([]int)
	index int
}

// NewManualMockRoller creates an empty manual mock
func NewManualMockRoller() *ManualMockRoller {
	return &ManualMockRoller{}
}

// SetRolls queues the dice that upcoming Roll calls will produce
func (m *ManualMockRoller) SetRolls(rolls ...[]int) {
	m.rolls = append(m.rolls, rolls...)
}

// Roll implements Roller.Roll, replaying the queued dice. Once the
// queue runs out every die comes up 1.
func (m *ManualMockRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	var rolls []int
	if m.index < len(m.rolls) {
		rolls = m.rolls[m.index]
		m.index++
	} else {
		rolls = make([]int, count)
		for i := range rolls {
			rolls[i] = 1
		}
	}

	rawTotal := 0
	for _, roll := range rolls {
		rawTotal += roll
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
