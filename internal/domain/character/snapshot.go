package character

import (
	"encoding/json"

	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// Snapshot serializes the full state, including the applied-effects log
// and the pending-choice set. Round-tripping through Snapshot and
// FromSnapshot must never lose an effect or a pending choice.
func (s *State) Snapshot() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, engerr.Wrap(err, "failed to serialize character state")
	}
	return data, nil
}

// FromSnapshot restores a state previously produced by Snapshot
func FromSnapshot(data []byte) (*State, error) {
	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, engerr.WrapWithCode(err, engerr.CodeInvalidArgument, "failed to restore character state")
	}

	// Older snapshots may predate some collections
	if state.Abilities == nil {
		state.Abilities = make(map[string]int)
	}
	if state.ChoicesMade == nil {
		state.ChoicesMade = make(map[string]ChoiceValue)
	}
	if state.Spells == nil {
		state.Spells = make(map[string]*SpellGrant)
	}
	if state.Proficiencies == nil {
		state.Proficiencies = make(map[ProficiencyType]Grants, len(ProficiencyTypes))
	}
	for _, pt := range ProficiencyTypes {
		if state.Proficiencies[pt] == nil {
			state.Proficiencies[pt] = make(Grants)
		}
	}
	if state.Languages == nil {
		state.Languages = make(Grants)
	}
	if state.Resistances == nil {
		state.Resistances = make(Grants)
	}
	if state.DamageImmunities == nil {
		state.DamageImmunities = make(Grants)
	}
	if state.ConditionImmunities == nil {
		state.ConditionImmunities = make(Grants)
	}

	return state, nil
}

// Clone returns a deep copy of the state. The orchestrator stages
// mutations on a clone so a failed operation leaves the original
// untouched.
func (s *State) Clone() (*State, error) {
	data, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return FromSnapshot(data)
}
