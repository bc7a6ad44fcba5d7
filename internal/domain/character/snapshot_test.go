package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

func TestSnapshot_RoundTripKeepsLogAndPending(t *testing.T) {
	state := character.NewState()
	state.ID = "state_1"
	state.Species = "Deep Gnome"
	state.Level = 3
	state.ChoicesMade["divine_order"] = character.SingleValue("Thaumaturge")
	state.AppliedEffects = []*character.AppliedEffect{
		{
			Effect:     &rules.Effect{Kind: rules.EffectGrantDarkvision, Range: 120},
			Provenance: character.Provenance{Category: "species", Feature: "Darkvision"},
		},
	}
	state.PendingChoices = []*character.PendingChoice{
		{
			Key:    "thaumaturge_cantrip",
			Type:   rules.ChoiceTypeSelectSingle,
			Count:  1,
			Parent: &character.ParentRef{ChoiceKey: "divine_order", Option: "Thaumaturge"},
		},
	}

	data, err := state.Snapshot()
	require.NoError(t, err)

	restored, err := character.FromSnapshot(data)
	require.NoError(t, err)

	assert.Equal(t, "state_1", restored.ID)
	assert.Equal(t, 3, restored.Level)
	require.Len(t, restored.AppliedEffects, 1)
	assert.Equal(t, rules.EffectGrantDarkvision, restored.AppliedEffects[0].Effect.Kind)
	require.Len(t, restored.PendingChoices, 1)
	assert.Equal(t, "divine_order", restored.PendingChoices[0].Parent.ChoiceKey)
	assert.Equal(t, "Thaumaturge", restored.ChoicesMade["divine_order"].Single())
}

func TestFromSnapshot_BackfillsMissingCollections(t *testing.T) {
	restored, err := character.FromSnapshot([]byte(`{"level": 2, "name": "Brenna"}`))
	require.NoError(t, err)

	assert.Equal(t, 2, restored.Level)
	assert.NotNil(t, restored.Abilities)
	assert.NotNil(t, restored.ChoicesMade)
	assert.NotNil(t, restored.Spells)
	for _, pt := range character.ProficiencyTypes {
		assert.NotNil(t, restored.Proficiencies[pt])
	}
}

func TestFromSnapshot_RejectsGarbage(t *testing.T) {
	_, err := character.FromSnapshot([]byte(`{not json`))
	require.Error(t, err)
}

func TestClone_IsIndependent(t *testing.T) {
	state := character.NewState()
	state.ID = "state_1"
	state.Abilities["wisdom"] = 16
	state.AddGrant(state.Languages, "Celestial", "Temple Languages")

	clone, err := state.Clone()
	require.NoError(t, err)

	clone.Abilities["wisdom"] = 8
	clone.AddGrant(clone.Languages, "Infernal", "Temple Languages")

	assert.Equal(t, 16, state.Abilities["wisdom"])
	assert.False(t, state.Languages.Has("Infernal"))
	assert.True(t, clone.Languages.Has("Celestial"))
}
