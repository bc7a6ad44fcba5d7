package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
	"github.com/KirkDiggler/dnd-character-engine/internal/services/character"
)

func prov(feature string) domain.Provenance {
	return domain.Provenance{Category: "species", Feature: feature}
}

func TestApplyEffect_UnknownKindWarnsAndSkips(t *testing.T) {
	state := domain.NewState()

	character.ApplyEffect(state, &rules.Effect{Kind: "grant_fly_speed", Value: 30}, prov("Winged"))

	require.Len(t, state.Warnings, 1)
	assert.Equal(t, domain.WarningUnknownEffect, state.Warnings[0].Kind)
	assert.Contains(t, state.Warnings[0].Message, "grant_fly_speed")
	assert.Equal(t, "Winged", state.Warnings[0].Source)
	assert.Zero(t, state.SpeedBonus)
}

func TestApplyEffect_ProficiencyGrants(t *testing.T) {
	state := domain.NewState()

	character.ApplyEffect(state, &rules.Effect{
		Kind:          rules.EffectGrantWeaponProficiency,
		Proficiencies: []string{"Martial Weapons"},
	}, prov("Protector"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:   rules.EffectGrantSkillProficiency,
		Skills: []string{"Insight", "Religion"},
	}, prov("Acolyte Training"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:   rules.EffectGrantExpertise,
		Skills: []string{"Religion"},
	}, prov("Scholar"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:    rules.EffectGrantSaveProficiency,
		Ability: "wisdom",
	}, prov("Cleric"))

	assert.Equal(t, "Protector", state.Proficiencies[domain.ProficiencyWeapon]["Martial Weapons"])
	assert.True(t, state.Proficiencies[domain.ProficiencySkill].Has("Insight"))
	assert.True(t, state.Proficiencies[domain.ProficiencySkill].Has("Religion"))
	assert.True(t, state.Proficiencies[domain.ProficiencyExpertise].Has("Religion"))
	assert.True(t, state.Proficiencies[domain.ProficiencySavingThrow].Has("wisdom"))
	assert.Empty(t, state.Warnings)
}

func TestApplyEffect_DuplicateGrantWarnsOnce(t *testing.T) {
	state := domain.NewState()

	character.ApplyEffect(state, &rules.Effect{
		Kind:   rules.EffectGrantSkillProficiency,
		Skills: []string{"Religion"},
	}, prov("Acolyte Training"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:   rules.EffectGrantSkillProficiency,
		Skills: []string{"Religion"},
	}, prov("Cleric"))

	// First source keeps the grant
	assert.Equal(t, "Acolyte Training", state.Proficiencies[domain.ProficiencySkill]["Religion"])

	require.Len(t, state.Warnings, 1)
	warning := state.Warnings[0]
	assert.Equal(t, domain.WarningDuplicateGrant, warning.Kind)
	assert.Equal(t, "Religion", warning.Grant)
	assert.Equal(t, "Cleric", warning.Source)
	assert.Equal(t, "Acolyte Training", warning.PriorSource)
}

func TestApplyEffect_SameSourceReapplyIsSilent(t *testing.T) {
	state := domain.NewState()
	effect := &rules.Effect{Kind: rules.EffectGrantLanguage, Languages: []string{"Celestial"}}

	character.ApplyEffect(state, effect, prov("Temple Languages"))
	character.ApplyEffect(state, effect, prov("Temple Languages"))

	assert.Len(t, state.Languages, 1)
	assert.Empty(t, state.Warnings)
}

func TestApplyEffect_SpellGrants(t *testing.T) {
	state := domain.NewState()
	state.Level = 3

	character.ApplyEffect(state, &rules.Effect{
		Kind:  rules.EffectGrantCantrip,
		Spell: "Minor Illusion",
	}, prov("Gnomish Magic"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:       rules.EffectGrantSpell,
		Spell:      "Detect Magic",
		SpellLevel: 1,
		MinLevel:   3,
		OncePerDay: true,
	}, prov("Gnomish Magic"))

	require.Contains(t, state.Spells, "Minor Illusion")
	assert.Equal(t, 0, state.Spells["Minor Illusion"].Level)
	assert.True(t, state.Spells["Minor Illusion"].AlwaysPrepared)

	require.Contains(t, state.Spells, "Detect Magic")
	assert.Equal(t, 1, state.Spells["Detect Magic"].Level)
	assert.True(t, state.Spells["Detect Magic"].OncePerDay)
	assert.Equal(t, 3, state.Spells["Detect Magic"].MinLevel)
}

func TestApplyEffect_LevelGateHoldsBackSpell(t *testing.T) {
	state := domain.NewState()
	state.Level = 2

	character.ApplyEffect(state, &rules.Effect{
		Kind:       rules.EffectGrantSpell,
		Spell:      "Detect Magic",
		SpellLevel: 1,
		MinLevel:   3,
	}, prov("Gnomish Magic"))

	assert.NotContains(t, state.Spells, "Detect Magic")
}

func TestApplyEffect_DarkvisionKeepsBestRange(t *testing.T) {
	state := domain.NewState()

	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantDarkvision, Range: 60}, prov("Darkvision"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantDarkvision, Range: 120}, prov("Superior Darkvision"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantDarkvision, Range: 60}, prov("Goggles"))

	assert.Equal(t, 120, state.Darkvision)
}

func TestApplyEffect_NumericEffects(t *testing.T) {
	state := domain.NewState()
	state.Level = 5

	character.ApplyEffect(state, &rules.Effect{
		Kind:    rules.EffectBonusHitPoints,
		Value:   1,
		Scaling: rules.ScalingModePerLevel,
	}, prov("Disciple of Life"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:  rules.EffectBonusHitPoints,
		Value: 2,
	}, prov("Tough"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectIncreaseSpeed, Value: 5}, prov("Fleet"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:   rules.EffectConditionalBonus,
		Target: "ac",
		Value:  1,
		When:   &rules.ItemPredicate{Property: "shield_equipped"},
	}, prov("Shield Ward"))
	character.ApplyEffect(state, &rules.Effect{
		Kind:    rules.EffectAbilityBonus,
		Ability: "wisdom",
		Skills:  []string{"Arcana", "Religion"},
		Minimum: 1,
	}, prov("Thaumaturge"))

	assert.Equal(t, 7, state.TotalHPBonus())
	assert.Equal(t, 5, state.SpeedBonus)
	require.Len(t, state.ConditionalBonuses, 1)
	assert.Equal(t, "ac", state.ConditionalBonuses[0].Target)
	require.Len(t, state.AbilityBonuses, 1)
	assert.Equal(t, "wisdom", state.AbilityBonuses[0].Ability)
}

func TestApplyEffect_ResistancesAndImmunities(t *testing.T) {
	state := domain.NewState()

	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantDamageResistance, DamageType: "poison"}, prov("Dwarven Resilience"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantDamageImmunity, DamageType: "radiant"}, prov("Celestial Body"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantConditionImmunity, Condition: "poisoned"}, prov("Dwarven Resilience"))
	character.ApplyEffect(state, &rules.Effect{Kind: rules.EffectGrantSaveAdvantage, Ability: "wisdom", Condition: "charmed"}, prov("Fey Ancestry"))

	assert.True(t, state.Resistances.Has("poison"))
	assert.True(t, state.DamageImmunities.Has("radiant"))
	assert.True(t, state.ConditionImmunities.Has("poisoned"))
	require.Len(t, state.SaveAdvantages, 1)
	assert.Equal(t, "charmed", state.SaveAdvantages[0].Condition)
}

func TestReplay_RecomputesFromLog(t *testing.T) {
	state := domain.NewState()
	state.Level = 1
	state.AppliedEffects = []*domain.AppliedEffect{
		{
			Effect:     &rules.Effect{Kind: rules.EffectGrantCantrip, Spell: "Minor Illusion"},
			Provenance: prov("Gnomish Magic"),
		},
		{
			Effect:     &rules.Effect{Kind: rules.EffectGrantSpell, Spell: "Detect Magic", SpellLevel: 1, MinLevel: 3},
			Provenance: prov("Gnomish Magic"),
		},
		{
			Effect:     &rules.Effect{Kind: rules.EffectGrantDarkvision, Range: 120},
			Provenance: prov("Darkvision"),
		},
	}

	character.Replay(state)
	assert.Contains(t, state.Spells, "Minor Illusion")
	assert.NotContains(t, state.Spells, "Detect Magic")
	assert.Equal(t, 120, state.Darkvision)

	// The same log replayed at a higher level releases the gated spell
	state.Level = 3
	character.Replay(state)
	assert.Contains(t, state.Spells, "Detect Magic")

	// And dropping back down takes it away again
	state.Level = 2
	character.Replay(state)
	assert.NotContains(t, state.Spells, "Detect Magic")
	assert.Contains(t, state.Spells, "Minor Illusion")
}

func TestReplay_IsIdempotent(t *testing.T) {
	state := domain.NewState()
	state.Level = 4
	state.AppliedEffects = []*domain.AppliedEffect{
		{
			Effect:     &rules.Effect{Kind: rules.EffectGrantSkillProficiency, Skills: []string{"Insight"}},
			Provenance: prov("Acolyte Training"),
		},
		{
			Effect:     &rules.Effect{Kind: rules.EffectBonusHitPoints, Value: 1, Scaling: rules.ScalingModePerLevel},
			Provenance: prov("Disciple of Life"),
		},
	}

	character.Replay(state)
	character.Replay(state)

	assert.Len(t, state.Proficiencies[domain.ProficiencySkill], 1)
	assert.Len(t, state.HPBonuses, 1)
	assert.Equal(t, 4, state.TotalHPBonus())
	assert.Empty(t, state.Warnings)
}
