package character

import (
	"fmt"
	"log"

	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// effectHandler mutates derived state for one effect kind. Handlers are
// pure over (state, effect, provenance): no I/O, no clock, no rules
// lookups. Anything a handler needs must already be on the effect.
type effectHandler func(state *domain.State, effect *rules.Effect, prov domain.Provenance)

// effectHandlers is the closed dispatch table. Kinds outside this table
// are skipped with a warning so an old engine can load newer rule data
// without falling over.
var effectHandlers = map[rules.EffectKind]effectHandler{
	rules.EffectGrantCantrip:           applyGrantCantrip,
	rules.EffectGrantSpell:             applyGrantSpell,
	rules.EffectGrantWeaponProficiency: applyGrantProficiency(domain.ProficiencyWeapon),
	rules.EffectGrantArmorProficiency:  applyGrantProficiency(domain.ProficiencyArmor),
	rules.EffectGrantSkillProficiency:  applyGrantSkillProficiency,
	rules.EffectGrantToolProficiency:   applyGrantProficiency(domain.ProficiencyTool),
	rules.EffectGrantLanguage:          applyGrantLanguage,
	rules.EffectGrantExpertise:         applyGrantExpertise,
	rules.EffectGrantSaveProficiency:   applyGrantSaveProficiency,
	rules.EffectGrantSaveAdvantage:     applyGrantSaveAdvantage,
	rules.EffectGrantDamageResistance:  applyGrantDamageResistance,
	rules.EffectGrantDamageImmunity:    applyGrantDamageImmunity,
	rules.EffectGrantConditionImmunity: applyGrantConditionImmunity,
	rules.EffectBonusHitPoints:         applyBonusHitPoints,
	rules.EffectConditionalBonus:       applyConditionalBonus,
	rules.EffectAbilityBonus:           applyAbilityBonus,
	rules.EffectGrantDarkvision:        applyGrantDarkvision,
	rules.EffectIncreaseSpeed:          applyIncreaseSpeed,

	// Declares a nested choice rather than mutating state directly.
	// The orchestrator surfaces the pending choice; nothing to fold.
	rules.EffectGrantCantripChoice: func(*domain.State, *rules.Effect, domain.Provenance) {},
}

// ApplyEffect folds a single effect into the derived state. Unknown
// kinds record an unknown_effect warning and are otherwise skipped.
func ApplyEffect(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	handler, ok := effectHandlers[effect.Kind]
	if !ok {
		log.Printf("Skipping unknown effect kind '%s' from %s", effect.Kind, displaySource(prov))
		state.Warnings = append(state.Warnings, domain.Warning{
			Kind:    domain.WarningUnknownEffect,
			Message: fmt.Sprintf("unknown effect kind '%s' granted by %s was skipped", effect.Kind, displaySource(prov)),
			Source:  displaySource(prov),
		})
		return
	}
	handler(state, effect, prov)
}

// Replay recomputes every derived collection from the applied-effect
// log at the state's current level. Replaying is idempotent: the log is
// the source of truth and the fold starts from a clean slate.
func Replay(state *domain.State) {
	state.ResetDerived()
	for _, applied := range state.AppliedEffects {
		ApplyEffect(state, applied.Effect, applied.Provenance)
	}
}

// displaySource renders a provenance for warnings and grant attribution
func displaySource(prov domain.Provenance) string {
	if prov.Feature != "" {
		return prov.Feature
	}
	if prov.Category != "" {
		return prov.Category
	}
	return "unknown source"
}

func applyGrantCantrip(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	addSpell(state, effect.Spell, &domain.SpellGrant{
		Level:              0,
		CastingTime:        effect.CastingTime,
		Source:             displaySource(prov),
		AlwaysPrepared:     true,
		CountsAgainstLimit: effect.CountsAgainstLimit,
	})
}

func applyGrantSpell(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	// Level-gated grants stay in the log but only materialize once the
	// character reaches the threshold. Replaying at a lower level drops
	// them again.
	if effect.MinLevel > 0 && state.Level < effect.MinLevel {
		return
	}
	addSpell(state, effect.Spell, &domain.SpellGrant{
		Level:              effect.SpellLevel,
		CastingTime:        effect.CastingTime,
		Source:             displaySource(prov),
		AlwaysPrepared:     true,
		OncePerDay:         effect.OncePerDay,
		CountsAgainstLimit: effect.CountsAgainstLimit,
		MinLevel:           effect.MinLevel,
	})
}

// addSpell deduplicates by spell name, warning on cross-source repeats
// the same way grant sets do
func addSpell(state *domain.State, name string, grant *domain.SpellGrant) {
	if name == "" {
		return
	}
	if existing, ok := state.Spells[name]; ok {
		if existing.Source != grant.Source {
			state.Warnings = append(state.Warnings, domain.Warning{
				Kind:        domain.WarningDuplicateGrant,
				Message:     fmt.Sprintf("'%s' granted by %s duplicates the grant from %s", name, grant.Source, existing.Source),
				Grant:       name,
				Source:      grant.Source,
				PriorSource: existing.Source,
			})
		}
		return
	}
	state.Spells[name] = grant
}

// applyGrantProficiency handles the kinds whose payload is a plain
// proficiency name list
func applyGrantProficiency(ptype domain.ProficiencyType) effectHandler {
	return func(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
		for _, name := range effect.Proficiencies {
			state.AddGrant(state.Proficiencies[ptype], name, displaySource(prov))
		}
	}
}

func applyGrantSkillProficiency(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	names := effect.Skills
	if len(names) == 0 {
		names = effect.Proficiencies
	}
	for _, name := range names {
		state.AddGrant(state.Proficiencies[domain.ProficiencySkill], name, displaySource(prov))
	}
}

func applyGrantLanguage(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	for _, name := range effect.Languages {
		state.AddGrant(state.Languages, name, displaySource(prov))
	}
}

func applyGrantExpertise(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	names := effect.Skills
	if len(names) == 0 {
		names = effect.Proficiencies
	}
	for _, name := range names {
		state.AddGrant(state.Proficiencies[domain.ProficiencyExpertise], name, displaySource(prov))
	}
}

func applyGrantSaveProficiency(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.AddGrant(state.Proficiencies[domain.ProficiencySavingThrow], effect.Ability, displaySource(prov))
}

func applyGrantSaveAdvantage(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.SaveAdvantages = append(state.SaveAdvantages, domain.SaveAdvantage{
		Ability:   effect.Ability,
		Condition: effect.Condition,
		Source:    displaySource(prov),
	})
}

func applyGrantDamageResistance(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.AddGrant(state.Resistances, effect.DamageType, displaySource(prov))
}

func applyGrantDamageImmunity(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.AddGrant(state.DamageImmunities, effect.DamageType, displaySource(prov))
}

func applyGrantConditionImmunity(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.AddGrant(state.ConditionImmunities, effect.Condition, displaySource(prov))
}

func applyBonusHitPoints(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	// Per-level bonuses store the per-level value; totals are computed
	// from the current level on demand so level changes never drift
	state.HPBonuses = append(state.HPBonuses, domain.HPBonus{
		Value:   effect.Value,
		Scaling: effect.Scaling,
		Source:  displaySource(prov),
	})
}

func applyConditionalBonus(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.ConditionalBonuses = append(state.ConditionalBonuses, domain.ConditionalBonus{
		Target: effect.Target,
		Value:  effect.Value,
		When:   effect.When,
		Source: displaySource(prov),
	})
}

func applyAbilityBonus(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.AbilityBonuses = append(state.AbilityBonuses, domain.AbilityBonus{
		Ability: effect.Ability,
		Skills:  effect.Skills,
		Value:   effect.Value,
		Minimum: effect.Minimum,
		Source:  displaySource(prov),
	})
}

func applyGrantDarkvision(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	// Overlapping darkvision grants keep the best range
	if effect.Range > state.Darkvision {
		state.Darkvision = effect.Range
	}
}

func applyIncreaseSpeed(state *domain.State, effect *rules.Effect, prov domain.Provenance) {
	state.SpeedBonus += effect.Value
}
