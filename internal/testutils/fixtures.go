// Package testutils provides a small but complete ruleset for tests:
// a cleric with a subclass, option lists with nested choices, level
// scaling tables, and species with level-gated spells.
package testutils

import (
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// NewTestRules assembles the shared test ruleset in memory
func NewTestRules() *rules.InMemoryRepository {
	repo := rules.NewInMemory()

	repo.Add(rules.CategoryClass, NewTestCleric())
	repo.Add(rules.CategorySubclass, NewTestLifeDomain())
	repo.Add(rules.CategorySpellList, NewTestClericSpells())
	repo.Add(rules.CategorySpecies, NewTestDeepGnome())
	repo.Add(rules.CategorySpecies, NewTestHuman())
	repo.Add(rules.CategoryLineage, NewTestDrowDescent())
	repo.Add(rules.CategoryBackground, NewTestAcolyte())

	return repo
}

// NewTestCleric builds a cleric class document with a divine order
// choice, scaling spellcasting text, and a skill pick
func NewTestCleric() *rules.Document {
	return &rules.Document{
		Name:                "Cleric",
		Description:         "A priestly champion who wields divine magic.",
		SavingThrows:        []string{"wisdom", "charisma"},
		ArmorProficiencies:  []string{"Light Armor", "Medium Armor", "Shields"},
		WeaponProficiencies: []string{"Simple Weapons"},
		SubclassLevel:       3,
		SkillChoice: &rules.ChoiceDecl{
			Key:    "cleric_skills",
			Prompt: "Choose two cleric skills",
			Type:   rules.ChoiceTypeSelectMultiple,
			Count:  2,
			Source: &rules.SourceRef{
				Type:    rules.SourceTypeFixedList,
				Options: []string{"History", "Insight", "Medicine", "Persuasion", "Religion"},
			},
		},
		FeaturesByLevel: map[int]map[string]*rules.Feature{
			1: {
				"Divine Order": {
					Description: "You have dedicated yourself to a sacred role.",
					Choice: &rules.ChoiceDecl{
						Key:    "divine_order",
						Prompt: "Choose a Divine Order",
						Type:   rules.ChoiceTypeSelectSingle,
						Source: &rules.SourceRef{
							Type: rules.SourceTypeInternal,
							List: "divine_orders",
						},
					},
				},
				"Spellcasting": {
					Description: "You know {cantrips_known} cantrips and can prepare {prepared_spells} spells.",
					Scaling: map[string][]rules.Breakpoint{
						"cantrips_known": {
							{MinLevel: 1, Value: "three"},
							{MinLevel: 4, Value: "four"},
							{MinLevel: 10, Value: "five"},
						},
						"prepared_spells": {
							{MinLevel: 1, Value: "four"},
							{MinLevel: 2, Value: "five"},
							{MinLevel: 5, Value: "nine"},
							{MinLevel: 9, Value: "fourteen"},
						},
					},
				},
			},
			2: {
				"Channel Divinity": {
					Description: "You can channel divine energy {channel_uses} per rest.",
					Scaling: map[string][]rules.Breakpoint{
						"channel_uses": {
							{MinLevel: 2, Value: "once"},
							{MinLevel: 6, Value: "twice"},
							{MinLevel: 18, Value: "three times"},
						},
					},
				},
			},
			5: {
				"Sear Undead": {
					Description: "Your Turn Undead sears the walking dead.",
				},
			},
		},
		Lists: map[string]rules.OptionList{
			"divine_orders": {
				"Protector": {
					Description: "Trained for battle, you gain heavier arms.",
					Effects: []*rules.Effect{
						{Kind: rules.EffectGrantWeaponProficiency, Proficiencies: []string{"Martial Weapons"}},
						{Kind: rules.EffectGrantArmorProficiency, Proficiencies: []string{"Heavy Armor"}},
					},
				},
				"Thaumaturge": {
					Description: "You know an extra cantrip and your lore deepens.",
					Effects: []*rules.Effect{
						{Kind: rules.EffectGrantCantripChoice, Count: 1, SpellList: "Cleric"},
						{Kind: rules.EffectAbilityBonus, Ability: "wisdom", Skills: []string{"Arcana", "Religion"}, Minimum: 1},
					},
				},
			},
		},
	}
}

// NewTestLifeDomain builds a cleric subclass document
func NewTestLifeDomain() *rules.Document {
	return &rules.Document{
		Name:        "Life Domain",
		ParentClass: "Cleric",
		Description: "The Life Domain focuses on the positive energy that sustains all life.",
		FeaturesByLevel: map[int]map[string]*rules.Feature{
			3: {
				"Disciple of Life": {
					Description: "Your healing spells are empowered.",
					Effects: []*rules.Effect{
						{Kind: rules.EffectBonusHitPoints, Value: 1, Scaling: rules.ScalingModePerLevel},
					},
				},
				"Life Domain Spells": {
					Description: "You always have certain spells prepared.",
					Effects: []*rules.Effect{
						{Kind: rules.EffectGrantSpell, Spell: "Bless", SpellLevel: 1},
						{Kind: rules.EffectGrantSpell, Spell: "Cure Wounds", SpellLevel: 1},
					},
				},
			},
		},
	}
}

// NewTestClericSpells builds the cleric spell-list document
func NewTestClericSpells() *rules.Document {
	return &rules.Document{
		Name: "Cleric",
		Cantrips: map[string]*rules.SpellDef{
			"Guidance":     {Level: 0, CastingTime: "action", Description: "Bolster an ability check."},
			"Light":        {Level: 0, CastingTime: "action", Description: "Make an object shed bright light."},
			"Sacred Flame": {Level: 0, CastingTime: "action", Description: "Radiant flame descends on a creature."},
			"Thaumaturgy":  {Level: 0, CastingTime: "action", Description: "Manifest a minor wonder."},
		},
		Spells: map[string]*rules.SpellDef{
			"Bless":        {Level: 1, CastingTime: "action", Description: "Bless up to three creatures."},
			"Cure Wounds":  {Level: 1, CastingTime: "action", Description: "Restore hit points by touch."},
			"Healing Word": {Level: 1, CastingTime: "bonus action", Description: "Heal a creature at range."},
			"Aid":          {Level: 2, CastingTime: "action", Description: "Bolster up to three creatures."},
		},
	}
}

// NewTestDeepGnome builds a species with darkvision and a level-gated
// spell grant
func NewTestDeepGnome() *rules.Document {
	return &rules.Document{
		Name:  "Deep Gnome",
		Speed: 30,
		Traits: map[string]*rules.Feature{
			"Darkvision": {
				Description: "You can see in dim light within 120 feet.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantDarkvision, Range: 120},
				},
			},
			"Gnomish Magic": {
				Description: "You know Minor Illusion. At level 3 you learn Detect Magic.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantCantrip, Spell: "Minor Illusion"},
					{Kind: rules.EffectGrantSpell, Spell: "Detect Magic", SpellLevel: 1, MinLevel: 3, OncePerDay: true},
				},
			},
			"Gnomish Cunning": {
				Description: "You have advantage on Intelligence, Wisdom, and Charisma saves.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantSaveAdvantage, Ability: "intelligence"},
					{Kind: rules.EffectGrantSaveAdvantage, Ability: "wisdom"},
					{Kind: rules.EffectGrantSaveAdvantage, Ability: "charisma"},
				},
			},
		},
	}
}

// NewTestHuman builds a species with a skill pick and an extra language
func NewTestHuman() *rules.Document {
	return &rules.Document{
		Name:  "Human",
		Speed: 30,
		Traits: map[string]*rules.Feature{
			"Resourceful": {
				Description: "You regain Heroic Inspiration on a long rest.",
			},
			"Skillful": {
				Description: "You gain proficiency in one skill of your choice.",
				Choice: &rules.ChoiceDecl{
					Key:    "human_skill",
					Prompt: "Choose a skill",
					Type:   rules.ChoiceTypeSelectSingle,
					Source: &rules.SourceRef{
						Type:    rules.SourceTypeFixedList,
						Options: []string{"Athletics", "Insight", "Perception", "Stealth"},
					},
					Grants: rules.EffectGrantSkillProficiency,
				},
			},
			"Versatile Tongue": {
				Description: "You speak one extra language.",
				Choice: &rules.ChoiceDecl{
					Key:    "human_language",
					Prompt: "Choose a language",
					Type:   rules.ChoiceTypeSelectSingle,
					Source: &rules.SourceRef{
						Type:    rules.SourceTypeFixedList,
						Options: []string{"Dwarvish", "Elvish", "Halfling"},
					},
					Grants: rules.EffectGrantLanguage,
				},
			},
		},
	}
}

// NewTestDrowDescent builds a lineage with spells that unlock by level
func NewTestDrowDescent() *rules.Document {
	return &rules.Document{
		Name: "Drow Descent",
		Traits: map[string]*rules.Feature{
			"Superior Darkvision": {
				Description: "Your darkvision extends to 120 feet.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantDarkvision, Range: 120},
				},
			},
			"Drow Magic": {
				Description: "You know Dancing Lights. At level 3 you learn Faerie Fire.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantCantrip, Spell: "Dancing Lights"},
					{Kind: rules.EffectGrantSpell, Spell: "Faerie Fire", SpellLevel: 1, MinLevel: 3, OncePerDay: true},
				},
			},
		},
	}
}

// NewTestAcolyte builds a background with fixed skill grants and a
// language pick
func NewTestAcolyte() *rules.Document {
	return &rules.Document{
		Name: "Acolyte",
		Traits: map[string]*rules.Feature{
			"Acolyte Training": {
				Description: "Your temple service taught you insight and doctrine.",
				Effects: []*rules.Effect{
					{Kind: rules.EffectGrantSkillProficiency, Skills: []string{"Insight", "Religion"}},
					{Kind: rules.EffectGrantToolProficiency, Proficiencies: []string{"Calligrapher's Supplies"}},
				},
			},
			"Temple Languages": {
				Description: "You learned two liturgical languages.",
				Choice: &rules.ChoiceDecl{
					Key:    "acolyte_languages",
					Prompt: "Choose two languages",
					Type:   rules.ChoiceTypeSelectMultiple,
					Count:  2,
					Source: &rules.SourceRef{
						Type:    rules.SourceTypeFixedList,
						Options: []string{"Celestial", "Dwarvish", "Elvish", "Infernal"},
					},
					Grants: rules.EffectGrantLanguage,
				},
			},
		},
	}
}
