package rules

// Category identifies a rule document collection
type Category string

const (
	CategorySpecies    Category = "species"
	CategoryLineage    Category = "lineage"
	CategoryClass      Category = "class"
	CategorySubclass   Category = "subclass"
	CategoryBackground Category = "background"
	CategoryFeat       Category = "feat"
	CategorySpellList  Category = "spell_list"
	CategoryOptionList Category = "option_list"
)

// Categories lists every document collection a ruleset may provide
var Categories = []Category{
	CategorySpecies,
	CategoryLineage,
	CategoryClass,
	CategorySubclass,
	CategoryBackground,
	CategoryFeat,
	CategorySpellList,
	CategoryOptionList,
}

// EffectKind discriminates the closed effect vocabulary
type EffectKind string

const (
	EffectUnset                  EffectKind = ""
	EffectGrantCantrip           EffectKind = "grant_cantrip"
	EffectGrantCantripChoice     EffectKind = "grant_cantrip_choice"
	EffectGrantSpell             EffectKind = "grant_spell"
	EffectGrantWeaponProficiency EffectKind = "grant_weapon_proficiency"
	EffectGrantArmorProficiency  EffectKind = "grant_armor_proficiency"
	EffectGrantSkillProficiency  EffectKind = "grant_skill_proficiency"
	EffectGrantToolProficiency   EffectKind = "grant_tool_proficiency"
	EffectGrantLanguage          EffectKind = "grant_language"
	EffectGrantExpertise         EffectKind = "grant_expertise"
	EffectGrantSaveProficiency   EffectKind = "grant_save_proficiency"
	EffectGrantSaveAdvantage     EffectKind = "grant_save_advantage"
	EffectGrantDamageResistance  EffectKind = "grant_damage_resistance"
	EffectGrantDamageImmunity    EffectKind = "grant_damage_immunity"
	EffectGrantConditionImmunity EffectKind = "grant_condition_immunity"
	EffectBonusHitPoints         EffectKind = "bonus_hit_points"
	EffectConditionalBonus       EffectKind = "conditional_bonus"
	EffectAbilityBonus           EffectKind = "ability_bonus"
	EffectGrantDarkvision        EffectKind = "grant_darkvision"
	EffectIncreaseSpeed          EffectKind = "increase_speed"
)

// ScalingMode controls how a numeric effect grows with level
type ScalingMode string

const (
	ScalingModeFlat     ScalingMode = ""
	ScalingModePerLevel ScalingMode = "per_level"
)

// ItemPredicate is a simple property check against equipped items.
// It is stored with the effect and evaluated lazily at stat-computation
// time, never baked into state.
type ItemPredicate struct {
	Property string `json:"property" yaml:"property"`
	Negate   bool   `json:"negate,omitempty" yaml:"negate,omitempty"`
}

// Effect is one tagged rule operation. Effects are immutable rule data;
// the processor interprets them by Kind, it never subclasses them. Only
// the fields relevant to a given Kind are set.
type Effect struct {
	Kind EffectKind `json:"kind" yaml:"kind"`

	// Spell grants
	Spell              string `json:"spell,omitempty" yaml:"spell,omitempty"`
	SpellLevel         int    `json:"spell_level,omitempty" yaml:"spell_level,omitempty"`
	MinLevel           int    `json:"min_level,omitempty" yaml:"min_level,omitempty"`
	CountsAgainstLimit bool   `json:"counts_against_limit,omitempty" yaml:"counts_against_limit,omitempty"`
	OncePerDay         bool   `json:"once_per_day,omitempty" yaml:"once_per_day,omitempty"`
	CastingTime        string `json:"casting_time,omitempty" yaml:"casting_time,omitempty"`
	SpellList          string `json:"spell_list,omitempty" yaml:"spell_list,omitempty"`
	Count              int    `json:"count,omitempty" yaml:"count,omitempty"`

	// Proficiency and language grants
	Proficiencies []string `json:"proficiencies,omitempty" yaml:"proficiencies,omitempty"`
	Skills        []string `json:"skills,omitempty" yaml:"skills,omitempty"`
	Languages     []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	// Saves, resistances, immunities
	Ability    string `json:"ability,omitempty" yaml:"ability,omitempty"`
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
	DamageType string `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`

	// Numeric effects
	Value   int            `json:"value,omitempty" yaml:"value,omitempty"`
	Minimum int            `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Range   int            `json:"range,omitempty" yaml:"range,omitempty"`
	Scaling ScalingMode    `json:"scaling,omitempty" yaml:"scaling,omitempty"`
	Target  string         `json:"target,omitempty" yaml:"target,omitempty"`
	When    *ItemPredicate `json:"when,omitempty" yaml:"when,omitempty"`
}

// ChoiceType declares how many selections a choice accepts
type ChoiceType string

const (
	ChoiceTypeSelectSingle    ChoiceType = "select_single"
	ChoiceTypeSelectMultiple  ChoiceType = "select_multiple"
	ChoiceTypeSelectOrReplace ChoiceType = "select_or_replace"
)

// SourceType identifies where a choice's options come from
type SourceType string

const (
	SourceTypeInternal        SourceType = "internal"
	SourceTypeExternalStatic  SourceType = "external_static"
	SourceTypeExternalDynamic SourceType = "external_dynamic"
	SourceTypeFixedList       SourceType = "fixed_list"
	SourceTypeComputed        SourceType = "computed"
)

// ComputeKind selects which part of the character state a computed
// source enumerates
type ComputeKind string

const (
	ComputeSkillProficiencies ComputeKind = "skill_proficiencies"
	ComputeKnownSpells        ComputeKind = "known_spells"
)

// ComputeFilter narrows a computed source with simple attribute predicates
type ComputeFilter struct {
	MaxSpellLevel *int   `json:"max_spell_level,omitempty" yaml:"max_spell_level,omitempty"`
	CastingTime   string `json:"casting_time,omitempty" yaml:"casting_time,omitempty"`
}

// SourceRef describes where to find a choice's options
type SourceRef struct {
	Type SourceType `json:"type" yaml:"type"`

	// internal / external_static / external_dynamic: named list to read
	List string `json:"list,omitempty" yaml:"list,omitempty"`

	// external_static: the document holding the list
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
	Document string   `json:"document,omitempty" yaml:"document,omitempty"`

	// external_dynamic: document name templated by a prior choice,
	// e.g. template "{class}" with depends_on "class"
	DocumentTemplate string `json:"document_template,omitempty" yaml:"document_template,omitempty"`
	DependsOn        string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// fixed_list: inline literal options
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`

	// computed: derived from current character state
	Compute ComputeKind    `json:"compute,omitempty" yaml:"compute,omitempty"`
	Filter  *ComputeFilter `json:"filter,omitempty" yaml:"filter,omitempty"`
}

// ChoiceDecl declares a point of required player input
type ChoiceDecl struct {
	Key      string     `json:"key" yaml:"key"`
	Prompt   string     `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Type     ChoiceType `json:"type" yaml:"type"`
	Count    int        `json:"count,omitempty" yaml:"count,omitempty"`
	Optional bool       `json:"optional,omitempty" yaml:"optional,omitempty"`
	Source   *SourceRef `json:"source" yaml:"source"`

	// Grants names the effect kind synthesized for each selected value
	// when the options carry no definitions of their own, e.g. a skill
	// pick declares grant_skill_proficiency and each selection becomes
	// one such effect.
	Grants EffectKind `json:"grants,omitempty" yaml:"grants,omitempty"`
}

// RequiredCount returns how many selections the choice expects
func (c *ChoiceDecl) RequiredCount() int {
	if c.Count > 0 {
		return c.Count
	}
	return 1
}

// Breakpoint is one level-keyed scaling entry
type Breakpoint struct {
	MinLevel int    `json:"min_level" yaml:"min_level"`
	Value    string `json:"value" yaml:"value"`
}

// Feature is a named unit of rule text with optional effects, an
// optional choice declaration, and an optional scaling table keyed by
// placeholder name.
type Feature struct {
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Effects     []*Effect               `json:"effects,omitempty" yaml:"effects,omitempty"`
	Choice      *ChoiceDecl             `json:"choice,omitempty" yaml:"choice,omitempty"`
	Scaling     map[string][]Breakpoint `json:"scaling,omitempty" yaml:"scaling,omitempty"`
}

// OptionDef is one selectable option within a named list. An option may
// carry its own effects and may declare a further choice that only
// becomes pending while this option remains selected.
type OptionDef struct {
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Effects     []*Effect               `json:"effects,omitempty" yaml:"effects,omitempty"`
	Choice      *ChoiceDecl             `json:"choice,omitempty" yaml:"choice,omitempty"`
	Scaling     map[string][]Breakpoint `json:"scaling,omitempty" yaml:"scaling,omitempty"`
}

// OptionList is a named list of selectable options
type OptionList map[string]*OptionDef

// SpellDef carries the spell attributes the engine needs for grants and
// computed-source filtering
type SpellDef struct {
	Level       int    `json:"level" yaml:"level"`
	CastingTime string `json:"casting_time,omitempty" yaml:"casting_time,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Document is one nested rule document as supplied by the repository.
// Not every field is populated for every category.
type Document struct {
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"-" yaml:"-"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`

	// Class documents
	SavingThrows        []string    `json:"saving_throws,omitempty" yaml:"saving_throws,omitempty"`
	ArmorProficiencies  []string    `json:"armor_proficiencies,omitempty" yaml:"armor_proficiencies,omitempty"`
	WeaponProficiencies []string    `json:"weapon_proficiencies,omitempty" yaml:"weapon_proficiencies,omitempty"`
	SkillChoice         *ChoiceDecl `json:"skill_choice,omitempty" yaml:"skill_choice,omitempty"`
	SubclassLevel       int         `json:"subclass_level,omitempty" yaml:"subclass_level,omitempty"`
	ParentClass         string      `json:"class,omitempty" yaml:"class,omitempty"`

	// Species documents
	Speed int `json:"speed,omitempty" yaml:"speed,omitempty"`

	// Class/subclass features keyed by the level that unlocks them
	FeaturesByLevel map[int]map[string]*Feature `json:"features_by_level,omitempty" yaml:"features_by_level,omitempty"`

	// Species/lineage/background features
	Traits map[string]*Feature `json:"traits,omitempty" yaml:"traits,omitempty"`

	// Named option lists co-located with the document (internal sources)
	Lists map[string]OptionList `json:"lists,omitempty" yaml:"lists,omitempty"`

	// Spell-list documents
	Cantrips map[string]*SpellDef `json:"cantrips,omitempty" yaml:"cantrips,omitempty"`
	Spells   map[string]*SpellDef `json:"spells,omitempty" yaml:"spells,omitempty"`
}

// List returns a named option list from the document
func (d *Document) List(name string) (OptionList, bool) {
	if d == nil || d.Lists == nil {
		return nil, false
	}
	list, ok := d.Lists[name]
	return list, ok
}

// FeaturesUpToLevel returns class/subclass features unlocked at or below
// the given level, paired with the level that unlocks them
func (d *Document) FeaturesUpToLevel(level int) map[string]LeveledFeature {
	result := make(map[string]LeveledFeature)
	for featLevel, features := range d.FeaturesByLevel {
		if featLevel > level {
			continue
		}
		for name, feature := range features {
			result[name] = LeveledFeature{Level: featLevel, Feature: feature}
		}
	}
	return result
}

// LeveledFeature pairs a feature with the level that unlocks it
type LeveledFeature struct {
	Level   int
	Feature *Feature
}
