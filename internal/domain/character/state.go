package character

import (
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// ProficiencyType categorizes proficiency grants
type ProficiencyType string

const (
	ProficiencySkill       ProficiencyType = "skill"
	ProficiencyWeapon      ProficiencyType = "weapon"
	ProficiencyArmor       ProficiencyType = "armor"
	ProficiencyTool        ProficiencyType = "tool"
	ProficiencySavingThrow ProficiencyType = "saving_throw"
	ProficiencyExpertise   ProficiencyType = "expertise"
)

// ProficiencyTypes lists the grant collections in a fixed order
var ProficiencyTypes = []ProficiencyType{
	ProficiencySkill,
	ProficiencyWeapon,
	ProficiencyArmor,
	ProficiencyTool,
	ProficiencySavingThrow,
	ProficiencyExpertise,
}

// Grants is a deduplicated grant set with provenance: name -> granting
// source. The first source to grant a name keeps it; later grants from a
// different source surface as a duplicate-grant warning instead.
type Grants map[string]string

// Has reports whether the grant set contains a name
func (g Grants) Has(name string) bool {
	_, ok := g[name]
	return ok
}

// Provenance records which feature granted an effect, so it can be
// located and undone later without guessing
type Provenance struct {
	Category     string `json:"category"`
	Feature      string `json:"feature"`
	ChoiceKey    string `json:"choice_key,omitempty"`
	ParentOption string `json:"parent_option,omitempty"`
}

// AppliedEffect is one log entry: the effect as written in rule data
// plus where it came from. The log is the source of truth for every
// derived collection on the state.
type AppliedEffect struct {
	Effect     *rules.Effect `json:"effect"`
	Provenance Provenance    `json:"provenance"`
}

// SpellGrant records a granted spell or cantrip with its metadata
type SpellGrant struct {
	Level              int    `json:"level"`
	CastingTime        string `json:"casting_time,omitempty"`
	Source             string `json:"source"`
	AlwaysPrepared     bool   `json:"always_prepared"`
	OncePerDay         bool   `json:"once_per_day,omitempty"`
	CountsAgainstLimit bool   `json:"counts_against_limit,omitempty"`
	MinLevel           int    `json:"min_level,omitempty"`
}

// SaveAdvantage records advantage on a saving throw, optionally scoped
// to a named condition
type SaveAdvantage struct {
	Ability   string `json:"ability"`
	Condition string `json:"condition,omitempty"`
	Source    string `json:"source"`
}

// ConditionalBonus is a bonus to AC, attack, or damage gated on an
// equipped-item predicate. The predicate is evaluated lazily at
// stat-computation time, never baked into state.
type ConditionalBonus struct {
	Target string               `json:"target"`
	Value  int                  `json:"value"`
	When   *rules.ItemPredicate `json:"when,omitempty"`
	Source string               `json:"source"`
}

// AbilityBonus is a dynamic bonus derived from an ability modifier with
// an optional floor, e.g. "add your Wisdom modifier (minimum +1)"
type AbilityBonus struct {
	Ability string   `json:"ability"`
	Skills  []string `json:"skills,omitempty"`
	Value   int      `json:"value,omitempty"`
	Minimum int      `json:"minimum,omitempty"`
	Source  string   `json:"source"`
}

// HPBonus is a flat or per-level hit point bonus
type HPBonus struct {
	Value   int               `json:"value"`
	Scaling rules.ScalingMode `json:"scaling,omitempty"`
	Source  string            `json:"source"`
}

// Total returns the bonus at the given level. Per-level bonuses are
// recomputed from the level rather than accumulated per level-up.
func (b HPBonus) Total(level int) int {
	if b.Scaling == rules.ScalingModePerLevel {
		return b.Value * level
	}
	return b.Value
}

// FeatureRef is a display entry for a granted feature
type FeatureRef struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	Level       int    `json:"level,omitempty"`
}

// OptionDescriptor is one selectable option with a stable identifier
// and human-readable description
type OptionDescriptor struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ParentRef ties a nested choice to the option that revealed it
type ParentRef struct {
	ChoiceKey string `json:"choice_key"`
	Option    string `json:"option"`
}

// PendingChoice is a choice awaiting a decision, with its resolved
// option list and multiplicity constraints ready to render as a form
type PendingChoice struct {
	Key            string             `json:"key"`
	Prompt         string             `json:"prompt,omitempty"`
	Type           rules.ChoiceType   `json:"type"`
	Count          int                `json:"count"`
	Required       bool               `json:"required"`
	Options        []OptionDescriptor `json:"options,omitempty"`
	Parent         *ParentRef         `json:"parent,omitempty"`
	SourceCategory string             `json:"source_category,omitempty"`
	SourceFeature  string             `json:"source_feature,omitempty"`
}

// WarningKind categorizes non-fatal build diagnostics
type WarningKind string

const (
	WarningUnknownEffect  WarningKind = "unknown_effect"
	WarningDuplicateGrant WarningKind = "duplicate_grant"
)

// Warning is collected on the state instead of interrupting the build
type Warning struct {
	Kind        WarningKind `json:"kind"`
	Message     string      `json:"message"`
	Grant       string      `json:"grant,omitempty"`
	Source      string      `json:"source,omitempty"`
	PriorSource string      `json:"prior_source,omitempty"`
}

// State is the accumulating character document. It is owned exclusively
// by the build orchestrator and mutated only through effect application.
type State struct {
	ID    string `json:"id,omitempty"`
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name,omitempty"`

	Species    string `json:"species,omitempty"`
	Lineage    string `json:"lineage,omitempty"`
	Class      string `json:"class,omitempty"`
	Subclass   string `json:"subclass,omitempty"`
	Background string `json:"background,omitempty"`
	Level      int    `json:"level"`

	Abilities map[string]int `json:"abilities,omitempty"`

	// Speed is the base walking speed from the species document;
	// SpeedBonus below accumulates increase_speed effects on top
	Speed int `json:"speed,omitempty"`

	Proficiencies       map[ProficiencyType]Grants `json:"proficiencies"`
	Languages           Grants                     `json:"languages"`
	Resistances         Grants                     `json:"resistances"`
	DamageImmunities    Grants                     `json:"damage_immunities"`
	ConditionImmunities Grants                     `json:"condition_immunities"`

	Spells map[string]*SpellGrant `json:"spells"`

	Darkvision         int                `json:"darkvision,omitempty"`
	SpeedBonus         int                `json:"speed_bonus,omitempty"`
	HPBonuses          []HPBonus          `json:"hp_bonuses,omitempty"`
	SaveAdvantages     []SaveAdvantage    `json:"save_advantages,omitempty"`
	ConditionalBonuses []ConditionalBonus `json:"conditional_bonuses,omitempty"`
	AbilityBonuses     []AbilityBonus     `json:"ability_bonuses,omitempty"`

	Features []*FeatureRef `json:"features,omitempty"`

	// AppliedEffects is the provenance log. Derived collections above
	// are a pure fold of this log at the current level.
	AppliedEffects []*AppliedEffect `json:"applied_effects"`

	ChoicesMade    map[string]ChoiceValue `json:"choices_made"`
	PendingChoices []*PendingChoice       `json:"pending_choices"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// NewState creates an empty character state for a fresh build session
func NewState() *State {
	s := &State{
		Level:       1,
		Abilities:   make(map[string]int),
		Spells:      make(map[string]*SpellGrant),
		ChoicesMade: make(map[string]ChoiceValue),
	}
	s.resetDerived()
	return s
}

// resetDerived clears every collection that is derived from the
// applied-effect log, ahead of a replay
func (s *State) resetDerived() {
	s.Proficiencies = make(map[ProficiencyType]Grants, len(ProficiencyTypes))
	for _, pt := range ProficiencyTypes {
		s.Proficiencies[pt] = make(Grants)
	}
	s.Languages = make(Grants)
	s.Resistances = make(Grants)
	s.DamageImmunities = make(Grants)
	s.ConditionImmunities = make(Grants)
	s.Spells = make(map[string]*SpellGrant)
	s.Darkvision = 0
	s.SpeedBonus = 0
	s.HPBonuses = nil
	s.SaveAdvantages = nil
	s.ConditionalBonuses = nil
	s.AbilityBonuses = nil
	s.Warnings = nil
}

// ResetDerived clears derived collections ahead of a log replay
func (s *State) ResetDerived() {
	s.resetDerived()
}

// AddGrant adds a name to a grant set, deduplicating at the set level.
// A duplicate grant from a different source records a duplicate-grant
// warning and keeps the original; the correct substitution policy is an
// open rules question, so nothing is auto-resolved.
func (s *State) AddGrant(grants Grants, name, source string) bool {
	prior, exists := grants[name]
	if !exists {
		grants[name] = source
		return true
	}

	if prior != source {
		s.Warnings = append(s.Warnings, Warning{
			Kind:        WarningDuplicateGrant,
			Message:     "'" + name + "' granted by " + source + " duplicates the grant from " + prior,
			Grant:       name,
			Source:      source,
			PriorSource: prior,
		})
	}
	return false
}

// AbilityModifier returns the modifier for an ability score
func (s *State) AbilityModifier(ability string) int {
	score, ok := s.Abilities[ability]
	if !ok {
		return 0
	}
	// Floor division, correct for scores below 10
	mod := score - 10
	if mod < 0 {
		return -((-mod + 1) / 2)
	}
	return mod / 2
}

// ProficiencyBonus returns the proficiency bonus for the current level
func (s *State) ProficiencyBonus() int {
	switch {
	case s.Level >= 17:
		return 6
	case s.Level >= 13:
		return 5
	case s.Level >= 9:
		return 4
	case s.Level >= 5:
		return 3
	default:
		return 2
	}
}

// TotalHPBonus sums flat and per-level hit point bonuses at the current
// level
func (s *State) TotalHPBonus() int {
	total := 0
	for _, bonus := range s.HPBonuses {
		total += bonus.Total(s.Level)
	}
	return total
}

// PendingChoice returns the pending choice with the given key
func (s *State) PendingChoice(key string) *PendingChoice {
	for _, choice := range s.PendingChoices {
		if choice.Key == key {
			return choice
		}
	}
	return nil
}

// IsComplete reports whether the build has no required pending choices
// left and the core selections are made
func (s *State) IsComplete() bool {
	if s.Species == "" || s.Class == "" || s.Background == "" || len(s.Abilities) == 0 {
		return false
	}
	for _, choice := range s.PendingChoices {
		if choice.Required {
			return false
		}
	}
	return true
}
