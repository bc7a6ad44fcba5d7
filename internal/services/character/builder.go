package character

import (
	"context"
	"sort"
	"strconv"
	"strings"

	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// Core choice keys handled by the builder itself rather than by rule
// data. They are applied in this order when batched.
var coreChoiceKeys = []string{
	"name",
	"level",
	"species",
	"lineage",
	"class",
	"subclass",
	"background",
	"abilities",
}

func isCoreChoice(key string) bool {
	for _, core := range coreChoiceKeys {
		if core == key {
			return true
		}
	}
	return false
}

// Builder owns one character build session. Every mutation is staged on
// a clone of the state and committed only when the whole operation
// succeeds, so a failed apply leaves the build exactly as it was.
//
// Rather than patching derived state incrementally, the builder
// recomputes the build from its inputs (core selections, level, made
// choices) after every change. Removing a choice, swapping a class, or
// changing level all reduce to the same replay, which keeps effect
// reversal exact.
type Builder struct {
	repository rules.Repository
	resolver   ChoiceResolver
	state      *domain.State
}

// BuilderConfig holds dependencies for a build session
type BuilderConfig struct {
	Repository rules.Repository
	// Resolver is optional; the default repository-backed resolver is
	// used when nil
	Resolver ChoiceResolver
	// State is optional; a fresh level-1 state is used when nil
	State *domain.State
}

// NewBuilder creates a build session
func NewBuilder(cfg *BuilderConfig) (*Builder, error) {
	if cfg == nil || cfg.Repository == nil {
		return nil, engerr.InvalidArgument("rules repository is required")
	}

	resolver := cfg.Resolver
	if resolver == nil {
		var err error
		resolver, err = NewChoiceResolver(&ChoiceResolverConfig{Repository: cfg.Repository})
		if err != nil {
			return nil, err
		}
	}

	state := cfg.State
	if state == nil {
		state = domain.NewState()
	}

	return &Builder{
		repository: cfg.Repository,
		resolver:   resolver,
		state:      state,
	}, nil
}

// NewBuilderFromSnapshot restores a build session from serialized state
func NewBuilderFromSnapshot(cfg *BuilderConfig, data []byte) (*Builder, error) {
	state, err := domain.FromSnapshot(data)
	if err != nil {
		return nil, err
	}

	restored := *cfg
	restored.State = state
	return NewBuilder(&restored)
}

// State returns the current character state. Callers must treat it as
// read-only; all mutation goes through ApplyChoice.
func (b *Builder) State() *domain.State {
	return b.state
}

// Snapshot serializes the current state
func (b *Builder) Snapshot() ([]byte, error) {
	return b.state.Snapshot()
}

// IsComplete reports whether every required choice has been made
func (b *Builder) IsComplete() bool {
	return b.state.IsComplete()
}

// PendingChoices returns the choices still awaiting a decision
func (b *Builder) PendingChoices() []*domain.PendingChoice {
	return b.state.PendingChoices
}

// FeatureText returns the display text of a granted feature with its
// scaling placeholders resolved at the current level
func (b *Builder) FeatureText(name string) (string, bool) {
	for _, feature := range b.state.Features {
		if feature.Name == name || strings.HasPrefix(feature.Name, name+": ") {
			return feature.Description, true
		}
	}
	return "", false
}

// Refresh recomputes the build without changing any input, populating
// pending choices and derived state for a fresh or restored session
func (b *Builder) Refresh(ctx context.Context) error {
	work, err := b.state.Clone()
	if err != nil {
		return err
	}
	if _, err := b.rebuild(ctx, work); err != nil {
		return err
	}
	b.state = work
	return nil
}

// ApplyChoice applies one choice to the build. The choice is validated
// and the whole build recomputed on a staged copy; on any error the
// committed state is untouched.
func (b *Builder) ApplyChoice(ctx context.Context, key string, value domain.ChoiceValue) error {
	work, err := b.state.Clone()
	if err != nil {
		return err
	}

	if isCoreChoice(key) {
		if err := b.applyCore(ctx, work, key, value); err != nil {
			return err
		}
	} else {
		if value.IsZero() {
			return engerr.Validationf("choice '%s' requires at least one selection", key)
		}
		work.ChoicesMade[key] = value
	}

	pruned, err := b.rebuild(ctx, work)
	if err != nil {
		return err
	}
	if !isCoreChoice(key) && contains(pruned, key) {
		return engerr.Validationf("choice '%s' is not available on this build", key).
			WithMeta("choice", key)
	}

	b.state = work
	return nil
}

// ApplyChoices applies a batch of choices in dependency order. The
// batch is atomic and yields the same state as applying each choice
// one at a time: the result depends only on the final inputs.
func (b *Builder) ApplyChoices(ctx context.Context, choices map[string]domain.ChoiceValue) error {
	work, err := b.state.Clone()
	if err != nil {
		return err
	}

	for _, key := range coreChoiceKeys {
		value, ok := choices[key]
		if !ok {
			continue
		}
		if err := b.applyCore(ctx, work, key, value); err != nil {
			return err
		}
	}

	staged := make([]string, 0, len(choices))
	for key, value := range choices {
		if isCoreChoice(key) {
			continue
		}
		if value.IsZero() {
			return engerr.Validationf("choice '%s' requires at least one selection", key)
		}
		work.ChoicesMade[key] = value
		staged = append(staged, key)
	}
	sort.Strings(staged)

	pruned, err := b.rebuild(ctx, work)
	if err != nil {
		return err
	}
	for _, key := range staged {
		if contains(pruned, key) {
			return engerr.Validationf("choice '%s' is not available on this build", key).
				WithMeta("choice", key)
		}
	}

	b.state = work
	return nil
}

// applyCore sets one of the builder-managed selections, validating the
// referenced document exists before accepting it
func (b *Builder) applyCore(ctx context.Context, st *domain.State, key string, value domain.ChoiceValue) error {
	switch key {
	case "name":
		st.Name = value.Single()

	case "level":
		level, err := strconv.Atoi(value.Single())
		if err != nil || level < 1 || level > 20 {
			return engerr.Validationf("level must be a number between 1 and 20, got '%s'", value.Single())
		}
		st.Level = level

	case "species":
		name := value.Single()
		if _, err := b.repository.GetDocument(ctx, rules.CategorySpecies, name); err != nil {
			return err
		}
		if st.Species != name {
			// A lineage belongs to its species; it cannot survive a swap
			st.Lineage = ""
		}
		st.Species = name

	case "lineage":
		if st.Species == "" {
			return engerr.Validation("a species must be selected before a lineage")
		}
		name := value.Single()
		if _, err := b.repository.GetDocument(ctx, rules.CategoryLineage, name); err != nil {
			return err
		}
		st.Lineage = name

	case "class":
		name := value.Single()
		if _, err := b.repository.GetDocument(ctx, rules.CategoryClass, name); err != nil {
			return err
		}
		if st.Class != name {
			st.Subclass = ""
		}
		st.Class = name

	case "subclass":
		if st.Class == "" {
			return engerr.Validation("a class must be selected before a subclass")
		}
		name := value.Single()
		doc, err := b.repository.GetDocument(ctx, rules.CategorySubclass, name)
		if err != nil {
			return err
		}
		if doc.ParentClass != "" && doc.ParentClass != st.Class {
			return engerr.Validationf("subclass '%s' belongs to class '%s', not '%s'", name, doc.ParentClass, st.Class)
		}
		st.Subclass = name

	case "background":
		name := value.Single()
		if _, err := b.repository.GetDocument(ctx, rules.CategoryBackground, name); err != nil {
			return err
		}
		st.Background = name

	case "abilities":
		abilities, err := parseAbilities(value)
		if err != nil {
			return err
		}
		st.Abilities = abilities
	}

	return nil
}

// parseAbilities reads "ability=score" pairs
func parseAbilities(value domain.ChoiceValue) (map[string]int, error) {
	abilities := make(map[string]int, len(value.Values()))
	for _, pair := range value.Values() {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, engerr.Validationf("ability assignment '%s' must look like 'strength=15'", pair)
		}
		score, err := strconv.Atoi(raw)
		if err != nil || score < 1 || score > 30 {
			return nil, engerr.Validationf("ability score '%s' must be a number between 1 and 30", raw)
		}
		abilities[strings.ToLower(strings.TrimSpace(name))] = score
	}
	return abilities, nil
}

// declContext is one reachable choice declaration with everything
// needed to resolve and apply it
type declContext struct {
	decl     *rules.ChoiceDecl
	docs     []*rules.Document
	category string
	feature  string
	parent   *domain.ParentRef
	// template is the grant_*_choice effect that synthesized this
	// declaration, carrying grant metadata for the selections
	template *rules.Effect
}

// buildDocs holds the loaded core documents for one rebuild pass
type buildDocs struct {
	species    *rules.Document
	lineage    *rules.Document
	class      *rules.Document
	subclass   *rules.Document
	background *rules.Document
}

// rebuild recomputes the applied-effect log, the derived collections,
// the feature list, and the pending choices from the build's inputs.
// It returns the keys of made choices whose declarations no longer
// exist, after removing them; a changed parent selection cascades to
// its nested choices this way.
func (b *Builder) rebuild(ctx context.Context, st *domain.State) ([]string, error) {
	docs, err := b.loadDocs(ctx, st)
	if err != nil {
		return nil, err
	}

	st.AppliedEffects = nil
	st.Features = nil
	st.Speed = 0
	if docs.species != nil {
		st.Speed = docs.species.Speed
	}

	decls := make(map[string]*declContext)

	b.appendTraits(st, docs.species, "species", decls)
	b.appendTraits(st, docs.lineage, "lineage", decls)
	b.appendClass(st, docs, decls)
	b.appendLeveledFeatures(st, docs.subclass, "subclass", searchDocs(docs.subclass, docs.class), decls)
	b.appendTraits(st, docs.background, "background", decls)

	if err := b.applyMadeChoices(ctx, st, decls); err != nil {
		return nil, err
	}

	pruned := pruneStaleChoices(st, decls)

	Replay(st)

	if err := b.derivePending(ctx, st, docs, decls); err != nil {
		return nil, err
	}

	return pruned, nil
}

// loadDocs fetches the documents behind the core selections. A missing
// document aborts the rebuild with a data-integrity error.
func (b *Builder) loadDocs(ctx context.Context, st *domain.State) (*buildDocs, error) {
	docs := &buildDocs{}
	var err error

	if st.Species != "" {
		if docs.species, err = b.repository.GetDocument(ctx, rules.CategorySpecies, st.Species); err != nil {
			return nil, err
		}
	}
	if st.Lineage != "" {
		if docs.lineage, err = b.repository.GetDocument(ctx, rules.CategoryLineage, st.Lineage); err != nil {
			return nil, err
		}
	}
	if st.Class != "" {
		if docs.class, err = b.repository.GetDocument(ctx, rules.CategoryClass, st.Class); err != nil {
			return nil, err
		}
	}
	if st.Subclass != "" {
		if docs.subclass, err = b.repository.GetDocument(ctx, rules.CategorySubclass, st.Subclass); err != nil {
			return nil, err
		}
	}
	if st.Background != "" {
		if docs.background, err = b.repository.GetDocument(ctx, rules.CategoryBackground, st.Background); err != nil {
			return nil, err
		}
	}

	return docs, nil
}

// appendTraits logs the effects of a trait-carrying document (species,
// lineage, background) and registers any choices its traits declare
func (b *Builder) appendTraits(st *domain.State, doc *rules.Document, category string, decls map[string]*declContext) {
	if doc == nil {
		return
	}

	for _, name := range sortedFeatureNames(doc.Traits) {
		trait := doc.Traits[name]
		prov := domain.Provenance{Category: category, Feature: name}
		for _, effect := range trait.Effects {
			st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{Effect: effect, Provenance: prov})
			b.registerEffectChoice(effect, name, category, searchDocs(doc), decls, nil)
		}
		st.Features = append(st.Features, &domain.FeatureRef{
			Name:        name,
			Description: ResolveScaling(trait.Description, trait.Scaling, st.Level),
			Source:      doc.Name,
			Category:    category,
		})
		if trait.Choice != nil {
			registerDecl(decls, trait.Choice, searchDocs(doc), category, name, nil, nil)
		}
	}
}

// appendClass logs the class chassis (saving throws, armor and weapon
// training) as synthesized effects, then the class features unlocked at
// the current level
func (b *Builder) appendClass(st *domain.State, docs *buildDocs, decls map[string]*declContext) {
	doc := docs.class
	if doc == nil {
		return
	}

	prov := domain.Provenance{Category: "class", Feature: doc.Name}
	for _, ability := range doc.SavingThrows {
		st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{
			Effect:     &rules.Effect{Kind: rules.EffectGrantSaveProficiency, Ability: ability},
			Provenance: prov,
		})
	}
	if len(doc.ArmorProficiencies) > 0 {
		st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{
			Effect:     &rules.Effect{Kind: rules.EffectGrantArmorProficiency, Proficiencies: doc.ArmorProficiencies},
			Provenance: prov,
		})
	}
	if len(doc.WeaponProficiencies) > 0 {
		st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{
			Effect:     &rules.Effect{Kind: rules.EffectGrantWeaponProficiency, Proficiencies: doc.WeaponProficiencies},
			Provenance: prov,
		})
	}

	if doc.SkillChoice != nil {
		decl := doc.SkillChoice
		if decl.Grants == rules.EffectUnset {
			withGrants := *decl
			withGrants.Grants = rules.EffectGrantSkillProficiency
			decl = &withGrants
		}
		registerDecl(decls, decl, searchDocs(docs.subclass, doc), "class", doc.Name, nil, nil)
	}

	b.appendLeveledFeatures(st, doc, "class", searchDocs(docs.subclass, doc), decls)
}

// appendLeveledFeatures logs the features a class or subclass document
// unlocks at or below the current level, in level then name order
func (b *Builder) appendLeveledFeatures(st *domain.State, doc *rules.Document, category string, search []*rules.Document, decls map[string]*declContext) {
	if doc == nil {
		return
	}

	levels := make([]int, 0, len(doc.FeaturesByLevel))
	for level := range doc.FeaturesByLevel {
		if level <= st.Level {
			levels = append(levels, level)
		}
	}
	sort.Ints(levels)

	for _, level := range levels {
		features := doc.FeaturesByLevel[level]
		for _, name := range sortedFeatureNames(features) {
			feature := features[name]
			prov := domain.Provenance{Category: category, Feature: name}
			for _, effect := range feature.Effects {
				st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{Effect: effect, Provenance: prov})
				b.registerEffectChoice(effect, name, category, search, decls, nil)
			}
			st.Features = append(st.Features, &domain.FeatureRef{
				Name:        name,
				Description: ResolveScaling(feature.Description, feature.Scaling, st.Level),
				Source:      doc.Name,
				Category:    category,
				Level:       level,
			})
			if feature.Choice != nil {
				registerDecl(decls, feature.Choice, search, category, name, nil, nil)
			}
		}
	}
}

// registerDecl adds a reachable choice declaration
func registerDecl(decls map[string]*declContext, decl *rules.ChoiceDecl, docs []*rules.Document, category, feature string, parent *domain.ParentRef, template *rules.Effect) {
	if decl == nil || decl.Key == "" {
		return
	}
	decls[decl.Key] = &declContext{
		decl:     decl,
		docs:     docs,
		category: category,
		feature:  feature,
		parent:   parent,
		template: template,
	}
}

// registerEffectChoice turns a grant_*_choice effect into a nested
// choice declaration. The declaration only exists while the effect's
// owner stays selected, so unpicking the owner retires the choice and
// its selections together.
func (b *Builder) registerEffectChoice(effect *rules.Effect, owner, category string, docs []*rules.Document, decls map[string]*declContext, parent *domain.ParentRef) {
	if effect.Kind != rules.EffectGrantCantripChoice {
		return
	}

	key := choiceKeyFor(owner) + "_cantrip"
	choiceType := rules.ChoiceTypeSelectSingle
	if effect.Count > 1 {
		choiceType = rules.ChoiceTypeSelectMultiple
	}

	source := &rules.SourceRef{
		Type:     rules.SourceTypeExternalStatic,
		Category: rules.CategorySpellList,
		Document: effect.SpellList,
		List:     "cantrips",
	}
	if effect.SpellList == "" {
		// No list named: draw from the class's own spell list
		source.Type = rules.SourceTypeExternalDynamic
		source.DocumentTemplate = "{class}"
		source.DependsOn = "class"
	}

	registerDecl(decls, &rules.ChoiceDecl{
		Key:    key,
		Prompt: "Choose a cantrip (" + owner + ")",
		Type:   choiceType,
		Count:  effect.Count,
		Source: source,
		Grants: rules.EffectGrantCantrip,
	}, docs, category, owner, parent, effect)
}

// choiceKeyFor derives a stable choice key from a display name
func choiceKeyFor(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// applyMadeChoices folds the player's recorded selections into the
// effect log. Selections are processed to a fixpoint because applying a
// parent option can reveal the declaration its nested selection needs,
// and a computed source only lists what earlier selections granted. A
// selection that fails validation is retried on the next round; the
// error surfaces only once no round makes progress.
func (b *Builder) applyMadeChoices(ctx context.Context, st *domain.State, decls map[string]*declContext) error {
	applied := make(map[string]bool)

	for {
		progressed := false
		var deferred error

		for _, key := range sortedChoiceKeys(st.ChoicesMade) {
			if applied[key] {
				continue
			}
			dc, ok := decls[key]
			if !ok {
				continue
			}
			// Computed sources enumerate the state, so fold what the
			// log holds so far before resolving this selection
			Replay(st)
			if err := b.applyChoiceSelections(ctx, st, key, st.ChoicesMade[key], dc, decls); err != nil {
				if engerr.IsValidation(err) {
					deferred = err
					continue
				}
				return err
			}
			applied[key] = true
			progressed = true
		}
		if !progressed {
			return deferred
		}
	}
}

// applyChoiceSelections validates one made choice against its
// declaration and logs the effects of each selected option. Every
// selection is resolved before anything is logged, so a rejected value
// leaves the log untouched and the whole choice can be retried once
// more grants have landed.
func (b *Builder) applyChoiceSelections(ctx context.Context, st *domain.State, key string, value domain.ChoiceValue, dc *declContext, decls map[string]*declContext) error {
	if err := validateMultiplicity(dc.decl, value); err != nil {
		return err
	}

	selections := make(map[string]*Selection, len(value.Values()))
	for _, selected := range value.Values() {
		selection, err := b.resolver.ResolveSelection(ctx, dc.decl, st, selected, dc.docs...)
		if err != nil {
			return err
		}
		selections[selected] = selection
	}

	for _, selected := range value.Values() {
		selection := selections[selected]

		prov := domain.Provenance{
			Category:     dc.category,
			Feature:      selected,
			ChoiceKey:    key,
			ParentOption: selected,
		}

		if option := selection.Option; option != nil {
			for _, effect := range option.Effects {
				st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{Effect: effect, Provenance: prov})
				b.registerEffectChoice(effect, selected, dc.category, dc.docs, decls, &domain.ParentRef{ChoiceKey: key, Option: selected})
			}
			if option.Choice != nil {
				registerDecl(decls, option.Choice, dc.docs, dc.category, selected, &domain.ParentRef{ChoiceKey: key, Option: selected}, nil)
			}
			renameChoiceFeature(st, dc.feature, selected, ResolveScaling(option.Description, option.Scaling, st.Level))
		}

		if dc.decl.Grants != rules.EffectUnset {
			effect, err := grantEffectFor(dc, selected, selection)
			if err != nil {
				return err
			}
			// Attribute declarative grants to the owning feature, not
			// to the picked value itself
			grantProv := prov
			grantProv.Feature = dc.feature
			st.AppliedEffects = append(st.AppliedEffects, &domain.AppliedEffect{Effect: effect, Provenance: grantProv})
		}
	}

	return nil
}

// validateMultiplicity enforces the declaration's selection count
func validateMultiplicity(decl *rules.ChoiceDecl, value domain.ChoiceValue) error {
	values := value.Values()

	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return engerr.Validationf("choice '%s' selects '%s' more than once", decl.Key, v)
		}
		seen[v] = true
	}

	required := decl.RequiredCount()
	switch decl.Type {
	case rules.ChoiceTypeSelectSingle:
		if len(values) != 1 {
			return engerr.Validationf("choice '%s' requires exactly one selection, got %d", decl.Key, len(values))
		}
	case rules.ChoiceTypeSelectMultiple:
		if len(values) != required {
			return engerr.Validationf("choice '%s' requires exactly %d selections, got %d", decl.Key, required, len(values))
		}
	case rules.ChoiceTypeSelectOrReplace:
		if len(values) < 1 || len(values) > required {
			return engerr.Validationf("choice '%s' accepts between 1 and %d selections, got %d", decl.Key, required, len(values))
		}
	default:
		return engerr.DataIntegrityf("choice '%s' has unknown type '%s'", decl.Key, decl.Type)
	}

	return nil
}

// grantEffectFor synthesizes the effect a declarative-grant choice
// produces for one selected value
func grantEffectFor(dc *declContext, selected string, selection *Selection) (*rules.Effect, error) {
	effect := &rules.Effect{Kind: dc.decl.Grants}

	switch dc.decl.Grants {
	case rules.EffectGrantCantrip, rules.EffectGrantSpell:
		effect.Spell = selected
		if selection.Spell != nil {
			effect.SpellLevel = selection.Spell.Level
			effect.CastingTime = selection.Spell.CastingTime
		}
		if dc.template != nil {
			effect.CountsAgainstLimit = dc.template.CountsAgainstLimit
		}
	case rules.EffectGrantSkillProficiency, rules.EffectGrantExpertise:
		effect.Skills = []string{selected}
	case rules.EffectGrantLanguage:
		effect.Languages = []string{selected}
	case rules.EffectGrantWeaponProficiency, rules.EffectGrantArmorProficiency, rules.EffectGrantToolProficiency:
		effect.Proficiencies = []string{selected}
	default:
		return nil, engerr.DataIntegrityf("choice '%s' grants unsupported effect kind '%s'", dc.decl.Key, dc.decl.Grants)
	}

	return effect, nil
}

// renameChoiceFeature rewrites a choice-bearing feature's display entry
// to show the selected option, e.g. "Divine Order: Protector"
func renameChoiceFeature(st *domain.State, featureName, selected, description string) {
	for _, feature := range st.Features {
		if feature.Name == featureName {
			feature.Name = featureName + ": " + selected
			if description != "" {
				feature.Description = description
			}
			return
		}
	}
}

// pruneStaleChoices drops made choices whose declarations are no longer
// reachable, returning the removed keys
func pruneStaleChoices(st *domain.State, decls map[string]*declContext) []string {
	var pruned []string
	for _, key := range sortedChoiceKeys(st.ChoicesMade) {
		if _, ok := decls[key]; !ok {
			delete(st.ChoicesMade, key)
			pruned = append(pruned, key)
		}
	}
	return pruned
}

// derivePending rebuilds the pending-choice list: core selections still
// missing, then every reachable declaration without a recorded value
func (b *Builder) derivePending(ctx context.Context, st *domain.State, docs *buildDocs, decls map[string]*declContext) error {
	st.PendingChoices = nil

	if err := b.appendCorePending(ctx, st, docs); err != nil {
		return err
	}

	keys := make([]string, 0, len(decls))
	for key := range decls {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, made := st.ChoicesMade[key]; made {
			continue
		}
		dc := decls[key]

		pending := &domain.PendingChoice{
			Key:            key,
			Prompt:         dc.decl.Prompt,
			Type:           dc.decl.Type,
			Count:          dc.decl.RequiredCount(),
			Required:       !dc.decl.Optional,
			Parent:         dc.parent,
			SourceCategory: dc.category,
			SourceFeature:  dc.feature,
		}

		// A dynamic source whose dependency is still undecided stays
		// pending with its options blank until the dependency lands
		if canResolveOptions(st, dc.decl) {
			options, err := b.resolver.ResolveOptions(ctx, dc.decl, st, dc.docs...)
			if err != nil {
				return err
			}
			pending.Options = options
		}

		st.PendingChoices = append(st.PendingChoices, pending)
	}

	return nil
}

// appendCorePending surfaces the missing core selections as pending
// choices with their options listed from the ruleset
func (b *Builder) appendCorePending(ctx context.Context, st *domain.State, docs *buildDocs) error {
	if st.Species == "" {
		pending, err := b.corePending(ctx, "species", "Choose a species", rules.CategorySpecies)
		if err != nil {
			return err
		}
		st.PendingChoices = append(st.PendingChoices, pending)
	}
	if st.Class == "" {
		pending, err := b.corePending(ctx, "class", "Choose a class", rules.CategoryClass)
		if err != nil {
			return err
		}
		st.PendingChoices = append(st.PendingChoices, pending)
	}
	if st.Subclass == "" && docs.class != nil && docs.class.SubclassLevel > 0 && st.Level >= docs.class.SubclassLevel {
		pending, err := b.corePending(ctx, "subclass", "Choose a subclass", rules.CategorySubclass)
		if err != nil {
			return err
		}
		// Only subclasses of the selected class qualify
		filtered := pending.Options[:0]
		for _, option := range pending.Options {
			doc, err := b.repository.GetDocument(ctx, rules.CategorySubclass, option.Key)
			if err != nil {
				return err
			}
			if doc.ParentClass == "" || doc.ParentClass == st.Class {
				filtered = append(filtered, option)
			}
		}
		pending.Options = filtered
		st.PendingChoices = append(st.PendingChoices, pending)
	}
	if st.Background == "" {
		pending, err := b.corePending(ctx, "background", "Choose a background", rules.CategoryBackground)
		if err != nil {
			return err
		}
		st.PendingChoices = append(st.PendingChoices, pending)
	}
	if len(st.Abilities) == 0 {
		st.PendingChoices = append(st.PendingChoices, &domain.PendingChoice{
			Key:      "abilities",
			Prompt:   "Assign ability scores",
			Type:     rules.ChoiceTypeSelectMultiple,
			Count:    6,
			Required: true,
		})
	}

	return nil
}

func (b *Builder) corePending(ctx context.Context, key, prompt string, category rules.Category) (*domain.PendingChoice, error) {
	names, err := b.repository.ListNames(ctx, category)
	if err != nil {
		return nil, err
	}

	options := make([]domain.OptionDescriptor, 0, len(names))
	for _, name := range names {
		options = append(options, domain.OptionDescriptor{Key: name, Name: name})
	}

	return &domain.PendingChoice{
		Key:      key,
		Prompt:   prompt,
		Type:     rules.ChoiceTypeSelectSingle,
		Count:    1,
		Required: true,
		Options:  options,
	}, nil
}

// canResolveOptions reports whether a declaration's option source can
// be materialized right now
func canResolveOptions(st *domain.State, decl *rules.ChoiceDecl) bool {
	if decl.Source == nil || decl.Source.Type != rules.SourceTypeExternalDynamic {
		return true
	}
	_, err := dependencyValue(st, decl.Source.DependsOn)
	return err == nil
}

// searchDocs builds the document search order for internal sources,
// skipping absent documents
func searchDocs(docs ...*rules.Document) []*rules.Document {
	present := make([]*rules.Document, 0, len(docs))
	for _, doc := range docs {
		if doc != nil {
			present = append(present, doc)
		}
	}
	return present
}

func sortedFeatureNames(features map[string]*rules.Feature) []string {
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedChoiceKeys(choices map[string]domain.ChoiceValue) []string {
	keys := make([]string, 0, len(choices))
	for key := range choices {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
