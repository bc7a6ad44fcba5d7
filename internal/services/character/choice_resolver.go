package character

import (
	"context"
	"sort"
	"strings"

	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
)

// ChoiceResolver materializes the selectable options behind a choice
// declaration, whatever kind of source it references. Implementations
// must return options in a stable order.
type ChoiceResolver interface {
	// ResolveOptions lists the options a player can pick from. The docs
	// are the documents to search for internal sources, most specific
	// first (subclass before class).
	ResolveOptions(ctx context.Context, decl *rules.ChoiceDecl, state *domain.State, docs ...*rules.Document) ([]domain.OptionDescriptor, error)

	// ResolveSelection returns the rule data backing one selected value,
	// or a validation error when the value is not among the options
	ResolveSelection(ctx context.Context, decl *rules.ChoiceDecl, state *domain.State, value string, docs ...*rules.Document) (*Selection, error)
}

// Selection is the rule data behind one selected option. Fixed-list and
// computed sources carry no definition; spell-list sources carry the
// spell instead of an option definition.
type Selection struct {
	Option *rules.OptionDef
	Spell  *rules.SpellDef
}

type choiceResolver struct {
	repository rules.Repository
}

// ChoiceResolverConfig holds dependencies for the default resolver
type ChoiceResolverConfig struct {
	Repository rules.Repository
}

// NewChoiceResolver creates the repository-backed resolver
func NewChoiceResolver(cfg *ChoiceResolverConfig) (ChoiceResolver, error) {
	if cfg == nil || cfg.Repository == nil {
		return nil, engerr.InvalidArgument("rules repository is required")
	}
	return &choiceResolver{repository: cfg.Repository}, nil
}

func (r *choiceResolver) ResolveOptions(ctx context.Context, decl *rules.ChoiceDecl, state *domain.State, docs ...*rules.Document) ([]domain.OptionDescriptor, error) {
	source := decl.Source
	if source == nil {
		return nil, engerr.DataIntegrityf("choice '%s' has no option source", decl.Key)
	}

	switch source.Type {
	case rules.SourceTypeFixedList:
		options := make([]domain.OptionDescriptor, 0, len(source.Options))
		for _, name := range source.Options {
			options = append(options, domain.OptionDescriptor{Key: name, Name: name})
		}
		return options, nil

	case rules.SourceTypeComputed:
		return r.resolveComputed(decl, state)

	case rules.SourceTypeInternal, rules.SourceTypeExternalStatic, rules.SourceTypeExternalDynamic:
		list, spells, err := r.loadSource(ctx, decl, state, docs)
		if err != nil {
			return nil, err
		}
		if spells != nil {
			return spellDescriptors(spells), nil
		}
		return optionDescriptors(list, state.Level), nil

	default:
		return nil, engerr.DataIntegrityf("choice '%s' has unknown source type '%s'", decl.Key, source.Type).
			WithMeta("choice", decl.Key)
	}
}

func (r *choiceResolver) ResolveSelection(ctx context.Context, decl *rules.ChoiceDecl, state *domain.State, value string, docs ...*rules.Document) (*Selection, error) {
	source := decl.Source
	if source == nil {
		return nil, engerr.DataIntegrityf("choice '%s' has no option source", decl.Key)
	}

	switch source.Type {
	case rules.SourceTypeFixedList:
		for _, name := range source.Options {
			if name == value {
				return &Selection{}, nil
			}
		}
		return nil, invalidOption(decl.Key, value)

	case rules.SourceTypeComputed:
		options, err := r.resolveComputed(decl, state)
		if err != nil {
			return nil, err
		}
		for _, option := range options {
			if option.Key == value {
				return &Selection{}, nil
			}
		}
		return nil, invalidOption(decl.Key, value)

	case rules.SourceTypeInternal, rules.SourceTypeExternalStatic, rules.SourceTypeExternalDynamic:
		list, spells, err := r.loadSource(ctx, decl, state, docs)
		if err != nil {
			return nil, err
		}
		if spells != nil {
			spell, ok := spells[value]
			if !ok {
				return nil, invalidOption(decl.Key, value)
			}
			return &Selection{Spell: spell}, nil
		}
		option, ok := list[value]
		if !ok {
			return nil, invalidOption(decl.Key, value)
		}
		return &Selection{Option: option}, nil

	default:
		return nil, engerr.DataIntegrityf("choice '%s' has unknown source type '%s'", decl.Key, source.Type).
			WithMeta("choice", decl.Key)
	}
}

// loadSource fetches the option list or spell map behind a list-backed
// source. Exactly one of the returns is non-nil on success.
func (r *choiceResolver) loadSource(ctx context.Context, decl *rules.ChoiceDecl, state *domain.State, docs []*rules.Document) (rules.OptionList, map[string]*rules.SpellDef, error) {
	source := decl.Source

	var doc *rules.Document
	switch source.Type {
	case rules.SourceTypeInternal:
		for _, candidate := range docs {
			if _, ok := candidate.List(source.List); ok {
				doc = candidate
				break
			}
		}
		if doc == nil {
			return nil, nil, engerr.DataIntegrityf("option list '%s' for choice '%s' not found in any owning document", source.List, decl.Key).
				WithMeta("choice", decl.Key).
				WithMeta("list", source.List)
		}

	case rules.SourceTypeExternalStatic:
		loaded, err := r.repository.GetDocument(ctx, source.Category, source.Document)
		if err != nil {
			return nil, nil, err
		}
		doc = loaded

	case rules.SourceTypeExternalDynamic:
		name, err := r.expandTemplate(decl, state)
		if err != nil {
			return nil, nil, err
		}
		loaded, err := r.repository.GetDocument(ctx, source.Category, name)
		if err != nil {
			return nil, nil, err
		}
		doc = loaded
	}

	// Spell-list documents expose their cantrip and spell tables under
	// the reserved list names
	switch source.List {
	case "cantrips":
		if doc.Cantrips != nil {
			return nil, doc.Cantrips, nil
		}
	case "spells":
		if doc.Spells != nil {
			return nil, doc.Spells, nil
		}
	}

	list, ok := doc.List(source.List)
	if !ok {
		return nil, nil, engerr.DataIntegrityf("document '%s' has no option list '%s' for choice '%s'", doc.Name, source.List, decl.Key).
			WithMeta("document", doc.Name).
			WithMeta("list", source.List)
	}
	return list, nil, nil
}

// expandTemplate fills a dynamic source's document template from an
// earlier choice, e.g. "{class}" becomes "Cleric"
func (r *choiceResolver) expandTemplate(decl *rules.ChoiceDecl, state *domain.State) (string, error) {
	source := decl.Source
	value, err := dependencyValue(state, source.DependsOn)
	if err != nil {
		return "", engerr.DataIntegrityf("choice '%s' depends on '%s' which has not been decided", decl.Key, source.DependsOn).
			WithMeta("choice", decl.Key).
			WithMeta("depends_on", source.DependsOn)
	}
	return strings.ReplaceAll(source.DocumentTemplate, "{"+source.DependsOn+"}", value), nil
}

// dependencyValue reads the value of a prior choice, treating the core
// build selections as implicitly-made choices
func dependencyValue(state *domain.State, key string) (string, error) {
	switch key {
	case "class":
		if state.Class != "" {
			return state.Class, nil
		}
	case "subclass":
		if state.Subclass != "" {
			return state.Subclass, nil
		}
	case "species":
		if state.Species != "" {
			return state.Species, nil
		}
	case "lineage":
		if state.Lineage != "" {
			return state.Lineage, nil
		}
	case "background":
		if state.Background != "" {
			return state.Background, nil
		}
	default:
		if value, ok := state.ChoicesMade[key]; ok && !value.IsZero() {
			return value.Single(), nil
		}
	}
	return "", engerr.NotFound("dependency not decided")
}

func (r *choiceResolver) resolveComputed(decl *rules.ChoiceDecl, state *domain.State) ([]domain.OptionDescriptor, error) {
	source := decl.Source
	switch source.Compute {
	case rules.ComputeSkillProficiencies:
		skills := state.Proficiencies[domain.ProficiencySkill]
		names := make([]string, 0, len(skills))
		for name := range skills {
			names = append(names, name)
		}
		sort.Strings(names)

		options := make([]domain.OptionDescriptor, 0, len(names))
		for _, name := range names {
			options = append(options, domain.OptionDescriptor{
				Key:         name,
				Name:        name,
				Description: "Proficiency from " + skills[name],
			})
		}
		return options, nil

	case rules.ComputeKnownSpells:
		names := make([]string, 0, len(state.Spells))
		for name := range state.Spells {
			names = append(names, name)
		}
		sort.Strings(names)

		options := make([]domain.OptionDescriptor, 0, len(names))
		for _, name := range names {
			grant := state.Spells[name]
			if !matchesFilter(grant, source.Filter) {
				continue
			}
			options = append(options, domain.OptionDescriptor{
				Key:         name,
				Name:        name,
				Description: "Granted by " + grant.Source,
			})
		}
		return options, nil

	default:
		return nil, engerr.DataIntegrityf("choice '%s' has unknown computed source '%s'", decl.Key, source.Compute).
			WithMeta("choice", decl.Key)
	}
}

// matchesFilter applies a computed-source filter to a known spell.
// Spells without a recorded casting time pass a casting-time filter;
// rule data is allowed to be sparse.
func matchesFilter(grant *domain.SpellGrant, filter *rules.ComputeFilter) bool {
	if filter == nil {
		return true
	}
	if filter.MaxSpellLevel != nil && grant.Level > *filter.MaxSpellLevel {
		return false
	}
	if filter.CastingTime != "" && grant.CastingTime != "" && grant.CastingTime != filter.CastingTime {
		return false
	}
	return true
}

// optionDescriptors renders an option list sorted by key, with scaling
// placeholders in descriptions resolved at the character's level
func optionDescriptors(list rules.OptionList, level int) []domain.OptionDescriptor {
	names := make([]string, 0, len(list))
	for name := range list {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]domain.OptionDescriptor, 0, len(names))
	for _, name := range names {
		def := list[name]
		options = append(options, domain.OptionDescriptor{
			Key:         name,
			Name:        name,
			Description: ResolveScaling(def.Description, def.Scaling, level),
		})
	}
	return options
}

func spellDescriptors(spells map[string]*rules.SpellDef) []domain.OptionDescriptor {
	names := make([]string, 0, len(spells))
	for name := range spells {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]domain.OptionDescriptor, 0, len(names))
	for _, name := range names {
		options = append(options, domain.OptionDescriptor{
			Key:         name,
			Name:        name,
			Description: spells[name].Description,
		})
	}
	return options
}

func invalidOption(key, value string) error {
	return engerr.Validationf("'%s' is not a valid option for choice '%s'", value, key).
		WithMeta("choice", key).
		WithMeta("value", value)
}
