package character

import (
	"context"

	"github.com/KirkDiggler/dnd-character-engine/internal/dice"
	domain "github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
	"github.com/KirkDiggler/dnd-character-engine/internal/repositories/characterstates"
	"github.com/KirkDiggler/dnd-character-engine/internal/rules"
	"github.com/KirkDiggler/dnd-character-engine/internal/uuid"
)

// StartBuildInput holds what a new build session needs
type StartBuildInput struct {
	Owner string
	Name  string
}

// ApplyChoiceInput applies one choice to a stored build
type ApplyChoiceInput struct {
	ID    string
	Key   string
	Value domain.ChoiceValue
}

// ApplyChoicesInput applies a batch of choices to a stored build
type ApplyChoicesInput struct {
	ID      string
	Choices map[string]domain.ChoiceValue
}

// RollAbilitiesOutput carries one set of ability rolls, best three of
// four d6 each
type RollAbilitiesOutput struct {
	Scores []int
	Rolls  []*dice.RollResult
}

// Service manages character build sessions end to end: session
// lifecycle, choice application, and persistence
type Service interface {
	// StartBuild creates and stores a fresh build session
	StartBuild(ctx context.Context, input *StartBuildInput) (*domain.State, error)

	// GetBuild retrieves a stored build
	GetBuild(ctx context.Context, id string) (*domain.State, error)

	// ListBuilds retrieves every build belonging to an owner
	ListBuilds(ctx context.Context, owner string) ([]*domain.State, error)

	// ApplyChoice applies one choice and stores the result. On error
	// the stored build is unchanged.
	ApplyChoice(ctx context.Context, input *ApplyChoiceInput) (*domain.State, error)

	// ApplyChoices applies a batch of choices atomically
	ApplyChoices(ctx context.Context, input *ApplyChoicesInput) (*domain.State, error)

	// RollAbilities rolls six ability scores, 4d6 drop lowest
	RollAbilities(ctx context.Context) (*RollAbilitiesOutput, error)

	// DeleteBuild removes a stored build
	DeleteBuild(ctx context.Context, id string) error
}

// ServiceConfig holds the service's dependencies
type ServiceConfig struct {
	Rules         rules.Repository
	States        characterstates.Repository
	UUIDGenerator uuid.Generator
	Roller        dice.Roller
}

type service struct {
	rules         rules.Repository
	states        characterstates.Repository
	uuidGenerator uuid.Generator
	roller        dice.Roller
}

// NewService creates a character build service
func NewService(cfg *ServiceConfig) (Service, error) {
	if cfg == nil {
		return nil, engerr.InvalidArgument("service config is required")
	}
	if cfg.Rules == nil {
		return nil, engerr.InvalidArgument("rules repository is required")
	}
	if cfg.States == nil {
		return nil, engerr.InvalidArgument("state repository is required")
	}

	generator := cfg.UUIDGenerator
	if generator == nil {
		generator = uuid.NewGoogleUUIDGenerator()
	}
	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	return &service{
		rules:         cfg.Rules,
		states:        cfg.States,
		uuidGenerator: generator,
		roller:        roller,
	}, nil
}

// StartBuild implements Service.StartBuild
func (s *service) StartBuild(ctx context.Context, input *StartBuildInput) (*domain.State, error) {
	if input == nil || input.Owner == "" {
		return nil, engerr.InvalidArgument("owner is required")
	}

	builder, err := NewBuilder(&BuilderConfig{Repository: s.rules})
	if err != nil {
		return nil, err
	}
	if err := builder.Refresh(ctx); err != nil {
		return nil, err
	}

	state := builder.State()
	state.ID = s.uuidGenerator.New()
	state.Owner = input.Owner
	state.Name = input.Name

	if err := s.states.Create(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetBuild implements Service.GetBuild
func (s *service) GetBuild(ctx context.Context, id string) (*domain.State, error) {
	if id == "" {
		return nil, engerr.InvalidArgument("build ID is required")
	}
	return s.states.Get(ctx, id)
}

// ListBuilds implements Service.ListBuilds
func (s *service) ListBuilds(ctx context.Context, owner string) ([]*domain.State, error) {
	if owner == "" {
		return nil, engerr.InvalidArgument("owner is required")
	}
	return s.states.GetByOwner(ctx, owner)
}

// ApplyChoice implements Service.ApplyChoice
func (s *service) ApplyChoice(ctx context.Context, input *ApplyChoiceInput) (*domain.State, error) {
	if input == nil || input.ID == "" {
		return nil, engerr.InvalidArgument("build ID is required")
	}
	if input.Key == "" {
		return nil, engerr.InvalidArgument("choice key is required")
	}

	builder, err := s.builderFor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := builder.ApplyChoice(ctx, input.Key, input.Value); err != nil {
		return nil, err
	}

	state := builder.State()
	if err := s.states.Update(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ApplyChoices implements Service.ApplyChoices
func (s *service) ApplyChoices(ctx context.Context, input *ApplyChoicesInput) (*domain.State, error) {
	if input == nil || input.ID == "" {
		return nil, engerr.InvalidArgument("build ID is required")
	}
	if len(input.Choices) == 0 {
		return nil, engerr.InvalidArgument("at least one choice is required")
	}

	builder, err := s.builderFor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := builder.ApplyChoices(ctx, input.Choices); err != nil {
		return nil, err
	}

	state := builder.State()
	if err := s.states.Update(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// RollAbilities implements Service.RollAbilities
func (s *service) RollAbilities(ctx context.Context) (*RollAbilitiesOutput, error) {
	output := &RollAbilitiesOutput{
		Scores: make([]int, 0, 6),
		Rolls:  make([]*dice.RollResult, 0, 6),
	}

	for i := 0; i < 6; i++ {
		result, err := s.roller.Roll(4, 6, 0)
		if err != nil {
			return nil, err
		}
		output.Scores = append(output.Scores, result.DropLowest())
		output.Rolls = append(output.Rolls, result)
	}

	return output, nil
}

// DeleteBuild implements Service.DeleteBuild
func (s *service) DeleteBuild(ctx context.Context, id string) error {
	if id == "" {
		return engerr.InvalidArgument("build ID is required")
	}
	return s.states.Delete(ctx, id)
}

// builderFor restores the build session behind a stored state
func (s *service) builderFor(ctx context.Context, id string) (*Builder, error) {
	state, err := s.states.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewBuilder(&BuilderConfig{Repository: s.rules, State: state})
}
