package characterstates

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// InMemoryRepository keeps states in a map, for tests and for running
// the engine without Redis
type InMemoryRepository struct {
	mu     sync.RWMutex
	states map[string]*character.State
}

// NewInMemoryRepository creates an empty in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		states: make(map[string]*character.State),
	}
}

// Create implements Repository.Create
func (r *InMemoryRepository) Create(ctx context.Context, state *character.State) error {
	if state == nil || state.ID == "" {
		return engerr.InvalidArgument("state with an ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[state.ID]; exists {
		return engerr.AlreadyExistsf("character state '%s' already exists", state.ID)
	}

	copied, err := state.Clone()
	if err != nil {
		return err
	}
	r.states[state.ID] = copied
	return nil
}

// Get implements Repository.Get
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*character.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[id]
	if !ok {
		return nil, engerr.NotFoundf("character state '%s' not found", id)
	}

	return state.Clone()
}

// GetByOwner implements Repository.GetByOwner
func (r *InMemoryRepository) GetByOwner(ctx context.Context, owner string) ([]*character.State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var states []*character.State
	for _, state := range r.states {
		if state.Owner != owner {
			continue
		}
		copied, err := state.Clone()
		if err != nil {
			return nil, err
		}
		states = append(states, copied)
	}

	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states, nil
}

// Update implements Repository.Update
func (r *InMemoryRepository) Update(ctx context.Context, state *character.State) error {
	if state == nil || state.ID == "" {
		return engerr.InvalidArgument("state with an ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[state.ID]; !exists {
		return engerr.NotFoundf("character state '%s' not found", state.ID)
	}

	copied, err := state.Clone()
	if err != nil {
		return err
	}
	r.states[state.ID] = copied
	return nil
}

// Delete implements Repository.Delete
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[id]; !exists {
		return engerr.NotFoundf("character state '%s' not found", id)
	}

	delete(r.states, id)
	return nil
}
