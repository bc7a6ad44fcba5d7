package characterstates

import (
	"context"

	"github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
)

// Repository persists character build states
type Repository interface {
	// Create stores a new state. The state must already carry an ID.
	Create(ctx context.Context, state *character.State) error

	// Get retrieves a state by ID
	Get(ctx context.Context, id string) (*character.State, error)

	// GetByOwner retrieves every state belonging to an owner
	GetByOwner(ctx context.Context, owner string) ([]*character.State, error)

	// Update overwrites an existing state
	Update(ctx context.Context, state *character.State) error

	// Delete removes a state by ID
	Delete(ctx context.Context, id string) error
}
