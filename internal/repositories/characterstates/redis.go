package characterstates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
)

// redisRepo implements the Repository interface using Redis. States are
// stored as JSON snapshots; an index set per owner supports listing.
type redisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration // TTL for incomplete builds
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
	// DraftTTL bounds how long an incomplete build is kept. Completed
	// builds never expire. Defaults to 30 days.
	DraftTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed state repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	ttl := cfg.DraftTTL
	if ttl == 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &redisRepo{
		client: cfg.Client,
		ttl:    ttl,
	}
}

// key generates the Redis key for a character state
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("character_state:%s", id)
}

// ownerKey generates the Redis key for an owner's state index
func (r *redisRepo) ownerKey(owner string) string {
	return fmt.Sprintf("owner:%s:character_states", owner)
}

// Create implements Repository.Create
func (r *redisRepo) Create(ctx context.Context, state *character.State) error {
	if state == nil || state.ID == "" {
		return engerr.InvalidArgument("state with an ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(state.ID)).Result()
	if err != nil {
		return engerr.Wrap(err, "failed to check character state existence")
	}
	if exists > 0 {
		return engerr.AlreadyExistsf("character state '%s' already exists", state.ID).
			WithMeta("state_id", state.ID)
	}

	return r.write(ctx, state)
}

// Get implements Repository.Get
func (r *redisRepo) Get(ctx context.Context, id string) (*character.State, error) {
	data, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, engerr.NotFoundf("character state '%s' not found", id).
			WithMeta("state_id", id)
	}
	if err != nil {
		return nil, engerr.Wrap(err, "failed to get character state")
	}

	return character.FromSnapshot([]byte(data))
}

// GetByOwner implements Repository.GetByOwner
func (r *redisRepo) GetByOwner(ctx context.Context, owner string) ([]*character.State, error) {
	ids, err := r.client.SMembers(ctx, r.ownerKey(owner)).Result()
	if err != nil {
		return nil, engerr.Wrap(err, "failed to list character states")
	}

	var states []*character.State
	for _, id := range ids {
		state, err := r.Get(ctx, id)
		if engerr.IsNotFound(err) {
			// Expired draft still in the index; drop the stale entry
			r.client.SRem(ctx, r.ownerKey(owner), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return states, nil
}

// Update implements Repository.Update
func (r *redisRepo) Update(ctx context.Context, state *character.State) error {
	if state == nil || state.ID == "" {
		return engerr.InvalidArgument("state with an ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(state.ID)).Result()
	if err != nil {
		return engerr.Wrap(err, "failed to check character state existence")
	}
	if exists == 0 {
		return engerr.NotFoundf("character state '%s' not found", state.ID).
			WithMeta("state_id", state.ID)
	}

	return r.write(ctx, state)
}

// Delete implements Repository.Delete
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	state, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(id))
	if state.Owner != "" {
		pipe.SRem(ctx, r.ownerKey(state.Owner), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return engerr.Wrap(err, "failed to delete character state")
	}

	return nil
}

// write stores the snapshot and maintains the owner index in one
// transaction
func (r *redisRepo) write(ctx context.Context, state *character.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return engerr.Wrap(err, "failed to serialize character state")
	}

	ttl := r.ttl
	if state.IsComplete() {
		ttl = 0
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(state.ID), data, ttl)
	if state.Owner != "" {
		pipe.SAdd(ctx, r.ownerKey(state.Owner), state.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return engerr.Wrap(err, "failed to store character state")
	}

	return nil
}
