package characterstates_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/dnd-character-engine/internal/domain/character"
	engerr "github.com/KirkDiggler/dnd-character-engine/internal/errors"
	"github.com/KirkDiggler/dnd-character-engine/internal/repositories/characterstates"
)

const draftTTL = 30 * 24 * time.Hour

type RedisRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	mock redismock.ClientMock
	repo characterstates.Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()

	client, mock := redismock.NewClientMock()
	s.mock = mock
	s.repo = characterstates.NewRedisRepository(&characterstates.RedisRepoConfig{Client: client})
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) newState() (*character.State, []byte) {
	state := character.NewState()
	state.ID = "state_1"
	state.Owner = "user_1"
	state.Name = "Brenna"

	data, err := json.Marshal(state)
	s.Require().NoError(err)
	return state, data
}

func (s *RedisRepositoryTestSuite) TestCreateStoresSnapshotAndOwnerIndex() {
	state, data := s.newState()

	s.mock.ExpectExists("character_state:state_1").SetVal(0)
	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("character_state:state_1", data, draftTTL).SetVal("OK")
	s.mock.ExpectSAdd("owner:user_1:character_states", "state_1").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.Require().NoError(s.repo.Create(s.ctx, state))
}

func (s *RedisRepositoryTestSuite) TestCreateRejectsExisting() {
	state, _ := s.newState()

	s.mock.ExpectExists("character_state:state_1").SetVal(1)

	err := s.repo.Create(s.ctx, state)
	s.Require().Error(err)
	s.True(engerr.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetRoundTripsState() {
	_, data := s.newState()

	s.mock.ExpectGet("character_state:state_1").SetVal(string(data))

	loaded, err := s.repo.Get(s.ctx, "state_1")
	s.Require().NoError(err)
	s.Equal("Brenna", loaded.Name)
	s.Equal("user_1", loaded.Owner)
	s.Equal(1, loaded.Level)
}

func (s *RedisRepositoryTestSuite) TestGetMissingIsNotFound() {
	s.mock.ExpectGet("character_state:state_1").RedisNil()

	_, err := s.repo.Get(s.ctx, "state_1")
	s.Require().Error(err)
	s.True(engerr.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateRequiresExisting() {
	state, data := s.newState()

	s.mock.ExpectExists("character_state:state_1").SetVal(1)
	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("character_state:state_1", data, draftTTL).SetVal("OK")
	s.mock.ExpectSAdd("owner:user_1:character_states", "state_1").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.Require().NoError(s.repo.Update(s.ctx, state))

	s.mock.ExpectExists("character_state:state_1").SetVal(0)
	err := s.repo.Update(s.ctx, state)
	s.Require().Error(err)
	s.True(engerr.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestGetByOwner() {
	_, data := s.newState()

	s.mock.ExpectSMembers("owner:user_1:character_states").SetVal([]string{"state_1"})
	s.mock.ExpectGet("character_state:state_1").SetVal(string(data))

	states, err := s.repo.GetByOwner(s.ctx, "user_1")
	s.Require().NoError(err)
	s.Require().Len(states, 1)
	s.Equal("state_1", states[0].ID)
}

func (s *RedisRepositoryTestSuite) TestGetByOwnerPrunesExpiredEntries() {
	s.mock.ExpectSMembers("owner:user_1:character_states").SetVal([]string{"state_1"})
	s.mock.ExpectGet("character_state:state_1").RedisNil()
	s.mock.ExpectSRem("owner:user_1:character_states", "state_1").SetVal(1)

	states, err := s.repo.GetByOwner(s.ctx, "user_1")
	s.Require().NoError(err)
	s.Empty(states)
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesStateAndIndexEntry() {
	_, data := s.newState()

	s.mock.ExpectGet("character_state:state_1").SetVal(string(data))
	s.mock.ExpectTxPipeline()
	s.mock.ExpectDel("character_state:state_1").SetVal(1)
	s.mock.ExpectSRem("owner:user_1:character_states", "state_1").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.Require().NoError(s.repo.Delete(s.ctx, "state_1"))
}
