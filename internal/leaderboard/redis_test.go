package leaderboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisStoreTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	store   *RedisStore
	testNow time.Time
}

func (s *RedisStoreTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})
	s.store = NewRedisStore(s.client)
	s.testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *RedisStoreTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (s *RedisStoreTestSuite) TestLoad() {
	s.NoError(s.store.Load(context.Background()))

	unreachable := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer unreachable.Close()
	s.Error(NewRedisStore(unreachable).Load(context.Background()))
}

func (s *RedisStoreTestSuite) TestRecordAndTop() {
	ctx := context.Background()

	s.Require().NoError(s.store.Record(ctx, s.testNow, []Delta{
		{PlayerName: "bob", Score: 187, WordsGuessed: 1},
		{PlayerName: "alice", Score: 25},
	}))
	s.Require().NoError(s.store.Record(ctx, s.testNow.Add(time.Minute), []Delta{
		{PlayerName: "alice", Score: 300, WordsGuessed: 2},
	}))

	top, err := s.store.Top(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)

	s.Equal("alice", top[0].PlayerName)
	s.EqualValues(325, top[0].Score)
	s.Equal(2, top[0].GamesPlayed)
	s.Equal(2, top[0].WordsGuessed)
	s.True(s.testNow.Add(time.Minute).Equal(top[0].LastPlayed))

	s.Equal("bob", top[1].PlayerName)
	s.EqualValues(187, top[1].Score)
	s.Equal(1, top[1].GamesPlayed)

	score, err := s.mr.ZScore(scoresKey, "bob")
	s.Require().NoError(err)
	s.Equal(float64(187), score)
	s.Equal("1", s.mr.HGet(playerKey("bob"), "gamesPlayed"))
}

func (s *RedisStoreTestSuite) TestTopLimitAndEmpty() {
	ctx := context.Background()

	top, err := s.store.Top(ctx, 5)
	s.Require().NoError(err)
	s.Empty(top)

	s.Require().NoError(s.store.Record(ctx, s.testNow, []Delta{
		{PlayerName: "a", Score: 1},
		{PlayerName: "b", Score: 2},
		{PlayerName: "c", Score: 3},
	}))
	top, err = s.store.Top(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("c", top[0].PlayerName)
	s.Equal("b", top[1].PlayerName)
}
