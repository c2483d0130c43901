//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"recordgate/internal/record/models"
	"recordgate/internal/record/store"
	id "recordgate/pkg/domain"
	"recordgate/pkg/platform/sentinel"
	"recordgate/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.Redis
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client.Client, store.WithRedisPrefix("test:"))
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestFindByID() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &models.Record{ID: 1, Name: "Alice", Age: 18}))

	found, err := s.store.FindByID(ctx, 1)
	s.Require().NoError(err)
	s.Equal("Alice", found.Name)
	s.Equal(18, found.Age)
	s.False(found.CreatedAt.IsZero())

	_, err = s.store.FindByID(ctx, 2)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestListGroupOrderedByID() {
	ctx := context.Background()
	s.Require().NoError(store.Seed(ctx, s.store,
		&models.Record{ID: 10, Name: "J"},
		&models.Record{ID: -2, Name: "neg"},
		&models.Record{ID: 3, Name: "C"},
	))

	group, err := s.store.ListGroup(ctx)
	s.Require().NoError(err)
	s.Require().Len(group, 3)
	s.Equal([]id.RecordID{-2, 3, 10}, []id.RecordID{group[0].ID, group[1].ID, group[2].ID})
}

func (s *RedisStoreSuite) TestClear() {
	ctx := context.Background()
	s.Require().NoError(store.Seed(ctx, s.store, store.DemoRecords()...))
	s.Require().NoError(s.store.Clear(ctx))

	group, err := s.store.ListGroup(ctx)
	s.Require().NoError(err)
	s.Empty(group)

	_, err = s.store.FindByID(ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Clear(ctx), "clearing an empty store succeeds")
}

func (s *RedisStoreSuite) TestAge() {
	ctx := context.Background()
	age, err := s.store.Age(ctx)
	s.Require().NoError(err)
	s.Equal(store.DefaultAge, age)

	s.Require().NoError(s.store.SetAge(ctx, 21))
	age, err = s.store.Age(ctx)
	s.Require().NoError(err)
	s.Equal(21, age)
}
