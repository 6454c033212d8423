package test

import (
	"context"
	"time"

	"github.com/2beens/fitquest/internal"
	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestPostgresStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	storage, err := internal.NewStorage(ctx, internal.StorageParams{
		Config: s.testConfig(config.StoragePostgres),
	})
	require.NoError(t, err)
	defer func() {
		require.NoError(t, storage.Close())
	}()
	require.NotNil(t, storage.DBPool)
	require.NoError(t, storage.HealthCheck(ctx))

	store := storage.Store
	today := store.Now()
	old := today.AddDate(0, 0, -90)

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, store.Set(ctx, cache.PlanKey("pg-profile", today), payload{Name: "today"}))
	require.NoError(t, store.Set(ctx, cache.PlanKey("pg-profile", old), payload{Name: "old"}))

	var got payload
	require.NoError(t, store.Get(ctx, cache.PlanKey("pg-profile", today), &got))
	assert.Equal(t, "today", got.Name)

	keys, err := store.Keys(ctx, cache.PlanPrefix("pg-profile"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, 1)

	err = store.Get(ctx, cache.PlanKey("pg-profile", old), &got)
	assert.ErrorIs(t, err, cache.ErrNotFound)

	deleted, err := store.DeletePrefix(ctx, cache.PlanPrefix("pg-profile"))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
