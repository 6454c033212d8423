package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/testinternals"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fakeProfile() profile.Profile {
	return profile.Profile{
		Name:               gofakeit.Name(),
		Age:                gofakeit.Number(16, 70),
		Gender:             profile.GenderFemale,
		WeightKg:           gofakeit.Float64Range(50, 110),
		HeightCm:           gofakeit.Float64Range(150, 200),
		FitnessLevel:       profile.LevelIntermediate,
		Goals:              []string{"build_muscle"},
		DefaultEnvironment: equipment.Outdoor,
		UnitPreference:     profile.UnitsImperial,
	}
}

func TestProfile_ApplyDefaults(t *testing.T) {
	p := profile.Profile{
		Name:               "   ",
		Age:                -3,
		Gender:             "unknown",
		FitnessLevel:       "elite",
		DefaultEnvironment: "space_station",
		UnitPreference:     "cubits",
	}
	p.ApplyDefaults()

	assert.Equal(t, "User", p.Name)
	assert.Equal(t, 25, p.Age)
	assert.Equal(t, profile.GenderOther, p.Gender)
	assert.Equal(t, 70.0, p.WeightKg)
	assert.Equal(t, 170.0, p.HeightCm)
	assert.Equal(t, profile.LevelBeginner, p.FitnessLevel)
	assert.Equal(t, []string{profile.GoalStayActive}, p.Goals)
	assert.Equal(t, equipment.HomeNoEquipment, p.DefaultEnvironment)
	assert.Equal(t, profile.UnitsMetric, p.UnitPreference)
	assert.False(t, p.IsMinor())

	p.Age = 14
	assert.True(t, p.IsMinor())
}

func TestRepo_CreateGetList(t *testing.T) {
	ctx := context.Background()
	internals := testinternals.NewTestingInternals()
	repo := profile.NewRepo(internals.Store)

	first, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, internals.Clock.Now(), first.CreatedAt)

	internals.Clock.Advance(time.Minute)
	second, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)

	got, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Name, got.Name)
	assert.Equal(t, equipment.Outdoor, got.DefaultEnvironment)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	// the first profile created becomes active
	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestRepo_Limit(t *testing.T) {
	ctx := context.Background()
	internals := testinternals.NewTestingInternals()
	repo := profile.NewRepo(internals.Store)

	for i := 0; i < profile.MaxProfiles; i++ {
		internals.Clock.Advance(time.Second)
		_, err := repo.Create(ctx, fakeProfile())
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, fakeProfile())
	assert.ErrorIs(t, err, profile.ErrLimitReached)
}

func TestRepo_Update(t *testing.T) {
	ctx := context.Background()
	internals := testinternals.NewTestingInternals()
	repo := profile.NewRepo(internals.Store)

	created, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)

	internals.Clock.Advance(time.Hour)
	changed := *created
	changed.Name = "Renamed"
	changed.FitnessLevel = profile.LevelAdvanced
	changed.CreatedAt = time.Time{}

	updated, err := repo.Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, internals.Clock.Now(), updated.UpdatedAt)

	_, err = repo.Update(ctx, profile.Profile{ID: "missing"})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestRepo_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	internals := testinternals.NewTestingInternals()
	repo := profile.NewRepo(internals.Store)

	first, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)
	internals.Clock.Advance(time.Second)
	second, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)

	today := internals.Clock.Now()
	require.NoError(t, internals.Store.Set(ctx, cache.PlanKey(first.ID, today), map[string]string{"id": "p1"}))
	require.NoError(t, internals.Store.Set(ctx, cache.PlanKey(first.ID, today.AddDate(0, 0, -1)), map[string]string{"id": "p0"}))
	require.NoError(t, internals.Store.Set(ctx, cache.ProgressionKey(first.ID), map[string]int{"xp": 10}))
	require.NoError(t, internals.Store.Set(ctx, cache.PlanKey(second.ID, today), map[string]string{"id": "p2"}))

	require.NoError(t, repo.Delete(ctx, first.ID))

	_, err = repo.Get(ctx, first.ID)
	assert.ErrorIs(t, err, profile.ErrNotFound)
	keys, err := internals.Store.Keys(ctx, cache.PlanPrefix(first.ID))
	require.NoError(t, err)
	assert.Empty(t, keys)
	var progression map[string]int
	assert.ErrorIs(t, internals.Store.Get(ctx, cache.ProgressionKey(first.ID), &progression), cache.ErrNotFound)

	// other profiles keep their data, and take over as active
	keys, err = internals.Store.Keys(ctx, cache.PlanPrefix(second.ID))
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	activeID, err := repo.ActiveID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, activeID)

	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err = repo.ActiveID(ctx)
	assert.ErrorIs(t, err, profile.ErrNoActive)

	assert.ErrorIs(t, repo.Delete(ctx, second.ID), profile.ErrNotFound)
}

func TestRepo_SetActive(t *testing.T) {
	ctx := context.Background()
	internals := testinternals.NewTestingInternals()
	repo := profile.NewRepo(internals.Store)

	_, err := repo.Active(ctx)
	assert.ErrorIs(t, err, profile.ErrNoActive)

	first, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)
	internals.Clock.Advance(time.Second)
	second, err := repo.Create(ctx, fakeProfile())
	require.NoError(t, err)

	require.NoError(t, repo.SetActive(ctx, second.ID))
	active, err := repo.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.NotEqual(t, first.ID, active.ID)

	assert.ErrorIs(t, repo.SetActive(ctx, "missing"), profile.ErrNotFound)
}
