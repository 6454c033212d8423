package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExercisePoolKey(t *testing.T) {
	a := ExercisePoolKey("home_gym", "chest", []int{11, 3, 7})
	b := ExercisePoolKey("home_gym", "chest", []int{7, 11, 3})
	assert.Equal(t, a, b)
	assert.Equal(t, "exercises::home_gym::chest::3,7,11", a)

	assert.NotEqual(t, a, ExercisePoolKey("home_gym", "back", []int{3, 7, 11}))
	assert.NotEqual(t, a, ExercisePoolKey("outdoor", "chest", []int{3, 7, 11}))

	ids := []int{11, 3, 7}
	ExercisePoolKey("x", "y", ids)
	assert.Equal(t, []int{11, 3, 7}, ids)
}

func TestPlanKey(t *testing.T) {
	date := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	key := PlanKey("a7c1", date)
	assert.Equal(t, "plan::a7c1::2024-03-09", key)

	profileID, parsed, err := ParsePlanKey(key)
	require.NoError(t, err)
	assert.Equal(t, "a7c1", profileID)
	assert.Equal(t, "2024-03-09", parsed.Format(DateLayout))

	_, _, err = ParsePlanKey("progression::a7c1")
	require.Error(t, err)
	_, _, err = ParsePlanKey("plan::2024-03-09")
	require.Error(t, err)
	_, _, err = ParsePlanKey("plan::a7c1::yesterday")
	require.Error(t, err)
}
