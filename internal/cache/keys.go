package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"

	exercisesPrefix   = "exercises::"
	planPrefix        = "plan::"
	progressionPrefix = "progression::"
	profilePrefix     = "profile::"
	activeProfileKey  = "active_profile"
	keySep            = "::"
)

// ExercisePoolKey is the same for any ordering of equipmentIDs.
func ExercisePoolKey(environment, category string, equipmentIDs []int) string {
	ids := make([]int, len(equipmentIDs))
	copy(ids, equipmentIDs)
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	return exercisesPrefix + environment + keySep + category + keySep + strings.Join(parts, ",")
}

func ExercisesPrefix() string {
	return exercisesPrefix
}

func PlanKey(profileID string, date time.Time) string {
	return PlanPrefix(profileID) + date.Format(DateLayout)
}

func PlanPrefix(profileID string) string {
	return planPrefix + profileID + keySep
}

func AllPlansPrefix() string {
	return planPrefix
}

// ParsePlanKey returns the profile id and date encoded in a plan key.
func ParsePlanKey(key string) (string, time.Time, error) {
	if !strings.HasPrefix(key, planPrefix) {
		return "", time.Time{}, fmt.Errorf("not a plan key: %s", key)
	}

	rest := strings.TrimPrefix(key, planPrefix)
	idx := strings.LastIndex(rest, keySep)
	if idx <= 0 {
		return "", time.Time{}, fmt.Errorf("malformed plan key: %s", key)
	}

	date, err := time.Parse(DateLayout, rest[idx+len(keySep):])
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse plan key date: %w", err)
	}

	return rest[:idx], date, nil
}

func ProgressionKey(profileID string) string {
	return progressionPrefix + profileID
}

func ProfileKey(profileID string) string {
	return profilePrefix + profileID
}

func ProfilesPrefix() string {
	return profilePrefix
}

func ActiveProfileKey() string {
	return activeProfileKey
}
