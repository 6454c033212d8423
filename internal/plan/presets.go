package plan

import (
	"math"
	"time"

	"github.com/2beens/fitquest/internal/profile"
)

const (
	SecondsPerRep             = 4
	MinPlanMinutes            = 10
	DefaultDifficultyModifier = 2.0
	MinDifficulty             = 1
	MaxDifficulty             = 5
)

type Preset struct {
	Sets        int `json:"sets"`
	Reps        int `json:"reps"`
	RestSeconds int `json:"restSeconds"`
}

var difficultyPresets = map[int]Preset{
	1: {Sets: 2, Reps: 8, RestSeconds: 90},
	2: {Sets: 3, Reps: 10, RestSeconds: 75},
	3: {Sets: 3, Reps: 12, RestSeconds: 60},
	4: {Sets: 4, Reps: 12, RestSeconds: 45},
	5: {Sets: 4, Reps: 15, RestSeconds: 30},
}

// day of week (sunday first) -> category keys
var dayRotation = [7][]string{
	{"chest", "arms"},
	{"back", "shoulders"},
	{"legs", "calves"},
	{"abs", "cardio"},
	{"chest", "shoulders"},
	{"legs", "abs"},
	{"cardio", "back"},
}

var exerciseCount = map[profile.FitnessLevel]int{
	profile.LevelBeginner:     4,
	profile.LevelIntermediate: 6,
	profile.LevelAdvanced:     8,
}

func PresetForTier(tier int) Preset {
	return difficultyPresets[ClampTier(tier)]
}

func RotationFor(date time.Time) []string {
	return dayRotation[date.Weekday()]
}

func ExerciseCount(level profile.FitnessLevel) int {
	if n, ok := exerciseCount[level]; ok {
		return n
	}
	return 4
}

func ClampTier(tier int) int {
	return min(max(tier, MinDifficulty), MaxDifficulty)
}

// TierFromModifier clamps the adaptive modifier to [1,5] and rounds it.
// A non-positive modifier counts as unset.
func TierFromModifier(modifier float64) int {
	if modifier <= 0 || math.IsNaN(modifier) {
		modifier = DefaultDifficultyModifier
	}
	clamped := math.Max(MinDifficulty, math.Min(MaxDifficulty, modifier))
	return int(math.Round(clamped))
}

// EstimateDurationMinutes sums sets x (rest + work) over all exercises.
func EstimateDurationMinutes(exercises []WorkoutExercise) int {
	total := 0
	for _, ex := range exercises {
		total += ex.Sets * (ex.RestSeconds + ex.Effort.WorkSeconds())
	}
	minutes := int(math.Round(float64(total) / 60))
	return max(minutes, MinPlanMinutes)
}
