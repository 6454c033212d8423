package profile

import (
	"strings"
	"time"

	"github.com/2beens/fitquest/internal/equipment"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"

	UnitsMetric   = "metric"
	UnitsImperial = "imperial"

	GoalStayActive = "stay_active"
)

// MinorAgeThreshold is the age below which high impact fallback exercises are left out of plans.
const MinorAgeThreshold = 15

type Profile struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Age                int                   `json:"age"`
	Gender             string                `json:"gender"`
	WeightKg           float64               `json:"weight"`
	HeightCm           float64               `json:"height"`
	FitnessLevel       FitnessLevel          `json:"fitnessLevel"`
	Goals              []string              `json:"goals"`
	DefaultEnvironment equipment.Environment `json:"defaultEnvironment"`
	UnitPreference     string                `json:"unitPreference"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

func (p *Profile) IsMinor() bool {
	return p.Age < MinorAgeThreshold
}

// ApplyDefaults fills every unset or unusable field with a safe value.
// Profile input is never rejected for being out of range.
func (p *Profile) ApplyDefaults() {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = "User"
	}
	if p.Age <= 0 {
		p.Age = 25
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		p.Gender = GenderOther
	}
	if p.WeightKg <= 0 {
		p.WeightKg = 70
	}
	if p.HeightCm <= 0 {
		p.HeightCm = 170
	}
	switch p.FitnessLevel {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		p.FitnessLevel = LevelBeginner
	}
	if len(p.Goals) == 0 {
		p.Goals = []string{GoalStayActive}
	}
	if !equipment.IsKnown(p.DefaultEnvironment) {
		p.DefaultEnvironment = equipment.HomeNoEquipment
	}
	if p.UnitPreference != UnitsImperial {
		p.UnitPreference = UnitsMetric
	}
}
