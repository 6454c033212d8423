// Package equipment maps a training environment and a list of accessories
// onto the catalog equipment ids available for a session.
package equipment

import (
	"sort"
)

type Environment string

const (
	HomeNoEquipment Environment = "home_no_equipment"
	HomeGym         Environment = "home_gym"
	Outdoor         Environment = "outdoor"
	Calisthenics    Environment = "calisthenics"
)

// Catalog equipment ids.
const (
	Dumbbell       = 3
	GymMat         = 4
	PullUpBar      = 6
	Bodyweight     = 7
	Kettlebell     = 10
	ResistanceBand = 11
)

var environmentBase = map[Environment][]int{
	HomeNoEquipment: {Bodyweight},
	HomeGym:         {Bodyweight, Dumbbell, ResistanceBand},
	Outdoor:         {Bodyweight, GymMat},
	Calisthenics:    {Bodyweight, PullUpBar, GymMat},
}

// accessory keys are the ones offered in the session picker
var accessoryEquipment = map[string]int{
	"dumbbell":        Dumbbell,
	"resistance_band": ResistanceBand,
	"pullup_bar":      PullUpBar,
	"kettlebell":      Kettlebell,
	"mat":             GymMat,
	"bench":           Dumbbell,
	"rings":           PullUpBar,
	"parallel_bars":   PullUpBar,
}

// fallback dataset archetypes
const (
	ArchetypeBodyweight   = "bodyweight"
	ArchetypeHomeGym      = "home_gym"
	ArchetypeOutdoor      = "outdoor"
	ArchetypeCalisthenics = "calisthenics"
)

var environmentArchetype = map[Environment]string{
	HomeNoEquipment: ArchetypeBodyweight,
	HomeGym:         ArchetypeHomeGym,
	Outdoor:         ArchetypeOutdoor,
	Calisthenics:    ArchetypeCalisthenics,
}

// Set is a de-duplicated list of equipment ids in insertion order.
type Set struct {
	ids []int
}

func (s Set) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s Set) Sorted() []int {
	out := s.IDs()
	sort.Ints(out)
	return out
}

func (s Set) Contains(id int) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s Set) Len() int {
	return len(s.ids)
}

func (s *Set) add(id int) {
	if !s.Contains(id) {
		s.ids = append(s.ids, id)
	}
}

// Resolve never fails: unknown environments get bodyweight only and unknown
// accessories are ignored. The result always contains at least one id.
func Resolve(environment Environment, accessories []string) Set {
	base, ok := environmentBase[environment]
	if !ok {
		base = []int{Bodyweight}
	}

	var set Set
	for _, id := range base {
		set.add(id)
	}
	for _, acc := range accessories {
		if id, ok := accessoryEquipment[acc]; ok {
			set.add(id)
		}
	}

	return set
}

// Archetype returns the fallback dataset pool for environment.
func Archetype(environment Environment) string {
	if a, ok := environmentArchetype[environment]; ok {
		return a
	}
	return ArchetypeBodyweight
}

func KnownEnvironments() []Environment {
	return []Environment{HomeNoEquipment, HomeGym, Outdoor, Calisthenics}
}

func IsKnown(environment Environment) bool {
	_, ok := environmentBase[environment]
	return ok
}

func KnownAccessories() []string {
	out := make([]string, 0, len(accessoryEquipment))
	for k := range accessoryEquipment {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
