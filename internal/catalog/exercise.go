package catalog

import (
	"net/url"
	"sort"
)

type Provenance string

const (
	ProvenanceNetwork  Provenance = "network"
	ProvenanceFallback Provenance = "fallback"
)

// category keys used by the day rotation, mapped to catalog category ids
var categoryIDs = map[string]int{
	"abs":       10,
	"arms":      8,
	"back":      12,
	"calves":    14,
	"cardio":    15,
	"chest":     11,
	"legs":      9,
	"shoulders": 13,
}

func CategoryID(key string) (int, bool) {
	id, ok := categoryIDs[key]
	return id, ok
}

func CategoryKeys() []string {
	keys := make([]string, 0, len(categoryIDs))
	for k := range categoryIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Muscle struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Equipment struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ExerciseRecord struct {
	ID               string      `json:"id"`
	Source           Provenance  `json:"source"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Category         Category    `json:"category"`
	Muscles          []Muscle    `json:"muscles"`
	MusclesSecondary []Muscle    `json:"musclesSecondary"`
	Equipment        []Equipment `json:"equipment"`
	ImageURL         string      `json:"imageUrl,omitempty"`
	VideoSearchURL   string      `json:"videoSearchUrl"`
	// set for timed exercises, zero means rep based
	DurationSeconds int  `json:"durationSeconds,omitempty"`
	HighImpact      bool `json:"highImpact,omitempty"`
}

func (e ExerciseRecord) Timed() bool {
	return e.DurationSeconds > 0
}

func VideoSearchURL(exerciseName string) string {
	q := url.QueryEscape("how to " + exerciseName + " exercise proper form")
	return "https://www.youtube.com/results?search_query=" + q
}
