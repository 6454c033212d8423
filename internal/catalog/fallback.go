package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/2beens/fitquest/internal/equipment"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed fallback_exercises.yaml
var embeddedFallback []byte

type fallbackCategory struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	NameHe string `yaml:"name_he"`
}

type fallbackRef struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type fallbackRecord struct {
	ID               string           `yaml:"id"`
	Name             string           `yaml:"name"`
	NameHe           string           `yaml:"name_he"`
	Description      string           `yaml:"description"`
	DescriptionHe    string           `yaml:"description_he"`
	Category         fallbackCategory `yaml:"category"`
	Muscles          []fallbackRef    `yaml:"muscles"`
	MusclesSecondary []fallbackRef    `yaml:"muscles_secondary"`
	Equipment        []fallbackRef    `yaml:"equipment"`
	ImageURL         string           `yaml:"image_url"`
	DurationSeconds  int              `yaml:"duration_seconds"`
	HighImpact       bool             `yaml:"high_impact"`
}

// FallbackDataset holds the bundled exercise pools, keyed by archetype.
// It is read-only after loading.
type FallbackDataset struct {
	pools map[string][]fallbackRecord
}

func ParseFallbackDataset(data []byte) (*FallbackDataset, error) {
	pools := make(map[string][]fallbackRecord)
	if err := yaml.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("unmarshal fallback dataset: %w", err)
	}
	return &FallbackDataset{pools: pools}, nil
}

// LoadFallbackDataset reads the dataset at path, or the embedded one when path
// is empty. A dataset that cannot be read yields empty pools.
func LoadFallbackDataset(path string) *FallbackDataset {
	data := embeddedFallback
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			log.Errorf("read fallback dataset %s: %s", path, err)
			return emptyFallbackDataset()
		}
		data = fileData
	}

	dataset, err := ParseFallbackDataset(data)
	if err != nil {
		log.Errorf("load fallback dataset: %s", err)
		return emptyFallbackDataset()
	}

	for archetype, pool := range dataset.pools {
		log.Debugf("fallback dataset: %s has %d exercises", archetype, len(pool))
	}
	return dataset
}

func emptyFallbackDataset() *FallbackDataset {
	return &FallbackDataset{
		pools: map[string][]fallbackRecord{
			equipment.ArchetypeBodyweight:   {},
			equipment.ArchetypeHomeGym:      {},
			equipment.ArchetypeOutdoor:      {},
			equipment.ArchetypeCalisthenics: {},
		},
	}
}

func (d *FallbackDataset) PoolSize(archetype string) int {
	return len(d.pool(archetype))
}

func (d *FallbackDataset) pool(archetype string) []fallbackRecord {
	if pool := d.pools[archetype]; len(pool) > 0 {
		return pool
	}
	return d.pools[equipment.ArchetypeBodyweight]
}

// Exercises returns the archetype pool filtered by category key. The filter
// matches the key as a case-insensitive substring of the english category
// name, except cardio which matches every record. No match at all means the
// whole pool is returned.
func (d *FallbackDataset) Exercises(archetype, categoryKey, locale string) []ExerciseRecord {
	pool := d.pool(archetype)
	cat := strings.ToLower(categoryKey)

	var filtered []fallbackRecord
	for _, rec := range pool {
		if cat == "cardio" || strings.Contains(strings.ToLower(rec.Category.Name), cat) {
			filtered = append(filtered, rec)
		}
	}
	if len(filtered) == 0 {
		filtered = pool
	}

	hebrew := NormalizeLocale(locale) == LocaleHebrew
	records := make([]ExerciseRecord, 0, len(filtered))
	for _, rec := range filtered {
		records = append(records, rec.toExercise(hebrew))
	}
	return records
}

func (r fallbackRecord) toExercise(hebrew bool) ExerciseRecord {
	name, description, categoryName := r.Name, r.Description, r.Category.Name
	if hebrew {
		if r.NameHe != "" {
			name = r.NameHe
		}
		if r.DescriptionHe != "" {
			description = r.DescriptionHe
		}
		if r.Category.NameHe != "" {
			categoryName = r.Category.NameHe
		}
	}

	return ExerciseRecord{
		ID:               r.ID,
		Source:           ProvenanceFallback,
		Name:             name,
		Description:      description,
		Category:         Category{ID: r.Category.ID, Name: categoryName},
		Muscles:          toMuscles(r.Muscles),
		MusclesSecondary: toMuscles(r.MusclesSecondary),
		Equipment:        toEquipment(r.Equipment),
		ImageURL:         r.ImageURL,
		VideoSearchURL:   VideoSearchURL(name),
		DurationSeconds:  r.DurationSeconds,
		HighImpact:       r.HighImpact,
	}
}

func toMuscles(refs []fallbackRef) []Muscle {
	out := make([]Muscle, 0, len(refs))
	for _, m := range refs {
		out = append(out, Muscle{ID: m.ID, Name: m.Name})
	}
	return out
}

func toEquipment(refs []fallbackRef) []Equipment {
	out := make([]Equipment, 0, len(refs))
	for _, e := range refs {
		out = append(out, Equipment{ID: e.ID, Name: e.Name})
	}
	return out
}
