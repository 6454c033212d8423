package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/fitquest/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultWgerBaseURL = "https://wger.de/api/v2"
	DefaultPageLimit   = 25
)

type Query struct {
	CategoryKey  string
	EquipmentIDs []int
}

// WgerClient reads exercises from the wger exerciseinfo endpoint.
type WgerClient struct {
	baseURL    string
	httpClient *http.Client
	limit      int
	locale     string
}

func NewWgerClient(baseURL string, httpClient *http.Client, limit int, locale string) *WgerClient {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &WgerClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		limit:      limit,
		locale:     NormalizeLocale(locale),
	}
}

type wgerResponse struct {
	Count   int            `json:"count"`
	Results []wgerExercise `json:"results"`
}

type wgerExercise struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	Category         *wgerCategory     `json:"category"`
	Muscles          []wgerMuscle      `json:"muscles"`
	MusclesSecondary []wgerMuscle      `json:"muscles_secondary"`
	Equipment        []wgerEquipment   `json:"equipment"`
	Images           []wgerImage       `json:"images"`
	Translations     []wgerTranslation `json:"translations"`
}

type wgerCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wgerMuscle struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
}

type wgerEquipment struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wgerImage struct {
	Image string `json:"image"`
}

type wgerTranslation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    int    `json:"language"`
}

func (c *WgerClient) FetchExercises(ctx context.Context, q Query) (_ []ExerciseRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "wger.fetchExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	categoryID, ok := CategoryID(q.CategoryKey)
	if !ok {
		return nil, fmt.Errorf("unknown category: %s", q.CategoryKey)
	}
	span.SetAttributes(
		attribute.String("category", q.CategoryKey),
		attribute.IntSlice("equipment", q.EquipmentIDs),
	)

	ids := make([]string, len(q.EquipmentIDs))
	for i, id := range q.EquipmentIDs {
		ids[i] = strconv.Itoa(id)
	}

	reqURL := fmt.Sprintf(
		"%s/exerciseinfo/?format=json&language=%d&equipment=%s&category=%d&limit=%d&offset=0",
		c.baseURL, englishLanguageID, strings.Join(ids, ","), categoryID, c.limit,
	)
	log.Tracef("wger: calling %s", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get exercises: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get exercises: unexpected status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read exercises response: %w", err)
	}

	var wgerResp wgerResponse
	if err := json.Unmarshal(respBytes, &wgerResp); err != nil {
		return nil, fmt.Errorf("unmarshal exercises response: %w", err)
	}

	records := make([]ExerciseRecord, 0, len(wgerResp.Results))
	for _, raw := range wgerResp.Results {
		records = append(records, normalizeWgerExercise(raw, c.locale))
	}
	span.SetAttributes(attribute.Int("results", len(records)))

	return records, nil
}

// pickTranslation prefers the display locale, then english, then whatever comes first.
func pickTranslation(translations []wgerTranslation, locale string) wgerTranslation {
	if len(translations) == 0 {
		return wgerTranslation{}
	}
	if id, ok := catalogLanguageID(locale); ok {
		for _, t := range translations {
			if t.Language == id {
				return t
			}
		}
	}
	for _, t := range translations {
		if t.Language == englishLanguageID {
			return t
		}
	}
	return translations[0]
}

func normalizeWgerExercise(raw wgerExercise, locale string) ExerciseRecord {
	trans := pickTranslation(raw.Translations, locale)

	name := trans.Name
	if name == "" {
		name = raw.Name
	}
	if name == "" {
		name = "Exercise"
	}

	category := Category{ID: 0, Name: "General"}
	if raw.Category != nil {
		category = Category{ID: raw.Category.ID, Name: raw.Category.Name}
	}

	record := ExerciseRecord{
		ID:               strconv.Itoa(raw.ID),
		Source:           ProvenanceNetwork,
		Name:             name,
		Description:      StripMarkup(trans.Description),
		Category:         category,
		Muscles:          normalizeMuscles(raw.Muscles),
		MusclesSecondary: normalizeMuscles(raw.MusclesSecondary),
		Equipment:        make([]Equipment, 0, len(raw.Equipment)),
		VideoSearchURL:   VideoSearchURL(name),
	}
	for _, e := range raw.Equipment {
		record.Equipment = append(record.Equipment, Equipment{ID: e.ID, Name: e.Name})
	}
	if len(raw.Images) > 0 {
		record.ImageURL = raw.Images[0].Image
	}

	return record
}

func normalizeMuscles(raw []wgerMuscle) []Muscle {
	muscles := make([]Muscle, 0, len(raw))
	for _, m := range raw {
		name := m.NameEn
		if name == "" {
			name = m.Name
		}
		muscles = append(muscles, Muscle{ID: m.ID, Name: name})
	}
	return muscles
}
