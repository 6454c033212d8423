package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	DefaultCacheTTL     = 24 * time.Hour

	sourceCache    = "cache"
	sourceNetwork  = "network"
	sourceFallback = "fallback"
)

//go:generate mockgen -source=$GOFILE -destination=pipeline_mocks_test.go -package=catalog_test
type exercisesFetcher interface {
	FetchExercises(ctx context.Context, q Query) ([]ExerciseRecord, error)
}

// Pipeline serves exercise pools from the cache, the remote catalog, or the
// bundled fallback dataset, in that order. It never returns an error.
type Pipeline struct {
	store          *cache.Store
	fetcher        exercisesFetcher
	fallback       *FallbackDataset
	locale         string
	fetchTimeout   time.Duration
	cacheTTL       time.Duration
	metricsManager *metrics.Manager
	group          singleflight.Group
}

type PipelineParams struct {
	Store          *cache.Store
	Fetcher        exercisesFetcher
	Fallback       *FallbackDataset
	Locale         string
	FetchTimeout   time.Duration
	CacheTTL       time.Duration
	MetricsManager *metrics.Manager
}

func NewPipeline(params PipelineParams) *Pipeline {
	p := &Pipeline{
		store:          params.Store,
		fetcher:        params.Fetcher,
		fallback:       params.Fallback,
		locale:         NormalizeLocale(params.Locale),
		fetchTimeout:   params.FetchTimeout,
		cacheTTL:       params.CacheTTL,
		metricsManager: params.MetricsManager,
	}
	if p.fetchTimeout <= 0 {
		p.fetchTimeout = DefaultFetchTimeout
	}
	if p.cacheTTL <= 0 {
		p.cacheTTL = DefaultCacheTTL
	}
	if p.fallback == nil {
		p.fallback = emptyFallbackDataset()
	}
	return p
}

type fetchResult struct {
	records []ExerciseRecord
	err     error
}

var errEmptyResponse = errors.New("empty response")

func (p *Pipeline) GetExercises(
	ctx context.Context,
	environment equipment.Environment,
	categoryKey string,
	equipmentIDs []int,
) []ExerciseRecord {
	ctx, span := tracing.GlobalTracer.Start(ctx, "catalog.getExercises")
	defer span.End()
	span.SetAttributes(
		attribute.String("environment", string(environment)),
		attribute.String("category", categoryKey),
	)

	if len(equipmentIDs) == 0 {
		equipmentIDs = equipment.Resolve(environment, nil).IDs()
	}
	key := cache.ExercisePoolKey(string(environment), categoryKey, equipmentIDs)

	var cached []ExerciseRecord
	err := p.store.Get(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		log.Tracef("catalog: %s served from cache", key)
		p.countLookup(sourceCache)
		span.SetAttributes(attribute.String("source", sourceCache))
		return cached
	case err != nil && !errors.Is(err, cache.ErrNotFound):
		log.Warnf("catalog: read cache %s: %s", key, err)
	}

	// the shared fetch outlives any single caller, it is bounded by the fetch timeout only
	sharedCtx := context.WithoutCancel(ctx)
	resCh := p.group.DoChan(key, func() (interface{}, error) {
		return p.fetchAndCache(sharedCtx, key, categoryKey, equipmentIDs)
	})

	select {
	case res := <-resCh:
		err = res.Err
		if err == nil {
			p.countLookup(sourceNetwork)
			span.SetAttributes(attribute.String("source", sourceNetwork))
			return res.Val.([]ExerciseRecord)
		}
	case <-ctx.Done():
		err = ctx.Err()
	}

	log.Warnf("catalog: fetch for %s failed, using fallback: %s", categoryKey, err)
	p.countLookup(sourceFallback)
	span.SetAttributes(attribute.String("source", sourceFallback))
	return p.fallback.Exercises(equipment.Archetype(environment), categoryKey, p.locale)
}

// fetchAndCache runs the remote fetch bounded by the fetch timeout. A response
// arriving after the deadline is dropped and never cached.
func (p *Pipeline) fetchAndCache(ctx context.Context, key, categoryKey string, equipmentIDs []int) ([]ExerciseRecord, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	started := time.Now()
	resultCh := make(chan fetchResult, 1)
	go func() {
		records, err := p.fetcher.FetchExercises(fetchCtx, Query{
			CategoryKey:  categoryKey,
			EquipmentIDs: equipmentIDs,
		})
		resultCh <- fetchResult{records: records, err: err}
	}()

	var res fetchResult
	select {
	case res = <-resultCh:
	case <-fetchCtx.Done():
	}
	if fetchCtx.Err() != nil {
		p.countFetchError("timeout")
		return nil, fmt.Errorf("fetch %s: %w", categoryKey, fetchCtx.Err())
	}

	if p.metricsManager != nil {
		p.metricsManager.HistogramCatalogFetchDuration.Observe(time.Since(started).Seconds())
	}

	if res.err != nil {
		p.countFetchError("error")
		return nil, res.err
	}
	if len(res.records) == 0 {
		p.countFetchError("empty")
		return nil, errEmptyResponse
	}

	if err := p.store.SetWithTTL(ctx, key, res.records, p.cacheTTL); err != nil {
		log.Errorf("catalog: cache %s: %s", key, err)
	}

	return res.records, nil
}

// WarmUp fetches every category pool for each environment's base equipment.
func (p *Pipeline) WarmUp(ctx context.Context, environments []equipment.Environment) map[string]int {
	warmed := make(map[string]int)
	for _, env := range environments {
		ids := equipment.Resolve(env, nil).IDs()
		for _, cat := range CategoryKeys() {
			if ctx.Err() != nil {
				return warmed
			}
			records := p.GetExercises(ctx, env, cat, ids)
			warmed[cache.ExercisePoolKey(string(env), cat, ids)] = len(records)
		}
	}
	return warmed
}

func (p *Pipeline) countLookup(source string) {
	if p.metricsManager != nil {
		p.metricsManager.CounterCatalogLookups.WithLabelValues(source).Inc()
	}
}

func (p *Pipeline) countFetchError(reason string) {
	if p.metricsManager != nil {
		p.metricsManager.CounterCatalogFetchErrors.WithLabelValues(reason).Inc()
	}
}
