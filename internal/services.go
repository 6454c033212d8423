package internal

import (
	"net/http"
	"time"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/catalog"
	"github.com/2beens/fitquest/internal/config"
	"github.com/2beens/fitquest/internal/events"
	"github.com/2beens/fitquest/internal/plan"
	"github.com/2beens/fitquest/internal/profile"
	"github.com/2beens/fitquest/internal/progression"
	"github.com/2beens/fitquest/internal/telemetry/metrics"
	"github.com/2beens/fitquest/internal/workout"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewCatalogPipeline builds the exercise pipeline over the remote catalog,
// with the bundled dataset as fallback.
func NewCatalogPipeline(cfg *config.Config, store *cache.Store, metricsManager *metrics.Manager) *catalog.Pipeline {
	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.CatalogFetchTimeout() + time.Second,
	}

	return catalog.NewPipeline(catalog.PipelineParams{
		Store: store,
		Fetcher: catalog.NewWgerClient(
			cfg.CatalogBaseURL,
			tracedHttpClient,
			cfg.CatalogPageLimit,
			cfg.Locale,
		),
		Fallback:       catalog.LoadFallbackDataset(cfg.FallbackDatasetPath),
		Locale:         cfg.Locale,
		FetchTimeout:   cfg.CatalogFetchTimeout(),
		CacheTTL:       cfg.ExerciseCacheTTL(),
		MetricsManager: metricsManager,
	})
}

// NewWorkoutService wires the repos, the plan generator and the progression
// engine over store.
func NewWorkoutService(
	cfg *config.Config,
	store *cache.Store,
	publisher events.Publisher,
	metricsManager *metrics.Manager,
) *workout.Service {
	pipeline := NewCatalogPipeline(cfg, store, metricsManager)
	plans := plan.NewRepo(store)

	return workout.NewService(workout.ServiceParams{
		Profiles: profile.NewRepo(store),
		Plans:    plans,
		Generator: plan.NewGenerator(plan.GeneratorParams{
			Source:         pipeline,
			Repo:           plans,
			MetricsManager: metricsManager,
		}),
		Engine: progression.NewEngine(progression.EngineParams{
			Store:          store,
			Publisher:      publisher,
			HistoryLimit:   cfg.HistoryLimit,
			MetricsManager: metricsManager,
		}),
	})
}
