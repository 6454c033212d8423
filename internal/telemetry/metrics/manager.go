package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterCatalogLookups      *prometheus.CounterVec
	CounterCatalogFetchErrors  *prometheus.CounterVec
	CounterPlansGenerated      *prometheus.CounterVec
	CounterWorkoutsCompleted   prometheus.Counter
	CounterBadgesUnlocked      *prometheus.CounterVec
	CounterStorePrunes         prometheus.Counter
	CounterStorePrunedEntries  prometheus.Counter
	CounterStoreWriteFailures  *prometheus.CounterVec
	CounterEventsPublished     *prometheus.CounterVec

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge

	// histograms
	HistogramRequestDuration      *prometheus.HistogramVec
	HistogramCatalogFetchDuration prometheus.Histogram
	HistogramXPEarned             prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("fitquest", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitquest", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterCatalogLookups := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_lookups",
		Help:      "Exercise pool lookups by the source that served them",
	}, []string{"source"})
	counterCatalogFetchErrors := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_fetch_errors",
		Help:      "Failed remote catalog fetches by reason",
	}, []string{"reason"})
	counterPlansGenerated := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "plans_generated",
		Help:      "Generated workout plans by trigger",
	}, []string{"trigger"})
	counterWorkoutsCompleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_completed",
		Help:      "The total number of completed workouts",
	})
	counterBadgesUnlocked := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "badges_unlocked",
		Help:      "Unlocked badges by badge id",
	}, []string{"badge"})
	counterStorePrunes := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_prunes",
		Help:      "The total number of store prune passes",
	})
	counterStorePrunedEntries := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_pruned_entries",
		Help:      "The total number of entries removed by prune passes",
	})
	counterStoreWriteFailures := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "store_write_failures",
		Help:      "Store writes that could not be saved, by reason",
	}, []string{"reason"})
	counterEventsPublished := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "events_published",
		Help:      "Published workout events by outcome",
	}, []string{"outcome"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})
	histogramCatalogFetchDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of remote catalog fetches in seconds",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2, 3, 5, 10},
	})
	histogramXPEarned := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "xp_earned",
		Help:      "XP earned per completed workout",
		Buckets:   []float64{25, 50, 75, 100, 150, 200, 300, 400},
	})

	return &Manager{
		CounterRequests:               counterRequests,
		CounterHandleRequestPanic:     counterHandleRequestPanic,
		CounterRateLimitedRequests:    counterRateLimitedRequests,
		CounterCatalogLookups:         counterCatalogLookups,
		CounterCatalogFetchErrors:     counterCatalogFetchErrors,
		CounterPlansGenerated:         counterPlansGenerated,
		CounterWorkoutsCompleted:      counterWorkoutsCompleted,
		CounterBadgesUnlocked:         counterBadgesUnlocked,
		CounterStorePrunes:            counterStorePrunes,
		CounterStorePrunedEntries:     counterStorePrunedEntries,
		CounterStoreWriteFailures:     counterStoreWriteFailures,
		CounterEventsPublished:        counterEventsPublished,
		GaugeRequests:                 gaugeRequests,
		GaugeLifeSignal:               gaugeLifeSignal,
		HistogramRequestDuration:      histogramRequestDuration,
		HistogramCatalogFetchDuration: histogramCatalogFetchDuration,
		HistogramXPEarned:             histogramXPEarned,
	}
}
