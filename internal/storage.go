package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/2beens/fitquest/internal/cache"
	"github.com/2beens/fitquest/internal/config"
	"github.com/2beens/fitquest/internal/db"
	"github.com/2beens/fitquest/internal/telemetry/metrics"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Storage is the cache store together with the clients backing it.
// Only the client of the configured backend is set.
type Storage struct {
	Store       *cache.Store
	RedisClient *redis.Client
	DBPool      *pgxpool.Pool
}

type StorageParams struct {
	Config         *config.Config
	RedisPassword  string
	DBPassword     string
	TracingEnabled bool
	MetricsManager *metrics.Manager
}

func NewStorage(ctx context.Context, params StorageParams) (_ *Storage, err error) {
	cfg := params.Config
	s := &Storage{}

	var backend cache.Backend
	switch cfg.StorageBackend {
	case config.StorageMemory:
		backend = cache.NewMemoryBackend(cfg.MemoryCacheSizeMB, cfg.MemoryMaxEntries)
	case config.StorageSQLite:
		backend, err = cache.NewSQLiteBackend(ctx, cfg.SQLitePath, cfg.SQLiteMaxBytes)
		if err != nil {
			return nil, fmt.Errorf("new sqlite backend: %w", err)
		}
	case config.StorageRedis:
		s.RedisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.TracingEnabled {
			s.RedisClient.AddHook(redisotel.NewTracingHook())
		}
		rdbStatus := s.RedisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		backend = cache.NewRedisBackend(s.RedisClient)
	case config.StoragePostgres:
		s.DBPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.DBPassword,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := s.DBPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		backend, err = cache.NewPostgresBackend(ctx, s.DBPool, cfg.PostgresMaxEntries)
		if err != nil {
			s.DBPool.Close()
			return nil, fmt.Errorf("new postgres backend: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
	log.Infof("storage backend: %s", cfg.StorageBackend)

	s.Store = cache.NewStore(cache.StoreParams{
		Backend:        backend,
		Retention:      cfg.PlanRetention(),
		Location:       cfg.Location(),
		MetricsManager: params.MetricsManager,
	})

	return s, nil
}

// HealthCheck does a cheap read against the backend.
func (s *Storage) HealthCheck(ctx context.Context) error {
	_, err := s.Store.Keys(ctx, cache.ActiveProfileKey())
	return err
}

func (s *Storage) Close() error {
	var errs error
	// the redis backend closes its own client
	if s.Store != nil {
		errs = multierr.Append(errs, s.Store.Close())
	}
	if s.DBPool != nil {
		log.Debugln("closing db pool ...")
		s.DBPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}
	return errs
}
