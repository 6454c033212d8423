// Package main fills the exercise cache for every environment, so the first
// plans of the day do not wait on the remote catalog.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/2beens/fitquest/internal"
	"github.com/2beens/fitquest/internal/config"
	"github.com/2beens/fitquest/internal/equipment"
	"github.com/2beens/fitquest/internal/logging"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	timeout := flag.Duration("timeout", 2*time.Minute, "max duration of the whole warm up")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	storage, err := internal.NewStorage(ctx, internal.StorageParams{
		Config:        cfg,
		RedisPassword: os.Getenv("FITQUEST_REDIS_PASS"),
		DBPassword:    os.Getenv("FITQUEST_DB_PASS"),
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			log.Errorf("close storage: %s", err)
		}
	}()

	if cfg.StorageBackend == config.StorageMemory {
		log.Warnln("memory backend: the warmed cache is lost when this command exits")
	}

	pipeline := internal.NewCatalogPipeline(cfg, storage.Store, nil)
	warmed := pipeline.WarmUp(ctx, equipment.KnownEnvironments())

	keys := make([]string, 0, len(warmed))
	for k := range warmed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.Infof("%-60s %d exercises", k, warmed[k])
	}
	log.Infof("warmed %d exercise pools", len(keys))
}
