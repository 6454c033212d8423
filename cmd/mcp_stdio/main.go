// Package main runs the fitquest MCP server over stdio, for local MCP clients.
// The service also mounts the same tools at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/2beens/fitquest/internal"
	"github.com/2beens/fitquest/internal/config"
	"github.com/2beens/fitquest/internal/events"
	"github.com/2beens/fitquest/internal/logging"
	"github.com/2beens/fitquest/internal/mcp"

	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// stdout carries the protocol, logs go to stderr
	logging.Setup(logging.LoggerSetupParams{
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})
	log.SetOutput(os.Stderr)

	ctx := context.Background()
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

	service := internal.NewWorkoutService(cfg, storage.Store, events.NewLogPublisher(), nil)
	if err := server.ServeStdio(mcp.NewServer(service, "stdio")); err != nil {
		log.Errorf("serve stdio: %s", err)
	}
}
