package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/feedback-insight-poc/server/internal/agent/graph"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/agent/repo"
	"github.com/feedback-insight-poc/server/internal/core"
	"github.com/feedback-insight-poc/server/internal/server"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
	pkgredis "github.com/feedback-insight-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Pipeline configs
	Planner  model.PlannerModelConfig
	Worker   model.WorkerModelConfig
	Pipeline model.PipelineConfig

	// Server
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`
	Environment string `envconfig:"APP_ENV" default:"development"`
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(envCfg.Pipeline.CheckpointTTL)
	if err != nil {
		log.Fatalf("Invalid PIPELINE_CHECKPOINT_TTL '%s': %v", envCfg.Pipeline.CheckpointTTL, err)
	}

	orch, err := graph.BuildAnalysisGraph(ctx, graph.Config{
		APIKey:       envCfg.APIKey,
		BaseURL:      envCfg.BaseURL,
		PlannerModel: envCfg.Planner,
		WorkerModel:  envCfg.Worker,
		Pipeline:     envCfg.Pipeline,
		Store:        repo.NewRedisCheckpointStore(rdb, ttl),
	})
	if err != nil {
		log.Fatalf("Failed to build analysis graph: %v", err)
	}

	srv := server.New(orch, envCfg.Pipeline.OutputDir)
	logx.Info().Str("addr", envCfg.ListenAddr).Msg("Starting HTTP server")
	if err := srv.Router().Run(envCfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server stopped: %v", err)
	}
}
