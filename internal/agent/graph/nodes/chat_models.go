package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey        string
	BaseURL       string
	PlannerConfig *model.PlannerModelConfig
	WorkerConfig  *model.WorkerModelConfig
}

// ChatModels holds the planner and worker chat models plus the shared genai
// client, which the embedder reuses so the process keeps one API connection.
type ChatModels struct {
	Planner          *gemini.ChatModel
	Worker           *gemini.ChatModel
	Client           *genai.Client
	PlannerModelName string
	WorkerModelName  string
}

// NewChatModels creates both the planner and worker chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	if config.PlannerConfig == nil || config.WorkerConfig == nil {
		return nil, fmt.Errorf("model config is nil")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	// Planner: intent classification and plan generation, deterministic
	chatModelPlanner, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.PlannerConfig.Model,
		Temperature: &config.PlannerConfig.Temperature,
		MaxTokens:   &config.PlannerConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating planner model")
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}

	// Worker: cluster naming, knowledge map, report and evaluation
	chatModelWorker, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.WorkerConfig.Model,
		Temperature: &config.WorkerConfig.Temperature,
		MaxTokens:   &config.WorkerConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating worker model")
		return nil, fmt.Errorf("error creating worker model: %w", err)
	}

	return &ChatModels{
		Planner:          chatModelPlanner,
		Worker:           chatModelWorker,
		Client:           client,
		PlannerModelName: config.PlannerConfig.Model,
		WorkerModelName:  config.WorkerConfig.Model,
	}, nil
}
