package model

// ================ Config ================

// PlannerModelConfig configures the intent-classification / plan-generation
// chat model.
type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0"`
}

// WorkerModelConfig configures the chat model shared by the analysis workers
// (sentiment, cluster naming, knowledge map, report, evaluation) and the
// embedding model used for clustering.
type WorkerModelConfig struct {
	Model          string  `envconfig:"WORKER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"WORKER_MAX_TOKENS" default:"4000"`
	Temperature    float32 `envconfig:"WORKER_TEMPERATURE" default:"0.3"`
	EmbeddingModel string  `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
}

// PipelineConfig configures the orchestration engine itself.
type PipelineConfig struct {
	OutputDir      string `envconfig:"PIPELINE_OUTPUT_DIR" default:"outputs"`
	CheckpointTTL  string `envconfig:"PIPELINE_CHECKPOINT_TTL" default:"24h"`
	MaxTransitions int    `envconfig:"PIPELINE_MAX_TRANSITIONS" default:"32"`
	MaxClusters    int    `envconfig:"PIPELINE_MAX_CLUSTERS" default:"5"`
}
