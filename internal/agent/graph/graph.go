// Package graph is the orchestration engine: a node registry plus a drive
// loop that walks the router until the machine suspends at the approval gate
// or runs out of work. Suspension is a two-call protocol (Run, then Resume)
// over the per-thread checkpoint; there is no in-process wait.
package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/embeddings"
	"github.com/feedback-insight-poc/server/internal/agent/graph/conversations"
	"github.com/feedback-insight-poc/server/internal/agent/graph/nodes"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

var (
	// ErrThreadSuspended is returned by Run when the thread is paused and
	// needs Resume instead.
	ErrThreadSuspended = errors.New("thread is suspended, resume required")
	// ErrNotSuspended is returned by Resume when the thread has nothing to
	// resume.
	ErrNotSuspended = errors.New("thread is not suspended")
)

// Config holds everything needed to compose the full analysis pipeline
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs chat models, the embedder and the workers.
type Config struct {
	APIKey       string
	BaseURL      string
	PlannerModel model.PlannerModelConfig
	WorkerModel  model.WorkerModelConfig
	Pipeline     model.PipelineConfig
	Store        model.CheckpointStore
}

// GraphConfig holds the wired nodes the engine runs.
type GraphConfig struct {
	Planner        *nodes.Planner
	Gate           *nodes.ApprovalGate
	Sequencer      *nodes.Sequencer
	Workers        []nodes.Worker
	Store          model.CheckpointStore
	OutputDir      string
	MaxTransitions int
}

// Orchestrator drives one transition chain per Run/Resume call. Threads are
// independent; callers must not issue concurrent calls for the same thread.
type Orchestrator struct {
	planner        *nodes.Planner
	gate           *nodes.ApprovalGate
	seq            *nodes.Sequencer
	workers        map[model.Step]nodes.Worker
	store          model.CheckpointStore
	outputDir      string
	maxTransitions int
}

// RunInput is one user turn.
type RunInput struct {
	ThreadID string
	Content  string
	SheetURL string
}

// RunResult carries what one call produced: the new messages, and whether
// the machine is now paused for a human decision.
type RunResult struct {
	Messages         []*schema.Message
	AwaitingHuman    bool
	InterruptMessage string
}

// BuildAnalysisGraph composes chat models, embedder, reader and workers, and
// returns a ready Orchestrator.
func BuildAnalysisGraph(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		PlannerConfig: &cfg.PlannerModel,
		WorkerConfig:  &cfg.WorkerModel,
	})
	if err != nil {
		return nil, err
	}

	plannerCM := nodes.WithCostTracking(cms.Planner, cms.PlannerModelName, nodes.NodePlanner)
	workerCM := nodes.WithCostTracking(cms.Worker, cms.WorkerModelName, "Worker")

	embedder, err := embeddings.NewGeminiEmbedder(cms.Client, cfg.WorkerModel.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	out := cfg.Pipeline.OutputDir
	reader := datasource.NewFileReader()

	orch, err := BuildGraph(&GraphConfig{
		Planner:   nodes.NewPlanner(plannerCM, conversations.NewContextBuilder(conversations.DefaultMaxTurns)),
		Gate:      nodes.NewApprovalGate(),
		Sequencer: nodes.NewSequencer(),
		Workers: []nodes.Worker{
			nodes.NewFetchWorker(reader),
			nodes.NewClusterWorker(workerCM, embedder, cfg.Pipeline.MaxClusters),
			nodes.NewKnowledgeMapWorker(workerCM, out),
			nodes.NewWordcloudWorker(out),
			nodes.NewChartWorker(out),
			nodes.NewReportWorker(workerCM, out),
			nodes.NewEvaluateWorker(workerCM),
		},
		Store:          cfg.Store,
		OutputDir:      out,
		MaxTransitions: cfg.Pipeline.MaxTransitions,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Analysis graph built successfully")
	return orch, nil
}

// BuildGraph validates and registers the nodes.
func BuildGraph(config *GraphConfig) (*Orchestrator, error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Planner == nil || config.Gate == nil || config.Sequencer == nil {
		return nil, fmt.Errorf("core nodes are not properly initialized")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("checkpoint store is nil")
	}

	workers := make(map[model.Step]nodes.Worker, len(config.Workers))
	for _, w := range config.Workers {
		step := w.Step()
		if !step.Valid() {
			return nil, fmt.Errorf("worker registered for unknown step %q", step)
		}
		if _, dup := workers[step]; dup {
			return nil, fmt.Errorf("duplicate worker for step %q", step)
		}
		workers[step] = w
	}
	for _, step := range model.FullPlan() {
		if _, ok := workers[step]; !ok {
			return nil, fmt.Errorf("no worker registered for step %q", step)
		}
	}

	maxTransitions := config.MaxTransitions
	if maxTransitions <= 0 {
		maxTransitions = 32
	}

	return &Orchestrator{
		planner:        config.Planner,
		gate:           config.Gate,
		seq:            config.Sequencer,
		workers:        workers,
		store:          config.Store,
		outputDir:      config.OutputDir,
		maxTransitions: maxTransitions,
	}, nil
}

// Run merges a new user turn into the thread and drives transitions until
// the machine suspends or the chain ends. Fails with ErrThreadSuspended when
// the thread is paused; that input belongs to Resume.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	if in.ThreadID == "" {
		return nil, fmt.Errorf("thread id is empty")
	}

	cp, err := o.store.Load(ctx, in.ThreadID)
	if errors.Is(err, model.ErrCheckpointNotFound) {
		cp = model.NewCheckpoint(in.ThreadID)
	} else if err != nil {
		return nil, err
	}
	if cp.Suspended {
		return nil, ErrThreadSuspended
	}
	if cp.State == nil {
		cp.State = model.NewSharedState()
	}
	cp.State.ThreadID = in.ThreadID

	base := len(cp.State.Messages)
	u := model.Update{
		UserInput: &in.Content,
		Messages:  []*schema.Message{schema.UserMessage(in.Content)},
	}
	if in.SheetURL != "" {
		u.SheetURL = &in.SheetURL
	}
	cp.State.Apply(u)

	return o.drive(ctx, cp, base)
}

// Resume feeds the human decision into the approval gate and continues the
// chain. Fails with ErrNotSuspended when the thread is not paused.
func (o *Orchestrator) Resume(ctx context.Context, threadID, value string) (*RunResult, error) {
	if threadID == "" {
		return nil, fmt.Errorf("thread id is empty")
	}

	cp, err := o.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !cp.Suspended {
		return nil, ErrNotSuspended
	}
	if cp.State == nil {
		cp.State = model.NewSharedState()
	}
	cp.State.ThreadID = threadID

	base := len(cp.State.Messages)
	u, proceed := o.gate.Resolve(cp.State, value)
	cp.State.Apply(u)
	cp.Suspended = false

	if !proceed {
		if err := o.store.Save(ctx, cp); err != nil {
			return nil, err
		}
		return o.result(cp, base), nil
	}
	return o.drive(ctx, cp, base)
}

// Inspect returns the thread's checkpoint without mutating it.
func (o *Orchestrator) Inspect(ctx context.Context, threadID string) (*model.Checkpoint, error) {
	return o.store.Load(ctx, threadID)
}

// Reset discards the thread's checkpoint and its output artifacts.
func (o *Orchestrator) Reset(ctx context.Context, threadID string) error {
	if threadID == "" {
		return fmt.Errorf("thread id is empty")
	}
	if err := o.store.Delete(ctx, threadID); err != nil {
		return err
	}
	if o.outputDir != "" {
		if err := os.RemoveAll(filepath.Join(o.outputDir, threadID)); err != nil {
			logx.Warn().Err(err).Str("threadID", threadID).Msg("failed to remove thread outputs")
		}
	}
	return nil
}

// drive walks the router until a suspension, a worker failure, or the
// transition budget runs out. The checkpoint is saved exactly once, at the
// point the chain stops.
func (o *Orchestrator) drive(ctx context.Context, cp *model.Checkpoint, base int) (*RunResult, error) {
	s := cp.State

	for i := 0; i < o.maxTransitions; i++ {
		target := Route(s)
		logx.Debug().Str("threadID", cp.ThreadID).Str("node", target).Int("transition", i).Msg("routing")

		switch target {
		case nodes.NodeApprovalGate:
			if !s.AwaitingHuman {
				s.Apply(o.gate.Arm(s))
			}
			cp.Suspended = true
			if err := o.store.Save(ctx, cp); err != nil {
				return nil, err
			}
			return o.result(cp, base), nil

		case nodes.NodePlanner:
			u, err := o.invokePlanner(ctx, s)
			if err != nil {
				return o.failChain(ctx, cp, base, "planning", err)
			}
			s.Apply(u)

		default:
			step := model.Step(target)
			w, ok := o.workers[step]
			if !ok {
				return nil, fmt.Errorf("no worker registered for step %q", step)
			}

			s.Apply(model.MessageUpdate(schema.AssistantMessage(
				"⏳ Running: "+step.DisplayName()+"...", nil)))

			u, err := o.invokeWorker(ctx, w, s)
			if err != nil {
				return o.failChain(ctx, cp, base, string(step), err)
			}
			s.Apply(u)
			s.Apply(o.seq.Advance(step, s))
		}
	}

	logx.Warn().Str("threadID", cp.ThreadID).Int("max", o.maxTransitions).Msg("transition budget exhausted")
	s.Apply(model.MessageUpdate(schema.AssistantMessage(
		"⚠️ The run was stopped after too many transitions.", nil)))
	cp.Suspended = false
	if err := o.store.Save(ctx, cp); err != nil {
		return nil, err
	}
	return o.result(cp, base), nil
}

// failChain records a failure message and ends the chain with the cursor
// unchanged, so the user can retry or revise. The thread is not suspended.
func (o *Orchestrator) failChain(ctx context.Context, cp *model.Checkpoint, base int, stage string, cause error) (*RunResult, error) {
	logx.Error().Err(cause).Str("threadID", cp.ThreadID).Str("stage", stage).Msg("step failed")
	cp.State.Apply(model.MessageUpdate(schema.AssistantMessage(
		fmt.Sprintf("❌ Step %q failed: %v. Send a message to retry or revise.", stage, cause), nil)))
	cp.Suspended = false
	if err := o.store.Save(ctx, cp); err != nil {
		return nil, err
	}
	return o.result(cp, base), nil
}

func (o *Orchestrator) invokePlanner(ctx context.Context, s *model.SharedState) (u model.Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("planner panicked: %v", r)
		}
	}()
	return o.planner.Apply(ctx, s)
}

func (o *Orchestrator) invokeWorker(ctx context.Context, w nodes.Worker, s *model.SharedState) (u model.Update, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker %s panicked: %v", w.Step(), r)
		}
	}()
	return w.Apply(ctx, s)
}

func (o *Orchestrator) result(cp *model.Checkpoint, base int) *RunResult {
	s := cp.State
	msgs := make([]*schema.Message, len(s.Messages)-base)
	copy(msgs, s.Messages[base:])
	return &RunResult{
		Messages:         msgs,
		AwaitingHuman:    s.AwaitingHuman,
		InterruptMessage: s.InterruptMessage,
	}
}
