package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/graph/conversations"
	"github.com/feedback-insight-poc/server/internal/agent/graph/parsers"
	"github.com/feedback-insight-poc/server/internal/agent/graph/prompts"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// ApprovalPrompt is the interrupt message shown while the machine waits for
// plan approval.
const ApprovalPrompt = `Reply "approved" to run this plan, or describe the changes you want.`

// Planner turns the latest user input into a query context and an approved
// plan proposal. It is the only node that writes `plan`; the gate and the
// sequencer only consume it.
type Planner struct {
	cm model.ChatModel
	cb *conversations.ContextBuilder
}

func NewPlanner(cm model.ChatModel, cb *conversations.ContextBuilder) *Planner {
	if cb == nil {
		cb = conversations.NewContextBuilder(conversations.DefaultMaxTurns)
	}
	return &Planner{cm: cm, cb: cb}
}

// Apply classifies intent when no query context exists yet, pauses for
// clarification when the classifier asks for it, and otherwise synthesizes a
// normalized plan and arms the approval pause.
func (p *Planner) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	var u model.Update

	qc := s.QueryContext
	if qc == nil {
		qc = p.classify(ctx, p.cb.BuildPlannerContext(s.Messages, s.UserInput))

		if qc.NeedsClarification {
			question := strings.TrimSpace(qc.ClarificationQuestion)
			if question == "" {
				question = "Could you describe what you want analyzed in a bit more detail?"
			}
			// clear the flag in the stored context so the reply does not
			// re-trigger the clarification pause
			stored := *qc
			stored.NeedsClarification = false
			stored.ClarificationQuestion = ""

			u.QueryContext = &stored
			u.AwaitingHuman = boolPtr(true)
			u.InterruptMessage = strPtr(question)
			u.Messages = []*schema.Message{schema.AssistantMessage(question, nil)}
			return u, nil
		}
		u.QueryContext = qc
	}

	plan, explanation := p.generatePlan(ctx, s.UserInput, qc)

	u.Plan = plan
	u.PlanApproved = boolPtr(false)
	u.CurrentStep = intPtr(0)
	u.AwaitingHuman = boolPtr(true)
	u.InterruptMessage = strPtr(ApprovalPrompt)
	u.Messages = append(u.Messages, schema.AssistantMessage(planSummary(plan, explanation), nil))
	return u, nil
}

// classify runs the intent classifier. Unparsable output falls back to the
// full-analysis default, never an error.
func (p *Planner) classify(ctx context.Context, userInput string) *model.QueryContext {
	system, err := prompts.RenderIntentSystem(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("render intent prompt failed, using default query context")
		return model.DefaultQueryContext()
	}

	out, err := p.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(userInput),
	})
	if err != nil {
		logx.Warn().Err(err).Msg("intent classification failed, using default query context")
		return model.DefaultQueryContext()
	}

	qc, err := parsers.ParseQueryContext(out.Content)
	if err != nil {
		logx.Warn().Err(err).Str("content", truncate(out.Content, 200)).
			Msg("intent response unparsable, using default query context")
		return model.DefaultQueryContext()
	}
	return qc
}

// generatePlan runs the plan generator and normalizes its output. Unparsable
// output falls back to the canonical full sequence.
func (p *Planner) generatePlan(ctx context.Context, userInput string, qc *model.QueryContext) ([]model.Step, string) {
	qcJSON, err := json.Marshal(qc)
	if err != nil {
		logx.Error().Err(err).Msg("marshal query context failed, using full plan")
		return model.FullPlan(), ""
	}

	system, err := prompts.RenderPlanSystem(ctx, string(qcJSON))
	if err != nil {
		logx.Error().Err(err).Msg("render plan prompt failed, using full plan")
		return model.FullPlan(), ""
	}

	out, err := p.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(userInput),
	})
	if err != nil {
		logx.Warn().Err(err).Msg("plan generation failed, using full plan")
		return model.FullPlan(), ""
	}

	raw, explanation, err := parsers.ParsePlan(out.Content)
	if err != nil {
		logx.Warn().Err(err).Str("content", truncate(out.Content, 200)).
			Msg("plan response unparsable, using full plan")
		return model.FullPlan(), ""
	}
	return model.NormalizePlan(raw), explanation
}

// planSummary builds the human-readable plan proposal message.
func planSummary(plan []model.Step, explanation string) string {
	var b strings.Builder
	b.WriteString("📋 Proposed execution plan:\n")
	for i, step := range plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step.DisplayName())
	}
	if explanation != "" {
		b.WriteString("\n")
		b.WriteString(explanation)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(ApprovalPrompt)
	return b.String()
}
