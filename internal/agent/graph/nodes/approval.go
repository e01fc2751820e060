package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// CompletionPrompt is shown at the terminal pause after all steps ran.
const CompletionPrompt = "✅ All steps complete. Send anything to finish, or describe the next analysis you want."

// approvalTokens is the fixed set of affirmative resume values. Anything else
// is free text.
var approvalTokens = map[string]bool{
	"approved": true,
	"approve":  true,
	"ok":       true,
	"yes":      true,
	"y":        true,
	"同意":       true,
	"確認":       true,
	"繼續":       true,
	"好":        true,
	"是":        true,
}

// IsApprovalToken reports whether a resume value counts as approval.
func IsApprovalToken(value string) bool {
	return approvalTokens[strings.ToLower(strings.TrimSpace(value))]
}

// ApprovalGate owns the suspension points: the plan-approval pause, the
// clarification pause and the terminal completion pause. Suspension itself is
// realized by the engine (checkpoint with the suspended marker); the gate
// only computes the state updates on either side of it.
type ApprovalGate struct{}

func NewApprovalGate() *ApprovalGate {
	return &ApprovalGate{}
}

// Arm produces the pause update for a machine that reached the gate without
// an interrupt message set: re-approval after a restart, or the completion
// pause. The planner arms its own pauses.
func (g *ApprovalGate) Arm(s *model.SharedState) model.Update {
	msg := ApprovalPrompt
	if s.PlanConsumed() {
		msg = CompletionPrompt
	}
	return model.Update{
		AwaitingHuman:    boolPtr(true),
		InterruptMessage: strPtr(msg),
		Messages:         []*schema.Message{schema.AssistantMessage(msg, nil)},
	}
}

// Resolve classifies the resume value and produces the post-pause update.
// The returned proceed flag tells the engine whether to keep driving
// transitions; it is false only when an acknowledged completion pause returns
// the thread to idle.
func (g *ApprovalGate) Resolve(s *model.SharedState, value string) (model.Update, bool) {
	trimmed := strings.TrimSpace(value)
	approved := IsApprovalToken(trimmed)

	u := model.Update{
		AwaitingHuman:    boolPtr(false),
		InterruptMessage: strPtr(""),
		Messages:         []*schema.Message{schema.UserMessage(trimmed)},
	}

	switch {
	case s.PlanConsumed():
		// terminal pause: either way the finished plan is discarded
		u.ClearPlan = true
		u.ClearQueryContext = true
		u.PlanApproved = boolPtr(false)
		u.CurrentStep = intPtr(0)
		if approved {
			u.Messages = append(u.Messages, schema.AssistantMessage("Ready for the next request.", nil))
			logx.Debug().Msg("completion pause acknowledged, thread back to idle")
			return u, false
		}
		// a new request arrived at the terminal pause, re-synthesize
		u.UserInput = strPtr(trimmed)
		return u, true

	case len(s.Plan) > 0 && !s.PlanApproved:
		if approved {
			u.PlanApproved = boolPtr(true)
			u.Messages = append(u.Messages, schema.AssistantMessage("✅ Plan approved, starting the run.", nil))
			logx.Debug().Int("plan_len", len(s.Plan)).Msg("plan approved")
			return u, true
		}
		// free text is a revision request: drop plan and context, re-classify
		u.UserInput = strPtr(trimmed)
		u.ClearPlan = true
		u.ClearQueryContext = true
		u.PlanApproved = boolPtr(false)
		u.CurrentStep = intPtr(0)
		logx.Debug().Msg("plan revision requested")
		return u, true

	default:
		// clarification pause: no plan exists, everything is planner input
		u.UserInput = strPtr(trimmed)
		return u, true
	}
}
