package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

func TestIsApprovalToken(t *testing.T) {
	for _, v := range []string{"approved", "Approved", " APPROVED ", "ok", "yes", "同意", "確認", "繼續", "好", "是"} {
		assert.True(t, IsApprovalToken(v), "%q should approve", v)
	}
	for _, v := range []string{"", "no", "only charts please", "approved but skip the wordcloud", "取消"} {
		assert.False(t, IsApprovalToken(v), "%q should not approve", v)
	}
}

func pendingPlanState() *model.SharedState {
	s := model.NewSharedState()
	s.UserInput = "run a full analysis"
	s.Plan = model.FullPlan()
	s.QueryContext = &model.QueryContext{Intent: model.IntentFullAnalysis}
	s.AwaitingHuman = true
	s.InterruptMessage = ApprovalPrompt
	return s
}

func TestResolveApprovalRoundTrip(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()
	planBefore := append([]model.Step(nil), s.Plan...)

	u, proceed := gate.Resolve(s, "approved")
	s.Apply(u)

	assert.True(t, proceed)
	assert.True(t, s.PlanApproved)
	assert.False(t, s.AwaitingHuman)
	assert.Equal(t, planBefore, s.Plan, "approval must not touch the plan")
	assert.Equal(t, 0, s.CurrentStep)
}

func TestResolveRevisionClearsPlanAndContext(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()

	u, proceed := gate.Resolve(s, "only the charts for 2024Q4 please")
	s.Apply(u)

	assert.True(t, proceed)
	assert.False(t, s.PlanApproved)
	assert.Nil(t, s.Plan)
	assert.Nil(t, s.QueryContext, "revision forces re-classification")
	assert.Equal(t, "only the charts for 2024Q4 please", s.UserInput)
	assert.False(t, s.AwaitingHuman)
}

func TestResolveCompletionAcknowledge(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()
	s.PlanApproved = true
	s.CurrentStep = len(s.Plan)

	u, proceed := gate.Resolve(s, "ok")
	s.Apply(u)

	assert.False(t, proceed, "acknowledged completion ends the chain")
	assert.Nil(t, s.Plan)
	assert.Nil(t, s.QueryContext)
	assert.False(t, s.PlanApproved)
	assert.Equal(t, 0, s.CurrentStep)
	assert.False(t, s.AwaitingHuman)
}

func TestResolveCompletionWithNewRequest(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()
	s.PlanApproved = true
	s.CurrentStep = len(s.Plan)

	u, proceed := gate.Resolve(s, "now analyze only the negative feedback")
	s.Apply(u)

	assert.True(t, proceed, "a new request keeps the chain driving into the planner")
	assert.Nil(t, s.Plan)
	assert.Equal(t, "now analyze only the negative feedback", s.UserInput)
}

func TestResolveClarificationTreatsApprovalAsText(t *testing.T) {
	gate := NewApprovalGate()
	s := model.NewSharedState()
	s.AwaitingHuman = true
	s.QueryContext = &model.QueryContext{Intent: model.IntentFullAnalysis}

	u, proceed := gate.Resolve(s, "好")
	s.Apply(u)

	require.True(t, proceed)
	assert.Equal(t, "好", s.UserInput, "without a plan even a token is planner input")
	assert.False(t, s.AwaitingHuman)
}

func TestArmCompletionPause(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()
	s.AwaitingHuman = false
	s.PlanApproved = true
	s.CurrentStep = len(s.Plan)

	s.Apply(gate.Arm(s))

	assert.True(t, s.AwaitingHuman)
	assert.Equal(t, CompletionPrompt, s.InterruptMessage)
}

func TestArmApprovalPause(t *testing.T) {
	gate := NewApprovalGate()
	s := pendingPlanState()
	s.AwaitingHuman = false

	s.Apply(gate.Arm(s))

	assert.True(t, s.AwaitingHuman)
	assert.Equal(t, ApprovalPrompt, s.InterruptMessage)
}
