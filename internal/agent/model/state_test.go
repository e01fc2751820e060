package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedback-insight-poc/server/internal/datasource"
)

func boolp(b bool) *bool { return &b }
func intp(n int) *int    { return &n }
func strp(s string) *string {
	return &s
}

func TestApplyAppendsMessages(t *testing.T) {
	s := NewSharedState()
	s.Apply(MessageUpdate(schema.UserMessage("hi")))
	s.Apply(MessageUpdate(schema.AssistantMessage("hello", nil)))

	require.Len(t, s.Messages, 2)
	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.Equal(t, "hello", s.Messages[1].Content)

	// prior entries are never replaced
	first := s.Messages[0]
	s.Apply(MessageUpdate(schema.UserMessage("more")))
	require.Len(t, s.Messages, 3)
	assert.Same(t, first, s.Messages[0])
}

func TestApplyLastWriteWins(t *testing.T) {
	s := NewSharedState()
	s.Apply(Update{UserInput: strp("first")})
	s.Apply(Update{UserInput: strp("second")})
	assert.Equal(t, "second", s.UserInput)

	// unset fields stay untouched
	s.Apply(Update{PlanApproved: boolp(true)})
	assert.Equal(t, "second", s.UserInput)
	assert.True(t, s.PlanApproved)
}

func TestApplyClearFlags(t *testing.T) {
	s := NewSharedState()
	s.Apply(Update{
		Plan:         FullPlan(),
		QueryContext: &QueryContext{Intent: IntentFullAnalysis},
		RawData:      []datasource.Record{{"feedback_content": "x"}},
		DataSummary:  strp("Rows: 1"),
	})
	require.NotNil(t, s.QueryContext)
	require.NotEmpty(t, s.Plan)

	s.Apply(Update{ClearPlan: true, ClearQueryContext: true, ClearRawData: true})
	assert.Nil(t, s.Plan)
	assert.Nil(t, s.QueryContext)
	assert.Nil(t, s.RawData)
	assert.Empty(t, s.DataSummary, "clearing raw data drops the summary too")
}

func TestApplyClearWinsOverSet(t *testing.T) {
	s := NewSharedState()
	s.Apply(Update{Plan: FullPlan()})
	s.Apply(Update{Plan: []Step{StepFetch}, ClearPlan: true})
	assert.Nil(t, s.Plan)
}

func TestPlanConsumed(t *testing.T) {
	s := NewSharedState()
	assert.False(t, s.PlanConsumed(), "no plan")

	s.Plan = []Step{StepFetch, StepReport, StepEvaluate}
	assert.False(t, s.PlanConsumed(), "not approved")

	s.PlanApproved = true
	s.CurrentStep = 2
	assert.False(t, s.PlanConsumed(), "steps remain")

	s.CurrentStep = 3
	assert.True(t, s.PlanConsumed())

	s.CurrentStep = 7
	assert.True(t, s.PlanConsumed(), "past the end still counts")
}
