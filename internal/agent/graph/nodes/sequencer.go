package nodes

import (
	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// Sequencer advances the plan cursor after each completed worker step.
type Sequencer struct{}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Advance increments the cursor by one. When the step that just ran was
// fetch and it produced no data, every later step is pointless, so the
// cursor jumps straight past the end of the plan and the router lands on the
// completion pause.
func (q *Sequencer) Advance(step model.Step, s *model.SharedState) model.Update {
	next := s.CurrentStep + 1
	if step == model.StepFetch && len(s.RawData) == 0 {
		next = len(s.Plan)
		logx.Warn().Int("plan_len", len(s.Plan)).Msg("fetch produced no data, short-circuiting to completion")
	}
	return model.Update{CurrentStep: intPtr(next)}
}
