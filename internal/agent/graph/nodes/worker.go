package nodes

import (
	"context"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

// Worker is the contract every analysis step implements: read the shared
// state, return a partial update. Expected shortfalls (no data fetched yet,
// nothing left after filtering) must come back as message-only updates, not
// errors; an error from Apply means the step blew up unexpectedly and the
// engine converts it into a failure message without advancing the cursor.
type Worker interface {
	Step() model.Step
	Apply(ctx context.Context, s *model.SharedState) (model.Update, error)
}
