package graph

import (
	"github.com/feedback-insight-poc/server/internal/agent/graph/nodes"
	"github.com/feedback-insight-poc/server/internal/agent/model"
)

// Route is the pure routing function: shared state in, next node name out.
// Worker nodes are addressed by their step identifier. Decision order, first
// match wins:
//  1. paused for a human → approval gate
//  2. plan exists but is not approved → approval gate
//  3. approved plan fully consumed → approval gate (completion pause)
//  4. approved plan with steps left → the worker at the cursor
//  5. no plan → planner
//
// Total by construction: every state lands in exactly one arm.
func Route(s *model.SharedState) string {
	switch {
	case s.AwaitingHuman:
		return nodes.NodeApprovalGate
	case len(s.Plan) > 0 && !s.PlanApproved:
		return nodes.NodeApprovalGate
	case len(s.Plan) > 0 && s.CurrentStep >= len(s.Plan):
		return nodes.NodeApprovalGate
	case len(s.Plan) > 0:
		return string(s.Plan[s.CurrentStep])
	default:
		return nodes.NodePlanner
	}
}
