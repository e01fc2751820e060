package nodes

// Node names used by the router and the engine's node registry. Worker nodes
// are addressed by their step identifier directly.
const (
	NodePlanner      = "Planner"
	NodeApprovalGate = "ApprovalGate"
)
