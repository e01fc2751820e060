package model

// Step identifies one analysis step in a plan. The catalog is fixed; plans
// are ordered subsets of it subject to normalization.
type Step string

const (
	StepFetch        Step = "fetch"
	StepCluster      Step = "cluster"
	StepKnowledgeMap Step = "knowledge_map"
	StepWordcloud    Step = "wordcloud"
	StepChart        Step = "chart"
	StepReport       Step = "report"
	StepEvaluate     Step = "evaluate"
)

// FullPlan is the canonical full-analysis sequence, also the deterministic
// fallback when the plan generator output cannot be parsed.
func FullPlan() []Step {
	return []Step{StepFetch, StepCluster, StepKnowledgeMap, StepWordcloud, StepChart, StepReport, StepEvaluate}
}

var stepNames = map[Step]string{
	StepFetch:        "Read feedback data",
	StepCluster:      "Sentiment analysis and opinion clustering",
	StepKnowledgeMap: "Build knowledge map",
	StepWordcloud:    "Generate word cloud",
	StepChart:        "Generate charts (pie, line, bar)",
	StepReport:       "Write improvement report",
	StepEvaluate:     "Quality evaluation",
}

// Valid reports whether s is a known catalog step.
func (s Step) Valid() bool {
	_, ok := stepNames[s]
	return ok
}

// DisplayName returns the human-readable step description used in plan
// summaries and progress messages.
func (s Step) DisplayName() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return string(s)
}

// NormalizePlan enforces the plan invariants over a generator-produced step
// list:
//   - unknown and duplicate steps are dropped,
//   - fetch is forced to position 0,
//   - report is forced to be present and second to last,
//   - evaluate is forced to be the absolute last step.
//
// The result always has length >= 3 and is a fixed point of NormalizePlan.
func NormalizePlan(raw []Step) []Step {
	seen := make(map[Step]bool, len(raw))
	plan := make([]Step, 0, len(raw)+3)
	for _, s := range raw {
		if !s.Valid() || seen[s] {
			continue
		}
		seen[s] = true
		plan = append(plan, s)
	}

	plan = remove(plan, StepFetch)
	plan = remove(plan, StepReport)
	plan = remove(plan, StepEvaluate)

	out := make([]Step, 0, len(plan)+3)
	out = append(out, StepFetch)
	out = append(out, plan...)
	out = append(out, StepReport, StepEvaluate)
	return out
}

func remove(plan []Step, s Step) []Step {
	out := plan[:0]
	for _, p := range plan {
		if p != s {
			out = append(out, p)
		}
	}
	return out
}
