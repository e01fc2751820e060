// Package parsers turns LLM output into typed structures. Model responses
// are treated as untrusted input: everything here fails soft and the calling
// node owns the deterministic fallback.
package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 256 * 1024 // 256KB

// ExtractJSON strips markdown code fences from a model response and returns
// the JSON payload candidate.
func ExtractJSON(content string) string {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	if i := strings.Index(content, "```json"); i >= 0 {
		content = content[i+len("```json"):]
		if j := strings.Index(content, "```"); j >= 0 {
			content = content[:j]
		}
	} else if i := strings.Index(content, "```"); i >= 0 {
		content = content[i+3:]
		if j := strings.Index(content, "```"); j >= 0 {
			content = content[:j]
		}
	}
	return strings.TrimSpace(content)
}

// ParseInto unmarshals the (possibly fenced) JSON payload into v.
func ParseInto(content string, v any) error {
	payload := ExtractJSON(content)
	if payload == "" {
		return fmt.Errorf("empty response payload")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("unmarshal model response: %w", err)
	}
	return nil
}

var knownIntents = map[model.Intent]bool{
	model.IntentFullAnalysis:      true,
	model.IntentSpecificQuery:     true,
	model.IntentVisualizationOnly: true,
	model.IntentReportOnly:        true,
}

// ParseQueryContext parses the intent classifier response.
func ParseQueryContext(content string) (*model.QueryContext, error) {
	var qc model.QueryContext
	if err := ParseInto(content, &qc); err != nil {
		return nil, err
	}
	if !knownIntents[qc.Intent] {
		return nil, fmt.Errorf("unknown intent %q", qc.Intent)
	}
	return &qc, nil
}

type planResponse struct {
	Plan        []string `json:"plan"`
	Explanation string   `json:"explanation"`
}

// ParsePlan parses the plan generator response into a raw step list plus the
// generator's explanation. Normalization is the caller's job.
func ParsePlan(content string) ([]model.Step, string, error) {
	var pr planResponse
	if err := ParseInto(content, &pr); err != nil {
		return nil, "", err
	}
	if len(pr.Plan) == 0 {
		return nil, "", fmt.Errorf("plan response has no steps")
	}
	steps := make([]model.Step, 0, len(pr.Plan))
	for _, s := range pr.Plan {
		steps = append(steps, model.Step(strings.TrimSpace(strings.ToLower(s))))
	}
	return steps, strings.TrimSpace(pr.Explanation), nil
}

// ParseEvaluation parses the quality evaluation response.
func ParseEvaluation(content string) (*model.EvaluationResult, error) {
	var ev model.EvaluationResult
	if err := ParseInto(content, &ev); err != nil {
		return nil, err
	}
	if ev.Score < 0 || ev.Score > 10 {
		return nil, fmt.Errorf("evaluation score %d out of range", ev.Score)
	}
	return &ev, nil
}
