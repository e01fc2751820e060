// Package prompts holds the embedded prompt templates and their renderers.
// Templates contain literal JSON braces, so rendering replaces known tokens
// only instead of running a full format pass over the text.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/intent_prompt.txt
var intentSystemPrompt string

//go:embed template/plan_prompt.txt
var planSystemPrompt string

//go:embed template/report_prompt.txt
var reportSystemPrompt string

//go:embed template/evaluate_prompt.txt
var evaluateSystemPrompt string

// renderSystem pushes the already-substituted content through the Eino prompt
// component so Prompt callbacks fire, then returns the final system string.
func renderSystem(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}

// RenderIntentSystem renders the intent classifier system prompt.
func RenderIntentSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, intentSystemPrompt)
}

// RenderPlanSystem renders the plan generator system prompt with the parsed
// query context embedded as JSON.
func RenderPlanSystem(ctx context.Context, queryContextJSON string) (string, error) {
	content := strings.NewReplacer(
		"{query_context}", queryContextJSON,
	).Replace(planSystemPrompt)
	return renderSystem(ctx, content)
}

// ReportVars carries the substitutions for the report prompt.
type ReportVars struct {
	Analysis string
	Date     string
	RowCount string
}

// RenderReportSystem renders the report writer system prompt.
func RenderReportSystem(ctx context.Context, vars ReportVars) (string, error) {
	content := strings.NewReplacer(
		"{analysis}", vars.Analysis,
		"{date}", vars.Date,
		"{row_count}", vars.RowCount,
	).Replace(reportSystemPrompt)
	return renderSystem(ctx, content)
}

// EvaluateVars carries the substitutions for the evaluation prompt.
type EvaluateVars struct {
	UserInput        string
	SentimentSummary string
	ClusterCount     string
	ChartTypes       string
	HasWordcloud     string
	HasKnowledgeMap  string
	HasReport        string
	ReportExcerpt    string
}

// RenderEvaluateSystem renders the quality reviewer system prompt.
func RenderEvaluateSystem(ctx context.Context, vars EvaluateVars) (string, error) {
	content := strings.NewReplacer(
		"{user_input}", vars.UserInput,
		"{sentiment_summary}", vars.SentimentSummary,
		"{cluster_count}", vars.ClusterCount,
		"{chart_types}", vars.ChartTypes,
		"{has_wordcloud}", vars.HasWordcloud,
		"{has_knowledge_map}", vars.HasKnowledgeMap,
		"{has_report}", vars.HasReport,
		"{report_excerpt}", vars.ReportExcerpt,
	).Replace(evaluateSystemPrompt)
	return renderSystem(ctx, content)
}
