package nodes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/graph/parsers"
	"github.com/feedback-insight-poc/server/internal/agent/graph/prompts"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// evaluationPassScore is the minimum average for a passing run.
const evaluationPassScore = 7

// EvaluateWorker scores the finished run on relevance, completeness,
// accuracy and actionability. Reviewer failures degrade to a deterministic
// pass so evaluation never blocks completion.
type EvaluateWorker struct {
	cm model.ChatModel
}

func NewEvaluateWorker(cm model.ChatModel) *EvaluateWorker {
	return &EvaluateWorker{cm: cm}
}

func (w *EvaluateWorker) Step() model.Step {
	return model.StepEvaluate
}

func (w *EvaluateWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if strings.TrimSpace(s.Report) == "" {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No report to evaluate.", nil)), nil
	}

	result := w.review(ctx, s)

	verdict := "passed"
	if !result.Passed {
		verdict = "needs improvement"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🧪 Quality score: %d/10 (%s).", result.Score, verdict)
	if result.Summary != "" {
		b.WriteString(" ")
		b.WriteString(result.Summary)
	}
	for _, issue := range result.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}

	var u model.Update
	u.Evaluation = result
	u.Messages = []*schema.Message{schema.AssistantMessage(b.String(), nil)}
	return u, nil
}

func (w *EvaluateWorker) review(ctx context.Context, s *model.SharedState) *model.EvaluationResult {
	fallback := &model.EvaluationResult{
		Relevance: evaluationPassScore, Completeness: evaluationPassScore,
		Accuracy: evaluationPassScore, Actionability: evaluationPassScore,
		Score: evaluationPassScore, Passed: true,
		Summary: "Automatic pass, the reviewer output was unavailable.",
	}

	system, err := prompts.RenderEvaluateSystem(ctx, evaluateVars(s))
	if err != nil {
		logx.Error().Err(err).Msg("render evaluate prompt failed, using automatic pass")
		return fallback
	}

	out, err := w.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage("Evaluate the analysis run."),
	})
	if err != nil {
		logx.Warn().Err(err).Msg("evaluation failed, using automatic pass")
		return fallback
	}

	result, err := parsers.ParseEvaluation(out.Content)
	if err != nil {
		logx.Warn().Err(err).Msg("evaluation response unparsable, using automatic pass")
		return fallback
	}
	result.Passed = result.Score >= evaluationPassScore
	return result
}

func evaluateVars(s *model.SharedState) prompts.EvaluateVars {
	sentiment := "not computed"
	if s.Sentiment != nil {
		sentiment = fmt.Sprintf("%d positive / %d negative / %d neutral",
			s.Sentiment.Positive, s.Sentiment.Negative, s.Sentiment.Neutral)
	}

	clusterCount := 0
	if s.Clusters != nil {
		clusterCount = s.Clusters.NClusters
	}

	kinds := make([]string, 0, len(s.ChartPaths))
	for kind := range s.ChartPaths {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	return prompts.EvaluateVars{
		UserInput:        s.UserInput,
		SentimentSummary: sentiment,
		ClusterCount:     strconv.Itoa(clusterCount),
		ChartTypes:       strings.Join(kinds, ", "),
		HasWordcloud:     strconv.FormatBool(s.WordcloudPath != ""),
		HasKnowledgeMap:  strconv.FormatBool(s.KnowledgeMapPath != ""),
		HasReport:        strconv.FormatBool(s.Report != ""),
		ReportExcerpt:    truncate(s.Report, 1500),
	}
}
