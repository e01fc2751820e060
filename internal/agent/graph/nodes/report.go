package nodes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/graph/prompts"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// ReportFileName is the per-thread report artifact.
const ReportFileName = "report.md"

// ReportWorker drafts the improvement report from everything the earlier
// steps attached to the state. The report text is both appended to the
// message log and written to the thread's output directory.
type ReportWorker struct {
	cm        model.ChatModel
	outputDir string
	now       func() time.Time
}

func NewReportWorker(cm model.ChatModel, outputDir string) *ReportWorker {
	return &ReportWorker{cm: cm, outputDir: outputDir, now: time.Now}
}

func (w *ReportWorker) Step() model.Step {
	return model.StepReport
}

func (w *ReportWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if len(s.RawData) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ Nothing to report, no data was fetched.", nil)), nil
	}

	digest := analysisDigest(s)
	report := w.draft(ctx, s, digest)

	renderer, err := threadRenderer(w.outputDir, s.ThreadID)
	if err != nil {
		return model.Update{}, err
	}
	path := filepath.Join(renderer.Dir(), ReportFileName)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return model.Update{}, fmt.Errorf("write report file: %w", err)
	}

	var u model.Update
	u.Report = strPtr(report)
	u.Messages = []*schema.Message{schema.AssistantMessage(report, nil)}
	return u, nil
}

// draft asks the worker model for the report; on failure the digest itself
// becomes a minimal deterministic report.
func (w *ReportWorker) draft(ctx context.Context, s *model.SharedState, digest string) string {
	system, err := prompts.RenderReportSystem(ctx, prompts.ReportVars{
		Analysis: digest,
		Date:     w.now().Format("2006-01-02"),
		RowCount: strconv.Itoa(len(s.RawData)),
	})
	if err == nil {
		out, gerr := w.cm.Generate(ctx, []*schema.Message{
			schema.SystemMessage(system),
			schema.UserMessage(s.UserInput),
		})
		if gerr == nil && strings.TrimSpace(out.Content) != "" {
			return out.Content
		}
		logx.Warn().Err(gerr).Msg("report generation failed, using digest fallback")
	} else {
		logx.Error().Err(err).Msg("render report prompt failed, using digest fallback")
	}

	return fmt.Sprintf("# Customer Feedback Analysis Report\n**Date**: %s\n**Rows analyzed**: %d\n\n%s\n",
		w.now().Format("2006-01-02"), len(s.RawData), digest)
}

// analysisDigest flattens the accumulated artifacts into the text block the
// report prompt consumes.
func analysisDigest(s *model.SharedState) string {
	var b strings.Builder

	if s.DataSummary != "" {
		b.WriteString("## Data\n")
		b.WriteString(s.DataSummary)
		b.WriteString("\n\n")
	}

	if s.Sentiment != nil {
		fmt.Fprintf(&b, "## Sentiment\nPositive: %d, Negative: %d, Neutral: %d\n\n",
			s.Sentiment.Positive, s.Sentiment.Negative, s.Sentiment.Neutral)
	}

	if s.Clusters != nil {
		b.WriteString("## Topics\n")
		sizes := make(map[int]int)
		examples := make(map[int]string)
		for _, item := range s.Clusters.Items {
			sizes[item.ClusterID]++
			if examples[item.ClusterID] == "" {
				examples[item.ClusterID] = truncate(item.Content, 60)
			}
		}
		for cid := 0; cid < s.Clusters.NClusters; cid++ {
			fmt.Fprintf(&b, "- %s (%d entries), e.g. %q\n",
				s.Clusters.Labels[strconv.Itoa(cid)], sizes[cid], examples[cid])
		}
		b.WriteString("\n")
	}

	if s.KnowledgeMap != nil {
		b.WriteString("## Knowledge map themes\n")
		for _, child := range s.KnowledgeMap.Children {
			fmt.Fprintf(&b, "- %s: %s\n", child.Name, strings.Join(child.Keywords, ", "))
		}
		b.WriteString("\n")
	}

	if len(s.ChartPaths) > 0 {
		kinds := make([]string, 0, len(s.ChartPaths))
		for kind := range s.ChartPaths {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		fmt.Fprintf(&b, "## Charts\n%s\n\n", strings.Join(kinds, ", "))
	}

	return strings.TrimSpace(b.String())
}
