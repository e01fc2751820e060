package nodes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
	"github.com/feedback-insight-poc/server/internal/render"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// ChartWorker renders the requested chart kinds. An empty chart_types set in
// the query context means all of them.
type ChartWorker struct {
	outputDir string
}

func NewChartWorker(outputDir string) *ChartWorker {
	return &ChartWorker{outputDir: outputDir}
}

func (w *ChartWorker) Step() model.Step {
	return model.StepChart
}

func (w *ChartWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if len(s.RawData) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No data available for charts, fetch has to run first.", nil)), nil
	}

	wanted := wantedCharts(s.QueryContext)

	renderer, err := threadRenderer(w.outputDir, s.ThreadID)
	if err != nil {
		return model.Update{}, err
	}

	paths := make(map[string]string)

	if wanted["pie"] {
		sentiment := s.Sentiment
		if sentiment == nil {
			// the cluster step may have been skipped, derive counts here
			sentiment = sentimentFromScores(s.RawData)
		}
		path, err := renderer.SentimentPie(sentiment.Positive, sentiment.Negative, sentiment.Neutral)
		if err != nil {
			return model.Update{}, fmt.Errorf("render pie chart: %w", err)
		}
		paths["pie"] = path
	}

	if wanted["line"] {
		points := monthlyTrend(s.RawData)
		if len(points) > 0 {
			path, err := renderer.TrendLine(points)
			if err != nil {
				return model.Update{}, fmt.Errorf("render line chart: %w", err)
			}
			paths["line"] = path
		} else {
			logx.Debug().Msg("no parseable dates, skipping trend line")
		}
	}

	if wanted["bar"] {
		counts := categoryCounts(s.RawData)
		if len(counts) > 0 {
			path, err := renderer.CategoryBar(counts)
			if err != nil {
				return model.Update{}, fmt.Errorf("render bar chart: %w", err)
			}
			paths["bar"] = path
		} else {
			logx.Debug().Msg("no category column, skipping bar chart")
		}
	}

	if len(paths) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No charts could be produced from the fetched data.", nil)), nil
	}

	kinds := make([]string, 0, len(paths))
	for kind := range paths {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	var u model.Update
	u.ChartPaths = paths
	u.Messages = []*schema.Message{schema.AssistantMessage(fmt.Sprintf(
		"📊 Generated charts (%s) under %s", strings.Join(kinds, ", "), renderer.Dir()), nil)}
	return u, nil
}

// wantedCharts resolves the requested chart kinds, defaulting to all.
func wantedCharts(qc *model.QueryContext) map[string]bool {
	wanted := map[string]bool{}
	if qc != nil {
		for _, kind := range qc.ChartTypes {
			wanted[strings.ToLower(strings.TrimSpace(kind))] = true
		}
	}
	if len(wanted) == 0 {
		wanted = map[string]bool{"pie": true, "line": true, "bar": true}
	}
	return wanted
}

// monthlyTrend buckets rows by month in chronological order.
func monthlyTrend(rows []datasource.Record) []render.TrendPoint {
	counts := make(map[string]int)
	for _, r := range rows {
		raw, ok := r.Field(datasource.ColumnDate)
		if !ok {
			continue
		}
		d, ok := datasource.ParseDate(raw)
		if !ok {
			continue
		}
		counts[d.Format("2006-01")]++
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]render.TrendPoint, 0, len(months))
	for _, m := range months {
		points = append(points, render.TrendPoint{Label: m, Count: counts[m]})
	}
	return points
}
