package nodes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// FetchWorker reads feedback rows from the configured source. It is the only
// mandatory step: when it leaves raw_data absent the sequencer short-circuits
// the rest of the plan. Source errors therefore never become Apply errors,
// they become distinct user-facing messages with raw_data left absent.
type FetchWorker struct {
	reader datasource.Reader
	now    func() time.Time
}

func NewFetchWorker(reader datasource.Reader) *FetchWorker {
	return &FetchWorker{reader: reader, now: time.Now}
}

func (w *FetchWorker) Step() model.Step {
	return model.StepFetch
}

func (w *FetchWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if strings.TrimSpace(s.SheetURL) == "" {
		return model.MessageUpdate(schema.AssistantMessage(
			"❌ No data source configured. Send your request again with the spreadsheet path attached.", nil)), nil
	}

	rows, err := w.reader.Read(ctx, s.SheetURL)
	if err != nil {
		logx.Warn().Err(err).Str("source", s.SheetURL).Msg("fetch failed")
		switch {
		case errors.Is(err, datasource.ErrNotFound):
			return model.MessageUpdate(schema.AssistantMessage(
				"❌ Data source not found or not accessible: "+s.SheetURL, nil)), nil
		case errors.Is(err, datasource.ErrEmpty):
			return model.MessageUpdate(schema.AssistantMessage(
				"⚠️ The data source contains no feedback rows.", nil)), nil
		case errors.Is(err, datasource.ErrUnsupported):
			return model.MessageUpdate(schema.AssistantMessage(
				"❌ Unsupported data source format: "+s.SheetURL, nil)), nil
		default:
			return model.MessageUpdate(schema.AssistantMessage(
				"❌ Failed to read the data source: "+err.Error(), nil)), nil
		}
	}

	total := len(rows)
	var rangeNote string
	if s.QueryContext != nil && s.QueryContext.TimeRange != "" {
		if start, end, ok := datasource.ParseTimeRange(s.QueryContext.TimeRange, w.now()); ok {
			rows = filterByDate(rows, start, end)
			rangeNote = fmt.Sprintf(" within %q", s.QueryContext.TimeRange)
			if len(rows) == 0 {
				return model.MessageUpdate(schema.AssistantMessage(
					fmt.Sprintf("⚠️ No feedback found%s (%d rows total).", rangeNote, total), nil)), nil
			}
		} else {
			logx.Debug().Str("time_range", s.QueryContext.TimeRange).Msg("time range phrase not understood, keeping all rows")
		}
	}

	summary := summarizeRows(rows)
	var u model.Update
	u.RawData = rows
	u.DataSummary = strPtr(summary)
	u.Messages = []*schema.Message{schema.AssistantMessage(
		fmt.Sprintf("📥 Loaded %d feedback rows%s.\n%s", len(rows), rangeNote, summary), nil)}
	return u, nil
}

// filterByDate keeps rows whose date cell parses and falls inside [start, end].
func filterByDate(rows []datasource.Record, start, end time.Time) []datasource.Record {
	out := make([]datasource.Record, 0, len(rows))
	for _, r := range rows {
		raw, ok := r.Field(datasource.ColumnDate)
		if !ok {
			continue
		}
		d, ok := datasource.ParseDate(raw)
		if !ok {
			continue
		}
		if !d.Before(start) && !d.After(end) {
			out = append(out, r)
		}
	}
	return out
}

// summarizeRows builds the dataframe summary: row count, date range, category
// distribution and average score.
func summarizeRows(rows []datasource.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d", len(rows))

	var minDate, maxDate time.Time
	for _, r := range rows {
		raw, ok := r.Field(datasource.ColumnDate)
		if !ok {
			continue
		}
		d, ok := datasource.ParseDate(raw)
		if !ok {
			continue
		}
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
	}
	if !minDate.IsZero() {
		fmt.Fprintf(&b, " | Dates: %s ~ %s", minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"))
	}

	counts := categoryCounts(rows)
	if len(counts) > 0 {
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if counts[names[i]] != counts[names[j]] {
				return counts[names[i]] > counts[names[j]]
			}
			return names[i] < names[j]
		})
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s %d", name, counts[name]))
		}
		fmt.Fprintf(&b, " | Categories: %s", strings.Join(parts, ", "))
	}

	if avg, ok := averageScore(rows); ok {
		fmt.Fprintf(&b, " | Avg score: %.2f", avg)
	}
	return b.String()
}

func categoryCounts(rows []datasource.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		if c, ok := r.Field(datasource.ColumnCategory); ok && c != "" {
			counts[c]++
		}
	}
	return counts
}

func averageScore(rows []datasource.Record) (float64, bool) {
	var sum float64
	var n int
	for _, r := range rows {
		raw, ok := r.Field(datasource.ColumnScore)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
