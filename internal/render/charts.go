package render

import (
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	FileSentimentPie = "sentiment_pie.html"
	FileTrendLine    = "trend_line.html"
	FileCategoryBar  = "category_bar.html"
)

// TrendPoint is one bucket on the monthly feedback trend line.
type TrendPoint struct {
	Label string
	Count int
}

// SentimentPie renders the positive/negative/neutral split.
func (r *Renderer) SentimentPie(positive, negative, neutral int) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Sentiment Distribution"}))
	pie.AddSeries("sentiment", []opts.PieData{
		{Name: "Positive", Value: positive},
		{Name: "Negative", Value: negative},
		{Name: "Neutral", Value: neutral},
	})
	return r.writeChart(FileSentimentPie, pie)
}

// TrendLine renders feedback volume over time. Points must already be in
// chronological order.
func (r *Renderer) TrendLine(points []TrendPoint) (string, error) {
	labels := make([]string, 0, len(points))
	values := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Label)
		values = append(values, opts.LineData{Value: p.Count})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Feedback Trend"}))
	line.SetXAxis(labels).AddSeries("feedback", values)
	return r.writeChart(FileTrendLine, line)
}

// CategoryBar renders feedback counts per category, largest first.
func (r *Renderer) CategoryBar(counts map[string]int) (string, error) {
	type kv struct {
		name  string
		count int
	}
	rows := make([]kv, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, kv{name, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].name < rows[j].name
	})

	labels := make([]string, 0, len(rows))
	values := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		labels = append(labels, row.name)
		values = append(values, opts.BarData{Value: row.count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Feedback by Category"}))
	bar.SetXAxis(labels).AddSeries("feedback", values)
	return r.writeChart(FileCategoryBar, bar)
}
