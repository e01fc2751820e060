package render

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const FileWordcloud = "wordcloud.html"

// WordFreq is one term with its occurrence count.
type WordFreq struct {
	Word  string
	Count int
}

// Wordcloud renders the keyword cloud. Frequencies should already be sorted
// and capped by the caller.
func (r *Renderer) Wordcloud(freqs []WordFreq) (string, error) {
	data := make([]opts.WordCloudData, 0, len(freqs))
	for _, f := range freqs {
		data = append(data, opts.WordCloudData{Name: f.Word, Value: f.Count})
	}

	wc := charts.NewWordCloud()
	wc.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Feedback Keywords"}))
	// the option name carries upstream's "World" typo
	wc.AddSeries("keywords", data, charts.WithWorldCloudChartOpts(opts.WordCloudChart{
		SizeRange: []float32{14, 72},
	}))
	return r.writeChart(FileWordcloud, wc)
}
