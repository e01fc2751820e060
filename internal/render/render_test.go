package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedback-insight-poc/server/internal/agent/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(t.TempDir())
	require.NoError(t, err)
	return r
}

func requireHTMLFile(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Contains(t, string(data), "<html")
}

func TestSentimentPie(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.SentimentPie(10, 5, 3)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(r.Dir(), FileSentimentPie), path)
	requireHTMLFile(t, path)
}

func TestTrendLine(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.TrendLine([]TrendPoint{
		{Label: "2024-10", Count: 12},
		{Label: "2024-11", Count: 7},
		{Label: "2024-12", Count: 19},
	})
	require.NoError(t, err)
	requireHTMLFile(t, path)
}

func TestCategoryBar(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.CategoryBar(map[string]int{
		"物流": 8,
		"客服": 3,
		"品質": 5,
	})
	require.NoError(t, err)
	requireHTMLFile(t, path)
}

func TestKnowledgeTreemap(t *testing.T) {
	r := newTestRenderer(t)

	root := &model.KnowledgeNode{
		Name: "Customer Feedback",
		Children: []model.KnowledgeNode{
			{
				Name: "物流",
				Children: []model.KnowledgeNode{
					{Name: "配送延遲", Keywords: []string{"配送", "延遲"}},
					{Name: "包裹狀態", Keywords: []string{"包裹"}},
				},
			},
			{Name: "客服", Keywords: []string{"回覆", "態度"}},
		},
	}
	path, err := r.KnowledgeTreemap(root)
	require.NoError(t, err)
	requireHTMLFile(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// nested themes must survive into the serialized chart data
	require.Contains(t, string(data), "配送延遲")
	require.Contains(t, string(data), "包裹狀態")
	require.Contains(t, string(data), "客服")
}

func TestWordcloud(t *testing.T) {
	r := newTestRenderer(t)

	path, err := r.Wordcloud([]WordFreq{
		{Word: "配送", Count: 14},
		{Word: "客服", Count: 9},
		{Word: "品質", Count: 6},
	})
	require.NoError(t, err)
	requireHTMLFile(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "配送")
	require.Contains(t, string(data), "品質")
}

func TestNewRendererRejectsEmptyDir(t *testing.T) {
	_, err := NewRenderer("")
	require.Error(t, err)
}

func TestRendererCreatesNestedDir(t *testing.T) {
	base := t.TempDir()
	r, err := NewRenderer(filepath.Join(base, "outputs", "thread-1"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(r.Dir(), filepath.Join("outputs", "thread-1")))
}
