package nodes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
)

func analyzedState() *model.SharedState {
	s := model.NewSharedState()
	s.ThreadID = "t1"
	s.RawData = []datasource.Record{
		{"回饋編號": "F001", "回饋日期": "2024-10-05", "回饋內容": "出貨速度很快", "回饋類別": "物流", "評分": "5"},
		{"回饋編號": "F002", "回饋日期": "2024-11-12", "回饋內容": "客服回覆太慢", "回饋類別": "客服", "評分": "2"},
	}
	return s
}

func TestChartWorkerRendersDefaultSet(t *testing.T) {
	dir := t.TempDir()
	w := NewChartWorker(dir)
	s := analyzedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.Len(t, s.ChartPaths, 3)
	for kind, path := range s.ChartPaths {
		_, serr := os.Stat(path)
		assert.NoError(t, serr, "chart %q artifact missing", kind)
		assert.Equal(t, filepath.Join(dir, "t1"), filepath.Dir(path), "artifacts land in the thread directory")
	}
	require.Len(t, s.Messages, 1)
	assert.Contains(t, s.Messages[0].Content, "bar, line, pie")
}

func TestChartWorkerHonorsRequestedKinds(t *testing.T) {
	w := NewChartWorker(t.TempDir())
	s := analyzedState()
	s.QueryContext = &model.QueryContext{Intent: model.IntentVisualizationOnly, ChartTypes: []string{"pie"}}

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.Len(t, s.ChartPaths, 1)
	assert.Contains(t, s.ChartPaths, "pie")
}

func TestChartWorkerNoData(t *testing.T) {
	w := NewChartWorker(t.TempDir())
	s := model.NewSharedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Empty(t, s.ChartPaths)
	assert.Contains(t, s.Messages[0].Content, "No data available")
}

func TestWantedChartsDefaultsToAll(t *testing.T) {
	assert.Equal(t, map[string]bool{"pie": true, "line": true, "bar": true}, wantedCharts(nil))
	assert.Equal(t, map[string]bool{"pie": true, "line": true, "bar": true},
		wantedCharts(&model.QueryContext{}))
	assert.Equal(t, map[string]bool{"bar": true},
		wantedCharts(&model.QueryContext{ChartTypes: []string{" Bar "}}))
}

func TestMonthlyTrend(t *testing.T) {
	rows := []datasource.Record{
		{"回饋日期": "2024-11-12"},
		{"回饋日期": "2024-10-05"},
		{"回饋日期": "2024-10-20"},
		{"回饋日期": "garbled"},
	}
	points := monthlyTrend(rows)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-10", points[0].Label)
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, "2024-11", points[1].Label)
}

func TestWordcloudWorker(t *testing.T) {
	w := NewWordcloudWorker(t.TempDir())
	s := analyzedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotEmpty(t, s.WordcloudPath)
	_, serr := os.Stat(s.WordcloudPath)
	assert.NoError(t, serr)
	assert.Contains(t, s.Messages[0].Content, "Word cloud generated")
}

func TestWordcloudWorkerNoUsableText(t *testing.T) {
	w := NewWordcloudWorker(t.TempDir())
	s := model.NewSharedState()
	s.RawData = []datasource.Record{{"評分": "5"}}

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Empty(t, s.WordcloudPath)
	assert.Contains(t, s.Messages[0].Content, "skipping the word cloud")
}

func TestKnowledgeMapWorkerLLMTree(t *testing.T) {
	cm := &scriptedChatModel{responses: []string{
		`{"name":"客戶回饋","children":[{"name":"物流","keywords":["出貨","速度"]},{"name":"客服","keywords":["回覆"]}]}`,
	}}
	w := NewKnowledgeMapWorker(cm, t.TempDir())
	s := analyzedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotNil(t, s.KnowledgeMap)
	assert.Equal(t, "客戶回饋", s.KnowledgeMap.Name)
	assert.Len(t, s.KnowledgeMap.Children, 2)
	require.NotEmpty(t, s.KnowledgeMapPath)
	_, serr := os.Stat(s.KnowledgeMapPath)
	assert.NoError(t, serr)
	assert.Contains(t, s.Messages[0].Content, "2 themes")
}

func TestKnowledgeMapWorkerFallsBackToCategories(t *testing.T) {
	w := NewKnowledgeMapWorker(&scriptedChatModel{responses: []string{"not a tree"}}, t.TempDir())
	s := analyzedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotNil(t, s.KnowledgeMap)
	assert.Equal(t, "Customer Feedback", s.KnowledgeMap.Name)
	require.Len(t, s.KnowledgeMap.Children, 2)
	assert.Equal(t, "客服", s.KnowledgeMap.Children[0].Name, "categories sorted by name")
	assert.Equal(t, "物流", s.KnowledgeMap.Children[1].Name)
}

func TestKnowledgeMapFallbackPrefersClusters(t *testing.T) {
	s := analyzedState()
	s.Clusters = &model.ClusterResult{
		NClusters: 1,
		Labels:    map[string]string{"0": "出貨速度"},
		Items: []model.ClusterItem{
			{FeedbackID: "F001", ClusterID: 0, Content: "出貨速度很快"},
			{FeedbackID: "F002", ClusterID: 0, Content: "客服回覆太慢"},
		},
	}

	tree := fallbackTree(s)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "出貨速度", tree.Children[0].Name)
	assert.NotEmpty(t, tree.Children[0].Keywords)
}

func TestReportWorkerWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	cm := &scriptedChatModel{responses: []string{"# 客戶回饋分析報告\n\n物流很好，客服需要加強。"}}
	w := NewReportWorker(cm, dir)
	s := analyzedState()
	s.DataSummary = "Rows: 2"

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Contains(t, s.Report, "客戶回饋分析報告")
	b, rerr := os.ReadFile(filepath.Join(dir, "t1", ReportFileName))
	require.NoError(t, rerr)
	assert.Equal(t, s.Report, string(b))

	// the report itself is the chat message
	require.Len(t, s.Messages, 1)
	assert.Equal(t, s.Report, s.Messages[0].Content)
}

func TestReportWorkerDigestFallback(t *testing.T) {
	cm := &scriptedChatModel{responses: []string{""}}
	w := NewReportWorker(cm, t.TempDir())
	s := analyzedState()
	s.DataSummary = "Rows: 2 | Avg score: 3.50"

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Contains(t, s.Report, "Customer Feedback Analysis Report")
	assert.Contains(t, s.Report, "Rows analyzed**: 2")
	assert.Contains(t, s.Report, "Rows: 2 | Avg score: 3.50")
}

func TestReportWorkerNoData(t *testing.T) {
	w := NewReportWorker(&scriptedChatModel{responses: []string{"x"}}, t.TempDir())
	s := model.NewSharedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Empty(t, s.Report)
	assert.Contains(t, s.Messages[0].Content, "Nothing to report")
}

func TestEvaluateWorkerScoresReport(t *testing.T) {
	cm := &scriptedChatModel{responses: []string{
		`{"relevance":8,"completeness":6,"accuracy":9,"actionability":7,"score":8,"passed":true,"summary":"covers the main themes","issues":["no quarter comparison"]}`,
	}}
	w := NewEvaluateWorker(cm)
	s := analyzedState()
	s.Report = "# Report\nfindings"

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotNil(t, s.Evaluation)
	assert.Equal(t, 8, s.Evaluation.Score)
	assert.True(t, s.Evaluation.Passed)
	assert.Contains(t, s.Messages[0].Content, "8/10 (passed)")
	assert.Contains(t, s.Messages[0].Content, "no quarter comparison")
}

func TestEvaluateWorkerLowScoreFails(t *testing.T) {
	cm := &scriptedChatModel{responses: []string{
		`{"relevance":4,"completeness":3,"accuracy":5,"actionability":2,"score":4,"passed":true,"summary":"thin"}`,
	}}
	w := NewEvaluateWorker(cm)
	s := analyzedState()
	s.Report = "# Report"

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.False(t, s.Evaluation.Passed, "pass is recomputed from the score, not trusted")
	assert.Contains(t, s.Messages[0].Content, "needs improvement")
}

func TestEvaluateWorkerAutomaticPassOnGarbage(t *testing.T) {
	w := NewEvaluateWorker(&scriptedChatModel{responses: []string{"I refuse to answer in JSON"}})
	s := analyzedState()
	s.Report = "# Report"

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotNil(t, s.Evaluation)
	assert.True(t, s.Evaluation.Passed)
	assert.Equal(t, evaluationPassScore, s.Evaluation.Score)
}

func TestEvaluateWorkerNoReport(t *testing.T) {
	w := NewEvaluateWorker(&scriptedChatModel{responses: []string{"{}"}})
	s := model.NewSharedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Nil(t, s.Evaluation)
	assert.Contains(t, s.Messages[0].Content, "No report to evaluate")
}
