package nodes

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
)

// recordingChatModel keeps the user prompts it was asked to answer.
type recordingChatModel struct {
	response string
	prompts  []string
}

func (m *recordingChatModel) Generate(_ context.Context, msgs []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	for _, msg := range msgs {
		if msg.Role == schema.User {
			m.prompts = append(m.prompts, msg.Content)
		}
	}
	return schema.AssistantMessage(m.response, nil), nil
}

type stubEmbedder struct {
	vectors [][]float64
	err     error
}

func (e *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.vectors != nil {
		return e.vectors, nil
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{float64(i), float64(i % 2)}
	}
	return out, nil
}

func TestSentimentFromScores(t *testing.T) {
	rows := []datasource.Record{
		{"回饋編號": "F001", "評分": "5"},
		{"回饋編號": "F002", "評分": "4"},
		{"回饋編號": "F003", "評分": "3"},
		{"回饋編號": "F004", "評分": "2"},
		{"評分": "1"},
		{"回饋編號": "F006"},
	}

	res := sentimentFromScores(rows)

	assert.Equal(t, 2, res.Positive)
	assert.Equal(t, 2, res.Negative)
	assert.Equal(t, 2, res.Neutral, "missing or mid score counts as neutral")
	require.Len(t, res.Details, 6)
	assert.Equal(t, "F001", res.Details[0].FeedbackID)
	assert.Equal(t, "positive", res.Details[0].Sentiment)
	assert.Equal(t, "5", res.Details[4].FeedbackID, "missing id falls back to the row number")
	assert.Equal(t, "negative", res.Details[4].Sentiment)
}

func TestFeedbackTexts(t *testing.T) {
	rows := []datasource.Record{
		{"回饋編號": "F001", "回饋內容": "出貨速度很快"},
		{"回饋編號": "F002", "回饋內容": ""},
		{"回饋內容": "包裝破損"},
	}

	ids, texts := feedbackTexts(rows)

	assert.Equal(t, []string{"F001", "3"}, ids)
	assert.Equal(t, []string{"出貨速度很快", "包裝破損"}, texts)
}

func TestClusterWorkerNoData(t *testing.T) {
	w := NewClusterWorker(&scriptedChatModel{responses: []string{"{}"}}, &stubEmbedder{}, 5)
	s := model.NewSharedState()

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Nil(t, s.Clusters)
	require.Len(t, s.Messages, 1)
	assert.Contains(t, s.Messages[0].Content, "No data available")
}

func TestClusterWorkerSentimentOnlyWithoutText(t *testing.T) {
	w := NewClusterWorker(&scriptedChatModel{responses: []string{"{}"}}, &stubEmbedder{}, 5)
	s := model.NewSharedState()
	s.RawData = []datasource.Record{{"評分": "5"}, {"評分": "1"}}

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	assert.Nil(t, s.Clusters)
	require.NotNil(t, s.Sentiment)
	assert.Equal(t, 1, s.Sentiment.Positive)
	assert.Equal(t, 1, s.Sentiment.Negative)
}

func TestClusterWorkerEmbeddingFailureIsAnError(t *testing.T) {
	w := NewClusterWorker(&scriptedChatModel{responses: []string{"{}"}},
		&stubEmbedder{err: errors.New("quota exhausted")}, 5)
	s := model.NewSharedState()
	s.RawData = []datasource.Record{{"回饋內容": "出貨很快"}}

	_, err := w.Apply(context.Background(), s)
	require.Error(t, err, "embedding failures are retryable engine errors")
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestClusterWorkerSinglePointSingleCluster(t *testing.T) {
	cm := &scriptedChatModel{responses: []string{`{"0":"Shipping speed"}`}}
	w := NewClusterWorker(cm, &stubEmbedder{}, 5)
	s := model.NewSharedState()
	s.RawData = []datasource.Record{{"回饋編號": "F001", "回饋內容": "出貨速度很快", "評分": "5"}}

	u, err := w.Apply(context.Background(), s)
	require.NoError(t, err)
	s.Apply(u)

	require.NotNil(t, s.Clusters)
	assert.Equal(t, 1, s.Clusters.NClusters)
	require.Len(t, s.Clusters.Items, 1)
	assert.Equal(t, 0, s.Clusters.Items[0].ClusterID)
	assert.Equal(t, "Shipping speed", s.Clusters.Labels["0"])
}

func TestNameClustersWithGapInClusterIDs(t *testing.T) {
	// an empty cluster leaves a hole in the id space; every remaining
	// cluster must still reach the naming prompt
	cm := &recordingChatModel{response: `{"0":"Delivery delays","2":"Support attitude"}`}
	w := NewClusterWorker(cm, &stubEmbedder{}, 5)
	grouped := map[int][]string{
		0: {"shipping slow", "shipping delayed"},
		2: {"客服態度很好"},
	}

	labels := w.nameClusters(context.Background(), grouped)

	require.Len(t, cm.prompts, 1)
	assert.Contains(t, cm.prompts[0], "Cluster 0:")
	assert.Contains(t, cm.prompts[0], "Cluster 2:")
	assert.Contains(t, cm.prompts[0], "客服態度很好")
	assert.Equal(t, "Delivery delays", labels["0"])
	assert.Equal(t, "Support attitude", labels["2"])
}

func TestNameClustersFallbackOnGarbage(t *testing.T) {
	w := NewClusterWorker(&scriptedChatModel{responses: []string{"no json here"}}, &stubEmbedder{}, 5)
	grouped := map[int][]string{
		0: {"shipping slow", "shipping delayed"},
		1: {"客服態度很好", "客服回覆迅速"},
	}

	labels := w.nameClusters(context.Background(), grouped)

	require.Len(t, labels, 2)
	assert.Contains(t, labels["0"], "shipping")
	assert.NotEmpty(t, labels["1"])
}
