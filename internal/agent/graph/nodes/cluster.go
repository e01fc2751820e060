package nodes

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/feedback-insight-poc/server/internal/agent/graph/parsers"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// ClusterWorker scores sentiment and groups feedback into topics: embed every
// feedback text, k-means the vectors, then ask the worker model to name each
// cluster. Naming falls back to top terms when the model output is unusable.
type ClusterWorker struct {
	cm          model.ChatModel
	embedder    embedding.Embedder
	maxClusters int
}

func NewClusterWorker(cm model.ChatModel, embedder embedding.Embedder, maxClusters int) *ClusterWorker {
	if maxClusters <= 0 {
		maxClusters = 5
	}
	return &ClusterWorker{cm: cm, embedder: embedder, maxClusters: maxClusters}
}

func (w *ClusterWorker) Step() model.Step {
	return model.StepCluster
}

func (w *ClusterWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if len(s.RawData) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No data available for clustering, fetch has to run first.", nil)), nil
	}

	sentiment := sentimentFromScores(s.RawData)

	ids, texts := feedbackTexts(s.RawData)
	if len(texts) == 0 {
		var u model.Update
		u.Sentiment = sentiment
		u.Messages = []*schema.Message{schema.AssistantMessage(
			"⚠️ No feedback text to cluster, only sentiment counts were computed.", nil)}
		return u, nil
	}

	vectors, err := w.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return model.Update{}, fmt.Errorf("embed feedback texts: %w", err)
	}
	if len(vectors) != len(texts) {
		return model.Update{}, fmt.Errorf("embedding count mismatch: %d vectors for %d texts", len(vectors), len(texts))
	}

	assignments, k := w.partition(vectors)

	items := make([]model.ClusterItem, len(texts))
	grouped := make(map[int][]string, k)
	for i := range texts {
		cid := assignments[i]
		items[i] = model.ClusterItem{FeedbackID: ids[i], ClusterID: cid, Content: texts[i]}
		grouped[cid] = append(grouped[cid], texts[i])
	}

	labels := w.nameClusters(ctx, grouped)

	result := &model.ClusterResult{NClusters: k, Labels: labels, Items: items}
	var u model.Update
	u.Sentiment = sentiment
	u.Clusters = result
	u.Messages = []*schema.Message{schema.AssistantMessage(fmt.Sprintf(
		"🔍 Clustered %d feedback entries into %d topics. Sentiment: %d positive / %d negative / %d neutral.",
		len(items), k, sentiment.Positive, sentiment.Negative, sentiment.Neutral), nil)}
	return u, nil
}

// partition runs k-means and assigns every vector to its nearest center.
// When partitioning is impossible (too few points) everything lands in one
// cluster.
func (w *ClusterWorker) partition(vectors [][]float64) ([]int, int) {
	assignments := make([]int, len(vectors))

	k := w.maxClusters
	if len(vectors) < k {
		k = len(vectors)
	}
	if k < 2 {
		return assignments, 1
	}

	obs := make(clusters.Observations, len(vectors))
	for i, v := range vectors {
		obs[i] = clusters.Coordinates(v)
	}

	km := kmeans.New()
	cls, err := km.Partition(obs, k)
	if err != nil || len(cls) == 0 {
		logx.Warn().Err(err).Int("k", k).Msg("k-means partition failed, using a single cluster")
		return assignments, 1
	}

	for i, v := range vectors {
		assignments[i] = cls.Nearest(clusters.Coordinates(v))
	}
	return assignments, len(cls)
}

const clusterNamingPrompt = `You name topics of customer-feedback clusters. For every cluster below, produce a short topic name (2-6 words, same language as the feedback). Respond in JSON mapping the cluster id to its name, e.g. {"0": "Delivery delays", "1": "Support attitude"}. Return only the JSON object.`

// nameClusters asks the worker model for topic names, one request for all
// clusters. Any failure falls back to top-term names.
func (w *ClusterWorker) nameClusters(ctx context.Context, grouped map[int][]string) map[string]string {
	// cluster ids are not necessarily contiguous (empty clusters leave gaps)
	cids := make([]int, 0, len(grouped))
	for cid := range grouped {
		cids = append(cids, cid)
	}
	sort.Ints(cids)

	var user string
	for _, cid := range cids {
		user += fmt.Sprintf("Cluster %d:\n", cid)
		for i, t := range grouped[cid] {
			if i >= 5 {
				break
			}
			user += "- " + truncate(t, 80) + "\n"
		}
	}

	fallback := func() map[string]string {
		labels := make(map[string]string, len(grouped))
		for cid, texts := range grouped {
			terms := topTerms(termFrequencies(texts), 2)
			name := fmt.Sprintf("Topic %d", cid+1)
			if len(terms) > 0 {
				name = terms[0]
				if len(terms) > 1 {
					name += " / " + terms[1]
				}
			}
			labels[strconv.Itoa(cid)] = name
		}
		return labels
	}

	out, err := w.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(clusterNamingPrompt),
		schema.UserMessage(user),
	})
	if err != nil {
		logx.Warn().Err(err).Msg("cluster naming failed, using term fallback")
		return fallback()
	}

	var labels map[string]string
	if err := parsers.ParseInto(out.Content, &labels); err != nil || len(labels) == 0 {
		logx.Warn().Err(err).Msg("cluster naming unparsable, using term fallback")
		return fallback()
	}
	// fill any cluster the model skipped
	for cid := range grouped {
		key := strconv.Itoa(cid)
		if labels[key] == "" {
			labels[key] = fmt.Sprintf("Topic %d", cid+1)
		}
	}
	return labels
}

// sentimentFromScores derives sentiment from the score column: >= 4 positive,
// <= 2 negative, everything else (including missing scores) neutral.
func sentimentFromScores(rows []datasource.Record) *model.SentimentResult {
	res := &model.SentimentResult{}
	for i, r := range rows {
		id, _ := r.Field(datasource.ColumnID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		label := "neutral"
		var score float64
		if raw, ok := r.Field(datasource.ColumnScore); ok && raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				score = v
				switch {
				case v >= 4:
					label = "positive"
				case v <= 2:
					label = "negative"
				}
			}
		}
		switch label {
		case "positive":
			res.Positive++
		case "negative":
			res.Negative++
		default:
			res.Neutral++
		}
		res.Details = append(res.Details, model.SentimentDetail{FeedbackID: id, Sentiment: label, Score: score})
	}
	return res
}

// feedbackTexts extracts ids and non-empty content cells in row order.
func feedbackTexts(rows []datasource.Record) ([]string, []string) {
	ids := make([]string, 0, len(rows))
	texts := make([]string, 0, len(rows))
	for i, r := range rows {
		content, _ := r.Field(datasource.ColumnContent)
		if content == "" {
			continue
		}
		id, _ := r.Field(datasource.ColumnID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		ids = append(ids, id)
		texts = append(texts, content)
	}
	return ids, texts
}
