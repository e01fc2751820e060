package nodes

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/graph/parsers"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/datasource"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// KnowledgeMapWorker builds the hierarchical knowledge tree over the feedback
// topics and renders it as a treemap. Tree synthesis is LLM-backed with a
// deterministic term-frequency fallback.
type KnowledgeMapWorker struct {
	cm        model.ChatModel
	outputDir string
}

func NewKnowledgeMapWorker(cm model.ChatModel, outputDir string) *KnowledgeMapWorker {
	return &KnowledgeMapWorker{cm: cm, outputDir: outputDir}
}

func (w *KnowledgeMapWorker) Step() model.Step {
	return model.StepKnowledgeMap
}

func (w *KnowledgeMapWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if len(s.RawData) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No data available for the knowledge map, fetch has to run first.", nil)), nil
	}

	tree := w.buildTree(ctx, s)

	renderer, err := threadRenderer(w.outputDir, s.ThreadID)
	if err != nil {
		return model.Update{}, err
	}
	path, err := renderer.KnowledgeTreemap(tree)
	if err != nil {
		return model.Update{}, fmt.Errorf("render knowledge map: %w", err)
	}

	var u model.Update
	u.KnowledgeMap = tree
	u.KnowledgeMapPath = strPtr(path)
	u.Messages = []*schema.Message{schema.AssistantMessage(fmt.Sprintf(
		"🗺️ Knowledge map built with %d themes: %s", len(tree.Children), path), nil)}
	return u, nil
}

const knowledgeTreePrompt = `You organize customer feedback into a two-level knowledge tree. Given the topics and sample feedback below, respond in JSON:
{"name": "root name", "children": [{"name": "theme", "keywords": ["kw1", "kw2"]}]}
Use the same language as the feedback. Return only the JSON object.`

// buildTree asks the worker model for a tree over the cluster topics, falling
// back to a term-frequency tree grouped by cluster (or category) on failure.
func (w *KnowledgeMapWorker) buildTree(ctx context.Context, s *model.SharedState) *model.KnowledgeNode {
	var user string
	if s.Clusters != nil {
		for cid := 0; cid < s.Clusters.NClusters; cid++ {
			user += fmt.Sprintf("Topic %q:\n", s.Clusters.Labels[strconv.Itoa(cid)])
			n := 0
			for _, item := range s.Clusters.Items {
				if item.ClusterID != cid || n >= 3 {
					continue
				}
				user += "- " + truncate(item.Content, 80) + "\n"
				n++
			}
		}
	} else {
		_, texts := feedbackTexts(s.RawData)
		for i, t := range texts {
			if i >= 15 {
				break
			}
			user += "- " + truncate(t, 80) + "\n"
		}
	}

	out, err := w.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(knowledgeTreePrompt),
		schema.UserMessage(user),
	})
	if err == nil {
		var tree model.KnowledgeNode
		if perr := parsers.ParseInto(out.Content, &tree); perr == nil && tree.Name != "" && len(tree.Children) > 0 {
			return &tree
		}
		logx.Warn().Msg("knowledge tree unparsable, using term fallback")
	} else {
		logx.Warn().Err(err).Msg("knowledge tree generation failed, using term fallback")
	}

	return fallbackTree(s)
}

// fallbackTree groups texts by cluster when available, else by category, and
// attaches each group's top terms as keywords.
func fallbackTree(s *model.SharedState) *model.KnowledgeNode {
	root := &model.KnowledgeNode{Name: "Customer Feedback"}

	if s.Clusters != nil {
		grouped := make(map[int][]string)
		for _, item := range s.Clusters.Items {
			grouped[item.ClusterID] = append(grouped[item.ClusterID], item.Content)
		}
		for cid := 0; cid < s.Clusters.NClusters; cid++ {
			name := s.Clusters.Labels[strconv.Itoa(cid)]
			if name == "" {
				name = fmt.Sprintf("Topic %d", cid+1)
			}
			root.Children = append(root.Children, model.KnowledgeNode{
				Name:     name,
				Keywords: topTerms(termFrequencies(grouped[cid]), 5),
			})
		}
		return root
	}

	byCategory := make(map[string][]string)
	for _, r := range s.RawData {
		category, _ := r.Field(datasource.ColumnCategory)
		if category == "" {
			category = "Other"
		}
		if content, _ := r.Field(datasource.ColumnContent); content != "" {
			byCategory[category] = append(byCategory[category], content)
		}
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		root.Children = append(root.Children, model.KnowledgeNode{
			Name:     name,
			Keywords: topTerms(termFrequencies(byCategory[name]), 5),
		})
	}
	return root
}
