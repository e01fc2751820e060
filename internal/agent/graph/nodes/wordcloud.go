package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	"github.com/feedback-insight-poc/server/internal/render"
)

const maxWordcloudTerms = 100

// WordcloudWorker tokenizes the feedback texts and renders a keyword cloud.
// Fully deterministic, no model involved.
type WordcloudWorker struct {
	outputDir string
}

func NewWordcloudWorker(outputDir string) *WordcloudWorker {
	return &WordcloudWorker{outputDir: outputDir}
}

func (w *WordcloudWorker) Step() model.Step {
	return model.StepWordcloud
}

func (w *WordcloudWorker) Apply(ctx context.Context, s *model.SharedState) (model.Update, error) {
	if len(s.RawData) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No data available for the word cloud, fetch has to run first.", nil)), nil
	}

	_, texts := feedbackTexts(s.RawData)
	freqs := termFrequencies(texts)
	if len(freqs) == 0 {
		return model.MessageUpdate(schema.AssistantMessage(
			"⚠️ No usable text left after filtering, skipping the word cloud.", nil)), nil
	}

	top := topTerms(freqs, maxWordcloudTerms)
	words := make([]render.WordFreq, 0, len(top))
	for _, term := range top {
		words = append(words, render.WordFreq{Word: term, Count: freqs[term]})
	}

	renderer, err := threadRenderer(w.outputDir, s.ThreadID)
	if err != nil {
		return model.Update{}, err
	}
	path, err := renderer.Wordcloud(words)
	if err != nil {
		return model.Update{}, fmt.Errorf("render word cloud: %w", err)
	}

	var u model.Update
	u.WordcloudPath = strPtr(path)
	u.Messages = []*schema.Message{schema.AssistantMessage(fmt.Sprintf(
		"☁️ Word cloud generated from %d terms: %s", len(words), path), nil)}
	return u, nil
}
