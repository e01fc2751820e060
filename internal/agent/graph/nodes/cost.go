package nodes

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/feedback-insight-poc/server/internal/agent/model"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// costTrackingModel decorates a ChatModel with per-call usage cost logging
// and attaches the cost breakdown to the message Extra.
type costTrackingModel struct {
	inner     model.ChatModel
	modelName string
	node      string
}

// WithCostTracking wraps a chat model so every Generate call logs token usage
// and USD cost under the given node tag.
func WithCostTracking(inner model.ChatModel, modelName, node string) model.ChatModel {
	return &costTrackingModel{inner: inner, modelName: modelName, node: node}
}

func (c *costTrackingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := c.inner.Generate(ctx, input, opts...)
	if err != nil || out == nil {
		return out, err
	}

	if model.CostEnabled() && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		pricing := model.ResolvePricing(c.modelName)
		inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
		if out.Extra == nil {
			out.Extra = map[string]any{}
		}
		out.Extra["usage_cost"] = map[string]any{
			"currency":          "USD",
			"model":             c.modelName,
			"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
			"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
			"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
			"input_cost":        inC,
			"output_cost":       outC,
			"total_cost":        totalC,
		}
		logx.Debug().
			Str("node", c.node).
			Str("model", c.modelName).
			Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
			Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}

	return out, nil
}
