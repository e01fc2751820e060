// Package conversations windows a thread's message log into the compact
// context block the planner prompts consume.
package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

const DefaultMaxTurns = 10

type ContextBuilder struct {
	maxTurns int
}

func NewContextBuilder(maxTurns int) *ContextBuilder {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &ContextBuilder{maxTurns: maxTurns}
}

// BuildPlannerContext wraps the recent conversation plus the message under
// analysis into tagged blocks. System messages and empty entries are skipped;
// only what the user and assistant actually said informs intent parsing.
func (cb *ContextBuilder) BuildPlannerContext(messages []*schema.Message, current string) string {
	recent := trimTail(messages, cb.maxTurns)

	var b strings.Builder
	b.WriteString("<conversation_context>\n")
	for _, msg := range recent {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("UserMessage(" + msg.Content + ")\n")
		case schema.Assistant:
			b.WriteString("AssistantMessage(" + msg.Content + ")\n")
		}
	}
	b.WriteString("</conversation_context>\n")
	b.WriteString("<current_message_to_analyze>\n")
	b.WriteString("UserMessage(" + current + ")\n")
	b.WriteString("</current_message_to_analyze>")
	return b.String()
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
