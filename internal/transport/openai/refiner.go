package openai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/reliefqa/internal/domain/conversation"
)

const refineSystemPrompt = "You are reading the transcript of a conversation between an AI and a human. " +
	"Given the conversation history and a new question, infer what the human actually wants to know. " +
	"The history is only there to resolve references such as \"this\" or \"there\". " +
	"Reply with a short query suitable for a search engine and nothing else."

// Refine rewrites question into a standalone search query using the conversation so far.
func (c *Client) Refine(ctx context.Context, history []conversation.Turn, question string) (string, error) {
	var b strings.Builder
	b.WriteString("Conversation history:\n")
	for _, t := range history {
		b.WriteString("Human: ")
		b.WriteString(t.Question())
		b.WriteString("\nAI: ")
		b.WriteString(t.Answer())
		b.WriteString("\n")
	}
	b.WriteString("Human: ")
	b.WriteString(question)
	b.WriteString("\n\nOutput:")

	out, err := c.complete(ctx, purposeRefine, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: refineSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: b.String()},
	})
	if err != nil {
		return "", err
	}
	return cleanQuery(out), nil
}

// cleanQuery strips an echoed "Output:" label and surrounding quotes.
func cleanQuery(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Output:")
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"'")
}
