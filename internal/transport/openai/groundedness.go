package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/document"
)

// maxContextRunes bounds the document context sent for grading.
const maxContextRunes = 12000

const groundednessSystemPrompt = "You are an AI assistant. You will be given a CONTEXT and an ANSWER " +
	"about that CONTEXT. Decide whether the ANSWER is entailed by the CONTEXT and rate it:\n" +
	"5: the ANSWER follows logically from the information in the CONTEXT.\n" +
	"1: the ANSWER is logically false given the CONTEXT.\n" +
	"An integer between 1 and 5 when it is not possible to fully determine whether the ANSWER is true " +
	"without further information; use 1 if no such integer applies.\n" +
	"The ANSWER is generated by a computer system and may contain symbols; do not penalize them.\n" +
	"Reply with a single integer between 1 and 5. Do not repeat the context."

// Groundedness rates from 1 to 5 how well answer is supported by docs.
func (c *Client) Groundedness(ctx context.Context, answer string, docs []document.Record) (int, error) {
	input, err := json.Marshal(struct {
		Context string `json:"CONTEXT"`
		Answer  string `json:"ANSWER"`
	}{groundingContext(docs), answer})
	if err != nil {
		return 0, fmt.Errorf("encode groundedness input: %w", err)
	}

	out, err := c.complete(ctx, purposeGroundedness, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: groundednessSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: string(input)},
	})
	if err != nil {
		return 0, err
	}
	return parseScore(out)
}

// groundingContext flattens titles and body paragraphs, truncated to maxContextRunes.
func groundingContext(docs []document.Record) string {
	var b strings.Builder
	for _, d := range docs {
		if t := d.Title(); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
		for _, p := range d.Body() {
			b.WriteString(p)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	r := []rune(b.String())
	if len(r) > maxContextRunes {
		r = r[:maxContextRunes]
	}
	return strings.TrimSpace(string(r))
}

// parseScore returns the first digit 1-5 in s.
func parseScore(s string) (int, error) {
	for _, r := range s {
		if r >= '1' && r <= '5' {
			return int(r - '0'), nil
		}
	}
	return 0, fmt.Errorf("groundedness: no score in %q: %w", truncateText(s, 64), domain.ErrLLMProviderError)
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
