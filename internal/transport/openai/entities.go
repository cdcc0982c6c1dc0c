package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/reliefqa/internal/domain"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/entity"
)

const entitiesSystemPrompt = "Your task is to find entities in the given text. " +
	"Entities must be of one of the following types: disaster_type, location, year. " +
	"Return only a JSON list in the following format and nothing else:\n" +
	`[{"entity_type": "<ENTITY TYPE>", "entity": "<ENTITY>"}]` + "\n" +
	"If there are no entities, return an empty list."

type entityDTO struct {
	EntityType string `json:"entity_type"`
	Entity     string `json:"entity"`
}

// ExtractEntities finds locations, disaster types and years in text.
// Entries of unknown type are dropped.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]entity.Entity, error) {
	out, err := c.complete(ctx, purposeEntities, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: entitiesSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: "Extract the entities for this text:\n\n" + text},
	})
	if err != nil {
		return nil, err
	}
	return parseEntities(out)
}

// parseEntities decodes the first JSON list in s, tolerating code fences and
// surrounding prose.
func parseEntities(s string) ([]entity.Entity, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("entities: no JSON list in response: %w", domain.ErrLLMProviderError)
	}

	var raw []entityDTO
	if err := json.Unmarshal([]byte(s[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("entities: decode response: %w", domain.ErrLLMProviderError)
	}

	out := make([]entity.Entity, 0, len(raw))
	for _, r := range raw {
		if e, ok := entity.New(r.EntityType, r.Entity); ok {
			out = append(out, e)
		}
	}
	return out, nil
}
