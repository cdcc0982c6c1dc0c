package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/reliefqa/internal/domain/document"
)

const answerSystemPrompt = "You are a helpful assistant. Using the output from a query to ReliefWeb, " +
	"answer the user's question. You always provide your sources when answering a question, " +
	"giving the report name and link and quoting the relevant information. " +
	"Only answer questions related to humanitarian crises or aid. " +
	"Do not leave an answer empty and keep the content human-readable."

const chainSystemPrompt = answerSystemPrompt + " " +
	"Using the previous answer and any other relevant data, answer the user's new question."

// Answer summarizes docs into a cited answer to question. A non-empty
// previousAnswer is passed as conversation context.
func (c *Client) Answer(ctx context.Context, question, previousAnswer string, docs []document.Record) (string, error) {
	data, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode documents: %w", err)
	}

	system := answerSystemPrompt
	user := question
	if previousAnswer != "" {
		system = chainSystemPrompt
		user = previousAnswer + "\nUser's question: " + question
	}

	return c.complete(ctx, purposeAnswer, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system + "\n" + string(data)},
		{Role: openai.ChatMessageRoleUser, Content: user},
	})
}
