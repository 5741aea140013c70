package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// ChatClient is the part of the OpenAI client we use.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAITranslator translates with an OpenAI chat model.
type OpenAITranslator struct {
	client ChatClient
	model  string
}

// NewOpenAITranslator creates an OpenAI backend.
func NewOpenAITranslator(client ChatClient, model string) *OpenAITranslator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAITranslator{client: client, model: model}
}

// Translate asks the model for a bare translation of text.
func (t *OpenAITranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You translate product descriptions. Detect the source language yourself. Respond with only the translation, nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Translate to the language with code %q:\n\n%s", targetLang, text),
			},
		},
		Temperature: 0.2,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
