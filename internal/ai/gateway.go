package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Gateway implements Provider against any OpenAI-compatible chat-completions
// endpoint (OpenRouter, OpenAI, or a self-hosted gateway).
type Gateway struct {
	client         *openai.Client
	model          string
	embeddingModel string
}

// NewGateway creates a gateway client with bearer-token auth against the
// given base URL.
func NewGateway(apiKey, baseURL, model, embeddingModel string) *Gateway {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Gateway{
		client:         openai.NewClientWithConfig(cfg),
		model:          model,
		embeddingModel: embeddingModel,
	}
}

// Complete forwards a single chat-completion request upstream.
func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	var messages []openai.ChatCompletionMessage
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway completion: %w", err)
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: finishReason,
	}, nil
}

// Embed generates an embedding for a single text via the gateway's
// embeddings endpoint. Used by the assistant memory.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(g.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("gateway returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}
