package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint
type OpenAIGenerator struct {
	model chatModel
	name  string
}

func NewOpenAIGenerator(ctx context.Context, config Config) (*OpenAIGenerator, error) {
	maxTokens := config.MaxTokens
	temperature := float32(config.Temperature)

	modelConfig := &openai.ChatModelConfig{
		APIKey:      config.OpenAIAPIKey,
		BaseURL:     config.OpenAIBaseURL,
		Model:       config.Model,
		Timeout:     config.Timeout,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	chat, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &OpenAIGenerator{model: chat, name: config.Model}, nil
}

func (g *OpenAIGenerator) Name() string {
	return g.name
}

func (g *OpenAIGenerator) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	out, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("openai generate: empty response")
	}
	return out.Content, nil
}
