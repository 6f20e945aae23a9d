package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

// Generator produces a completion for a rendered chat prompt
type Generator interface {
	Generate(ctx context.Context, messages []*schema.Message) (string, error)
	Name() string
}

type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	OpenAIBaseURL string
	OpenAIAPIKey  string

	GeminiAPIKey  string
	GeminiBaseURL string

	CohereAPIKey  string
	CohereBaseURL string
}

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultCohereBaseURL = "https://api.cohere.com"
)

// Backend names the provider a model string selects
func Backend(model string) string {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt"):
		return "openai"
	case strings.HasPrefix(model, "gemini"):
		return "gemini"
	default:
		return "cohere"
	}
}

// NewGenerator picks the backend from the model prefix: gpt* is served by an
// OpenAI-compatible endpoint, gemini* by Gemini, anything else by Cohere.
func NewGenerator(ctx context.Context, config Config, logger *logrus.Logger) (Generator, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	logger.WithFields(logrus.Fields{
		"model":   config.Model,
		"backend": Backend(config.Model),
	}).Info("Initializing LLM backend")

	switch Backend(config.Model) {
	case "openai":
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for model %s", config.Model)
		}
		return NewOpenAIGenerator(ctx, config)
	case "gemini":
		if config.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY is required for model %s", config.Model)
		}
		if config.GeminiBaseURL == "" {
			config.GeminiBaseURL = defaultGeminiBaseURL
		}
		return NewGeminiGenerator(config, logger), nil
	default:
		if config.CohereAPIKey == "" {
			return nil, fmt.Errorf("COHERE_API_KEY is required for model %s", config.Model)
		}
		if config.CohereBaseURL == "" {
			config.CohereBaseURL = defaultCohereBaseURL
		}
		return NewCohereGenerator(config, logger), nil
	}
}

// splitSystem separates system instructions from the conversation turns
func splitSystem(messages []*schema.Message) (string, []*schema.Message) {
	var system []string
	var turns []*schema.Message
	for _, m := range messages {
		if m.Role == schema.System {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}
