package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

type cohereTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type cohereRequest struct {
	Model       string       `json:"model"`
	Message     string       `json:"message"`
	Preamble    string       `json:"preamble,omitempty"`
	ChatHistory []cohereTurn `json:"chat_history,omitempty"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

type cohereResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// CohereGenerator calls the Cohere chat endpoint
type CohereGenerator struct {
	client *restClient
	config Config
}

func NewCohereGenerator(config Config, logger *logrus.Logger) *CohereGenerator {
	headers := map[string]string{"Authorization": "Bearer " + config.CohereAPIKey}
	return &CohereGenerator{
		client: newRESTClient(strings.TrimSuffix(config.CohereBaseURL, "/"), headers, config.Timeout, logger),
		config: config,
	}
}

func (g *CohereGenerator) Name() string {
	return g.config.Model
}

func (g *CohereGenerator) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("cohere generate: no user message")
	}

	// The last turn is the message; everything before it is history
	req := cohereRequest{
		Model:       g.config.Model,
		Message:     turns[len(turns)-1].Content,
		Preamble:    system,
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	}
	for _, m := range turns[:len(turns)-1] {
		role := "USER"
		if m.Role == schema.Assistant {
			role = "CHATBOT"
		}
		req.ChatHistory = append(req.ChatHistory, cohereTurn{Role: role, Message: m.Content})
	}

	var resp cohereResponse
	if err := g.client.makeRequest(ctx, http.MethodPost, "/v1/chat", req, &resp); err != nil {
		return "", fmt.Errorf("cohere generate: %w", err)
	}
	return resp.Text, nil
}
