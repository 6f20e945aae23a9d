package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

// GeminiGenerator calls the generateContent endpoint
type GeminiGenerator struct {
	client *restClient
	config Config
}

func NewGeminiGenerator(config Config, logger *logrus.Logger) *GeminiGenerator {
	headers := map[string]string{"x-goog-api-key": config.GeminiAPIKey}
	return &GeminiGenerator{
		client: newRESTClient(strings.TrimSuffix(config.GeminiBaseURL, "/"), headers, config.Timeout, logger),
		config: config,
	}
}

func (g *GeminiGenerator) Name() string {
	return g.config.Model
}

func (g *GeminiGenerator) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	system, turns := splitSystem(messages)

	req := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.config.Temperature,
			MaxOutputTokens: g.config.MaxTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range turns {
		role := "user"
		if m.Role == schema.Assistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}

	var resp geminiResponse
	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", url.PathEscape(g.config.Model))
	if err := g.client.makeRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini generate: no candidates returned")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
