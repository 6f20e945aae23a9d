package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/database"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePrompt() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage("You are a dietitian."),
		schema.UserMessage("Can I eat poha?"),
	}
}

func TestBackend(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-4o-mini", "openai"},
		{"GPT-4", "openai"},
		{"gemini-1.5-flash", "gemini"},
		{"command-r-plus", "cohere"},
		{"llama", "cohere"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, Backend(tt.model))
		})
	}
}

func TestNewGenerator_RequiresCredentials(t *testing.T) {
	logger := logrus.New()
	ctx := context.Background()

	_, err := NewGenerator(ctx, Config{}, logger)
	assert.Error(t, err)

	_, err = NewGenerator(ctx, Config{Model: "gpt-4o-mini"}, logger)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = NewGenerator(ctx, Config{Model: "gemini-pro"}, logger)
	assert.ErrorContains(t, err, "GOOGLE_GEMINI_API_KEY")

	_, err = NewGenerator(ctx, Config{Model: "command-r"}, logger)
	assert.ErrorContains(t, err, "COHERE_API_KEY")

	gen, err := NewGenerator(ctx, Config{Model: "command-r", CohereAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &CohereGenerator{}, gen)
	assert.Equal(t, "command-r", gen.Name())

	gen, err = NewGenerator(ctx, Config{Model: "gemini-pro", GeminiAPIKey: "k"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &GeminiGenerator{}, gen)
}

func TestGeminiGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if !assert.NotNil(t, req.SystemInstruction) {
			return
		}
		assert.Equal(t, "You are a dietitian.", req.SystemInstruction.Parts[0].Text)
		if !assert.Len(t, req.Contents, 1) {
			return
		}
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, 256, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Yes, "},{"text":"in moderation."}]}}]}`))
	}))
	defer server.Close()

	gen := NewGeminiGenerator(Config{
		Model:         "gemini-1.5-flash",
		MaxTokens:     256,
		Timeout:       time.Second,
		GeminiAPIKey:  "test-key",
		GeminiBaseURL: server.URL,
	}, logrus.New())

	out, err := gen.Generate(context.Background(), samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "Yes, in moderation.", out)
}

func TestGeminiGenerator_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	gen := NewGeminiGenerator(Config{Model: "gemini-pro", Timeout: time.Second, GeminiBaseURL: server.URL}, logrus.New())

	_, err := gen.Generate(context.Background(), samplePrompt())
	assert.ErrorContains(t, err, "no candidates")
}

func TestCohereGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req cohereRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "command-r", req.Model)
		assert.Equal(t, "Can I eat poha?", req.Message)
		assert.Equal(t, "You are a dietitian.", req.Preamble)
		assert.Empty(t, req.ChatHistory)

		w.Write([]byte(`{"text":"Poha is fine for breakfast."}`))
	}))
	defer server.Close()

	gen := NewCohereGenerator(Config{
		Model:         "command-r",
		Timeout:       time.Second,
		CohereAPIKey:  "test-key",
		CohereBaseURL: server.URL,
	}, logrus.New())

	out, err := gen.Generate(context.Background(), samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "Poha is fine for breakfast.", out)
}

func TestCohereGenerator_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api token"))
	}))
	defer server.Close()

	gen := NewCohereGenerator(Config{Model: "command-r", Timeout: time.Second, CohereBaseURL: server.URL}, logrus.New())

	_, err := gen.Generate(context.Background(), samplePrompt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = gen.Generate(context.Background(), []*schema.Message{schema.SystemMessage("only system")})
	assert.ErrorContains(t, err, "no user message")
}

type fakeChatModel struct {
	reply *schema.Message
	err   error
	got   []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	return f.reply, f.err
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("Skip the sugar.", nil)}
	gen := &OpenAIGenerator{model: fake, name: "gpt-4o-mini"}

	out, err := gen.Generate(context.Background(), samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "Skip the sugar.", out)
	assert.Len(t, fake.got, 2)

	gen.model = &fakeChatModel{err: errors.New("rate limited")}
	_, err = gen.Generate(context.Background(), samplePrompt())
	assert.ErrorContains(t, err, "rate limited")
}

type countingGenerator struct {
	calls int
	reply string
	err   error
}

func (c *countingGenerator) Name() string { return "counting" }

func (c *countingGenerator) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	c.calls++
	return c.reply, c.err
}

type memoryCache struct {
	entries map[string]*database.CachedCompletion
	getErr  error
}

func (m *memoryCache) GetCachedCompletion(ctx context.Context, key string) (*database.CachedCompletion, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.entries[key]
	if !ok {
		return nil, database.ErrCacheMiss
	}
	return c, nil
}

func (m *memoryCache) CacheCompletion(ctx context.Context, key string, completion *database.CachedCompletion, expiration time.Duration) error {
	m.entries[key] = completion
	return nil
}

func TestCachedGenerator(t *testing.T) {
	next := &countingGenerator{reply: "cached answer"}
	cache := &memoryCache{entries: map[string]*database.CachedCompletion{}}
	gen := NewCachedGenerator(next, cache, time.Minute, logrus.New())

	ctx := context.Background()

	out, err := gen.Generate(ctx, samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "cached answer", out)

	out, err = gen.Generate(ctx, samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "cached answer", out)
	assert.Equal(t, 1, next.calls)

	other := []*schema.Message{schema.UserMessage("Different question")}
	_, err = gen.Generate(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, "counting", gen.Name())
}

func TestCachedGenerator_CacheFailureFallsThrough(t *testing.T) {
	next := &countingGenerator{reply: "fresh"}
	cache := &memoryCache{entries: map[string]*database.CachedCompletion{}, getErr: errors.New("redis down")}
	gen := NewCachedGenerator(next, cache, time.Minute, logrus.New())

	out, err := gen.Generate(context.Background(), samplePrompt())
	require.NoError(t, err)
	assert.Equal(t, "fresh", out)
}

func TestCachedGenerator_ErrorsAreNotCached(t *testing.T) {
	next := &countingGenerator{err: errors.New("upstream failed")}
	cache := &memoryCache{entries: map[string]*database.CachedCompletion{}}
	gen := NewCachedGenerator(next, cache, time.Minute, logrus.New())

	_, err := gen.Generate(context.Background(), samplePrompt())
	require.Error(t, err)
	assert.Empty(t, cache.entries)
}

func TestPromptKey(t *testing.T) {
	a := PromptKey("gpt-4o-mini", samplePrompt())
	assert.Equal(t, a, PromptKey("gpt-4o-mini", samplePrompt()))
	assert.NotEqual(t, a, PromptKey("gemini-pro", samplePrompt()))

	swapped := []*schema.Message{
		schema.UserMessage("You are a dietitian."),
		schema.UserMessage("Can I eat poha?"),
	}
	assert.NotEqual(t, a, PromptKey("gpt-4o-mini", swapped))
}
