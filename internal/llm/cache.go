package llm

import (
	"context"
	"errors"
	"time"

	"github.com/Ayash-Bera/nutri-agent/backend/internal/database"
	"github.com/Ayash-Bera/nutri-agent/backend/pkg/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
)

// CompletionCache is satisfied by *database.Cache
type CompletionCache interface {
	GetCachedCompletion(ctx context.Context, key string) (*database.CachedCompletion, error)
	CacheCompletion(ctx context.Context, key string, completion *database.CachedCompletion, expiration time.Duration) error
}

// CachedGenerator serves repeated prompts from the completion cache.
// Cache failures never fail a generation.
type CachedGenerator struct {
	next   Generator
	cache  CompletionCache
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedGenerator(next Generator, cache CompletionCache, ttl time.Duration, logger *logrus.Logger) *CachedGenerator {
	return &CachedGenerator{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func (g *CachedGenerator) Name() string {
	return g.next.Name()
}

func (g *CachedGenerator) Generate(ctx context.Context, messages []*schema.Message) (string, error) {
	key := PromptKey(g.next.Name(), messages)

	cached, err := g.cache.GetCachedCompletion(ctx, key)
	switch {
	case err == nil:
		g.logger.WithField("key", key).Debug("Completion cache hit")
		return cached.Content, nil
	case !errors.Is(err, database.ErrCacheMiss):
		g.logger.WithError(err).Warn("Completion cache lookup failed")
	}

	content, err := g.next.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	completion := &database.CachedCompletion{
		Model:     g.next.Name(),
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := g.cache.CacheCompletion(ctx, key, completion, g.ttl); err != nil {
		g.logger.WithError(err).Warn("Failed to cache completion")
	}

	return content, nil
}

// PromptKey hashes the model and every rendered message
func PromptKey(model string, messages []*schema.Message) string {
	parts := make([]string, 0, len(messages)*2)
	for _, m := range messages {
		parts = append(parts, string(m.Role), m.Content)
	}
	return utils.CompletionKey(model, parts...)
}
