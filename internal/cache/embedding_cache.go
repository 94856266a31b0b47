package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"knowledge-search/internal/contextutil"
	"knowledge-search/internal/llm"
)

// Verify interface compliance
var _ llm.Embedder = (*EmbeddingCache)(nil)

const embeddingPrefix = "embedding:"

// EmbeddingCache decorates an Embedder with a Redis read-through cache.
// Entries are keyed by model name and the SHA256 of the text, and expire after the TTL.
// Redis failures are logged and fall through to the wrapped Embedder.
type EmbeddingCache struct {
	client *redis.Client
	next   llm.Embedder
	model  string
	ttl    time.Duration
}

// NewEmbeddingCache creates a new Redis-backed embedding cache.
func NewEmbeddingCache(client *redis.Client, next llm.Embedder, model string, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{
		client: client,
		next:   next,
		model:  model,
		ttl:    ttl,
	}
}

// Embed returns the cached vector for text, or embeds and caches it.
func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)
	key := c.key(text)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(data, &vec); jsonErr == nil {
			return vec, nil
		}
		logger.WarnContext(ctx, "discarding corrupt cached embedding", "key", key)
	case !errors.Is(err, redis.Nil):
		logger.WarnContext(ctx, "embedding cache read failed", "error", err)
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(vec)
	if err != nil {
		return vec, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.WarnContext(ctx, "embedding cache write failed", "error", err)
	}
	return vec, nil
}

// Ping checks if the Redis backend is healthy.
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingPrefix + c.model + ":" + hex.EncodeToString(sum[:])
}
