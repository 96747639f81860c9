package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CarixStudio/mbeauty-admin-sub000/internal/models"
	"github.com/CarixStudio/mbeauty-admin-sub000/internal/utils"
)

const (
	ProductCacheTTL = 5 * time.Minute
	// Must outlive any read-through fill.
	generationTTL = 24 * time.Hour
)

// Generation identifies how many times an entry has been invalidated. It is
// opaque to callers; the zero value never matches.
type Generation string

// ProductCache is a read-through cache for product reads. It never holds
// the source of truth: a miss or a cache error falls back to the database.
//
// Get returns the entry's generation on a hit and on a miss. Set stores p
// only if no Invalidate ran since the Get that produced gen, so a fill that
// read the database before a write cannot put the old row back.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, Generation, bool)
	Set(ctx context.Context, p *models.Product, gen Generation)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// NewProductCache connects to redisURL, or returns a no-op cache when it is empty.
func NewProductCache(ctx context.Context, redisURL string) (ProductCache, error) {
	if redisURL == "" {
		utils.Logger.Info("REDIS_URL not set, product cache disabled")
		return NoopProductCache{}, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewRedisProductCache(client, ProductCacheTTL), nil
}

type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

// Both keys share a hash tag so MGET and the fill script stay on one slot.
func productKey(id uuid.UUID) string {
	return "product:{" + id.String() + "}"
}

func generationKey(id uuid.UUID) string {
	return productKey(id) + ":gen"
}

var setIfGeneration = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*models.Product, Generation, bool) {
	vals, err := c.client.MGet(ctx, productKey(id), generationKey(id)).Result()
	if err != nil {
		utils.Logger.WithError(err).Warn("product cache read failed")
		return nil, "", false
	}
	gen := Generation("0")
	if s, ok := vals[1].(string); ok {
		gen = Generation(s)
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, gen, false
	}
	return &p, gen, true
}

func (c *RedisProductCache) Set(ctx context.Context, p *models.Product, gen Generation) {
	if gen == "" {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	keys := []string{productKey(p.ID), generationKey(p.ID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, string(gen), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		utils.Logger.WithError(err).Warn("product cache write failed")
		return
	}
	if stored == 0 {
		utils.Logger.WithField("product_id", p.ID).Debug("product cache fill dropped, entry was invalidated")
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		pipe.Del(ctx, productKey(id))
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, uuid.UUID) (*models.Product, Generation, bool) {
	return nil, "", false
}
func (NoopProductCache) Set(context.Context, *models.Product, Generation) {}
func (NoopProductCache) Invalidate(context.Context, uuid.UUID)            {}
