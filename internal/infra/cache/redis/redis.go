package redisx

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
)

// Кеш — чистая оптимизация чтения: любая ошибка транспорта учитывается
// в счётчиках и гасится на месте (Get → промах, Set/Del → no-op).
// Корректность списка задач от кеша не зависит.
type Cache struct {
	rdb    *redis.Client
	logger *log.Logger

	// короткий таймаут на операцию, чтобы деградировать в промах,
	// а не блокировать мутацию
	opTimeout time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	errors atomic.Int64
}

type Config struct {
	Addr     string
	DB       int
	Password string
}

const defaultOpTimeout = 2 * time.Second

var _ domain.Cache = (*Cache)(nil)

func New(cfg Config, logger *log.Logger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Cache{rdb: rdb, logger: logger, opTimeout: defaultOpTimeout}
}

func (c *Cache) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.opTimeout)
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Printf("PING failed: %v", err)
	} else {
		c.logger.Println("PING ok")
	}
	return err
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Println("nothing to close")
		return
	}

	s := c.Stats()
	c.logger.Printf("final stats: hits=%d misses=%d errors=%d hit_rate=%s",
		s.Hits, s.Misses, s.Errors, s.HitRate)

	if err := c.rdb.Close(); err != nil {
		c.logger.Printf("error while closing: %v", err)
		return
	}

	c.logger.Println("closed")
}

// Get классифицирует каждый вызов ровно один раз: значение есть — hit,
// ключа нет — miss, ошибка транспорта — error (и наружу это промах).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.misses.Add(1)
		c.logger.Printf("GET %q: miss", key)
		return nil, false
	}
	if err != nil {
		c.errors.Add(1)
		c.logger.Printf("GET %q: error: %v", key, err)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Printf("GET %q: hit (%d bytes)", key, len(b))
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		c.errors.Add(1)
		c.logger.Printf("SET %q failed: %v", key, err)
		return
	}
	c.logger.Printf("SET %q ok (ttl=%s)", key, ttl)
}

func (c *Cache) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.errors.Add(1)
		c.logger.Printf("DEL %v failed: %v", keys, err)
		return
	}
	c.logger.Printf("DEL %v: deleted=%d", keys, n)
}

// DelPattern удаляет ключи по шаблону через SCAN (без блокирующего KEYS).
func (c *Cache) DelPattern(ctx context.Context, pattern string) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.rdb.Del(ctx, iter.Val()).Result()
		if err != nil {
			c.errors.Add(1)
			c.logger.Printf("DEL %q failed: %v", iter.Val(), err)
			return
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		c.errors.Add(1)
		c.logger.Printf("SCAN %q failed: %v", pattern, err)
		return
	}
	c.logger.Printf("DEL pattern %q: deleted=%d", pattern, deleted)
}

func (c *Cache) Stats() domain.CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	rate := "0.00%"
	if total > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(hits)/float64(total)*100)
	}

	return domain.CacheStats{
		Hits:    hits,
		Misses:  misses,
		Errors:  c.errors.Load(),
		HitRate: rate,
		Total:   total,
	}
}

// SetNX устанавливает значение только если ключ ещё не существует.
// Ошибка возвращается вызывающему: используется блэклистом токенов,
// где молчаливый no-op недопустим.
func (c *Cache) SetNX(ctx context.Context, key string, val []byte, ttlSeconds int) (bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		c.errors.Add(1)
		c.logger.Printf("SETNX %q failed: %v", key, err)
		return false, err
	}
	if ok {
		c.logger.Printf("SETNX %q ok (ttl=%s)", key, ttl)
	} else {
		c.logger.Printf("SETNX %q skipped (already exists)", key)
	}
	return ok, nil
}

// Exists проверяет наличие ключа.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.errors.Add(1)
		c.logger.Printf("EXISTS %q failed: %v", key, err)
		return false, err
	}
	return n == 1, nil
}
