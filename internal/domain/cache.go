package domain

import (
	"context"
	"strconv"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
func CacheKeyUserTodos(id UserID) string { return "todos:user:" + strconv.FormatInt(id, 10) }
func CacheKeyTokenJTI(jti string) string { return "jti:" + jti }

// Шаблон для административной очистки всех списков задач.
const CachePatternAllTodos = "todos:user:*"

// Счётчики кеша за время жизни процесса; не персистятся.
// Hits/Misses инкрементируются только на Get, Errors — на любой неудачной операции.
type CacheStats struct {
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	Errors  int64  `json:"errors"`
	HitRate string `json:"hitRate"`
	Total   int64  `json:"total"`
}

// Простой k/v интерфейс, реализация — Redis. Кеш — чистая оптимизация:
// ошибки транспорта не выходят к вызывающему (Get при ошибке — промах,
// Set/Del — no-op), а только учитываются в Stats.
type Cache interface {
	// ok=false — промах (ключ отсутствует, истёк или кеш недоступен).
	Get(ctx context.Context, key string) (val []byte, ok bool)
	// ttlSeconds <= 0 — без истечения.
	Set(ctx context.Context, key string, val []byte, ttlSeconds int)
	Del(ctx context.Context, keys ...string)
	// Массовая очистка по шаблону ("todos:user:*").
	DelPattern(ctx context.Context, pattern string)
	Stats() CacheStats
	Ping(ctx context.Context) error
	Close()
}
