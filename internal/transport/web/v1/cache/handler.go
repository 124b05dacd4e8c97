// Package cache — служебные ручки кеша списков задач:
// статистика попаданий, состояние кеша пользователя и ручной сброс.
package cache

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/logx"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	v1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1"
)

type Handler struct {
	Log   *log.Logger
	Cache domain.Cache
}

type statusResponse struct {
	CacheKey         string `json:"cacheKey"`
	HasCachedData    bool   `json:"hasCachedData"`
	CachedItemsCount int    `json:"cachedItemsCount"`
	Timestamp        string `json:"timestamp"`
}

type clearResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Stats godoc
// @Summary     Cache statistics
// @Description Счётчики hit/miss/error с момента старта процесса.
// @Tags        cache
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=domain.CacheStats}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/todos/cache/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKData(w, r, h.Cache.Stats())
}

// Status godoc
// @Summary     Cache status for current user
// @Description Есть ли закешированный список и сколько в нём элементов.
// @Tags        cache
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=statusResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/todos/cache/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	const op = "cache.status"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	key := domain.CacheKeyUserTodos(me.ID)
	resp := statusResponse{
		CacheKey:  key,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if raw, ok := h.Cache.Get(r.Context(), key); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			logx.Error(h.Log, reqID, op, "corrupt cache entry", err, "key", key)
		} else {
			resp.HasCachedData = true
			resp.CachedItemsCount = len(items)
		}
	}

	v1.WriteOKData(w, r, resp)
}

// Clear godoc
// @Summary     Drop cached list for current user
// @Description Следующий запрос списка пойдёт в базу и перезаполнит кеш.
// @Tags        cache
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{response=clearResponse}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/todos/cache/clear [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	const op = "cache.clear"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := mw.UserFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	key := domain.CacheKeyUserTodos(me.ID)
	h.Cache.Del(r.Context(), key)

	logx.Info(h.Log, reqID, op, "cache dropped", "key", key)
	v1.WriteOKResponse(w, r, clearResponse{
		Message:   "cache cleared",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
