package web

import (
	"log"
	"net/http"

	_ "github.com/lucasvnborges/turborepo-todo/internal/docs"
	"github.com/lucasvnborges/turborepo-todo/internal/realtime"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/mw"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/auth"
	cachev1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/cache"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/health"
	notifv1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/notification"
	todov1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/todo"
	httpSwagger "github.com/swaggo/http-swagger"
)

type handlers struct {
	health   *health.Handler
	register *auth.HandlerRegister
	login    *auth.HandlerLogin
	logout   *auth.HandlerLogout
	todos    *todov1.Handler
	cache    *cachev1.Handler
	notifs   *notifv1.Handler
}

func newRouter(h handlers, ad AuthDeps, hub *realtime.Hub, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/healthz", h.health.Liveness)
	mux.HandleFunc("GET /api/readyz", h.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/auth/register", limitBody(1<<20, h.register.Register))
	mux.HandleFunc("POST /api/auth/login", limitBody(1<<20, h.login.Login))
	mux.HandleFunc("POST /api/auth/logout", h.logout.Logout)

	// задачи и служебные ручки кеша (всё за авторизацией)
	deps := mw.AuthDeps{Tokens: ad.Tokens, Blacklist: ad.Blacklist}
	protect := func(hf http.HandlerFunc) http.Handler {
		return mw.RequireAuth(deps, hf)
	}

	// статические сегменты cache/* регистрируем раньше "{id}":
	// мультиплексор Go и так предпочтёт более конкретный шаблон,
	// но так маршруты читаются по порядку.
	mux.Handle("GET /api/todos/cache/stats", protect(h.cache.Stats))
	mux.Handle("GET /api/todos/cache/status", protect(h.cache.Status))
	mux.Handle("DELETE /api/todos/cache/clear", protect(h.cache.Clear))

	mux.Handle("GET /api/todos", protect(h.todos.List))
	mux.Handle("POST /api/todos", protect(limitBody(1<<20, h.todos.Create)))
	mux.Handle("GET /api/todos/{id}", protect(h.todos.GetOne))
	mux.Handle("PATCH /api/todos/{id}", protect(limitBody(1<<20, h.todos.Update)))
	mux.Handle("DELETE /api/todos/{id}", protect(h.todos.Delete))

	// уведомления
	mux.Handle("GET /api/notifications", protect(h.notifs.List))
	mux.Handle("PATCH /api/notifications/{id}/read", protect(h.notifs.MarkRead))

	// websocket: токен проверяется внутри рукопожатия, не в middleware
	mux.HandleFunc("GET /ws", hub.HandleWS)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
