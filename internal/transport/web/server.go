package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lucasvnborges/turborepo-todo/internal/config"
	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	"github.com/lucasvnborges/turborepo-todo/internal/realtime"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/auth"
	cachev1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/cache"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/health"
	notifv1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/notification"
	todov1 "github.com/lucasvnborges/turborepo-todo/internal/transport/web/v1/todo"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, rep Repos, ad AuthDeps,
	todos todov1.Service, cache domain.Cache, db health.Pinger, hub *realtime.Hub) *Server {

	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	authLog := log.New(logger.Writer(), logger.Prefix()+"[auth] ", logger.Flags())
	todoLog := log.New(logger.Writer(), logger.Prefix()+"[todo] ", logger.Flags())
	cacheLog := log.New(logger.Writer(), logger.Prefix()+"[cache] ", logger.Flags())
	notifLog := log.New(logger.Writer(), logger.Prefix()+"[notification] ", logger.Flags())

	h := handlers{
		health:   &health.Handler{Log: healthLog, DB: db, Cache: cache},
		register: &auth.HandlerRegister{Log: authLog, Users: rep.Users, Hasher: ad.Hasher, Tokens: ad.Tokens},
		login:    &auth.HandlerLogin{Log: authLog, Users: rep.Users, Hasher: ad.Hasher, Tokens: ad.Tokens},
		logout:   &auth.HandlerLogout{Log: authLog, Tokens: ad.Tokens, Blacklist: ad.Blacklist},
		todos:    &todov1.Handler{Log: todoLog, Service: todos},
		cache:    &cachev1.Handler{Log: cacheLog, Cache: cache},
		notifs:   &notifv1.Handler{Log: notifLog, Repo: rep.Notifications},
	}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           newRouter(h, ad, hub, logger),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
