package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lucasvnborges/turborepo-todo/internal/auth/blacklist"
	"github.com/lucasvnborges/turborepo-todo/internal/auth/password"
	"github.com/lucasvnborges/turborepo-todo/internal/auth/token"
	"github.com/lucasvnborges/turborepo-todo/internal/config"
	"github.com/lucasvnborges/turborepo-todo/internal/domain"
	redisx "github.com/lucasvnborges/turborepo-todo/internal/infra/cache/redis"
	"github.com/lucasvnborges/turborepo-todo/internal/infra/database/postgres"
	"github.com/lucasvnborges/turborepo-todo/internal/notification"
	"github.com/lucasvnborges/turborepo-todo/internal/realtime"
	"github.com/lucasvnborges/turborepo-todo/internal/todo"
	"github.com/lucasvnborges/turborepo-todo/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	cache  domain.Cache
	repo   *postgres.PGRepo
	hub    *realtime.Hub
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	hubLog := log.New(base.Writer(), base.Prefix()+"[realtime] ", base.Flags())
	notifyLog := log.New(base.Writer(), base.Prefix()+"[notify] ", base.Flags())
	todoLog := log.New(base.Writer(), base.Prefix()+"[todo] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(rc)

	base.Println("init realtime hub")
	hub := realtime.NewHub(hubLog, tm, realtime.NewRegistry())

	// Уведомления: персист + пуш онлайн-пользователю через хаб
	dispatcher := notification.NewDispatcher(notifyLog, pgRepo, hub)

	svc := todo.NewService(todoLog, pgRepo, rc, dispatcher, cfg.CacheTTLSeconds)

	base.Println("init Server")
	rep := web.Repos{Users: pgRepo, Notifications: pgRepo}
	auth := web.AuthDeps{Hasher: hasher, Tokens: tm, Blacklist: bl}
	server := web.New(serverLog, cfg, rep, auth, svc, rc, pgRepo, hub)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		cache:  rc,
		repo:   pgRepo,
		hub:    hub}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.hub.Close()
	a.repo.Close()
	a.cache.Close()

	return nil
}
