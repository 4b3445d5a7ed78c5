package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/chat"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	dalyhttp "github.com/AKH-221/Daly-College-AI-Assistant/internal/http"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/observability"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

const redisWatchInterval = 15 * time.Second

// App is the wired gateway. Everything is built once in New and shared
// read-only by request handlers.
type App struct {
	Log       *logger.Logger
	Cfg       *config.Config
	Metrics   *observability.Metrics
	Knowledge *knowledge.Index
	Chat      *chat.Service
	Server    *dalyhttp.Server

	clients Clients
}

func New(ctx context.Context, log *logger.Logger, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.New()
	}

	log.Info("Wiring clients...")
	clients := wireClients(ctx, log, cfg)

	log.Info("Wiring services...")
	services, err := wireServices(ctx, log, cfg, clients, metrics)
	if err != nil {
		clients.Close(log)
		return nil, fmt.Errorf("wire services: %w", err)
	}

	log.Info("Wiring handlers...")
	handlers := wireHandlers(log, cfg, services)
	server := dalyhttp.NewServer(log, cfg.HTTP, wireRouter(log, cfg, metrics, handlers))

	return &App{
		Log:       log,
		Cfg:       cfg,
		Metrics:   metrics,
		Knowledge: services.Knowledge,
		Chat:      services.Chat,
		Server:    server,
		clients:   clients,
	}, nil
}

// Run serves until ctx is done or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Server.Run(gctx) })

	if a.Metrics != nil && a.Cfg.Metrics.Addr != "" {
		g.Go(func() error { return a.Metrics.Serve(gctx, a.Log, a.Cfg.Metrics.Addr) })
	}
	if a.Metrics != nil && a.clients.Redis != nil {
		g.Go(func() error {
			a.Metrics.WatchRedis(gctx, a.Log, a.clients.Redis, redisWatchInterval)
			return nil
		})
	}
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.clients.Close(a.Log)
	if a.Log != nil {
		a.Log.Sync()
	}
}
