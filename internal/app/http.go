package app

import (
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	dalyhttp "github.com/AKH-221/Daly-College-AI-Assistant/internal/http"
	httpH "github.com/AKH-221/Daly-College-AI-Assistant/internal/http/handlers"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/observability"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Chat   *httpH.ChatHandler
}

func wireHandlers(log *logger.Logger, cfg *config.Config, services Services) Handlers {
	return Handlers{
		Health: httpH.NewHealthHandler(services.Chat.Ready, services.Knowledge),
		Chat:   httpH.NewChatHandler(log, services.Chat, cfg.Chat.IncludeSources),
	}
}

func wireRouter(log *logger.Logger, cfg *config.Config, metrics *observability.Metrics, handlers Handlers) dalyhttp.RouterConfig {
	return dalyhttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServeMetrics:    cfg.Metrics.Addr == "",
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
		ChatHandler:     handlers.Chat,
		HealthHandler:   handlers.Health,
	}
}
