package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/cache"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/chat"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/clients/gcs"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine/gemini"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine/mock"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine/oaihttp"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/observability"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/prompt"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/rules"
)

type Services struct {
	Knowledge *knowledge.Index
	Chat      *chat.Service
}

func wireServices(ctx context.Context, log *logger.Logger, cfg *config.Config, clients Clients, metrics *observability.Metrics) (Services, error) {
	ix := LoadKnowledge(ctx, log, cfg.Knowledge, clients.Storage)
	metrics.SetKnowledge(ix.Source(), ix.Len(), ix.Available())

	policy := prompt.DefaultPolicy
	if p := strings.TrimSpace(cfg.Chat.PolicyPath); p != "" {
		loaded, err := prompt.LoadPolicy(p)
		if err != nil {
			return Services{}, err
		}
		policy = loaded
		log.Info("policy header loaded", "path", p)
	}
	asm, err := prompt.NewAssembler(policy, prompt.Options{
		MaxHistoryTurns: cfg.Chat.MaxHistoryTurns,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
	})
	if err != nil {
		return Services{}, err
	}

	eng, engErr := NewEngine(ctx, cfg.LLM)
	if engErr != nil {
		log.Error("language model not configured; chat requests will fail until it is",
			"engine", cfg.LLM.Type,
			"error", engErr,
		)
	} else {
		log.Info("language model configured", "engine", eng.Name())
	}

	fallback := strings.TrimSpace(cfg.Chat.FallbackReply)
	if fallback == "" {
		fallback = prompt.RefusalLine
	}

	svc, err := chat.New(chat.Deps{
		Log:       log,
		Knowledge: ix,
		Assembler: asm,
		Engine:    eng,
		EngineErr: engErr,
		Rules:     rules.FromConfig(cfg.Chat.Rules, fallback),
		Cache:     wireCache(log, cfg.Cache, clients),
		Metrics:   metrics,
	}, chat.Options{
		MaxResults:      cfg.Chat.MaxResults,
		UpstreamTimeout: cfg.Chat.UpstreamTimeout.Duration,
		FallbackReply:   fallback,
		CacheTTL:        cfg.Cache.TTL.Duration,
	})
	if err != nil {
		return Services{}, err
	}
	return Services{Knowledge: ix, Chat: svc}, nil
}

// NewEngine builds the configured model client. A missing credential is
// returned as an error, not a panic, so the server can still start.
func NewEngine(ctx context.Context, cfg config.EngineConfig) (engine.Engine, error) {
	switch cfg.Type {
	case config.EngineMock:
		return mock.New(), nil
	case config.EngineOAIHTTP:
		e, err := oaihttp.New(cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	case config.EngineGemini, "":
		e, err := gemini.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown llm engine %q", cfg.Type)
	}
}

// LoadKnowledge reads the document from a local path or a gs:// URI.
func LoadKnowledge(ctx context.Context, log *logger.Logger, cfg config.KnowledgeConfig, storage gcs.Reader) *knowledge.Index {
	var src knowledge.Source
	if bucket, object, ok := gcs.ParseURI(cfg.Path); ok {
		src = knowledge.ObjectSource{Reader: storage, Bucket: bucket, Object: object}
	} else if strings.TrimSpace(cfg.Path) != "" {
		src = knowledge.FileSource{Path: cfg.Path}
	}
	return knowledge.Load(ctx, log, src, knowledge.FlattenOptions{MaxDepth: cfg.MaxDepth})
}

func wireCache(log *logger.Logger, cfg config.CacheConfig, clients Clients) cache.ReplyCache {
	switch cfg.Backend {
	case config.CacheMemory:
		log.Info("reply cache enabled", "backend", "memory", "max_entries", cfg.MaxEntries, "ttl", cfg.TTL.Duration.String())
		return cache.NewMemory(cfg.MaxEntries, cfg.TTL.Duration)
	case config.CacheRedis:
		if clients.Redis == nil {
			return cache.Nop{}
		}
		log.Info("reply cache enabled", "backend", "redis", "ttl", cfg.TTL.Duration.String())
		return cache.NewRedis(clients.Redis)
	default:
		return cache.Nop{}
	}
}
