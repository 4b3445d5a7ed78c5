package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/envutil"
)

const (
	EngineGemini  = "gemini"
	EngineOAIHTTP = "oai_http"
	EngineMock    = "mock"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	DefaultModel = "gemini-2.0-flash"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		return d.parse(u)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", value.Line)
	}
	if value.Tag == "!!int" {
		n, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}
	if value.Tag == "!!null" {
		d.Duration = 0
		return nil
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		d.Duration = 0
		return nil
	}
	dd, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	d.Duration = dd
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			AllowedOrigins:    []string{"http://localhost:5173"},
		},
		LLM: EngineConfig{
			Type:        EngineGemini,
			Model:       DefaultModel,
			Temperature: 0.2,
			Timeout:     Duration{Duration: 60 * time.Second},
		},
		Knowledge: KnowledgeConfig{
			Path:     "data/dalydata.json",
			MaxDepth: 64,
		},
		Chat: ChatConfig{
			MaxResults:      20,
			MaxHistoryTurns: 20,
			UpstreamTimeout: Duration{Duration: 30 * time.Second},
			Rules: RulesConfig{
				Greeting: GreetingRuleConfig{Enabled: true},
			},
		},
		Cache: CacheConfig{
			Backend:    CacheNone,
			TTL:        Duration{Duration: 10 * time.Minute},
			MaxEntries: 1024,
		},
	}
}

// Load builds the configuration: defaults, then the optional config file,
// then environment overrides, then validation.
func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit config file. An empty path falls back to
// DALY_CONFIG_PATH, then config/config.{yaml,yml,json} under the working dir.
func LoadPath(path string) (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(path)
	if cfgPath == "" {
		cfgPath = strings.TrimSpace(os.Getenv("DALY_CONFIG_PATH"))
	}
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
				p := filepath.Join(wd, "config", name)
				if _, err := os.Stat(p); err == nil {
					cfgPath = p
					break
				}
			}
		}
	}

	if cfgPath != "" {
		if err := LoadFile(cfgPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes path onto cfg. Fields absent from the file keep their
// current values.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(b, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := envutil.String("LOG_MODE", ""); v != "" {
		cfg.Env = v
	}
	if v := envutil.String("PORT", ""); v != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := envutil.String("DALY_HTTP_ADDR", ""); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := envutil.First("FRONTEND_ORIGIN", "FRONTEND_URL"); v != "" {
		cfg.HTTP.AllowedOrigins = mergeOrigins(cfg.HTTP.AllowedOrigins, envutil.SplitList(v))
	}

	if v := envutil.First("GEMINI_API_KEY", "LLM_API_KEY", "API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := envutil.String("LLM_ENGINE", ""); v != "" {
		cfg.LLM.Type = v
	}
	if v := envutil.String("LLM_MODEL", ""); v != "" {
		cfg.LLM.Model = v
	}
	if v := envutil.String("LLM_BASE_URL", ""); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := envutil.String("KNOWLEDGE_PATH", ""); v != "" {
		cfg.Knowledge.Path = v
	}
	if v := envutil.String("POLICY_PATH", ""); v != "" {
		cfg.Chat.PolicyPath = v
	}
	cfg.Chat.IncludeSources = envutil.Bool("CHAT_INCLUDE_SOURCES", cfg.Chat.IncludeSources)
	cfg.Chat.UpstreamTimeout.Duration = envutil.Duration("CHAT_UPSTREAM_TIMEOUT", cfg.Chat.UpstreamTimeout.Duration)

	if v := envutil.String("REDIS_ADDR", ""); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := envutil.String("CACHE_BACKEND", ""); v != "" {
		cfg.Cache.Backend = v
	}

	cfg.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", cfg.Metrics.Enabled)
	if v := envutil.String("METRICS_ADDR", ""); v != "" {
		cfg.Metrics.Addr = v
	}
}

// mergeOrigins keeps the configured list and appends env origins not already present.
func mergeOrigins(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, o := range extra {
		dup := false
		for _, b := range out {
			if strings.EqualFold(b, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, o)
		}
	}
	return out
}

// Validate normalizes cfg in place and rejects values the server cannot run with.
// A missing API key is not an error here: the chat path reports it per request.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}

	llm := &cfg.LLM
	llm.Type = strings.ToLower(strings.TrimSpace(llm.Type))
	llm.Model = strings.TrimSpace(llm.Model)
	llm.APIKey = strings.TrimSpace(llm.APIKey)
	llm.BaseURL = strings.TrimRight(strings.TrimSpace(llm.BaseURL), "/")
	switch llm.Type {
	case "", EngineGemini:
		llm.Type = EngineGemini
		if llm.Model == "" {
			llm.Model = DefaultModel
		}
	case "openai_http", EngineOAIHTTP:
		llm.Type = EngineOAIHTTP
		if llm.BaseURL == "" {
			return errors.New("llm.base_url is required for the oai_http engine")
		}
		if llm.ChatCompletionsPath == "" {
			llm.ChatCompletionsPath = "/v1/chat/completions"
		}
		if llm.Model == "" {
			return errors.New("llm.model is required for the oai_http engine")
		}
	case EngineMock:
		if llm.Model == "" {
			llm.Model = "mock-1"
		}
	default:
		return fmt.Errorf("invalid llm.type=%q", llm.Type)
	}
	if llm.Timeout.Duration <= 0 {
		llm.Timeout = Duration{Duration: 60 * time.Second}
	}
	if llm.StreamTimeout.Duration < 0 {
		return errors.New("invalid llm.stream_timeout")
	}
	if llm.Temperature < 0 || llm.Temperature > 2 {
		return fmt.Errorf("invalid llm.temperature=%v", llm.Temperature)
	}

	if cfg.Knowledge.MaxDepth <= 0 {
		cfg.Knowledge.MaxDepth = 64
	}

	chat := &cfg.Chat
	if chat.MaxResults <= 0 {
		chat.MaxResults = 20
	}
	if chat.UpstreamTimeout.Duration <= 0 {
		chat.UpstreamTimeout = Duration{Duration: 30 * time.Second}
	}
	for i, s := range chat.Rules.Shortcuts {
		if strings.TrimSpace(s.Reply) == "" || len(s.Phrases) == 0 {
			return fmt.Errorf("chat.rules.shortcuts[%d] needs phrases and a reply", i)
		}
	}

	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))
	switch cfg.Cache.Backend {
	case "", CacheNone:
		cfg.Cache.Backend = CacheNone
	case CacheMemory:
	case CacheRedis:
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			return errors.New("cache.redis_addr (or REDIS_ADDR) is required for the redis cache")
		}
	default:
		return fmt.Errorf("invalid cache.backend=%q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration <= 0 {
		cfg.Cache.TTL = Duration{Duration: 10 * time.Minute}
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = 1024
	}
	return nil
}
