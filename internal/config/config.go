package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr" yaml:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout" yaml:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes" yaml:"max_request_bytes"`

	// AllowedOrigins is the browser CORS allow-list. "*" allows every origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
}

type EngineConfig struct {
	// Type is one of "gemini", "oai_http" or "mock".
	Type  string `json:"type" yaml:"type"`
	Model string `json:"model" yaml:"model"`

	// APIKey is the provider credential. It is never logged or returned to callers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL is the upstream base URL (for "oai_http" engines).
	BaseURL             string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path,omitempty"`

	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Default upstream timeouts. Streaming requests rely on client cancellation
	// unless StreamTimeout is set.
	Timeout       Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	StreamTimeout Duration `json:"stream_timeout,omitempty" yaml:"stream_timeout,omitempty"`
}

type KnowledgeConfig struct {
	// Path is a local file or a gs://bucket/object URI.
	Path     string `json:"path" yaml:"path"`
	MaxDepth int    `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
}

type RulesConfig struct {
	Greeting   GreetingRuleConfig   `json:"greeting" yaml:"greeting"`
	OutOfScope OutOfScopeRuleConfig `json:"out_of_scope" yaml:"out_of_scope"`
	Shortcuts  []ShortcutRuleConfig `json:"shortcuts,omitempty" yaml:"shortcuts,omitempty"`
}

type GreetingRuleConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Words   []string `json:"words,omitempty" yaml:"words,omitempty"`
	Reply   string   `json:"reply,omitempty" yaml:"reply,omitempty"`
}

type OutOfScopeRuleConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	// Reply defaults to the chat fallback reply.
	Reply string `json:"reply,omitempty" yaml:"reply,omitempty"`
}

type ShortcutRuleConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Phrases []string `json:"phrases" yaml:"phrases"`
	Reply   string   `json:"reply" yaml:"reply"`
}

type ChatConfig struct {
	// PolicyPath replaces the built-in policy header when set.
	PolicyPath      string      `json:"policy_path,omitempty" yaml:"policy_path,omitempty"`
	MaxResults      int         `json:"max_results" yaml:"max_results"`
	// MaxHistoryTurns caps prior turns sent upstream; negative disables history.
	MaxHistoryTurns int         `json:"max_history_turns" yaml:"max_history_turns"`
	UpstreamTimeout Duration    `json:"upstream_timeout" yaml:"upstream_timeout"`
	FallbackReply   string      `json:"fallback_reply,omitempty" yaml:"fallback_reply,omitempty"`
	IncludeSources  bool        `json:"include_sources" yaml:"include_sources"`
	Rules           RulesConfig `json:"rules" yaml:"rules"`
}

type CacheConfig struct {
	// Backend is one of "none", "memory" or "redis".
	Backend    string   `json:"backend" yaml:"backend"`
	TTL        Duration `json:"ttl" yaml:"ttl"`
	MaxEntries int      `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	RedisAddr  string   `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Addr serves /metrics on a separate listener when set; otherwise the
	// main router exposes it.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

type Config struct {
	Env       string          `json:"env" yaml:"env"`
	HTTP      HTTPConfig      `json:"http" yaml:"http"`
	LLM       EngineConfig    `json:"llm" yaml:"llm"`
	Knowledge KnowledgeConfig `json:"knowledge" yaml:"knowledge"`
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
}
