package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
)

// Metrics is the process-wide metric set. A nil *Metrics is valid and
// records nothing, which is how disabled metrics are represented.
type Metrics struct {
	apiRequests *family
	apiLatency  *histogram
	apiInflight *family
	apiReqError *family

	chatOutcomes     *family
	llmRequests      *family
	llmLatency       *histogram
	retrievalMatches *histogram
	ruleHits         *family
	cacheLookups     *family

	knowledgeFragments *family
	knowledgeAvailable *family

	redisUp   *family
	redisPing *family
}

func New() *Metrics {
	return &Metrics{
		apiRequests: counter("daly_api_requests_total", "Total API requests by method/route/status.", "method", "route", "status"),
		apiLatency: newHistogram(
			"daly_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: gauge("daly_api_inflight_requests", "In-flight API requests."),
		apiReqError: counter("daly_api_requests_error_total", "API requests that ended with a 5xx status."),

		chatOutcomes: counter("daly_chat_outcomes_total", "Chat requests by outcome.", "outcome"),
		llmRequests:  counter("daly_llm_requests_total", "Model calls by engine/status.", "engine", "status"),
		llmLatency: newHistogram(
			"daly_llm_request_duration_seconds",
			"Model call latency in seconds by engine/status.",
			[]string{"engine", "status"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		retrievalMatches: newHistogram(
			"daly_retrieval_matches",
			"Fragments selected per query.",
			nil,
			[]float64{0, 1, 2, 5, 10, 20},
		),
		ruleHits:     counter("daly_rule_hits_total", "Messages answered by a rule.", "rule"),
		cacheLookups: counter("daly_cache_lookups_total", "Reply cache lookups by result.", "result"),

		knowledgeFragments: gauge("daly_knowledge_fragments", "Fragments loaded from the knowledge document.", "source"),
		knowledgeAvailable: gauge("daly_knowledge_available", "1 when the knowledge document loaded."),

		redisUp:   gauge("daly_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: gauge("daly_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, log *logger.Logger, addr string) error {
	if m == nil {
		return nil
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	log.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server failed", "error", err, "addr", addr)
		return err
	}
	return nil
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqError,
		m.chatOutcomes, m.llmRequests, m.llmLatency, m.retrievalMatches, m.ruleHits, m.cacheLookups,
		m.knowledgeFragments, m.knowledgeAvailable,
		m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.observe(dur.Seconds(), method, route, status)
	if isServerErrorStatus(status) {
		m.apiReqError.add(1)
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.add(-1)
}

func (m *Metrics) IncChatOutcome(outcome string) {
	if m == nil {
		return
	}
	m.chatOutcomes.add(1, outcome)
}

func (m *Metrics) ChatOutcomes(outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.chatOutcomes.value(outcome)
}

func (m *Metrics) ObserveLLMRequest(engine, status string, dur time.Duration) {
	if m == nil {
		return
	}
	engine = strings.TrimSpace(engine)
	if engine == "" {
		engine = "unknown"
	}
	m.llmRequests.add(1, engine, status)
	if dur > 0 {
		m.llmLatency.observe(dur.Seconds(), engine, status)
	}
}

func (m *Metrics) ObserveRetrieval(matches int) {
	if m == nil {
		return
	}
	m.retrievalMatches.observe(float64(matches))
}

func (m *Metrics) IncRuleHit(rule string) {
	if m == nil {
		return
	}
	m.ruleHits.add(1, rule)
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.add(1, result)
}

func (m *Metrics) SetKnowledge(source string, fragments int, available bool) {
	if m == nil {
		return
	}
	m.knowledgeFragments.set(float64(fragments), source)
	if available {
		m.knowledgeAvailable.set(1)
	} else {
		m.knowledgeAvailable.set(0)
	}
}

// WatchRedis pings rdb every interval until ctx is done.
func (m *Metrics) WatchRedis(ctx context.Context, log *logger.Logger, rdb *goredis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := rdb.Ping(ctx).Err(); err != nil {
				m.redisUp.set(0)
				log.Warn("metrics: redis ping failed", "error", err)
				continue
			}
			m.redisUp.set(1)
			m.redisPing.set(time.Since(start).Seconds())
		}
	}
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	return status[0] == '5'
}
