// Package chat runs one chat turn: validate, answer from rules, retrieve,
// assemble, dispatch to the model and shape the reply.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/cache"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/observability"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/apierr"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/ctxutil"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/prompt"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/retrieval"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/rules"
)

const DefaultUpstreamTimeout = 30 * time.Second

const (
	OutcomeInvalid      = "invalid"
	OutcomeUnconfigured = "unconfigured"
	OutcomeRule         = "rule"
	OutcomeCacheHit     = "cache_hit"
	OutcomeReplied      = "replied"
	OutcomeFallback     = "fallback"
	OutcomeFailed       = "failed"
)

var ErrNotConfigured = errors.New("chat: no language model configured")

type Request struct {
	Message string
	History []prompt.Turn
}

type Reply struct {
	Text string
	// Sources are the breadcrumbs of the fragments the prompt was grounded on.
	Sources []string
	// Rule names the rule that answered, empty when the model did.
	Rule   string
	Cached bool
}

type Deps struct {
	Log       *logger.Logger
	Knowledge *knowledge.Index
	Assembler *prompt.Assembler
	Engine    engine.Engine
	// EngineErr is the reason Engine is missing. Every chat call reports it
	// as a configuration error.
	EngineErr error
	Rules     *rules.Cascade
	Cache     cache.ReplyCache
	Metrics   *observability.Metrics
}

type Options struct {
	MaxResults      int
	UpstreamTimeout time.Duration
	FallbackReply   string
	CacheTTL        time.Duration
}

type Service struct {
	log       *logger.Logger
	index     *knowledge.Index
	corpus    *retrieval.Corpus
	assembler *prompt.Assembler
	engine    engine.Engine
	engineErr error
	rules     *rules.Cascade
	cache     cache.ReplyCache
	metrics   *observability.Metrics
	opts      Options

	tracer trace.Tracer
	group  singleflight.Group
}

func New(deps Deps, opts Options) (*Service, error) {
	if deps.Assembler == nil {
		return nil, errors.New("chat: assembler is required")
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Engine == nil && deps.EngineErr == nil {
		deps.EngineErr = ErrNotConfigured
	}
	if deps.Rules == nil {
		deps.Rules = rules.NewCascade()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Nop{}
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = retrieval.DefaultMaxResults
	}
	if opts.UpstreamTimeout <= 0 {
		opts.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if strings.TrimSpace(opts.FallbackReply) == "" {
		opts.FallbackReply = prompt.RefusalLine
	}
	return &Service{
		log:       deps.Log.With("service", "ChatService"),
		index:     deps.Knowledge,
		corpus:    retrieval.NewCorpus(deps.Knowledge.Fragments()),
		assembler: deps.Assembler,
		engine:    deps.Engine,
		engineErr: deps.EngineErr,
		rules:     deps.Rules,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		opts:      opts,
		tracer:    otel.Tracer(observability.TracerName),
	}, nil
}

// Ready reports whether chat calls can reach a model.
func (s *Service) Ready() error {
	if s.engineErr != nil {
		return apierr.Configuration(s.engineErr)
	}
	return nil
}

func (s *Service) Knowledge() *knowledge.Index { return s.index }

// plan is a prepared turn. Either reply is final or req must be dispatched.
type plan struct {
	reply   *Reply
	req     engine.Request
	key     string
	sources []string
}

func (s *Service) Reply(ctx context.Context, in Request) (Reply, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Reply")
	defer span.End()

	p, err := s.prepare(ctx, span, in)
	if err != nil {
		return Reply{}, err
	}
	if p.reply != nil {
		return *p.reply, nil
	}

	// The shared call is detached from any one caller: a caller that goes
	// away stops waiting but does not cancel the call for the others.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(p.key, func() (interface{}, error) {
		return s.dispatch(shared, p.req, func(ctx context.Context) (string, error) {
			return s.engine.GenerateText(ctx, p.req)
		})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := apierr.UpstreamFailure("", ctx.Err())
		s.fail(span, err)
		return Reply{}, err
	}
	span.SetAttributes(attribute.Bool("chat.shared", res.Shared))
	if res.Err != nil {
		s.fail(span, res.Err)
		return Reply{}, res.Err
	}
	return s.finish(ctx, p, res.Val.(string)), nil
}

// Stream is Reply with incremental output. onDelta receives the text as it
// arrives; rule, cached and fallback replies arrive as a single delta.
// Whitespace before the first visible text is held back, so a blank model
// answer yields only the fallback delta.
func (s *Service) Stream(ctx context.Context, in Request, onDelta func(string)) (Reply, error) {
	ctx, span := s.tracer.Start(ctx, "chat.Stream")
	defer span.End()
	if onDelta == nil {
		onDelta = func(string) {}
	}

	p, err := s.prepare(ctx, span, in)
	if err != nil {
		return Reply{}, err
	}
	if p.reply != nil {
		onDelta(p.reply.Text)
		return *p.reply, nil
	}

	var (
		pending strings.Builder
		started bool
	)
	relay := func(delta string) {
		if !started {
			if strings.TrimSpace(delta) == "" {
				pending.WriteString(delta)
				return
			}
			started = true
			delta = pending.String() + delta
			pending.Reset()
		}
		onDelta(delta)
	}

	text, err := s.dispatch(ctx, p.req, func(ctx context.Context) (string, error) {
		return s.engine.StreamText(ctx, p.req, relay)
	})
	if err != nil {
		s.fail(span, err)
		return Reply{}, err
	}
	reply := s.finish(ctx, p, text)
	if !started {
		onDelta(reply.Text)
	}
	return reply, nil
}

func (s *Service) prepare(ctx context.Context, span trace.Span, in Request) (plan, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		s.metrics.IncChatOutcome(OutcomeInvalid)
		return plan{}, apierr.InvalidInput("Message is required and must be a non-empty string.")
	}
	if s.engineErr != nil {
		s.metrics.IncChatOutcome(OutcomeUnconfigured)
		s.log.Error("chat rejected: model not configured", "error", s.engineErr, "request_id", ctxutil.RequestID(ctx))
		return plan{}, apierr.Configuration(s.engineErr)
	}

	if name, text, ok := s.rules.Evaluate(msg); ok {
		s.metrics.IncRuleHit(name)
		s.metrics.IncChatOutcome(OutcomeRule)
		span.SetAttributes(attribute.String("chat.rule", name))
		return plan{reply: &Reply{Text: text, Rule: name}}, nil
	}

	result := s.corpus.Retrieve(msg, s.opts.MaxResults)
	s.metrics.ObserveRetrieval(result.Len())
	span.SetAttributes(attribute.Int("retrieval.matches", result.Len()))

	req := s.assembler.Assemble(result, in.History, msg)
	p := plan{
		req:     req,
		key:     cache.Key(s.engine.Name(), req),
		sources: result.Breadcrumbs(),
	}

	cached, hit, err := s.cache.Get(ctx, p.key)
	switch {
	case err != nil:
		s.metrics.IncCacheLookup("error")
		s.log.Warn("reply cache lookup failed", "error", err)
	case hit:
		s.metrics.IncCacheLookup("hit")
		s.metrics.IncChatOutcome(OutcomeCacheHit)
		span.SetAttributes(attribute.Bool("chat.cached", true))
		return plan{reply: &Reply{Text: cached, Sources: p.sources, Cached: true}}, nil
	default:
		s.metrics.IncCacheLookup("miss")
	}
	return p, nil
}

// dispatch runs call under the upstream timeout and maps failures to a
// caller-safe error. The cause is only logged.
func (s *Service) dispatch(ctx context.Context, req engine.Request, call func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	text, err := call(ctx)
	dur := time.Since(start)
	if err != nil {
		status := "error"
		details := ""
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
			details = "The language model did not answer in time."
		}
		s.metrics.ObserveLLMRequest(s.engine.Name(), status, dur)
		s.metrics.IncChatOutcome(OutcomeFailed)
		s.log.Error("model call failed",
			"error", err,
			"engine", s.engine.Name(),
			"duration_ms", dur.Milliseconds(),
			"messages", len(req.Messages),
			"request_id", ctxutil.RequestID(ctx),
		)
		return "", apierr.UpstreamFailure(details, err)
	}
	s.metrics.ObserveLLMRequest(s.engine.Name(), "ok", dur)
	return text, nil
}

func (s *Service) finish(ctx context.Context, p plan, text string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		s.metrics.IncChatOutcome(OutcomeFallback)
		s.log.Warn("model returned empty text, using fallback reply", "engine", s.engine.Name())
		return Reply{Text: s.opts.FallbackReply, Sources: p.sources}
	}
	s.metrics.IncChatOutcome(OutcomeReplied)
	if err := s.cache.Set(ctx, p.key, text, s.opts.CacheTTL); err != nil {
		s.log.Warn("reply cache store failed", "error", err)
	}
	return Reply{Text: text, Sources: p.sources}
}

func (s *Service) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apierr.As(err).Code)
}
