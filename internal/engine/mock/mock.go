package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
)

// Engine echoes the last user message. Reply and Err override the output,
// and Calls records every request it was given.
type Engine struct {
	Reply string
	Err   error
	// Block makes calls wait for ctx cancellation.
	Block bool

	mu    sync.Mutex
	calls []engine.Request
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return "mock" }

func (e *Engine) GenerateText(ctx context.Context, req engine.Request) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, req)
	e.mu.Unlock()

	if e.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if e.Err != nil {
		return "", e.Err
	}
	if e.Reply != "" {
		return e.Reply, nil
	}

	user := req.LastUser()
	if strings.TrimSpace(user) == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock: %s", user), nil
}

func (e *Engine) StreamText(ctx context.Context, req engine.Request, onDelta func(delta string)) (string, error) {
	full, err := e.GenerateText(ctx, req)
	if err != nil {
		return "", err
	}
	if onDelta == nil {
		return full, nil
	}
	const chunk = 16
	for i := 0; i < len(full); i += chunk {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		end := i + chunk
		if end > len(full) {
			end = len(full)
		}
		onDelta(full[i:end])
	}
	return full, nil
}

// Calls returns a copy of the requests seen so far.
func (e *Engine) Calls() []engine.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.Request(nil), e.calls...)
}
