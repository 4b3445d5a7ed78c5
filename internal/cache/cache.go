// Package cache stores model replies keyed by the full request payload.
// It is an optimization only: a miss or a backend error means "call the model".
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
)

type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, reply string, ttl time.Duration) error
}

type keyPayload struct {
	Engine      string           `json:"engine"`
	Model       string           `json:"model"`
	System      string           `json:"system"`
	Messages    []engine.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
}

// Key hashes everything that influences the reply. Fields are JSON encoded
// so message text can never be mistaken for a turn boundary.
func Key(engineName string, req engine.Request) string {
	b, _ := json.Marshal(keyPayload{
		Engine:      engineName,
		Model:       req.Model,
		System:      req.System,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	})
	sum := sha256.Sum256(b)
	return "daly:reply:" + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }

// Memory is a bounded in-process cache; the least recently used entry is
// evicted first. Entries live for the TTL given to NewMemory; the per-call
// ttl of Set is ignored.
type Memory struct {
	lru *expirable.LRU[string, string]
}

// NewMemory keeps at most maxEntries replies (1024 when not positive) for
// ttl each. A ttl that is not positive keeps entries until evicted.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Memory{lru: expirable.NewLRU[string, string](maxEntries, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, reply string, _ time.Duration) error {
	m.lru.Add(key, reply)
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
