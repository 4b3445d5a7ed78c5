package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
)

func TestKeyDependsOnWholePayload(t *testing.T) {
	base := engine.Request{
		Model:    "m",
		System:   "policy",
		Messages: []engine.Message{{Role: engine.RoleUser, Content: "Who is the principal?"}},
	}
	k := Key("gemini", base)
	require.Equal(t, k, Key("gemini", base))

	other := base
	other.Messages = []engine.Message{{Role: engine.RoleUser, Content: "Who is the bursar?"}}
	require.NotEqual(t, k, Key("gemini", other))

	other = base
	other.System = "policy v2"
	require.NotEqual(t, k, Key("gemini", other))

	require.NotEqual(t, k, Key("oai_http", base))
}

func TestKeySeparatesTurnBoundaries(t *testing.T) {
	oneTurn := engine.Request{
		System: "policy",
		Messages: []engine.Message{
			{Role: engine.RoleUser, Content: "hello\n\n[assistant]\nhi"},
		},
	}
	twoTurns := engine.Request{
		System: "policy",
		Messages: []engine.Message{
			{Role: engine.RoleUser, Content: "hello"},
			{Role: engine.RoleAssistant, Content: "hi"},
		},
	}
	require.Equal(t, oneTurn.Render(), twoTurns.Render())
	require.NotEqual(t, Key("gemini", oneTurn), Key("gemini", twoTurns))
}

func TestMemoryExpiresAndEvicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, 50*time.Millisecond)

	require.NoError(t, m.Set(ctx, "a", "1", 0))
	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "1", v)

	require.Eventually(t, func() bool {
		_, ok, _ := m.Get(ctx, "a")
		return !ok
	}, 2*time.Second, 10*time.Millisecond, "expired")

	m = NewMemory(2, 0)
	require.NoError(t, m.Set(ctx, "a", "1", 0))
	require.NoError(t, m.Set(ctx, "b", "2", 0))
	_, _, _ = m.Get(ctx, "a")
	require.NoError(t, m.Set(ctx, "c", "3", 0))

	_, ok, _ = m.Get(ctx, "b")
	require.False(t, ok, "least recently used entry evicted")
	_, ok, _ = m.Get(ctx, "a")
	require.True(t, ok)
	require.Equal(t, 2, m.Len())
}

func TestNop(t *testing.T) {
	var c ReplyCache = Nop{}
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
}

type fakeRedis struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.getErr != nil {
		return goredis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	f.data[key] = value.(string)
	f.ttl = expiration
	return goredis.NewStatusResult("OK", nil)
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string]string{}}
	r := NewRedis(fake)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "redis.Nil is a miss")

	require.NoError(t, r.Set(ctx, "k", "reply", time.Minute))
	require.Equal(t, time.Minute, fake.ttl)
	v, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "reply", v)

	fake.getErr = errors.New("connection refused")
	_, _, err = r.Get(ctx, "k")
	require.Error(t, err)
}
