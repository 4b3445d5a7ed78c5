package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/config"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/engine"
)

func TestToContentsMapsRoles(t *testing.T) {
	contents := toContents([]engine.Message{
		{Role: engine.RoleUser, Content: "Who is the principal?"},
		{Role: engine.RoleAssistant, Content: "Dr. Gunmeet Bindra."},
		{Role: engine.RoleUser, Content: "   "},
		{Role: engine.RoleUser, Content: "And the motto?"},
	})
	require.Len(t, contents, 3)
	require.Equal(t, "user", contents[0].Role)
	require.Equal(t, "model", contents[1].Role)
	require.Equal(t, "And the motto?", contents[2].Parts[0].Text)
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), config.EngineConfig{Type: "gemini"})
	require.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestGenerateTextAgainstLocalServer(t *testing.T) {
	var (
		body   map[string]any
		path   string
		apiKey string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Dr. Gunmeet Bindra is the principal."}]}}]}`))
	}))
	defer srv.Close()

	e, err := NewWithHTTPClient(context.Background(), config.EngineConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	require.Equal(t, "gemini:gemini-2.0-flash", e.Name())

	out, err := e.GenerateText(context.Background(), engine.Request{
		System:   "You are the Daly College assistant.",
		Messages: []engine.Message{{Role: engine.RoleUser, Content: "Who is the principal?"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Dr. Gunmeet Bindra is the principal.", out)
	require.True(t, strings.HasSuffix(path, "/models/gemini-2.0-flash:generateContent"), path)
	require.Equal(t, "test-key", apiKey)

	require.Contains(t, body, "systemInstruction")
	contents, _ := body["contents"].([]any)
	require.Len(t, contents, 1)
}

func newStreamServer(t *testing.T, lines ...string) (*Engine, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, line := range lines {
			_, _ = w.Write([]byte("data: " + line + "\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)

	e, err := NewWithHTTPClient(context.Background(), config.EngineConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	return e, &path
}

func chunk(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

var principalQuestion = engine.Request{
	System:   "You are the Daly College assistant.",
	Messages: []engine.Message{{Role: engine.RoleUser, Content: "Who is the principal?"}},
}

func TestStreamTextAgainstLocalServer(t *testing.T) {
	e, path := newStreamServer(t,
		chunk("Dr. Gunmeet Bindra "),
		chunk("is the "),
		chunk("principal."),
	)

	var deltas []string
	full, err := e.StreamText(context.Background(), principalQuestion, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Dr. Gunmeet Bindra ", "is the ", "principal."}, deltas)
	require.Equal(t, "Dr. Gunmeet Bindra is the principal.", full)
	require.True(t, strings.HasSuffix(*path, "/models/gemini-2.0-flash:streamGenerateContent"), *path)
}

func TestStreamTextReturnsMidStreamError(t *testing.T) {
	e, _ := newStreamServer(t,
		chunk("Dr. Gunmeet "),
		`{"candidates": [`,
		chunk("never delivered"),
	)

	var deltas []string
	full, err := e.StreamText(context.Background(), principalQuestion, func(d string) {
		deltas = append(deltas, d)
	})
	require.Error(t, err)
	require.Empty(t, full)
	require.Equal(t, []string{"Dr. Gunmeet "}, deltas)
}
