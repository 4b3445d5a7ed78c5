package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"string", `{"message":"Who is the principal?"}`, "Who is the principal?", true},
		{"missing", `{}`, "", false},
		{"null", `{"message":null}`, "", false},
		{"number", `{"message":42}`, "", false},
		{"object", `{"message":{"text":"hi"}}`, "", false},
		{"blank string", `{"message":"  "}`, "  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ChatRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			got, ok := req.MessageText()
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNewChatRequestEncodesString(t *testing.T) {
	req := NewChatRequest(`say "hi"`, []HistoryTurn{{Role: "user", Content: "hello"}})
	b, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"say \"hi\"","history":[{"role":"user","content":"hello"}]}`, string(b))
}

func TestHistoryTurnText(t *testing.T) {
	require.Equal(t, "plain", HistoryTurn{Role: "user", Content: "plain"}.Text())
	require.Equal(t, "a\nb", HistoryTurn{Role: "model", Parts: []Part{{Text: "a"}, {Text: ""}, {Text: "b"}}}.Text())
	require.Equal(t, "", HistoryTurn{Role: "user"}.Text())
}
