// Package api holds the JSON shapes exchanged between the chat gateway and
// its clients.
package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Server-sent event names on /api/chat/stream.
const (
	EventDelta = "delta"
	EventDone  = "done"
	EventError = "error"
)

// ChatRequest is the body of POST /api/chat. Message stays raw so a
// non-string value can be told apart from a missing one.
type ChatRequest struct {
	Message json.RawMessage `json:"message"`
	History []HistoryTurn   `json:"history,omitempty"`
}

func NewChatRequest(message string, history []HistoryTurn) ChatRequest {
	raw, _ := json.Marshal(message)
	return ChatRequest{Message: raw, History: history}
}

// MessageText returns the message when it is a JSON string.
func (r ChatRequest) MessageText() (string, bool) {
	raw := bytes.TrimSpace(r.Message)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// HistoryTurn accepts both {role, content} and the {role, parts: [{text}]}
// shape some browser clients keep their transcript in.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

type Part struct {
	Text string `json:"text"`
}

func (t HistoryTurn) Text() string {
	if strings.TrimSpace(t.Content) != "" || len(t.Parts) == 0 {
		return t.Content
	}
	texts := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

type ChatReply struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// Delta is the payload of a delta event.
type Delta struct {
	Text string `json:"text"`
}
