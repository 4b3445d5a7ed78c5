package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/chat"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/http/response"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/apierr"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/logger"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/sse"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/prompt"
)

// ChatService is what the chat endpoints need from chat.Service.
type ChatService interface {
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
	Stream(ctx context.Context, req chat.Request, onDelta func(string)) (chat.Reply, error)
}

type ChatHandler struct {
	log            *logger.Logger
	chat           ChatService
	includeSources bool
}

func NewChatHandler(log *logger.Logger, svc ChatService, includeSources bool) *ChatHandler {
	return &ChatHandler{log: log.With("handler", "ChatHandler"), chat: svc, includeSources: includeSources}
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	req, err := decodeChatRequest(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	reply, err := h.chat.Reply(c.Request.Context(), req)
	if err != nil {
		h.logFailure(c, err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, h.wireReply(reply))
}

// POST /api/chat/stream
//
// Errors found before the first delta are plain JSON responses with the
// matching status. Once streaming has started they arrive as an error event.
func (h *ChatHandler) Stream(c *gin.Context) {
	req, err := decodeChatRequest(c)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	started := false
	start := func() {
		if started {
			return
		}
		started = true
		hdr := c.Writer.Header()
		hdr.Set("Content-Type", "text/event-stream")
		hdr.Set("Cache-Control", "no-cache")
		hdr.Set("Connection", "keep-alive")
		hdr.Set("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)
		c.Writer.WriteHeaderNow()
	}
	send := func(event string, payload any) {
		b, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if err := sse.Write(c.Writer, event, string(b)); err != nil {
			h.log.Debug("sse write failed", "error", err)
		}
	}

	reply, err := h.chat.Stream(c.Request.Context(), req, func(delta string) {
		if delta == "" {
			return
		}
		start()
		send(api.EventDelta, api.Delta{Text: delta})
	})
	if err != nil {
		h.logFailure(c, err)
		if !started {
			response.RespondError(c, err)
			return
		}
		send(api.EventError, response.ErrorBody(apierr.As(err)))
		return
	}
	start()
	send(api.EventDone, h.wireReply(reply))
}

func (h *ChatHandler) wireReply(r chat.Reply) api.ChatReply {
	out := api.ChatReply{Reply: r.Text}
	if h.includeSources {
		out.Sources = r.Sources
	}
	return out
}

func (h *ChatHandler) logFailure(c *gin.Context, err error) {
	e := apierr.As(err)
	if e.Status < http.StatusInternalServerError {
		return
	}
	_ = c.Error(err)
	h.log.Error("chat request failed", "code", e.Code, "error", err)
}

func decodeChatRequest(c *gin.Context) (chat.Request, error) {
	var body api.ChatRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return chat.Request{}, apierr.New(http.StatusBadRequest, apierr.CodeInvalidInput, "Request body is too large.", err)
		}
		return chat.Request{}, apierr.InvalidInput("Request body must be a JSON object.")
	}
	msg, ok := body.MessageText()
	if !ok {
		return chat.Request{}, apierr.InvalidInput("Message is required and must be a string.")
	}
	history := make([]prompt.Turn, 0, len(body.History))
	for _, t := range body.History {
		history = append(history, prompt.Turn{Role: t.Role, Content: t.Text()})
	}
	return chat.Request{Message: msg, History: history}, nil
}
