package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/knowledge"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/apierr"
)

const LivenessText = "Daly College assistant is running."

type HealthHandler struct {
	ready     func() error
	knowledge *knowledge.Index
}

// NewHealthHandler takes the readiness probe of the chat path. A nil probe
// is always ready.
func NewHealthHandler(ready func() error, ix *knowledge.Index) *HealthHandler {
	return &HealthHandler{ready: ready, knowledge: ix}
}

// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, LivenessText)
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type knowledgeStatus struct {
	Source    string `json:"source"`
	Fragments int    `json:"fragments"`
	Available bool   `json:"available"`
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	ks := knowledgeStatus{
		Source:    h.knowledge.Source(),
		Fragments: h.knowledge.Len(),
		Available: h.knowledge.Available(),
	}
	if h.ready != nil {
		if err := h.ready(); err != nil {
			e := apierr.As(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":     e.Message,
				"code":      e.Code,
				"knowledge": ks,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "knowledge": ks})
}
