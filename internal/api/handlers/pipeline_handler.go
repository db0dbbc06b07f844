package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aegis-risk/aegis/internal/api/middleware"
	"github.com/aegis-risk/aegis/internal/pipeline"
)

type PipelineHandler struct {
	pipeline *pipeline.Pipeline
}

func NewPipelineHandler(p *pipeline.Pipeline) *PipelineHandler {
	return &PipelineHandler{pipeline: p}
}

// RunSignals triggers a signal generation pass over the full transaction
// history.
func (h *PipelineHandler) RunSignals(c *gin.Context) {
	if err := h.pipeline.RunSignalGeneration(c.Request.Context()); err != nil {
		middleware.GetRequestLogger(c).Errorf("signal generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signal generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signal generation complete"})
}

// RunDecisions triggers a decisioning pass over the current signal backlog.
func (h *PipelineHandler) RunDecisions(c *gin.Context) {
	summary, err := h.pipeline.RunDecisioning(c.Request.Context())
	if err != nil {
		middleware.GetRequestLogger(c).Errorf("decisioning failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Decisioning failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assessed":   summary.Assessed,
		"persisted":  summary.Persisted,
		"suppressed": summary.Suppressed,
		"skipped":    summary.Skipped,
	})
}
