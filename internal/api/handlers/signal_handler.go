package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aegis-risk/aegis/internal/signals"
)

type SignalHandler struct {
	store *signals.Store
}

func NewSignalHandler(store *signals.Store) *SignalHandler {
	return &SignalHandler{store: store}
}

// Recent returns the most recent signals, newest first.
func (h *SignalHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sigs, err := h.store.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list signals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(sigs),
		"signals": sigs,
	})
}
