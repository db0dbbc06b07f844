package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aegis-risk/aegis/internal/models"
	"github.com/aegis-risk/aegis/internal/risk"
)

type DecisionHandler struct {
	store *risk.Store
}

func NewDecisionHandler(store *risk.Store) *DecisionHandler {
	return &DecisionHandler{store: store}
}

type decisionView struct {
	models.RiskDecision
	ReasonSummary string `json:"reason_summary,omitempty"`
}

// Latest returns the most recent decisions across all accounts.
func (h *DecisionHandler) Latest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	decisions, err := h.store.Latest(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list decisions"})
		return
	}

	views := make([]decisionView, 0, len(decisions))
	for _, d := range decisions {
		views = append(views, toView(d))
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(views),
		"decisions": views,
	})
}

// ForAccount returns the current decision for one account.
func (h *DecisionHandler) ForAccount(c *gin.Context) {
	accountID := c.Param("id")

	decision, err := h.store.ForAccount(c.Request.Context(), accountID)
	if errors.Is(err, risk.ErrNoDecision) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No decision found for this account"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decision"})
		return
	}

	c.JSON(http.StatusOK, toView(*decision))
}

// toView attaches the flat pipe-delimited summary derived from the stored
// structured reason list.
func toView(d models.RiskDecision) decisionView {
	view := decisionView{RiskDecision: d}
	if reasons, err := risk.ParseReasons(d.Reasons); err == nil {
		view.ReasonSummary = risk.SummarizeReasons(reasons)
	}
	return view
}
