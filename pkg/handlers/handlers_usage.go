package handlers

import (
	"net/http"

	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/gin-gonic/gin"
)

const usageHistoryDays = 30

// GetMyUsage reports the calling key's recent usage and remaining quota for today
func (h *Handler) GetMyUsage(c *gin.Context) {
	raw, ok := c.Get("apiKey")
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := raw.(*database.APIKey)

	history, err := database.UsageHistory(h.DB, apiKey.ID, usageHistoryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	resp := gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": history,
		"totals":        database.SumUsage(history),
	}
	if used, err := database.RequestsOn(h.DB, apiKey.ID, h.now()); err == nil && apiKey.RateLimit > 0 {
		resp["remaining_today"] = max(apiKey.RateLimit-used, 0)
	}
	c.JSON(http.StatusOK, resp)
}
