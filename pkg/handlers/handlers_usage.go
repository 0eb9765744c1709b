package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/exam-staffing-api/pkg/database"
	apperrors "github.com/arnavshah/exam-staffing-api/pkg/errors"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKey := currentKey(c)
	if apiKey == nil {
		h.respondError(c, apperrors.ErrInternal.WithMessage("API key context missing"))
		return
	}

	var usage []database.APIUsage
	if err := h.DB.Where("key_id = ?", apiKey.ID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		h.respondError(c, apperrors.ErrInternal.Wrap(err, "could not fetch usage details"))
		return
	}

	var totalRequests, totalSessions, totalStaff int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalSessions += int64(u.TotalSessions)
		totalStaff += int64(u.TotalStaff)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"sessions": totalSessions,
			"staff":    totalStaff,
		},
	})
}

// ListRuns returns the most recent run summaries for the authenticated key
func (h *Handler) ListRuns(c *gin.Context) {
	apiKey := currentKey(c)
	if apiKey == nil {
		h.respondError(c, apperrors.ErrInternal.WithMessage("API key context missing"))
		return
	}

	var runs []database.ScheduleRun
	if err := h.DB.Where("key_id = ?", apiKey.ID).Order("created_at desc").Limit(50).Find(&runs).Error; err != nil {
		h.respondError(c, apperrors.ErrInternal.Wrap(err, "could not fetch runs"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
