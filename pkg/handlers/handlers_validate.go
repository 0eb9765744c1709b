package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/exam-staffing-api/pkg/ingest"
	"github.com/arnavshah/exam-staffing-api/pkg/models"
)

// ValidateInput checks a JSON schedule request without running it
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	problems := ingest.Validate(input)
	for i, s := range input.Sessions {
		if s.Date.IsZero() {
			problems = append(problems, fmt.Sprintf("sessions[%d]: date is required", i))
		}
	}
	if len(problems) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid":  false,
			"error":  problems[0],
			"errors": problems,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"session_count": len(input.Sessions),
			"staff_count":   len(input.Staff),
		},
	})
}
