package handlers

import (
	"net/http"

	"github.com/arnavshah/dutyboard-api-go/pkg/duty"
	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks a day snapshot for structural problems without aggregating it
func (h *Handler) ValidateInput(c *gin.Context) {
	var input struct {
		Records []models.AssignmentRecord `json:"records"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Records) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one record is required",
		})
		return
	}

	h.RecordUsage(c, len(input.Records), countEmployees(input.Records))

	problems := duty.Validate(input.Records)
	counts := map[models.AssignmentKind]int{}
	for _, r := range input.Records {
		counts[r.Kind]++
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    len(problems) == 0,
		"problems": problems,
		"stats": gin.H{
			"record_count":   len(input.Records),
			"employee_count": countEmployees(input.Records),
			"shift_count":    counts[models.KindShift],
			"absence_count":  counts[models.KindAbsence],
			"free_count":     counts[models.KindFree],
		},
	})
}
