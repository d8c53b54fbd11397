package handlers

import (
	"net/http"

	"github.com/arnavshah/dutyboard-api-go/pkg/fairness"
	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// Fairness scores how evenly shifts are spread. Callers send either
// precomputed totals or the period's records (plus roster and holidays) to tally.
func (h *Handler) Fairness(c *gin.Context) {
	var req models.FairnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	totals := req.Totals
	if len(totals) == 0 && (len(req.Records) > 0 || len(req.Roster) > 0) {
		holidays, err := fairness.NewHolidaySet(req.Holidays)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		totals = fairness.Tally(req.Records, req.Roster, holidays)
	}
	if totals == nil {
		totals = []models.EmployeeShiftTotals{}
	}

	m := fairness.Score(totals, req.Group)
	h.collector().ObserveFairness(req.Group, m.Overall)
	h.RecordUsage(c, len(req.Records)+len(req.Totals), m.Employees)

	c.JSON(http.StatusOK, models.FairnessResponse{
		Metrics: m,
		Rating:  fairness.Rating(m.Overall),
		Totals:  totals,
	})
}
