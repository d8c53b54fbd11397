package handlers

import (
	"net/http"
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/duty"
	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ShiftStatus reports whether one shift window is running at the given instant
func (h *Handler) ShiftStatus(c *gin.Context) {
	var req models.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.RecordUsage(c, 1, 0)
	c.JSON(http.StatusOK, gin.H{
		"window":  req.Window,
		"defined": req.Window.Defined(),
		"status":  req.Window.Status(req.Now),
	})
}

// DutyBoard aggregates a day snapshot into the duty board
func (h *Handler) DutyBoard(c *gin.Context) {
	var req models.BoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondBoard(c, req.Records, req.Now)
}

// DutyBoardCSV aggregates a day snapshot uploaded as CSV
func (h *Handler) DutyBoardCSV(c *gin.Context) {
	file, _ := c.FormFile("records_file")
	if file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records_file is required"})
		return
	}
	now, err := time.Parse(time.RFC3339, c.PostForm("now"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "now must be an RFC3339 timestamp"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open records file"})
		return
	}
	defer f.Close()

	records, err := readRecordsCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondBoard(c, records, now)
}

func (h *Handler) respondBoard(c *gin.Context, records []models.AssignmentRecord, now time.Time) {
	board := duty.Aggregate(records, now)
	resp := boardResponse(board)

	h.collector().ObserveBoard(resp.OnDutyCount, resp.AbsenceCount, resp.ActiveCount)
	h.RecordUsage(c, len(records), countEmployees(records))
	log.Debug().
		Int("records", len(records)).
		Int("on_duty", resp.OnDutyCount).
		Int("active", resp.ActiveCount).
		Time("now", now).
		Msg("Duty board aggregated")

	c.JSON(http.StatusOK, resp)
}

func boardResponse(b duty.Board) models.BoardResponse {
	resp := models.BoardResponse{
		Now:              b.Now,
		Sections:         []models.BoardSection{},
		Absent:           emptyIfNil(b.Absent),
		Free:             emptyIfNil(b.Free),
		ActiveNow:        emptyIfNil(b.ActiveNow),
		OnDutyCount:      b.OnDutyCount,
		AbsenceCount:     b.AbsenceCount,
		ActiveCount:      len(b.ActiveNow),
		AbsenceBreakdown: b.AbsenceBreakdown(),
	}

	for _, s := range b.Sections() {
		section := models.BoardSection{
			Key:         s.Key.String(),
			Special:     s.Key.Special,
			ShiftName:   s.ShiftName,
			ActiveCount: s.ActiveCount,
			Records:     s.Records,
		}
		for _, r := range s.Records {
			if r.Window.Defined() {
				section.Window = r.Window.String()
				break
			}
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp
}

func emptyIfNil(records []models.AssignmentRecord) []models.AssignmentRecord {
	if records == nil {
		return []models.AssignmentRecord{}
	}
	return records
}

func countEmployees(records []models.AssignmentRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.EmployeeID] = struct{}{}
	}
	return len(seen)
}
