package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/arnavshah/dutyboard-api-go/pkg/anomaly"
	"github.com/arnavshah/dutyboard-api-go/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// TrendAnomalies flags anomalous months for each submitted metric series.
// Series are evaluated independently of each other.
func (h *Handler) TrendAnomalies(c *gin.Context) {
	var req models.TrendsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Series) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one series is required"})
		return
	}

	names := make([]string, 0, len(req.Series))
	for name := range req.Series {
		if !slices.Contains(anomaly.KnownMetrics, name) {
			log.Debug().Str("metric", name).Msg("Evaluating untracked metric")
		}
		names = append(names, name)
	}
	slices.Sort(names)

	reports := make([]anomaly.Report, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			r, err := anomaly.Analyze(name, req.Series[name])
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, anomaly.ErrSeriesLength) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	flagged := 0
	for _, r := range reports {
		h.collector().ObserveAnomalies(r.Metric, len(r.Months))
		flagged += len(r.Months)
	}
	h.RecordUsage(c, len(names)*anomaly.MonthsPerYear, 0)

	c.JSON(http.StatusOK, gin.H{
		"year":    req.Year,
		"reports": reports,
		"flagged": flagged,
	})
}
