package server

import (
	"net/http"
	"strconv"
	"strings"

	"sleep-observer/src/helpers"
	"sleep-observer/src/models"
	"sleep-observer/src/storage"

	"github.com/gin-gonic/gin"
)

const defaultHistoryCount = 60

// -----------------------------------------------------------------------------
// Environment
// -----------------------------------------------------------------------------

func (s *DashboardServer) getEnvironment(c *gin.Context) {
	c.JSON(http.StatusOK, s.currentMessage("snapshot"))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHistory(c *gin.Context) {
	n, err := parseCount(c.Query("n"), defaultHistoryCount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": s.opts.History.GetLatest(n)})
}

// -----------------------------------------------------------------------------
// Charts
// -----------------------------------------------------------------------------

func (s *DashboardServer) bindReport(c *gin.Context) (*models.MSleepReport, bool) {
	var report models.MSleepReport
	if err := c.ShouldBindJSON(&report); err != nil {
		writeError(c, helpers.NewValidationError("report body is not valid JSON: "+err.Error()))
		return nil, false
	}
	return &report, true
}

func (s *DashboardServer) postHeartRate(c *gin.Context) {
	if report, ok := s.bindReport(c); ok {
		c.JSON(http.StatusOK, s.opts.Charts.HeartRateChart(report))
	}
}

func (s *DashboardServer) postRespiration(c *gin.Context) {
	if report, ok := s.bindReport(c); ok {
		c.JSON(http.StatusOK, s.opts.Charts.RespirationChart(report.Breathing))
	}
}

func (s *DashboardServer) postToss(c *gin.Context) {
	if report, ok := s.bindReport(c); ok {
		c.JSON(http.StatusOK, s.opts.Charts.TossTrack(report))
	}
}

func (s *DashboardServer) postStages(c *gin.Context) {
	if report, ok := s.bindReport(c); ok {
		c.JSON(http.StatusOK, s.opts.Charts.StageTimeline(report))
	}
}

func (s *DashboardServer) postAllCharts(c *gin.Context) {
	if report, ok := s.bindReport(c); ok {
		c.JSON(http.StatusOK, s.opts.Charts.AllCharts(report))
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getReportCharts(c *gin.Context) {
	if s.opts.Reports == nil {
		writeError(c, helpers.NewConfigurationError("report fetching is not configured", nil))
		return
	}
	report, err := s.opts.Reports.FetchSleepReport(c.Request.Context(), c.Param("date"))
	if err != nil {
		s.Logger.Warning("Report %s unavailable: %v", c.Param("date"), err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.opts.Charts.AllCharts(report))
}

// -----------------------------------------------------------------------------
// Preferences
// -----------------------------------------------------------------------------

type preferenceBody struct {
	Value string `json:"value"`
}

func (s *DashboardServer) getPreference(c *gin.Context) {
	if s.opts.Preferences == nil {
		writeError(c, helpers.NewConfigurationError("preference store is not configured", nil))
		return
	}
	key := c.Param("key")
	value, ok, err := s.opts.Preferences.GetPreference(key)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not set", "key": key})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) putPreference(c *gin.Context) {
	if s.opts.Preferences == nil {
		writeError(c, helpers.NewConfigurationError("preference store is not configured", nil))
		return
	}
	key := c.Param("key")
	var body preferenceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, helpers.NewValidationError("body must be {\"value\": \"...\"}"))
		return
	}
	value := strings.TrimSpace(body.Value)
	if key == storage.PreferenceFeedURL && !isWebsocketURL(value) {
		writeError(c, helpers.NewValidationError("feed_url must use ws:// or wss://"))
		return
	}
	if err := s.opts.Preferences.SetPreference(key, value); err != nil {
		writeError(c, err)
		return
	}
	// Takes effect on the next start; the running feed keeps its endpoint.
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) deletePreference(c *gin.Context) {
	if s.opts.Preferences == nil {
		writeError(c, helpers.NewConfigurationError("preference store is not configured", nil))
		return
	}
	if err := s.opts.Preferences.DeletePreference(c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------

func parseCount(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, helpers.NewValidationError("n must be a non-negative integer")
	}
	return n, nil
}

func isWebsocketURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://")
}
