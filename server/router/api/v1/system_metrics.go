package v1

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishalnagda1/outlook-mail-responder/internal/version"
	"github.com/vishalnagda1/outlook-mail-responder/server/finops"
)

var startTime = time.Now()

// SystemMetricsResponse is the runtime and LLM-spend snapshot.
type SystemMetricsResponse struct {
	Version       string              `json:"version"`
	Mode          string              `json:"mode"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Goroutines    int                 `json:"goroutines"`
	HeapAllocMB   float64             `json:"heap_alloc_mb"`
	LLMUsage      *finops.UsageReport `json:"llm_usage,omitempty"`
}

// GetSystemMetrics returns a runtime snapshot plus the LLM usage
// report for the requested period (daily by default).
// GET /api/v1/metrics/system
func (s *APIV1Service) GetSystemMetrics(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "daily"
	}
	switch period {
	case "daily", "weekly", "monthly":
	default:
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "period must be daily, weekly, or monthly")
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	resp := SystemMetricsResponse{
		Version:       version.GetCurrentVersion(s.Profile.Mode),
		Mode:          s.Profile.Mode,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(memStats.HeapAlloc) / (1 << 20),
	}
	if s.Usage != nil {
		resp.LLMUsage = s.Usage.Report(period)
	}
	return c.JSON(http.StatusOK, resp)
}
