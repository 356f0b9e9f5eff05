package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/temporal"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

type resolveAvailabilityRequest struct {
	Text     string                      `json:"text"`
	Busy     []availability.BusyInterval `json:"busy"`
	Timezone string                      `json:"timezone"`
	// Now pins the clock for the resolution; empty means the server
	// clock. RFC3339.
	Now string `json:"now,omitempty"`
}

type resolveAvailabilityResponse struct {
	Timezone   string                `json:"timezone"`
	Extraction temporal.Extraction   `json:"extraction"`
	SlotMap    *availability.SlotMap `json:"slotMap"`
}

// ResolveAvailability runs extraction and slot resolution over the
// posted text without touching any mail or calendar source.
func (s *APIV1Service) ResolveAvailability(c echo.Context) error {
	var req resolveAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
	}
	if req.Text == "" {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "text is required")
	}

	tz := req.Timezone
	if tz == "" {
		tz = s.Profile.DefaultTimezone
	}
	loc, err := timezone.LoadLocation(tz)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_TIMEZONE", err.Error())
	}

	now := time.Now()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "now must be RFC3339")
		}
		now = parsed
	}

	extractor := temporal.NewExtractor().WithNow(func() time.Time { return now })
	extraction := extractor.Extract(req.Text)

	candidates := availability.Candidates(extraction, now, loc)
	window := availability.WindowFrom(extraction)
	slotMap, err := availability.Resolve(req.Busy, candidates, window, extraction.DurationMinutes, tz)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, resolveAvailabilityResponse{
		Timezone:   tz,
		Extraction: extraction,
		SlotMap:    slotMap,
	})
}
