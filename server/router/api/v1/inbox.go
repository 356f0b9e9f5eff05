package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/runner/sweep"
	"github.com/vishalnagda1/outlook-mail-responder/store"
)

// TriggerSweep runs one inbox sweep on demand. A sweep already in
// flight answers 409.
func (s *APIV1Service) TriggerSweep(c echo.Context) error {
	if s.Sweep == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "MAIL_SOURCE_UNAVAILABLE", "no mail source configured")
	}

	report, err := s.Sweep.RunOnce(c.Request().Context())
	if err != nil {
		if errors.Is(err, sweep.ErrSweepInProgress) {
			return errorJSON(c, http.StatusConflict, "INVALID_ARGUMENT", err.Error())
		}
		return internalError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

type inboxLogsResponse struct {
	Logs []*store.EmailLog `json:"logs"`
}

// ListInboxLogs returns the email log, newest first.
func (s *APIV1Service) ListInboxLogs(c echo.Context) error {
	find := &store.FindEmailLog{}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "limit must be between 1 and 500")
		}
		limit = parsed
	}
	find.Limit = &limit

	if raw := c.QueryParam("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "offset must be non-negative")
		}
		find.Offset = &parsed
	}

	if raw := c.QueryParam("status"); raw != "" {
		status := store.EmailLogStatus(raw)
		switch status {
		case store.EmailLogStatusDrafted, store.EmailLogStatusSkipped, store.EmailLogStatusFailed:
			find.Status = &status
		default:
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown status")
		}
	}

	logs, err := s.Store.ListEmailLogs(c.Request().Context(), find)
	if err != nil {
		return internalError(c, err)
	}
	if logs == nil {
		logs = []*store.EmailLog{}
	}
	return c.JSON(http.StatusOK, inboxLogsResponse{Logs: logs})
}
