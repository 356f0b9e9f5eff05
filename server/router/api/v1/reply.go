package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/reply"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

type draftReplyRequest struct {
	Sender   string                      `json:"sender"`
	Subject  string                      `json:"subject"`
	Text     string                      `json:"text"`
	Busy     []availability.BusyInterval `json:"busy"`
	Timezone string                      `json:"timezone"`
	Now      string                      `json:"now,omitempty"`
}

// DraftReply composes a reply for the posted email text. Concurrent
// drafting is bounded so LLM calls cannot pile up.
func (s *APIV1Service) DraftReply(c echo.Context) error {
	var req draftReplyRequest
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

	now := time.Now()
	if req.Now != "" {
		parsed, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "now must be RFC3339")
		}
		now = parsed
	}

	ctx := c.Request().Context()
	if err := s.draftSemaphore.Acquire(ctx, 1); err != nil {
		return errorJSON(c, http.StatusServiceUnavailable, "TIMEOUT", "drafting capacity exhausted")
	}
	defer s.draftSemaphore.Release(1)

	draft, err := s.Composer.Compose(ctx, reply.Request{
		Sender:   req.Sender,
		Subject:  req.Subject,
		Body:     req.Text,
		Busy:     req.Busy,
		Timezone: tz,
		Now:      now,
	})
	if err != nil {
		var tzErr *timezone.InvalidTimezoneError
		if errors.As(err, &tzErr) {
			return errorJSON(c, http.StatusBadRequest, "INVALID_TIMEZONE", err.Error())
		}
		return internalError(c, err)
	}

	return c.JSON(http.StatusOK, draft)
}
