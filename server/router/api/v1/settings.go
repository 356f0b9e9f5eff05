package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vishalnagda1/outlook-mail-responder/plugin/filter"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
	"github.com/vishalnagda1/outlook-mail-responder/store"
)

type settingsPayload struct {
	MailboxTimezone *string `json:"mailboxTimezone,omitempty"`
	SignatureName   *string `json:"signatureName,omitempty"`
	ReplyRule       *string `json:"replyRule,omitempty"`
}

// GetSettings returns the persisted instance settings. Unset values
// come back empty, not defaulted.
func (s *APIV1Service) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()

	out := map[string]string{}
	for _, key := range []store.SettingKey{
		store.SettingMailboxTimezone,
		store.SettingSignatureName,
		store.SettingReplyRule,
	} {
		value, err := s.Store.GetSettingValue(ctx, key, "")
		if err != nil {
			return internalError(c, err)
		}
		out[string(key)] = value
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateSettings upserts the provided settings. The timezone must be a
// valid IANA name and the reply rule must compile before anything is
// persisted.
func (s *APIV1Service) UpdateSettings(c echo.Context) error {
	var req settingsPayload
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed request body")
	}

	if req.MailboxTimezone != nil && *req.MailboxTimezone != "" {
		if !timezone.IsValidTimezone(*req.MailboxTimezone) {
			return errorJSON(c, http.StatusBadRequest, "INVALID_TIMEZONE", "unknown timezone: "+*req.MailboxTimezone)
		}
	}
	if req.ReplyRule != nil && *req.ReplyRule != "" {
		if _, err := filter.Compile(*req.ReplyRule); err != nil {
			return errorJSON(c, http.StatusBadRequest, "INVALID_ARGUMENT", "reply rule does not compile: "+err.Error())
		}
	}

	ctx := c.Request().Context()
	upserts := map[store.SettingKey]*string{
		store.SettingMailboxTimezone: req.MailboxTimezone,
		store.SettingSignatureName:   req.SignatureName,
		store.SettingReplyRule:       req.ReplyRule,
	}
	for key, value := range upserts {
		if value == nil {
			continue
		}
		if _, err := s.Store.UpsertSetting(ctx, &store.Setting{Name: key, Value: *value}); err != nil {
			return internalError(c, err)
		}
	}

	return s.GetSettings(c)
}
