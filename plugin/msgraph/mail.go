package msgraph

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/plugin/markdown"
	"github.com/vishalnagda1/outlook-mail-responder/server/runner/sweep"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/mailtext"
)

const graphTimeLayout = "2006-01-02T15:04:05Z"

type graphRecipient struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphMessage struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	BodyPreview      string         `json:"bodyPreview"`
	ReceivedDateTime string         `json:"receivedDateTime"`
	From             graphRecipient `json:"from"`
	Body             struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

// ListUnread fetches the newest unread inbox messages, bodies reduced
// to plain text.
func (c *Client) ListUnread(ctx context.Context, limit int) ([]sweep.Email, error) {
	if limit <= 0 {
		limit = 50
	}

	query := url.Values{}
	query.Set("$filter", "isRead eq false")
	query.Set("$top", strconv.Itoa(limit))
	query.Set("$select", "id,subject,body,bodyPreview,receivedDateTime,from")
	query.Set("$orderby", "receivedDateTime desc")

	var result struct {
		Value []graphMessage `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.userPath("/mailFolders/inbox/messages"), query, nil, nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list unread messages")
	}

	emails := make([]sweep.Email, 0, len(result.Value))
	for _, msg := range result.Value {
		body := msg.Body.Content
		if strings.EqualFold(msg.Body.ContentType, "html") {
			body = mailtext.HTMLToText(body)
		}
		received, _ := time.Parse(graphTimeLayout, msg.ReceivedDateTime)
		emails = append(emails, sweep.Email{
			MessageID:     msg.ID,
			Sender:        msg.From.EmailAddress.Name,
			SenderAddress: msg.From.EmailAddress.Address,
			Subject:       msg.Subject,
			Body:          body,
			Preview:       msg.BodyPreview,
			ReceivedAt:    received,
		})
	}
	return emails, nil
}

// CreateDraft creates a reply draft for a message: Graph's createReply
// builds the threaded draft, then a PATCH fills in the rendered body
// and ensures the "RE: " subject prefix.
func (c *Client) CreateDraft(ctx context.Context, messageID, body string) error {
	var draft struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
	}
	path := c.userPath("/messages/" + url.PathEscape(messageID) + "/createReply")
	if err := c.do(ctx, http.MethodPost, path, nil, nil, struct{}{}, &draft); err != nil {
		return errors.Wrap(err, "failed to create reply draft")
	}

	htmlBody, err := markdown.ToHTML(body)
	if err != nil {
		return err
	}

	patch := map[string]any{
		"body": map[string]any{
			"contentType": "HTML",
			"content":     htmlBody,
		},
	}
	if !strings.HasPrefix(strings.ToUpper(draft.Subject), "RE:") {
		patch["subject"] = "RE: " + draft.Subject
	}

	patchPath := c.userPath("/messages/" + url.PathEscape(draft.ID))
	if err := c.do(ctx, http.MethodPatch, patchPath, nil, nil, patch, nil); err != nil {
		return errors.Wrap(err, "failed to update reply draft")
	}
	return nil
}

// MarkProcessed flags a message read so the next sweep skips it.
func (c *Client) MarkProcessed(ctx context.Context, messageID string) error {
	path := c.userPath("/messages/" + url.PathEscape(messageID))
	body := map[string]any{"isRead": true}
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, body, nil); err != nil {
		return errors.Wrap(err, "failed to mark message read")
	}
	return nil
}
