// Package sweep periodically walks the inbox and drafts replies for
// unread emails that pass the reply rule.
package sweep

import (
	"context"
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// Email is one inbound message as the sweep consumes it: body already
// reduced to plain text by the source.
type Email struct {
	// MessageID is the source-scoped message identifier, used for
	// dedup against the email log.
	MessageID string
	// Sender is the display name; SenderAddress the email address.
	Sender        string
	SenderAddress string
	Subject       string
	Body          string
	Preview       string
	ReceivedAt    time.Time
}

// MailSource lists unread mail and marks messages processed. msgraph
// and imapmail implement it.
type MailSource interface {
	// Name labels the source in the email log ("msgraph", "imap").
	Name() string
	ListUnread(ctx context.Context, limit int) ([]Email, error)
	// MarkProcessed flags a message so the next sweep skips it
	// (read flag on Graph, \Seen on IMAP).
	MarkProcessed(ctx context.Context, messageID string) error
}

// CalendarSource yields busy intervals inside a query range. msgraph,
// ics feeds, and gcal implement it; a sweep merges all of them.
type CalendarSource interface {
	Name() string
	ListBusy(ctx context.Context, from, to time.Time) ([]availability.BusyInterval, error)
}

// DraftWriter saves a reply draft next to the original message. Only
// the Graph source supports this; for other sources the sweep records
// the drafted body in the email log only.
type DraftWriter interface {
	CreateDraft(ctx context.Context, messageID, body string) error
}

// SettingsReader supplies the mailbox timezone ("" when unknown, in
// which case the profile default applies).
type SettingsReader interface {
	MailboxTimezone(ctx context.Context) (string, error)
}
