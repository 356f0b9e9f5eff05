// Package imapmail is the IMAP mail source: it lists unseen inbox
// messages with bodies reduced to plain text and flags processed
// messages \Seen. Draft creation is not supported on this source; the
// sweep records drafted bodies in the email log instead.
package imapmail

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/runner/sweep"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/mailtext"
)

// Config holds the IMAP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	TLS      bool
}

func (c *Config) Validate() error {
	if c.Host == "" || c.Username == "" || c.Password == "" {
		return errors.New("imap host, username, and password are required")
	}
	if c.Port == "" {
		c.Port = "993"
	}
	return nil
}

// Client is an IMAP mail source. Each operation dials, authenticates,
// and logs out; IMAP connections are not worth pooling at sweep
// cadence.
type Client struct {
	config *Config
}

// NewClient builds an IMAP source from a validated config.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid imap config")
	}
	return &Client{config: cfg}, nil
}

// Name labels this source in the email log.
func (c *Client) Name() string {
	return "imap"
}

func (c *Client) connect() (*imapclient.Client, error) {
	addr := c.config.Host + ":" + c.config.Port

	var client *imapclient.Client
	var err error
	if c.config.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to imap server %s", addr)
	}

	if err := client.Login(c.config.Username, c.config.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, errors.Wrapf(err, "imap authentication failed for %s", c.config.Username)
	}
	return client, nil
}

// ListUnread fetches unseen inbox messages, newest last, bodies
// reduced to plain text (text/plain part preferred, stripped text/html
// as the fallback).
func (c *Client) ListUnread(ctx context.Context, limit int) ([]sweep.Email, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to select INBOX")
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, errors.Wrap(err, "failed to search unseen messages")
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	defer fetchCmd.Close()

	var emails []sweep.Email
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			continue
		}
		emails = append(emails, emailFromBuffer(buf, bodySection))
	}
	if err := fetchCmd.Close(); err != nil {
		return emails, errors.Wrap(err, "failed to fetch messages")
	}
	return emails, nil
}

// MarkProcessed flags a message \Seen. messageID is the decimal UID
// ListUnread reported.
func (c *Client) MarkProcessed(ctx context.Context, messageID string) error {
	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid imap message id %q", messageID)
	}

	client, err := c.connect()
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return errors.Wrap(err, "failed to select INBOX")
	}

	storeCmd := client.Store(imap.UIDSetNum(imap.UID(uid)), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := storeCmd.Close(); err != nil {
		return errors.Wrapf(err, "failed to flag message %d seen", uid)
	}
	return nil
}

func emailFromBuffer(buf *imapclient.FetchMessageBuffer, bodySection *imap.FetchItemBodySection) sweep.Email {
	email := sweep.Email{
		MessageID: strconv.FormatUint(uint64(buf.UID), 10),
	}

	if buf.Envelope != nil {
		email.Subject = buf.Envelope.Subject
		email.ReceivedAt = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			email.Sender = from.Name
			email.SenderAddress = from.Addr()
			if email.Sender == "" {
				email.Sender = email.SenderAddress
			}
		}
	}

	if raw := buf.FindBodySection(bodySection); raw != nil {
		email.Body = extractTextBody(raw)
		email.Preview = mailtext.Snippet(email.Body, mailtext.DefaultSnippetLength)
	}
	return email
}

// extractTextBody walks the MIME parts for text/plain, falling back to
// stripped text/html, falling back to the raw bytes.
func extractTextBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(string(raw))
	}
	defer mr.Close()

	var htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			return strings.TrimSpace(string(body))
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if htmlBody != "" {
		return mailtext.HTMLToText(htmlBody)
	}
	return ""
}
