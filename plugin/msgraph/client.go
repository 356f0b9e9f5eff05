// Package msgraph is the Microsoft Graph collaborator: unread mail,
// calendar busy intervals, mailbox settings, reply drafts, and read
// flags for one mailbox, authenticated with the client-credentials
// flow.
package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const requestTimeout = 30 * time.Second

// Config holds the Graph app registration and target mailbox.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// UserID is the mailbox owner (object id or UPN).
	UserID string
	// BaseURL overrides the Graph endpoint; tests point it at a local
	// server.
	BaseURL string
	// TokenURL overrides the token endpoint; empty derives the tenant
	// endpoint.
	TokenURL string
}

func (c *Config) Validate() error {
	if c.TenantID == "" || c.ClientID == "" || c.ClientSecret == "" {
		return errors.New("graph tenant id, client id, and client secret are required")
	}
	if c.UserID == "" {
		return errors.New("graph user id is required")
	}
	return nil
}

// APIError is a non-2xx Graph response, carrying the decoded error
// envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph request failed: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client is a Graph REST client for one mailbox.
type Client struct {
	config     *Config
	creds      *clientcredentials.Config
	httpClient *http.Client

	mu          sync.Mutex
	tokenSource oauth2.TokenSource

	settingsCache *settingsCache
}

// NewClient builds a Graph client. The token source refreshes expired
// tokens on its own; a 401 on a live token forces one rebuild and a
// single retry.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid graph config")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID)
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{"https://graph.microsoft.com/.default"},
	}

	return &Client{
		config:        cfg,
		creds:         creds,
		httpClient:    &http.Client{Timeout: requestTimeout},
		tokenSource:   creds.TokenSource(context.Background()),
		settingsCache: newSettingsCache(),
	}, nil
}

// Name labels this source in the email log.
func (c *Client) Name() string {
	return "msgraph"
}

func (c *Client) token() (string, error) {
	c.mu.Lock()
	ts := c.tokenSource
	c.mu.Unlock()

	tok, err := ts.Token()
	if err != nil {
		return "", errors.Wrap(err, "failed to obtain graph token")
	}
	return tok.AccessToken, nil
}

// refreshToken discards the cached token source so the next call
// fetches a fresh token.
func (c *Client) refreshToken() {
	c.mu.Lock()
	c.tokenSource = c.creds.TokenSource(context.Background())
	c.mu.Unlock()
}

// do performs one Graph request, decoding a JSON response into out
// (which may be nil). A 401 forces a token refresh and one retry,
// mirroring the original client's behavior on expired tokens.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	retried := false
	for {
		status, err := c.doOnce(ctx, method, path, query, headers, body, out)
		if err == nil {
			return nil
		}
		if status == http.StatusUnauthorized && !retried {
			retried = true
			c.refreshToken()
			continue
		}
		return err
	}
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) (int, error) {
	token, err := c.token()
	if err != nil {
		return 0, err
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode graph request")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build graph request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "graph request %s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "failed to decode graph response")
		}
	}
	return resp.StatusCode, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

func (c *Client) userPath(suffix string) string {
	return fmt.Sprintf("/users/%s%s", url.PathEscape(c.config.UserID), suffix)
}
