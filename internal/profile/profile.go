package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the responder server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where the responder stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// InstanceURL is the public url of this instance, used as the OAuth redirect base.
	InstanceURL string
	// SessionSecret signs the session JWTs issued after OAuth login.
	SessionSecret string

	// DefaultTimezone is the IANA zone used when the mailbox settings
	// carry no usable timezone. It is passed explicitly into every
	// resolution; nothing reads it ambiently.
	DefaultTimezone string // RESPONDER_DEFAULT_TIMEZONE (default: Asia/Kolkata)

	// Mail source selection: "msgraph" or "imap".
	MailSource string // RESPONDER_MAIL_SOURCE (default: msgraph)

	// Microsoft Graph configuration (client-credentials flow).
	GraphTenantID     string // RESPONDER_GRAPH_TENANT_ID
	GraphClientID     string // RESPONDER_GRAPH_CLIENT_ID
	GraphClientSecret string // RESPONDER_GRAPH_CLIENT_SECRET
	GraphUserID       string // RESPONDER_GRAPH_USER_ID (mailbox owner)
	GraphBaseURL      string // RESPONDER_GRAPH_BASE_URL (default: https://graph.microsoft.com/v1.0)

	// IMAP configuration, used when MailSource is "imap".
	IMAPHost     string // RESPONDER_IMAP_HOST
	IMAPPort     string // RESPONDER_IMAP_PORT (default: 993)
	IMAPUsername string // RESPONDER_IMAP_USERNAME
	IMAPPassword string // RESPONDER_IMAP_PASSWORD
	IMAPTLS      bool   // RESPONDER_IMAP_TLS (default: true)

	// LLM configuration (OpenAI-compatible endpoint, e.g. local ollama).
	LLMEnabled bool   // RESPONDER_LLM_ENABLED
	LLMBaseURL string // RESPONDER_LLM_BASE_URL (default: http://localhost:11434/v1)
	LLMAPIKey  string // RESPONDER_LLM_API_KEY (ollama accepts any value)
	LLMModel   string // RESPONDER_LLM_MODEL (default: llama3.1:8b)

	// Google Calendar free/busy source (optional).
	GoogleCredentialsFile string // RESPONDER_GOOGLE_CREDENTIALS_FILE
	GoogleCalendarID      string // RESPONDER_GOOGLE_CALENDAR_ID

	// CalendarsFile lists additional ICS busy-interval feeds (yaml).
	CalendarsFile string // RESPONDER_CALENDARS_FILE (default: <data>/calendars.yaml)

	// Inbox sweep scheduling.
	SweepEnabled bool   // RESPONDER_SWEEP_ENABLED (default: true)
	SweepSpec    string // RESPONDER_SWEEP_SPEC (cron spec, default: @every 2m)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsLLMEnabled returns true if LLM drafting is enabled and an endpoint is configured.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMEnabled && p.LLMBaseURL != ""
}

// IsGraphConfigured returns true if the Microsoft Graph collaborator can be built.
func (p *Profile) IsGraphConfigured() bool {
	return p.GraphTenantID != "" && p.GraphClientID != "" && p.GraphClientSecret != "" && p.GraphUserID != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// FromEnv loads configuration from RESPONDER_* environment variables.
func (p *Profile) FromEnv() {
	p.SessionSecret = getEnvOrDefault("RESPONDER_SESSION_SECRET", p.SessionSecret)
	p.DefaultTimezone = getEnvOrDefault("RESPONDER_DEFAULT_TIMEZONE", "Asia/Kolkata")
	p.MailSource = getEnvOrDefault("RESPONDER_MAIL_SOURCE", "msgraph")

	p.GraphTenantID = os.Getenv("RESPONDER_GRAPH_TENANT_ID")
	p.GraphClientID = os.Getenv("RESPONDER_GRAPH_CLIENT_ID")
	p.GraphClientSecret = os.Getenv("RESPONDER_GRAPH_CLIENT_SECRET")
	p.GraphUserID = os.Getenv("RESPONDER_GRAPH_USER_ID")
	p.GraphBaseURL = getEnvOrDefault("RESPONDER_GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0")

	p.IMAPHost = os.Getenv("RESPONDER_IMAP_HOST")
	p.IMAPPort = getEnvOrDefault("RESPONDER_IMAP_PORT", "993")
	p.IMAPUsername = os.Getenv("RESPONDER_IMAP_USERNAME")
	p.IMAPPassword = os.Getenv("RESPONDER_IMAP_PASSWORD")
	p.IMAPTLS = getBoolEnv("RESPONDER_IMAP_TLS", true)

	p.LLMEnabled = getBoolEnv("RESPONDER_LLM_ENABLED", false)
	p.LLMBaseURL = getEnvOrDefault("RESPONDER_LLM_BASE_URL", "http://localhost:11434/v1")
	p.LLMAPIKey = getEnvOrDefault("RESPONDER_LLM_API_KEY", "ollama")
	p.LLMModel = getEnvOrDefault("RESPONDER_LLM_MODEL", "llama3.1:8b")

	p.GoogleCredentialsFile = os.Getenv("RESPONDER_GOOGLE_CREDENTIALS_FILE")
	p.GoogleCalendarID = os.Getenv("RESPONDER_GOOGLE_CALENDAR_ID")

	p.CalendarsFile = os.Getenv("RESPONDER_CALENDARS_FILE")

	p.SweepEnabled = getBoolEnv("RESPONDER_SWEEP_ENABLED", true)
	p.SweepSpec = getEnvOrDefault("RESPONDER_SWEEP_SPEC", "@every 2m")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "responder")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/responder"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("responder_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.CalendarsFile == "" {
		p.CalendarsFile = filepath.Join(dataDir, "calendars.yaml")
	}

	if p.MailSource != "msgraph" && p.MailSource != "imap" {
		return errors.Errorf("unknown mail source %q: only 'msgraph' and 'imap' are supported", p.MailSource)
	}

	if p.Mode == "prod" && p.SessionSecret == "" {
		return errors.New("RESPONDER_SESSION_SECRET must be set in prod mode")
	}

	return nil
}
