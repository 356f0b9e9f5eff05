package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
	"github.com/vishalnagda1/outlook-mail-responder/internal/version"
	"github.com/vishalnagda1/outlook-mail-responder/plugin/gcal"
	"github.com/vishalnagda1/outlook-mail-responder/plugin/ics"
	"github.com/vishalnagda1/outlook-mail-responder/plugin/imapmail"
	"github.com/vishalnagda1/outlook-mail-responder/plugin/llm"
	"github.com/vishalnagda1/outlook-mail-responder/plugin/msgraph"
	"github.com/vishalnagda1/outlook-mail-responder/server/finops"
	apiv1 "github.com/vishalnagda1/outlook-mail-responder/server/router/api/v1"
	"github.com/vishalnagda1/outlook-mail-responder/server/runner/sweep"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/reply"
	"github.com/vishalnagda1/outlook-mail-responder/store"
	"github.com/vishalnagda1/outlook-mail-responder/store/db"
)

const greetingBanner = `outlook-mail-responder`

var rootCmd = &cobra.Command{
	Use:   "responder",
	Short: "An auto-reply service that drafts availability-aware email replies",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
		}
		instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		setupLogger(instanceProfile)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := run(ctx, instanceProfile); err != nil {
			slog.Error("server exited with error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev", or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "binding address for the server")
	rootCmd.PersistentFlags().Int("port", 8081, "binding port for the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("instance-url", "http://localhost:8081", "public url of this instance")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("responder")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, p *profile.Profile) error {
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	st := store.New(dbDriver, p)
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	defer func() {
		_ = st.Close()
	}()

	usageTracker := finops.NewUsageTracker()

	var generator reply.Generator
	if llmConfig := llm.NewConfigFromProfile(p); llmConfig != nil {
		provider, err := llm.NewProvider(llmConfig)
		if err != nil {
			return fmt.Errorf("failed to create llm provider: %w", err)
		}
		generator = provider.WithUsageRecorder(usageTracker)
		slog.Info("llm drafting enabled", slog.String("model", llmConfig.Model))
	} else {
		slog.Info("llm drafting disabled, every reply takes the fallback path")
	}

	signatureName, err := st.GetSettingValue(ctx, store.SettingSignatureName, "")
	if err != nil {
		return fmt.Errorf("failed to load signature setting: %w", err)
	}
	composer := reply.NewComposer(generator, signatureName)

	runner, err := buildSweepRunner(ctx, p, st, composer)
	if err != nil {
		return err
	}

	var sweepCron *cron.Cron
	if runner != nil && p.SweepEnabled {
		sweepCron = cron.New()
		if _, err := sweepCron.AddFunc(p.SweepSpec, func() {
			if _, err := runner.RunOnce(context.Background()); err != nil {
				slog.Warn("scheduled sweep failed", slog.String("error", err.Error()))
			}
		}); err != nil {
			return fmt.Errorf("invalid sweep spec %q: %w", p.SweepSpec, err)
		}
		sweepCron.Start()
		defer sweepCron.Stop()
		slog.Info("inbox sweep scheduled", slog.String("spec", p.SweepSpec))
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	echoServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiService := apiv1.NewAPIV1Service(p.SessionSecret, p, st, composer).WithUsage(usageTracker)
	if runner != nil {
		apiService.WithSweep(runner)
	}
	apiService.RegisterRoutes(echoServer)

	address := fmt.Sprintf("%s:%d", p.Addr, p.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- echoServer.Start(address)
	}()

	slog.Info(greetingBanner,
		slog.String("version", p.Version),
		slog.String("mode", p.Mode),
		slog.String("address", address),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := echoServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// buildSweepRunner assembles the mail source and calendar feeds. A
// missing mail source configuration disables sweeping but leaves the
// rest of the API usable.
func buildSweepRunner(ctx context.Context, p *profile.Profile, st *store.Store, composer *reply.Composer) (*sweep.Runner, error) {
	var (
		source    sweep.MailSource
		calendars []sweep.CalendarSource
		drafts    sweep.DraftWriter
		settings  sweep.SettingsReader
	)

	switch p.MailSource {
	case "msgraph":
		if !p.IsGraphConfigured() {
			slog.Warn("microsoft graph is not configured, inbox sweeping disabled")
			break
		}
		client, err := msgraph.NewClient(&msgraph.Config{
			TenantID:     p.GraphTenantID,
			ClientID:     p.GraphClientID,
			ClientSecret: p.GraphClientSecret,
			UserID:       p.GraphUserID,
			BaseURL:      p.GraphBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create graph client: %w", err)
		}
		source = client
		calendars = append(calendars, client)
		drafts = client
		settings = client
	case "imap":
		if p.IMAPHost == "" {
			slog.Warn("imap is not configured, inbox sweeping disabled")
			break
		}
		client, err := imapmail.NewClient(&imapmail.Config{
			Host:     p.IMAPHost,
			Port:     p.IMAPPort,
			Username: p.IMAPUsername,
			Password: p.IMAPPassword,
			TLS:      p.IMAPTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create imap client: %w", err)
		}
		source = client
	}

	if p.GoogleCredentialsFile != "" {
		client, err := gcal.NewClient(ctx, &gcal.Config{
			Name:            "gcal",
			CredentialsFile: p.GoogleCredentialsFile,
			CalendarID:      p.GoogleCalendarID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create google calendar client: %w", err)
		}
		calendars = append(calendars, client)
	}

	feeds, err := profile.LoadCalendarFeeds(p.CalendarsFile)
	if err != nil {
		return nil, err
	}
	for _, feed := range feeds {
		switch feed.Kind {
		case "ics":
			icsFeed, err := ics.NewFeed(&ics.Config{Name: feed.Name, URL: feed.URL})
			if err != nil {
				return nil, fmt.Errorf("failed to create ics feed %q: %w", feed.Name, err)
			}
			calendars = append(calendars, icsFeed)
		case "gcal":
			client, err := gcal.NewClient(ctx, &gcal.Config{
				Name:            feed.Name,
				CredentialsFile: p.GoogleCredentialsFile,
				CalendarID:      feed.CalendarID,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create gcal feed %q: %w", feed.Name, err)
			}
			calendars = append(calendars, client)
		}
	}

	if source == nil {
		return nil, nil
	}

	runner := sweep.NewRunner(st, composer, source, p.DefaultTimezone).
		WithCalendars(calendars...)
	if drafts != nil {
		runner = runner.WithDraftWriter(drafts)
	}
	if settings != nil {
		runner = runner.WithSettings(settings)
	}
	return runner, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
