package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
	"github.com/vishalnagda1/outlook-mail-responder/server/finops"
	"github.com/vishalnagda1/outlook-mail-responder/server/middleware"
	"github.com/vishalnagda1/outlook-mail-responder/server/runner/sweep"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/reply"
	"github.com/vishalnagda1/outlook-mail-responder/store"
)

// APIV1Service carries the dependencies of the HTTP handlers. Sweep
// and Usage are optional; the corresponding endpoints answer 503 when
// they are absent.
type APIV1Service struct {
	Secret   string
	Profile  *profile.Profile
	Store    *store.Store
	Composer *reply.Composer
	Sweep    *sweep.Runner
	Usage    *finops.UsageTracker

	// draftSemaphore bounds concurrent drafting so a burst of requests
	// cannot pile up LLM calls.
	draftSemaphore *semaphore.Weighted
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, composer *reply.Composer) *APIV1Service {
	return &APIV1Service{
		Secret:         secret,
		Profile:        profile,
		Store:          store,
		Composer:       composer,
		draftSemaphore: semaphore.NewWeighted(4),
	}
}

// WithSweep attaches the inbox sweep runner.
func (s *APIV1Service) WithSweep(runner *sweep.Runner) *APIV1Service {
	s.Sweep = runner
	return s
}

// WithUsage attaches the LLM usage tracker.
func (s *APIV1Service) WithUsage(tracker *finops.UsageTracker) *APIV1Service {
	s.Usage = tracker
	return s
}

// RegisterRoutes mounts all handlers on the given echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.Use(echomw.CORS())

	rateLimiter := middleware.NewRateLimiter(10, 20)

	echoServer.GET("/auth/login", s.AuthLogin)
	echoServer.GET("/auth/callback", s.AuthCallback)
	echoServer.POST("/auth/logout", s.AuthLogout)

	echoServer.GET("/feed/drafts.rss", s.DraftsFeed)

	apiGroup := echoServer.Group("/api/v1", rateLimiter.Middleware(), s.SessionMiddleware())
	apiGroup.POST("/availability", s.ResolveAvailability)
	apiGroup.POST("/replies/draft", s.DraftReply)
	apiGroup.POST("/inbox/sweep", s.TriggerSweep)
	apiGroup.GET("/inbox/logs", s.ListInboxLogs)
	apiGroup.GET("/settings", s.GetSettings)
	apiGroup.PATCH("/settings", s.UpdateSettings)
	apiGroup.GET("/metrics/system", s.GetSystemMetrics)
}

// errorJSON renders a ResponderError-shaped body.
func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]string{
		"code":  code,
		"error": message,
	})
}

func internalError(c echo.Context, err error) error {
	return errorJSON(c, http.StatusInternalServerError, "INTERNAL", err.Error())
}
