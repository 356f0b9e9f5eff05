package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vishalnagda1/outlook-mail-responder/plugin/filter"
	responderrors "github.com/vishalnagda1/outlook-mail-responder/server/internal/errors"
	"github.com/vishalnagda1/outlook-mail-responder/server/internal/observability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/reply"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
	"github.com/vishalnagda1/outlook-mail-responder/store"
)

const (
	// defaultListLimit caps how many unread emails one sweep examines.
	defaultListLimit = 20
	// defaultBusyHorizon is how far ahead busy intervals are fetched.
	// Candidate dates never reach past one week, so two is plenty.
	defaultBusyHorizon = 14 * 24 * time.Hour
)

// Report summarizes one sweep run.
type Report struct {
	Examined int `json:"examined"`
	Drafted  int `json:"drafted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Runner walks the unread inbox and drafts replies. One sweep runs at
// a time; a cron fire that overlaps a running sweep is skipped.
type Runner struct {
	store    *store.Store
	composer *reply.Composer

	source    MailSource
	calendars []CalendarSource
	drafts    DraftWriter
	settings  SettingsReader

	defaultTimezone string
	listLimit       int
	busyHorizon     time.Duration

	mu      sync.Mutex
	running bool

	nowFunc func() time.Time
}

// NewRunner wires a sweep. drafts and settings may be nil: without a
// DraftWriter the drafted body lands only in the email log, and
// without a SettingsReader the default timezone applies.
func NewRunner(s *store.Store, composer *reply.Composer, source MailSource, defaultTimezone string) *Runner {
	return &Runner{
		store:           s,
		composer:        composer,
		source:          source,
		defaultTimezone: defaultTimezone,
		listLimit:       defaultListLimit,
		busyHorizon:     defaultBusyHorizon,
		nowFunc:         time.Now,
	}
}

// WithCalendars adds busy-interval sources.
func (r *Runner) WithCalendars(calendars ...CalendarSource) *Runner {
	r.calendars = append(r.calendars, calendars...)
	return r
}

// WithDraftWriter enables saving drafts next to the original message.
func (r *Runner) WithDraftWriter(drafts DraftWriter) *Runner {
	r.drafts = drafts
	return r
}

// WithSettings enables mailbox timezone discovery.
func (r *Runner) WithSettings(settings SettingsReader) *Runner {
	r.settings = settings
	return r
}

// RunOnce performs one full sweep. It returns ErrSweepInProgress when
// a previous sweep is still running.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		observability.SweepsTotal.WithLabelValues("skipped").Inc()
		return nil, ErrSweepInProgress
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	reqCtx := observability.NewRequestContext(slog.Default(), "inbox-sweep")
	report, err := r.sweep(ctx, reqCtx)
	observability.SweepDurationSeconds.Observe(reqCtx.Duration().Seconds())
	if err != nil {
		observability.SweepsTotal.WithLabelValues("error").Inc()
		reqCtx.Error("sweep aborted", err)
		return nil, err
	}

	observability.SweepsTotal.WithLabelValues("ok").Inc()
	reqCtx.Info("sweep completed",
		slog.Int("examined", report.Examined),
		slog.Int("drafted", report.Drafted),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
	)
	return report, nil
}

// ErrSweepInProgress is returned when a sweep overlaps a running one.
var ErrSweepInProgress = errors.New("a sweep is already in progress")

func (r *Runner) sweep(ctx context.Context, reqCtx *observability.RequestContext) (*Report, error) {
	emails, err := r.source.ListUnread(ctx, r.listLimit)
	if err != nil {
		return nil, responderrors.MailSourceUnavailable("failed to list unread emails", err)
	}

	report := &Report{}
	if len(emails) == 0 {
		return report, nil
	}

	rule, err := r.loadReplyRule(ctx)
	if err != nil {
		return nil, err
	}
	tz := r.resolveTimezone(ctx, reqCtx)
	busy := r.collectBusy(ctx, reqCtx)

	for _, email := range emails {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		processed, err := r.store.HasProcessed(ctx, r.source.Name(), email.MessageID)
		if err != nil {
			return report, errors.Wrap(err, "failed to check email log")
		}
		if processed {
			continue
		}

		report.Examined++
		observability.EmailsProcessedTotal.Inc()
		msgCtx := reqCtx.ForMessage(email.MessageID)

		switch r.processEmail(ctx, msgCtx, email, rule, busy, tz) {
		case outcomeDrafted:
			report.Drafted++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}
	return report, nil
}

type outcome int

const (
	outcomeDrafted outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (r *Runner) processEmail(
	ctx context.Context,
	msgCtx *observability.RequestContext,
	email Email,
	rule *filter.ReplyRule,
	busy []availability.BusyInterval,
	tz string,
) outcome {
	matched, err := rule.Match(email.SenderAddress, email.Subject, email.Body)
	if err != nil {
		msgCtx.Warn("reply rule evaluation failed, skipping email", slog.String("error", err.Error()))
		matched = false
	}
	if !matched {
		r.finishEmail(ctx, msgCtx, email, &store.EmailLog{Status: store.EmailLogStatusSkipped})
		return outcomeSkipped
	}

	draft, err := r.composer.Compose(ctx, reply.Request{
		Sender:   email.Sender,
		Subject:  email.Subject,
		Body:     email.Body,
		Busy:     busy,
		Timezone: tz,
		Now:      r.nowFunc(),
	})
	if err != nil {
		code := responderrors.GetCodeFromError(err, responderrors.ErrCodeInvalidArgument)
		var tzErr *timezone.InvalidTimezoneError
		if errors.As(err, &tzErr) {
			code = responderrors.ErrCodeInvalidTimezone
		}
		observability.PipelineFailuresTotal.WithLabelValues(string(code)).Inc()
		msgCtx.Error("failed to compose reply", err, slog.String(observability.LogFieldErrorCode, string(code)))
		r.finishEmail(ctx, msgCtx, email, &store.EmailLog{
			Status:    store.EmailLogStatusFailed,
			ErrorCode: string(code),
		})
		return outcomeFailed
	}

	if r.drafts != nil {
		if err := r.drafts.CreateDraft(ctx, email.MessageID, draft.Body); err != nil {
			observability.PipelineFailuresTotal.WithLabelValues(string(responderrors.ErrCodeDraftFailed)).Inc()
			msgCtx.Error("failed to save draft", err)
			r.finishEmail(ctx, msgCtx, email, &store.EmailLog{
				Intent:    string(draft.Intent.Primary()),
				Generator: draft.GeneratedBy,
				DraftBody: draft.Body,
				Status:    store.EmailLogStatusFailed,
				ErrorCode: string(responderrors.ErrCodeDraftFailed),
			})
			return outcomeFailed
		}
	}

	observability.DraftsCreatedTotal.WithLabelValues(draft.GeneratedBy).Inc()
	msgCtx.Info("reply drafted",
		slog.String("intent", string(draft.Intent.Primary())),
		slog.String(observability.LogFieldGenerator, draft.GeneratedBy),
	)
	r.finishEmail(ctx, msgCtx, email, &store.EmailLog{
		Intent:    string(draft.Intent.Primary()),
		Generator: draft.GeneratedBy,
		DraftBody: draft.Body,
		Status:    store.EmailLogStatusDrafted,
	})
	return outcomeDrafted
}

// finishEmail records the email log and marks the message processed at
// the source. Both are best effort: a failure here is logged, and the
// unique (source, message_id) index protects against the double
// processing that could follow.
func (r *Runner) finishEmail(ctx context.Context, msgCtx *observability.RequestContext, email Email, entry *store.EmailLog) {
	entry.UID = shortuuid.New()
	entry.Source = r.source.Name()
	entry.MessageID = email.MessageID
	entry.Sender = email.Sender
	entry.SenderAddress = email.SenderAddress
	entry.Subject = email.Subject
	entry.Preview = email.Preview

	if _, err := r.store.CreateEmailLog(ctx, entry); err != nil {
		msgCtx.Error("failed to record email log", err)
	}
	if err := r.source.MarkProcessed(ctx, email.MessageID); err != nil {
		msgCtx.Error("failed to mark email processed", err)
	}
}

// collectBusy merges busy intervals from every calendar source. A
// failing source degrades to no intervals from it; resolution then
// offers more slots than truly free, which the draft reader can catch.
func (r *Runner) collectBusy(ctx context.Context, reqCtx *observability.RequestContext) []availability.BusyInterval {
	if len(r.calendars) == 0 {
		return nil
	}

	from := r.nowFunc()
	to := from.Add(r.busyHorizon)

	results := make([][]availability.BusyInterval, len(r.calendars))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, source := range r.calendars {
		group.Go(func() error {
			intervals, err := source.ListBusy(groupCtx, from, to)
			if err != nil {
				observability.PipelineFailuresTotal.
					WithLabelValues(string(responderrors.ErrCodeCalendarUnavailable)).Inc()
				reqCtx.Warn("calendar source unavailable",
					slog.String("calendar", source.Name()),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = intervals
			return nil
		})
	}
	_ = group.Wait()

	var busy []availability.BusyInterval
	for _, intervals := range results {
		busy = append(busy, intervals...)
	}
	return busy
}

// loadReplyRule compiles the stored reply rule. An unparseable rule
// degrades to match-everything so a bad settings edit cannot silence
// the responder.
func (r *Runner) loadReplyRule(ctx context.Context) (*filter.ReplyRule, error) {
	source, err := r.store.GetSettingValue(ctx, store.SettingReplyRule, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reply rule setting")
	}
	rule, err := filter.Compile(source)
	if err != nil {
		slog.Warn("stored reply rule does not compile, matching everything", "error", err)
		return filter.Compile("")
	}
	return rule, nil
}

// resolveTimezone picks the zone for availability resolution: the
// stored override wins, then the mailbox's own setting, then the
// profile default. An invalid zone at any step falls through.
func (r *Runner) resolveTimezone(ctx context.Context, reqCtx *observability.RequestContext) string {
	if override, err := r.store.GetSettingValue(ctx, store.SettingMailboxTimezone, ""); err == nil && override != "" {
		if timezone.IsValidTimezone(override) {
			return override
		}
		reqCtx.Warn("ignoring invalid timezone override", slog.String("timezone", override))
	}

	if r.settings != nil {
		tz, err := r.settings.MailboxTimezone(ctx)
		if err != nil {
			reqCtx.Warn("failed to read mailbox timezone", slog.String("error", err.Error()))
		} else if tz != "" && timezone.IsValidTimezone(tz) {
			return tz
		}
	}
	return r.defaultTimezone
}
