package sweep

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalnagda1/outlook-mail-responder/internal/profile"
	"github.com/vishalnagda1/outlook-mail-responder/server/internal/observability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/reply"
	"github.com/vishalnagda1/outlook-mail-responder/store"
	"github.com/vishalnagda1/outlook-mail-responder/store/db"
)

type fakeSource struct {
	emails    []Email
	processed []string
	listErr   error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) ListUnread(_ context.Context, limit int) ([]Email, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.emails) > limit {
		return f.emails[:limit], nil
	}
	return f.emails, nil
}

func (f *fakeSource) MarkProcessed(_ context.Context, messageID string) error {
	f.processed = append(f.processed, messageID)
	return nil
}

type fakeCalendar struct {
	name string
	busy []availability.BusyInterval
	err  error
}

func (f *fakeCalendar) Name() string { return f.name }

func (f *fakeCalendar) ListBusy(context.Context, time.Time, time.Time) ([]availability.BusyInterval, error) {
	return f.busy, f.err
}

type fakeDrafts struct {
	drafts map[string]string
	err    error
}

func (f *fakeDrafts) CreateDraft(_ context.Context, messageID, body string) error {
	if f.err != nil {
		return f.err
	}
	if f.drafts == nil {
		f.drafts = map[string]string{}
	}
	f.drafts[messageID] = body
	return nil
}

type fakeSettings struct {
	tz  string
	err error
}

func (f *fakeSettings) MailboxTimezone(context.Context) (string, error) {
	return f.tz, f.err
}

func newTestRequestContext() *observability.RequestContext {
	return observability.NewRequestContext(slog.Default(), "test")
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	testProfile := &profile.Profile{
		Mode:   "prod",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "sweep_test.db"),
	}
	driver, err := db.NewDBDriver(testProfile)
	require.NoError(t, err)
	testStore := store.New(driver, testProfile)
	require.NoError(t, testStore.Migrate(context.Background()))
	t.Cleanup(func() { _ = testStore.Close() })
	return testStore
}

func newTestRunner(t *testing.T, source *fakeSource) (*Runner, *store.Store) {
	t.Helper()
	testStore := newTestStore(t)
	composer := reply.NewComposer(nil, "Vishal")
	runner := NewRunner(testStore, composer, source, "Asia/Kolkata")
	runner.nowFunc = func() time.Time {
		return time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC) // a Monday
	}
	return runner, testStore
}

func schedulingEmail(id string) Email {
	return Email{
		MessageID:     id,
		Sender:        "Alice Smith",
		SenderAddress: "alice@example.com",
		Subject:       "Meeting request",
		Body:          "Can we schedule a call on Tuesday for 30 minutes?",
		Preview:       "Can we schedule a call...",
		ReceivedAt:    time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestRunOnceDraftsReply(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, testStore := newTestRunner(t, source)
	drafts := &fakeDrafts{}
	runner.WithDraftWriter(drafts)

	report, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Examined)
	assert.Equal(t, 1, report.Drafted)
	assert.Zero(t, report.Failed)

	// Draft saved at the source and message marked processed.
	require.Contains(t, drafts.drafts, "msg-1")
	assert.Contains(t, drafts.drafts["msg-1"], "Hi Alice,")
	assert.Equal(t, []string{"msg-1"}, source.processed)

	logs, err := testStore.ListEmailLogs(context.Background(), &store.FindEmailLog{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, store.EmailLogStatusDrafted, logs[0].Status)
	assert.Equal(t, "fallback", logs[0].Generator)
	assert.Equal(t, "scheduling", logs[0].Intent)
	assert.Equal(t, "fake", logs[0].Source)
	assert.NotEmpty(t, logs[0].UID)
}

func TestRunOnceSkipsProcessedEmails(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, _ := newTestRunner(t, source)

	first, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Examined)

	second, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Examined, "already-logged email is not reprocessed")
}

func TestRunOnceReplyRuleSkips(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, testStore := newTestRunner(t, source)

	_, err := testStore.UpsertSetting(context.Background(), &store.Setting{
		Name:  store.SettingReplyRule,
		Value: `sender.endsWith("@trusted.example")`,
	})
	require.NoError(t, err)

	report, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Drafted)

	// Skipped emails are still marked processed and logged.
	assert.Equal(t, []string{"msg-1"}, source.processed)
	logs, err := testStore.ListEmailLogs(context.Background(), &store.FindEmailLog{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, store.EmailLogStatusSkipped, logs[0].Status)
}

func TestRunOnceBusyCalendarsConstrainSlots(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, testStore := newTestRunner(t, source)

	// Tuesday fully busy 9 to 17 in the mailbox zone.
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	runner.WithCalendars(&fakeCalendar{
		name: "primary",
		busy: []availability.BusyInterval{{
			Title: "Offsite",
			Start: time.Date(2024, 4, 16, 9, 0, 0, 0, loc),
			End:   time.Date(2024, 4, 16, 17, 0, 0, 0, loc),
		}},
	})

	report, runErr := runner.RunOnce(context.Background())
	require.NoError(t, runErr)
	assert.Equal(t, 1, report.Drafted)

	logs, err := testStore.ListEmailLogs(context.Background(), &store.FindEmailLog{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	// No open Tuesday slots, so the draft apologizes and offers
	// placeholder windows instead of real availability.
	assert.Contains(t, logs[0].DraftBody, "I don't have any open slots")
	assert.Contains(t, logs[0].DraftBody, "11:00 AM - 12:00 PM")
}

func TestRunOnceCalendarFailureDegrades(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, _ := newTestRunner(t, source)
	runner.WithCalendars(&fakeCalendar{name: "broken", err: errors.New("connection refused")})

	report, err := runner.RunOnce(context.Background())
	require.NoError(t, err, "a failing calendar does not abort the sweep")
	assert.Equal(t, 1, report.Drafted)
}

func TestRunOnceMailSourceError(t *testing.T) {
	source := &fakeSource{listErr: errors.New("dial tcp: connection refused")}
	runner, _ := newTestRunner(t, source)

	_, err := runner.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAIL_SOURCE_UNAVAILABLE")
}

func TestRunOnceRejectsOverlap(t *testing.T) {
	source := &fakeSource{}
	runner, _ := newTestRunner(t, source)

	runner.mu.Lock()
	runner.running = true
	runner.mu.Unlock()

	_, err := runner.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
}

func TestResolveTimezonePrecedence(t *testing.T) {
	source := &fakeSource{emails: []Email{schedulingEmail("msg-1")}}
	runner, testStore := newTestRunner(t, source)
	ctx := context.Background()
	reqCtx := newTestRequestContext()

	// Default when nothing else is known.
	assert.Equal(t, "Asia/Kolkata", runner.resolveTimezone(ctx, reqCtx))

	// Mailbox setting wins over the default.
	runner.WithSettings(&fakeSettings{tz: "Europe/London"})
	assert.Equal(t, "Europe/London", runner.resolveTimezone(ctx, reqCtx))

	// Stored override wins over the mailbox.
	_, err := testStore.UpsertSetting(ctx, &store.Setting{
		Name:  store.SettingMailboxTimezone,
		Value: "America/New_York",
	})
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", runner.resolveTimezone(ctx, reqCtx))
}

func TestResolveTimezoneIgnoresInvalid(t *testing.T) {
	source := &fakeSource{}
	runner, _ := newTestRunner(t, source)
	runner.WithSettings(&fakeSettings{tz: "Not/AZone"})

	assert.Equal(t, "Asia/Kolkata", runner.resolveTimezone(context.Background(), newTestRequestContext()))
}
