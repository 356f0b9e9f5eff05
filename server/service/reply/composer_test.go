package reply

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

type fakeGenerator struct {
	reply    string
	err      error
	lastUser string
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.lastUser = user
	return f.reply, f.err
}

var composerNow = time.Date(2024, time.April, 22, 10, 0, 0, 0, time.UTC)

func schedulingRequest() Request {
	return Request{
		Sender:   "Alice Johnson",
		Subject:  "Catch up",
		Body:     "Can we meet on Tuesday for 45 minutes?",
		Timezone: "Asia/Kolkata",
		Now:      composerNow,
	}
}

func TestCompose_LLMPath(t *testing.T) {
	gen := &fakeGenerator{reply: "Hi Alice, Tuesday works."}
	composer := NewComposer(gen, "Vishal")

	draft, err := composer.Compose(context.Background(), schedulingRequest())
	require.NoError(t, err)

	assert.Equal(t, "llm", draft.GeneratedBy)
	assert.Equal(t, "Hi Alice, Tuesday works.", draft.Body)
	assert.True(t, draft.Intent.IsSchedulingRequest)
	require.NotNil(t, draft.SlotMap, "scheduling requests always resolve availability")
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastUser, "Calendar availability", "the prompt carries the resolved slots")
}

func TestCompose_FallsBackOnLLMError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	composer := NewComposer(gen, "Vishal")

	draft, err := composer.Compose(context.Background(), schedulingRequest())
	require.NoError(t, err, "LLM trouble never fails composition")

	assert.Equal(t, "fallback", draft.GeneratedBy)
	assert.Contains(t, draft.Body, "Best regards,\nVishal")
	assert.True(t, strings.HasPrefix(draft.Body, "Hi Alice,"))
}

func TestCompose_NilGeneratorAlwaysNarrates(t *testing.T) {
	composer := NewComposer(nil, "Vishal")

	draft, err := composer.Compose(context.Background(), schedulingRequest())
	require.NoError(t, err)
	assert.Equal(t, "fallback", draft.GeneratedBy)
}

func TestCompose_EmptyLLMResponseFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: ""}
	composer := NewComposer(gen, "Vishal")

	draft, err := composer.Compose(context.Background(), schedulingRequest())
	require.NoError(t, err)
	assert.Equal(t, "fallback", draft.GeneratedBy)
}

func TestCompose_InvalidTimezoneIsFatal(t *testing.T) {
	req := schedulingRequest()
	req.Timezone = "Not/AZone"
	composer := NewComposer(nil, "Vishal")

	draft, err := composer.Compose(context.Background(), req)
	require.Error(t, err)
	var tzErr *timezone.InvalidTimezoneError
	assert.True(t, errors.As(err, &tzErr))
	assert.Nil(t, draft, "no partial draft on invalid timezone")
}

func TestCompose_NonSchedulingSkipsResolution(t *testing.T) {
	req := Request{
		Sender:   "Bob",
		Subject:  "Thanks",
		Body:     "Thanks for your help",
		Timezone: "UTC",
		Now:      composerNow,
	}
	composer := NewComposer(nil, "Vishal")

	draft, err := composer.Compose(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, draft.SlotMap)
	assert.True(t, draft.Intent.IsThankYou)
	assert.Contains(t, draft.Body, "You're very welcome")
}

func TestCompose_BusyIntervalsConstrainSlots(t *testing.T) {
	loc := timezone.LocationAsiaKolkata
	req := schedulingRequest()
	// Tuesday rolled forward from Monday 2024-04-22 is 2024-04-23.
	req.Busy = []availability.BusyInterval{
		{
			Start: time.Date(2024, time.April, 23, 9, 0, 0, 0, loc),
			End:   time.Date(2024, time.April, 23, 16, 30, 0, 0, loc),
		},
	}
	composer := NewComposer(nil, "Vishal")

	draft, err := composer.Compose(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, draft.SlotMap)
	require.Len(t, draft.SlotMap.Dates, 1)
	assert.Equal(t, "2024-04-23", draft.SlotMap.Dates[0].FormattedDate)

	// 45-minute slots on the 30-minute grid inside 09:00-17:00 with
	// everything before 16:30 blocked: nothing fits.
	assert.False(t, draft.SlotMap.HasAnyAvailability)
	assert.Contains(t, draft.Body, "I'm sorry")
}
