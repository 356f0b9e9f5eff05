package reply

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/internal/observability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
	"github.com/vishalnagda1/outlook-mail-responder/server/service/temporal"
	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

// DefaultDraftTimeout bounds one LLM draft call.
const DefaultDraftTimeout = 15 * time.Second

// Generator is the LLM collaborator. Implementations return sanitized
// reply text; any error (or a nil Generator) routes composition to the
// narrator.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Request is one email to draft a reply for. Now is the single clock
// reading for the whole composition; the core never reads the clock
// itself.
type Request struct {
	Sender   string
	Subject  string
	Body     string
	Busy     []availability.BusyInterval
	Timezone string
	Now      time.Time
}

// Draft is a composed reply.
type Draft struct {
	Body    string                `json:"body"`
	Intent  Intent                `json:"intent"`
	SlotMap *availability.SlotMap `json:"slotMap,omitempty"`
	// GeneratedBy records which path produced the body: "llm" or
	// "fallback".
	GeneratedBy string `json:"generatedBy"`
}

// Composer orchestrates extract -> resolve -> draft. It is the seam
// between the pure core and the plumbing around it.
type Composer struct {
	extractor    *temporal.Extractor
	generator    Generator
	narrator     *Narrator
	draftTimeout time.Duration
}

// NewComposer builds a composer. generator may be nil, in which case
// every draft takes the narrator path.
func NewComposer(generator Generator, signatureName string) *Composer {
	return &Composer{
		extractor:    temporal.NewExtractor(),
		generator:    generator,
		narrator:     &Narrator{SignatureName: signatureName},
		draftTimeout: DefaultDraftTimeout,
	}
}

// WithDraftTimeout overrides the per-call LLM deadline.
func (c *Composer) WithDraftTimeout(d time.Duration) *Composer {
	clone := *c
	clone.draftTimeout = d
	return &clone
}

// Compose drafts a reply for one email.
//
// An invalid timezone aborts the whole composition with the typed
// error from the timezone package; there is no partial draft. Every
// other failure mode falls back to the narrator, so Compose fails only
// on bad input, never on LLM trouble.
func (c *Composer) Compose(ctx context.Context, req Request) (*Draft, error) {
	loc, err := timezone.LoadLocation(req.Timezone)
	if err != nil {
		return nil, err
	}

	intent := ClassifyIntent(req.Subject, req.Body)

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	extraction := c.extractor.WithNow(func() time.Time { return now }).Extract(req.Body)

	var slotMap *availability.SlotMap
	if intent.IsSchedulingRequest {
		candidates := availability.Candidates(extraction, now, loc)
		window := availability.WindowFrom(extraction)
		slotMap, err = availability.Resolve(req.Busy, candidates, window, extraction.DurationMinutes, req.Timezone)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve availability")
		}
	}

	if body, ok := c.generate(ctx, intent, req, slotMap); ok {
		return &Draft{Body: body, Intent: intent, SlotMap: slotMap, GeneratedBy: "llm"}, nil
	}

	body := c.narrator.Narrate(intent, req.Sender, req.Subject, slotMap, now.In(loc))
	return &Draft{Body: body, Intent: intent, SlotMap: slotMap, GeneratedBy: "fallback"}, nil
}

func (c *Composer) generate(ctx context.Context, intent Intent, req Request, slotMap *availability.SlotMap) (string, bool) {
	if c.generator == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, c.draftTimeout)
	defer cancel()

	system, user := BuildPrompt(intent, req.Sender, req.Subject, req.Body, slotMap)
	body, err := c.generator.Generate(ctx, system, user)
	if err != nil || body == "" {
		observability.LLMRequestsTotal.WithLabelValues("error").Inc()
		return "", false
	}
	observability.LLMRequestsTotal.WithLabelValues("ok").Inc()
	return body, true
}
