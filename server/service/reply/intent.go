// Package reply turns an incoming email plus resolved availability
// into a drafted reply body, via the LLM when one is configured and
// via the deterministic narrator when it is not.
package reply

import "strings"

// IntentKind is the single branch that contributes reply body text.
type IntentKind string

const (
	IntentThankYou       IntentKind = "thank_you"
	IntentScheduling     IntentKind = "scheduling"
	IntentQuestion       IntentKind = "question"
	IntentInformation    IntentKind = "information"
	IntentRequest        IntentKind = "request"
	IntentAcknowledgment IntentKind = "acknowledgment"
)

// Intent carries the independent classification signals for one email.
// The signals are not mutually exclusive; Primary applies the fixed
// priority order when composing a reply.
type Intent struct {
	IsThankYou          bool `json:"isThankYou"`
	IsSchedulingRequest bool `json:"isSchedulingRequest"`
	IsQuestion          bool `json:"isQuestion"`
	IsInformation       bool `json:"isInformation"`
	IsRequest           bool `json:"isRequest"`
}

// Primary returns the first matching branch in priority order:
// thanks > scheduling > question > information > request > generic
// acknowledgment. Only this branch contributes body text, even when
// other signals are also set.
func (i Intent) Primary() IntentKind {
	switch {
	case i.IsThankYou:
		return IntentThankYou
	case i.IsSchedulingRequest:
		return IntentScheduling
	case i.IsQuestion:
		return IntentQuestion
	case i.IsInformation:
		return IntentInformation
	case i.IsRequest:
		return IntentRequest
	default:
		return IntentAcknowledgment
	}
}

// Keyword groups per signal. Matching is case-insensitive substring
// search over subject and body together.
var (
	thankYouKeywords = []string{
		"thank you", "thanks", "appreciate", "grateful",
	}

	schedulingKeywords = []string{
		"meet", "meeting", "schedule", "appointment", "call",
		"catch up", "availability", "available", "free time",
		"calendar", "slot", "reschedule",
	}

	informationKeywords = []string{
		"fyi", "for your information", "just to let you know",
		"heads up", "please note", "update you",
	}

	requestKeywords = []string{
		"could you", "can you", "would you", "please",
		"kindly", "need you to", "request",
	}
)

// ClassifyIntent evaluates every signal independently over the subject
// and body. Signals do not suppress each other here; priority is
// applied later by Primary.
func ClassifyIntent(subject, body string) Intent {
	text := strings.ToLower(subject + " " + body)

	return Intent{
		IsThankYou:          containsAny(text, thankYouKeywords),
		IsSchedulingRequest: containsAny(text, schedulingKeywords),
		IsQuestion:          strings.Contains(text, "?"),
		IsInformation:       containsAny(text, informationKeywords),
		IsRequest:           containsAny(text, requestKeywords),
	}
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
