package reply

import (
	"fmt"
	"strings"
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// Narrator limits, mirroring what a human assistant would reasonably
// put in one reply.
const (
	maxSlotsPerDate    = 5
	suggestedDateCount = 3
)

// Fixed representative windows offered when no real calendar data is
// available: one late-morning, one early-afternoon.
var placeholderWindows = []string{
	"11:00 AM - 12:00 PM",
	"02:00 PM - 03:00 PM",
}

// Narrator deterministically synthesizes a complete reply body. It is
// the fallback path used whenever the LLM is unavailable or errors;
// its output goes to the draft writer unchanged.
type Narrator struct {
	// SignatureName closes every reply.
	SignatureName string
}

// Narrate builds the reply for the primary intent branch. The reply is
// assembled as a list of sections joined once at the end; no section
// inspects another's text.
//
// "now" is the caller's single clock reading, already projected into
// the mailbox timezone; the no-availability placeholder dates derive
// from it.
func (n *Narrator) Narrate(intent Intent, sender, subject string, slotMap *availability.SlotMap, now time.Time) string {
	sections := []string{greeting(sender)}

	switch intent.Primary() {
	case IntentThankYou:
		sections = append(sections,
			"You're very welcome! I'm glad I could help.",
			"Please don't hesitate to reach out if you need anything else.")
	case IntentScheduling:
		sections = append(sections, n.schedulingSections(slotMap, now)...)
	case IntentQuestion:
		sections = append(sections,
			"Thank you for your question. I've received your email and will get back to you with a detailed answer shortly.")
	case IntentInformation:
		sections = append(sections,
			"Thank you for the update. I've noted the information you shared.")
	case IntentRequest:
		sections = append(sections,
			"Thank you for your email. I'll look into your request and follow up as soon as possible.")
	default:
		sections = append(sections,
			fmt.Sprintf("Thank you for your email regarding %q. I've received it and will respond shortly.", subject))
	}

	sections = append(sections, n.signature())
	return strings.Join(sections, "\n\n")
}

func (n *Narrator) schedulingSections(slotMap *availability.SlotMap, now time.Time) []string {
	if slotMap != nil && slotMap.HasAnyAvailability {
		return availabilitySections(slotMap)
	}
	return n.noAvailabilitySections(now)
}

// availabilitySections renders one section per date that has open
// slots: the date header, then up to five slots in slot order.
func availabilitySections(slotMap *availability.SlotMap) []string {
	sections := []string{"I checked my calendar, and here's when I'm available:"}

	for _, date := range slotMap.Dates {
		if !date.HasAvailability {
			continue
		}
		var lines []string
		lines = append(lines, fmt.Sprintf("%s, %s:", date.DayOfWeek, date.FormattedDate))
		for i, slot := range date.Slots {
			if i >= maxSlotsPerDate {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s - %s", slot.StartFormatted, slot.EndFormatted))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	sections = append(sections, "Please let me know which time works best for you, and I'll send over an invite.")
	return sections
}

// noAvailabilitySections apologizes and offers the next three business
// days with the fixed placeholder windows, since no real calendar data
// backs them.
func (n *Narrator) noAvailabilitySections(now time.Time) []string {
	sections := []string{
		"I'm sorry, but I don't have any open slots matching your request. Here are a few alternative times that may work:",
	}

	day := now
	for added := 0; added < suggestedDateCount; {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		lines := []string{fmt.Sprintf("%s, %s:", day.Weekday(), day.Format("2006-01-02"))}
		for _, window := range placeholderWindows {
			lines = append(lines, "  - "+window)
		}
		sections = append(sections, strings.Join(lines, "\n"))
		added++
	}

	sections = append(sections, "If none of these work, let me know a few times that suit you and I'll do my best to accommodate.")
	return sections
}

func greeting(sender string) string {
	name := strings.TrimSpace(sender)
	if i := strings.IndexByte(name, ' '); i > 0 {
		name = name[:i]
	}
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func (n *Narrator) signature() string {
	if n.SignatureName == "" {
		return "Best regards"
	}
	return "Best regards,\n" + n.SignatureName
}
