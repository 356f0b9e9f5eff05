package reply

import (
	"fmt"
	"strings"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// systemPrompt frames every LLM draft request.
const systemPrompt = `You are an email assistant drafting a reply on behalf of the mailbox owner.
Write a complete, polite, professional reply body in plain text.
Do not invent meetings, commitments, or facts not present in the context.
Do not include a subject line. Do not add a signature block; one is appended separately.`

// BuildPrompt assembles the system and user messages for the LLM draft
// request. When the email is a scheduling request, the resolved
// availability is rendered into the context so the model proposes only
// times that are actually open.
func BuildPrompt(intent Intent, sender, subject, body string, slotMap *availability.SlotMap) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\n", sender)
	fmt.Fprintf(&b, "Subject: %s\n\n", subject)
	fmt.Fprintf(&b, "Email body:\n%s\n\n", strings.TrimSpace(body))
	fmt.Fprintf(&b, "Detected intent: %s\n", intent.Primary())

	if intent.Primary() == IntentScheduling {
		b.WriteString("\n")
		b.WriteString(renderAvailability(slotMap))
	}

	b.WriteString("\nDraft the reply body now.")
	return systemPrompt, b.String()
}

// renderAvailability summarizes the SlotMap for the model. The
// no-availability state is a first-class branch, not an error.
func renderAvailability(slotMap *availability.SlotMap) string {
	if slotMap == nil || !slotMap.HasAnyAvailability {
		return "Calendar availability: no open slots match the request. Apologize and ask the sender to propose alternative times."
	}

	var b strings.Builder
	b.WriteString("Calendar availability (only offer these times):\n")
	for _, date := range slotMap.Dates {
		if !date.HasAvailability {
			continue
		}
		fmt.Fprintf(&b, "%s, %s:", date.DayOfWeek, date.FormattedDate)
		for i, slot := range date.Slots {
			if i >= maxSlotsPerDate {
				break
			}
			fmt.Fprintf(&b, " %s-%s", slot.StartFormatted, slot.EndFormatted)
			if i < len(date.Slots)-1 && i < maxSlotsPerDate-1 {
				b.WriteString(",")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
