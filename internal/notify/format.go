package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
)

// Escape neutralizes user-supplied text for the HTML message markup.
func Escape(text string) string {
	return html.EscapeString(text)
}

// looksLikeURL gates whether evidence renders as a hyperlink or as
// literal text.
func looksLikeURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// FormatTicketAlert renders the operator alert for a new ticket. Every
// reporter-controlled field goes through Escape before it reaches the
// markup.
func FormatTicketAlert(record domain.TicketRecord) string {
	var evidence string
	if record.EvidenceRef != domain.NoEvidence && looksLikeURL(record.EvidenceRef) {
		evidence = fmt.Sprintf(`<a href="%s">📎 View Evidence</a>`, Escape(record.EvidenceRef))
	} else {
		evidence = Escape(record.EvidenceRef)
	}

	var b strings.Builder
	b.WriteString("🚨 <b>NEW COMPLAINT RECEIVED</b> 🚨\n\n")
	fmt.Fprintf(&b, "🎫 <b>Ticket ID:</b> <code>%s</code>\n", Escape(record.TicketID))
	fmt.Fprintf(&b, "🌐 <b>Site:</b> %s\n", Escape(record.CategoryName))
	fmt.Fprintf(&b, "⏰ <b>Filed:</b> %s\n\n", Escape(record.CreatedAt.Format(domain.TimestampLayout)))
	b.WriteString("<b>📋 REPORTER:</b>\n")
	fmt.Fprintf(&b, "• <b>Full Name:</b> %s\n", Escape(record.ReporterName))
	fmt.Fprintf(&b, "• <b>Site Account:</b> %s\n", Escape(record.ExternalAccountRef))
	fmt.Fprintf(&b, "• <b>Chat Name:</b> %s\n", Escape(record.ReporterChatName))
	fmt.Fprintf(&b, "• <b>Contact:</b> %s\n", Escape(record.ContactHandle))
	fmt.Fprintf(&b, "• <b>User ID:</b> <code>%s</code>\n\n", Escape(record.ContactUserID))
	fmt.Fprintf(&b, "<b>📝 COMPLAINT:</b>\n%s\n\n", Escape(record.ComplaintText))
	fmt.Fprintf(&b, "<b>📎 EVIDENCE:</b> %s\n\n", evidence)

	b.WriteString("<b>📞 HOW TO REACH THEM:</b>\n")
	if record.ContactMethod == domain.ContactMethodUsername {
		fmt.Fprintf(&b, "• Message <b>%s</b> directly\n", Escape(record.ContactHandle))
		fmt.Fprintf(&b, "• Or use user ID: <code>%s</code>\n\n", Escape(record.ContactUserID))
	} else {
		fmt.Fprintf(&b, "• No public handle; use user ID: <code>%s</code>\n\n", Escape(record.ContactUserID))
	}
	b.WriteString("⚠️ <b>Follow up on this complaint promptly!</b>")

	return b.String()
}
