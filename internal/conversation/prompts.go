package conversation

import (
	"fmt"
	"strings"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/notify"
	"github.com/kopaska88/pengaduan-jokerbola/internal/status"
)

// Reserved control labels, rendered as reply keyboard buttons and
// recognized in any state.
const (
	BtnNewComplaint = "📝 New Complaint"
	BtnCheckStatus  = "🔍 Check Ticket Status"
	BtnHowTo        = "ℹ️ How It Works"
	BtnHelp         = "🆘 Help"
	BtnCancel       = "❌ Cancel"
	BtnSendPhoto    = "📸 Send Photo Evidence"
	BtnSkipPhoto    = "⏩ Skip Without Photo"
)

// Slash commands registered with the chat platform.
const (
	CmdStart  = "start"
	CmdNew    = "new"
	CmdStatus = "status"
	CmdHelp   = "help"
	CmdCancel = "cancel"
)

// skipPhrases are plain-text equivalents of the skip button accepted at
// the evidence step.
var skipPhrases = []string{BtnSkipPhoto, "skip", "no evidence"}

func isSkipPhrase(text string) bool {
	for _, phrase := range skipPhrases {
		if strings.EqualFold(strings.TrimSpace(text), phrase) {
			return true
		}
	}
	return false
}

const welcomeText = "🎉 <b>Welcome to the Customer Complaint Service!</b>\n\n" +
	"We are here to help resolve your issue.\n\n" +
	"👇 <b>Please pick an option below:</b>"

const menuText = "🤖 <b>Customer Complaint Service</b>\n\n" +
	"We are here to help with your issue.\n\n" +
	"👇 <b>Please pick an option:</b>"

const cancelledText = "❌ <b>Process cancelled</b>\n\n" +
	"Back to the main menu.\n\n" +
	"Please pick an option:"

const helpText = "🆘 <b>Help Center</b>\n\n" +
	"📋 <b>FILING A COMPLAINT:</b>\n" +
	"1. Pick <b>📝 New Complaint</b>\n" +
	"2. Type the <b>site name</b> you have an issue with\n" +
	"3. Enter your <b>full name</b>\n" +
	"4. Enter your <b>username/ID</b> on that site\n" +
	"5. Describe your <b>complaint</b> in detail\n" +
	"6. Send a <b>photo of evidence</b> (optional)\n\n" +
	"🔍 <b>CHECKING A TICKET:</b>\n" +
	"1. Pick <b>🔍 Check Ticket Status</b>\n" +
	"2. Enter the <b>ticket number</b> you received\n\n" +
	"💡 Keep your ticket number safe — you will need it to check progress."

const promptReporterName = "Please send your <b>full name</b>:\n\n✍️ <b>Type your full name:</b>"

const promptComplaint = "📋 <b>Describe your complaint in detail:</b>\n\n✍️ <b>Type your complaint:</b>"

const promptEvidence = "📸 <b>Supporting Evidence (optional)</b>\n\n" +
	"Pick an option:\n\n" +
	"• 📸 Send Photo Evidence — upload a photo/screenshot\n" +
	"• ⏩ Skip Without Photo — continue without evidence\n\n" +
	"💡 Evidence photos help us resolve your complaint faster!"

const promptUploadPhoto = "📸 <b>Please send the evidence photo now:</b>\n\n" +
	"📎 <b>Upload a photo from your gallery...</b>"

const promptTicketID = "🔍 <b>Check Ticket Status</b>\n\n" +
	"Please enter the <b>ticket number</b> you received:\n\n" +
	"🎫 <b>Format:</b> <code>CODE-DATE-NUMBER</code>\n\n" +
	"✍️ <b>Type your ticket number:</b>"

const photoRejectedText = "❌ <b>Could not process the photo.</b>\n\n" +
	"Please try again or pick '⏩ Skip Without Photo'."

const photoNotExpectedText = "❌ A photo is not needed right now.\n\nPlease pick an option:"

const evidenceRepromptText = "📸 Please send an evidence photo, or pick '⏩ Skip Without Photo'."

const storeDisruptionText = "❌ Sorry, a system disruption occurred. Please try again later.\n\nPlease pick an option:"

const sessionErrorText = "❌ <b>Something went wrong in the process.</b>\n\n" +
	"Please start again from the menu below:"

const ticketNotFoundText = "❌ <b>Ticket not found.</b>\n\n" +
	"Make sure:\n" +
	"• The ticket number is correct\n" +
	"• There are no typos\n" +
	"• The ticket was filed by you\n\n" +
	"Please try again:"

func promptCategory() string {
	return "📝 <b>New Complaint</b>\n\n" +
		"Please type the <b>site name</b> you have an issue with:\n\n" +
		"🌐 Supported sites: " + strings.Join(domain.CategoryNames(), ", ") + "\n\n" +
		"✍️ <b>Type the site name:</b>"
}

func repromptCategory() string {
	return "❌ <b>Unrecognized site!</b>\n\n" +
		"Supported sites: " + strings.Join(domain.CategoryNames(), ", ") + "\n\n" +
		"✍️ <b>Type a valid site name:</b>"
}

func promptAccountRef(categoryName string) string {
	return fmt.Sprintf("🆔 <b>Enter your username / ID on %s:</b>\n\n"+
		"✍️ <b>Type your username or ID:</b>", notify.Escape(categoryName))
}

func categoryAcceptedText(categoryName string) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s", notify.Escape(categoryName), promptReporterName)
}

func successText(record domain.TicketRecord) string {
	return fmt.Sprintf(
		"🎉 <b>COMPLAINT FILED SUCCESSFULLY!</b>\n\n"+
			"✅ <b>Thank you, %s!</b>\n\n"+
			"📋 <b>DETAILS:</b>\n"+
			"• 🌐 <b>Site:</b> %s\n"+
			"• 🎫 <b>Ticket Number:</b> <code>%s</code>\n"+
			"• 📊 <b>Status:</b> Pending\n"+
			"• ⏰ <b>Filed:</b> %s\n"+
			"• 👤 <b>Your User ID:</b> <code>%s</code>\n\n"+
			"⚠️ <b>IMPORTANT: SAVE THIS INFORMATION!</b>\n"+
			"• Ticket number: <code>%s</code>\n"+
			"• User ID: <code>%s</code>\n\n"+
			"🔍 Use <b>🔍 Check Ticket Status</b> to follow progress.\n\n"+
			"📞 <b>Our team will contact you shortly!</b>",
		notify.Escape(record.ReporterName),
		notify.Escape(record.CategoryName),
		notify.Escape(record.TicketID),
		notify.Escape(record.CreatedAt.Format(domain.TimestampLayout)),
		notify.Escape(record.ContactUserID),
		notify.Escape(record.TicketID),
		notify.Escape(record.ContactUserID),
	)
}

var statusBadges = map[string]string{
	string(domain.TicketStatusPending):              "🟡",
	string(domain.TicketStatusInProgress):           "🔵",
	string(domain.TicketStatusResolved):             "✅",
	string(domain.TicketStatusRejected):             "❌",
	string(domain.TicketStatusAwaitingConfirmation): "🟠",
}

func renderStatus(view *status.TicketView) string {
	badge, ok := statusBadges[strings.ToUpper(strings.TrimSpace(view.Status))]
	if !ok {
		badge = "⚪"
	}
	return fmt.Sprintf(
		"📋 <b>COMPLAINT STATUS</b>\n\n"+
			"%s <b>Status:</b> <b>%s</b>\n"+
			"🎫 <b>Ticket ID:</b> <code>%s</code>\n"+
			"🌐 <b>Site:</b> %s\n"+
			"👤 <b>Name:</b> %s\n"+
			"🆔 <b>Account:</b> %s\n"+
			"💬 <b>Complaint:</b> %s\n"+
			"⏰ <b>Filed:</b> %s\n\n"+
			"Thank you for using our service! 🙏",
		badge,
		notify.Escape(view.Status),
		notify.Escape(view.TicketID),
		notify.Escape(view.CategoryName),
		notify.Escape(view.ReporterName),
		notify.Escape(view.AccountRef),
		notify.Escape(view.Complaint),
		notify.Escape(view.CreatedAt),
	)
}
