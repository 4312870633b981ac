package domain

import "time"

// Mode identifies which conversation flow a user is currently in.
type Mode string

const (
	ModeNone         Mode = ""
	ModeIntake       Mode = "intake"
	ModeStatusLookup Mode = "status_lookup"
)

// Step identifies the position inside a flow. Steps are scoped to a Mode.
type Step string

const (
	StepNone Step = ""

	// Intake steps, in order.
	StepCategory     Step = "category"
	StepReporterName Step = "reporter_name"
	StepAccountRef   Step = "account_ref"
	StepComplaint    Step = "complaint"
	StepEvidence     Step = "evidence"
	StepCompleted    Step = "completed"

	// StatusLookup has a single step.
	StepAwaitTicketID Step = "await_ticket_id"
)

// Contact methods recorded for the reporter, depending on whether the
// chat platform exposes a public handle for them.
const (
	ContactMethodUsername = "Username"
	ContactMethodUserID   = "User ID"
)

// IntakeFields holds the partially collected form values plus the
// reporter's chat-platform identity captured along the way.
type IntakeFields struct {
	CategoryName       string
	CategoryCode       string
	ReporterName       string
	ExternalAccountRef string
	ComplaintText      string
	EvidenceRef        string
	ContactHandle      string
	ContactMethod      string
	ReporterChatName   string
}

// Session is the per-user conversation state. At most one exists per
// user; a session with Mode == ModeNone is equivalent to no session.
// All mutation happens under the session store's per-user lock.
type Session struct {
	UserID         int64
	Mode           Mode
	Step           Step
	Fields         IntakeFields
	LastActivityAt time.Time
}
