package domain

import "time"

// TicketStatus enumerates lifecycle states for complaint tickets. Only
// Pending is ever written by this system; the rest are set by the
// back-office process editing the record store directly.
type TicketStatus string

const (
	TicketStatusPending              TicketStatus = "PENDING"
	TicketStatusInProgress           TicketStatus = "IN_PROGRESS"
	TicketStatusResolved             TicketStatus = "RESOLVED"
	TicketStatusRejected             TicketStatus = "REJECTED"
	TicketStatusAwaitingConfirmation TicketStatus = "AWAITING_CONFIRMATION"
)

// NoEvidence is the sentinel stored when the reporter skipped the
// evidence step.
const NoEvidence = "no evidence"

// Record column positions, matching the append order below. The record
// store may or may not surface a header row; consumers that cannot find
// one fall back to these positions.
const (
	ColCreatedAt = iota
	ColTicketID
	ColCategory
	ColReporterName
	ColAccountRef
	ColComplaint
	ColEvidence
	ColContactHandle
	ColContactUserID
	ColContactMethod
	ColReporterChatName
	ColStatus
)

// HeaderRow is the canonical header written by store adapters that
// maintain one.
var HeaderRow = []string{
	"Created At",
	"Ticket ID",
	"Category",
	"Reporter Name",
	"Account Ref",
	"Complaint",
	"Evidence",
	"Contact Handle",
	"Contact User ID",
	"Contact Method",
	"Chat Name",
	"Status",
}

// TimestampLayout is the wall-clock format stored in the CreatedAt
// column, rendered in the configured local zone.
const TimestampLayout = "02/01/2006 15:04:05"

// TicketRecord is one submitted complaint, persisted as an append-only
// row and never updated or deleted by this system.
type TicketRecord struct {
	TicketID           string
	CreatedAt          time.Time
	CategoryName       string
	ReporterName       string
	ExternalAccountRef string
	ComplaintText      string
	EvidenceRef        string
	ContactHandle      string
	ContactUserID      string
	ContactMethod      string
	ReporterChatName   string
	Status             TicketStatus
}

// Row serializes the record into the append column order.
func (t TicketRecord) Row() []string {
	return []string{
		t.CreatedAt.Format(TimestampLayout),
		t.TicketID,
		t.CategoryName,
		t.ReporterName,
		t.ExternalAccountRef,
		t.ComplaintText,
		t.EvidenceRef,
		t.ContactHandle,
		t.ContactUserID,
		t.ContactMethod,
		t.ReporterChatName,
		string(t.Status),
	}
}
