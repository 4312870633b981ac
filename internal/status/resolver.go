// Package status resolves a ticket ID to its current state for the
// user who filed it. Lookups mirror the issuer's schema-agnostic
// philosophy: use the header row when one is recognizable, otherwise
// scan every cell.
package status

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
	"github.com/kopaska88/pengaduan-jokerbola/pkg/util"
)

// TicketView is the subset of a record rendered back to the reporter.
type TicketView struct {
	TicketID     string
	CategoryName string
	ReporterName string
	AccountRef   string
	Complaint    string
	CreatedAt    string
	Status       string
}

// Resolver looks tickets up and enforces ownership.
type Resolver struct {
	records   store.RecordStore
	operators map[int64]struct{}
	logger    *zap.Logger
}

// NewResolver constructs a resolver. Operator IDs bypass the ownership
// check and may inspect any ticket.
func NewResolver(records store.RecordStore, operatorIDs []int64, logger *zap.Logger) *Resolver {
	operators := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		operators[id] = struct{}{}
	}
	return &Resolver{records: records, operators: operators, logger: logger}
}

// Lookup finds the ticket and verifies the requester owns it. An
// ownership mismatch renders the same NOT_FOUND as a genuine miss so
// the response never reveals that the ticket exists.
func (r *Resolver) Lookup(ctx context.Context, ticketID string, requestingUserID int64) (*TicketView, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, util.NewNotFound("ticket")
	}

	rows, err := r.records.ReadAllRecords(ctx)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}

	header, dataRows := splitHeader(rows)
	row := findTicketRow(header, dataRows, ticketID)
	if row == nil {
		return nil, util.NewNotFound("ticket")
	}

	if _, isOperator := r.operators[requestingUserID]; !isOperator {
		ownerCell := cellFor(header, row, "Contact User ID", domain.ColContactUserID)
		if !ownsTicket(ownerCell, requestingUserID) {
			r.logger.Info("ownership mismatch on lookup, hiding ticket",
				zap.String("ticket_id", ticketID),
				zap.Int64("requester_id", requestingUserID))
			return nil, util.NewNotFound("ticket")
		}
	}

	return &TicketView{
		TicketID:     ticketID,
		CategoryName: cellFor(header, row, "Category", domain.ColCategory),
		ReporterName: cellFor(header, row, "Reporter Name", domain.ColReporterName),
		AccountRef:   cellFor(header, row, "Account Ref", domain.ColAccountRef),
		Complaint:    cellFor(header, row, "Complaint", domain.ColComplaint),
		CreatedAt:    cellFor(header, row, "Created At", domain.ColCreatedAt),
		Status:       cellFor(header, row, "Status", domain.ColStatus),
	}, nil
}

// splitHeader recognizes a header row by the presence of a "Ticket ID"
// column label. Stores without one yield a nil header.
func splitHeader(rows [][]string) ([]string, [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	if columnIndex(rows[0], "Ticket ID") >= 0 {
		return rows[0], rows[1:]
	}
	return nil, rows
}

// findTicketRow matches against the designated ID column when a header
// is present, else scans every cell of every row.
func findTicketRow(header []string, rows [][]string, ticketID string) []string {
	if idx := columnIndex(header, "Ticket ID"); idx >= 0 {
		for _, row := range rows {
			if idx < len(row) && row[idx] == ticketID {
				return row
			}
		}
		return nil
	}
	for _, row := range rows {
		for _, cell := range row {
			if cell == ticketID {
				return row
			}
		}
	}
	return nil
}

func ownsTicket(ownerCell string, userID int64) bool {
	return strings.TrimSpace(ownerCell) == strconv.FormatInt(userID, 10)
}

// cellFor reads a column by header label, falling back to the canonical
// position when the header is absent or lacks the label. Ragged rows
// yield "".
func cellFor(header, row []string, label string, fallbackIdx int) string {
	idx := columnIndex(header, label)
	if idx < 0 {
		idx = fallbackIdx
	}
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnIndex finds a header label case-insensitively.
func columnIndex(header []string, label string) int {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), label) {
			return i
		}
	}
	return -1
}
