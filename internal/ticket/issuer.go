// Package ticket derives collision-free human-readable ticket IDs from
// the shared record store. IDs look like JB-20250101-003: category
// code, day in the configured zone, zero-padded per-day sequence.
package ticket

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
)

const dateLayout = "20060102"

// ensureUniqueMaxRounds caps the re-issue loop so a store that keeps
// reporting the candidate as taken cannot spin the issuer forever.
const ensureUniqueMaxRounds = 10

// Issuer computes the next free sequence for a category and day by
// scanning every cell of the store, so issuance keeps working whatever
// column layout the back office maintains.
type Issuer struct {
	records store.RecordStore
	loc     *time.Location
	clock   func() time.Time
	logger  *zap.Logger
}

// NewIssuer constructs an issuer bound to a record store and a fixed
// local zone.
func NewIssuer(records store.RecordStore, loc *time.Location, logger *zap.Logger) *Issuer {
	return &Issuer{
		records: records,
		loc:     loc,
		clock:   time.Now,
		logger:  logger,
	}
}

// SetClock overrides the time source, for tests.
func (i *Issuer) SetClock(clock func() time.Time) {
	i.clock = clock
}

// Issue returns the next ticket ID for the category code: the maximum
// sequence found in the store for today plus one. When the store is
// unreadable it degrades to a time-derived best-effort ID instead of
// failing the intake.
func (i *Issuer) Issue(ctx context.Context, code string) string {
	now := i.clock().In(i.loc)
	rows, err := i.records.ReadAllRecords(ctx)
	if err != nil {
		i.logger.Error("record store unreadable, using fallback ticket id", zap.Error(err))
		return i.fallbackID(code, now)
	}

	pattern := regexp.MustCompile(
		fmt.Sprintf(`^%s-%s-(\d+)$`, regexp.QuoteMeta(code), now.Format(dateLayout)))

	maxSeq := 0
	for _, row := range rows {
		for _, cell := range row {
			m := pattern.FindStringSubmatch(cell)
			if m == nil {
				continue
			}
			seq, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if seq > maxSeq {
				maxSeq = seq
			}
		}
	}

	return fmt.Sprintf("%s-%s-%03d", code, now.Format(dateLayout), maxSeq+1)
}

// EnsureUnique re-reads the store and re-issues while the candidate is
// already present verbatim in any cell. The scan-then-append sequence
// is not atomic against concurrent writers, so this bounds rather than
// eliminates the race window.
func (i *Issuer) EnsureUnique(ctx context.Context, candidate, code string) string {
	for round := 0; round < ensureUniqueMaxRounds; round++ {
		rows, err := i.records.ReadAllRecords(ctx)
		if err != nil {
			// Cannot verify; the candidate is the best answer available.
			i.logger.Warn("uniqueness check skipped, store unreadable", zap.Error(err))
			return candidate
		}
		if !containsCell(rows, candidate) {
			return candidate
		}
		i.logger.Warn("ticket id collision, re-issuing", zap.String("candidate", candidate))
		candidate = i.Issue(ctx, code)
	}

	i.logger.Error("ticket id still colliding after re-issue rounds, using fallback",
		zap.String("candidate", candidate))
	return i.fallbackID(code, i.clock().In(i.loc))
}

// fallbackID favors uniqueness over pretty sequencing: sub-day time
// component plus a random suffix so two IDs minted in the same second
// still differ.
func (i *Issuer) fallbackID(code string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%s",
		code, now.Format(dateLayout), now.Format("150405"), uuid.NewString()[:4])
}

func containsCell(rows [][]string, value string) bool {
	for _, row := range rows {
		for _, cell := range row {
			if cell == value {
				return true
			}
		}
	}
	return false
}
