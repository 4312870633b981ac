// Package conversation drives the per-user intake and status-lookup
// state machine. Every session read or write happens under that user's
// lock; replies and store round-trips happen outside it.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/events"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
	"github.com/kopaska88/pengaduan-jokerbola/internal/session"
	"github.com/kopaska88/pengaduan-jokerbola/internal/status"
	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
	"github.com/kopaska88/pengaduan-jokerbola/internal/ticket"
	"github.com/kopaska88/pengaduan-jokerbola/pkg/util"
)

// Dispatcher routes inbound events to the right handler based on the
// session's mode and step.
type Dispatcher struct {
	sessions   *session.Store
	records    store.RecordStore
	issuer     *ticket.Issuer
	resolver   *status.Resolver
	replier    Replier
	files      FileResolver
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      func() time.Time
	loc        *time.Location
}

// Dependencies bundles collaborators for the dispatcher.
type Dependencies struct {
	Sessions *session.Store
	Records  store.RecordStore
	Issuer   *ticket.Issuer
	Resolver *status.Resolver
	Replier  Replier
	Files    FileResolver
	Events   events.Dispatcher
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Location *time.Location
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(deps Dependencies) *Dispatcher {
	return &Dispatcher{
		sessions:   deps.Sessions,
		records:    deps.Records,
		issuer:     deps.Issuer,
		resolver:   deps.Resolver,
		replier:    deps.Replier,
		files:      deps.Files,
		dispatcher: deps.Events,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		clock:      time.Now,
		loc:        deps.Location,
	}
}

// SetClock overrides the time source, for tests.
func (d *Dispatcher) SetClock(clock func() time.Time) {
	d.clock = clock
}

// HandleCommand processes a slash command. Commands behave like the
// reserved control buttons and are honored in any state.
func (d *Dispatcher) HandleCommand(ctx context.Context, in Inbound, command string) {
	switch command {
	case CmdStart:
		d.resetToMenu(ctx, in.UserID, welcomeText)
	case CmdNew:
		d.startIntake(ctx, in.UserID)
	case CmdStatus:
		d.startLookup(ctx, in.UserID)
	case CmdHelp:
		d.showHelp(ctx, in.UserID)
	case CmdCancel:
		d.resetToMenu(ctx, in.UserID, cancelledText)
	default:
		d.showMenu(ctx, in.UserID)
	}
}

// HandleText processes a plain text event. Reserved control phrases
// short-circuit regardless of state; everything else is routed by the
// session's mode and step.
func (d *Dispatcher) HandleText(ctx context.Context, in Inbound) {
	text := strings.TrimSpace(in.Text)

	switch text {
	case BtnNewComplaint:
		d.startIntake(ctx, in.UserID)
		return
	case BtnCheckStatus:
		d.startLookup(ctx, in.UserID)
		return
	case BtnHelp, BtnHowTo:
		d.showHelp(ctx, in.UserID)
		return
	case BtnCancel, "cancel":
		d.resetToMenu(ctx, in.UserID, cancelledText)
		return
	}

	snap := d.sessions.GetOrCreate(in.UserID)
	d.logger.Debug("inbound text",
		zap.Int64("user_id", in.UserID),
		zap.String("mode", string(snap.Mode)),
		zap.String("step", string(snap.Step)))

	switch {
	case snap.Mode == domain.ModeIntake:
		d.advanceIntake(ctx, in, text)
	case snap.Mode == domain.ModeStatusLookup && snap.Step == domain.StepAwaitTicketID:
		d.performLookup(ctx, in.UserID, text)
	case snap.Mode == domain.ModeNone:
		d.showMenu(ctx, in.UserID)
	default:
		d.recoverCorrupted(ctx, in.UserID, snap.Mode, snap.Step)
	}
}

// HandlePhoto processes a binary attachment. Only meaningful at the
// evidence step; anywhere else the user is pointed back at the menu.
func (d *Dispatcher) HandlePhoto(ctx context.Context, in Inbound) {
	snap := d.sessions.GetOrCreate(in.UserID)
	if snap.Mode != domain.ModeIntake || snap.Step != domain.StepEvidence {
		d.reply(ctx, in.UserID, photoNotExpectedText, KeyboardMainMenu)
		return
	}

	// Fetching the file is a suspension point; the session may be reset
	// concurrently, so acceptEvidence re-validates under the lock.
	fileURL, err := d.files.FileURL(ctx, in.PhotoFileID)
	if err != nil {
		d.logger.Error("evidence fetch failed", zap.Int64("user_id", in.UserID), zap.Error(err))
		d.reply(ctx, in.UserID, photoRejectedText, KeyboardEvidence)
		return
	}

	d.acceptEvidence(ctx, in, fileURL)
}

// intakeOutcome tells the caller what to send after the lock is
// released.
type intakeOutcome struct {
	text     string
	keyboard Keyboard
	finalize bool
	corrupt  bool
}

func (d *Dispatcher) advanceIntake(ctx context.Context, in Inbound, text string) {
	var out intakeOutcome

	_ = d.sessions.WithLock(in.UserID, func(s *domain.Session) error {
		if s.Mode != domain.ModeIntake {
			// Reset raced this message; fall back to the menu.
			out = intakeOutcome{text: menuText, keyboard: KeyboardMainMenu}
			return nil
		}
		switch s.Step {
		case domain.StepCategory:
			category, ok := domain.MatchCategory(text)
			if !ok {
				out = intakeOutcome{text: repromptCategory(), keyboard: KeyboardCancelOnly}
				return nil
			}
			s.Fields.CategoryName = category.Name
			s.Fields.CategoryCode = category.Code
			s.Step = domain.StepReporterName
			out = intakeOutcome{text: categoryAcceptedText(category.Name), keyboard: KeyboardCancelOnly}

		case domain.StepReporterName:
			s.Fields.ReporterName = text
			applyProfile(&s.Fields, in)
			s.Step = domain.StepAccountRef
			out = intakeOutcome{text: promptAccountRef(s.Fields.CategoryName), keyboard: KeyboardCancelOnly}

		case domain.StepAccountRef:
			s.Fields.ExternalAccountRef = text
			s.Step = domain.StepComplaint
			out = intakeOutcome{text: promptComplaint, keyboard: KeyboardCancelOnly}

		case domain.StepComplaint:
			s.Fields.ComplaintText = text
			s.Step = domain.StepEvidence
			out = intakeOutcome{text: promptEvidence, keyboard: KeyboardEvidence}

		case domain.StepEvidence:
			if text == BtnSendPhoto {
				out = intakeOutcome{text: promptUploadPhoto, keyboard: KeyboardCancelOnly}
				return nil
			}
			if isSkipPhrase(text) {
				s.Fields.EvidenceRef = domain.NoEvidence
				s.Step = domain.StepCompleted
				out = intakeOutcome{finalize: true}
				return nil
			}
			out = intakeOutcome{text: evidenceRepromptText, keyboard: KeyboardEvidence}

		case domain.StepCompleted:
			// Finalize is in flight for this session; drop the input.

		default:
			out = intakeOutcome{corrupt: true}
		}
		return nil
	})

	switch {
	case out.corrupt:
		d.recoverCorrupted(ctx, in.UserID, domain.ModeIntake, domain.Step("unknown"))
	case out.finalize:
		d.finalize(ctx, in.UserID)
	case out.text != "":
		d.reply(ctx, in.UserID, out.text, out.keyboard)
	}
}

// acceptEvidence stores the evidence reference and completes the intake
// if the session is still at the evidence step; otherwise the state was
// reset mid-fetch and the input is dropped.
func (d *Dispatcher) acceptEvidence(ctx context.Context, in Inbound, evidenceRef string) {
	accepted := false
	_ = d.sessions.WithLock(in.UserID, func(s *domain.Session) error {
		if s.Mode != domain.ModeIntake || s.Step != domain.StepEvidence {
			return nil
		}
		s.Fields.EvidenceRef = evidenceRef
		s.Step = domain.StepCompleted
		accepted = true
		return nil
	})

	if !accepted {
		d.showMenu(ctx, in.UserID)
		return
	}
	d.reply(ctx, in.UserID, "✅ <b>Evidence received!</b>\n\n🔄 <b>Saving your complaint...</b>", KeyboardRemove)
	d.finalize(ctx, in.UserID)
}

// finalize turns a completed session into a persisted ticket. The
// completed step is consumed under the lock, so a duplicate trigger
// finds nothing to do.
func (d *Dispatcher) finalize(ctx context.Context, userID int64) {
	var fields domain.IntakeFields
	claimed := false
	_ = d.sessions.WithLock(userID, func(s *domain.Session) error {
		if s.Mode == domain.ModeIntake && s.Step == domain.StepCompleted {
			fields = s.Fields
			s.Mode = domain.ModeNone
			s.Step = domain.StepNone
			claimed = true
		}
		return nil
	})
	if !claimed {
		return
	}

	candidate := d.issuer.Issue(ctx, fields.CategoryCode)
	ticketID := d.issuer.EnsureUnique(ctx, candidate, fields.CategoryCode)

	record := domain.TicketRecord{
		TicketID:           ticketID,
		CreatedAt:          d.clock().In(d.loc),
		CategoryName:       fields.CategoryName,
		ReporterName:       fields.ReporterName,
		ExternalAccountRef: fields.ExternalAccountRef,
		ComplaintText:      fields.ComplaintText,
		EvidenceRef:        fields.EvidenceRef,
		ContactHandle:      fields.ContactHandle,
		ContactUserID:      fmt.Sprintf("%d", userID),
		ContactMethod:      fields.ContactMethod,
		ReporterChatName:   fields.ReporterChatName,
		Status:             domain.TicketStatusPending,
	}

	if err := d.records.AppendRecord(ctx, record.Row()); err != nil {
		d.logger.Error("failed to persist ticket",
			zap.String("ticket_id", ticketID),
			zap.Error(util.NewStoreUnavailable(err)))
		d.sessions.Clear(userID)
		d.reply(ctx, userID, storeDisruptionText, KeyboardMainMenu)
		return
	}

	d.metrics.Inc(observability.MetricTicketsCreated)
	d.logger.Info("ticket created",
		zap.String("ticket_id", ticketID),
		zap.Int64("user_id", userID),
		zap.String("category", fields.CategoryCode))

	d.reply(ctx, userID, successText(record), KeyboardMainMenu)

	_ = d.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketCreated,
		TicketID:  ticketID,
		UserID:    userID,
		Timestamp: record.CreatedAt,
		Payload:   events.TicketCreatedPayload{Record: record},
	})

	d.sessions.Clear(userID)
}

// performLookup resolves a ticket ID. Lookup is single shot: the
// session is cleared whatever the outcome.
func (d *Dispatcher) performLookup(ctx context.Context, userID int64, ticketID string) {
	defer d.sessions.Clear(userID)

	d.metrics.Inc(observability.MetricLookupsPerformed)
	view, err := d.resolver.Lookup(ctx, ticketID, userID)

	found := err == nil
	_ = d.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventStatusChecked,
		TicketID:  ticketID,
		UserID:    userID,
		Timestamp: d.clock().In(d.loc),
		Payload:   events.StatusCheckedPayload{Found: found},
	})

	switch {
	case err == nil:
		d.reply(ctx, userID, renderStatus(view), KeyboardMainMenu)
	case util.IsCode(err, "STORE_UNAVAILABLE"):
		d.logger.Error("status lookup failed", zap.String("ticket_id", ticketID), zap.Error(err))
		d.reply(ctx, userID, storeDisruptionText, KeyboardMainMenu)
	default:
		d.reply(ctx, userID, ticketNotFoundText, KeyboardMainMenu)
	}
}

func (d *Dispatcher) startIntake(ctx context.Context, userID int64) {
	d.sessions.Clear(userID)
	_ = d.sessions.WithLock(userID, func(s *domain.Session) error {
		s.Mode = domain.ModeIntake
		s.Step = domain.StepCategory
		return nil
	})
	d.reply(ctx, userID, promptCategory(), KeyboardCancelOnly)
}

func (d *Dispatcher) startLookup(ctx context.Context, userID int64) {
	d.sessions.Clear(userID)
	_ = d.sessions.WithLock(userID, func(s *domain.Session) error {
		s.Mode = domain.ModeStatusLookup
		s.Step = domain.StepAwaitTicketID
		return nil
	})
	d.reply(ctx, userID, promptTicketID, KeyboardCancelOnly)
}

func (d *Dispatcher) showHelp(ctx context.Context, userID int64) {
	d.reply(ctx, userID, helpText, KeyboardMainMenu)
}

func (d *Dispatcher) showMenu(ctx context.Context, userID int64) {
	d.reply(ctx, userID, menuText, KeyboardMainMenu)
}

func (d *Dispatcher) resetToMenu(ctx context.Context, userID int64, text string) {
	d.sessions.Clear(userID)
	d.reply(ctx, userID, text, KeyboardMainMenu)
}

// recoverCorrupted is the defensive fallback for unreachable mode/step
// combinations: log, clear, back to the menu.
func (d *Dispatcher) recoverCorrupted(ctx context.Context, userID int64, mode domain.Mode, step domain.Step) {
	d.metrics.Inc(observability.MetricCorruptedStates)
	d.logger.Warn("corrupted session state",
		zap.Int64("user_id", userID),
		zap.String("mode", string(mode)),
		zap.String("step", string(step)),
		zap.Error(util.NewCorruptedSession("unexpected mode/step combination")))
	d.sessions.Clear(userID)
	d.reply(ctx, userID, sessionErrorText, KeyboardMainMenu)
}

func (d *Dispatcher) reply(ctx context.Context, userID int64, text string, keyboard Keyboard) {
	if err := d.replier.Reply(ctx, userID, text, keyboard); err != nil {
		d.logger.Error("failed to send reply", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// applyProfile captures the reporter's chat identity alongside the form
// data, preferring the public handle when one exists.
func applyProfile(fields *domain.IntakeFields, in Inbound) {
	fullName := strings.TrimSpace(in.Profile.FirstName + " " + in.Profile.LastName)
	if fullName == "" {
		fullName = "no name"
	}
	fields.ReporterChatName = fullName

	if in.Profile.Username != "" {
		fields.ContactHandle = "@" + in.Profile.Username
		fields.ContactMethod = domain.ContactMethodUsername
	} else {
		fields.ContactHandle = fmt.Sprintf("ID: %d", in.UserID)
		fields.ContactMethod = domain.ContactMethodUserID
	}
}
