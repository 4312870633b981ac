package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/config"
	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/events"
	"github.com/kopaska88/pengaduan-jokerbola/internal/notify"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
	"github.com/kopaska88/pengaduan-jokerbola/internal/session"
	"github.com/kopaska88/pengaduan-jokerbola/internal/status"
	"github.com/kopaska88/pengaduan-jokerbola/internal/store"
	"github.com/kopaska88/pengaduan-jokerbola/internal/ticket"
)

type reply struct {
	text     string
	keyboard Keyboard
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []reply
}

func (r *fakeReplier) Reply(_ context.Context, _ int64, text string, keyboard Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply{text: text, keyboard: keyboard})
	return nil
}

func (r *fakeReplier) last(t *testing.T) reply {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.replies)
	return r.replies[len(r.replies)-1]
}

type fakeFiles struct {
	url string
	err error
}

func (f *fakeFiles) FileURL(context.Context, string) (string, error) {
	return f.url, f.err
}

type fakeMessenger struct {
	mu       sync.Mutex
	attempts int
	sent     map[int64]int
}

func (m *fakeMessenger) SendToRecipient(_ context.Context, recipientID int64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.sent == nil {
		m.sent = map[int64]int{}
	}
	m.sent[recipientID]++
	return nil
}

type fixture struct {
	dispatcher *Dispatcher
	records    *store.MemoryStore
	sessions   *session.Store
	replier    *fakeReplier
	messenger  *fakeMessenger
	files      *fakeFiles
}

func newFixture(t *testing.T, operators []int64) *fixture {
	t.Helper()

	logger := zap.NewNop()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	records := store.NewMemoryStore()
	sessions := session.NewStore()
	replier := &fakeReplier{}
	messenger := &fakeMessenger{}
	files := &fakeFiles{url: "https://files.example.com/evidence.jpg"}
	metrics := observability.NewMetrics()

	issuer := ticket.NewIssuer(records, time.UTC, logger)
	issuer.SetClock(func() time.Time { return now })

	bus := events.NewInMemoryDispatcher(logger)
	notifier := notify.NewNotifier(messenger, operators,
		config.NotifyConfig{MaxAttempts: 3, RetryDelaySeconds: 2}, metrics, logger)
	notifier.SetSleep(func(time.Duration) {})
	notifier.RegisterHandlers(bus)

	d := NewDispatcher(Dependencies{
		Sessions: sessions,
		Records:  records,
		Issuer:   issuer,
		Resolver: status.NewResolver(records, operators, logger),
		Replier:  replier,
		Files:    files,
		Events:   bus,
		Metrics:  metrics,
		Logger:   logger,
		Location: time.UTC,
	})
	d.SetClock(func() time.Time { return now })

	return &fixture{
		dispatcher: d,
		records:    records,
		sessions:   sessions,
		replier:    replier,
		messenger:  messenger,
		files:      files,
	}
}

func inbound(userID int64, text string) Inbound {
	return Inbound{
		UserID: userID,
		Text:   text,
		Profile: ReporterProfile{
			FirstName: "Budi",
			LastName:  "Santoso",
			Username:  "budi",
		},
	}
}

func (f *fixture) say(ctx context.Context, userID int64, text string) {
	f.dispatcher.HandleText(ctx, inbound(userID, text))
}

// dataRows strips the seeded header from the store contents.
func (f *fixture) dataRows(t *testing.T) [][]string {
	t.Helper()
	rows, err := f.records.ReadAllRecords(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	return rows[1:]
}

func TestFullIntakeFilesOneTicketAndAlertsEveryOperator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []int64{100, 200})

	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "nagabola")
	f.say(ctx, 555, "Budi")
	f.say(ctx, 555, "budi123")
	f.say(ctx, 555, "can't withdraw")
	f.say(ctx, 555, "skip")

	rows := f.dataRows(t)
	require.Len(t, rows, 1, "exactly one record appended")
	row := rows[0]

	assert.Regexp(t, regexp.MustCompile(`^NB-20250101-\d{3}$`), row[domain.ColTicketID])
	assert.Equal(t, "NagaBola", row[domain.ColCategory])
	assert.Equal(t, "Budi", row[domain.ColReporterName])
	assert.Equal(t, "budi123", row[domain.ColAccountRef])
	assert.Equal(t, "can't withdraw", row[domain.ColComplaint])
	assert.Equal(t, domain.NoEvidence, row[domain.ColEvidence])
	assert.Equal(t, "@budi", row[domain.ColContactHandle])
	assert.Equal(t, "555", row[domain.ColContactUserID])
	assert.Equal(t, string(domain.TicketStatusPending), row[domain.ColStatus])

	// One fan-out attempt, every operator reached exactly once.
	assert.Equal(t, 2, f.messenger.attempts)
	assert.Equal(t, map[int64]int{100: 1, 200: 1}, f.messenger.sent)

	// The confirmation carries the ticket ID and the session is gone.
	assert.Contains(t, f.replier.last(t).text, row[domain.ColTicketID])
	assert.Equal(t, 0, f.sessions.Len())
}

func TestPhotoEvidenceRecordsFileURL(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []int64{100})

	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "jokerbola")
	f.say(ctx, 555, "Budi")
	f.say(ctx, 555, "budi123")
	f.say(ctx, 555, "can't withdraw")
	f.say(ctx, 555, BtnSendPhoto)

	in := inbound(555, "")
	in.PhotoFileID = "file-123"
	f.dispatcher.HandlePhoto(ctx, in)

	rows := f.dataRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://files.example.com/evidence.jpg", rows[0][domain.ColEvidence])
}

func TestPhotoOutsideEvidenceStepIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	in := inbound(555, "")
	in.PhotoFileID = "file-123"
	f.dispatcher.HandlePhoto(ctx, in)

	assert.Equal(t, photoNotExpectedText, f.replier.last(t).text)
	assert.Empty(t, f.dataRows(t))
}

func TestUnrecognizedCategoryRepromptsWithoutAdvancing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "some other site")

	assert.Contains(t, f.replier.last(t).text, "Unrecognized site")
	snap := f.sessions.GetOrCreate(555)
	assert.Equal(t, domain.StepCategory, snap.Step)

	// A valid name still advances afterwards.
	f.say(ctx, 555, "ligapedia")
	snap = f.sessions.GetOrCreate(555)
	assert.Equal(t, domain.StepReporterName, snap.Step)
	assert.Equal(t, "LP", snap.Fields.CategoryCode)
}

func TestCancelMidIntakeDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []int64{100})

	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "jokerbola")
	f.say(ctx, 555, "Budi")
	f.say(ctx, 555, BtnCancel)

	assert.Equal(t, cancelledText, f.replier.last(t).text)
	assert.Equal(t, 0, f.sessions.Len())
	assert.Empty(t, f.dataRows(t))
	assert.Zero(t, f.messenger.attempts)

	// The next message behaves like a brand-new user.
	f.say(ctx, 555, "hello")
	assert.Equal(t, menuText, f.replier.last(t).text)
}

func TestControlButtonsShortCircuitAnyState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "jokerbola")

	// Mid-intake, the status button abandons the intake and switches
	// modes instead of being recorded as the reporter name.
	f.say(ctx, 555, BtnCheckStatus)
	snap := f.sessions.GetOrCreate(555)
	assert.Equal(t, domain.ModeStatusLookup, snap.Mode)
	assert.Equal(t, domain.StepAwaitTicketID, snap.Step)
	assert.Empty(t, snap.Fields.ReporterName)
}

func TestLookupIsSingleShot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []int64{100})

	// File a ticket first.
	f.say(ctx, 555, BtnNewComplaint)
	f.say(ctx, 555, "jokerbola")
	f.say(ctx, 555, "Budi")
	f.say(ctx, 555, "budi123")
	f.say(ctx, 555, "can't withdraw")
	f.say(ctx, 555, "skip")
	ticketID := f.dataRows(t)[0][domain.ColTicketID]

	f.say(ctx, 555, BtnCheckStatus)
	f.say(ctx, 555, ticketID)
	assert.Contains(t, f.replier.last(t).text, ticketID)
	assert.Contains(t, f.replier.last(t).text, string(domain.TicketStatusPending))

	// The session was cleared by the lookup; a second ticket ID is just
	// free text at the menu.
	assert.Equal(t, 0, f.sessions.Len())
	f.say(ctx, 555, ticketID)
	assert.Equal(t, menuText, f.replier.last(t).text)
}

func TestLookupUnknownTicketReportsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.say(ctx, 555, BtnCheckStatus)
	f.say(ctx, 555, "JB-20250101-999")

	assert.Equal(t, ticketNotFoundText, f.replier.last(t).text)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestCorruptedSessionRecoversToMenu(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// Force a combination no handler produces.
	require.NoError(t, f.sessions.WithLock(555, func(s *domain.Session) error {
		s.Mode = domain.ModeStatusLookup
		s.Step = domain.StepComplaint
		return nil
	}))

	f.say(ctx, 555, "anything")
	assert.Equal(t, sessionErrorText, f.replier.last(t).text)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestCommandsMirrorButtons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.dispatcher.HandleCommand(ctx, inbound(555, ""), CmdStart)
	assert.Equal(t, welcomeText, f.replier.last(t).text)

	f.dispatcher.HandleCommand(ctx, inbound(555, ""), CmdNew)
	snap := f.sessions.GetOrCreate(555)
	assert.Equal(t, domain.ModeIntake, snap.Mode)

	f.dispatcher.HandleCommand(ctx, inbound(555, ""), CmdCancel)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestReporterWithoutUsernameFallsBackToUserID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	in := inbound(777, BtnNewComplaint)
	in.Profile = ReporterProfile{}
	f.dispatcher.HandleText(ctx, in)

	steps := []string{"jokerbola", "Budi", "budi123", "can't withdraw", "skip"}
	for _, text := range steps {
		msg := in
		msg.Text = text
		f.dispatcher.HandleText(ctx, msg)
	}

	rows := f.dataRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, "ID: 777", rows[0][domain.ColContactHandle])
	assert.Equal(t, domain.ContactMethodUserID, rows[0][domain.ColContactMethod])
	assert.Equal(t, "no name", rows[0][domain.ColReporterChatName])
}

func TestConcurrentSessionsStayIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, []int64{100})

	users := []int64{1, 2, 3, 4, 5}
	var wg sync.WaitGroup
	for _, userID := range users {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			in := Inbound{UserID: id, Profile: ReporterProfile{FirstName: "User", Username: "u"}}
			for _, text := range []string{BtnNewComplaint, "jokerbola", "Budi", "budi123", "complaint", "skip"} {
				msg := in
				msg.Text = text
				f.dispatcher.HandleText(ctx, msg)
			}
		}(userID)
	}
	wg.Wait()

	rows := f.dataRows(t)
	require.Len(t, rows, len(users))

	// Each user produced exactly one well-formed record of their own.
	byUser := map[string]int{}
	for _, row := range rows {
		assert.True(t, strings.HasPrefix(row[domain.ColTicketID], "JB-20250101-"))
		assert.Equal(t, "complaint", row[domain.ColComplaint])
		byUser[row[domain.ColContactUserID]]++
	}
	for _, userID := range users {
		assert.Equal(t, 1, byUser[strconv.FormatInt(userID, 10)])
	}
}

func TestSequentialTicketsGetIncreasingSequenceNumbers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	for i := 0; i < 3; i++ {
		f.say(ctx, 555, BtnNewComplaint)
		f.say(ctx, 555, "jokerbola")
		f.say(ctx, 555, "Budi")
		f.say(ctx, 555, "budi123")
		f.say(ctx, 555, "can't withdraw")
		f.say(ctx, 555, "skip")
	}

	rows := f.dataRows(t)
	require.Len(t, rows, 3)
	assert.Equal(t, "JB-20250101-001", rows[0][domain.ColTicketID])
	assert.Equal(t, "JB-20250101-002", rows[1][domain.ColTicketID])
	assert.Equal(t, "JB-20250101-003", rows[2][domain.ColTicketID])
}
