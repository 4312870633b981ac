// Package notify fans a "new ticket" alert out to every configured
// operator. The whole fan-out succeeds once at least one operator
// received the message; zero successes trigger a bounded retry.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kopaska88/pengaduan-jokerbola/internal/config"
	"github.com/kopaska88/pengaduan-jokerbola/internal/domain"
	"github.com/kopaska88/pengaduan-jokerbola/internal/events"
	"github.com/kopaska88/pengaduan-jokerbola/internal/observability"
	"github.com/kopaska88/pengaduan-jokerbola/pkg/util"
)

// Messenger delivers a formatted message to a single recipient.
type Messenger interface {
	SendToRecipient(ctx context.Context, recipientID int64, message string) error
}

// Notifier formats and fans out ticket alerts.
type Notifier struct {
	messenger   Messenger
	recipients  []int64
	maxAttempts int
	retryDelay  time.Duration
	sleep       func(time.Duration)
	bus         events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewNotifier constructs a notifier for the configured operator list.
func NewNotifier(messenger Messenger, recipients []int64, cfg config.NotifyConfig, metrics *observability.Metrics, logger *zap.Logger) *Notifier {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Notifier{
		messenger:   messenger,
		recipients:  recipients,
		maxAttempts: maxAttempts,
		retryDelay:  cfg.RetryDelay(),
		sleep:       time.Sleep,
		metrics:     metrics,
		logger:      logger,
	}
}

// SetSleep overrides the inter-attempt delay function, for tests.
func (n *Notifier) SetSleep(sleep func(time.Duration)) {
	n.sleep = sleep
}

// RegisterHandlers subscribes the notifier to ticket creation events
// and keeps the dispatcher for publishing exhaustion events back.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	n.bus = dispatcher
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
}

func (n *Notifier) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected ticket_created payload", zap.String("ticket_id", event.TicketID))
		return nil
	}
	return n.NotifyNewTicket(ctx, payload.Record)
}

// NotifyNewTicket sends the alert to every recipient, retrying the
// whole fan-out while no recipient has been reached. Exhausting all
// attempts is a hard delivery failure; the persisted ticket stands
// regardless.
func (n *Notifier) NotifyNewTicket(ctx context.Context, record domain.TicketRecord) error {
	if len(n.recipients) == 0 {
		n.logger.Warn("no operator recipients configured", zap.String("ticket_id", record.TicketID))
		return nil
	}

	message := FormatTicketAlert(record)

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		n.metrics.Inc(observability.MetricNotifyAttempts)
		delivered := n.fanOut(ctx, record.TicketID, message)
		if delivered > 0 {
			n.logger.Info("ticket alert delivered",
				zap.String("ticket_id", record.TicketID),
				zap.Int("delivered", delivered),
				zap.Int("recipients", len(n.recipients)),
				zap.Int("attempt", attempt))
			return nil
		}
		if attempt < n.maxAttempts {
			n.sleep(n.retryDelay)
		}
	}

	n.metrics.Inc(observability.MetricNotifyFailures)
	err := util.NewNotifyFailure(record.TicketID, nil)
	n.logger.Error("all notification attempts exhausted",
		zap.String("ticket_id", record.TicketID),
		zap.Int("attempts", n.maxAttempts))
	if n.bus != nil {
		_ = n.bus.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventNotifyExhausted,
			TicketID:  record.TicketID,
			Timestamp: time.Now(),
			Payload:   events.NotifyExhaustedPayload{Attempts: n.maxAttempts},
		})
	}
	return err
}

// fanOut sends independently to each recipient and returns how many
// deliveries succeeded. One unreachable operator never blocks the rest.
func (n *Notifier) fanOut(ctx context.Context, ticketID, message string) int {
	delivered := 0
	for _, recipientID := range n.recipients {
		if err := n.messenger.SendToRecipient(ctx, recipientID, message); err != nil {
			n.logger.Warn("failed to reach operator",
				zap.Int64("recipient_id", recipientID),
				zap.String("ticket_id", ticketID),
				zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}
