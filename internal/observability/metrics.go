package observability

import "sync"

// Counter names tracked across the bot.
const (
	MetricUpdatesReceived  = "updates_received"
	MetricUpdatesDeduped   = "updates_deduped"
	MetricTicketsCreated   = "tickets_created"
	MetricLookupsPerformed = "lookups_performed"
	MetricNotifyAttempts   = "notify_attempts"
	MetricNotifyFailures   = "notify_failures"
	MetricSessionsSwept    = "sessions_swept"
	MetricCorruptedStates  = "corrupted_states"
)

// Metrics provides basic in-memory counters exposed on the ops surface.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{counters: make(map[string]int64)}
}

// Inc increments a named counter by one.
func (m *Metrics) Inc(name string) {
	m.Add(name, 1)
}

// Add increments a named counter by delta.
func (m *Metrics) Add(name string, delta int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += delta
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}
