package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for request traffic and token
// lifecycle events.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	authCount    map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		authCount:    make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordAuthEvent increments per event-type/outcome counters for token
// issuance, validation, revocation, refresh and purge.
func (m *Metrics) RecordAuthEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	key := eventType + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authCount[key]++
}

// AuthEventCount returns the counter for an event-type/outcome pair.
func (m *Metrics) AuthEventCount(eventType, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authCount[eventType+"|"+outcome]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
