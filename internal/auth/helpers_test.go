package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// fakeClock is a controllable time source shared by a test's service.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeAdapter is an in-memory persistence adapter with injectable failures.
type fakeAdapter struct {
	mu          sync.Mutex
	records     map[domain.TokenKind]map[string]*domain.CredentialRecord
	saveErr     error
	loadErr     error
	deleteErr   error
	saveCalls   int
	deleteCalls int

	// beforeDelete runs with no lock held, letting a test stall a durable
	// delete mid-flight.
	beforeDelete func(kind domain.TokenKind, token string)
}

func newFakeAdapter() *fakeAdapter {
	records := make(map[domain.TokenKind]map[string]*domain.CredentialRecord)
	for _, kind := range domain.AllTokenKinds {
		records[kind] = make(map[string]*domain.CredentialRecord)
	}
	return &fakeAdapter{records: records}
}

func (a *fakeAdapter) Save(_ context.Context, record *domain.CredentialRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveCalls++
	if a.saveErr != nil {
		return a.saveErr
	}
	copied := *record
	a.records[record.Kind][record.Token] = &copied
	return nil
}

func (a *fakeAdapter) LoadAll(_ context.Context, kind domain.TokenKind) ([]*domain.CredentialRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	records := make([]*domain.CredentialRecord, 0, len(a.records[kind]))
	for _, record := range a.records[kind] {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}

func (a *fakeAdapter) DeleteByToken(_ context.Context, kind domain.TokenKind, token string) error {
	a.mu.Lock()
	hook := a.beforeDelete
	a.mu.Unlock()
	if hook != nil {
		hook(kind, token)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleteCalls++
	if a.deleteErr != nil {
		return a.deleteErr
	}
	delete(a.records[kind], token)
	return nil
}

func (a *fakeAdapter) has(kind domain.TokenKind, token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.records[kind][token]
	return ok
}

func (a *fakeAdapter) count(kind domain.TokenKind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records[kind])
}

func (a *fakeAdapter) setSaveErr(err error) {
	a.mu.Lock()
	a.saveErr = err
	a.mu.Unlock()
}

func (a *fakeAdapter) setLoadErr(err error) {
	a.mu.Lock()
	a.loadErr = err
	a.mu.Unlock()
}

func (a *fakeAdapter) setDeleteErr(err error) {
	a.mu.Lock()
	a.deleteErr = err
	a.mu.Unlock()
}

func (a *fakeAdapter) setBeforeDelete(hook func(kind domain.TokenKind, token string)) {
	a.mu.Lock()
	a.beforeDelete = hook
	a.mu.Unlock()
}

// captureSink records audit events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	eventType string
	fields    map[string]any
}

func (s *captureSink) LogAuthEvent(eventType string, fields map[string]any) {
	s.mu.Lock()
	s.events = append(s.events, capturedEvent{eventType: eventType, fields: fields})
	s.mu.Unlock()
}

func (s *captureSink) reasons(eventType string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reasons []string
	for _, event := range s.events {
		if event.eventType != eventType {
			continue
		}
		if reason, ok := event.fields["reason"].(string); ok {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

func testOptions(clock *fakeClock) Options {
	return Options{
		UserTokenTTL:    time.Hour,
		ServiceTokenTTL: 30 * 24 * time.Hour,
		APIKeyTTL:       365 * 24 * time.Hour,
		RefreshTokenTTL: 14 * 24 * time.Hour,
		ReportPath:      func(path string) bool { return strings.HasPrefix(path, "/api/reports") },
		Clock:           clock.Now,
	}
}

func newTestService(adapter *fakeAdapter) (*Service, *fakeClock) {
	clock := newFakeClock()
	return NewService(adapter, nil, testOptions(clock)), clock
}
