package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// PersistenceAdapter is the narrow durable-storage contract the core depends
// on. Implementations live in internal/repository.
type PersistenceAdapter interface {
	Save(ctx context.Context, record *domain.CredentialRecord) error
	LoadAll(ctx context.Context, kind domain.TokenKind) ([]*domain.CredentialRecord, error)
	DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) error
}

// AuditSink receives one event per issue / validation failure / revoke /
// refresh. Storage and format of the sink are the host's concern.
type AuditSink interface {
	LogAuthEvent(eventType string, fields map[string]any)
}

// Audit event types emitted by the core.
const (
	EventTokenIssued      = "token_issued"
	EventValidationFailed = "token_validation_failed"
	EventTokenRevoked     = "token_revoked"
	EventTokenRefreshed   = "token_refreshed"
	EventTokensPurged     = "tokens_purged"
)

// NopAuditSink discards all events.
type NopAuditSink struct{}

func (NopAuditSink) LogAuthEvent(string, map[string]any) {}

// Options is the configuration surface the host supplies at startup.
type Options struct {
	UserTokenTTL    time.Duration
	ServiceTokenTTL time.Duration
	APIKeyTTL       time.Duration
	RefreshTokenTTL time.Duration

	// ReportPath classifies request paths that may proceed anonymously when
	// strict mode is off.
	ReportPath func(path string) bool

	// AutoProvisionMachines lets unknown machines self-register during the
	// service token flow.
	AutoProvisionMachines bool

	// Clock overrides the time source; defaults to UTC wall clock.
	Clock func() time.Time
}

// Service is the process-wide token service. It is constructed once at
// startup and handed to every collaborator that needs it.
type Service struct {
	store   *Store
	adapter PersistenceAdapter
	audit   AuditSink
	opts    Options
	now     func() time.Time

	// pending holds durable deletes that failed during a purge sweep; they
	// are retried on the next cycle.
	pendingMu sync.Mutex
	pending   map[domain.TokenKind][]string

	// tombstones marks tokens whose durable delete may still be in flight.
	// The cold-cache repopulation path must not re-insert a tombstoned token:
	// without the marker, a revoked or rotated token could resurrect from its
	// not-yet-deleted durable row. Settled entries are dropped each purge
	// sweep.
	tombMu     sync.Mutex
	tombstones map[domain.TokenKind]map[string]time.Time
}

// NewService wires the token service. A nil sink disables auditing.
func NewService(adapter PersistenceAdapter, sink AuditSink, opts Options) *Service {
	if sink == nil {
		sink = NopAuditSink{}
	}
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if opts.ReportPath == nil {
		opts.ReportPath = func(string) bool { return false }
	}
	return &Service{
		store:      NewStore(),
		adapter:    adapter,
		audit:      sink,
		opts:       opts,
		now:        now,
		pending:    make(map[domain.TokenKind][]string),
		tombstones: make(map[domain.TokenKind]map[string]time.Time),
	}
}

// Store exposes the cache for the purger and tests.
func (s *Service) Store() *Store {
	return s.store
}

// WarmStart loads all durable credentials into the cache, dropping rows that
// expired while the process was down. Called once at boot, before the first
// request is served.
func (s *Service) WarmStart(ctx context.Context) error {
	now := s.now()
	for _, kind := range domain.AllTokenKinds {
		records, err := s.adapter.LoadAll(ctx, kind)
		if err != nil {
			return fmt.Errorf("%w: load %s: %v", ErrPersistence, kind, err)
		}
		var stale []string
		for _, record := range records {
			if record.Expired(now) {
				stale = append(stale, record.Token)
				continue
			}
			s.store.Put(record)
		}
		for _, token := range stale {
			if err := s.adapter.DeleteByToken(ctx, kind, token); err != nil {
				return fmt.Errorf("%w: delete %s: %v", ErrPersistence, kind, err)
			}
		}
	}
	return nil
}

// RevokeToken removes a credential from cache and durable storage. A record
// held only durably (cold cache after a restart) still revokes successfully.
func (s *Service) RevokeToken(ctx context.Context, kind domain.TokenKind, token string) error {
	if token == "" || !kind.Valid() {
		return ErrInvalidFormat
	}
	found := s.store.Remove(kind, token)
	if !found {
		if _, err := s.lookup(ctx, kind, token); err == nil {
			s.store.Remove(kind, token)
			found = true
		}
	}
	s.tombstone(kind, token)
	if err := s.adapter.DeleteByToken(ctx, kind, token); err != nil {
		s.deferDelete(kind, token)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// drop anything a concurrent cold-cache load put back before the
	// tombstone was set
	s.store.Remove(kind, token)
	if !found {
		return ErrNotFound
	}
	s.logEvent(EventTokenRevoked, string(kind), "", "revoked", "")
	return nil
}

// tombstone marks a token whose durable delete is in flight so the cache
// repopulation path skips it.
func (s *Service) tombstone(kind domain.TokenKind, token string) {
	s.tombMu.Lock()
	if s.tombstones[kind] == nil {
		s.tombstones[kind] = make(map[string]time.Time)
	}
	s.tombstones[kind][token] = s.now()
	s.tombMu.Unlock()
}

func (s *Service) isTombstoned(kind domain.TokenKind, token string) bool {
	s.tombMu.Lock()
	_, ok := s.tombstones[kind][token]
	s.tombMu.Unlock()
	return ok
}

// clearTombstones drops tombstones recorded before cutoff, keeping any whose
// durable delete is still on the retry list.
func (s *Service) clearTombstones(cutoff time.Time) {
	retained := make(map[domain.TokenKind]map[string]struct{})
	s.pendingMu.Lock()
	for kind, tokens := range s.pending {
		set := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			set[token] = struct{}{}
		}
		retained[kind] = set
	}
	s.pendingMu.Unlock()

	s.tombMu.Lock()
	for kind, marks := range s.tombstones {
		for token, at := range marks {
			if !at.Before(cutoff) {
				continue
			}
			if _, keep := retained[kind][token]; keep {
				continue
			}
			delete(marks, token)
		}
	}
	s.tombMu.Unlock()
}

// newOpaqueToken mints a cryptographically strong random identifier. It is
// never derived from subject data.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *Service) logEvent(eventType, kind, subjectID, outcome, reason string) {
	fields := map[string]any{
		"kind":       kind,
		"subject_id": subjectID,
		"outcome":    outcome,
		"timestamp":  s.now(),
	}
	if reason != "" {
		fields["reason"] = reason
	}
	s.audit.LogAuthEvent(eventType, fields)
}
