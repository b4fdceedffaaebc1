package auth

import (
	"sync"
	"time"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// Store is the in-memory cache of active credentials, one shard per token
// kind. Mutations on a kind are mutually exclusive; no method performs I/O
// while holding a lock.
type Store struct {
	shards map[domain.TokenKind]*storeShard
}

type storeShard struct {
	mu      sync.RWMutex
	records map[string]*domain.CredentialRecord
}

// NewStore initializes an empty shard for every token kind.
func NewStore() *Store {
	shards := make(map[domain.TokenKind]*storeShard, len(domain.AllTokenKinds))
	for _, kind := range domain.AllTokenKinds {
		shards[kind] = &storeShard{records: make(map[string]*domain.CredentialRecord)}
	}
	return &Store{shards: shards}
}

func (s *Store) shard(kind domain.TokenKind) *storeShard {
	return s.shards[kind]
}

// Put inserts or replaces a record in its kind's shard. Records are treated
// as immutable once stored, so readers never observe a partial write.
func (s *Store) Put(record *domain.CredentialRecord) {
	sh := s.shard(record.Kind)
	sh.mu.Lock()
	sh.records[record.Token] = record
	sh.mu.Unlock()
}

// Get returns the record for a token within the given kind, if present.
func (s *Store) Get(kind domain.TokenKind, token string) (*domain.CredentialRecord, bool) {
	sh := s.shard(kind)
	sh.mu.RLock()
	record, ok := sh.records[token]
	sh.mu.RUnlock()
	return record, ok
}

// Remove deletes a token from its shard and reports whether it was present.
// The return value is what makes refresh rotation single-use: of several
// concurrent callers only one observes true.
func (s *Store) Remove(kind domain.TokenKind, token string) bool {
	sh := s.shard(kind)
	sh.mu.Lock()
	_, ok := sh.records[token]
	delete(sh.records, token)
	sh.mu.Unlock()
	return ok
}

// SnapshotExpired collects the tokens of every record expired at the given
// instant. The shard lock is held only for the scan, never across I/O.
func (s *Store) SnapshotExpired(kind domain.TokenKind, now time.Time) []string {
	sh := s.shard(kind)
	sh.mu.RLock()
	var expired []string
	for token, record := range sh.records {
		if record.Expired(now) {
			expired = append(expired, token)
		}
	}
	sh.mu.RUnlock()
	return expired
}

// RemoveBatch deletes the given tokens under a single critical section and
// returns the subset that was actually present.
func (s *Store) RemoveBatch(kind domain.TokenKind, tokens []string) []string {
	sh := s.shard(kind)
	sh.mu.Lock()
	removed := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := sh.records[token]; ok {
			delete(sh.records, token)
			removed = append(removed, token)
		}
	}
	sh.mu.Unlock()
	return removed
}

// Count returns the number of cached records for a kind.
func (s *Store) Count(kind domain.TokenKind) int {
	sh := s.shard(kind)
	sh.mu.RLock()
	n := len(sh.records)
	sh.mu.RUnlock()
	return n
}
