package repository

import (
	"context"
	"sync"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// MemoryCredentialRepository is an in-memory implementation of the
// persistence contract. Suitable for development and tests; records do not
// survive a restart.
type MemoryCredentialRepository struct {
	mu      sync.RWMutex
	records map[domain.TokenKind]map[string]*domain.CredentialRecord
}

// NewMemoryCredentialRepository returns an empty in-memory store.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	records := make(map[domain.TokenKind]map[string]*domain.CredentialRecord, len(domain.AllTokenKinds))
	for _, kind := range domain.AllTokenKinds {
		records[kind] = make(map[string]*domain.CredentialRecord)
	}
	return &MemoryCredentialRepository{records: records}
}

func (r *MemoryCredentialRepository) Save(_ context.Context, record *domain.CredentialRecord) error {
	copied := *record
	r.mu.Lock()
	r.records[record.Kind][record.Token] = &copied
	r.mu.Unlock()
	return nil
}

func (r *MemoryCredentialRepository) LoadAll(_ context.Context, kind domain.TokenKind) ([]*domain.CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*domain.CredentialRecord, 0, len(r.records[kind]))
	for _, record := range r.records[kind] {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}

func (r *MemoryCredentialRepository) DeleteByToken(_ context.Context, kind domain.TokenKind, token string) error {
	r.mu.Lock()
	delete(r.records[kind], token)
	r.mu.Unlock()
	return nil
}

// Count reports stored records for a kind, for tests.
func (r *MemoryCredentialRepository) Count(kind domain.TokenKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records[kind])
}
