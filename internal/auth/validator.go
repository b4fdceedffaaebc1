package auth

import (
	"context"
	"time"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// IsTokenExpired reports whether the record is expired at the given instant.
func IsTokenExpired(record *domain.CredentialRecord, now time.Time) bool {
	return record.Expired(now)
}

// lookup finds an active record in the cache, falling back to durable
// storage on a miss (cold cache after restart) and repopulating the cache
// from it. A persistence error during the fallback fails closed as NotFound;
// the real reason goes to the audit log.
func (s *Service) lookup(ctx context.Context, kind domain.TokenKind, token string) (*domain.CredentialRecord, error) {
	if token == "" {
		return nil, ErrInvalidFormat
	}

	record, ok := s.store.Get(kind, token)
	if !ok {
		records, err := s.adapter.LoadAll(ctx, kind)
		if err != nil {
			s.logEvent(EventValidationFailed, string(kind), "", "failure", "persistence")
			return nil, ErrNotFound
		}
		now := s.now()
		for _, loaded := range records {
			// a tombstoned row is mid-revocation; re-inserting it would let
			// the token resurrect before its durable delete lands
			if loaded.Expired(now) || s.isTombstoned(kind, loaded.Token) {
				continue
			}
			s.store.Put(loaded)
		}
		if record, ok = s.store.Get(kind, token); !ok {
			s.logEvent(EventValidationFailed, string(kind), "", "failure", "not_found")
			return nil, ErrNotFound
		}
	}

	// Expiry uses this call's own read of the clock; a race with the purger
	// at the exact expiry tick resolves independently per call.
	if record.Expired(s.now()) {
		s.store.Remove(kind, token)
		// cache eviction is immediate; the durable row goes on the purger's
		// delete list so no I/O happens on the validation path
		s.deferDelete(kind, token)
		s.logEvent(EventValidationFailed, string(kind), record.SubjectID, "failure", "expired")
		return nil, ErrExpired
	}
	return record, nil
}

// ValidateToken checks a user access token and resolves its principal.
// Tokens from the refresh namespace are never accepted here.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.Principal, error) {
	record, err := s.lookup(ctx, domain.KindUserToken, token)
	if err != nil {
		return nil, err
	}
	return domain.NewPrincipal(record.SubjectID, record.SubjectKind, record.Claims), nil
}

// ValidateServiceToken checks a service token and enforces the machine
// binding: the caller-supplied machine id must match the one bound at
// issuance, otherwise the token is rejected even when unexpired.
func (s *Service) ValidateServiceToken(ctx context.Context, token, machineID string) (domain.Claims, error) {
	record, err := s.lookup(ctx, domain.KindServiceToken, token)
	if err != nil {
		return domain.Claims{}, err
	}
	if record.Claims.MachineID != machineID {
		s.logEvent(EventValidationFailed, string(domain.KindServiceToken), record.SubjectID, "failure", "machine_mismatch")
		return domain.Claims{}, ErrMachineMismatch
	}
	return record.Claims, nil
}

// ValidateAPIKey checks an API key. Same expiry semantics as user tokens, no
// machine binding.
func (s *Service) ValidateAPIKey(ctx context.Context, token string) (domain.Claims, error) {
	record, err := s.lookup(ctx, domain.KindAPIKey, token)
	if err != nil {
		return domain.Claims{}, err
	}
	return record.Claims, nil
}
