package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// mint creates, persists and caches a credential record. The durable write
// happens first: if it fails nothing is cached, so the cache stays a subset
// of durable storage.
func (s *Service) mint(ctx context.Context, kind domain.TokenKind, subjectID string, subjectKind domain.SubjectKind, claims domain.Claims, ttl time.Duration) (*domain.CredentialRecord, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: non-positive ttl", ErrInvalidFormat)
	}
	token, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	now := s.now()
	record := &domain.CredentialRecord{
		Token:       token,
		Kind:        kind,
		SubjectID:   subjectID,
		SubjectKind: subjectKind,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
		Claims:      claims,
	}

	if err := s.adapter.Save(ctx, record); err != nil {
		s.logEvent(EventTokenIssued, string(kind), subjectID, "failure", "persistence")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.store.Put(record)
	s.logEvent(EventTokenIssued, string(kind), subjectID, "success", "")
	return record, nil
}

// GenerateToken issues a user access token carrying the supplied claims.
// A zero or negative ttl is rejected; callers wanting the configured default
// use GenerateSessionToken.
func (s *Service) GenerateToken(ctx context.Context, subjectID string, claims domain.Claims, ttl time.Duration) (*domain.CredentialRecord, error) {
	return s.mint(ctx, domain.KindUserToken, subjectID, domain.SubjectUser, claims, ttl)
}

// GenerateSessionToken issues a user access token with the configured
// default lifetime.
func (s *Service) GenerateSessionToken(ctx context.Context, subjectID string, claims domain.Claims) (*domain.CredentialRecord, error) {
	return s.mint(ctx, domain.KindUserToken, subjectID, domain.SubjectUser, claims, s.opts.UserTokenTTL)
}

// GenerateServiceToken issues a machine-bound token for a service
// installation. The machine identifier is fixed at issuance and checked on
// every validation.
func (s *Service) GenerateServiceToken(ctx context.Context, serviceID, username, computerName, machineID string) (*domain.CredentialRecord, error) {
	claims := domain.Claims{
		ServiceID:   serviceID,
		Username:    username,
		Description: computerName,
		MachineID:   machineID,
		AuthLevel:   domain.LevelBasic,
		Roles:       []string{"service"},
	}
	return s.mint(ctx, domain.KindServiceToken, serviceID, domain.SubjectService, claims, s.opts.ServiceTokenTTL)
}

// GenerateAPIKey issues a long-lived key for stable integrations. The
// creator identity is kept in the claims for audit trails.
func (s *Service) GenerateAPIKey(ctx context.Context, serviceID, description, createdBy string) (*domain.CredentialRecord, error) {
	claims := domain.Claims{
		ServiceID:   serviceID,
		Description: description,
		CreatedBy:   createdBy,
		AuthLevel:   domain.LevelBasic,
		Roles:       []string{"api"},
	}
	return s.mint(ctx, domain.KindAPIKey, serviceID, domain.SubjectAPIKey, claims, s.opts.APIKeyTTL)
}

// GenerateRefreshToken issues a refresh credential for the subject. It lives
// in its own namespace and is never accepted as an access credential.
func (s *Service) GenerateRefreshToken(ctx context.Context, subjectID string, claims domain.Claims) (*domain.CredentialRecord, error) {
	return s.mint(ctx, domain.KindRefreshToken, subjectID, domain.SubjectUser, claims, s.opts.RefreshTokenTTL)
}
