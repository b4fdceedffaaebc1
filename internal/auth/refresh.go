package auth

import (
	"context"
	"fmt"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// RefreshResult is what a successful rotation hands back to the caller.
type RefreshResult struct {
	AccessToken  *domain.CredentialRecord
	RefreshToken *domain.CredentialRecord
	Principal    *domain.Principal
}

// RefreshUserToken redeems a refresh token for a new access token, rotating
// the refresh token out. Rotation is single-use: the cache removal is the
// arbiter, so of several concurrent attempts with the same token only the
// first succeeds and the rest observe it already revoked.
func (s *Service) RefreshUserToken(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	record, err := s.lookup(ctx, domain.KindRefreshToken, refreshToken)
	if err != nil {
		return nil, err
	}

	// The tombstone goes down before the claim so a concurrent lookup cannot
	// repopulate the token from its still-present durable row mid-rotation.
	s.tombstone(domain.KindRefreshToken, refreshToken)
	if !s.store.Remove(domain.KindRefreshToken, refreshToken) {
		s.logEvent(EventValidationFailed, string(domain.KindRefreshToken), record.SubjectID, "failure", "already_rotated")
		return nil, ErrRevoked
	}
	if err := s.adapter.DeleteByToken(ctx, domain.KindRefreshToken, refreshToken); err != nil {
		// the token stays dead: it is out of the cache, tombstoned against
		// repopulation, and the durable delete is retried by the purger
		s.deferDelete(domain.KindRefreshToken, refreshToken)
		return nil, fmt.Errorf("%w: rotate refresh token: %v", ErrPersistence, err)
	}

	access, err := s.GenerateSessionToken(ctx, record.SubjectID, record.Claims)
	if err != nil {
		return nil, err
	}
	next, err := s.GenerateRefreshToken(ctx, record.SubjectID, record.Claims)
	if err != nil {
		return nil, err
	}

	s.logEvent(EventTokenRefreshed, string(domain.KindRefreshToken), record.SubjectID, "success", "")
	return &RefreshResult{
		AccessToken:  access,
		RefreshToken: next,
		Principal:    domain.NewPrincipal(record.SubjectID, record.SubjectKind, record.Claims),
	}, nil
}
