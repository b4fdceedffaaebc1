package auth

import (
	"context"
	"strings"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// Credential-bearing headers. The service token and API key headers are
// distinct from the user bearer header.
const (
	HeaderAuthorization = "Authorization"
	HeaderServiceToken  = "X-Service-Token"
	HeaderAPIKey        = "X-Api-Key"
	HeaderMachineID     = "X-Machine-Id"

	bearerScheme = "Bearer"
)

// Request carries the credential material extracted from an incoming HTTP
// request. The transport layer fills it; the engine never touches the
// framework's request type.
type Request struct {
	Path          string
	Authorization string
	ServiceToken  string
	APIKey        string
	MachineID     string
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) || parts[1] == "" {
		return "", ErrInvalidFormat
	}
	return parts[1], nil
}

// AuthorizeRequest resolves a principal for the request. Extraction
// precedence: user bearer token, then service token, then API key; the first
// present and well-formed credential wins, so a malformed bearer header does
// not shadow a service token or API key further down the chain. Without any
// credential, strict mode rejects, lax mode admits an anonymous limited
// principal on report-classified paths only.
func (s *Service) AuthorizeRequest(ctx context.Context, req Request, strict bool) (*domain.Principal, error) {
	if req.Authorization != "" {
		token, err := bearerToken(req.Authorization)
		if err == nil {
			return s.ValidateToken(ctx, token)
		}
		s.logEvent(EventValidationFailed, string(domain.KindUserToken), "", "failure", "malformed_header")
		if req.ServiceToken == "" && req.APIKey == "" {
			return nil, err
		}
	}

	switch {
	case req.ServiceToken != "":
		record, err := s.lookup(ctx, domain.KindServiceToken, req.ServiceToken)
		if err != nil {
			return nil, err
		}
		if record.Claims.MachineID != req.MachineID {
			s.logEvent(EventValidationFailed, string(domain.KindServiceToken), record.SubjectID, "failure", "machine_mismatch")
			return nil, ErrMachineMismatch
		}
		return domain.NewPrincipal(record.SubjectID, record.SubjectKind, record.Claims), nil

	case req.APIKey != "":
		record, err := s.lookup(ctx, domain.KindAPIKey, req.APIKey)
		if err != nil {
			return nil, err
		}
		return domain.NewPrincipal(record.SubjectID, record.SubjectKind, record.Claims), nil
	}

	if !strict && s.opts.ReportPath(req.Path) {
		return domain.AnonymousPrincipal(), nil
	}
	return nil, ErrInvalidFormat
}

// RequireAuthLevel authorizes strictly and checks the principal's level
// against the required one on the total order None < Basic < User < Admin <
// SuperAdmin.
func (s *Service) RequireAuthLevel(ctx context.Context, req Request, level domain.AuthLevel) (*domain.Principal, error) {
	principal, err := s.AuthorizeRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if !principal.AuthLevel.AtLeast(level) {
		return nil, ErrInsufficientAuthLevel
	}
	return principal, nil
}

// RequireRole authorizes strictly and checks role membership.
func (s *Service) RequireRole(ctx context.Context, req Request, role string) (*domain.Principal, error) {
	principal, err := s.AuthorizeRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if !principal.HasRole(role) {
		return nil, ErrInsufficientRole
	}
	return principal, nil
}

// RequirePermission authorizes strictly and checks permission membership.
func (s *Service) RequirePermission(ctx context.Context, req Request, perm string) (*domain.Principal, error) {
	principal, err := s.AuthorizeRequest(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if !principal.HasPermission(perm) {
		return nil, ErrInsufficientPermission
	}
	return principal, nil
}
