package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetwatch/monitor-service/internal/domain"
	apperrors "github.com/fleetwatch/monitor-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// MapAuthError collapses the validation taxonomy into the outward
// unauthorized/forbidden signals. Callers never learn which of
// not-found/expired/revoked/mismatch fired; that detail stays in the audit
// log.
func MapAuthError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUnauthorized(err):
		return apperrors.NewUnauthorized("invalid or missing credentials")
	case IsForbidden(err):
		return apperrors.NewForbidden("insufficient privileges")
	case errors.Is(err, ErrPersistence):
		return apperrors.NewInternalError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

// Middleware authorizes requests and loads principals into the request
// context.
type Middleware struct {
	svc *Service
}

// NewMiddleware constructs middleware around the token service.
func NewMiddleware(svc *Service) *Middleware {
	return &Middleware{svc: svc}
}

// Handle enforces authentication. Strict mode rejects unauthenticated
// requests outright; lax mode admits anonymous principals on report paths.
func (m *Middleware) Handle(strict bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.svc.AuthorizeRequest(c.UserContext(), requestFrom(c), strict)
		if err != nil {
			return MapAuthError(err)
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireLevel enforces a minimum auth level on top of strict authentication.
func (m *Middleware) RequireLevel(level domain.AuthLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.svc.RequireAuthLevel(c.UserContext(), requestFrom(c), level)
		if err != nil {
			return MapAuthError(err)
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// RequireRole enforces role membership on top of strict authentication.
func (m *Middleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.svc.RequireRole(c.UserContext(), requestFrom(c), role)
		if err != nil {
			return MapAuthError(err)
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func requestFrom(c *fiber.Ctx) Request {
	return Request{
		Path:          c.Path(),
		Authorization: c.Get(HeaderAuthorization),
		ServiceToken:  c.Get(HeaderServiceToken),
		APIKey:        c.Get(HeaderAPIKey),
		MachineID:     c.Get(HeaderMachineID),
	}
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
