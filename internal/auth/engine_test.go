package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

func issueUserToken(t *testing.T, svc *Service, subjectID string, claims domain.Claims) string {
	t.Helper()
	record, err := svc.GenerateToken(context.Background(), subjectID, claims, time.Hour)
	require.NoError(t, err)
	return record.Token
}

func TestAuthorizeRequestBearerToken(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	token := issueUserToken(t, svc, "u1", domain.Claims{Roles: []string{"user"}})

	principal, err := svc.AuthorizeRequest(context.Background(), Request{
		Path:          "/api/machines",
		Authorization: "Bearer " + token,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.SubjectID)
	assert.False(t, principal.Anonymous)
}

func TestAuthorizeRequestMalformedBearer(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())

	for _, header := range []string{"Bearer", "Bearer ", "Token abc", "abc"} {
		_, err := svc.AuthorizeRequest(context.Background(), Request{Authorization: header}, true)
		assert.ErrorIs(t, err, ErrInvalidFormat, "header %q", header)
	}
}

func TestAuthorizeRequestMalformedBearerFallsThrough(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())

	serviceRecord, err := svc.GenerateServiceToken(context.Background(), "svc-1", "bob", "WS-1", "m-1")
	require.NoError(t, err)
	keyRecord, err := svc.GenerateAPIKey(context.Background(), "svc-1", "integration", "admin-1")
	require.NoError(t, err)

	// a malformed bearer header yields to the next well-formed credential
	principal, err := svc.AuthorizeRequest(context.Background(), Request{
		Authorization: "Token abc",
		ServiceToken:  serviceRecord.Token,
		MachineID:     "m-1",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "svc-1", principal.SubjectID)
	assert.Equal(t, domain.SubjectService, principal.SubjectKind)

	principal, err = svc.AuthorizeRequest(context.Background(), Request{
		Authorization: "Bearer",
		APIKey:        keyRecord.Token,
	}, true)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectAPIKey, principal.SubjectKind)
}

func TestAuthorizeRequestPrecedence(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	userToken := issueUserToken(t, svc, "u1", domain.Claims{})

	serviceRecord, err := svc.GenerateServiceToken(context.Background(), "svc-1", "bob", "WS-1", "m-1")
	require.NoError(t, err)

	// bearer wins even when a valid service token is also present
	principal, err := svc.AuthorizeRequest(context.Background(), Request{
		Authorization: "Bearer " + userToken,
		ServiceToken:  serviceRecord.Token,
		MachineID:     "m-1",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.SubjectID)
}

func TestAuthorizeRequestServiceToken(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	record, err := svc.GenerateServiceToken(context.Background(), "svc-1", "bob", "WS-1", "m-1")
	require.NoError(t, err)

	principal, err := svc.AuthorizeRequest(context.Background(), Request{
		ServiceToken: record.Token,
		MachineID:    "m-1",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "svc-1", principal.SubjectID)
	assert.Equal(t, domain.SubjectService, principal.SubjectKind)

	_, err = svc.AuthorizeRequest(context.Background(), Request{
		ServiceToken: record.Token,
		MachineID:    "m-2",
	}, true)
	assert.ErrorIs(t, err, ErrMachineMismatch)
}

func TestAuthorizeRequestAPIKey(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	record, err := svc.GenerateAPIKey(context.Background(), "svc-1", "integration", "admin-1")
	require.NoError(t, err)

	principal, err := svc.AuthorizeRequest(context.Background(), Request{APIKey: record.Token}, true)
	require.NoError(t, err)
	assert.Equal(t, "svc-1", principal.SubjectID)
}

func TestAuthorizeRequestNoCredential(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())

	// strict mode always rejects
	_, err := svc.AuthorizeRequest(context.Background(), Request{Path: "/api/reports/usage"}, true)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	// lax mode admits report paths anonymously
	principal, err := svc.AuthorizeRequest(context.Background(), Request{Path: "/api/reports/usage"}, false)
	require.NoError(t, err)
	assert.True(t, principal.Anonymous)
	assert.Equal(t, domain.LevelNone, principal.AuthLevel)

	// lax mode still rejects everything else
	_, err = svc.AuthorizeRequest(context.Background(), Request{Path: "/api/machines"}, false)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestRequireAuthLevel(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	adminToken := issueUserToken(t, svc, "admin-1", domain.Claims{AuthLevel: domain.LevelAdmin})
	userToken := issueUserToken(t, svc, "u1", domain.Claims{AuthLevel: domain.LevelUser})

	principal, err := svc.RequireAuthLevel(context.Background(), Request{Authorization: "Bearer " + adminToken}, domain.LevelAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", principal.SubjectID)

	// same level passes, higher requirement fails
	_, err = svc.RequireAuthLevel(context.Background(), Request{Authorization: "Bearer " + userToken}, domain.LevelUser)
	assert.NoError(t, err)
	_, err = svc.RequireAuthLevel(context.Background(), Request{Authorization: "Bearer " + userToken}, domain.LevelAdmin)
	assert.ErrorIs(t, err, ErrInsufficientAuthLevel)

	// unauthenticated requests are rejected, not classified as forbidden
	_, err = svc.RequireAuthLevel(context.Background(), Request{}, domain.LevelUser)
	assert.True(t, IsUnauthorized(err))
}

func TestRequireRoleAndPermission(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())
	token := issueUserToken(t, svc, "u1", domain.Claims{
		Roles:       []string{"operator"},
		Permissions: []string{"machines:read"},
	})
	req := Request{Authorization: "Bearer " + token}

	_, err := svc.RequireRole(context.Background(), req, "operator")
	assert.NoError(t, err)
	_, err = svc.RequireRole(context.Background(), req, "admin")
	assert.ErrorIs(t, err, ErrInsufficientRole)

	_, err = svc.RequirePermission(context.Background(), req, "machines:read")
	assert.NoError(t, err)
	_, err = svc.RequirePermission(context.Background(), req, "machines:write")
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestAuthLevelOrdering(t *testing.T) {
	levels := []domain.AuthLevel{
		domain.LevelNone,
		domain.LevelBasic,
		domain.LevelUser,
		domain.LevelAdmin,
		domain.LevelSuperAdmin,
	}
	for i, lower := range levels {
		for j, higher := range levels {
			assert.Equal(t, i >= j, lower.AtLeast(higher))
		}
	}
}
