package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

func TestGenerateTokenRejectsNonPositiveTTL(t *testing.T) {
	adapter := newFakeAdapter()
	svc, _ := newTestService(adapter)

	for _, ttl := range []time.Duration{-time.Hour, -time.Nanosecond, 0} {
		_, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, ttl)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	}

	assert.Equal(t, 0, adapter.saveCalls)
	assert.Equal(t, 0, svc.Store().Count(domain.KindUserToken))
}

func TestGenerateSessionTokenUsesConfiguredTTL(t *testing.T) {
	adapter := newFakeAdapter()
	svc, clock := newTestService(adapter)

	record, err := svc.GenerateSessionToken(context.Background(), "u1", domain.Claims{})
	require.NoError(t, err)

	// testOptions configures a one hour user token lifetime
	assert.Equal(t, clock.Now().Add(time.Hour), record.ExpiresAt)
	assert.True(t, adapter.has(domain.KindUserToken, record.Token))
}

func TestGenerateTokenWritesThroughBeforeCaching(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.setSaveErr(errors.New("db down"))
	svc, _ := newTestService(adapter)

	_, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, time.Hour)
	require.ErrorIs(t, err, ErrPersistence)

	// nothing cached on a failed durable write, so the cache stays a subset
	// of durable storage
	assert.Equal(t, 0, svc.Store().Count(domain.KindUserToken))
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	adapter := newFakeAdapter()
	svc, clock := newTestService(adapter)

	claims := domain.Claims{
		Roles:       []string{"user", "operator"},
		Permissions: []string{"reports:write"},
		AuthLevel:   domain.LevelUser,
	}
	record, err := svc.GenerateToken(context.Background(), "u1", claims, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, clock.Now(), record.IssuedAt)
	assert.Equal(t, clock.Now().Add(time.Hour), record.ExpiresAt)
	assert.True(t, adapter.has(domain.KindUserToken, record.Token))

	principal, err := svc.ValidateToken(context.Background(), record.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.SubjectID)
	assert.True(t, principal.HasRole("user"))
	assert.True(t, principal.HasRole("operator"))
	assert.True(t, principal.HasPermission("reports:write"))
	assert.Equal(t, domain.LevelUser, principal.AuthLevel)
}

func TestGenerateServiceTokenBindsMachine(t *testing.T) {
	adapter := newFakeAdapter()
	svc, _ := newTestService(adapter)

	record, err := svc.GenerateServiceToken(context.Background(), "svc-9", "alice", "WS-042", "machine-abc")
	require.NoError(t, err)

	assert.Equal(t, domain.KindServiceToken, record.Kind)
	assert.Equal(t, "machine-abc", record.Claims.MachineID)
	assert.Equal(t, "svc-9", record.Claims.ServiceID)
	assert.Equal(t, "alice", record.Claims.Username)
}

func TestGenerateAPIKeyCarriesCreator(t *testing.T) {
	adapter := newFakeAdapter()
	svc, clock := newTestService(adapter)

	record, err := svc.GenerateAPIKey(context.Background(), "svc-9", "ci pipeline", "admin-1")
	require.NoError(t, err)

	assert.Equal(t, domain.KindAPIKey, record.Kind)
	assert.Equal(t, "admin-1", record.Claims.CreatedBy)
	assert.Equal(t, clock.Now().Add(365*24*time.Hour), record.ExpiresAt)
}

func TestGeneratedTokensAreUnique(t *testing.T) {
	adapter := newFakeAdapter()
	svc, _ := newTestService(adapter)

	seen := make(map[string]struct{})
	for i := 0; i < 256; i++ {
		record, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, time.Hour)
		require.NoError(t, err)
		_, dup := seen[record.Token]
		require.False(t, dup)
		seen[record.Token] = struct{}{}
	}
}
