package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

func TestRevokeTokenRemovesEverywhere(t *testing.T) {
	adapter := newFakeAdapter()
	svc, _ := newTestService(adapter)

	record, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(context.Background(), domain.KindUserToken, record.Token))

	_, err = svc.ValidateToken(context.Background(), record.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, adapter.has(domain.KindUserToken, record.Token))
}

func TestRevokeTokenColdCache(t *testing.T) {
	adapter := newFakeAdapter()
	svc, clock := newTestService(adapter)

	record, err := svc.GenerateAPIKey(context.Background(), "svc-1", "ci", "admin-1")
	require.NoError(t, err)

	// fresh service over the same durable store, as after a restart
	restarted := NewService(adapter, nil, testOptions(clock))

	require.NoError(t, restarted.RevokeToken(context.Background(), domain.KindAPIKey, record.Token))
	assert.False(t, adapter.has(domain.KindAPIKey, record.Token))

	_, err = restarted.ValidateAPIKey(context.Background(), record.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeUnknownToken(t *testing.T) {
	svc, _ := newTestService(newFakeAdapter())

	err := svc.RevokeToken(context.Background(), domain.KindUserToken, "never-issued")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokedTokenDoesNotResurrectMidDelete(t *testing.T) {
	adapter := newFakeAdapter()
	svc, _ := newTestService(adapter)

	record, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, time.Hour)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	adapter.setBeforeDelete(func(kind domain.TokenKind, token string) {
		if kind == domain.KindUserToken && token == record.Token {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, svc.RevokeToken(context.Background(), domain.KindUserToken, record.Token))
	}()

	// The revocation is stalled inside its durable delete; the row is still
	// present durably but must not validate via cache repopulation.
	<-entered
	_, err = svc.ValidateToken(context.Background(), record.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	close(release)
	<-done
	assert.False(t, adapter.has(domain.KindUserToken, record.Token))
}

func TestPurgeClearsSettledTombstones(t *testing.T) {
	adapter := newFakeAdapter()
	svc, clock := newTestService(adapter)

	record, err := svc.GenerateToken(context.Background(), "u1", domain.Claims{}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, svc.RevokeToken(context.Background(), domain.KindUserToken, record.Token))
	assert.True(t, svc.isTombstoned(domain.KindUserToken, record.Token))

	clock.Advance(time.Minute)
	_, err = svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)

	assert.False(t, svc.isTombstoned(domain.KindUserToken, record.Token))
}
