package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

func memoryRecord(kind domain.TokenKind, token string) *domain.CredentialRecord {
	now := time.Now().UTC()
	return &domain.CredentialRecord{
		Kind:      kind,
		Token:     token,
		SubjectID: "subject-1",
		Claims:    domain.Claims{Roles: []string{"user"}},
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestMemoryRepositorySaveIsolatesCaller(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	original := memoryRecord(domain.KindUserToken, "tok-1")
	require.NoError(t, repo.Save(ctx, original))

	// Mutating the caller's record must not affect the stored copy.
	original.SubjectID = "mutated"

	records, err := repo.LoadAll(ctx, domain.KindUserToken)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "subject-1", records[0].SubjectID)
}

func TestMemoryRepositoryKindNamespaces(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, memoryRecord(domain.KindUserToken, "tok-1")))
	require.NoError(t, repo.Save(ctx, memoryRecord(domain.KindAPIKey, "tok-1")))

	require.NoError(t, repo.DeleteByToken(ctx, domain.KindUserToken, "tok-1"))

	assert.Equal(t, 0, repo.Count(domain.KindUserToken))
	assert.Equal(t, 1, repo.Count(domain.KindAPIKey))
}

func TestMemoryRepositorySaveOverwrites(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	ctx := context.Background()

	first := memoryRecord(domain.KindServiceToken, "tok-1")
	require.NoError(t, repo.Save(ctx, first))

	second := memoryRecord(domain.KindServiceToken, "tok-1")
	second.SubjectID = "subject-2"
	require.NoError(t, repo.Save(ctx, second))

	records, err := repo.LoadAll(ctx, domain.KindServiceToken)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "subject-2", records[0].SubjectID)
}

func TestMemoryRepositoryDeleteMissingIsNoop(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	assert.NoError(t, repo.DeleteByToken(context.Background(), domain.KindRefreshToken, "absent"))
}
