package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// RedisCredentialRepository persists credential records as JSON values under
// cred:<kind>:<token> keys. Keys carry a TTL matching the record expiry, so
// Redis drops what the purger would have; the purger's explicit deletes stay
// idempotent either way.
type RedisCredentialRepository struct {
	client *redis.Client
}

// NewRedisCredentialRepository returns a Redis-backed implementation.
func NewRedisCredentialRepository(client *redis.Client) *RedisCredentialRepository {
	return &RedisCredentialRepository{client: client}
}

func credentialKey(kind domain.TokenKind, token string) string {
	return fmt.Sprintf("cred:%s:%s", kind, token)
}

func (r *RedisCredentialRepository) Save(ctx context.Context, record *domain.CredentialRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("record already expired")
	}
	return r.client.Set(ctx, credentialKey(record.Kind, record.Token), payload, ttl).Err()
}

func (r *RedisCredentialRepository) LoadAll(ctx context.Context, kind domain.TokenKind) ([]*domain.CredentialRecord, error) {
	var records []*domain.CredentialRecord
	iter := r.client.Scan(ctx, 0, credentialKey(kind, "*"), 0).Iterator()
	for iter.Next(ctx) {
		payload, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var record domain.CredentialRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", iter.Val(), err)
		}
		records = append(records, &record)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *RedisCredentialRepository) DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) error {
	return r.client.Del(ctx, credentialKey(kind, token)).Err()
}
