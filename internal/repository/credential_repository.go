package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// PostgresCredentialRepository persists credential records in the
// credentials table, one logical namespace per kind. It satisfies the token
// service's persistence contract.
type PostgresCredentialRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCredentialRepository returns a Postgres-backed implementation.
func NewPostgresCredentialRepository(pool *pgxpool.Pool) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{pool: pool}
}

func (r *PostgresCredentialRepository) Save(ctx context.Context, record *domain.CredentialRecord) error {
	claims, err := json.Marshal(record.Claims)
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}

	const query = `
        INSERT INTO credentials (token, kind, subject_id, subject_kind, issued_at, expires_at, claims)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (kind, token) DO UPDATE
        SET subject_id=EXCLUDED.subject_id, subject_kind=EXCLUDED.subject_kind,
            issued_at=EXCLUDED.issued_at, expires_at=EXCLUDED.expires_at, claims=EXCLUDED.claims`
	_, err = r.pool.Exec(ctx, query,
		record.Token,
		record.Kind,
		record.SubjectID,
		record.SubjectKind,
		record.IssuedAt,
		record.ExpiresAt,
		claims,
	)
	return err
}

func (r *PostgresCredentialRepository) LoadAll(ctx context.Context, kind domain.TokenKind) ([]*domain.CredentialRecord, error) {
	const query = `
        SELECT token, kind, subject_id, subject_kind, issued_at, expires_at, claims
        FROM credentials WHERE kind=$1`

	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.CredentialRecord
	for rows.Next() {
		var record domain.CredentialRecord
		var claims []byte
		if err := rows.Scan(
			&record.Token,
			&record.Kind,
			&record.SubjectID,
			&record.SubjectKind,
			&record.IssuedAt,
			&record.ExpiresAt,
			&claims,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(claims, &record.Claims); err != nil {
			return nil, fmt.Errorf("decode claims for %s: %w", record.Token, err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}

func (r *PostgresCredentialRepository) DeleteByToken(ctx context.Context, kind domain.TokenKind, token string) error {
	const query = `DELETE FROM credentials WHERE kind=$1 AND token=$2`
	_, err := r.pool.Exec(ctx, query, kind, token)
	return err
}
