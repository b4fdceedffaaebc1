package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetwatch/monitor-service/internal/domain"
)

// MachineRepository defines persistence access for monitored machines.
type MachineRepository interface {
	Create(ctx context.Context, machine *domain.Machine) error
	GetByMachineID(ctx context.Context, machineID string) (*domain.Machine, error)
	UpdateStatus(ctx context.Context, id string, status domain.MachineStatus) error
}

type machineRepository struct {
	pool *pgxpool.Pool
}

// NewMachineRepository returns a Postgres-backed implementation.
func NewMachineRepository(pool *pgxpool.Pool) MachineRepository {
	return &machineRepository{pool: pool}
}

func (r *machineRepository) Create(ctx context.Context, machine *domain.Machine) error {
	const query = `
        INSERT INTO machines (service_id, machine_id, computer_name, username, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		machine.ServiceID,
		machine.MachineID,
		machine.ComputerName,
		machine.Username,
		machine.Status,
	).Scan(&machine.ID, &machine.CreatedAt, &machine.UpdatedAt)
}

func (r *machineRepository) GetByMachineID(ctx context.Context, machineID string) (*domain.Machine, error) {
	const query = `
        SELECT id, service_id, machine_id, computer_name, username, status, created_at, updated_at
        FROM machines WHERE machine_id=$1`
	var machine domain.Machine
	if err := r.pool.QueryRow(ctx, query, machineID).Scan(
		&machine.ID,
		&machine.ServiceID,
		&machine.MachineID,
		&machine.ComputerName,
		&machine.Username,
		&machine.Status,
		&machine.CreatedAt,
		&machine.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &machine, nil
}

func (r *machineRepository) UpdateStatus(ctx context.Context, id string, status domain.MachineStatus) error {
	const query = `UPDATE machines SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
