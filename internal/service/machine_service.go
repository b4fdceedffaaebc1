package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fleetwatch/monitor-service/internal/auth"
	"github.com/fleetwatch/monitor-service/internal/domain"
	"github.com/fleetwatch/monitor-service/internal/repository"
	apperrors "github.com/fleetwatch/monitor-service/pkg/util/errorutil"
)

// MachineService handles agent enrollment and the credentials that go with
// it.
type MachineService struct {
	machines      repository.MachineRepository
	tokens        *auth.Service
	autoProvision bool
}

// NewMachineService builds the service.
func NewMachineService(machines repository.MachineRepository, tokens *auth.Service, autoProvision bool) *MachineService {
	return &MachineService{machines: machines, tokens: tokens, autoProvision: autoProvision}
}

// RegisterMachine enrolls an agent installation and issues a machine-bound
// service token. Unknown machines are provisioned on the fly only when the
// host enabled auto-provisioning.
func (s *MachineService) RegisterMachine(ctx context.Context, serviceID, username, computerName, machineID string) (*domain.Machine, *domain.CredentialRecord, error) {
	machine, err := s.machines.GetByMachineID(ctx, machineID)
	switch {
	case err == nil:
		if machine.Status != domain.MachineStatusActive {
			return nil, nil, apperrors.NewForbidden("machine retired")
		}
	case errors.Is(err, pgx.ErrNoRows):
		if !s.autoProvision {
			return nil, nil, apperrors.NewForbidden("unknown machine")
		}
		machine = &domain.Machine{
			ServiceID:    serviceID,
			MachineID:    machineID,
			ComputerName: computerName,
			Username:     username,
			Status:       domain.MachineStatusActive,
		}
		if err := s.machines.Create(ctx, machine); err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	record, err := s.tokens.GenerateServiceToken(ctx, serviceID, username, computerName, machineID)
	if err != nil {
		return nil, nil, auth.MapAuthError(err)
	}
	return machine, record, nil
}

// CreateAPIKey issues a long-lived key for a stable integration.
func (s *MachineService) CreateAPIKey(ctx context.Context, serviceID, description, createdBy string) (*domain.CredentialRecord, error) {
	record, err := s.tokens.GenerateAPIKey(ctx, serviceID, description, createdBy)
	if err != nil {
		return nil, auth.MapAuthError(err)
	}
	return record, nil
}

// RevokeAPIKey removes an API key from cache and durable storage.
func (s *MachineService) RevokeAPIKey(ctx context.Context, token string) error {
	if err := s.tokens.RevokeToken(ctx, domain.KindAPIKey, token); err != nil {
		return auth.MapAuthError(err)
	}
	return nil
}
