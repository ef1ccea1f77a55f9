package service

import (
	"context"
	"fmt"
	"log/slog"
	"subscription-tracker/internal/model"
	"subscription-tracker/internal/repository"
)

// Identity is the caller of an operation as resolved from the request.
type Identity struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

type IdentityService interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
	BootstrapAdmins(ctx context.Context, userIDs []string) error
}

type identityServiceImpl struct {
	roleRepo repository.RoleRepository
	logger   *slog.Logger
}

func NewIdentityService(roleRepo repository.RoleRepository, logger *slog.Logger) IdentityService {
	return &identityServiceImpl{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

func (s *identityServiceImpl) Resolve(ctx context.Context, userID string) (Identity, error) {
	if userID == "" {
		return Identity{}, ErrUnauthenticated
	}

	role, err := s.roleRepo.GetRole(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve role: %w", err)
	}

	return Identity{UserID: userID, Role: role}, nil
}

func (s *identityServiceImpl) BootstrapAdmins(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if err := s.roleRepo.Upsert(ctx, id, model.RoleAdmin); err != nil {
			return fmt.Errorf("grant admin to %s: %w", id, err)
		}
		s.logger.Info("admin role granted", "user_id", id)
	}
	return nil
}

func requireAdmin(identity Identity, action string) error {
	if !identity.IsAdmin() {
		return &AuthorizationError{Action: action}
	}
	return nil
}
