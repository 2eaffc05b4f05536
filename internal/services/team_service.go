package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/otcheredev/clinic-core/internal/apperrors"
	"github.com/otcheredev/clinic-core/internal/models"
	"github.com/otcheredev/clinic-core/internal/rbac"
	"github.com/otcheredev/clinic-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// TeamService manages a clinic's staff roster and the clinic profile
type TeamService struct {
	userRepo   *repository.UserRepository
	clinicRepo *repository.ClinicRepository
}

// NewTeamService creates a new team service
func NewTeamService(userRepo *repository.UserRepository, clinicRepo *repository.ClinicRepository) *TeamService {
	return &TeamService{
		userRepo:   userRepo,
		clinicRepo: clinicRepo,
	}
}

// Invite creates a staff account in the invited state. The role label must
// resolve to a known role; anything else is rejected up front rather than
// silently becoming a no-permission account.
func (s *TeamService) Invite(ctx context.Context, actor models.Actor, req *models.InviteUserRequest) (*models.User, error) {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return nil, err
	}
	if req.Name == "" || req.Email == "" {
		return nil, apperrors.Validation("name and email are required")
	}
	role, ok := rbac.Resolve(req.Role)
	if !ok {
		return nil, apperrors.Validation("unknown role: " + req.Role)
	}

	user := &models.User{
		ClinicID: actor.ClinicID,
		Name:     req.Name,
		Email:    req.Email,
		Role:     string(role),
		Status:   models.UserStatusInvited,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("role", user.Role).
		Str("invited_by", actor.UserID.String()).
		Msg("Staff member invited")
	return user, nil
}

// List retrieves the clinic's staff roster
func (s *TeamService) List(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListByClinic(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return users, nil
}

// ChangeRole reassigns a staff member's role. The change takes effect on
// the member's next request; capabilities are always derived from the
// stored role, never cached in tokens.
func (s *TeamService) ChangeRole(ctx context.Context, actor models.Actor, userID uuid.UUID, label string) (*models.User, error) {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return nil, err
	}
	role, ok := rbac.Resolve(label)
	if !ok {
		return nil, apperrors.Validation("unknown role: " + label)
	}
	if actor.UserID == userID {
		return nil, apperrors.Validation("cannot change your own role")
	}

	if err := s.userRepo.UpdateRole(ctx, actor.ClinicID, userID, string(role)); err != nil {
		return nil, apperrors.NotFound("user")
	}
	return s.userRepo.GetByID(ctx, actor.ClinicID, userID)
}

// Suspend puts a staff account on hold without removing it
func (s *TeamService) Suspend(ctx context.Context, actor models.Actor, userID uuid.UUID) error {
	return s.setStatus(ctx, actor, userID, models.UserStatusSuspended)
}

// Deactivate retires a staff account. Accounts are never hard deleted so
// historical records keep a valid actor.
func (s *TeamService) Deactivate(ctx context.Context, actor models.Actor, userID uuid.UUID) error {
	return s.setStatus(ctx, actor, userID, models.UserStatusDeactivated)
}

// Activate returns a suspended or invited account to active service
func (s *TeamService) Activate(ctx context.Context, actor models.Actor, userID uuid.UUID) error {
	return s.setStatus(ctx, actor, userID, models.UserStatusActive)
}

func (s *TeamService) setStatus(ctx context.Context, actor models.Actor, userID uuid.UUID, status models.UserStatus) error {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return err
	}
	if actor.UserID == userID {
		return apperrors.Validation("cannot change your own status")
	}
	if err := s.userRepo.UpdateStatus(ctx, actor.ClinicID, userID, status); err != nil {
		return apperrors.NotFound("user")
	}
	return nil
}

// Clinic retrieves the acting user's clinic profile
func (s *TeamService) Clinic(ctx context.Context, actor models.Actor) (*models.Clinic, error) {
	if err := authorize(actor, rbac.CapTeamManage); err != nil {
		return nil, err
	}
	clinic, err := s.clinicRepo.GetByID(ctx, actor.ClinicID)
	if err != nil {
		return nil, apperrors.NotFound("clinic")
	}
	return clinic, nil
}
