package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/repository"
)

const defaultSeats = 5

// teamService manages organization membership under the billed seat limit.
type teamService struct {
	team    repository.TeamRepository
	billing repository.BillingRepository
	users   UserServicer
}

// NewTeamService creates a new TeamServicer.
func NewTeamService(team repository.TeamRepository, billing repository.BillingRepository, users UserServicer) TeamServicer {
	return &teamService{team: team, billing: billing, users: users}
}

// ListMembers lists the organization's members, oldest first.
func (s *teamService) ListMembers(ctx context.Context, ac auth.Context) ([]models.TeamMember, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	members, err := s.team.ListMembers(ctx, ac.OrgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range members {
		if !members[i].Role.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "member "+members[i].ID+" has role "+string(members[i].Role))
		}
	}
	return members, nil
}

func (s *teamService) seats(ctx context.Context, orgID string) (int, error) {
	account, err := s.billing.Get(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return defaultSeats, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Seats, nil
}

// checkGrant rejects role changes that involve the owner role unless the
// caller is an owner.
func checkGrant(ac auth.Context, roles ...models.Role) error {
	for _, r := range roles {
		if r == models.RoleOwner && !ac.HasRole(models.RoleOwner) {
			return apperrors.WithMessage(apperrors.ErrForbidden, "only an owner can grant or revoke ownership")
		}
	}
	return nil
}

// AddMember adds an existing user to the organization.
func (s *teamService) AddMember(ctx context.Context, ac auth.Context, email string, role models.Role, title string) (*models.TeamMember, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown role "+string(role))
	}
	if err := checkGrant(ac, role); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if _, err := s.team.FindMembership(ctx, ac.OrgID, user.ID); err == nil {
		return nil, apperrors.ErrDuplicateMember
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seats, err := s.seats(ctx, ac.OrgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	count, err := s.team.CountMembers(ctx, ac.OrgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count >= int64(seats) {
		return nil, apperrors.ErrSeatLimitReached
	}

	now := time.Now()
	inviter := ac.UserID
	member := &models.TeamMember{
		OrganizationID: ac.OrgID,
		UserID:         user.ID,
		Role:           role,
		Title:          strings.TrimSpace(title),
		InvitedBy:      &inviter,
		JoinedAt:       &now,
	}
	if err := s.team.AddMember(ctx, member); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	member.User = user

	logger.Get().Infow("Added team member", "org_id", ac.OrgID, "user_id", user.ID, "role", role)
	return member, nil
}

func (s *teamService) member(ctx context.Context, orgID, memberID string) (*models.TeamMember, error) {
	member, err := s.team.GetMember(ctx, orgID, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrMemberNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// guardLastOwner fails when member is the organization's only owner.
func (s *teamService) guardLastOwner(ctx context.Context, member *models.TeamMember) error {
	if member.Role != models.RoleOwner {
		return nil
	}
	owners, err := s.team.CountByRole(ctx, member.OrganizationID, models.RoleOwner)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if owners <= 1 {
		return apperrors.ErrLastOwner
	}
	return nil
}

// UpdateMemberRole changes a member's role. The last owner cannot be
// demoted.
func (s *teamService) UpdateMemberRole(ctx context.Context, ac auth.Context, memberID string, role models.Role) (*models.TeamMember, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown role "+string(role))
	}
	member, err := s.member(ctx, ac.OrgID, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role == role {
		return member, nil
	}
	if err := checkGrant(ac, role, member.Role); err != nil {
		return nil, err
	}
	if err := s.guardLastOwner(ctx, member); err != nil {
		return nil, err
	}
	if err := s.team.UpdateRole(ctx, member, role); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return member, nil
}

// RemoveMember removes a member. The last owner cannot be removed.
func (s *teamService) RemoveMember(ctx context.Context, ac auth.Context, memberID string) error {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return err
	}
	member, err := s.member(ctx, ac.OrgID, memberID)
	if err != nil {
		return err
	}
	if err := checkGrant(ac, member.Role); err != nil {
		return err
	}
	if err := s.guardLastOwner(ctx, member); err != nil {
		return err
	}
	if err := s.team.RemoveMember(ctx, member); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("Removed team member", "org_id", ac.OrgID, "user_id", member.UserID)
	return nil
}
