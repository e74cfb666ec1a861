package repository

import (
	"context"

	"gorm.io/gorm"

	"spacos/internal/models"
)

// TeamRepository stores organization memberships.
type TeamRepository interface {
	ListMembers(ctx context.Context, orgID string) ([]models.TeamMember, error)
	GetMember(ctx context.Context, orgID, memberID string) (*models.TeamMember, error)
	FindMembership(ctx context.Context, orgID, userID string) (*models.TeamMember, error)
	MembershipsForUser(ctx context.Context, userID string) ([]models.TeamMember, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	UpdateRole(ctx context.Context, member *models.TeamMember, role models.Role) error
	RemoveMember(ctx context.Context, member *models.TeamMember) error
	CountMembers(ctx context.Context, orgID string) (int64, error)
	CountByRole(ctx context.Context, orgID string, role models.Role) (int64, error)
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a gorm-backed TeamRepository.
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) ListMembers(ctx context.Context, orgID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *teamRepository) GetMember(ctx context.Context, orgID, memberID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND organization_id = ?", memberID, orgID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *teamRepository) FindMembership(ctx context.Context, orgID, userID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

// MembershipsForUser returns the user's memberships, oldest first. The
// first one is the organization a fresh login acts in.
func (r *teamRepository) MembershipsForUser(ctx context.Context, userID string) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

func (r *teamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepository) UpdateRole(ctx context.Context, member *models.TeamMember, role models.Role) error {
	if err := r.db.WithContext(ctx).Model(member).Update("role", role).Error; err != nil {
		return err
	}
	member.Role = role
	return nil
}

func (r *teamRepository) RemoveMember(ctx context.Context, member *models.TeamMember) error {
	// Hard delete so the user can be invited again under the unique index.
	return r.db.WithContext(ctx).Unscoped().Delete(member).Error
}

func (r *teamRepository) CountMembers(ctx context.Context, orgID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("organization_id = ?", orgID).
		Count(&n).Error
	return n, err
}

func (r *teamRepository) CountByRole(ctx context.Context, orgID string, role models.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("organization_id = ? AND role = ?", orgID, role).
		Count(&n).Error
	return n, err
}
