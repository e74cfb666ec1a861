package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"spacos/internal/models"
)

// IntegrationRepository stores third-party connections keyed by provider.
type IntegrationRepository interface {
	List(ctx context.Context, orgID string) ([]models.Integration, error)
	Get(ctx context.Context, orgID, provider string) (*models.Integration, error)
	Save(ctx context.Context, integration *models.Integration) error
	Delete(ctx context.Context, orgID, provider string) error
}

type integrationRepository struct {
	db *gorm.DB
}

// NewIntegrationRepository creates a gorm-backed IntegrationRepository.
func NewIntegrationRepository(db *gorm.DB) IntegrationRepository {
	return &integrationRepository{db: db}
}

func (r *integrationRepository) List(ctx context.Context, orgID string) ([]models.Integration, error) {
	var out []models.Integration
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("provider ASC").
		Find(&out).Error
	return out, err
}

func (r *integrationRepository) Get(ctx context.Context, orgID, provider string) (*models.Integration, error) {
	var in models.Integration
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND provider = ?", orgID, provider).
		First(&in).Error; err != nil {
		return nil, translate(err)
	}
	return &in, nil
}

// Save inserts the integration or replaces the existing one for its
// provider.
func (r *integrationRepository) Save(ctx context.Context, integration *models.Integration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Integration
		err := tx.Where("organization_id = ? AND provider = ?", integration.OrganizationID, integration.Provider).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(integration).Error
		case err != nil:
			return err
		}
		integration.ID = existing.ID
		integration.CreatedAt = existing.CreatedAt
		return tx.Save(integration).Error
	})
}

func (r *integrationRepository) Delete(ctx context.Context, orgID, provider string) error {
	res := r.db.WithContext(ctx).Unscoped().
		Where("organization_id = ? AND provider = ?", orgID, provider).
		Delete(&models.Integration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
