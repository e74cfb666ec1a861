package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"spacos/internal/models"
)

// BillingRepository stores the one billing account of each organization.
type BillingRepository interface {
	Get(ctx context.Context, orgID string) (*models.BillingAccount, error)
	Save(ctx context.Context, account *models.BillingAccount) error
}

type billingRepository struct {
	db *gorm.DB
}

// NewBillingRepository creates a gorm-backed BillingRepository.
func NewBillingRepository(db *gorm.DB) BillingRepository {
	return &billingRepository{db: db}
}

func (r *billingRepository) Get(ctx context.Context, orgID string) (*models.BillingAccount, error) {
	var account models.BillingAccount
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// Save inserts the account or updates the existing row of its organization.
func (r *billingRepository) Save(ctx context.Context, account *models.BillingAccount) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.BillingAccount
		err := tx.Where("organization_id = ?", account.OrganizationID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(account).Error
		case err != nil:
			return err
		}
		account.ID = existing.ID
		account.CreatedAt = existing.CreatedAt
		return tx.Save(account).Error
	})
}
