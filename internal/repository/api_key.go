package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spacos/internal/models"
)

// APIKeyRepository stores hashed organization API keys.
type APIKeyRepository interface {
	List(ctx context.Context, orgID string) ([]models.APIKey, error)
	Create(ctx context.Context, key *models.APIKey) error
	Get(ctx context.Context, orgID, id string) (*models.APIKey, error)
	// FindActiveByHash returns the unrevoked key with the given hash.
	FindActiveByHash(ctx context.Context, hash string) (*models.APIKey, error)
	Revoke(ctx context.Context, key *models.APIKey, at time.Time) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a gorm-backed APIKeyRepository.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) List(ctx context.Context, orgID string) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) Get(ctx context.Context, orgID, id string) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, orgID).
		First(&key).Error; err != nil {
		return nil, translate(err)
	}
	return &key, nil
}

func (r *apiKeyRepository) FindActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Where("hash = ? AND revoked_at IS NULL", hash).
		First(&key).Error; err != nil {
		return nil, translate(err)
	}
	return &key, nil
}

func (r *apiKeyRepository) Revoke(ctx context.Context, key *models.APIKey, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(key).Update("revoked_at", at).Error; err != nil {
		return err
	}
	key.RevokedAt = &at
	return nil
}

func (r *apiKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}
