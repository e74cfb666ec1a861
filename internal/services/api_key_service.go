package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/repository"
)

const (
	apiKeyPrefix      = "spk_"
	apiKeySecretBytes = 32
	apiKeyShownChars  = 12
)

// apiKeyService issues and checks organization API keys. Keys act with the
// analyst role on behalf of the member who created them.
type apiKeyService struct {
	keys repository.APIKeyRepository
}

// NewAPIKeyService creates a new APIKeyServicer.
func NewAPIKeyService(keys repository.APIKeyRepository) APIKeyServicer {
	return &apiKeyService{keys: keys}
}

func hashAPIKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// ListKeys lists the organization's keys, newest first. Secrets are never
// returned.
func (s *apiKeyService) ListKeys(ctx context.Context, ac auth.Context) ([]models.APIKey, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	keys, err := s.keys.List(ctx, ac.OrgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return keys, nil
}

// CreateKey issues a new key and returns its secret once.
func (s *apiKeyService) CreateKey(ctx context.Context, ac auth.Context, name string) (*models.APIKey, string, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "key name is required")
	}

	raw := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	secret := apiKeyPrefix + hex.EncodeToString(raw)

	key := &models.APIKey{
		OrganizationID: ac.OrgID,
		Name:           name,
		Prefix:         secret[:apiKeyShownChars],
		Hash:           hashAPIKey(secret),
		CreatedBy:      ac.UserID,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("Created API key", "org_id", ac.OrgID, "key_id", key.ID, "prefix", key.Prefix)
	return key, secret, nil
}

// RevokeKey disables a key. Revoking twice is a no-op.
func (s *apiKeyService) RevokeKey(ctx context.Context, ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return err
	}
	key, err := s.keys.Get(ctx, ac.OrgID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrAPIKeyNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if key.RevokedAt != nil {
		return nil
	}
	if err := s.keys.Revoke(ctx, key, time.Now()); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Authenticate resolves a presented secret to the identity it acts as.
func (s *apiKeyService) Authenticate(ctx context.Context, secret string) (auth.Context, error) {
	secret = strings.TrimSpace(secret)
	if !strings.HasPrefix(secret, apiKeyPrefix) {
		return auth.Context{}, apperrors.ErrInvalidToken
	}
	key, err := s.keys.FindActiveByHash(ctx, hashAPIKey(secret))
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Context{}, apperrors.ErrInvalidToken
	}
	if err != nil {
		return auth.Context{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.keys.TouchLastUsed(ctx, key.ID, time.Now()); err != nil {
		logger.Get().Warnw("Failed to record API key use", "key_id", key.ID, "error", err)
	}
	return auth.New(key.CreatedBy, key.OrganizationID, models.RoleAnalyst), nil
}
