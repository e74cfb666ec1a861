package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"gorm.io/datatypes"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/repository"
)

var providerRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,39}$`)

// integrationService stores per-organization third-party settings.
type integrationService struct {
	integrations repository.IntegrationRepository
}

// NewIntegrationService creates a new IntegrationServicer.
func NewIntegrationService(integrations repository.IntegrationRepository) IntegrationServicer {
	return &integrationService{integrations: integrations}
}

// ListIntegrations lists the organization's integrations by provider.
func (s *integrationService) ListIntegrations(ctx context.Context, ac auth.Context) ([]models.Integration, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	out, err := s.integrations.List(ctx, ac.OrgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return out, nil
}

// SaveIntegration creates or replaces the settings of one provider.
// Settings must be a JSON object when present.
func (s *integrationService) SaveIntegration(ctx context.Context, ac auth.Context, provider string, enabled bool, settings json.RawMessage) (*models.Integration, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !providerRegex.MatchString(provider) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid provider name")
	}
	if len(settings) > 0 {
		var obj map[string]interface{}
		if err := json.Unmarshal(settings, &obj); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "settings must be a JSON object")
		}
	}

	integration := &models.Integration{
		OrganizationID: ac.OrgID,
		Provider:       provider,
		Enabled:        enabled,
		Settings:       datatypes.JSON(settings),
	}
	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return integration, nil
}

// DeleteIntegration removes one provider's settings.
func (s *integrationService) DeleteIntegration(ctx context.Context, ac auth.Context, provider string) error {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return err
	}
	err := s.integrations.Delete(ctx, ac.OrgID, strings.ToLower(strings.TrimSpace(provider)))
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrIntegrationMissing
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
