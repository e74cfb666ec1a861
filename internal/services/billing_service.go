package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/repository"
)

// billingService tracks the plan and seat count of an organization.
type billingService struct {
	billing repository.BillingRepository
	team    repository.TeamRepository
}

// NewBillingService creates a new BillingServicer.
func NewBillingService(billing repository.BillingRepository, team repository.TeamRepository) BillingServicer {
	return &billingService{billing: billing, team: team}
}

func (s *billingService) account(ctx context.Context, orgID string) (*models.BillingAccount, error) {
	account, err := s.billing.Get(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrBillingNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !account.Plan.Valid() || !account.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue,
			"billing account has plan "+string(account.Plan)+" and status "+string(account.Status))
	}
	return account, nil
}

// GetBilling returns the organization's billing account.
func (s *billingService) GetBilling(ctx context.Context, ac auth.Context) (*models.BillingAccount, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.account(ctx, ac.OrgID)
}

// UpdateBilling changes plan, seats or billing email. Seats cannot drop
// below the current member count.
func (s *billingService) UpdateBilling(ctx context.Context, ac auth.Context, upd BillingUpdate) (*models.BillingAccount, error) {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	account, err := s.account(ctx, ac.OrgID)
	if err != nil {
		return nil, err
	}

	if upd.Plan != nil {
		if !upd.Plan.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown billing plan "+string(*upd.Plan))
		}
		account.Plan = *upd.Plan
	}
	if upd.Seats != nil {
		if *upd.Seats < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "seats must be at least 1")
		}
		members, err := s.team.CountMembers(ctx, ac.OrgID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if int64(*upd.Seats) < members {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "seats cannot be fewer than current members")
		}
		account.Seats = *upd.Seats
	}
	if upd.BillingEmail != nil {
		email := strings.TrimSpace(*upd.BillingEmail)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid billing email")
			}
		}
		account.BillingEmail = strings.ToLower(email)
	}

	if err := s.billing.Save(ctx, account); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}
