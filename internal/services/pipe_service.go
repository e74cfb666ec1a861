package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
)

var defaultPipePrice = decimal.NewFromInt(10)

// pipeService tracks PIPE investors per SPAC.
type pipeService struct {
	db *gorm.DB
}

// NewPipeService creates a new PipeServicer.
func NewPipeService(db *gorm.DB) PipeServicer {
	return &pipeService{db: db}
}

// impliedShares derives a share count from commitment and price when none
// was given.
func impliedShares(shares int64, commitment, price decimal.Decimal) int64 {
	if shares > 0 || !price.IsPositive() {
		return shares
	}
	return commitment.Div(price).Floor().IntPart()
}

func checkPipeAmounts(commitment, price decimal.Decimal, shares int64) error {
	if commitment.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "commitment amount must not be negative")
	}
	if !price.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "price per share must be positive")
	}
	if shares < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must not be negative")
	}
	return nil
}

// CreateInvestor adds an investor to a SPAC's PIPE.
func (s *pipeService) CreateInvestor(ac auth.Context, in PipeInvestorInput) (*models.PipeInvestor, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investor name is required")
	}
	if in.Type == "" {
		in.Type = models.InvestorTypeInstitutional
	}
	if in.SubscriptionStatus == "" {
		in.SubscriptionStatus = models.SubscriptionPending
	}
	if in.PricePerShare.IsZero() {
		in.PricePerShare = defaultPipePrice
	}
	if !in.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown investor type "+string(in.Type))
	}
	if !in.SubscriptionStatus.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown subscription status "+string(in.SubscriptionStatus))
	}
	if err := checkPipeAmounts(in.CommitmentAmount, in.PricePerShare, in.Shares); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, in.SPACID); err != nil {
		return nil, err
	}

	inv := &models.PipeInvestor{
		OrganizationID:     ac.OrgID,
		SPACID:             in.SPACID,
		Name:               in.Name,
		Type:               in.Type,
		CommitmentAmount:   in.CommitmentAmount,
		PricePerShare:      in.PricePerShare,
		Shares:             impliedShares(in.Shares, in.CommitmentAmount, in.PricePerShare),
		SubscriptionStatus: in.SubscriptionStatus,
		Notes:              in.Notes,
	}
	if err := s.db.Create(inv).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return inv, nil
}

// ListInvestors lists a SPAC's investors, largest commitment first.
func (s *pipeService) ListInvestors(ac auth.Context, spacID string) ([]models.PipeInvestor, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}
	return s.investors(ac.OrgID, spacID)
}

func (s *pipeService) investors(orgID, spacID string) ([]models.PipeInvestor, error) {
	var investors []models.PipeInvestor
	if err := s.db.Where("organization_id = ? AND spac_id = ?", orgID, spacID).
		Order("commitment_amount DESC").Order("name ASC").
		Find(&investors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investors, nil
}

// UpdateInvestor applies the non-nil fields of upd. Shares are re-derived
// when the commitment or price changes and no share count is given.
func (s *pipeService) UpdateInvestor(ac auth.Context, id string, upd PipeInvestorUpdate) (*models.PipeInvestor, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	inv, err := findOwned[models.PipeInvestor](s.db, ac.OrgID, id, apperrors.ErrInvestorNotFound)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investor name must not be empty")
		}
		updates["name"] = name
		inv.Name = name
	}
	if upd.Type != nil {
		if !upd.Type.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown investor type "+string(*upd.Type))
		}
		updates["type"] = *upd.Type
		inv.Type = *upd.Type
	}
	if upd.SubscriptionStatus != nil {
		if !upd.SubscriptionStatus.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown subscription status "+string(*upd.SubscriptionStatus))
		}
		updates["subscription_status"] = *upd.SubscriptionStatus
		inv.SubscriptionStatus = *upd.SubscriptionStatus
	}
	if upd.Notes != nil {
		updates["notes"] = *upd.Notes
		inv.Notes = *upd.Notes
	}

	if upd.CommitmentAmount != nil || upd.PricePerShare != nil || upd.Shares != nil {
		commitment, price := inv.CommitmentAmount, inv.PricePerShare
		var shares int64
		if upd.CommitmentAmount != nil {
			commitment = *upd.CommitmentAmount
		}
		if upd.PricePerShare != nil {
			price = *upd.PricePerShare
		}
		if upd.Shares != nil {
			shares = *upd.Shares
		}
		if err := checkPipeAmounts(commitment, price, shares); err != nil {
			return nil, err
		}
		shares = impliedShares(shares, commitment, price)
		updates["commitment_amount"] = commitment
		updates["price_per_share"] = price
		updates["shares"] = shares
		inv.CommitmentAmount, inv.PricePerShare, inv.Shares = commitment, price, shares
	}

	if len(updates) > 0 {
		if err := s.db.Model(inv).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return inv, nil
}

// DeleteInvestor soft-deletes an investor.
func (s *pipeService) DeleteInvestor(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	inv, err := findOwned[models.PipeInvestor](s.db, ac.OrgID, id, apperrors.ErrInvestorNotFound)
	if err != nil {
		return err
	}
	if err := s.db.Delete(inv).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary totals the PIPE against targetRaise.
func (s *pipeService) GetSummary(ac auth.Context, spacID string, targetRaise decimal.Decimal) (*analytics.PipeSummary, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if targetRaise.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target raise must not be negative")
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}
	investors, err := s.investors(ac.OrgID, spacID)
	if err != nil {
		return nil, err
	}
	summary, err := analytics.SummarizePipe(investors, targetRaise)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	return &summary, nil
}
