package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/pagination"
)

// trustService keeps the trust ledger and the SPAC's running balance in
// step. spacs.trust_amount always equals the signed sum of its ledger.
type trustService struct {
	db *gorm.DB
}

// NewTrustService creates a new TrustServicer.
func NewTrustService(db *gorm.DB) TrustServicer {
	return &trustService{db: db}
}

// RecordTransaction books a movement and adjusts the balance in the same
// database transaction. Outflows may not overdraw the trust.
func (s *trustService) RecordTransaction(ac auth.Context, in TrustTransactionInput) (*models.TrustTransaction, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown trust transaction type "+string(in.Type))
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = time.Now()
	}
	if _, err := orgSPAC(s.db, ac.OrgID, in.SPACID); err != nil {
		return nil, err
	}

	txn := &models.TrustTransaction{
		OrganizationID: ac.OrgID,
		SPACID:         in.SPACID,
		Type:           in.Type,
		Amount:         in.Amount.Round(2),
		OccurredAt:     in.OccurredAt,
		Description:    in.Description,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyToBalance(tx, ac.OrgID, in.SPACID, txn.Signed())
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// applyToBalance adds delta to the SPAC's trust amount under a row lock.
func (s *trustService) applyToBalance(tx *gorm.DB, orgID, spacID string, delta decimal.Decimal) error {
	var spac models.SPAC
	if err := forUpdate(tx).Where("id = ? AND organization_id = ?", spacID, orgID).First(&spac).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSPACNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	next := spac.TrustAmount.Add(delta)
	if next.IsNegative() {
		return apperrors.ErrInsufficientTrust
	}
	if err := tx.Model(&spac).Update("trust_amount", next).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListTransactions retrieves a paginated, filtered list of ledger entries.
func (s *trustService) ListTransactions(ac auth.Context, spacID string, page pagination.PageRequest, filter TrustFilter) (*pagination.PageResponse[models.TrustTransaction], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}
	if err := checkDateOrder(filter.FromDate, filter.ToDate, apperrors.ErrInvalidDateRange); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.TrustTransaction{}).Where("organization_id = ? AND spac_id = ?", ac.OrgID, spacID)
	if filter.FromDate != nil {
		base = base.Where("occurred_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("occurred_at <= ?", *filter.ToDate)
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.TrustTransaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("occurred_at DESC").
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(txns, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteTransaction removes a ledger entry and reverses its effect.
func (s *trustService) DeleteTransaction(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	txn, err := findOwned[models.TrustTransaction](s.db, ac.OrgID, id, apperrors.ErrNotFound)
	if err != nil {
		return err
	}
	if !txn.Type.Valid() {
		return apperrors.ErrUnknownEnumValue
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.applyToBalance(tx, ac.OrgID, txn.SPACID, txn.Signed().Neg())
	})
}

// GetBalance reports the balance, its inflow and outflow totals, the trust
// per share and the redemption split.
func (s *trustService) GetBalance(ac auth.Context, spacID string) (*TrustBalance, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, spacID)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Type  models.TrustTransactionType
		Total decimal.Decimal
	}
	if err := s.db.Model(&models.TrustTransaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("spac_id = ?", spac.ID).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	bal := &TrustBalance{
		SPACID:   spac.ID,
		Balance:  spac.TrustAmount,
		Deposits: decimal.Zero,
		Outflows: decimal.Zero,
		PerShare: analytics.TrustPerShare(spac.TrustAmount, spac.SharesOutstanding),
	}
	for _, r := range rows {
		if !r.Type.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "trust transaction type "+string(r.Type))
		}
		if r.Type.IsOutflow() {
			bal.Outflows = bal.Outflows.Add(r.Total)
		} else {
			bal.Deposits = bal.Deposits.Add(r.Total)
		}
	}
	if spac.RedemptionRate != nil {
		r, err := analytics.RedemptionImpact(spac.TrustAmount, spac.RedemptionRate)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidRedemptionRate, err)
		}
		bal.Redemption = &r
	}
	return bal, nil
}

// RecordSnapshots stores the trust balance of every live SPAC. Recording
// twice at the same instant overwrites the earlier reading.
func (s *trustService) RecordSnapshots(recordedAt time.Time) (int, error) {
	var spacs []models.SPAC
	if err := s.db.Where("status NOT IN ?", []models.SPACStatus{models.SPACStatusCompleted, models.SPACStatusLiquidated}).
		Find(&spacs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	count := 0
	for _, spac := range spacs {
		var existing models.TrustSnapshot
		result := s.db.Where("spac_id = ? AND recorded_at = ?", spac.ID, recordedAt).First(&existing)
		switch {
		case result.Error == nil:
			if err := s.db.Model(&existing).Updates(map[string]interface{}{
				"balance":            spac.TrustAmount,
				"shares_outstanding": spac.SharesOutstanding,
			}).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		case errors.Is(result.Error, gorm.ErrRecordNotFound):
			snapshot := &models.TrustSnapshot{
				SPACID:            spac.ID,
				RecordedAt:        recordedAt,
				Balance:           spac.TrustAmount,
				SharesOutstanding: spac.SharesOutstanding,
				Source:            "pipeline",
			}
			if err := s.db.Create(snapshot).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		default:
			return count, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		count++
	}

	logger.Get().Infow("trust snapshots recorded", "count", count, "recorded_at", recordedAt)
	return count, nil
}

// ListSnapshots returns paginated snapshots for a SPAC within a date range.
func (s *trustService) ListSnapshots(ac auth.Context, spacID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.TrustSnapshot], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperrors.ErrInvalidDateRange
	}
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.TrustSnapshot{}).
		Where("spac_id = ? AND recorded_at >= ? AND recorded_at <= ?", spacID, from, to).
		Session(&gorm.Session{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.TrustSnapshot
	if err := base.Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}
