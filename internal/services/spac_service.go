package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/workflow"
)

// spacService handles SPAC lifecycle business logic.
type spacService struct {
	db *gorm.DB
}

// NewSPACService creates a new SPACServicer.
func NewSPACService(db *gorm.DB) SPACServicer {
	return &spacService{db: db}
}

// CreateSPAC creates a draft SPAC in the formation phase. A positive trust
// amount is booked as the opening deposit of the trust ledger.
func (s *spacService) CreateSPAC(ac auth.Context, in SPACInput) (*models.SPAC, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Ticker = strings.ToUpper(strings.TrimSpace(in.Ticker))
	if in.Name == "" || in.Ticker == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and ticker are required")
	}
	if in.TrustAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "trust amount must not be negative")
	}
	if err := checkDateOrder(in.IPODate, in.DeadlineDate, apperrors.ErrDeadlineBeforeIPO); err != nil {
		return nil, err
	}
	if err := validateRedemptionRate(in.RedemptionRate); err != nil {
		return nil, err
	}
	if err := s.checkTickerFree(ac.OrgID, in.Ticker, ""); err != nil {
		return nil, err
	}

	spac := &models.SPAC{
		OrganizationID:    ac.OrgID,
		Name:              in.Name,
		Ticker:            in.Ticker,
		Status:            models.SPACStatusDraft,
		Phase:             models.SPACPhaseFormation,
		IPODate:           in.IPODate,
		DeadlineDate:      in.DeadlineDate,
		TrustAmount:       in.TrustAmount,
		SharesOutstanding: in.SharesOutstanding,
		RedemptionRate:    in.RedemptionRate,
		CIK:               in.CIK,
		Exchange:          in.Exchange,
		Sponsor:           in.Sponsor,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(spac).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if in.TrustAmount.IsPositive() {
			occurred := time.Now()
			if in.IPODate != nil {
				occurred = *in.IPODate
			}
			deposit := &models.TrustTransaction{
				OrganizationID: ac.OrgID,
				SPACID:         spac.ID,
				Type:           models.TrustDeposit,
				Amount:         in.TrustAmount,
				OccurredAt:     occurred,
				Description:    "Initial trust funding",
			}
			if err := tx.Create(deposit).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spac, nil
}

func validateRedemptionRate(rate *float64) error {
	if rate == nil {
		return nil
	}
	if err := analytics.ValidateFraction(*rate); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidRedemptionRate, err)
	}
	return nil
}

func (s *spacService) checkTickerFree(orgID, ticker, exceptID string) error {
	q := s.db.Model(&models.SPAC{}).Where("organization_id = ? AND ticker = ?", orgID, ticker)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateTicker
	}
	return nil
}

// ListSPACs retrieves a paginated list of the organization's SPACs.
func (s *spacService) ListSPACs(ac auth.Context, page pagination.PageRequest, filter SPACFilter) (*pagination.PageResponse[models.SPAC], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.SPAC{}).Where("organization_id = ?", ac.OrgID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Phase != nil {
		base = base.Where("phase = ?", *filter.Phase)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(name) LIKE ? OR LOWER(ticker) LIKE ?", like, like)
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var spacs []models.SPAC
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&spacs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range spacs {
		if err := checkSPACVocabulary(&spacs[i]); err != nil {
			return nil, err
		}
	}

	result := pagination.NewPageResponse(spacs, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func checkSPACVocabulary(spac *models.SPAC) error {
	if !spac.Status.Valid() || !spac.Phase.Valid() {
		return apperrors.WithMessage(apperrors.ErrUnknownEnumValue,
			"SPAC "+spac.ID+" has status "+string(spac.Status)+" and phase "+string(spac.Phase))
	}
	return nil
}

// GetSPAC retrieves one SPAC together with its related-record counts.
func (s *spacService) GetSPAC(ac auth.Context, id string) (*models.SPAC, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return nil, err
	}
	if err := checkSPACVocabulary(spac); err != nil {
		return nil, err
	}
	counts, err := s.counts(spac.ID)
	if err != nil {
		return nil, err
	}
	spac.Counts = counts
	return spac, nil
}

func (s *spacService) counts(spacID string) (*models.SPACCounts, error) {
	var c models.SPACCounts
	queries := []struct {
		q    *gorm.DB
		dest *int64
	}{
		{s.db.Model(&models.Target{}).Where("spac_id = ?", spacID), &c.Targets},
		{s.db.Model(&models.Document{}).Where("spac_id = ? AND is_latest = ?", spacID, true), &c.Documents},
		{s.db.Model(&models.Filing{}).Where("spac_id = ?", spacID), &c.Filings},
		{s.db.Model(&models.Task{}).Where("spac_id = ?", spacID), &c.Tasks},
	}
	for _, cq := range queries {
		if err := cq.q.Count(cq.dest).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &c, nil
}

// UpdateSPAC applies the non-nil fields of upd.
func (s *spacService) UpdateSPAC(ac auth.Context, id string, upd SPACUpdate) (*models.SPAC, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must not be empty")
		}
		updates["name"] = name
	}
	if upd.Ticker != nil {
		ticker := strings.ToUpper(strings.TrimSpace(*upd.Ticker))
		if ticker == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ticker must not be empty")
		}
		if ticker != spac.Ticker {
			if err := s.checkTickerFree(ac.OrgID, ticker, spac.ID); err != nil {
				return nil, err
			}
		}
		updates["ticker"] = ticker
	}

	ipo, deadline := spac.IPODate, spac.DeadlineDate
	if upd.IPODate != nil {
		ipo = upd.IPODate
		updates["ipo_date"] = *upd.IPODate
	}
	if upd.DeadlineDate != nil {
		deadline = upd.DeadlineDate
		updates["deadline_date"] = *upd.DeadlineDate
	}
	if err := checkDateOrder(ipo, deadline, apperrors.ErrDeadlineBeforeIPO); err != nil {
		return nil, err
	}
	if upd.SharesOutstanding != nil {
		if *upd.SharesOutstanding < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares outstanding must not be negative")
		}
		updates["shares_outstanding"] = *upd.SharesOutstanding
	}
	if upd.RedemptionRate != nil {
		if err := validateRedemptionRate(upd.RedemptionRate); err != nil {
			return nil, err
		}
		updates["redemption_rate"] = *upd.RedemptionRate
	}
	if upd.CIK != nil {
		updates["cik"] = *upd.CIK
	}
	if upd.Exchange != nil {
		updates["exchange"] = *upd.Exchange
	}
	if upd.Sponsor != nil {
		updates["sponsor"] = *upd.Sponsor
	}

	if len(updates) > 0 {
		if err := s.db.Model(spac).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetSPAC(ac, spac.ID)
}

// DeleteSPAC soft-deletes a SPAC. Owned rows stay for the audit trail.
func (s *spacService) DeleteSPAC(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAdmin); err != nil {
		return err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(spac).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AdvancePhase moves the SPAC forward to phase to.
func (s *spacService) AdvancePhase(ac auth.Context, id string, to models.SPACPhase) (*models.SPAC, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.AdvancePhase(spac.Status, spac.Phase, to); err != nil {
		return nil, translateWorkflow(err, apperrors.ErrInvalidPhaseTransition, apperrors.ErrSPACTerminal)
	}
	if err := s.db.Model(spac).Update("phase", to).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spac.Phase = to
	return spac, nil
}

// UpdateStatus moves the SPAC along draft -> active -> completed | liquidated.
// Completion stamps the business combination close.
func (s *spacService) UpdateStatus(ac auth.Context, id string, to models.SPACStatus) (*models.SPAC, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.StatusTransition(spac.Status, to); err != nil {
		return nil, translateWorkflow(err, apperrors.ErrInvalidStatusChange, apperrors.ErrSPACTerminal)
	}

	updates := map[string]interface{}{"status": to}
	var closedAt *time.Time
	if to == models.SPACStatusCompleted && spac.BusinessCombinationClosedAt == nil {
		now := time.Now()
		closedAt = &now
		updates["business_combination_closed_at"] = now
	}
	if err := s.db.Model(spac).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	spac.Status = to
	if closedAt != nil {
		spac.BusinessCombinationClosedAt = closedAt
	}
	return spac, nil
}

// translateWorkflow maps transition failures to their AppError.
func translateWorkflow(err error, illegal, terminal *apperrors.AppError) error {
	switch {
	case errors.Is(err, models.ErrUnknownValue):
		return apperrors.Wrap(apperrors.ErrUnknownEnumValue, err)
	case errors.Is(err, workflow.ErrTerminal) && terminal != nil:
		return apperrors.Wrap(terminal, err)
	default:
		return apperrors.WrapWithMessage(illegal, err.Error(), err)
	}
}

// GetMetrics derives the countdown, trust per share and redemption split.
func (s *spacService) GetMetrics(ac auth.Context, id string, now time.Time) (*SPACMetrics, error) {
	spac, err := s.GetSPAC(ac, id)
	if err != nil {
		return nil, err
	}
	m := &SPACMetrics{
		SPACID:       spac.ID,
		Deadline:     analytics.DeadlineMetrics(*spac, now),
		TrustBalance: spac.TrustAmount,
		Counts:       *spac.Counts,
	}
	if spac.RedemptionRate != nil {
		r, err := analytics.RedemptionImpact(spac.TrustAmount, spac.RedemptionRate)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidRedemptionRate, err)
		}
		m.Redemption = &r
	}
	return m, nil
}

// GetTimeline projects the SPAC's milestones, tasks and filings into one
// date-ordered list.
func (s *spacService) GetTimeline(ac auth.Context, id string, now time.Time) ([]analytics.TimelineEvent, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, id)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := s.db.Where("spac_id = ?", spac.ID).Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var filings []models.Filing
	if err := s.db.Where("spac_id = ?", spac.ID).Order("created_at ASC, id ASC").Find(&filings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	events, err := analytics.ProjectTimeline(analytics.TimelineFromModels(*spac, tasks, filings), now)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	return events, nil
}
