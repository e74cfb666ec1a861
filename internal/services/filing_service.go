package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	"spacos/internal/edgar"
	apperrors "spacos/internal/errors"
	"spacos/internal/logger"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/repository"
)

const defaultUpcomingDays = 30

// filingService handles the compliance calendar.
type filingService struct {
	db        *gorm.DB
	dashboard repository.DashboardRepository
	syncer    SPACSyncer
}

// NewFilingService creates a new FilingServicer. syncer may be nil, in
// which case SyncFromEdgar reports EDGAR as unavailable.
func NewFilingService(db *gorm.DB, dashboard repository.DashboardRepository, syncer SPACSyncer) FilingServicer {
	return &filingService{db: db, dashboard: dashboard, syncer: syncer}
}

// checkFilingDates rejects a filed filing whose due date precedes its
// filed date.
func checkFilingDates(status models.FilingStatus, filed, due *time.Time) error {
	if !status.IsFiled() {
		return nil
	}
	return checkDateOrder(filed, due, apperrors.ErrDueBeforeFiled)
}

// CreateFiling adds a filing to a SPAC's calendar.
func (s *filingService) CreateFiling(ac auth.Context, in FilingInput) (*models.Filing, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.FormType = strings.TrimSpace(in.FormType)
	if in.FormType == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "form type is required")
	}
	if in.Status == "" {
		in.Status = models.FilingStatusDraft
	}
	if !in.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown filing status "+string(in.Status))
	}
	if err := checkFilingDates(in.Status, in.FiledDate, in.DueDate); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, in.SPACID); err != nil {
		return nil, err
	}
	if err := s.checkAccessionFree(in.SPACID, in.AccessionNumber, ""); err != nil {
		return nil, err
	}

	filing := &models.Filing{
		OrganizationID:  ac.OrgID,
		SPACID:          in.SPACID,
		FormType:        in.FormType,
		FiledDate:       in.FiledDate,
		DueDate:         in.DueDate,
		Status:          in.Status,
		EdgarURL:        in.EdgarURL,
		AccessionNumber: in.AccessionNumber,
		Description:     in.Description,
	}
	if err := s.db.Create(filing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return filing, nil
}

func (s *filingService) checkAccessionFree(spacID string, accession *string, exceptID string) error {
	if accession == nil || *accession == "" {
		return nil
	}
	q := s.db.Model(&models.Filing{}).Where("spac_id = ? AND accession_number = ?", spacID, *accession)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateFiling
	}
	return nil
}

// ListFilings retrieves a paginated list of filings, soonest due first.
func (s *filingService) ListFilings(ac auth.Context, page pagination.PageRequest, filter FilingFilter) (*pagination.PageResponse[models.Filing], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Filing{}).Where("organization_id = ?", ac.OrgID)
	if filter.SPACID != nil {
		base = base.Where("spac_id = ?", *filter.SPACID)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var filings []models.Filing
	if err := base.Order("due_date IS NULL").Order("due_date ASC").Order("filed_date DESC").
		Scopes(pagination.Paginate(page)).
		Find(&filings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range filings {
		if !filings[i].Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "filing "+filings[i].ID+" has status "+string(filings[i].Status))
		}
	}

	result := pagination.NewPageResponse(filings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetFiling retrieves one filing.
func (s *filingService) GetFiling(ac auth.Context, id string) (*models.Filing, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	filing, err := findOwned[models.Filing](s.db, ac.OrgID, id, apperrors.ErrFilingNotFound)
	if err != nil {
		return nil, err
	}
	if !filing.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "filing "+filing.ID+" has status "+string(filing.Status))
	}
	return filing, nil
}

// UpdateFiling applies the non-nil fields of upd.
func (s *filingService) UpdateFiling(ac auth.Context, id string, upd FilingUpdate) (*models.Filing, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	filing, err := findOwned[models.Filing](s.db, ac.OrgID, id, apperrors.ErrFilingNotFound)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	status, filed, due := filing.Status, filing.FiledDate, filing.DueDate
	if upd.FormType != nil {
		ft := strings.TrimSpace(*upd.FormType)
		if ft == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "form type must not be empty")
		}
		updates["form_type"] = ft
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown filing status "+string(*upd.Status))
		}
		status = *upd.Status
		updates["status"] = status
	}
	if upd.FiledDate != nil {
		filed = upd.FiledDate
		updates["filed_date"] = *upd.FiledDate
	}
	if upd.DueDate != nil {
		due = upd.DueDate
		updates["due_date"] = *upd.DueDate
	}
	if err := checkFilingDates(status, filed, due); err != nil {
		return nil, err
	}
	if upd.EdgarURL != nil {
		updates["edgar_url"] = *upd.EdgarURL
	}
	if upd.AccessionNumber != nil {
		if err := s.checkAccessionFree(filing.SPACID, upd.AccessionNumber, filing.ID); err != nil {
			return nil, err
		}
		updates["accession_number"] = *upd.AccessionNumber
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}

	if len(updates) > 0 {
		if err := s.db.Model(filing).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetFiling(ac, filing.ID)
}

// DeleteFiling soft-deletes a filing.
func (s *filingService) DeleteFiling(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	filing, err := findOwned[models.Filing](s.db, ac.OrgID, id, apperrors.ErrFilingNotFound)
	if err != nil {
		return err
	}
	if err := s.db.Delete(filing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Upcoming lists unfiled filings due within days of now, overdue ones
// included, soonest first.
func (s *filingService) Upcoming(ac auth.Context, days int, now time.Time) ([]UpcomingFiling, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	return upcomingFilings(context.Background(), s.dashboard, ac.OrgID, days, now)
}

func upcomingFilings(ctx context.Context, dashboard repository.DashboardRepository, orgID string, days int, now time.Time) ([]UpcomingFiling, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}
	pending, err := dashboard.PendingFilings(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	out := make([]UpcomingFiling, 0, len(pending))
	for _, f := range pending {
		d := analytics.DaysUntil(f.DueDate, now)
		if d == nil || *d > days {
			continue
		}
		u := analytics.ClassifyUrgency(d)
		out = append(out, UpcomingFiling{Filing: f, DaysUntil: d, IsUrgent: u.IsUrgent, IsCritical: u.IsCritical})
	}
	return out, nil
}

// SyncFromEdgar pulls the SPAC's recent filings from EDGAR and upserts them
// by accession number.
func (s *filingService) SyncFromEdgar(ctx context.Context, ac auth.Context, spacID string) (*edgar.SyncResult, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	spac, err := orgSPAC(s.db, ac.OrgID, spacID)
	if err != nil {
		return nil, err
	}
	if spac.CIK == nil || *spac.CIK == "" {
		return nil, apperrors.ErrMissingCIK
	}
	if s.syncer == nil {
		return nil, apperrors.ErrEdgarUnavailable
	}

	res, err := s.syncer.SyncSPAC(ctx, *spac)
	if err != nil {
		switch {
		case errors.Is(err, edgar.ErrInvalidCIK):
			return nil, apperrors.WrapWithMessage(apperrors.ErrInvalidInput, "SPAC has an invalid CIK", err)
		case errors.Is(err, edgar.ErrNotFound):
			return nil, apperrors.WrapWithMessage(apperrors.ErrNotFound, "CIK not found on EDGAR", err)
		default:
			logger.Get().Warnw("edgar sync failed", "spac_id", spac.ID, "error", err)
			return nil, apperrors.Wrap(apperrors.ErrEdgarUnavailable, err)
		}
	}
	return &res, nil
}
