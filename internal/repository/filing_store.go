package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"spacos/internal/edgar"
	"spacos/internal/models"
)

// FilingSyncStore persists EDGAR filings for the sync worker.
type FilingSyncStore struct {
	db *gorm.DB
}

// NewFilingSyncStore creates a FilingSyncStore.
func NewFilingSyncStore(db *gorm.DB) *FilingSyncStore {
	return &FilingSyncStore{db: db}
}

var _ edgar.FilingStore = (*FilingSyncStore)(nil)

// ListSyncable returns every live SPAC that has a CIK.
func (s *FilingSyncStore) ListSyncable(ctx context.Context) ([]models.SPAC, error) {
	var spacs []models.SPAC
	err := s.db.WithContext(ctx).
		Where("cik IS NOT NULL AND cik <> ''").
		Where("status NOT IN ?", []models.SPACStatus{models.SPACStatusCompleted, models.SPACStatusLiquidated}).
		Order("created_at ASC").
		Find(&spacs).Error
	return spacs, err
}

// UpsertFiling matches on SPAC and accession number. An existing row keeps
// its id and any due date entered by hand. A filing a user deleted stays
// deleted and reports Unchanged; the unique index still covers it.
func (s *FilingSyncStore) UpsertFiling(ctx context.Context, f *models.Filing) (edgar.UpsertOutcome, error) {
	outcome := edgar.Unchanged
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Filing
		err := tx.Unscoped().Where("spac_id = ? AND accession_number = ?", f.SPACID, f.AccessionNumber).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = edgar.Created
			return tx.Create(f).Error
		}
		if err != nil {
			return err
		}
		if existing.IsDeleted() {
			*f = existing
			return nil
		}

		if sameFiling(existing, *f) {
			*f = existing
			return nil
		}
		outcome = edgar.Updated
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"form_type":   f.FormType,
			"filed_date":  f.FiledDate,
			"status":      f.Status,
			"edgar_url":   f.EdgarURL,
			"description": f.Description,
		}).Error; err != nil {
			return err
		}
		f.ID = existing.ID
		f.DueDate = existing.DueDate
		return nil
	})
	return outcome, err
}

func sameFiling(a, b models.Filing) bool {
	sameDate := (a.FiledDate == nil && b.FiledDate == nil) ||
		(a.FiledDate != nil && b.FiledDate != nil && a.FiledDate.Equal(*b.FiledDate))
	return sameDate &&
		a.FormType == b.FormType &&
		a.Status == b.Status &&
		a.EdgarURL == b.EdgarURL &&
		a.Description == b.Description
}
