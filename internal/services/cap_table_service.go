package services

import (
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
)

// capTableService manages the share classes and holders of a SPAC.
type capTableService struct {
	db *gorm.DB
}

// NewCapTableService creates a new CapTableServicer.
func NewCapTableService(db *gorm.DB) CapTableServicer {
	return &capTableService{db: db}
}

func checkShareClassInput(in ShareClassInput) error {
	if !in.Class.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown share class "+string(in.Class))
	}
	if in.TotalShares < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total shares must not be negative")
	}
	if in.VotingPower < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "voting power must not be negative")
	}
	if len(in.Holders) == 0 {
		return nil
	}
	var held int64
	for _, h := range in.Holders {
		if strings.TrimSpace(h.Name) == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "holder name is required")
		}
		if !h.HolderType.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown holder type "+string(h.HolderType))
		}
		if h.Shares < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "holder shares must not be negative")
		}
		held += h.Shares
	}
	if held != in.TotalShares {
		return apperrors.ErrHolderSumMismatch
	}
	return nil
}

// UpsertShareClass creates or replaces one class of the SPAC's cap table,
// holders included.
func (s *capTableService) UpsertShareClass(ac auth.Context, spacID string, in ShareClassInput) (*models.ShareClass, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	if err := checkShareClassInput(in); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}

	var class models.ShareClass
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).Where("organization_id = ? AND spac_id = ? AND class = ?", ac.OrgID, spacID, in.Class).
			First(&class).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			class = models.ShareClass{
				OrganizationID: ac.OrgID,
				SPACID:         spacID,
				Class:          in.Class,
				TotalShares:    in.TotalShares,
				VotingPower:    in.VotingPower,
			}
			if err := tx.Create(&class).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&class).Updates(map[string]interface{}{
				"total_shares": in.TotalShares,
				"voting_power": in.VotingPower,
			}).Error; err != nil {
				return err
			}
			class.TotalShares = in.TotalShares
			class.VotingPower = in.VotingPower
			if err := tx.Unscoped().Where("share_class_id = ?", class.ID).Delete(&models.ShareHolder{}).Error; err != nil {
				return err
			}
		}

		class.Holders = make([]models.ShareHolder, 0, len(in.Holders))
		for _, h := range in.Holders {
			holder := models.ShareHolder{
				ShareClassID: class.ID,
				Name:         strings.TrimSpace(h.Name),
				HolderType:   h.HolderType,
				Shares:       h.Shares,
			}
			if err := tx.Create(&holder).Error; err != nil {
				return err
			}
			class.Holders = append(class.Holders, holder)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &class, nil
}

// DeleteShareClass removes one class and its holders.
func (s *capTableService) DeleteShareClass(ac auth.Context, spacID string, kind models.ShareClassKind) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return err
	}

	return passthrough(s.db.Transaction(func(tx *gorm.DB) error {
		var class models.ShareClass
		if err := tx.Where("organization_id = ? AND spac_id = ? AND class = ?", ac.OrgID, spacID, kind).
			First(&class).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrShareClassNotFound
			}
			return err
		}
		if err := tx.Unscoped().Where("share_class_id = ?", class.ID).Delete(&models.ShareHolder{}).Error; err != nil {
			return err
		}
		// Hard delete so the class can be recreated under the unique index.
		return tx.Unscoped().Delete(&class).Error
	}))
}

// GetCapTable computes the SPAC's cap table and reports every invariant it
// violates.
func (s *capTableService) GetCapTable(ac auth.Context, spacID string) (*CapTableView, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if _, err := orgSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}

	var classes []models.ShareClass
	if err := s.db.Preload("Holders", func(db *gorm.DB) *gorm.DB {
		return db.Order("shares DESC").Order("name ASC")
	}).Where("organization_id = ? AND spac_id = ?", ac.OrgID, spacID).
		Find(&classes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	order := make(map[models.ShareClassKind]int, models.NumShareClassKinds)
	for i, k := range models.AllShareClassKinds() {
		order[k] = i
	}
	sort.SliceStable(classes, func(i, j int) bool {
		return order[classes[i].Class] < order[classes[j].Class]
	})

	summary, err := analytics.CapTable(classes)
	if err != nil {
		return nil, wrapAnalytics(err)
	}

	view := &CapTableView{CapTableSummary: summary, Valid: true, Issues: []string{}}
	if err := analytics.Validate(summary); err != nil {
		view.Valid = false
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				view.Issues = append(view.Issues, e.Error())
			}
		} else {
			view.Issues = append(view.Issues, err.Error())
		}
	}
	return view, nil
}
