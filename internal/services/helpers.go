package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "spacos/internal/errors"
	"spacos/internal/models"
)

// findOwned loads one live row of T by id, scoped to the organization.
func findOwned[T any](db *gorm.DB, orgID, id string, notFound *apperrors.AppError) (*T, error) {
	var out T
	err := db.Where("id = ? AND organization_id = ?", id, orgID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &out, nil
}

// forUpdate takes a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// wrapAnalytics maps vocabulary failures from derived computations to
// ErrUnknownEnumValue and everything else to an internal error.
func wrapAnalytics(err error) error {
	if errors.Is(err, models.ErrUnknownValue) {
		return apperrors.Wrap(apperrors.ErrUnknownEnumValue, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// passthrough returns err unchanged when it is already an AppError.
func passthrough(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// checkDateOrder reports ErrInvalidDateRange style violations with the
// given sentinel when end precedes start.
func checkDateOrder(start, end *time.Time, sentinel *apperrors.AppError) error {
	if start != nil && end != nil && end.Before(*start) {
		return sentinel
	}
	return nil
}

// orgSPAC verifies that spacID names a live SPAC of the organization.
func orgSPAC(db *gorm.DB, orgID, spacID string) (*models.SPAC, error) {
	return findOwned[models.SPAC](db, orgID, spacID, apperrors.ErrSPACNotFound)
}

// optionalSPAC checks an optional SPAC reference.
func optionalSPAC(db *gorm.DB, orgID string, spacID *string) error {
	if spacID == nil || *spacID == "" {
		return nil
	}
	_, err := orgSPAC(db, orgID, *spacID)
	return err
}
