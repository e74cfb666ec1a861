package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"spacos/internal/analytics"
	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/repository"
	"spacos/internal/workflow"
)

// targetService handles the deal pipeline.
type targetService struct {
	db        *gorm.DB
	dashboard repository.DashboardRepository
}

// NewTargetService creates a new TargetServicer.
func NewTargetService(db *gorm.DB, dashboard repository.DashboardRepository) TargetServicer {
	return &targetService{db: db, dashboard: dashboard}
}

// CreateTarget adds a target to the pipeline in the sourcing stage.
func (s *targetService) CreateTarget(ac auth.Context, in TargetInput) (*models.Target, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target name is required")
	}
	if in.EnterpriseValue.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "enterprise value must not be negative")
	}
	if err := optionalSPAC(s.db, ac.OrgID, in.SPACID); err != nil {
		return nil, err
	}

	now := time.Now()
	target := &models.Target{
		OrganizationID:  ac.OrgID,
		SPACID:          in.SPACID,
		Name:            in.Name,
		Industry:        in.Industry,
		Stage:           models.DealStageSourcing,
		EnterpriseValue: in.EnterpriseValue,
		Description:     in.Description,
		Headquarters:    in.Headquarters,
		StageChangedAt:  &now,
	}
	if err := s.db.Create(target).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return target, nil
}

// ListTargets searches the organization's pipeline, most recently touched first.
func (s *targetService) ListTargets(ac auth.Context, page pagination.PageRequest, filter TargetFilter) (*pagination.PageResponse[models.Target], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if filter.Stage != nil && !filter.Stage.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown deal stage "+string(*filter.Stage))
	}
	page.Defaults()

	targets, total, err := s.dashboard.SearchTargets(context.Background(), repository.TargetQuery{
		OrgID:    ac.OrgID,
		SPACID:   filter.SPACID,
		Stage:    filter.Stage,
		Industry: filter.Industry,
		MinScore: filter.MinScore,
		Search:   filter.Search,
		Limit:    page.PageSize,
		Offset:   page.Offset(),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range targets {
		if !targets[i].Stage.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "target "+targets[i].ID+" has deal stage "+string(targets[i].Stage))
		}
	}

	result := pagination.NewPageResponse(targets, page.Page, page.PageSize, total)
	return &result, nil
}

// GetTarget retrieves one target.
func (s *targetService) GetTarget(ac auth.Context, id string) (*models.Target, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	target, err := findOwned[models.Target](s.db, ac.OrgID, id, apperrors.ErrTargetNotFound)
	if err != nil {
		return nil, err
	}
	if !target.Stage.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrUnknownEnumValue, "target "+target.ID+" has deal stage "+string(target.Stage))
	}
	return target, nil
}

// UpdateTarget applies the non-nil fields of upd. Stage changes go through
// MoveStage.
func (s *targetService) UpdateTarget(ac auth.Context, id string, upd TargetUpdate) (*models.Target, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	target, err := findOwned[models.Target](s.db, ac.OrgID, id, apperrors.ErrTargetNotFound)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.SPACID != nil {
		if *upd.SPACID == "" {
			updates["spac_id"] = nil
		} else {
			if err := optionalSPAC(s.db, ac.OrgID, upd.SPACID); err != nil {
				return nil, err
			}
			updates["spac_id"] = *upd.SPACID
		}
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target name must not be empty")
		}
		updates["name"] = name
	}
	if upd.Industry != nil {
		updates["industry"] = *upd.Industry
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Headquarters != nil {
		updates["headquarters"] = *upd.Headquarters
	}
	if upd.EnterpriseValue != nil {
		if upd.EnterpriseValue.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "enterprise value must not be negative")
		}
		updates["enterprise_value"] = *upd.EnterpriseValue
	}

	if len(updates) > 0 {
		if err := s.db.Model(target).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetTarget(ac, target.ID)
}

// DeleteTarget soft-deletes a target.
func (s *targetService) DeleteTarget(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	target, err := findOwned[models.Target](s.db, ac.OrgID, id, apperrors.ErrTargetNotFound)
	if err != nil {
		return err
	}
	if err := s.db.Delete(target).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MoveStage advances a target one step or drops it to passed. Passing
// requires a reason, which is kept on the target.
func (s *targetService) MoveStage(ac auth.Context, id string, to models.DealStage, reason string) (*models.Target, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	target, err := findOwned[models.Target](s.db, ac.OrgID, id, apperrors.ErrTargetNotFound)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if to == models.DealStagePassed && reason == "" {
		return nil, apperrors.ErrPassReasonRequired
	}
	if err := workflow.Transition(target.Stage, to); err != nil {
		return nil, translateWorkflow(err, apperrors.ErrInvalidStageTransition, nil)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"stage":            to,
		"stage_changed_at": now,
	}
	if to == models.DealStagePassed {
		updates["passed_reason"] = reason
		target.PassedReason = reason
	}
	if err := moveFromStage(s.db, target, updates); err != nil {
		return nil, err
	}
	target.Stage = to
	target.StageChangedAt = &now
	return target, nil
}

// moveFromStage applies updates only while the row is still in the stage
// target was read with. A concurrent move in between leaves nothing to
// update and reports an invalid transition.
func moveFromStage(db *gorm.DB, target *models.Target, updates map[string]interface{}) error {
	res := db.Model(target).Where("stage = ?", target.Stage).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidStageTransition, "Target moved to another stage; reload and retry")
	}
	return nil
}

// GetFunnel groups the pipeline by stage, optionally for one SPAC.
func (s *targetService) GetFunnel(ac auth.Context, spacID *string) ([]analytics.FunnelStage, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	if err := optionalSPAC(s.db, ac.OrgID, spacID); err != nil {
		return nil, err
	}
	inputs, err := s.dashboard.FunnelInputs(context.Background(), ac.OrgID, spacID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	funnel, err := analytics.Funnel(inputs)
	if err != nil {
		return nil, wrapAnalytics(err)
	}
	return funnel, nil
}
