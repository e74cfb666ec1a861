package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/pagination"
)

// taskService handles SPAC and deal tasks.
type taskService struct {
	db *gorm.DB
}

// NewTaskService creates a new TaskServicer.
func NewTaskService(db *gorm.DB) TaskServicer {
	return &taskService{db: db}
}

func (s *taskService) checkLinks(orgID string, spacID, targetID, assigneeID *string) error {
	if err := optionalSPAC(s.db, orgID, spacID); err != nil {
		return err
	}
	if targetID != nil {
		if _, err := findOwned[models.Target](s.db, orgID, *targetID, apperrors.ErrTargetNotFound); err != nil {
			return err
		}
	}
	if assigneeID != nil {
		var count int64
		if err := s.db.Model(&models.TeamMember{}).
			Where("organization_id = ? AND user_id = ?", orgID, *assigneeID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "assignee is not a member of this organization")
		}
	}
	return nil
}

// CreateTask creates a task.
func (s *taskService) CreateTask(ac auth.Context, in TaskInput) (*models.Task, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "task title is required")
	}
	if in.Status == "" {
		in.Status = models.TaskStatusNotStarted
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !in.Status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown task status "+string(in.Status))
	}
	if !in.Priority.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown task priority "+string(in.Priority))
	}
	if err := s.checkLinks(ac.OrgID, in.SPACID, in.TargetID, in.AssigneeID); err != nil {
		return nil, err
	}

	task := &models.Task{
		OrganizationID: ac.OrgID,
		SPACID:         in.SPACID,
		TargetID:       in.TargetID,
		Title:          in.Title,
		Description:    in.Description,
		DueDate:        in.DueDate,
		Status:         in.Status,
		Priority:       in.Priority,
		AssigneeID:     in.AssigneeID,
	}
	if in.Status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return task, nil
}

// ListTasks retrieves a paginated list of tasks, soonest due first.
func (s *taskService) ListTasks(ac auth.Context, page pagination.PageRequest, filter TaskFilter) (*pagination.PageResponse[models.Task], error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.Task{}).Where("organization_id = ?", ac.OrgID)
	if filter.SPACID != nil {
		base = base.Where("spac_id = ?", *filter.SPACID)
	}
	if filter.TargetID != nil {
		base = base.Where("target_id = ?", *filter.TargetID)
	}
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		base = base.Where("priority = ?", *filter.Priority)
	}
	if filter.AssigneeID != nil {
		base = base.Where("assignee_id = ?", *filter.AssigneeID)
	}
	base = base.Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var tasks []models.Task
	if err := base.Order("due_date IS NULL").Order("due_date ASC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&tasks).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range tasks {
		if err := checkTaskVocabulary(&tasks[i]); err != nil {
			return nil, err
		}
	}

	result := pagination.NewPageResponse(tasks, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func checkTaskVocabulary(task *models.Task) error {
	if !task.Status.Valid() || !task.Priority.Valid() {
		return apperrors.WithMessage(apperrors.ErrUnknownEnumValue,
			"task "+task.ID+" has status "+string(task.Status)+" and priority "+string(task.Priority))
	}
	return nil
}

// GetTask retrieves one task.
func (s *taskService) GetTask(ac auth.Context, id string) (*models.Task, error) {
	if err := ac.Require(models.RoleViewer); err != nil {
		return nil, err
	}
	task, err := findOwned[models.Task](s.db, ac.OrgID, id, apperrors.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	if err := checkTaskVocabulary(task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the non-nil fields of upd. Moving to COMPLETED stamps
// CompletedAt; moving away clears it.
func (s *taskService) UpdateTask(ac auth.Context, id string, upd TaskUpdate) (*models.Task, error) {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return nil, err
	}
	task, err := findOwned[models.Task](s.db, ac.OrgID, id, apperrors.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "task title must not be empty")
		}
		updates["title"] = title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.DueDate != nil {
		updates["due_date"] = *upd.DueDate
	}
	if upd.Priority != nil {
		if !upd.Priority.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown task priority "+string(*upd.Priority))
		}
		updates["priority"] = *upd.Priority
	}
	if upd.AssigneeID != nil {
		if *upd.AssigneeID == "" {
			updates["assignee_id"] = nil
		} else {
			if err := s.checkLinks(ac.OrgID, nil, nil, upd.AssigneeID); err != nil {
				return nil, err
			}
			updates["assignee_id"] = *upd.AssigneeID
		}
	}
	if upd.Status != nil && *upd.Status != task.Status {
		if !upd.Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown task status "+string(*upd.Status))
		}
		updates["status"] = *upd.Status
		if *upd.Status == models.TaskStatusCompleted {
			updates["completed_at"] = time.Now()
		} else {
			updates["completed_at"] = nil
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetTask(ac, task.ID)
}

// DeleteTask soft-deletes a task.
func (s *taskService) DeleteTask(ac auth.Context, id string) error {
	if err := ac.Require(models.RoleAnalyst); err != nil {
		return err
	}
	task, err := findOwned[models.Task](s.db, ac.OrgID, id, apperrors.ErrTaskNotFound)
	if err != nil {
		return err
	}
	if err := s.db.Delete(task).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
