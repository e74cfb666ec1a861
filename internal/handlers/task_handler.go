package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

// TaskHandler handles task tracking requests.
type TaskHandler struct {
	taskService  services.TaskServicer
	auditService services.AuditServicer
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService services.TaskServicer, auditService services.AuditServicer) *TaskHandler {
	return &TaskHandler{taskService: taskService, auditService: auditService}
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	SPACID      *string             `json:"spac_id" binding:"omitempty,uuid"`
	TargetID    *string             `json:"target_id" binding:"omitempty,uuid"`
	Title       string              `json:"title" binding:"required,min=1,max=200"`
	Description string              `json:"description" binding:"max=2000"`
	DueDate     string              `json:"due_date"`
	Status      models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
	Priority    models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
	AssigneeID  *string             `json:"assignee_id" binding:"omitempty,uuid"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string              `json:"description" binding:"omitempty,max=2000"`
	DueDate     *string              `json:"due_date"`
	Status      *models.TaskStatus   `json:"status" binding:"omitempty,task_status"`
	Priority    *models.TaskPriority `json:"priority" binding:"omitempty,task_priority"`
	AssigneeID  *string              `json:"assignee_id" binding:"omitempty,uuid"`
}

// CreateTask handles the creation of a new task
// @Summary     Create a task
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTaskRequest true "Task details"
// @Success     201 {object} models.Task "Task created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Linked SPAC or target not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(ac, services.TaskInput{
		SPACID:      req.SPACID,
		TargetID:    req.TargetID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "CREATE_TASK", "task", task.ID, c.ClientIP(),
		map[string]interface{}{"title": req.Title})

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// ListTasks handles the retrieval of tasks
// @Summary     List tasks
// @Description Paginated tasks ordered by due date, undated last
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       spac_id     query string false "SPAC ID"
// @Param       target_id   query string false "Target ID"
// @Param       status      query string false "Task status"
// @Param       priority    query string false "Task priority"
// @Param       assignee_id query string false "Assignee user ID"
// @Success     200 {object} pagination.PageResponse[models.Task] "Paginated tasks"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter := services.TaskFilter{
		SPACID:     optionalQuery(c, "spac_id"),
		TargetID:   optionalQuery(c, "target_id"),
		AssigneeID: optionalQuery(c, "assignee_id"),
	}
	if v := c.Query("status"); v != "" {
		status, err := models.ParseTaskStatus(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority, err := models.ParseTaskPriority(v)
		if err != nil {
			respondWithError(c, enumError(err))
			return
		}
		filter.Priority = &priority
	}

	result, err := h.taskService.ListTasks(ac, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTask handles the retrieval of a single task
// @Summary     Get task by ID
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Task ID"
// @Success     200 {object} models.Task "Task"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	task, err := h.taskService.GetTask(ac, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// UpdateTask handles updating a task
// @Summary     Update task
// @Description Update a task. Moving it to COMPLETED stamps the completion time.
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Task ID"
// @Param       request body UpdateTaskRequest true "Updated task details"
// @Success     200 {object} models.Task "Updated task"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	dueDate, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	task, err := h.taskService.UpdateTask(ac, id, services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "UPDATE_TASK", "task", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"task": task})
}

// DeleteTask handles deleting a task
// @Summary     Delete task
// @Tags        tasks
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Task ID"
// @Success     200 {object} map[string]string "Task deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Task not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	ac, err := getAuthContext(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if err := h.taskService.DeleteTask(ac, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(ac, "DELETE_TASK", "task", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
