package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"spacos/internal/auth"
	apperrors "spacos/internal/errors"
	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/services"
)

const testTaskID = "0190a0b0-0000-7000-8000-000000000401"

type mockTaskService struct {
	createTaskFn func(ac auth.Context, in services.TaskInput) (*models.Task, error)
	listTasksFn  func(ac auth.Context, page pagination.PageRequest, filter services.TaskFilter) (*pagination.PageResponse[models.Task], error)
	getTaskFn    func(ac auth.Context, id string) (*models.Task, error)
	updateTaskFn func(ac auth.Context, id string, upd services.TaskUpdate) (*models.Task, error)
	deleteTaskFn func(ac auth.Context, id string) error
}

var _ services.TaskServicer = (*mockTaskService)(nil)

func (m *mockTaskService) CreateTask(ac auth.Context, in services.TaskInput) (*models.Task, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ac, in)
	}
	return &models.Task{Base: models.Base{ID: testTaskID}, Title: in.Title}, nil
}

func (m *mockTaskService) ListTasks(ac auth.Context, page pagination.PageRequest, filter services.TaskFilter) (*pagination.PageResponse[models.Task], error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ac, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Task{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTaskService) GetTask(ac auth.Context, id string) (*models.Task, error) {
	if m.getTaskFn != nil {
		return m.getTaskFn(ac, id)
	}
	return &models.Task{Base: models.Base{ID: id}}, nil
}

func (m *mockTaskService) UpdateTask(ac auth.Context, id string, upd services.TaskUpdate) (*models.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ac, id, upd)
	}
	return &models.Task{Base: models.Base{ID: id}}, nil
}

func (m *mockTaskService) DeleteTask(ac auth.Context, id string) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ac, id)
	}
	return nil
}

func setupTaskRouter(svc services.TaskServicer) *gin.Engine {
	h := NewTaskHandler(svc, &mockAuditService{})
	r := gin.New()
	g := r.Group("", injectAuth(analyst()))
	g.POST("/tasks", h.CreateTask)
	g.GET("/tasks", h.ListTasks)
	g.GET("/tasks/:id", h.GetTask)
	g.PUT("/tasks/:id", h.UpdateTask)
	g.DELETE("/tasks/:id", h.DeleteTask)
	return r
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Run("returns 201 with parsed fields", func(t *testing.T) {
		var got services.TaskInput
		svc := &mockTaskService{
			createTaskFn: func(_ auth.Context, in services.TaskInput) (*models.Task, error) {
				got = in
				return &models.Task{Base: models.Base{ID: testTaskID}, Title: in.Title}, nil
			},
		}
		r := setupTaskRouter(svc)

		rec := doRequest(r, "POST", "/tasks",
			`{"spac_id":"`+testSPACID+`","title":"Draft S-4","due_date":"2025-03-01","priority":"HIGH","assignee_id":"`+testUserID+`"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Priority != models.TaskPriorityHigh {
			t.Errorf("expected HIGH priority, got %q", got.Priority)
		}
		if got.DueDate == nil {
			t.Error("expected due date to be parsed")
		}
		if got.AssigneeID == nil || *got.AssigneeID != testUserID {
			t.Errorf("expected assignee %s, got %v", testUserID, got.AssigneeID)
		}
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		r := setupTaskRouter(&mockTaskService{})

		rec := doRequest(r, "POST", "/tasks", `{"title":"Draft S-4","priority":"URGENT"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_ENUM_VALUE")
	})

	t.Run("returns 400 without title", func(t *testing.T) {
		r := setupTaskRouter(&mockTaskService{})

		rec := doRequest(r, "POST", "/tasks", `{"priority":"LOW"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.TaskFilter
		svc := &mockTaskService{
			listTasksFn: func(_ auth.Context, _ pagination.PageRequest, filter services.TaskFilter) (*pagination.PageResponse[models.Task], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Task{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTaskRouter(svc)

		rec := doRequest(r, "GET", "/tasks?status=BLOCKED&priority=CRITICAL&assignee_id="+testUserID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Status == nil || *got.Status != models.TaskStatusBlocked {
			t.Errorf("expected BLOCKED filter, got %v", got.Status)
		}
		if got.Priority == nil || *got.Priority != models.TaskPriorityCritical {
			t.Errorf("expected CRITICAL filter, got %v", got.Priority)
		}
		if got.AssigneeID == nil || *got.AssigneeID != testUserID {
			t.Errorf("expected assignee filter, got %v", got.AssigneeID)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		r := setupTaskRouter(&mockTaskService{})

		rec := doRequest(r, "GET", "/tasks?status=DONE", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_ENUM_VALUE")
	})

	t.Run("rejects oversized page", func(t *testing.T) {
		r := setupTaskRouter(&mockTaskService{})

		rec := doRequest(r, "GET", "/tasks?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	t.Run("passes only supplied fields", func(t *testing.T) {
		var got services.TaskUpdate
		svc := &mockTaskService{
			updateTaskFn: func(_ auth.Context, id string, upd services.TaskUpdate) (*models.Task, error) {
				got = upd
				return &models.Task{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupTaskRouter(svc)

		rec := doRequest(r, "PUT", "/tasks/"+testTaskID, `{"status":"COMPLETED"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Status == nil || *got.Status != models.TaskStatusCompleted {
			t.Errorf("expected COMPLETED, got %v", got.Status)
		}
		if got.Title != nil || got.DueDate != nil || got.Priority != nil {
			t.Error("expected untouched fields to stay nil")
		}
	})

	t.Run("maps not found", func(t *testing.T) {
		svc := &mockTaskService{
			updateTaskFn: func(_ auth.Context, _ string, _ services.TaskUpdate) (*models.Task, error) {
				return nil, apperrors.ErrTaskNotFound
			},
		}
		r := setupTaskRouter(svc)

		rec := doRequest(r, "PUT", "/tasks/"+testTaskID, `{"title":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TASK_NOT_FOUND")
	})
}
