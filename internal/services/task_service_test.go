package services

import (
	"testing"
	"time"

	"spacos/internal/models"
	"spacos/internal/pagination"
	"spacos/internal/testutil"
)

func TestCreateTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	ac, org, user := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)
	target := testutil.CreateTestTarget(t, db, org.ID, &spac.ID)

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.CreateTask(ac, TaskInput{SPACID: &spac.ID, TargetID: &target.ID, Title: "Engage auditors", AssigneeID: &user.ID})
		testutil.AssertNoError(t, err)
		if task.Status != models.TaskStatusNotStarted || task.Priority != models.TaskPriorityMedium {
			t.Errorf("expected NOT_STARTED/MEDIUM, got %s/%s", task.Status, task.Priority)
		}
		if task.CompletedAt != nil {
			t.Error("expected no completion time")
		}
	})

	t.Run("outsider_assignee", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db)
		_, err := svc.CreateTask(ac, TaskInput{Title: "Review", AssigneeID: &outsider.ID})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_target", func(t *testing.T) {
		_, err := svc.CreateTask(ac, TaskInput{Title: "Review", TargetID: ptrString("00000000-0000-0000-0000-000000000000")})
		testutil.AssertAppError(t, err, "TARGET_NOT_FOUND")
	})

	t.Run("bad_priority", func(t *testing.T) {
		_, err := svc.CreateTask(ac, TaskInput{Title: "Review", Priority: "URGENT"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestTaskCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)
	task := testutil.CreateTestTask(t, db, org.ID, spac.ID, nil)

	done := models.TaskStatusCompleted
	got, err := svc.UpdateTask(ac, task.ID, TaskUpdate{Status: &done})
	testutil.AssertNoError(t, err)
	if got.CompletedAt == nil {
		t.Fatal("expected completion time to be stamped")
	}

	reopened := models.TaskStatusInProgress
	got, err = svc.UpdateTask(ac, task.ID, TaskUpdate{Status: &reopened})
	testutil.AssertNoError(t, err)
	if got.CompletedAt != nil {
		t.Errorf("expected completion time cleared, got %v", got.CompletedAt)
	}
}

func TestListTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleViewer)
	spac := testutil.CreateTestSPAC(t, db, org.ID)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	later := testutil.CreateTestTask(t, db, org.ID, spac.ID, ptrTime(base.AddDate(0, 0, 10)))
	sooner := testutil.CreateTestTask(t, db, org.ID, spac.ID, ptrTime(base))
	undated := testutil.CreateTestTask(t, db, org.ID, spac.ID, nil)
	db.Model(later).Update("priority", models.TaskPriorityHigh)

	res, err := svc.ListTasks(ac, pagination.PageRequest{}, TaskFilter{SPACID: &spac.ID})
	testutil.AssertNoError(t, err)
	if len(res.Data) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(res.Data))
	}
	if res.Data[0].ID != sooner.ID || res.Data[1].ID != later.ID || res.Data[2].ID != undated.ID {
		t.Errorf("expected due-date order with undated last, got %s, %s, %s", res.Data[0].Title, res.Data[1].Title, res.Data[2].Title)
	}

	high := models.TaskPriorityHigh
	res, err = svc.ListTasks(ac, pagination.PageRequest{}, TaskFilter{Priority: &high})
	testutil.AssertNoError(t, err)
	if res.TotalItems != 1 || res.Data[0].ID != later.ID {
		t.Errorf("expected only the high priority task, got %+v", res.Data)
	}
}

func TestDeleteTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTaskService(db)
	ac, org, _ := testutil.CreateTestActor(t, db, models.RoleAnalyst)
	spac := testutil.CreateTestSPAC(t, db, org.ID)
	task := testutil.CreateTestTask(t, db, org.ID, spac.ID, nil)

	other, _, _ := testutil.CreateTestActor(t, db, models.RoleAdmin)
	err := NewTaskService(db).DeleteTask(other, task.ID)
	testutil.AssertAppError(t, err, "TASK_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteTask(ac, task.ID))
	_, err = svc.GetTask(ac, task.ID)
	testutil.AssertAppError(t, err, "TASK_NOT_FOUND")
}
