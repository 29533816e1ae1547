package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nedu/taskhub/internal/domain"
	"github.com/nedu/taskhub/internal/repository/postgres"
	"github.com/nedu/taskhub/internal/service"
	"github.com/nedu/taskhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	userID uuid.UUID
	event  domain.EventType
	taskID uuid.UUID
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, event domain.EventType, task *domain.Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{userID: userID, event: event, taskID: task.ID})
}

func (n *recordingNotifier) last(t *testing.T) recordedEvent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		t.Fatal("no events recorded")
	}
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func newTaskService(t *testing.T) (*service.TaskService, *recordingNotifier, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	taskService := service.NewTaskService(repos.Task, repos.User)
	notifier := &recordingNotifier{}
	taskService.SetNotifier(notifier)
	return taskService, notifier, testDB
}

func TestTaskService_Create(t *testing.T) {
	taskService, notifier, testDB := newTaskService(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	assignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("defaults to to_do and tells the assignee", func(t *testing.T) {
		task, err := taskService.Create(ctx, admin.ID, service.CreateTaskInput{
			Title:                  "Prepare quarterly report",
			Points:                 3,
			Priority:               2,
			AssignedTo:             assignee.ID,
			ExpectedCompletionDate: time.Now().Add(72 * time.Hour),
			Note:                   "Use last quarter's template",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskToDo, task.Status)
		assert.Equal(t, admin.ID, task.CreatedBy)
		require.Len(t, task.Notes, 1)
		assert.Equal(t, admin.ID, task.Notes[0].MadeBy)

		evt := notifier.last(t)
		assert.Equal(t, domain.EventNewTask, evt.event)
		assert.Equal(t, assignee.ID, evt.userID)
		assert.Equal(t, task.ID, evt.taskID)
	})

	t.Run("explicit backlog status accepted", func(t *testing.T) {
		task, err := taskService.Create(ctx, admin.ID, service.CreateTaskInput{
			Title:                  "Backlog item",
			Points:                 1,
			Priority:               1,
			AssignedTo:             assignee.ID,
			ExpectedCompletionDate: time.Now().Add(72 * time.Hour),
			Status:                 domain.TaskBacklog,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskBacklog, task.Status)
	})

	t.Run("cannot start beyond to_do", func(t *testing.T) {
		_, err := taskService.Create(ctx, admin.ID, service.CreateTaskInput{
			Title:                  "Born completed",
			Points:                 1,
			Priority:               1,
			AssignedTo:             assignee.ID,
			ExpectedCompletionDate: time.Now().Add(72 * time.Hour),
			Status:                 domain.TaskCompleted,
		})
		assert.ErrorIs(t, err, domain.ErrBadRequest)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		_, err := taskService.Create(ctx, admin.ID, service.CreateTaskInput{
			Title:                  "Orphan",
			Points:                 1,
			Priority:               1,
			AssignedTo:             uuid.New(),
			ExpectedCompletionDate: time.Now().Add(72 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTaskService_AssigneeUpdate(t *testing.T) {
	taskService, notifier, testDB := newTaskService(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	assignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	task := testutil.NewTaskBuilder().
		WithCreator(admin).
		WithAssignee(assignee).
		Build(t, testDB.DB)

	t.Run("assignee progresses status and creator is told", func(t *testing.T) {
		updated, err := taskService.AssigneeUpdate(ctx, task.ID, assignee.ID, service.UpdateTaskInput{
			Status: domain.TaskInProgress,
			Note:   "Started this morning",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskInProgress, updated.Status)
		require.Len(t, updated.Notes, 1)
		assert.Equal(t, assignee.ID, updated.Notes[0].MadeBy)

		evt := notifier.last(t)
		assert.Equal(t, domain.EventTaskUpdate, evt.event)
		assert.Equal(t, admin.ID, evt.userID)
	})

	t.Run("completion gets its own event", func(t *testing.T) {
		now := time.Now()
		updated, err := taskService.AssigneeUpdate(ctx, task.ID, assignee.ID, service.UpdateTaskInput{
			Status:               domain.TaskCompleted,
			ActualCompletionDate: &now,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskCompleted, updated.Status)
		require.NotNil(t, updated.ActualCompletionDate)

		evt := notifier.last(t)
		assert.Equal(t, domain.EventTaskCompleted, evt.event)
		assert.Equal(t, admin.ID, evt.userID)
	})

	t.Run("only the assignee may touch it", func(t *testing.T) {
		before := notifier.count()
		_, err := taskService.AssigneeUpdate(ctx, task.ID, stranger.ID, service.UpdateTaskInput{
			Status: domain.TaskBlocked,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, before, notifier.count())
	})

	t.Run("assignee cannot approve", func(t *testing.T) {
		_, err := taskService.AssigneeUpdate(ctx, task.ID, assignee.ID, service.UpdateTaskInput{
			Status: domain.TaskApproved,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("definition fields are ignored", func(t *testing.T) {
		title := "Hijacked title"
		updated, err := taskService.AssigneeUpdate(ctx, task.ID, assignee.ID, service.UpdateTaskInput{
			Title: &title,
			Note:  "just a note",
		})
		require.NoError(t, err)
		assert.NotEqual(t, title, updated.Title)
	})
}

func TestTaskService_ApprovedIsFinal(t *testing.T) {
	taskService, notifier, testDB := newTaskService(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	assignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	task := testutil.NewTaskBuilder().
		WithCreator(admin).
		WithAssignee(assignee).
		WithStatus(domain.TaskCompleted).
		Build(t, testDB.DB)

	// Approval lands at the assignee with its own event.
	approved, err := taskService.AdminUpdate(ctx, task.ID, admin.ID, service.UpdateTaskInput{
		Status: domain.TaskApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskApproved, approved.Status)

	evt := notifier.last(t)
	assert.Equal(t, domain.EventTaskApproval, evt.event)
	assert.Equal(t, assignee.ID, evt.userID)

	// From here the task is immutable for everyone.
	_, err = taskService.AdminUpdate(ctx, task.ID, admin.ID, service.UpdateTaskInput{
		Status: domain.TaskInProgress,
	})
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	_, err = taskService.AssigneeUpdate(ctx, task.ID, assignee.ID, service.UpdateTaskInput{
		Note: "one more thing",
	})
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	err = taskService.Delete(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotPermitted)
}

func TestTaskService_Delete(t *testing.T) {
	taskService, notifier, testDB := newTaskService(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	assignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	task := testutil.NewTaskBuilder().
		WithCreator(admin).
		WithAssignee(assignee).
		Build(t, testDB.DB)

	before := notifier.count()
	require.NoError(t, taskService.Delete(ctx, task.ID))

	// Soft delete: the row survives with the deleted status and no
	// event is emitted.
	stored, err := taskService.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskDeleted, stored.Status)
	assert.Equal(t, before, notifier.count())
}

func TestTaskService_AdminUpdate_Reassign(t *testing.T) {
	taskService, notifier, testDB := newTaskService(t)
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	assignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	newAssignee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	task := testutil.NewTaskBuilder().
		WithCreator(admin).
		WithAssignee(assignee).
		Build(t, testDB.DB)

	updated, err := taskService.AdminUpdate(ctx, task.ID, admin.ID, service.UpdateTaskInput{
		AssignedTo: &newAssignee.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, newAssignee.ID, updated.AssignedTo)

	// The event chases the task to its new assignee.
	evt := notifier.last(t)
	assert.Equal(t, domain.EventTaskUpdate, evt.event)
	assert.Equal(t, newAssignee.ID, evt.userID)
}
