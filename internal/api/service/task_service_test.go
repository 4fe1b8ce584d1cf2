package service

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/repository"
	"ctchen222/Task-Tracker/internal/api/repository/mocks"
	"ctchen222/Task-Tracker/internal/events"
	eventmocks "ctchen222/Task-Tracker/internal/events/mocks"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	alice = &models.User{ID: 1, Username: "alice", Email: "alice@x.com"}
	bob   = &models.User{ID: 2, Username: "bob", Email: "bob@x.com"}
)

func newTaskFixture(t *testing.T) (*mocks.MockTaskRepository, *eventmocks.MockPublisher, TaskService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTaskRepository(ctrl)
	pub := eventmocks.NewMockPublisher(ctrl)
	return repo, pub, NewTaskService(repo, pub)
}

func eventOfType(eventType string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		e, ok := x.(events.Event)
		return ok && e.Type == eventType
	})
}

func TestTaskService_Create(t *testing.T) {
	repo, pub, svc := newTaskFixture(t)
	desc := "2 litres"

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, task *models.Task) error {
		assert.Equal(t, models.StatusPending, task.Status)
		assert.Equal(t, alice.ID, task.UserID)
		task.ID = 10
		return nil
	})
	pub.EXPECT().Publish(gomock.Any(), alice.ID, eventOfType(events.TaskCreated)).Return(nil)

	task, err := svc.Create(context.Background(), alice, &models.CreateTaskRequest{Title: "buy milk", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, &models.Task{ID: 10, Title: "buy milk", Description: &desc, Status: models.StatusPending, UserID: alice.ID}, task)
}

func TestTaskService_Create_PublishFailureDoesNotFailRequest(t *testing.T) {
	repo, pub, svc := newTaskFixture(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), alice.ID, gomock.Any()).Return(errors.New("redis down"))

	task, err := svc.Create(context.Background(), alice, &models.CreateTaskRequest{Title: "buy milk"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
}

func TestTaskService_Create_StoreFailure(t *testing.T) {
	repo, _, svc := newTaskFixture(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk I/O error"))

	task, err := svc.Create(context.Background(), alice, &models.CreateTaskRequest{Title: "buy milk"})
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestTaskService_List(t *testing.T) {
	repo, _, svc := newTaskFixture(t)
	stored := []models.Task{{ID: 1, Title: "a", Status: models.StatusPending, UserID: alice.ID}}

	repo.EXPECT().ListByOwner(gomock.Any(), alice.ID).Return(stored, nil)
	tasks, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, stored, tasks)

	repo.EXPECT().ListByOwner(gomock.Any(), bob.ID).Return(nil, nil)
	tasks, err = svc.List(context.Background(), bob)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskService_Update(t *testing.T) {
	repo, pub, svc := newTaskFixture(t)
	completed := models.StatusCompleted
	updated := &models.Task{ID: 10, Title: "buy milk", Status: models.StatusCompleted, UserID: alice.ID}

	repo.EXPECT().UpdateOwned(gomock.Any(), alice.ID, int64(10), models.TaskPatch{Status: &completed}).Return(updated, nil)
	pub.EXPECT().Publish(gomock.Any(), alice.ID, eventOfType(events.TaskUpdated)).Return(nil)

	task, err := svc.Update(context.Background(), alice, 10, &models.UpdateTaskRequest{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, updated, task)
}

func TestTaskService_Update_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "not owned or missing", repoErr: repository.ErrNotFound, wantErr: ErrNotFound},
		{name: "store failure", repoErr: errors.New("locked"), wantErr: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newTaskFixture(t)
			title := "stolen"
			repo.EXPECT().UpdateOwned(gomock.Any(), bob.ID, int64(10), gomock.Any()).Return(nil, tt.repoErr)

			task, err := svc.Update(context.Background(), bob, 10, &models.UpdateTaskRequest{Title: &title})
			assert.Nil(t, task)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskService_Update_RejectsUnknownStatus(t *testing.T) {
	_, _, svc := newTaskFixture(t)
	bogus := models.TaskStatus("archived")

	_, err := svc.Update(context.Background(), alice, 10, &models.UpdateTaskRequest{Status: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskService_Delete(t *testing.T) {
	repo, pub, svc := newTaskFixture(t)

	repo.EXPECT().DeleteOwned(gomock.Any(), alice.ID, int64(10)).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), alice.ID, eventOfType(events.TaskDeleted)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), alice, 10))

	repo.EXPECT().DeleteOwned(gomock.Any(), bob.ID, int64(10)).Return(repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), bob, 10), ErrNotFound)

	repo.EXPECT().DeleteOwned(gomock.Any(), alice.ID, int64(11)).Return(errors.New("busy"))
	assert.ErrorIs(t, svc.Delete(context.Background(), alice, 11), ErrInternal)
}

func TestNewTaskService_NilPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTaskRepository(ctrl)
	svc := NewTaskService(repo, nil)

	repo.EXPECT().DeleteOwned(gomock.Any(), alice.ID, int64(1)).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), alice, 1))
}
