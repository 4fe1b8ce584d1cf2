package repository

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/db"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	pool, err := db.Connect(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "repo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	require.NoError(t, db.Migrate(ctx, pool))
	return pool
}

func createUser(t *testing.T, repo UserRepository, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, PasswordHash: "hash-" + username}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	alice := createUser(t, repo, "alice", "alice@x.com")
	assert.NotZero(t, alice.ID)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, byName)

	byEmail, err := repo.GetUserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, alice, byEmail)

	byID, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, byID)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))
	alice := createUser(t, repo, "alice", "alice@x.com")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "same username", username: "alice", email: "other@x.com"},
		{name: "same email", username: "other", email: "alice@x.com"},
		{name: "both", username: "alice", email: "alice@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateUser(ctx, &models.User{Username: tt.username, Email: tt.email, PasswordHash: "x"})
			assert.ErrorIs(t, err, ErrDuplicate)
		})
	}

	stored, err := repo.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, stored)
}

func TestTaskRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pool := newTestDB(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	alice := createUser(t, users, "alice", "alice@x.com")
	bob := createUser(t, users, "bob", "bob@x.com")

	first := &models.Task{Title: "buy milk", Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, tasks.Create(ctx, first))
	assert.NotZero(t, first.ID)
	assert.Nil(t, first.Description)

	second := &models.Task{Title: "walk dog", Description: strPtr("twice"), Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, tasks.Create(ctx, second))
	require.NoError(t, tasks.Create(ctx, &models.Task{Title: "bob's", Status: models.StatusPending, UserID: bob.ID}))

	list, err := tasks.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Task{*first, *second}, list)

	empty, err := tasks.ListByOwner(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTaskRepository_CreateRequiresExistingOwner(t *testing.T) {
	tasks := NewTaskRepository(newTestDB(t))
	err := tasks.Create(context.Background(), &models.Task{Title: "orphan", Status: models.StatusPending, UserID: 404})
	assert.Error(t, err)
}

func TestTaskRepository_UpdateOwned(t *testing.T) {
	ctx := context.Background()
	pool := newTestDB(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	alice := createUser(t, users, "alice", "alice@x.com")
	task := &models.Task{Title: "buy milk", Description: strPtr("2 litres"), Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, tasks.Create(ctx, task))

	completed := models.StatusCompleted
	empty := ""

	tests := []struct {
		name  string
		patch models.TaskPatch
		want  models.Task
	}{
		{
			name:  "status only",
			patch: models.TaskPatch{Status: &completed},
			want:  models.Task{ID: task.ID, Title: "buy milk", Description: strPtr("2 litres"), Status: models.StatusCompleted, UserID: alice.ID},
		},
		{
			name:  "empty fields are ignored",
			patch: models.TaskPatch{Title: &empty, Description: &empty},
			want:  models.Task{ID: task.ID, Title: "buy milk", Description: strPtr("2 litres"), Status: models.StatusCompleted, UserID: alice.ID},
		},
		{
			name:  "title and description",
			patch: models.TaskPatch{Title: strPtr("buy oat milk"), Description: strPtr("1 litre")},
			want:  models.Task{ID: task.ID, Title: "buy oat milk", Description: strPtr("1 litre"), Status: models.StatusCompleted, UserID: alice.ID},
		},
		{
			name:  "no fields",
			patch: models.TaskPatch{},
			want:  models.Task{ID: task.ID, Title: "buy oat milk", Description: strPtr("1 litre"), Status: models.StatusCompleted, UserID: alice.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tasks.UpdateOwned(ctx, alice.ID, task.ID, tt.patch)
			require.NoError(t, err)
			assert.Equal(t, &tt.want, got)
		})
	}
}

func TestTaskRepository_OwnershipGate(t *testing.T) {
	ctx := context.Background()
	pool := newTestDB(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	alice := createUser(t, users, "alice", "alice@x.com")
	bob := createUser(t, users, "bob", "bob@x.com")
	task := &models.Task{Title: "alice's", Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, tasks.Create(ctx, task))

	_, err := tasks.UpdateOwned(ctx, bob.ID, task.ID, models.TaskPatch{Title: strPtr("stolen")})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tasks.UpdateOwned(ctx, bob.ID, task.ID+100, models.TaskPatch{Title: strPtr("missing")})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, tasks.DeleteOwned(ctx, bob.ID, task.ID), ErrNotFound)
	assert.ErrorIs(t, tasks.DeleteOwned(ctx, bob.ID, task.ID+100), ErrNotFound)

	list, err := tasks.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice's", list[0].Title)

	require.NoError(t, tasks.DeleteOwned(ctx, alice.ID, task.ID))
	assert.ErrorIs(t, tasks.DeleteOwned(ctx, alice.ID, task.ID), ErrNotFound)
}
