package models

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a task owned by a single user.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description"`
	Status      TaskStatus `db:"status" json:"status"`
	UserID      int64      `db:"user_id" json:"-"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id.
// Nil or empty fields leave the stored value unchanged.
type UpdateTaskRequest struct {
	Title       *string     `json:"title" binding:"omitempty,max=200"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Status      *TaskStatus `json:"status" binding:"omitempty,taskstatus"`
}

// TaskPatch carries the fields to overwrite on an owned task.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
}
