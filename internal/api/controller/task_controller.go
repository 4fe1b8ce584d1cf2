package controller

import (
	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TaskController handles task HTTP requests. Every route is behind RequireAuth.
type TaskController struct {
	taskService service.TaskService
}

// NewTaskController creates a new TaskController.
func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// Create handles POST /tasks.
func (tc *TaskController) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := tc.taskService.Create(c.Request.Context(), user, &req)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.CreatedResponse(c, task)
}

// List handles GET /tasks.
func (tc *TaskController) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	tasks, err := tc.taskService.List(c.Request.Context(), user)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.SuccessResponseList(c, tasks)
}

// Update handles PUT /tasks/:id.
func (tc *TaskController) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	task, err := tc.taskService.Update(c.Request.Context(), user, taskID, &req)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.SuccessResponse(c, task)
}

// Delete handles DELETE /tasks/:id.
func (tc *TaskController) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := tc.taskService.Delete(c.Request.Context(), user, taskID); err != nil {
		response.ServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func taskIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, "task id must be a positive integer")
		return 0, false
	}
	return id, true
}
