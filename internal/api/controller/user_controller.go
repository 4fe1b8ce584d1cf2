package controller

import (
	"ctchen222/Task-Tracker/internal/api/models"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController handles user-related HTTP requests.
type UserController struct {
	authService service.AuthService
}

// NewUserController creates a new UserController.
func NewUserController(authService service.AuthService) *UserController {
	return &UserController{
		authService: authService,
	}
}

// Register handles the user registration endpoint.
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := uc.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.CreatedResponse(c, models.RegisterResponse{
		Message: "User created successfully",
		User:    *user,
	})
}

// Login handles the token endpoint. Credentials may be sent as a form (OAuth2
// password flow) or as JSON.
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := uc.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	response.SuccessResponse(c, token)
}
