package server

import (
	"context"
	"ctchen222/Task-Tracker/internal/api/controller"
	"ctchen222/Task-Tracker/internal/api/middleware"
	"ctchen222/Task-Tracker/internal/api/response"
	"ctchen222/Task-Tracker/internal/api/service"
	"ctchen222/Task-Tracker/internal/realtime"
	appvalidator "ctchen222/Task-Tracker/internal/validator"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

var registerValidation sync.Once

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries everything the HTTP layer is built from.
type Options struct {
	DB             Pinger
	AuthService    service.AuthService
	TaskService    service.TaskService
	Feed           *realtime.Feed // nil answers /ws/tasks with 503
	AllowedOrigins []string       // empty disables CORS
}

type Server struct {
	engine         *gin.Engine
	db             Pinger
	allowedOrigins []string
}

// NewServer builds the gin engine with every route registered.
func NewServer(opts Options) *Server {
	registerValidation.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := appvalidator.Register(v); err != nil {
				slog.Error("failed to register custom validations", "error", err)
			}
		}
	})

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Tracing())

	s := &Server{
		engine:         engine,
		db:             opts.DB,
		allowedOrigins: opts.AllowedOrigins,
	}
	s.registerHandlers(opts)
	return s
}

func (s *Server) registerHandlers(opts Options) {
	userController := controller.NewUserController(opts.AuthService)
	taskController := controller.NewTaskController(opts.TaskService)
	requireAuth := middleware.RequireAuth(opts.AuthService)

	s.engine.GET("/healthz", s.health)

	s.engine.POST("/register/user", userController.Register)
	s.engine.POST("/token", userController.Login)

	tasks := s.engine.Group("/tasks", requireAuth)
	tasks.POST("", taskController.Create)
	tasks.GET("", taskController.List)
	tasks.PUT("/:id", taskController.Update)
	tasks.DELETE("/:id", taskController.Delete)

	feed := feedUnavailable
	if opts.Feed != nil {
		feed = opts.Feed.Handle
	}
	s.engine.GET("/ws/tasks",
		middleware.RequireAuth(opts.AuthService, middleware.WithQueryToken("access_token")),
		feed)
}

func feedUnavailable(c *gin.Context) {
	response.ErrorResponse(c, http.StatusServiceUnavailable, "live updates unavailable")
}

func (s *Server) health(c *gin.Context) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", "error", err)
			response.ErrorResponse(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	response.SuccessResponse(c, gin.H{"status": "ok"})
}

// Engine exposes the underlying gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped with CORS handling when origins are configured.
func (s *Server) Handler() http.Handler {
	if len(s.allowedOrigins) == 0 {
		return s.engine
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(s.engine)
}

// OriginChecker builds a websocket origin check from the CORS allow-list.
// With no configured origins only same-origin upgrades are accepted.
func OriginChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
