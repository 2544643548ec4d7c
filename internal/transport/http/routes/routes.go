package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/domain"
	"github.com/arklim/project-planner/internal/infra/config"
	"github.com/arklim/project-planner/internal/transport/http/handlers"
	"github.com/arklim/project-planner/internal/transport/http/middleware"
	"github.com/arklim/project-planner/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Registration *usecase.RegistrationService
	Projects     *usecase.ProjectService
	Tasks        *usecase.TaskService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config        *config.AppConfig
	Logger        *zap.Logger
	Metrics       *middleware.HTTPMetrics
	LoginThrottle *middleware.LoginThrottle
	Services      ServiceSet
	Database      DatabaseChecker
	Cache         CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	readRole := middleware.RequireRole(domain.RoleOrgAdmin, domain.RoleMember)
	writeRole := middleware.RequireRole(domain.RoleOrgAdmin)

	checks := map[string]handlers.DependencyCheck{}
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Registration, deps.Services.Auth, deps.Logger)

		authGroup := api.Group("/auth")
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/register-admin", authHandler.RegisterAdmin)

		if deps.LoginThrottle != nil {
			authGroup.POST("/login", deps.LoginThrottle.Handler(), authHandler.Login)
		} else {
			authGroup.POST("/login", authHandler.Login)
		}

		projectHandler := handlers.NewProjectHandler(deps.Services.Projects, deps.Logger)
		taskHandler := handlers.NewTaskHandler(deps.Services.Tasks, deps.Logger)

		projectGroup := api.Group("/projects")
		projectGroup.Use(authMiddleware)

		projectGroup.GET("", readRole, projectHandler.List)
		projectGroup.GET("/:id", readRole, projectHandler.Get)
		projectGroup.POST("", writeRole, projectHandler.Create)
		projectGroup.PUT("/:id", writeRole, projectHandler.Update)
		projectGroup.DELETE("/:id", writeRole, projectHandler.Delete)

		projectGroup.GET("/:id/tasks", readRole, taskHandler.List)
		projectGroup.GET("/:id/tasks/:taskId", readRole, taskHandler.Get)
		projectGroup.POST("/:id/tasks", writeRole, taskHandler.Create)
		projectGroup.PUT("/:id/tasks/:taskId", writeRole, taskHandler.Update)
		projectGroup.DELETE("/:id/tasks/:taskId", writeRole, taskHandler.Delete)
	}

	return r
}
