package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/handler"
	"github.com/uniconnect/uniconnect-api/internal/middleware"
	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/service"
	"github.com/uniconnect/uniconnect-api/pkg/config"
	"github.com/uniconnect/uniconnect-api/pkg/logger"
	corsmiddleware "github.com/uniconnect/uniconnect-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniconnect/uniconnect-api/pkg/middleware/requestid"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies bundles what the router needs to wire routes.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	AuthService *service.AuthService
	Metrics     *service.MetricsService

	Auth       *handler.AuthHandler
	Accounts   *handler.AccountHandler
	Categories *handler.CategoryHandler
	Complaints *handler.ComplaintHandler
	Stats      *handler.StatsHandler
	Reports    *handler.ReportHandler
	Ops        *handler.MetricsHandler
}

// New builds the gin engine with all middleware and routes attached.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.Ops.Health)
	r.GET("/ready", deps.Ops.Ready)
	r.GET("/metrics", deps.Ops.Prometheus)

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(deps.AuthService), deps.Auth.Logout)
		auth.GET("/me", middleware.JWT(deps.AuthService), deps.Auth.Me)
	}

	complaints := api.Group("/complaints")
	{
		complaints.GET("/categories", deps.Categories.List)
		complaints.POST("/categories",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Categories.Create)

		complaints.POST("",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleStudent),
			deps.Complaints.Create)
		complaints.GET("/my",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleStudent),
			deps.Complaints.ListMine)
		complaints.GET("/assigned",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleStaff),
			deps.Complaints.ListAssigned)
		complaints.GET("",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Complaints.ListAll)
		complaints.PATCH("/:id/status",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleStaff),
			deps.Complaints.UpdateStatus)
		complaints.POST("/assign/:id",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Complaints.Assign)
	}

	if deps.Config.Stats.Enabled && deps.Stats != nil {
		api.GET("/stats/complaints",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Stats.Complaints)
	}

	api.GET("/accounts",
		middleware.JWT(deps.AuthService),
		middleware.RequireRoles(models.RoleAdmin),
		deps.Accounts.List)

	if deps.Config.Reports.Enabled && deps.Reports != nil {
		api.POST("/reports",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Reports.GenerateReport)
		api.GET("/reports/:id",
			middleware.JWT(deps.AuthService),
			middleware.RequireRoles(models.RoleAdmin),
			deps.Reports.ReportStatus)
		// Download is authorized by the signed token alone.
		api.GET("/export/:token", deps.Reports.DownloadReport)
	}

	return r
}
