package router

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/nrb-complaints-api/internal/handler"
	"github.com/noah-isme/nrb-complaints-api/internal/middleware"
	"github.com/noah-isme/nrb-complaints-api/internal/service"
	"github.com/noah-isme/nrb-complaints-api/pkg/config"
	"github.com/noah-isme/nrb-complaints-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/nrb-complaints-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/nrb-complaints-api/pkg/middleware/requestid"
	"github.com/noah-isme/nrb-complaints-api/pkg/storage"
)

// multipartMemory bounds how much of an upload gin buffers in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// Dependencies are the wired services the HTTP surface needs.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *service.MetricsService
	Auth       *service.AuthService
	Sessions   *service.SessionService
	Complaints *service.ComplaintService
	Exports    *service.ExportService
	Storage    *storage.LocalStorage
	// ReadyChecks are probed by GET /ready.
	ReadyChecks map[string]handler.Pinger
}

// New builds the gin engine with every route mounted.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.MaxMultipartMemory = multipartMemory
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	cookie := middleware.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}
	r.Use(middleware.Session(deps.Sessions, cookie, logr))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, cookie, logr)
	complaintHandler := handler.NewComplaintHandler(deps.Complaints, deps.Exports)
	metricsHandler := handler.NewMetricsHandler(deps.Metrics, deps.ReadyChecks)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.Static(deps.Storage.URLPrefix(), deps.Storage.Dir())
	if cfg.WebRoot != "" {
		r.StaticFile("/", filepath.Join(cfg.WebRoot, "index.html"))
	}

	api := r.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/session", authHandler.Session)

	complaints := api.Group("/complaints")
	complaints.POST("", middleware.RequireAuthenticated(), complaintHandler.Submit)
	complaints.GET("/my-complaints", middleware.RequireAuthenticated(), complaintHandler.MyComplaints)

	admin := complaints.Group("", middleware.RequireAdmin())
	admin.GET("/all", complaintHandler.AllComplaints)
	admin.GET("/export", complaintHandler.Export)
	admin.PUT("/:id", complaintHandler.UpdateStatus)

	return r
}
