package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/teamroster/server/cmd/server/docs" // swagger docs
	"github.com/teamroster/server/internal/module/account"
	"github.com/teamroster/server/internal/module/identity"
	"github.com/teamroster/server/internal/shared/config"
	"github.com/teamroster/server/internal/shared/events"
	"github.com/teamroster/server/internal/shared/logger"
	"github.com/teamroster/server/internal/shared/metrics"
	"github.com/teamroster/server/internal/shared/middleware"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     goredis.UniversalClient
	Logger    *logger.Logger
	ZapLogger *zap.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	EventBus  *events.Bus
	Verifier  *identity.Verifier

	// Account module
	AccountRepository account.Repository
	MembershipService *account.MembershipService
	InviteService     *account.InviteService
	ActivityLogger    *account.ActivityLogger
	AccountHandler    *account.Handler
}

// App represents the application.
type App struct {
	deps    *Dependencies
	router  *gin.Engine
	cleanup func()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		deps:    deps,
		cleanup: cleanup,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	deps.ZapLogger.Info("application initialized",
		zap.String("database", cfg.Database.Driver),
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("metrics", deps.Metrics != nil),
	)
	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	cfg := a.deps.Config

	// Set Gin mode based on environment
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.deps.Logger))
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))
	if a.deps.Metrics != nil {
		r.Use(middleware.Metrics(a.deps.Metrics))
	}

	// Health check endpoint
	r.GET("/health", a.health)

	// Prometheus endpoint
	if a.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))
	}

	// Swagger documentation endpoint
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	return r
}

// registerRoutes registers routes for all modules.
func (a *App) registerRoutes() {
	// API v1 group
	v1 := a.router.Group("/api/v1")

	// Every roster operation needs a verified caller
	protectedRouter := v1.Group("")
	protectedRouter.Use(identity.RequireAuth(a.deps.Verifier))
	if a.deps.Config.Identity.TrackLogin {
		protectedRouter.Use(identity.TrackLogin(
			a.deps.AccountRepository,
			func() time.Time { return time.Now().UTC() },
			a.deps.ZapLogger,
		))
	}

	a.deps.AccountHandler.RegisterRoutes(protectedRouter)
}

// health reports whether the database answers.
func (a *App) health(c *gin.Context) {
	sqlDB, err := a.deps.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases resources in reverse order of creation.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}
