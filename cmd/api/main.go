package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studiofit/class-booking-api/api/swagger"
	"github.com/studiofit/class-booking-api/internal/handler"
	"github.com/studiofit/class-booking-api/internal/middleware"
	"github.com/studiofit/class-booking-api/internal/models"
	"github.com/studiofit/class-booking-api/internal/repository"
	"github.com/studiofit/class-booking-api/internal/service"
	"github.com/studiofit/class-booking-api/pkg/cache"
	"github.com/studiofit/class-booking-api/pkg/config"
	"github.com/studiofit/class-booking-api/pkg/database"
	"github.com/studiofit/class-booking-api/pkg/jobs"
	"github.com/studiofit/class-booking-api/pkg/logger"
	corsmiddleware "github.com/studiofit/class-booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studiofit/class-booking-api/pkg/middleware/requestid"
)

// @title Class Booking API
// @version 1.0.0
// @description Class scheduling and enrollment engine for a sports school
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := buildApplication(cfg, db, redisClient, logr)
	app.notifications.Start(ctx)
	defer app.notifications.Stop()

	router := buildRouter(cfg, logr, app)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// application bundles the wired services and handlers.
type application struct {
	db            *sqlx.DB
	authService   *service.AuthService
	notifications *service.NotificationService
	metrics       *service.MetricsService

	auth          *handler.AuthHandler
	classes       *handler.ClassHandler
	enrollments   *handler.EnrollmentHandler
	assignments   *handler.InstructorAssignmentHandler
	rules         *handler.CancellationRuleHandler
	analytics     *handler.AnalyticsHandler
	notification  *handler.NotificationHandler
	observability *handler.MetricsHandler
}

func buildApplication(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *application {
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	classRepo := repository.NewClassSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewInstructorAssignmentRepository(db)
	ruleRepo := repository.NewCancellationRuleRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	notificationSvc := service.NewNotificationService(notificationRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, logr)

	metricsSvc := service.NewMetricsService()

	classSvc := service.NewClassSessionService(classRepo, cacheRepo, notificationSvc, metricsSvc, cfg.Cache.ClassListTTL, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, notificationSvc, metricsSvc, validate, logr)
	assignmentSvc := service.NewInstructorAssignmentService(assignmentRepo, userRepo, validate, logr)
	ruleSvc := service.NewCancellationRuleService(ruleRepo, cacheRepo, cfg.Cache.ActiveRuleTTL, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	exportSvc := service.NewExportService(enrollmentRepo, classRepo, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheRepo, 30*time.Second, logr)

	return &application{
		db:            db,
		authService:   authSvc,
		notifications: notificationSvc,
		metrics:       metricsSvc,
		auth:          handler.NewAuthHandler(authSvc),
		classes:       handler.NewClassHandler(classSvc, exportSvc),
		enrollments:   handler.NewEnrollmentHandler(enrollmentSvc),
		assignments:   handler.NewInstructorAssignmentHandler(assignmentSvc),
		rules:         handler.NewCancellationRuleHandler(ruleSvc),
		analytics:     handler.NewAnalyticsHandler(analyticsSvc),
		notification:  handler.NewNotificationHandler(notificationSvc),
		observability: handler.NewMetricsHandler(metricsSvc, db),
	}
}

func buildRouter(cfg *config.Config, logr *zap.Logger, app *application) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))

	r.GET("/health", app.observability.Health)
	r.GET("/ready", app.observability.Ready)
	r.GET("/metrics", app.observability.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", app.auth.Login)
		auth.POST("/refresh", app.auth.Refresh)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(app.authService))

	authed.GET("/notifications", app.notification.List)

	student := authed.Group("/classes")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("", app.classes.List)
		student.GET("/me/enrollments", app.enrollments.MyEnrollments)
		student.POST("/:id/enroll", app.enrollments.Enroll)
		student.DELETE("/:id/enroll", app.enrollments.Withdraw)
	}

	instructor := authed.Group("/instructors")
	instructor.Use(middleware.RequireRoles(models.RoleInstructor))
	{
		instructor.GET("/me/classes", app.assignments.MyAssignments)
	}

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/classes", app.classes.Create)
		admin.GET("/classes", app.classes.List)
		admin.GET("/classes/:id", app.classes.Get)
		admin.PATCH("/classes/:id", app.classes.Update)
		admin.POST("/classes/:id/cancel", app.classes.Cancel)
		admin.POST("/classes/:id/complete", app.classes.Complete)

		admin.GET("/classes/:id/instructors", app.assignments.ListByClass)
		admin.POST("/classes/:id/instructors", app.assignments.Assign)
		admin.DELETE("/classes/:id/instructors/:instructorId", app.assignments.Remove)

		admin.GET("/enrollments", app.enrollments.List)
		admin.POST("/enrollments/:id/approve", app.enrollments.Approve)
		admin.POST("/enrollments/:id/deny", app.enrollments.Deny)

		admin.GET("/cancellation-rules", app.rules.List)
		admin.GET("/cancellation-rules/active", app.rules.Active)
		admin.POST("/cancellation-rules", app.rules.Create)
		admin.PATCH("/cancellation-rules/:id", app.rules.Update)
		admin.DELETE("/cancellation-rules/:id", app.rules.Delete)

		admin.GET("/analytics/dashboard", app.analytics.Dashboard)

		if cfg.Exports.Enabled {
			admin.GET("/classes/:id/roster/export", app.classes.ExportRoster)
		}
	}

	return r
}
