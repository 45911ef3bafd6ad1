package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/handler"
	"github.com/PrincipieCyupe/tyi/internal/repository"
	"github.com/PrincipieCyupe/tyi/internal/service"
	"github.com/PrincipieCyupe/tyi/pkg/cache"
	"github.com/PrincipieCyupe/tyi/pkg/config"
	"github.com/PrincipieCyupe/tyi/pkg/database"
	"github.com/PrincipieCyupe/tyi/pkg/logger"
	"github.com/PrincipieCyupe/tyi/pkg/mailer"
	"github.com/PrincipieCyupe/tyi/pkg/security"
)

// @title Tegura Youth Initiative API
// @version 1.0.0
// @description Membership portal: courses with module progress, opportunities, leaderboard and notifications.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	handlers := buildHandlers(cfg, db, metrics, logr)
	router := newRouter(cfg, handlers, metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type handlerSet struct {
	auth         *handler.AuthHandler
	courses      *handler.CourseHandler
	applications *handler.ApplicationHandler
	messages     *handler.MessageHandler
	leaderboard  *handler.LeaderboardHandler
	content      *handler.ContentHandler
	dashboard    *handler.DashboardHandler
	contact      *handler.ContactHandler
	metrics      *handler.MetricsHandler
	tokens       *service.AuthService
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, metrics *service.MetricsService, logr *zap.Logger) handlerSet {
	validate := validator.New()
	clock := service.SystemClock{}
	hasher := security.NewBcryptHasher(0)
	mail := mailer.New(cfg.Mail, logr)

	users := repository.NewUserRepository(db)
	courses := repository.NewCourseRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	progress := repository.NewProgressRepository(db)
	applications := repository.NewApplicationRepository(db)
	messages := repository.NewMessageRepository(db)
	leaderboard := repository.NewLeaderboardRepository(db)
	content := repository.NewContentRepository(db)
	audit := repository.NewAuditRepository(db)

	cacheSvc := newLeaderboardCache(cfg, metrics, logr)

	authSvc := service.NewAuthService(users, hasher, audit, clock, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		AdminTokenExpiry:  cfg.Admin.TokenTTL,
		Issuer:            cfg.JWT.Issuer,
		AdminPasswordHash: cfg.Admin.PasswordHash,
	})
	resetSvc := service.NewPasswordResetService(users, hasher, mail, audit, metrics, clock, validate, logr, service.ResetConfig{
		TokenTTL:   cfg.Reset.TokenTTL,
		AppBaseURL: cfg.AppBaseURL,
	})
	courseSvc := service.NewCourseService(courses, audit, validate, logr)
	progressSvc := service.NewProgressService(courses, enrollments, progress, users, audit, metrics, clock, logr)
	applicationSvc := service.NewApplicationService(applications, messages, audit, clock, validate, logr)
	messageSvc := service.NewMessageService(messages, users, audit, clock, validate, logr)
	leaderboardSvc := service.NewLeaderboardService(leaderboard, users, cacheSvc, cfg.Leaderboard.CacheTTL, audit, metrics, clock, logr)
	contentSvc := service.NewContentService(content, audit, clock, validate, logr)
	contactSvc := service.NewContactService(mail, cfg.Mail.ContactInbox, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Enrollments:  enrollments,
		Applications: applications,
		Messages:     messages,
		Leaderboard:  leaderboard,
		Content:      contentSvc,
		Users:        users,
		Courses:      courses,
		Audit:        audit,
		Logger:       logr,
	})

	return handlerSet{
		auth:         handler.NewAuthHandler(authSvc, resetSvc),
		courses:      handler.NewCourseHandler(courseSvc, progressSvc),
		applications: handler.NewApplicationHandler(applicationSvc),
		messages:     handler.NewMessageHandler(messageSvc),
		leaderboard:  handler.NewLeaderboardHandler(leaderboardSvc),
		content:      handler.NewContentHandler(contentSvc),
		dashboard:    handler.NewDashboardHandler(dashboardSvc),
		contact:      handler.NewContactHandler(contactSvc),
		metrics:      handler.NewMetricsHandler(metrics),
		tokens:       authSvc,
	}
}

// newLeaderboardCache connects to Redis when caching is enabled. A failed connection
// leaves the cache disabled rather than blocking startup.
func newLeaderboardCache(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.Leaderboard.CacheEnabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
		return nil
	}
	repo := repository.NewCacheRepository(client, logr)
	return service.NewCacheService(repo, metrics, cfg.Leaderboard.CacheTTL, logr, true)
}
