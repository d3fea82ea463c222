package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/overseas-crm/api/swagger"
	"github.com/noah-isme/overseas-crm/internal/handler"
	"github.com/noah-isme/overseas-crm/internal/middleware"
	"github.com/noah-isme/overseas-crm/internal/repository"
	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/cache"
	"github.com/noah-isme/overseas-crm/pkg/config"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
	"github.com/noah-isme/overseas-crm/pkg/logger"
	corsmiddleware "github.com/noah-isme/overseas-crm/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/overseas-crm/pkg/middleware/requestid"
	"github.com/noah-isme/overseas-crm/pkg/storage"
)

// @title Overseas CRM API
// @version 1.0.0
// @description Student recruitment CRM for an overseas study consultancy
// @BasePath /
// @schemes http
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

	ctx := context.Background()
	metrics := service.NewMetricsService()

	driver, err := kvstore.Open(cfg.Store)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	store := kvstore.New(driver, logr.Named("store"), metrics)
	defer store.Close() //nolint:errcheck

	users := repository.NewUserRepository(store, logr)
	students := repository.NewStudentRepository(store, logr)
	applications := repository.NewApplicationRepository(store, logr)
	universities := repository.NewUniversityRepository(store, logr)
	employees := repository.NewEmployeeRepository(store, logr)
	payments := repository.NewPaymentRepository(store, logr)
	payDetails := repository.NewPayDetailRepository(store, logr)
	paySheets := repository.NewPaySheetRepository(store, logr)
	auditRepo := repository.NewAuditRepository(store, logr)
	sessions := repository.NewSessionRepository(store, logr)
	state := repository.NewAppStateRepository(store)

	var cacheRepo service.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis, logr)
		if err != nil {
			logr.Warn("dashboard cache disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, "crm", logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	validate := validator.New()
	audit := service.NewAuditService(auditRepo, metrics, logr)
	authSvc := service.NewAuthService(users, sessions, audit, metrics, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		Issuer: cfg.Session.Issuer,
		TTL:    cfg.Session.TTL,
	})
	userSvc := service.NewUserService(users, audit, validate, logr)
	studentSvc := service.NewStudentService(students, users, audit, cacheSvc, validate, logr)
	applicationSvc := service.NewApplicationService(applications, cacheSvc, validate, logr)
	universitySvc := service.NewUniversityService(universities, cacheSvc, validate, logr)
	employeeSvc := service.NewEmployeeService(employees, cacheSvc, validate, logr)
	financeSvc := service.NewFinanceService(payments, students, audit, validate, logr)
	payrollSvc := service.NewPayrollService(payDetails, paySheets, employees, audit, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:     students,
		Applications: applications,
		Universities: universities,
		Employees:    employees,
		Cache:        cacheSvc,
		Logger:       logr,
		Config:       service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	bootstrapSvc := service.NewBootstrapService(state, users, audit, cacheSvc, service.SeedAccount{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, logr)
	if err := bootstrapSvc.Initialize(ctx); err != nil {
		logr.Fatal("failed to initialise store", zap.Error(err))
	}

	archive, err := storage.NewArchive(cfg.Exports.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export directory", zap.String("dir", cfg.Exports.Dir), zap.Error(err))
	}
	exportSvc := service.NewExportService(service.ExportServiceParams{
		PaySheets: payrollSvc,
		Audit:     audit,
		Archive:   archive,
		Signer:    storage.NewDownloadSigner(cfg.Session.Secret, time.Hour),
		Config:    service.ExportConfig{APIPrefix: cfg.APIPrefix},
		Logger:    logr,
	})
	if removed, err := exportSvc.Cleanup(0); err != nil {
		logr.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		logr.Info("removed stale exports", zap.Int("count", len(removed)))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Users:        handler.NewUserHandler(userSvc),
		Students:     handler.NewStudentHandler(studentSvc),
		Applications: handler.NewApplicationHandler(applicationSvc),
		Universities: handler.NewUniversityHandler(universitySvc),
		Employees:    handler.NewEmployeeHandler(employeeSvc),
		Finance:      handler.NewFinanceHandler(financeSvc),
		Payroll:      handler.NewPayrollHandler(payrollSvc),
		Audit:        handler.NewAuditHandler(audit),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Exports:      handler.NewExportHandler(exportSvc),
		System:       handler.NewSystemHandler(bootstrapSvc),
		Metrics:      handler.NewMetricsHandler(metrics),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
