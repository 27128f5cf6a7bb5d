package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/handler"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/middleware"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/repository"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/service"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/cache"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/config"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/database"
	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/logger"
	corsmiddleware "github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/ReinisDelvers/School-timetable-algorithm-sub000/pkg/middleware/requestid"
)

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

	var store service.RunStore
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		store = service.NewRedisRunStore(redisClient, cfg.Solver.RunTTL)
	} else {
		store = service.NewMemoryRunStore(cfg.Solver.RunTTL)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	timetableSvc := service.NewTimetableService(
		repository.NewTeacherRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewStudentRepository(db),
		repository.NewTeacherAssignmentRepository(db),
		repository.NewHourBlockerRepository(db),
		store,
		metricsSvc,
		cfg.Grid,
		cfg.Solver,
		cfg.Jobs,
		validate,
		logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timetableSvc.Start(ctx)
	defer timetableSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.Auth.Secret))
	{
		api.POST("/timetable/generate", timetableHandler.Generate)
		api.POST("/timetable/generate/async", timetableHandler.GenerateAsync)
		api.GET("/timetable/runs/:id", timetableHandler.GetRun)
		api.GET("/timetable/runs/:id/export", timetableHandler.ExportRun)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
