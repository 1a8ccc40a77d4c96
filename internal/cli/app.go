package cli

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sims-core/internal/bridge"
	"github.com/noah-isme/sims-core/internal/repository"
	"github.com/noah-isme/sims-core/internal/service"
	"github.com/noah-isme/sims-core/internal/store"
	"github.com/noah-isme/sims-core/pkg/cache"
	"github.com/noah-isme/sims-core/pkg/config"
	"github.com/noah-isme/sims-core/pkg/database"
	"github.com/noah-isme/sims-core/pkg/jobs"
	"github.com/noah-isme/sims-core/pkg/logger"
	"github.com/noah-isme/sims-core/pkg/uiloop"
)

// App holds the process-wide components shared by every command.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *database.Registry
	Cache   *repository.CacheRepository
	Repos   *repository.Repositories
	Metrics *service.MetricsService
	Queue   *jobs.Queue
	Loop    *uiloop.Loop
	Bridge  *bridge.Bridge

	Accounts   *service.AccountService
	Attendance *service.AttendanceService
	Catalog    *service.CatalogService
	Directory  *service.DirectoryService
	Grades     *service.GradeService
	Users      *service.UserService
}

// OpenApp loads configuration and connects to the database and cache.
func OpenApp(ctx context.Context, verbose bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	registry, err := database.Open(ctx, cfg.Database, logr)
	if err != nil {
		return nil, err
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		client = nil
	}
	return NewApp(ctx, cfg, logr, registry, client)
}

// NewApp wires services on top of an open registry. client may be nil.
func NewApp(ctx context.Context, cfg *config.Config, logr *zap.Logger, registry *database.Registry, client *redis.Client) (*App, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	metrics := service.NewMetricsService()
	repos := repository.New(registry.DB(), store.WithObserver(metrics), store.WithLogger(logr))

	students, err := repos.StudentAccounts(cfg.Store.CompositeAtomic)
	if err != nil {
		return nil, err
	}
	teachers, err := repos.TeacherAccounts(cfg.Store.CompositeAtomic)
	if err != nil {
		return nil, err
	}
	admins, err := repos.AdminAccounts(cfg.Store.CompositeAtomic)
	if err != nil {
		return nil, err
	}

	queue := jobs.NewQueue("tasks", jobs.QueueConfig{
		Workers:    cfg.Tasks.Workers,
		BufferSize: cfg.Tasks.QueueSize,
		RateLimit:  cfg.Tasks.RateLimit,
		RateBurst:  cfg.Tasks.RateBurst,
		Logger:     logr,
	})
	queue.Start(ctx)
	loop := uiloop.New(logr)
	metrics.ObserveBacklog("tasks", queue.Depth)
	metrics.ObserveBacklog("ui_loop", loop.Pending)

	cacheRepo := repository.NewCacheRepository(client, "sims", logr)
	validate := validator.New()

	accounts := service.NewAccountService(repos.Users, students, teachers, admins, validate, logr)

	return &App{
		Config:     cfg,
		Logger:     logr,
		DB:         registry,
		Cache:      cacheRepo,
		Repos:      repos,
		Metrics:    metrics,
		Queue:      queue,
		Loop:       loop,
		Bridge:     bridge.New(queue, loop, bridge.WithLogger(logr), bridge.WithMetrics(metrics)),
		Accounts:   accounts,
		Attendance: service.NewAttendanceService(repos.Schedules, repos.Attendance, repos.Enrollments, repos.Users, validate, logr),
		Catalog:    service.NewCatalogService(repos.Offerings, repos.Courses, repos.Enrollments, cacheRepo, metrics, cfg.Redis.CacheTTL, logr),
		Directory:  service.NewDirectoryService(repos.Faculties, repos.Departments, validate, logr),
		Grades:     service.NewGradeService(repos.Grades, validate, logr),
		Users:      service.NewUserService(repos.Users, accounts, validate, logr),
	}, nil
}

// Close stops the workers and releases connections.
func (a *App) Close() error {
	a.Queue.Stop()
	if err := a.Cache.Close(); err != nil {
		a.Logger.Sugar().Warnw("close redis", "error", err)
	}
	err := a.DB.Close()
	_ = a.Logger.Sync()
	return err
}
