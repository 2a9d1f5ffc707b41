// Package app wires repositories, the sync engine and the services shared by
// the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/workforce-sync-go/internal/config"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/crypto"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/fetcher"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/storage"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/warehouse"
	"github.com/cmlabs-hris/workforce-sync-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-sync-go/internal/service/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/service/datasync"
	sourceService "github.com/cmlabs-hris/workforce-sync-go/internal/service/source"
)

type App struct {
	Config *config.Config
	DB     *database.DB
	JWT    jwt.Service
	Cron   *cron.Scheduler
	Runner *datasync.Runner
	Sync   *datasync.Scheduler

	SourceService         source.SourceService
	ReconciliationService attendance.ReconciliationService
}

func New(cfg *config.Config) (*App, error) {
	db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sealer, err := crypto.NewSealer(cfg.Sync.SourceSecretKey)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid SOURCE_SECRET_KEY: %w", err)
	}
	if !sealer.Configured() {
		slog.Warn("SOURCE_SECRET_KEY not set, source credentials are stored unsealed")
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}

	loc := cfg.Location()
	retry := database.RetryPolicy{Attempts: cfg.Sync.RetryAttempts, Backoff: cfg.Sync.RetryBackoff}

	sourceRepo := postgresql.NewSourceRepository(db, sealer)
	importLogRepo := postgresql.NewImportLogRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	assignmentRepo := postgresql.NewManagerAssignmentRepository(db)
	lookupRepo := postgresql.NewLookupRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)

	runner := datasync.NewRunner(datasync.RunnerDeps{
		Sources:    sourceRepo,
		Logs:       importLogRepo,
		Employees:  employeeRepo,
		Attendance: attendanceRepo,
		Lookups:    lookupRepo,
		Fetcher:    fetcher.New(fetcher.Config{Timeout: cfg.Sync.FetchTimeout, RPS: cfg.Sync.FetchRPS}, fileStorage),
		Tx:         datasync.TxFunc(postgresql.NewTransactor(db)),
		Retry:      retry,
		Location:   loc,
	})

	cronScheduler := cron.NewScheduler()
	syncScheduler := datasync.NewScheduler(cronScheduler, sourceRepo, importLogRepo, runner, retry)

	remote := warehouse.New(warehouse.Config{
		Enabled: cfg.Warehouse.Enabled,
		BaseURL: cfg.Warehouse.BaseURL,
		Token:   cfg.Warehouse.Token,
		Timeout: cfg.Warehouse.Timeout,
	})

	return &App{
		Config:                cfg,
		DB:                    db,
		JWT:                   jwt.NewJWTService(cfg.JWT.Secret),
		Cron:                  cronScheduler,
		Runner:                runner,
		Sync:                  syncScheduler,
		SourceService:         sourceService.NewSourceService(sourceRepo, importLogRepo, fileStorage, syncScheduler, runner),
		ReconciliationService: attendanceService.NewReconciliationService(employeeRepo, assignmentRepo, attendanceRepo, remote, loc),
	}, nil
}

// Close waits for background sync runs and releases the pool.
func (a *App) Close() {
	a.Sync.Wait()
	a.DB.Close()
}
