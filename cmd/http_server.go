package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/employee-management/api"
	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/auth"
	authPostgres "github.com/frahmantamala/employee-management/internal/auth/postgres"
	"github.com/frahmantamala/employee-management/internal/company"
	companyPostgres "github.com/frahmantamala/employee-management/internal/company/postgres"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/counter"
	"github.com/frahmantamala/employee-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/employee-management/internal/dashboard/postgres"
	"github.com/frahmantamala/employee-management/internal/department"
	departmentPostgres "github.com/frahmantamala/employee-management/internal/department/postgres"
	"github.com/frahmantamala/employee-management/internal/employee"
	employeePostgres "github.com/frahmantamala/employee-management/internal/employee/postgres"
	"github.com/frahmantamala/employee-management/internal/metrics"
	"github.com/frahmantamala/employee-management/internal/transport/rest"
	"github.com/frahmantamala/employee-management/internal/user"
	userPostgres "github.com/frahmantamala/employee-management/internal/user/postgres"
)

const sqlDriver = "pgx"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *gorm.DB
	SQLDB    *sql.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// services is the domain layer shared by the server and the CLI commands.
type services struct {
	Recounter   *counter.Recounter
	Users       *user.Service
	Auth        *auth.Service
	Companies   *company.Service
	Departments *department.Service
	Employees   *employee.Service
	Dashboard   *dashboard.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if _, err := api.Load(context.Background()); err != nil {
		deps.Logger.Error("invalid OpenAPI document", "error", err)
		os.Exit(1)
	}

	svc := newServices(deps.Config, deps.DB, deps.SQLDB, deps.EventBus, deps.Metrics, deps.Logger)
	setupRoutes(deps, svc)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight event handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.SQLDB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies, svc *services) {
	pagination := deps.Config.Pagination
	rest.RegisterAllRoutes(deps.Router, deps.Config, rest.Handlers{
		Health:     rest.NewHealthHandler(deps.SQLDB),
		Auth:       auth.NewHandler(svc.Auth),
		RBAC:       auth.NewRBACAuthorization(deps.Logger),
		User:       user.NewHandler(svc.Users, pagination),
		Company:    company.NewHandler(svc.Companies, pagination),
		Department: department.NewHandler(svc.Departments, pagination),
		Employee:   employee.NewHandler(svc.Employees, pagination),
		Dashboard:  dashboard.NewHandler(svc.Dashboard),
		Metrics:    deps.Metrics,
	}, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, lg := mustLoad()

	db, sqlDB, err := initDB(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	registerEventHandlers(bus, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		SQLDB:    sqlDB,
		Router:   chi.NewRouter(),
		EventBus: bus,
		Metrics:  metrics.New(),
		Logger:   lg,
	}, nil
}

func newServices(cfg *internal.Config, db *gorm.DB, sqlDB *sql.DB, bus *events.EventBus, m *metrics.Metrics, lg *slog.Logger) *services {
	var recorder counter.Recorder
	if m != nil {
		recorder = m
	}
	recounter := counter.NewRecounter(lg, recorder, bus)

	return &services{
		Recounter: recounter,
		Users:     user.NewService(userPostgres.NewUserRepository(db), cfg.Security.BCryptCost, lg),
		Auth: auth.NewService(
			authPostgres.NewAuthRepository(db),
			auth.NewJWTTokenGenerator(
				cfg.Security.AccessTokenSecret,
				cfg.Security.RefreshTokenSecret,
				cfg.Security.AccessTokenDuration,
				cfg.Security.RefreshTokenDuration,
			),
			lg,
		),
		Companies:   company.NewService(db, companyPostgres.NewCompanyRepository(db), recounter, lg),
		Departments: department.NewService(db, departmentPostgres.NewDepartmentRepository(db), recounter, lg),
		Employees:   employee.NewService(db, employeePostgres.NewEmployeeRepository(db), recounter, bus, lg),
		Dashboard:   dashboard.NewService(dashboardPostgres.NewDashboardRepository(sqlx.NewDb(sqlDB, sqlDriver)), lg),
	}
}

// initDB opens gorm over pgx and hands back the shared *sql.DB pool, which
// sqlx and the health check reuse.
func initDB(cfg internal.DatabaseConfig, lg *slog.Logger) (*gorm.DB, *sql.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.GetDSN()}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// the database container may still be starting
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(ctx)
	}
	notify := func(err error, wait time.Duration) {
		lg.Warn("database not ready, retrying", "error", err, "retry_in", wait)
	}
	if err := backoff.RetryNotify(ping, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), notify); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	lg.Info("database connected",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns)
	return db, sqlDB, nil
}
