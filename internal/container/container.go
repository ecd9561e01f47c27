package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"autochart/adapters/excel"
	"autochart/adapters/memory"
	"autochart/adapters/postgres"
	"autochart/domain/profiling"
	"autochart/internal"
	"autochart/internal/charts"
	"autochart/internal/config"
	"autochart/internal/dashboard"
	"autochart/internal/errors"
	"autochart/internal/migration"
	profiler "autochart/internal/profiling"
	"autochart/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure, nil when running without a database
	DB *sqlx.DB

	DashboardRepo ports.DashboardRepository
	Reader        *excel.DataReader
	Profiler      *profiler.ColumnProfiler
	Dashboard     *dashboard.Service
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	internal.DefaultLogger.SetLevel(cfg.LogLevel)

	c := &Container{Config: cfg}

	readerConfig := excel.DefaultReaderConfig()
	readerConfig.MaxBytes = cfg.Engine.MaxUploadBytes
	c.Reader = excel.NewDataReader(readerConfig)

	profileOptions := profiling.DefaultProfileOptions()
	profileOptions.TypeSampleSize = cfg.Engine.TypeSampleSize
	c.Profiler = profiler.NewColumnProfiler(profileOptions)

	c.DashboardRepo = memory.NewDashboardRepository()
	return c, nil
}

// InitWithDatabase connects to Postgres, migrates the schema and switches the
// dashboard repository to it
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.DashboardRepo = postgres.NewDashboardRepository(db, c.Config.Database.Dashboard)
	internal.DefaultLogger.Info("[Container] using postgres dashboard repository %q", c.Config.Database.Dashboard)
	return nil
}

// Build creates the dashboard service and restores its saved configuration
func (c *Container) Build(ctx context.Context) (*dashboard.Service, error) {
	options := dashboard.DefaultOptions()
	options.TopN = c.Config.Engine.TopN
	options.Charts = charts.DefaultOptions()
	options.Charts.MaxCharts = c.Config.Engine.MaxCharts
	options.Charts.HistogramBins = c.Config.Engine.HistogramBins

	c.Dashboard = dashboard.NewService(c.DashboardRepo, c.Reader, c.Profiler, options)
	if err := c.Dashboard.Restore(ctx); err != nil {
		return nil, err
	}
	return c.Dashboard, nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
