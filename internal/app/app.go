package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"FeedstockSourcing/internal/config"
	"FeedstockSourcing/internal/domain"
	"FeedstockSourcing/internal/harvest"
	"FeedstockSourcing/internal/infrastructure/frcs"
	"FeedstockSourcing/internal/infrastructure/fuelprice"
	"FeedstockSourcing/internal/infrastructure/routing"
	"FeedstockSourcing/internal/infrastructure/storage"
	"FeedstockSourcing/internal/logging"
	"FeedstockSourcing/internal/metrics"
	"FeedstockSourcing/internal/sourcing"
	"FeedstockSourcing/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	clusters *storage.ClusterRepository
	systems  *harvest.Registry
	planner  *usecase.Planner
	metrics  *metrics.Server
}

// New validates the config, opens the database and builds the sourcing engine.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, dialect, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(registry)

	var server *metrics.Server
	if cfg.Metrics.ListenAddr != "" {
		server = metrics.NewServer(cfg.Metrics.ListenAddr, registry, baseLogger.With("component", "metrics"))
		server.Start()
	}

	harvestModel := frcs.NewClient(cfg.HarvestModel, baseLogger.With("component", "frcs"))
	systems := harvest.DefaultRegistry()
	clusters := storage.NewClusterRepository(db, dialect)

	engine := sourcing.NewEngine(sourcing.Deps{
		Repository: clusters,
		Harvest:    harvestModel,
		Routing:    routing.NewClient(cfg.Routing, baseLogger.With("component", "osrm")),
		MoveIn:     harvestModel,
		FuelPrices: fuelprice.NewScraper(nil, cfg.FuelPrice),
		Systems:    systems,
		Metrics:    recorder,
		Logger:     baseLogger.With("component", "sourcing"),
	}, cfg.EngineSettings())

	planner := usecase.NewPlanner(usecase.PlannerDeps{
		Engine: engine,
		Store:  storage.NewSelectionStore(db, dialect),
		Logger: baseLogger.With("component", "planner"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		clusters: clusters,
		systems:  systems,
		planner:  planner,
		metrics:  server,
	}, nil
}

// Source runs a new plan over the given years.
func (a *Application) Source(ctx context.Context, req domain.SourcingRequest, years []int) (usecase.Plan, error) {
	return a.planner.PlanPeriods(ctx, req, years)
}

// Resume continues a stored plan.
func (a *Application) Resume(ctx context.Context, planID string, req domain.SourcingRequest, years []int) (usecase.Plan, error) {
	return a.planner.ResumePlan(ctx, planID, req, years)
}

// Seed loads clusters into the configured database.
func (a *Application) Seed(ctx context.Context, clusters []domain.Cluster) error {
	if err := a.clusters.Insert(ctx, clusters); err != nil {
		return fmt.Errorf("seed clusters: %w", err)
	}
	a.logger.Info("clusters seeded", "count", len(clusters))
	return nil
}

// Systems lists the harvest systems the engine accepts.
func (a *Application) Systems() []string {
	return a.systems.Names()
}

// Close stops the metrics server and releases the database.
func (a *Application) Close() error {
	var errs []error
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
