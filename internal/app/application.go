package app

import (
	"fmt"
	"log/slog"

	"github.com/vampireLibrarianMonk/orrg/internal/appconf"
	"github.com/vampireLibrarianMonk/orrg/internal/catalog"
	"github.com/vampireLibrarianMonk/orrg/internal/clock"
	"github.com/vampireLibrarianMonk/orrg/internal/logging"
	"github.com/vampireLibrarianMonk/orrg/internal/metrics"
	"github.com/vampireLibrarianMonk/orrg/internal/rings"
)

// Application holds the dependencies for the range ring CLI and any
// embedding program: configuration, logger, the boundary catalog, and
// the geometry engine itself.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Catalog *catalog.Catalog
	Engine  *rings.Engine
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

// Build wires an Application from configuration. The boundary catalog
// is only loaded when a data path is configured.
func Build(cfg appconf.Config) (*Application, error) {
	logger := logging.New(cfg.Env, cfg.Verbose)
	m := metrics.NewWithLogger(logger)
	clk := clock.RealClock{}

	var cat *catalog.Catalog
	if cfg.DataPath != "" {
		var err error
		cat, err = catalog.Load(cfg.DataPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load boundary catalog: %w", err)
		}
	}

	engine := rings.NewEngine(rings.Config{
		Logger:    logger,
		Clock:     clk,
		Metrics:   m,
		SampleCap: cfg.SampleCap,
	})

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Catalog: cat,
		Engine:  engine,
		Clock:   clk,
		Metrics: m,
	}, nil
}
