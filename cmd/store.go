package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/energy"
	"github.com/sells-group/facade-energy/internal/monitoring"
	"github.com/sells-group/facade-energy/internal/resilience"
	"github.com/sells-group/facade-energy/internal/solar"
	"github.com/sells-group/facade-energy/internal/store"
)

// initStore opens the configured store, retrying transient connection
// failures, and applies the schema.
func initStore(ctx context.Context) (store.Store, error) {
	retry := resilience.FromConfig(cfg.Retry)
	retry.OnRetry = resilience.RetryLogger("store", "connect")

	st, err := resilience.DoVal(ctx, retry, openStore)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close() //nolint:errcheck
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initAnalyzer loads the radiation and rate tables and builds an analyzer
// reading buildings from st.
func initAnalyzer(st store.Store, metrics *monitoring.Metrics) (*energy.Analyzer, error) {
	tables, err := solar.Load(cfg.Analysis.TablesPath)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("solar tables loaded",
		zap.String("path", cfg.Analysis.TablesPath),
		zap.Strings("cities", tables.Cities()),
	)
	return energy.NewAnalyzer(tables, st,
		energy.WithConcurrency(cfg.Analysis.MaxConcurrency),
		energy.WithMetrics(metrics),
	), nil
}
