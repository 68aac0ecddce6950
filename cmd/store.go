package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/resilience"
	"github.com/sells-group/admet-cli/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}
	return resilience.DoVal(ctx, storeRetry(cfg.Store, "open"), func(ctx context.Context) (store.Store, error) {
		return openStore(ctx, cfg.Store)
	})
}

// openStore connects to the configured backend and applies the schema.
func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch sc.Driver {
	case "sqlite":
		st, err = store.NewSQLite(sc.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// storeRetry builds the retry policy for one store operation.
func storeRetry(sc config.StoreConfig, operation string) resilience.RetryConfig {
	rc := resilience.DefaultRetryConfig()
	rc.MaxAttempts = sc.RetryAttempts
	if sc.RetryBackoff > 0 {
		rc.InitialBackoff = sc.RetryBackoff
	}
	rc.OnRetry = resilience.RetryLogger(sc.Driver, operation)
	return rc
}
