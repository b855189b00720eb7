package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"duck-sheets/internal/app"
	"duck-sheets/internal/config"
	internaldb "duck-sheets/internal/db"
	"duck-sheets/internal/engine"
)

// openLocalApp wires the same application the server runs against the local
// storage settings. Remote staging credentials still come from the
// environment. The returned func releases every handle.
func openLocalApp(ctx context.Context, s *settings) (*app.App, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	cfg.DuckDBPath = s.DuckDBPath
	cfg.MetaDBPath = s.MetaDBPath
	cfg.PublicDir = s.PublicDir
	cfg.DataDir = s.DataDir
	cfg.DefaultUser = s.User
	cfg.AutoLoadUser = s.User

	duckDB, err := engine.Open(cfg.DuckDBPath)
	if err != nil {
		return nil, nil, err
	}
	meta, err := internaldb.OpenMetastore(cfg.MetaDBPath)
	if err != nil {
		_ = duckDB.Close()
		return nil, nil, fmt.Errorf("open metastore: %w", err)
	}

	a, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		DuckDB:  duckDB,
		WriteDB: meta.Write,
		ReadDB:  meta.Read,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		_ = meta.Close()
		_ = duckDB.Close()
		return nil, nil, err
	}

	return a, func() {
		_ = a.Close()
		_ = meta.Close()
		_ = duckDB.Close()
	}, nil
}
