package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	internaldb "duck-sheets/internal/db"
	"duck-sheets/internal/db/repository"
	"duck-sheets/internal/engine"
)

type testEnv struct {
	engine       *engine.Engine
	materializer *Materializer
	datasets     *repository.DatasetRepo
	columns      *repository.ColumnRepo
	audit        *repository.AuditRepo
	publicDir    string
	logger       *slog.Logger
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()

	duckDB, err := engine.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duckDB.Close() })

	eng := engine.New(duckDB, logger)
	require.NoError(t, eng.Bootstrap(context.Background()))

	writeDB, readDB := internaldb.OpenTestSQLite(t)
	columns := repository.NewColumnRepo(duckDB)

	return &testEnv{
		engine:       eng,
		materializer: NewMaterializer(eng, columns, logger),
		datasets:     repository.NewDatasetRepo(writeDB, readDB),
		columns:      columns,
		audit:        repository.NewAuditRepo(writeDB),
		publicDir:    t.TempDir(),
		logger:       logger,
	}
}

// numberedCSV writes a CSV with header "n,label" and rows 0..rows-1.
func numberedCSV(t *testing.T, dir, name string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("n,label\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,row%d\n", i, i)
	}
	return writeFile(t, dir, name, b.String())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
