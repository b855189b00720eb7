package db

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	shared := []string{"_journal_mode=WAL", "_busy_timeout=5000", "_synchronous=NORMAL", "_foreign_keys=on"}

	tests := []struct {
		mode      string
		wantTxArg bool
	}{
		{mode: "write", wantTxArg: true},
		{mode: "read", wantTxArg: false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			dsn := buildDSN("/var/lib/duck-sheets/meta.sqlite", tt.mode)

			assert.True(t, strings.HasPrefix(dsn, "/var/lib/duck-sheets/meta.sqlite?"))
			for _, p := range shared {
				assert.Contains(t, dsn, p)
			}
			if tt.wantTxArg {
				assert.Contains(t, dsn, "_txlock=immediate")
			} else {
				assert.NotContains(t, dsn, "_txlock")
			}
		})
	}
}

func TestOpenSQLite_Pools(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		maxOpen  int
		wantOpen int
	}{
		{name: "write is single connection", mode: "write", maxOpen: 8, wantOpen: 1},
		{name: "read default", mode: "read", maxOpen: 0, wantOpen: 4},
		{name: "read sized", mode: "read", maxOpen: 6, wantOpen: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenSQLite(filepath.Join(t.TempDir(), "meta.sqlite"), tt.mode, tt.maxOpen)
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			assert.Equal(t, tt.wantOpen, db.Stats().MaxOpenConnections)

			var journal string
			require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journal))
			assert.Equal(t, "wal", strings.ToLower(journal))

			var busy, fk int
			require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busy))
			require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
			assert.Equal(t, 5000, busy)
			assert.Equal(t, 1, fk)
		})
	}
}

func TestOpenSQLite_Errors(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "meta.sqlite"), "append", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SQLite mode")

	_, err = OpenSQLite("/nonexistent/dir/meta.sqlite", "write", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping sqlite")

	_, _, err = OpenSQLitePair("/nonexistent/dir/meta.sqlite", 4)
	require.Error(t, err)
}

func TestOpenMetastore_Migrates(t *testing.T) {
	m, err := OpenMetastore(filepath.Join(t.TempDir(), "meta.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	v, err := SchemaVersion(m.Write)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	for _, table := range []string{"datasets", "audit_log"} {
		var name string
		err := m.Read.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestOpenMetastore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.sqlite")
	m, err := OpenMetastore(path)
	require.NoError(t, err)
	_, err = m.Write.Exec("INSERT INTO datasets (id, name, created_by, source_file) VALUES ('d1', 'sales', 'alice', 'sales.csv')")
	require.NoError(t, err)
	require.NoError(t, m.Close())

	m, err = OpenMetastore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	var name string
	require.NoError(t, m.Read.QueryRow("SELECT name FROM datasets WHERE id = 'd1'").Scan(&name))
	assert.Equal(t, "sales", name)
}

// Audit writes from concurrent imports share the single write connection
// while readers list datasets; busy_timeout keeps both sides from failing.
func TestMetastore_ConcurrentAuditWritesAndReads(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)

	const n = 20
	var wg sync.WaitGroup
	writeErrs := make([]error, n)
	readErrs := make([]error, n)

	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, writeErrs[i] = writeDB.Exec(
				"INSERT INTO audit_log (id, principal_name, action, status) VALUES (?, 'system', 'INGESTION_IMPORT', 'ALLOWED')",
				fmt.Sprintf("a%02d", i))
		}()
		go func() {
			defer wg.Done()
			var count int
			readErrs[i] = readDB.QueryRow("SELECT count(*) FROM audit_log").Scan(&count)
		}()
	}
	wg.Wait()

	for i := range n {
		assert.NoError(t, writeErrs[i], "writer %d", i)
		assert.NoError(t, readErrs[i], "reader %d", i)
	}

	var total int
	require.NoError(t, readDB.QueryRow("SELECT count(*) FROM audit_log").Scan(&total))
	assert.Equal(t, n, total)
}

func TestOpenTestSQLite(t *testing.T) {
	writeDB, readDB := OpenTestSQLite(t)
	_, err := writeDB.Exec("INSERT INTO datasets (id, name, created_by, source_file) VALUES ('d1', 'n', 'u', 'f.csv')")
	require.NoError(t, err)

	var name string
	require.NoError(t, readDB.QueryRow("SELECT name FROM datasets WHERE id = 'd1'").Scan(&name))
	assert.Equal(t, "n", name)
}
