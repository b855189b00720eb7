package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and every storage setting at temp locations.
func isolate(t *testing.T) (dataDir string, storageArgs []string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"DUCKDB_PATH", "META_DB_PATH", "PUBLIC_DIR", "DATA_DIR", "DUCK_SHEETS_USER", "DUCK_SHEETS_OUTPUT", "CONFIG_FILE", "ENV"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	root := t.TempDir()
	dataDir = filepath.Join(root, "public", "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	return dataDir, []string{
		"--duckdb-path", filepath.Join(root, "test.duckdb"),
		"--meta-db-path", filepath.Join(root, "meta.sqlite"),
		"--public-dir", filepath.Join(root, "public"),
		"--user", "tester",
	}
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "version", "-o", "table")
	require.NoError(t, err)
	assert.Equal(t, "duck-sheets version dev (commit: none)\n", out)

	out, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"dev","commit":"none"}`, out)
}

func TestRoot_PipedOutputDefaultsToJSON(t *testing.T) {
	isolate(t)

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
}

func TestRoot_InvalidOutput(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "version", "-o", "yaml")
	require.Error(t, err)
}

func TestLatest(t *testing.T) {
	dataDir, storage := isolate(t)
	older := filepath.Join(dataDir, "old.csv")
	newer := filepath.Join(dataDir, "new.json")
	require.NoError(t, os.WriteFile(older, []byte("a\n1\n"), 0o600))
	require.NoError(t, os.WriteFile(newer, []byte(`[{"a":1}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "notes.txt"), []byte("x"), 0o600))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	out, err := runCLI(t, append(storage, "latest", "-o", "json")...)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "new.json", got["fileName"])
}

func TestLatest_NoFiles(t *testing.T) {
	_, storage := isolate(t)

	_, err := runCLI(t, append(storage, "latest")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data files found")
}

func TestPreview(t *testing.T) {
	dataDir, _ := isolate(t)
	path := filepath.Join(dataDir, "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\n\"ann\",30\nbob,41\ncid,52\n"), 0o600))

	out, err := runCLI(t, "preview", path, "--max-rows", "2", "-o", "table")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "AGE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"ann", "30"}, strings.Fields(lines[1]))
}

func TestPreview_Stdin(t *testing.T) {
	isolate(t)

	rootCmd := newRootCmd()
	var out strings.Builder
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader("a,b\n1,2\n"))
	rootCmd.SetArgs([]string{"preview", "-", "-o", "json"})
	require.NoError(t, rootCmd.Execute())

	assert.JSONEq(t, `{"headers":["a","b"],"rows":[["1","2"]]}`, out.String())
}

func TestLoadAndListDatasets(t *testing.T) {
	dataDir, storage := isolate(t)
	path := filepath.Join(dataDir, "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("region,total\nnorth,10\nsouth,20\neast,30\n"), 0o600))

	out, err := runCLI(t, append(storage, "load", path, "--limit", "2", "-o", "json")...)
	require.NoError(t, err)

	var loaded struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		CreatedBy  string `json:"createdBy"`
		SourceFile string `json:"sourceFile"`
		RowCount   int64  `json:"rowCount"`
		Columns    []struct {
			Name string `json:"name"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &loaded))
	assert.Equal(t, "sales", loaded.Name)
	assert.Equal(t, "tester", loaded.CreatedBy)
	assert.Equal(t, "data/sales.csv", loaded.SourceFile)
	assert.Equal(t, int64(2), loaded.RowCount)
	require.Len(t, loaded.Columns, 2)
	assert.Equal(t, "region", loaded.Columns[0].Name)

	out, err = runCLI(t, append(storage, "datasets", "-o", "table")...)
	require.NoError(t, err)
	assert.Contains(t, out, loaded.ID)
	assert.Contains(t, out, "sales")

	out, err = runCLI(t, append(storage, "datasets", "show", loaded.ID, "-o", "table")...)
	require.NoError(t, err)
	assert.Contains(t, out, "rows:   2")
	assert.Contains(t, out, "c_region")
}

func TestLoad_MissingFile(t *testing.T) {
	dataDir, storage := isolate(t)

	_, err := runCLI(t, append(storage, "load", filepath.Join(dataDir, "missing.csv"))...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestPrintTable_PadsRaggedRows(t *testing.T) {
	var b strings.Builder
	require.NoError(t, printTable(&b, []string{"a"}, [][]string{{"1", "2"}, {}}))

	lines := strings.Split(b.String(), "\n")
	assert.Equal(t, "A", strings.TrimSpace(lines[0]))
	assert.Equal(t, []string{"1", "2"}, strings.Fields(lines[1]))
}
