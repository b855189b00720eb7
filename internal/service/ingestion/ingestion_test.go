package ingestion

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-sheets/internal/domain"
	"duck-sheets/internal/naming"
	"duck-sheets/internal/staging"
)

func newImportService(env *testEnv, stager staging.Stager, defaultLimit int) *ImportService {
	return NewImportService(
		env.materializer, env.engine, env.datasets, env.columns, env.audit, stager,
		ImportConfig{PublicDir: env.publicDir, DefaultRowLimit: defaultLimit},
		env.logger,
	)
}

func listAudit(t *testing.T, env *testEnv) []domain.AuditEntry {
	t.Helper()
	entries, _, err := env.audit.List(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	return entries
}

func TestImportPublicFile(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)
	ctx := context.Background()
	numberedCSV(t, env.publicDir, "data/people.csv", 5)

	ds, err := svc.ImportPublicFile(ctx, "alice", domain.ImportRequest{
		PublicFileName: "data/people.csv",
		DatasetName:    "People",
	})
	require.NoError(t, err)
	assert.Equal(t, "People", ds.Name)
	assert.Equal(t, "alice", ds.CreatedBy)
	assert.Equal(t, "data/people.csv", ds.SourceFile)
	assert.Len(t, ds.Columns, 2)

	got, err := svc.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.RowCount)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "n", got.Columns[0].Name)

	list, next, err := svc.ListDatasets(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, next)
	require.Len(t, list, 1)
	assert.Equal(t, ds.ID, list[0].ID)

	audit := listAudit(t, env)
	require.Len(t, audit, 1)
	assert.Equal(t, domain.AuditStatusAllowed, audit[0].Status)
	assert.Equal(t, "alice", audit[0].PrincipalName)
}

func TestImportPublicFile_RowLimits(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	numberedCSV(t, env.publicDir, "ten.csv", 10)

	svc := newImportService(env, nil, 4)
	ds, err := svc.ImportPublicFile(ctx, "u", domain.ImportRequest{PublicFileName: "ten.csv", DatasetName: "default"})
	require.NoError(t, err)
	got, err := svc.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.RowCount)

	ds, err = svc.ImportPublicFile(ctx, "u", domain.ImportRequest{PublicFileName: "ten.csv", DatasetName: "explicit", RowLimit: 3})
	require.NoError(t, err)
	got, err = svc.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.RowCount)
}

func TestImportPublicFile_Validation(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)

	tests := []struct {
		name string
		req  domain.ImportRequest
	}{
		{name: "missing_file", req: domain.ImportRequest{DatasetName: "x"}},
		{name: "missing_name", req: domain.ImportRequest{PublicFileName: "a.csv"}},
		{name: "blank_name", req: domain.ImportRequest{PublicFileName: "a.csv", DatasetName: "  "}},
		{name: "negative_limit", req: domain.ImportRequest{PublicFileName: "a.csv", DatasetName: "x", RowLimit: -2}},
		{name: "absolute_path", req: domain.ImportRequest{PublicFileName: "/etc/passwd", DatasetName: "x"}},
		{name: "parent_escape", req: domain.ImportRequest{PublicFileName: "../secret.csv", DatasetName: "x"}},
		{name: "nested_escape", req: domain.ImportRequest{PublicFileName: "data/../../secret.csv", DatasetName: "x"}},
		{name: "remote_without_stager", req: domain.ImportRequest{PublicFileName: "s3://b/a.csv", DatasetName: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ImportPublicFile(context.Background(), "u", tt.req)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestImportPublicFile_FailureReconcilesDataset(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)
	ctx := context.Background()

	_, err := svc.ImportPublicFile(ctx, "alice", domain.ImportRequest{
		PublicFileName: "data/missing.csv",
		DatasetName:    "Missing",
	})
	var su *domain.SourceUnavailableError
	require.ErrorAs(t, err, &su)

	list, _, err := svc.ListDatasets(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	audit := listAudit(t, env)
	require.Len(t, audit, 1)
	assert.Equal(t, domain.AuditStatusFailed, audit[0].Status)
	require.NotNil(t, audit[0].Detail)
	assert.Contains(t, *audit[0].Detail, "data/missing.csv")
}

func TestImportPublicFile_FaultLeavesNoTrace(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)
	ctx := context.Background()
	numberedCSV(t, env.publicDir, "ten.csv", 10)
	env.materializer.onCreateTable = func() error { return errors.New("disk full") }

	_, err := svc.ImportPublicFile(ctx, "u", domain.ImportRequest{PublicFileName: "ten.csv", DatasetName: "x"})
	var txErr *domain.TransactionError
	require.ErrorAs(t, err, &txErr)

	list, _, err := svc.ListDatasets(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	var n int
	require.NoError(t, env.engine.DB().QueryRow("SELECT count(*) FROM dataset_columns").Scan(&n))
	assert.Zero(t, n)
}

type fakeStager struct {
	src      string
	err      error
	cleanups int
}

func (f *fakeStager) Stage(_ context.Context, uri string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.src, func() { f.cleanups++ }, nil
}

func TestImportPublicFile_RemoteSource(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	staged := numberedCSV(t, t.TempDir(), "stage-1.csv", 2)
	stager := &fakeStager{src: staged}
	svc := newImportService(env, stager, 0)

	ds, err := svc.ImportPublicFile(ctx, "u", domain.ImportRequest{PublicFileName: "s3://bucket/in/people.csv", DatasetName: "Remote"})
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/in/people.csv", ds.SourceFile)
	assert.Equal(t, 1, stager.cleanups)

	stager.err = &domain.SourceUnavailableError{Path: "s3://bucket/gone.csv", Err: io.ErrUnexpectedEOF}
	_, err = svc.ImportPublicFile(ctx, "u", domain.ImportRequest{PublicFileName: "s3://bucket/gone.csv", DatasetName: "Gone"})
	var su *domain.SourceUnavailableError
	require.ErrorAs(t, err, &su)
}

func TestGetDataset_NotFound(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)

	_, err := svc.GetDataset(context.Background(), "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestImportLocalFile_RecordsPathRelativeToPublicDir(t *testing.T) {
	env := setupEnv(t)
	svc := newImportService(env, nil, 0)
	path := numberedCSV(t, env.publicDir, "data/a.csv", 1)

	ds, err := svc.ImportLocalFile(context.Background(), "system", "A", path, 0)
	require.NoError(t, err)
	assert.Equal(t, "data/a.csv", ds.SourceFile)

	names, err := naming.ForDataset(ds.Identity())
	require.NoError(t, err)
	ok, err := env.engine.TableExists(context.Background(), names.Table)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolvePublicPath(t *testing.T) {
	base := filepath.Join(string(os.PathSeparator), "srv", "public")

	got, err := resolvePublicPath(base, "data/x.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "data", "x.csv"), got)

	got, err = resolvePublicPath(base, "data/./sub/../x.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, base))

	for _, bad := range []string{"..", "../x.csv", "/x.csv", "data/../../x.csv", "."} {
		_, err := resolvePublicPath(base, bad)
		assert.Error(t, err, bad)
	}
}
