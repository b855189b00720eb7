package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {
				DuckDBPath: "local.duckdb",
				DataDir:    "public/data",
				Output:     "table",
			},
			"shared": {
				DuckDBPath: "/srv/sheets/shared.duckdb",
				DataDir:    "/srv/sheets/data",
				Output:     "json",
			},
		},
	}

	tests := []struct {
		name       string
		override   string
		wantDuckDB string
		wantErr    string
	}{
		{
			name:       "uses current profile",
			override:   "",
			wantDuckDB: "local.duckdb",
		},
		{
			name:       "override to shared",
			override:   "shared",
			wantDuckDB: "/srv/sheets/shared.duckdb",
		},
		{
			name:     "nonexistent profile returns error",
			override: "nonexistent",
			wantErr:  `profile "nonexistent" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDuckDB, p.DuckDBPath)
		})
	}
}

func TestLoadSaveUserConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := &UserConfig{
		CurrentProfile: "test",
		Profiles: map[string]Profile{
			"test": {
				MetaDBPath: "/tmp/meta.sqlite",
				User:       "alice",
			},
		},
	}
	require.NoError(t, SaveUserConfig(cfg))

	configPath := filepath.Join(dir, ".duck-sheets", "config.yaml")
	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", loaded.CurrentProfile)
	require.Contains(t, loaded.Profiles, "test")
	assert.Equal(t, "/tmp/meta.sqlite", loaded.Profiles["test"].MetaDBPath)
	assert.Equal(t, "alice", loaded.Profiles["test"].User)
}

func TestLoadUserConfig_NotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadUserConfig()
	require.Error(t, err)
}

func TestLoadUserConfig_NilProfiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".duck-sheets"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".duck-sheets", "config.yaml"), []byte("current-profile: x\n"), 0o600))

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Profiles)
}
