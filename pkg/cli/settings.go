package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// settings are the local storage locations the data commands work against.
type settings struct {
	DuckDBPath string
	MetaDBPath string
	PublicDir  string
	DataDir    string
	User       string
}

type settingSource struct {
	flag   string
	env    string
	usage  string
	def    string
	dst    *string
	fromPr func(Profile) string
}

func (s *settings) sources() []settingSource {
	return []settingSource{
		{flag: "duckdb-path", env: "DUCKDB_PATH", usage: "DuckDB database file", def: "duck_sheets.duckdb", dst: &s.DuckDBPath, fromPr: func(p Profile) string { return p.DuckDBPath }},
		{flag: "meta-db-path", env: "META_DB_PATH", usage: "SQLite metastore file", def: "duck_sheets_meta.sqlite", dst: &s.MetaDBPath, fromPr: func(p Profile) string { return p.MetaDBPath }},
		{flag: "public-dir", env: "PUBLIC_DIR", usage: "Public directory", def: "public", dst: &s.PublicDir, fromPr: func(p Profile) string { return p.PublicDir }},
		{flag: "data-dir", env: "DATA_DIR", usage: "Directory scanned for data files (default <public-dir>/data)", dst: &s.DataDir, fromPr: func(p Profile) string { return p.DataDir }},
		{flag: "user", env: "DUCK_SHEETS_USER", usage: "Principal recorded on new datasets", def: "cli", dst: &s.User, fromPr: func(p Profile) string { return p.User }},
	}
}

func (s *settings) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	for _, src := range s.sources() {
		flags.StringVar(src.dst, src.flag, src.def, src.usage)
	}
}

// resolve fills every setting not given as a flag from the environment,
// then the profile, then the flag default.
func (s *settings) resolve(cmd *cobra.Command, p Profile) {
	for _, src := range s.sources() {
		if flagChanged(cmd, src.flag) {
			continue
		}
		if v := os.Getenv(src.env); v != "" {
			*src.dst = v
		} else if v := src.fromPr(p); v != "" {
			*src.dst = v
		}
	}
	if s.DataDir == "" {
		s.DataDir = filepath.Join(s.PublicDir, "data")
	}
}

func flagChanged(cmd *cobra.Command, name string) bool {
	var f *pflag.Flag
	if f = cmd.Flags().Lookup(name); f == nil {
		f = cmd.Root().PersistentFlags().Lookup(name)
	}
	return f != nil && f.Changed
}
