package ddl

import "strings"

// SourceReader is the DuckDB table expression used to read one source file,
// together with the extension that provides it (empty when built in).
type SourceReader struct {
	Path      string
	Function  string // empty means a bare path (replacement scan)
	Options   string // extra named arguments, already rendered
	Extension string
}

// readerSpec is the per-format reading strategy.
type readerSpec struct {
	suffix    string
	function  string
	options   string
	extension string
}

// readers maps a lowercased file suffix to its reading strategy.
var readers = []readerSpec{
	{suffix: ".csv", function: "read_csv"},
	{suffix: ".tsv", function: "read_csv", options: `delim = '\t'`},
	{suffix: ".json", function: "read_json_auto"},
	{suffix: ".parquet", function: "read_parquet"},
	{suffix: ".xlsx", function: "read_xlsx", extension: "excel"},
	{suffix: ".xls", function: "st_read", extension: "spatial"},
}

// ReaderFor picks the reader for path by its lowercased suffix. Unknown
// suffixes fall back to DuckDB's replacement scan on the quoted path.
func ReaderFor(path string) SourceReader {
	lower := strings.ToLower(path)
	for _, rs := range readers {
		if strings.HasSuffix(lower, rs.suffix) {
			return SourceReader{
				Path:      path,
				Function:  rs.function,
				Options:   rs.options,
				Extension: rs.extension,
			}
		}
	}
	return SourceReader{Path: path}
}

// Expr renders the table expression, e.g. read_csv('/data/a.csv').
func (r SourceReader) Expr() string {
	if r.Function == "" {
		return QuoteLiteral(r.Path)
	}
	args := QuoteLiteral(r.Path)
	if r.Options != "" {
		args += ", " + r.Options
	}
	return r.Function + "(" + args + ")"
}
