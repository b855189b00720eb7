// Package ddl builds the DuckDB statements used to probe source files and
// materialize them into tables.
package ddl

import (
	"fmt"
	"strconv"
	"strings"
)

// RowIndexColumn is the synthetic column holding each row's sequence value.
const RowIndexColumn = "rowIdx"

// SelectColumn maps one source column onto its storage identifier.
type SelectColumn struct {
	Source  string
	Storage string
}

// DescribeSource returns a DESCRIBE statement that reports the column names
// and types DuckDB infers for a source, without materializing it.
func DescribeSource(r SourceReader) (string, error) {
	if r.Path == "" {
		return "", fmt.Errorf("source path is required")
	}
	return "DESCRIBE SELECT * FROM " + r.Expr(), nil
}

// CreateSequence returns a DuckDB DDL statement for a row sequence:
// CREATE SEQUENCE "<name>" START 0 INCREMENT 1 MINVALUE 0.
//
// No OR REPLACE: an existing sequence must surface as an error.
func CreateSequence(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid sequence name: %w", err)
	}
	return fmt.Sprintf("CREATE SEQUENCE %s START 0 INCREMENT 1 MINVALUE 0", QuoteIdentifier(name)), nil
}

// CreateTableAs returns the statement that materializes a source into a table:
//
//	CREATE TABLE "<table>" AS SELECT "<src>" AS "<safe>", ..., nextval('<seq>') AS "rowIdx" FROM <reader> [LIMIT n]
//
// A limit of zero means no limit.
func CreateTableAs(table, sequence string, cols []SelectColumn, r SourceReader, limit int) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	if err := ValidateIdentifier(sequence); err != nil {
		return "", fmt.Errorf("invalid sequence name: %w", err)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("at least one column is required")
	}
	if r.Path == "" {
		return "", fmt.Errorf("source path is required")
	}
	if limit < 0 {
		return "", fmt.Errorf("limit must not be negative")
	}

	exprs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		if err := ValidateIdentifier(c.Storage); err != nil {
			return "", fmt.Errorf("invalid storage name for column %q: %w", c.Source, err)
		}
		exprs = append(exprs, QuoteIdentifier(c.Source)+" AS "+QuoteIdentifier(c.Storage))
	}
	exprs = append(exprs, "nextval("+QuoteLiteral(sequence)+") AS "+QuoteIdentifier(RowIndexColumn))

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteIdentifier(table))
	b.WriteString(" AS SELECT ")
	b.WriteString(strings.Join(exprs, ", "))
	b.WriteString(" FROM ")
	b.WriteString(r.Expr())
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
	}
	return b.String(), nil
}

// DropTable returns DROP TABLE IF EXISTS "<name>".
func DropTable(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid table name: %w", err)
	}
	return "DROP TABLE IF EXISTS " + QuoteIdentifier(name), nil
}

// DropSequence returns DROP SEQUENCE IF EXISTS "<name>".
func DropSequence(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid sequence name: %w", err)
	}
	return "DROP SEQUENCE IF EXISTS " + QuoteIdentifier(name), nil
}

// LoadExtension returns INSTALL/LOAD statements for a DuckDB extension.
func LoadExtension(name string) (string, error) {
	if err := ValidateIdentifier(name); err != nil {
		return "", fmt.Errorf("invalid extension name: %w", err)
	}
	return fmt.Sprintf("INSTALL %s; LOAD %s;", name, name), nil
}
