package ddl

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierRe allows lowercase alphanumerics and underscores, starting with a
// letter or underscore. Generated names never contain uppercase letters because
// DuckDB compares identifiers case-insensitively.
var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// maxIdentifierLen is the maximum length allowed for a generated identifier.
const maxIdentifierLen = 255

// ValidateIdentifier checks that name is a safe generated SQL identifier:
//   - Non-empty
//   - At most 255 characters
//   - Matches [a-z_][a-z0-9_]*
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("name must be at most %d characters", maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("name must match [a-z_][a-z0-9_]*")
	}
	return nil
}

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double-quote characters by doubling them (standard SQL).
//
// Source column names from arbitrary files go through here unvalidated.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
