// Package naming derives storage identifiers for datasets and their columns.
//
// Every function here is pure. Names are derived only from the dataset id, so
// two datasets with distinct ids never share a table or sequence, regardless of
// display name, owner, or how many datasets were ingested before.
package naming

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"duck-sheets/internal/ddl"
	"duck-sheets/internal/domain"
)

// Prefixes for table and sequence names. The "x" forms hold escaped
// non-UUID ids and never overlap with the hex forms.
const (
	tablePrefix           = "ds_"
	sequencePrefix        = "seq_"
	escapedTablePrefix    = "dsx_"
	escapedSequencePrefix = "seqx_"

	columnPrefix    = "c_"
	maxColumnSlug   = 60
	emptyColumnSlug = "col"
)

// Names holds the storage identifiers of one dataset.
type Names struct {
	Table    string
	Sequence string
}

// ForDataset returns the table and sequence names for a dataset identity.
func ForDataset(id domain.DatasetIdentity) (Names, error) {
	if id.ID == "" {
		return Names{}, domain.ErrValidation("dataset id is required")
	}

	if u, err := uuid.Parse(id.ID); err == nil && u.String() == id.ID {
		hex := strings.ReplaceAll(u.String(), "-", "")
		return Names{
			Table:    tablePrefix + hex,
			Sequence: sequencePrefix + hex,
		}, nil
	}

	escaped := escapeID(id.ID)
	names := Names{
		Table:    escapedTablePrefix + escaped,
		Sequence: escapedSequencePrefix + escaped,
	}
	if err := ddl.ValidateIdentifier(names.Sequence); err != nil {
		return Names{}, domain.ErrValidation("dataset id %q cannot be used as a storage name: %v", id.ID, err)
	}
	return names, nil
}

// escapeID keeps [a-z0-9] bytes and rewrites every other byte as _xx. The
// mapping is injective, and its output is already lowercase.
func escapeID(id string) string {
	var b strings.Builder
	b.Grow(len(id) * 2)
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('_')
		if c < 0x10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 16))
	}
	return b.String()
}

// ColumnNames maps source column names onto safe, unique storage identifiers.
// The result has the same length and order as source. Uniqueness is
// case-insensitive and also avoids the synthetic row index column.
func ColumnNames(source []string) []string {
	used := map[string]bool{strings.ToLower(ddl.RowIndexColumn): true}
	out := make([]string, len(source))
	for i, name := range source {
		base := columnPrefix + slug(name)
		candidate := base
		for n := 2; used[candidate]; n++ {
			candidate = base + "_" + strconv.Itoa(n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

func slug(name string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore {
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.Trim(b.String(), "_")
	if len(s) > maxColumnSlug {
		s = strings.TrimRight(s[:maxColumnSlug], "_")
	}
	if s == "" {
		return emptyColumnSlug
	}
	return s
}
