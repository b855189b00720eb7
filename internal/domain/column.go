package domain

import "time"

// ColumnKind distinguishes ingested columns from columns added later by
// other subsystems.
type ColumnKind string

// Supported column kinds.
const (
	ColumnKindStatic    ColumnKind = "static"
	ColumnKindGenerated ColumnKind = "generated"
)

// Valid reports whether k is one of the known kinds.
func (k ColumnKind) Valid() bool {
	return k == ColumnKindStatic || k == ColumnKindGenerated
}

// Column describes one column of a dataset's storage table.
//
// Name and Type are the source column name and the type inferred by the
// storage engine. StorageName is the safe identifier used in the table.
type Column struct {
	ID          string
	DatasetID   string
	Name        string
	StorageName string
	Type        string
	Kind        ColumnKind
	Visible     bool
	Position    int
	CreatedAt   time.Time
}

// ProbedColumn is one (name, type) pair reported by a schema probe.
type ProbedColumn struct {
	Name string
	Type string
}
