package domain

import "time"

// DatasetIdentity is the immutable triple that scopes every storage object
// created for one dataset. ID is globally unique for the dataset's lifetime.
type DatasetIdentity struct {
	ID        string
	Name      string
	CreatedBy string
}

// Dataset is a catalog entry for an ingested file.
type Dataset struct {
	DatasetIdentity
	SourceFile string
	CreatedAt  time.Time
	Columns    []Column
	RowCount   int64
}

// Identity returns the dataset's identity triple.
func (d *Dataset) Identity() DatasetIdentity {
	return d.DatasetIdentity
}
