package domain

// MaterializeOptions controls how much of a source file is ingested.
type MaterializeOptions struct {
	// RowLimit caps the number of ingested rows. Zero means the whole file.
	RowLimit int
}

// ImportRequest asks for a public file to be imported as a new dataset.
type ImportRequest struct {
	PublicFileName string
	DatasetName    string
	RowLimit       int
}

// AutoLoadResult describes the outcome of a startup auto-load.
type AutoLoadResult struct {
	Success   bool
	DatasetID string
	FileName  string
	Error     string
}
