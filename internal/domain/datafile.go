package domain

import "time"

// DataFileInfo describes one candidate source file found on disk.
type DataFileInfo struct {
	FileName     string
	FullPath     string
	ModifiedTime time.Time
	SizeBytes    int64
}
