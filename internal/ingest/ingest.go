package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IngestionResult is the per-file evaluation outcome.
type IngestionResult struct {
	SourcePath   string
	ReportID     uuid.UUID
	Product      string
	NonCompliant bool
	XLSXPath     string
	Elapsed      time.Duration
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	NonCompliant uint32
	Failed       uint32
}

// Ingestor is the behavior the CLI depends on.
type Ingestor interface {
	// IngestPath evaluates a single extraction file.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory evaluates all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
