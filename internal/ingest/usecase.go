package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/labcert/constants"
	"github.com/joseph-ayodele/labcert/internal/pipeline"
)

// FileProcessor evaluates one extraction file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (pipeline.Outcome, error)
}

// Usecase evaluates files and directories through a processor. Documents are
// independent, so a directory is processed with bounded parallelism.
type Usecase struct {
	Processor   FileProcessor
	Logger      *slog.Logger
	Workers     int
	AllowedExts map[string]struct{}
}

var _ Ingestor = (*Usecase)(nil)

func NewUsecase(proc FileProcessor, logger *slog.Logger, workers int) *Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Usecase{Processor: proc, Logger: logger, Workers: workers}
}

func (u *Usecase) exts() map[string]struct{} {
	if u.AllowedExts != nil {
		return u.AllowedExts
	}
	return constants.AllowedExtensions
}

func (u *Usecase) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	res := IngestionResult{SourcePath: path}
	if !allowed(path, u.exts()) {
		err := fmt.Errorf("unsupported or missing extension: %q", path)
		res.Err = err.Error()
		return res, err
	}
	start := time.Now()
	out, err := u.Processor.ProcessFile(ctx, path)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err.Error()
		return res, err
	}
	res.ReportID = out.ReportID
	res.Product = out.Report.Product
	res.NonCompliant = out.Report.NonCompliant
	res.XLSXPath = out.XLSXPath
	return res, nil
}

// IngestDirectory evaluates every matching file under root. Per-file failures are
// recorded in the results and stats; only a walk or context failure is returned.
func (u *Usecase) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	var stats DirStats
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%s is not a directory", root)
	}

	paths, scanned, err := Discover(root, u.exts(), skipHidden)
	stats.Scanned = scanned
	if err != nil {
		return nil, stats, err
	}
	stats.Matched = uint32(len(paths))

	results := make([]IngestionResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if u.Workers > 0 {
		g.SetLimit(u.Workers)
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = IngestionResult{SourcePath: p, Err: err.Error()}
				return err
			}
			results[i], _ = u.IngestPath(gctx, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, tally(stats, results), err
	}
	stats = tally(stats, results)
	u.Logger.Info("ingest.directory.ok",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"non_compliant", stats.NonCompliant,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

func tally(stats DirStats, results []IngestionResult) DirStats {
	for _, r := range results {
		switch {
		case r.Err != "":
			stats.Failed++
		case r.SourcePath == "":
		default:
			stats.Succeeded++
			if r.NonCompliant {
				stats.NonCompliant++
			}
		}
	}
	return stats
}
