package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"harvest/internal/frontmatter"
	"harvest/internal/logging"
)

// processDocuments extracts every file's frontmatter record, in input
// order. Parallel mode fans all extractions out (bounded by Workers),
// waits for every result, then inspects them in input order so the first
// failing file wins deterministically regardless of completion order.
// Sequential mode short-circuits on the first failure.
func processDocuments(ctx context.Context, files []string, ex Extractor, cfg Config) ([]frontmatter.Data, error) {
	if cfg.Parallel && len(files) >= cfg.ParallelThreshold {
		return processParallel(ctx, files, ex, cfg.Workers)
	}
	return processSequential(files, ex)
}

func processSequential(files []string, ex Extractor) ([]frontmatter.Data, error) {
	records := make([]frontmatter.Data, 0, len(files))
	for _, f := range files {
		rec, err := ex.Extract(f)
		if err != nil {
			return nil, fmt.Errorf("process %q: %w", f, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func processParallel(ctx context.Context, files []string, ex Extractor, workers int) ([]frontmatter.Data, error) {
	logger := logging.New("pipeline")
	logger.Debug("parallel document processing", "files", len(files), "workers", workers)

	records := make([]frontmatter.Data, len(files))
	errs := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return nil
			default:
			}
			records[i], errs[i] = ex.Extract(f)
			return nil
		})
	}
	// Workers never return errors directly; all results are awaited and
	// then inspected in input order.
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("process %q: %w", files[i], err)
		}
	}
	return records, nil
}
