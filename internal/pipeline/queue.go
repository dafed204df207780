package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/extract"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/source"
)

type extractJob struct {
	index int
	path  string
}

type extractResult struct {
	index  int
	path   string
	record *entity.Record
	err    error
	took   time.Duration
}

// extractQueue fans document loading and field extraction out to a fixed
// worker pool. Results are re-sequenced by input index so the batch stays in
// directory order regardless of worker scheduling.
type extractQueue struct {
	source    source.DocumentSource
	extractor extract.FieldExtractor
	logger    *slog.Logger
	workers   int
	timeout   time.Duration
}

type queueOption func(*extractQueue)

func withWorkers(n int) queueOption {
	return func(q *extractQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func withDocTimeout(d time.Duration) queueOption {
	return func(q *extractQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func newExtractQueue(src source.DocumentSource, ex extract.FieldExtractor, logger *slog.Logger, opts ...queueOption) *extractQueue {
	q := &extractQueue{
		source:    src,
		extractor: ex,
		logger:    logger,
		workers:   4,
		timeout:   30 * time.Second,
	}
	for _, o := range opts {
		o(q)
	}
	return q
}

// run processes every path and returns one result per path, in input order.
// Per-document failures are carried in the result, not returned: one broken
// file never stops the batch.
func (q *extractQueue) run(ctx context.Context, paths []string) []extractResult {
	jobs := make(chan extractJob)
	results := make(chan extractResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobs {
				results <- q.process(ctx, workerID, job)
			}
		}(i + 1)
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- extractJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]extractResult, 0, len(paths))
	for r := range results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

func (q *extractQueue) process(ctx context.Context, workerID int, job extractJob) extractResult {
	start := time.Now()
	docCtx, cancel := common.WithTimeout(common.WithDocument(ctx, job.path), q.timeout)
	defer cancel()

	doc, err := q.source.Load(docCtx, job.path)
	if err != nil {
		q.logger.Warn("extract.load_failed", "worker_id", workerID, "path", job.path, "error", err)
		return extractResult{index: job.index, path: job.path, err: err, took: time.Since(start)}
	}

	rec := q.extractor.Extract(doc)
	q.logger.Info("extract.ok", "worker_id", workerID, "path", job.path)
	return extractResult{index: job.index, path: job.path, record: rec, took: time.Since(start)}
}
