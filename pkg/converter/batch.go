package converter

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// SongSource loads a song archive into metadata the pipeline can
// consume. The returned cleanup runs after the song is converted (or
// fails) and removes any temporary extraction artifacts.
type SongSource interface {
	Load(ctx context.Context, archivePath string) (SongMetadata, func(), error)
}

// BatchSummary aggregates a whole batch run. The counters are updated
// atomically by the worker pool; read them only after BatchConvert
// returns.
type BatchSummary struct {
	Converted         atomic.Int64
	Failed            atomic.Int64
	DuplicateOnsets   atomic.Int64
	UnmatchedReleases atomic.Int64
	UnmappedNotes     atomic.Int64

	mu      sync.Mutex
	results []*Result
	errors  map[string]error
}

// Results returns the per-song results of successful conversions
func (s *BatchSummary) Results() []*Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Result, len(s.results))
	copy(out, s.results)
	return out
}

// Errors returns failed archives keyed by path
func (s *BatchSummary) Errors() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]error, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *BatchSummary) addResult(res *Result) {
	s.Converted.Add(1)
	s.DuplicateOnsets.Add(int64(res.Diagnostics.DuplicateOnsets))
	s.UnmatchedReleases.Add(int64(res.Diagnostics.UnmatchedReleases))
	s.UnmappedNotes.Add(int64(res.Diagnostics.UnmappedNotes))
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
}

func (s *BatchSummary) addError(archive string, err error) {
	s.Failed.Add(1)
	s.mu.Lock()
	if s.errors == nil {
		s.errors = make(map[string]error)
	}
	s.errors[archive] = err
	s.mu.Unlock()
}

// BatchConvert runs the pipeline over many archives with a fixed-size
// worker pool. Songs are independent, so one failure never stops the
// batch; cancelling ctx stops scheduling new jobs. A job that fails is
// recorded in the summary, never half-written (ConvertSong is atomic
// by song).
func (c *Converter) BatchConvert(ctx context.Context, src SongSource, archives []string, workers int) *BatchSummary {
	if workers < 1 {
		workers = 1
	}

	summary := new(BatchSummary)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, archive := range archives {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			meta, cleanup, err := src.Load(ctx, archive)
			if err != nil {
				c.log.Error("failed to load archive", "archive", archive, "err", err)
				summary.addError(archive, err)
				return nil
			}
			defer cleanup()

			res, err := c.ConvertSong(ctx, meta)
			if err != nil {
				c.log.Error("conversion failed", "archive", archive, "err", err)
				summary.addError(archive, err)
				return nil
			}
			summary.addResult(res)
			return nil
		})
	}

	// Workers never return errors; failures are per-song data
	_ = g.Wait()
	return summary
}
