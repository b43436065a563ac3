package seeder

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/rs/zerolog"
)

const DefaultWorkers = 6

// TablePopulator fills one table with a fixed pool of workers. Every worker
// checks out one connection for its whole share and owns its own generator
// and BatchWriter.
type TablePopulator struct {
	pool database.Pool
	gen  *DataGenerator
	log  zerolog.Logger
	cfg  SeedConfig
}

func NewTablePopulator(pool database.Pool, gen *DataGenerator, log zerolog.Logger, cfg SeedConfig) *TablePopulator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Distribution == "" {
		cfg.Distribution = Strict
	}
	return &TablePopulator{pool: pool, gen: gen, log: log, cfg: cfg}
}

// Populate writes total rows into spec's table and waits for the workers.
// A failing worker does not stop its siblings unless FailFast is set. When
// JoinTimeout elapses first, Populate returns with TimedOut set and the
// workers that have not reported keep running.
func (p *TablePopulator) Populate(ctx context.Context, spec *TableSpec, total int, refs References) *TableResult {
	start := time.Now()
	shares := Partition(total, p.cfg.Workers, p.cfg.Distribution)
	result := &TableResult{
		Table:     spec.Name,
		Requested: total,
		Planned:   Planned(shares),
	}
	log := p.log.With().Str("table", spec.Name).Logger()

	if result.Planned < total {
		log.Warn().
			Int("requested", total).
			Int("planned", result.Planned).
			Msg("truncate distribution drops the remainder")
	}

	workCtx, cancel := context.WithCancel(ctx)
	results := make(chan WorkerResult, len(shares))
	var wg sync.WaitGroup

	for _, share := range shares {
		if share.Count == 0 {
			result.add(WorkerResult{Worker: share.Worker})
			continue
		}
		wg.Add(1)
		go func(share Share, gen *DataGenerator) {
			defer wg.Done()
			res := p.runWorker(workCtx, spec, share, gen, refs, log)
			if res.Err != nil && p.cfg.FailFast {
				cancel()
			}
			results <- res
		}(share, p.gen.Fork())
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		cancel()
		close(done)
	}()

	var timeout <-chan time.Time
	if p.cfg.JoinTimeout > 0 {
		timer := time.NewTimer(p.cfg.JoinTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
	case <-timeout:
		result.TimedOut = true
		log.Warn().Dur("join_timeout", p.cfg.JoinTimeout).Msg("stopped waiting for workers")
	}

drain:
	for {
		select {
		case res := <-results:
			result.add(res)
		default:
			break drain
		}
	}

	sort.Slice(result.Workers, func(i, j int) bool {
		return result.Workers[i].Worker < result.Workers[j].Worker
	})
	result.Elapsed = time.Since(start)

	log.Debug().
		Int("written", result.Written).
		Int("batches", result.Batches).
		Dur("elapsed", result.Elapsed).
		Msg("table populated")
	return result
}

func (p *TablePopulator) runWorker(ctx context.Context, spec *TableSpec, share Share, gen *DataGenerator, refs References, log zerolog.Logger) WorkerResult {
	res := WorkerResult{Worker: share.Worker, Assigned: share.Count}
	wlog := log.With().Int("worker", share.Worker).Logger()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		res.Err = fmt.Errorf("%s worker %d: acquire connection: %w", spec.Name, share.Worker, err)
		wlog.Error().Err(err).Msg("worker could not get a connection")
		return res
	}
	defer conn.Release()

	writer, err := NewBatchWriter(conn, p.pool.Dialect(), spec.Name, spec.Columns, p.cfg.BatchSize, wlog)
	if err != nil {
		res.Err = fmt.Errorf("%s worker %d: %w", spec.Name, share.Worker, err)
		wlog.Error().Err(err).Msg("worker could not prepare insert")
		return res
	}

	stats, err := writer.Write(ctx, share.Offset, share.Count, func(index int) []interface{} {
		return spec.Row(gen, refs, index)
	})
	res.Written = stats.Rows
	res.Batches = stats.Batches
	if err != nil {
		res.Err = fmt.Errorf("%s worker %d: %w", spec.Name, share.Worker, err)
		wlog.Error().
			Err(err).
			Int("written", stats.Rows).
			Int("lost", share.Count-stats.Rows).
			Msg("worker stopped early")
	}
	return res
}
