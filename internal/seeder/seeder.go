package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Lumos-Labs-HQ/medload/internal/database"
	"github.com/Lumos-Labs-HQ/medload/internal/database/common"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Seeder runs the phased load: every table of a phase is populated
// concurrently, then the ids that later phases reference are read back
// before the next phase starts.
type Seeder struct {
	pool   database.Pool
	gen    *DataGenerator
	log    zerolog.Logger
	graph  *DependencyGraph
	reader *IDReader
	phases [][]*TableSpec
}

func NewSeeder(pool database.Pool, gen *DataGenerator, log zerolog.Logger, tables []TableSpec) (*Seeder, error) {
	graph := NewDependencyGraph()
	for i := range tables {
		table := &tables[i]
		if !common.IsValidIdentifier(table.Name) {
			return nil, fmt.Errorf("invalid table name: %s", table.Name)
		}
		if table.Row == nil {
			return nil, fmt.Errorf("table %s has no row generator", table.Name)
		}
		graph.AddTable(table)
	}

	phases, err := graph.BuildPhases()
	if err != nil {
		return nil, fmt.Errorf("failed to build insertion phases: %w", err)
	}

	return &Seeder{
		pool:   pool,
		gen:    gen,
		log:    log,
		graph:  graph,
		reader: NewIDReader(pool),
		phases: phases,
	}, nil
}

// Phases returns the table names of every phase, in run order.
func (s *Seeder) Phases() [][]string {
	names := make([][]string, len(s.phases))
	for i, phase := range s.phases {
		for _, spec := range phase {
			names[i] = append(names[i], spec.Name)
		}
	}
	return names
}

// PhaseWidth is the number of tables in the largest phase, which is how
// many tables populate at once.
func PhaseWidth(tables []TableSpec) (int, error) {
	graph := NewDependencyGraph()
	for i := range tables {
		graph.AddTable(&tables[i])
	}
	phases, err := graph.BuildPhases()
	if err != nil {
		return 0, err
	}
	return phaseWidth(phases), nil
}

func phaseWidth(phases [][]*TableSpec) int {
	width := 0
	for _, phase := range phases {
		width = max(width, len(phase))
	}
	return width
}

// Seed runs every phase. Worker failures are recorded in the report and do
// not stop the run; a failed id readback does, since later phases would
// have no foreign keys to draw from.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:  uuid.NewString(),
		Phases: s.Phases(),
	}
	log := s.log.With().Str("run_id", report.RunID).Logger()

	color.Cyan("🌱 Starting seed run %s", report.RunID)
	color.Cyan("📋 Insertion phases: %s", formatPhases(report.Phases))
	fmt.Println()

	if cfg.Truncate {
		if err := s.Truncate(ctx); err != nil {
			return report, fmt.Errorf("failed to truncate tables: %w", err)
		}
	}

	populator := NewTablePopulator(s.pool, s.gen, log, cfg)
	refs := References{}

	for i, phase := range s.phases {
		if err := s.checkReferences(phase, cfg, refs); err != nil {
			return report, err
		}

		color.Cyan("🚀 Phase %d: %s", i+1, strings.Join(report.Phases[i], ", "))
		results := s.runPhase(ctx, populator, phase, cfg, refs)
		report.Tables = append(report.Tables, results...)
		for _, res := range results {
			printTableResult(res)
		}

		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		if err := s.readBack(ctx, phase, refs); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
		fmt.Println()
	}

	report.Elapsed = time.Since(start)
	log.Info().
		Int("requested", report.TotalRequested()).
		Int("written", report.TotalWritten()).
		Dur("elapsed", report.Elapsed).
		Bool("degraded", report.Degraded()).
		Msg("seed run finished")
	return report, nil
}

func (s *Seeder) runPhase(ctx context.Context, populator *TablePopulator, phase []*TableSpec, cfg SeedConfig, refs References) []*TableResult {
	results := make([]*TableResult, len(phase))

	var wg sync.WaitGroup
	for i, spec := range phase {
		count := cfg.Counts[spec.Key]
		color.Cyan("  📝 Seeding %s (%d records)...", spec.Name, count)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = populator.Populate(ctx, spec, count, refs)
		}()
	}
	wg.Wait()

	return results
}

// checkReferences makes sure every table about to run has rows to point
// at. Tables with nothing to generate are not checked.
func (s *Seeder) checkReferences(phase []*TableSpec, cfg SeedConfig, refs References) error {
	for _, spec := range phase {
		if cfg.Counts[spec.Key] == 0 {
			continue
		}
		for _, dep := range spec.DependsOn {
			if dep == spec.Name {
				continue
			}
			if len(refs[dep]) == 0 {
				return fmt.Errorf("cannot seed %s: %w in %s", spec.Name, ErrNoReferences, dep)
			}
		}
	}
	return nil
}

// readBack loads the ids of the tables in phase that any table depends on.
// Lists are read concurrently and only published to refs once all of them
// succeeded.
func (s *Seeder) readBack(ctx context.Context, phase []*TableSpec, refs References) error {
	var targets []*TableSpec
	for _, spec := range phase {
		if s.isReferenced(spec.Name) {
			targets = append(targets, spec)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	ids := make([][]int64, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range targets {
		g.Go(func() error {
			list, err := s.reader.ReadIDs(gctx, spec.Name, spec.PrimaryKey)
			if err != nil {
				return err
			}
			ids[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		color.Red("❌ Readback failed: %v", err)
		return fmt.Errorf("readback aborted the run: %w", err)
	}

	for i, spec := range targets {
		refs[spec.Name] = ids[i]
		color.Green("  🔑 Read back %d ids from %s", len(ids[i]), spec.Name)
	}
	return nil
}

func (s *Seeder) isReferenced(name string) bool {
	for _, phase := range s.phases {
		for _, spec := range phase {
			for _, dep := range spec.DependsOn {
				if dep == name && spec.Name != name {
					return true
				}
			}
		}
	}
	return false
}

// Truncate empties every table, dependents first.
func (s *Seeder) Truncate(ctx context.Context) error {
	color.Yellow("🗑️  Truncating tables...")

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	dialect := s.pool.Dialect()
	var errs []error
	for i := len(s.phases) - 1; i >= 0; i-- {
		for _, spec := range s.phases[i] {
			stmts, err := dialect.TruncateStatements(spec.Name)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := conn.Exec(ctx, stmts[0]); err != nil {
				err = fmt.Errorf("failed to truncate %s: %w", spec.Name, err)
				color.Yellow("  ⚠️  %v", err)
				errs = append(errs, err)
				continue
			}
			// Sequence resets are best effort.
			for _, stmt := range stmts[1:] {
				if err := conn.Exec(ctx, stmt); err != nil {
					s.log.Debug().Err(err).Str("table", spec.Name).Msg("sequence reset skipped")
				}
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	color.Green("✅ Tables truncated")
	fmt.Println()
	return nil
}

type TableCount struct {
	Table string
	Rows  int64
}

// Counts returns the row count of every table in insertion order.
func (s *Seeder) Counts(ctx context.Context) ([]TableCount, error) {
	var counts []TableCount
	for _, phase := range s.phases {
		for _, spec := range phase {
			n, err := s.reader.Count(ctx, spec.Name)
			if err != nil {
				return counts, err
			}
			counts = append(counts, TableCount{Table: spec.Name, Rows: n})
		}
	}
	return counts, nil
}

func formatPhases(phases [][]string) string {
	parts := make([]string, len(phases))
	for i, phase := range phases {
		parts[i] = strings.Join(phase, ", ")
	}
	return strings.Join(parts, " → ")
}

func printTableResult(res *TableResult) {
	switch {
	case res.TimedOut:
		color.Yellow("  ⏱️  %s: gave up waiting after %d/%d rows", res.Table, res.Written, res.Requested)
	case len(res.FailedWorkers()) > 0:
		color.Yellow("  ⚠️  %s: %d/%d rows, %d worker(s) failed", res.Table, res.Written, res.Requested, len(res.FailedWorkers()))
	case res.Lost() > 0:
		color.Yellow("  ⚠️  %s: %d/%d rows (%d dropped by partitioning)", res.Table, res.Written, res.Requested, res.Lost())
	default:
		color.Green("  ✅ %s: %d rows in %.2fs", res.Table, res.Written, res.Elapsed.Seconds())
	}
}
