package seeder

import (
	"errors"
	"time"

	"github.com/samber/lo"
)

var (
	ErrCycle        = errors.New("circular dependency detected")
	ErrNoReferences = errors.New("no referenced rows available")
	ErrJoinTimeout  = errors.New("gave up waiting for workers")
)

// Distribution decides how a table's record count is split across workers.
type Distribution string

const (
	// Strict hands the remainder to the first workers so every requested
	// row is generated.
	Strict Distribution = "strict"
	// Truncate gives every worker total/workers rows and drops the
	// remainder, matching the original loader.
	Truncate Distribution = "truncate"
)

type SeedConfig struct {
	Counts       map[string]int // keyed by TableSpec.Key
	Workers      int            // per table
	BatchSize    int            // rows per transaction
	JoinTimeout  time.Duration  // 0 waits forever
	Distribution Distribution
	FailFast     bool // cancel a table's siblings on the first worker error
	Truncate     bool // clear tables before seeding
}

// RowFunc builds the tuple for the row at index, in TableSpec.Columns order.
type RowFunc func(gen *DataGenerator, refs References, index int) []interface{}

type TableSpec struct {
	Name       string
	Key        string
	PrimaryKey string
	Columns    []string
	DependsOn  []string
	Row        RowFunc
}

// References holds the primary keys read back from populated tables. It is
// written between phases and only read while a phase runs.
type References map[string][]int64

// Pick returns a random id of table. The caller guarantees the list is not
// empty.
func (r References) Pick(gen *DataGenerator, table string) int64 {
	ids := r[table]
	return ids[gen.Intn(len(ids))]
}

type WorkerResult struct {
	Worker   int
	Assigned int
	Written  int
	Batches  int
	Err      error
}

type TableResult struct {
	Table     string
	Requested int
	Planned   int
	Written   int
	Batches   int
	Workers   []WorkerResult
	TimedOut  bool
	Elapsed   time.Duration
}

func (r *TableResult) add(w WorkerResult) {
	r.Workers = append(r.Workers, w)
	r.Written += w.Written
	r.Batches += w.Batches
}

// Lost is the number of requested rows that were not committed, whether
// dropped by partitioning or by a failed worker.
func (r *TableResult) Lost() int {
	return r.Requested - r.Written
}

func (r *TableResult) FailedWorkers() []WorkerResult {
	return lo.Filter(r.Workers, func(w WorkerResult, _ int) bool {
		return w.Err != nil
	})
}

// Err joins every worker error of the table, plus ErrJoinTimeout if the
// populator stopped waiting.
func (r *TableResult) Err() error {
	errs := lo.FilterMap(r.Workers, func(w WorkerResult, _ int) (error, bool) {
		return w.Err, w.Err != nil
	})
	if r.TimedOut {
		errs = append(errs, ErrJoinTimeout)
	}
	return errors.Join(errs...)
}

type RunReport struct {
	RunID   string
	Phases  [][]string
	Tables  []*TableResult
	Elapsed time.Duration
}

func (r *RunReport) TotalRequested() int {
	return lo.SumBy(r.Tables, func(t *TableResult) int { return t.Requested })
}

func (r *RunReport) TotalWritten() int {
	return lo.SumBy(r.Tables, func(t *TableResult) int { return t.Written })
}

// Degraded reports whether any table lost rows to worker failures or a
// join timeout.
func (r *RunReport) Degraded() bool {
	return lo.SomeBy(r.Tables, func(t *TableResult) bool { return t.Err() != nil })
}

func (r *RunReport) Table(name string) *TableResult {
	t, _ := lo.Find(r.Tables, func(t *TableResult) bool { return t.Table == name })
	return t
}
