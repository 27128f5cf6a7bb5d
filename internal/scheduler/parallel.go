package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// CompetingParams configure the racing solver. Workers counts the optimizer
// workers launched next to the single exact-solver goroutine.
type CompetingParams struct {
	Workers   int
	Optimizer OptimizerParams
}

// CompetingSolver races the exact solver against several optimizer workers.
// Every worker owns a private copy of the session slice and its own counters;
// the only shared mutable cell is the best-schedule register. The first
// perfect result cancels the rest of the field.
type CompetingSolver struct {
	grid   Grid
	params CompetingParams
	logger *zap.Logger
}

// NewCompetingSolver constructs the racing solver.
func NewCompetingSolver(grid Grid, params CompetingParams, logger *zap.Logger) *CompetingSolver {
	if params.Workers <= 0 {
		params.Workers = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompetingSolver{grid: grid, params: params, logger: logger}
}

// Solve returns the best result any strategy produced within the budgets.
func (c *CompetingSolver) Solve(ctx context.Context, sessions []*Session) Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	register := &bestRegister{}
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		solver := NewBacktrackingSolver(c.grid, NewSlotScorer(c.grid, c.params.Optimizer.MaxPerSlot), c.logger)
		schedule, stats, err := solver.Solve(ctx, copySessions(sessions))
		if err != nil {
			if !errors.Is(err, ErrNoSolution) && !errors.Is(err, context.Canceled) {
				c.logger.Warn("exact strategy aborted", zap.Error(err))
			}
			return
		}
		penalty := Evaluate(c.grid, schedule, sessions)
		if register.offer(schedule, penalty, RunStats{Iterations: stats.Calls}) && penalty == 0 {
			cancel()
		}
	}()

	for i := 0; i < c.params.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			params := c.params.Optimizer
			// Stagger the restart cadence so the workers explore different
			// rebuild rhythms while staying individually deterministic.
			params.normalize()
			params.StagnationLimit += worker * params.StagnationLimit
			opt := NewOptimizer(c.grid, params, c.logger.With(zap.Int("worker", worker)))
			result := opt.Solve(ctx, copySessions(sessions))
			if register.offer(result.Schedule, result.Penalty, result.Stats) && result.Penalty == 0 {
				cancel()
			}
		}(i)
	}

	wg.Wait()

	schedule, penalty, stats, ok := register.snapshot()
	if !ok {
		// Nothing finished inside the budget; an empty schedule still scores.
		schedule = NewSchedule()
		penalty = Evaluate(c.grid, schedule, sessions)
	}
	return Result{Schedule: schedule, Penalty: penalty, Stats: stats}
}

// bestRegister is the single synchronized cell the competing strategies
// write: last-writer-wins only when the offered penalty is strictly lower.
type bestRegister struct {
	mu       sync.Mutex
	schedule *Schedule
	penalty  int
	stats    RunStats
	has      bool
}

func (r *bestRegister) offer(schedule *Schedule, penalty int, stats RunStats) bool {
	if schedule == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.has && penalty >= r.penalty {
		return false
	}
	r.schedule = schedule
	r.penalty = penalty
	r.stats = stats
	r.has = true
	return true
}

func (r *bestRegister) snapshot() (*Schedule, int, RunStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.schedule, r.penalty, r.stats, r.has
}

func copySessions(sessions []*Session) []*Session {
	copied := make([]*Session, len(sessions))
	copy(copied, sessions)
	return copied
}
