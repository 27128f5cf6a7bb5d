package scheduler

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
)

// OptimizerParams bound one local-search run. Zero values fall back to the
// defaults below.
type OptimizerParams struct {
	MaxIterations    int
	TimeLimit        time.Duration
	StagnationLimit  int
	ProgressInterval int
	MaxPerSlot       int
}

const (
	defaultMaxIterations    = 5000
	defaultTimeLimit        = 30 * time.Second
	defaultStagnationLimit  = 50
	defaultProgressInterval = 500
)

func (p *OptimizerParams) normalize() {
	if p.MaxIterations <= 0 {
		p.MaxIterations = defaultMaxIterations
	}
	if p.TimeLimit <= 0 {
		p.TimeLimit = defaultTimeLimit
	}
	if p.StagnationLimit <= 0 {
		p.StagnationLimit = defaultStagnationLimit
	}
	if p.ProgressInterval <= 0 {
		p.ProgressInterval = defaultProgressInterval
	}
	if p.MaxPerSlot <= 0 {
		p.MaxPerSlot = DefaultMaxPerSlot
	}
}

// RunStats carries run-scoped counters for one optimizer invocation.
type RunStats struct {
	Iterations int
	Moves      int
	Accepted   int
	Restarts   int
	Elapsed    time.Duration
}

// Result is what a solving run hands back: the best schedule observed, its
// penalty and the run counters. Penalty zero means the schedule is perfect;
// a non-zero penalty is a best-effort shortfall, not a failure.
type Result struct {
	Schedule *Schedule
	Penalty  int
	Stats    RunStats
}

// Perfect reports whether the schedule satisfies every hard constraint.
func (r Result) Perfect() bool {
	return r.Penalty == 0
}

// Optimizer is the production solver: a deterministic heuristic build
// followed by single-session relocation moves accepted only on strict
// improvement, with a full rebuild after prolonged stagnation. It never
// fails; it returns the best schedule observed within its budgets.
type Optimizer struct {
	grid   Grid
	scorer *SlotScorer
	params OptimizerParams
	logger *zap.Logger
}

// NewOptimizer constructs an optimizer with the given budgets.
func NewOptimizer(grid Grid, params OptimizerParams, logger *zap.Logger) *Optimizer {
	params.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		grid:   grid,
		scorer: NewSlotScorer(grid, params.MaxPerSlot),
		params: params,
		logger: logger,
	}
}

// Solve runs the improvement loop until a perfect schedule appears or the
// iteration, wall-clock or context budget runs out.
func (o *Optimizer) Solve(ctx context.Context, sessions []*Session) Result {
	start := time.Now()
	deadline := start.Add(o.params.TimeLimit)
	students := studentSets(sessions)

	working := o.buildInitial(sessions, 0)
	best := working.Clone()
	bestPenalty := Evaluate(o.grid, best, sessions)

	stats := RunStats{}
	stagnation := 0

	for stats.Iterations < o.params.MaxIterations {
		if bestPenalty == 0 {
			break
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}
		stats.Iterations++

		if stagnation >= o.params.StagnationLimit {
			stats.Restarts++
			working = o.buildInitial(sessions, stats.Restarts)
			stagnation = 0
			if penalty := Evaluate(o.grid, working, sessions); penalty < bestPenalty {
				bestPenalty = penalty
				best = working.Clone()
			}
			continue
		}

		improved := false
		for _, slot := range working.Slots() {
			occupants := append([]*Session(nil), working.SessionsAt(slot)...)
			for _, sess := range occupants {
				if o.tryRelocate(working, sess, sessions, students, &best, &bestPenalty, &stats) {
					improved = true
				}
			}
		}

		if improved {
			stagnation = 0
		} else {
			stagnation++
		}

		if stats.Iterations%o.params.ProgressInterval == 0 {
			o.logger.Info("optimizer progress",
				zap.Int("iteration", stats.Iterations),
				zap.Int("best_penalty", bestPenalty),
				zap.Int("stagnation", stagnation),
				zap.Int("restarts", stats.Restarts),
			)
		}
	}

	stats.Elapsed = time.Since(start)
	o.logger.Info("optimizer finished",
		zap.Int("iterations", stats.Iterations),
		zap.Int("penalty", bestPenalty),
		zap.Int("accepted_moves", stats.Accepted),
		zap.Int("restarts", stats.Restarts),
		zap.Duration("elapsed", stats.Elapsed),
	)
	return Result{Schedule: best, Penalty: bestPenalty, Stats: stats}
}

// tryRelocate removes the session from its slot and probes every other
// candidate slot; a move survives only when the full evaluated penalty beats
// the best score ever observed. Without an improving destination the session
// returns to its original slot.
func (o *Optimizer) tryRelocate(
	working *Schedule,
	sess *Session,
	sessions []*Session,
	students map[string]map[string]struct{},
	best **Schedule,
	bestPenalty *int,
	stats *RunStats,
) bool {
	origin, ok := working.Remove(sess)
	if !ok {
		return false
	}

	for _, slot := range sess.Candidates {
		if slot == origin || !o.grid.ValidSlot(slot) {
			continue
		}
		if working.Occupancy(slot) >= o.params.MaxPerSlot {
			continue
		}
		if conflictsAt(working, slot, sess, students) {
			continue
		}
		stats.Moves++
		working.Place(sess, slot)
		penalty := Evaluate(o.grid, working, sessions)
		if penalty < *bestPenalty {
			*bestPenalty = penalty
			*best = working.Clone()
			stats.Accepted++
			return true
		}
		working.Remove(sess)
	}

	working.Place(sess, origin)
	return false
}

// buildInitial walks the sessions in a constrainedness order and places each
// at its best-scoring legal candidate. Sessions with no legal candidate fall
// back to the first candidate with spare capacity; the evaluator penalizes
// whatever that breaks. The round number rotates the build order, so every
// restart starts from a different placement than the one that stagnated while
// the same round always reproduces the same schedule.
func (o *Optimizer) buildInitial(sessions []*Session, round int) *Schedule {
	ordered := make([]*Session, len(sessions))
	copy(ordered, sessions)
	// Parallel sessions first, then fewer candidates, then more students.
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Parallel() != b.Parallel() {
			return a.Parallel()
		}
		if len(a.Candidates) != len(b.Candidates) {
			return len(a.Candidates) < len(b.Candidates)
		}
		if len(a.StudentIDs) != len(b.StudentIDs) {
			return len(a.StudentIDs) > len(b.StudentIDs)
		}
		return a.ID < b.ID
	})
	if round > 0 && len(ordered) > 1 {
		offset := round % len(ordered)
		rotated := make([]*Session, 0, len(ordered))
		rotated = append(rotated, ordered[offset:]...)
		rotated = append(rotated, ordered[:offset]...)
		ordered = rotated
	}

	schedule := NewSchedule()
	daily := make(map[dailyKey]int)
	dayLoad := make(map[int]int)
	slotLoad := make(map[int]int)

	for _, sess := range ordered {
		slot, ok := o.pickInitialSlot(schedule, sess, daily, dayLoad, slotLoad)
		if !ok {
			continue
		}
		schedule.Place(sess, slot)
		day, _ := o.grid.DayPeriod(slot)
		daily[dailyKey{SubjectID: sess.SubjectID, Group: sess.Group, Day: day}]++
		dayLoad[day]++
		slotLoad[slot]++
	}
	return schedule
}

func (o *Optimizer) pickInitialSlot(
	schedule *Schedule,
	sess *Session,
	daily map[dailyKey]int,
	dayLoad, slotLoad map[int]int,
) (int, bool) {
	siblingSlot, hasSibling := placedSiblingSlot(schedule, sess)

	type scored struct {
		slot  int
		score float64
	}
	ranked := make([]scored, 0, len(sess.Candidates))
	for _, slot := range sess.Candidates {
		if !o.grid.ValidSlot(slot) {
			continue
		}
		ranked = append(ranked, scored{slot: slot, score: o.scorer.Score(slot, dayLoad, slotLoad)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].slot < ranked[j].slot
	})

	for _, r := range ranked {
		slot := r.slot
		if schedule.Occupancy(slot) >= o.params.MaxPerSlot {
			continue
		}
		day, _ := o.grid.DayPeriod(slot)
		key := dailyKey{SubjectID: sess.SubjectID, Group: sess.Group, Day: day}
		if sess.MaxPerDay > 0 && daily[key] >= sess.MaxPerDay {
			continue
		}
		if teacherBusyAt(schedule, slot, sess.TeacherID) {
			continue
		}
		// Co-location: once any sibling is placed, only its slot is legal.
		if hasSibling && slot != siblingSlot {
			continue
		}
		return slot, true
	}

	// Dirty fallback: first candidate with spare capacity, constraints or not.
	for _, slot := range sess.Candidates {
		if o.grid.ValidSlot(slot) && schedule.Occupancy(slot) < o.params.MaxPerSlot {
			return slot, true
		}
	}
	return 0, false
}

// placedSiblingSlot looks up where the session's parallel siblings already
// sit. Sibling lookup is keyed by the stable parallel key, never by position.
func placedSiblingSlot(schedule *Schedule, sess *Session) (int, bool) {
	if sess.ParallelKey == "" {
		return 0, false
	}
	for _, slot := range schedule.Slots() {
		for _, other := range schedule.SessionsAt(slot) {
			if other.ID != sess.ID && other.ParallelKey == sess.ParallelKey {
				return slot, true
			}
		}
	}
	return 0, false
}

func teacherBusyAt(schedule *Schedule, slot int, teacherID string) bool {
	for _, other := range schedule.SessionsAt(slot) {
		if other.TeacherID == teacherID {
			return true
		}
	}
	return false
}

// conflictsAt reports whether placing the session into the slot would double
// a teacher or overlap any enrolled student with the current occupants.
func conflictsAt(schedule *Schedule, slot int, sess *Session, students map[string]map[string]struct{}) bool {
	set := students[sess.ID]
	for _, other := range schedule.SessionsAt(slot) {
		if other.TeacherID == sess.TeacherID {
			return true
		}
		for _, studentID := range other.StudentIDs {
			if _, shared := set[studentID]; shared {
				return true
			}
		}
	}
	return false
}

// studentSets precomputes per-session membership sets for conflict probes.
func studentSets(sessions []*Session) map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{}, len(sessions))
	for _, sess := range sessions {
		set := make(map[string]struct{}, len(sess.StudentIDs))
		for _, studentID := range sess.StudentIDs {
			set[studentID] = struct{}{}
		}
		sets[sess.ID] = set
	}
	return sets
}
