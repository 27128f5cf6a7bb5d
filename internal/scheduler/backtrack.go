package scheduler

import (
	"context"
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"
)

// ErrNoSolution reports that the exact solver exhausted the search space
// without finding a conflict-free assignment. It is a sentinel, not a fault.
var ErrNoSolution = errors.New("scheduler: no conflict-free assignment exists")

// BacktrackStats carries run-scoped instrumentation for one exact-solver
// invocation.
type BacktrackStats struct {
	Calls int
}

// BacktrackingSolver places every session via most-constrained-variable-first
// depth-first search with chronological backtracking. Worst case is
// exponential in session count; it is intended for small instances and as a
// correctness oracle next to the local-search optimizer.
type BacktrackingSolver struct {
	grid   Grid
	scorer *SlotScorer
	logger *zap.Logger
}

// NewBacktrackingSolver constructs the exact solver.
func NewBacktrackingSolver(grid Grid, scorer *SlotScorer, logger *zap.Logger) *BacktrackingSolver {
	if scorer == nil {
		scorer = NewSlotScorer(grid, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BacktrackingSolver{grid: grid, scorer: scorer, logger: logger}
}

// Solve returns a complete schedule or ErrNoSolution. Context cancellation is
// checked on every recursive entry and surfaces as ctx.Err.
func (s *BacktrackingSolver) Solve(ctx context.Context, sessions []*Session) (*Schedule, BacktrackStats, error) {
	ordered := make([]*Session, len(sessions))
	copy(ordered, sessions)
	// MRV-style: fewest students, then fewest candidate slots, then tightest
	// daily cap go first.
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if len(a.StudentIDs) != len(b.StudentIDs) {
			return len(a.StudentIDs) < len(b.StudentIDs)
		}
		if len(a.Candidates) != len(b.Candidates) {
			return len(a.Candidates) > len(b.Candidates)
		}
		if a.MaxPerDay != b.MaxPerDay {
			return a.MaxPerDay < b.MaxPerDay
		}
		return a.ID < b.ID
	})

	state := &backtrackState{
		schedule:    NewSchedule(),
		teacherBusy: make(map[string]map[int]struct{}),
		daily:       make(map[dailyKey]int),
		dayLoad:     make(map[int]int),
		slotLoad:    make(map[int]int),
	}

	err := s.place(ctx, state, ordered, 0)
	stats := BacktrackStats{Calls: state.calls}
	if err != nil {
		s.logger.Debug("exact search failed", zap.Int("calls", state.calls), zap.Error(err))
		return nil, stats, err
	}
	s.logger.Debug("exact search succeeded", zap.Int("calls", state.calls), zap.Int("sessions", len(ordered)))
	return state.schedule, stats, nil
}

type backtrackState struct {
	schedule    *Schedule
	teacherBusy map[string]map[int]struct{}
	daily       map[dailyKey]int
	dayLoad     map[int]int
	slotLoad    map[int]int
	calls       int
}

func (s *BacktrackingSolver) place(ctx context.Context, state *backtrackState, ordered []*Session, depth int) error {
	state.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(ordered) {
		return nil
	}

	sess := ordered[depth]
	for _, slot := range s.orderCandidates(state, sess) {
		if !state.legal(s.grid, sess, slot) {
			continue
		}
		mutation := state.apply(s.grid, sess, slot)
		if err := s.place(ctx, state, ordered, depth+1); err == nil {
			return nil
		} else if !errors.Is(err, ErrNoSolution) {
			mutation.revert()
			return err
		}
		mutation.revert()
	}
	return ErrNoSolution
}

// orderCandidates sorts the session's candidate slots by score ascending,
// dropping slots outside the grid and slots the scorer rules out entirely.
func (s *BacktrackingSolver) orderCandidates(state *backtrackState, sess *Session) []int {
	type scored struct {
		slot  int
		score float64
	}
	ranked := make([]scored, 0, len(sess.Candidates))
	for _, slot := range sess.Candidates {
		if !s.grid.ValidSlot(slot) {
			continue
		}
		score := s.scorer.Score(slot, state.dayLoad, state.slotLoad)
		if math.IsInf(score, 1) {
			continue
		}
		ranked = append(ranked, scored{slot: slot, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].slot < ranked[j].slot
	})
	slots := make([]int, len(ranked))
	for i, r := range ranked {
		slots[i] = r.slot
	}
	return slots
}

func (st *backtrackState) legal(grid Grid, sess *Session, slot int) bool {
	if _, busy := st.teacherBusy[sess.TeacherID][slot]; busy {
		return false
	}
	day, _ := grid.DayPeriod(slot)
	key := dailyKey{SubjectID: sess.SubjectID, Group: sess.Group, Day: day}
	return sess.MaxPerDay <= 0 || st.daily[key] < sess.MaxPerDay
}

// mutation is the scoped counter update for one placement; revert restores
// every counter regardless of where the search unwinds.
type mutation struct {
	state *backtrackState
	sess  *Session
	slot  int
	day   int
	key   dailyKey
}

func (st *backtrackState) apply(grid Grid, sess *Session, slot int) mutation {
	day, _ := grid.DayPeriod(slot)
	key := dailyKey{SubjectID: sess.SubjectID, Group: sess.Group, Day: day}

	st.schedule.Place(sess, slot)
	if st.teacherBusy[sess.TeacherID] == nil {
		st.teacherBusy[sess.TeacherID] = make(map[int]struct{})
	}
	st.teacherBusy[sess.TeacherID][slot] = struct{}{}
	st.daily[key]++
	st.dayLoad[day]++
	st.slotLoad[slot]++

	return mutation{state: st, sess: sess, slot: slot, day: day, key: key}
}

func (m mutation) revert() {
	st := m.state
	st.schedule.Remove(m.sess)
	delete(st.teacherBusy[m.sess.TeacherID], m.slot)
	st.daily[m.key]--
	st.dayLoad[m.day]--
	st.slotLoad[m.slot]--
}
