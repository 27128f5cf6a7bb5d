package scheduler

import "math"

// DefaultMaxPerSlot caps how many sessions may share one slot.
const DefaultMaxPerSlot = 3

// SlotScorer ranks candidate slots for a session; lower is better. The score
// prefers lightly loaded days and periods and cells near the middle of the
// day. Placing into a slot already at capacity scores +Inf.
type SlotScorer struct {
	grid       Grid
	maxPerSlot int
	midDist    []int
}

// NewSlotScorer builds a scorer for the grid. maxPerSlot falls back to
// DefaultMaxPerSlot when non-positive.
func NewSlotScorer(grid Grid, maxPerSlot int) *SlotScorer {
	if maxPerSlot <= 0 {
		maxPerSlot = DefaultMaxPerSlot
	}
	mid := grid.PeriodsPerDay / 2
	midDist := make([]int, grid.PeriodsPerDay)
	for period := range midDist {
		d := period - mid
		if d < 0 {
			d = -d
		}
		midDist[period] = d
	}
	return &SlotScorer{grid: grid, maxPerSlot: maxPerSlot, midDist: midDist}
}

// MaxPerSlot returns the per-slot occupancy cap the scorer enforces.
func (s *SlotScorer) MaxPerSlot() int {
	return s.maxPerSlot
}

// Score rates placing one more session into slot given the current per-day
// and per-slot load counters.
func (s *SlotScorer) Score(slot int, dayLoad, slotLoad map[int]int) float64 {
	if slotLoad[slot]+1 > s.maxPerSlot {
		return math.Inf(1)
	}
	day, period := s.grid.DayPeriod(slot)
	return float64(2*dayLoad[day] + 3*slotLoad[slot] + s.midDist[period])
}
