package scheduler

import "sort"

// Session is the unit both solvers place: one weekly meeting of a
// subject-group-teacher combination. Sessions are built once from storage
// records and never mutated afterwards; solvers only move them between slots.
type Session struct {
	ID          string
	SubjectID   string
	SubjectName string
	TeacherID   string
	Group       int
	StudentIDs  []string
	Candidates  []int
	MaxPerDay   int

	// ParallelKey is non-empty only for sessions that must co-occur with
	// sibling sessions sharing the same key.
	ParallelKey string
}

// Parallel reports whether the session belongs to a parallel-taught group.
func (s *Session) Parallel() bool {
	return s.ParallelKey != ""
}

// dailyKey identifies the per-day cap bucket a session counts against.
type dailyKey struct {
	SubjectID string
	Group     int
	Day       int
}

// Schedule maps slots to the ordered set of sessions occupying them. It is
// solver-internal working state; the best copy found becomes the run's result.
type Schedule struct {
	slots map[int][]*Session
	index map[string]int
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		slots: make(map[int][]*Session),
		index: make(map[string]int),
	}
}

// Place appends the session to the slot's occupant list.
func (s *Schedule) Place(sess *Session, slot int) {
	s.slots[slot] = append(s.slots[slot], sess)
	s.index[sess.ID] = slot
}

// Remove takes the session out of whatever slot holds it and returns that
// slot. The second return is false when the session is not placed.
func (s *Schedule) Remove(sess *Session) (int, bool) {
	slot, ok := s.index[sess.ID]
	if !ok {
		return 0, false
	}
	occupants := s.slots[slot]
	for i, other := range occupants {
		if other.ID == sess.ID {
			s.slots[slot] = append(occupants[:i:i], occupants[i+1:]...)
			break
		}
	}
	if len(s.slots[slot]) == 0 {
		delete(s.slots, slot)
	}
	delete(s.index, sess.ID)
	return slot, true
}

// SlotOf returns the slot holding the identified session.
func (s *Schedule) SlotOf(sessionID string) (int, bool) {
	slot, ok := s.index[sessionID]
	return slot, ok
}

// SessionsAt returns the occupants of a slot in placement order.
func (s *Schedule) SessionsAt(slot int) []*Session {
	return s.slots[slot]
}

// Occupancy returns how many sessions share the slot.
func (s *Schedule) Occupancy(slot int) int {
	return len(s.slots[slot])
}

// Slots returns the occupied slots in ascending order.
func (s *Schedule) Slots() []int {
	keys := make([]int, 0, len(s.slots))
	for slot := range s.slots {
		keys = append(keys, slot)
	}
	sort.Ints(keys)
	return keys
}

// Len returns the number of placed sessions.
func (s *Schedule) Len() int {
	return len(s.index)
}

// Clone deep-copies the slot layout. Session records themselves are shared:
// they are immutable after construction.
func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{
		slots: make(map[int][]*Session, len(s.slots)),
		index: make(map[string]int, len(s.index)),
	}
	for slot, occupants := range s.slots {
		copied := make([]*Session, len(occupants))
		copy(copied, occupants)
		clone.slots[slot] = copied
	}
	for id, slot := range s.index {
		clone.index[id] = slot
	}
	return clone
}
