package scheduler

// Penalty weights. The ordering is deliberate: a missing session outweighs any
// number of lighter violations, and a split parallel group outweighs every
// slot-local conflict, so local moves chase completeness and structure first.
const (
	penaltyMissingSession = 1000
	penaltyParallelSplit  = 600
	penaltyTeacherClash   = 500
	penaltyDailyCap       = 400
	penaltyStudentClash   = 300
)

// Evaluate scores a candidate schedule against the full session list. Zero
// means the schedule is perfect: every session placed exactly once, no
// teacher or student doubled within a slot, no per-day cap exceeded and every
// parallel group co-located. Lower is better.
func Evaluate(grid Grid, schedule *Schedule, all []*Session) int {
	penalty := 0

	for _, sess := range all {
		if _, ok := schedule.SlotOf(sess.ID); !ok {
			penalty += penaltyMissingSession
		}
	}

	daily := make(map[dailyKey]int)
	dailyCap := make(map[dailyKey]int)
	parallelSlots := make(map[string]map[int]struct{})

	for slot, occupants := range schedule.slots {
		day, _ := grid.DayPeriod(slot)
		teacherSeen := make(map[string]int)
		studentSeen := make(map[string]int)
		for _, sess := range occupants {
			teacherSeen[sess.TeacherID]++
			for _, studentID := range sess.StudentIDs {
				studentSeen[studentID]++
			}

			key := dailyKey{SubjectID: sess.SubjectID, Group: sess.Group, Day: day}
			daily[key]++
			dailyCap[key] = sess.MaxPerDay

			if sess.ParallelKey != "" {
				if parallelSlots[sess.ParallelKey] == nil {
					parallelSlots[sess.ParallelKey] = make(map[int]struct{})
				}
				parallelSlots[sess.ParallelKey][slot] = struct{}{}
			}
		}
		for _, n := range teacherSeen {
			if n > 1 {
				penalty += penaltyTeacherClash * (n - 1)
			}
		}
		for _, n := range studentSeen {
			if n > 1 {
				penalty += penaltyStudentClash * (n - 1)
			}
		}
	}

	for key, count := range daily {
		if limit := dailyCap[key]; limit > 0 && count > limit {
			penalty += penaltyDailyCap * (count - limit)
		}
	}

	for _, slots := range parallelSlots {
		if len(slots) > 1 {
			penalty += penaltyParallelSplit * (len(slots) - 1)
		}
	}

	return penalty
}
