package scheduler

import (
	"fmt"
	"sort"
)

// The validator runs once against a finished schedule and reports
// human-readable issues. It never alters the schedule; callers surface the
// issues next to a best-effort result.

// CheckCompleteness compares each subject's placed session count to the
// number of sessions the builder derived for it.
func CheckCompleteness(schedule *Schedule, sessions []*Session) []string {
	required := make(map[string]int)
	placed := make(map[string]int)
	names := make(map[string]string)
	for _, sess := range sessions {
		required[sess.SubjectID]++
		names[sess.SubjectID] = sess.SubjectName
		if _, ok := schedule.SlotOf(sess.ID); ok {
			placed[sess.SubjectID]++
		}
	}

	var issues []string
	for _, subjectID := range sortedKeys(required) {
		if placed[subjectID] != required[subjectID] {
			name := names[subjectID]
			if name == "" {
				name = subjectID
			}
			issues = append(issues, fmt.Sprintf(
				"subject %s: scheduled %d of %d required sessions",
				name, placed[subjectID], required[subjectID]))
		}
	}
	return issues
}

// CheckTeacherConflicts reports teachers placed twice within one slot.
func CheckTeacherConflicts(grid Grid, schedule *Schedule) []string {
	var issues []string
	for _, slot := range schedule.Slots() {
		seen := make(map[string]int)
		for _, sess := range schedule.SessionsAt(slot) {
			seen[sess.TeacherID]++
		}
		day, period := grid.DayPeriod(slot)
		for _, teacherID := range sortedKeys(seen) {
			if seen[teacherID] > 1 {
				issues = append(issues, fmt.Sprintf(
					"teacher %s booked %d times on day %d period %d",
					teacherID, seen[teacherID], day, period))
			}
		}
	}
	return issues
}

// CheckStudentAttendance reports students double-booked within a slot and
// students whose daily session count exceeds the grid's periods per day.
func CheckStudentAttendance(grid Grid, schedule *Schedule) []string {
	var issues []string
	perDay := make(map[string]map[int]int)

	for _, slot := range schedule.Slots() {
		day, period := grid.DayPeriod(slot)
		seen := make(map[string]int)
		for _, sess := range schedule.SessionsAt(slot) {
			for _, studentID := range sess.StudentIDs {
				seen[studentID]++
				if perDay[studentID] == nil {
					perDay[studentID] = make(map[int]int)
				}
				perDay[studentID][day]++
			}
		}
		for _, studentID := range sortedKeys(seen) {
			if seen[studentID] > 1 {
				issues = append(issues, fmt.Sprintf(
					"student %s double-booked on day %d period %d",
					studentID, day, period))
			}
		}
	}

	for _, studentID := range sortedKeys(perDay) {
		for day := 0; day < grid.Days; day++ {
			if perDay[studentID][day] > grid.PeriodsPerDay {
				issues = append(issues, fmt.Sprintf(
					"student %s has %d sessions on day %d but the day has %d periods",
					studentID, perDay[studentID][day], day, grid.PeriodsPerDay))
			}
		}
	}
	return issues
}

// CheckParallelStructure reports parallel groups whose sibling sessions ended
// up in different slots.
func CheckParallelStructure(schedule *Schedule, sessions []*Session) []string {
	slotsByKey := make(map[string]map[int]struct{})
	for _, sess := range sessions {
		if sess.ParallelKey == "" {
			continue
		}
		slot, ok := schedule.SlotOf(sess.ID)
		if !ok {
			continue
		}
		if slotsByKey[sess.ParallelKey] == nil {
			slotsByKey[sess.ParallelKey] = make(map[int]struct{})
		}
		slotsByKey[sess.ParallelKey][slot] = struct{}{}
	}

	var issues []string
	for _, key := range sortedKeys(slotsByKey) {
		if len(slotsByKey[key]) > 1 {
			issues = append(issues, fmt.Sprintf(
				"parallel group %s split across %d slots", key, len(slotsByKey[key])))
		}
	}
	return issues
}

// ValidateSchedule runs every post-hoc check and concatenates the issues.
func ValidateSchedule(grid Grid, schedule *Schedule, sessions []*Session) []string {
	var issues []string
	issues = append(issues, CheckCompleteness(schedule, sessions)...)
	issues = append(issues, CheckTeacherConflicts(grid, schedule)...)
	issues = append(issues, CheckStudentAttendance(grid, schedule)...)
	issues = append(issues, CheckParallelStructure(schedule, sessions)...)
	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
