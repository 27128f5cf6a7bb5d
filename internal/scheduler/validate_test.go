package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCompleteness(t *testing.T) {
	a := testSession("a", "math", "t1", 1)
	b := testSession("b", "math", "t1", 1)

	schedule := NewSchedule()
	schedule.Place(a, 0)

	issues := CheckCompleteness(schedule, []*Session{a, b})
	require.Len(t, issues, 1)
	require.Equal(t, "subject math: scheduled 1 of 2 required sessions", issues[0])
}

func TestCheckTeacherConflicts(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	a := testSession("a", "math", "t1", 1)
	b := testSession("b", "english", "t1", 1)

	schedule := NewSchedule()
	schedule.Place(a, grid.Slot(1, 2))
	schedule.Place(b, grid.Slot(1, 2))

	issues := CheckTeacherConflicts(grid, schedule)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0], "teacher t1 booked 2 times on day 1 period 2")
}

func TestCheckStudentAttendance(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	a := testSession("a", "math", "t1", 1, withStudents("s1"))
	b := testSession("b", "english", "t2", 1, withStudents("s1"))

	schedule := NewSchedule()
	schedule.Place(a, 0)
	schedule.Place(b, 0)

	issues := CheckStudentAttendance(grid, schedule)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0], "student s1 double-booked on day 0 period 0")
}

func TestCheckStudentAttendanceDailyOverflow(t *testing.T) {
	grid := Grid{Days: 1, PeriodsPerDay: 2}
	a := testSession("a", "math", "t1", 1, withStudents("s1"))
	b := testSession("b", "english", "t2", 1, withStudents("s1"))
	c := testSession("c", "art", "t3", 1, withStudents("s1"))

	// Two sessions stacked in one slot push the student to three sessions on
	// a two-period day.
	schedule := NewSchedule()
	schedule.Place(a, 0)
	schedule.Place(b, 0)
	schedule.Place(c, 1)

	issues := CheckStudentAttendance(grid, schedule)
	require.Len(t, issues, 2)
	require.Contains(t, issues, "student s1 double-booked on day 0 period 0")
	require.Contains(t, issues, "student s1 has 3 sessions on day 0 but the day has 2 periods")
}

func TestCheckParallelStructure(t *testing.T) {
	a := testSession("a", "pe", "t1", 1, withParallelKey("pe-h1"))
	b := testSession("b", "pe", "t2", 2, withParallelKey("pe-h1"))

	schedule := NewSchedule()
	schedule.Place(a, 0)
	schedule.Place(b, 3)

	issues := CheckParallelStructure(schedule, []*Session{a, b})
	require.Len(t, issues, 1)
	require.Equal(t, "parallel group pe-h1 split across 2 slots", issues[0])
}

func TestValidateScheduleCleanResult(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	a := testSession("a", "math", "t1", 1, withStudents("s1"))
	b := testSession("b", "english", "t2", 1, withStudents("s2"))

	schedule := NewSchedule()
	schedule.Place(a, 0)
	schedule.Place(b, 1)

	require.Empty(t, ValidateSchedule(grid, schedule, []*Session{a, b}))
}
