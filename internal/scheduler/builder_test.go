package scheduler

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

func testTeacher(id string, days ...bool) models.Teacher {
	return models.Teacher{
		ID:           id,
		FullName:     id,
		Availability: pq.BoolArray(days),
		Active:       true,
	}
}

func TestBuilderGroupedSessions(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	builder := NewBuilder(grid, nil)

	input := BuildInput{
		Teachers: []models.Teacher{testTeacher("t1", true, true)},
		Subjects: []models.Subject{{
			ID: "math", Name: "Mathematics", HoursPerWeek: 2, MaxPerDay: 1,
		}},
		Assignments: []models.TeacherAssignment{
			{ID: "a1", SubjectID: "math", TeacherID: "t1", GroupCount: 2},
		},
		Enrollment: models.Enrollment{"math": {"s1", "s2", "s3"}},
	}

	sessions, issues := builder.Build(input)
	require.Empty(t, issues)
	require.Len(t, sessions, 4)

	require.Equal(t, "math-g1-h1", sessions[0].ID)
	require.Equal(t, "math-g2-h2", sessions[3].ID)
	require.Equal(t, 1, sessions[0].MaxPerDay)
	require.False(t, sessions[0].Parallel())

	// Ceiling split: first group takes the extra student.
	require.Equal(t, []string{"s1", "s2"}, sessions[0].StudentIDs)
	require.Equal(t, []string{"s3"}, sessions[2].StudentIDs)

	// Both availability days, all periods unblocked.
	require.Len(t, sessions[0].Candidates, 6)
}

func TestBuilderParallelSessionsShareKey(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	builder := NewBuilder(grid, nil)

	input := BuildInput{
		Teachers: []models.Teacher{
			testTeacher("t1", true, true),
			testTeacher("t2", true, true),
		},
		Subjects: []models.Subject{{
			ID: "pe", Name: "PE", HoursPerWeek: 2, Parallel: true,
		}},
		Assignments: []models.TeacherAssignment{
			{ID: "a1", SubjectID: "pe", TeacherID: "t1", GroupCount: 1},
			{ID: "a2", SubjectID: "pe", TeacherID: "t2", GroupCount: 1},
		},
		Enrollment: models.Enrollment{"pe": {"s1", "s2", "s3", "s4", "s5"}},
	}

	sessions, issues := builder.Build(input)
	require.Empty(t, issues)
	require.Len(t, sessions, 4)

	require.Equal(t, "pe-h1", sessions[0].ParallelKey)
	require.Equal(t, sessions[0].ParallelKey, sessions[1].ParallelKey)
	require.NotEqual(t, sessions[0].ParallelKey, sessions[2].ParallelKey)

	// Five students over two teachers: two each, the remainder unassigned.
	require.Equal(t, []string{"s1", "s2"}, sessions[0].StudentIDs)
	require.Equal(t, []string{"s3", "s4"}, sessions[1].StudentIDs)
}

func TestBuilderCandidateSlotsRespectBlocker(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	builder := NewBuilder(grid, nil)

	blocker := models.NewHourBlocker(2, 3)
	blocker.Block(0, 0)
	blocker.Block(1, 2)

	input := BuildInput{
		Teachers: []models.Teacher{testTeacher("t1", true, false)},
		Subjects: []models.Subject{{
			ID: "math", Name: "Mathematics", HoursPerWeek: 2,
		}},
		Assignments: []models.TeacherAssignment{
			{ID: "a1", SubjectID: "math", TeacherID: "t1", GroupCount: 1},
		},
		Blocker: blocker,
	}

	sessions, issues := builder.Build(input)
	require.Empty(t, issues)
	require.Len(t, sessions, 2)

	// Day 1 is unavailable and day 0 period 0 is blocked.
	require.Equal(t, []int{grid.Slot(0, 1), grid.Slot(0, 2)}, sessions[0].Candidates)
}

func TestBuilderValidationIssues(t *testing.T) {
	grid := Grid{Days: 2, PeriodsPerDay: 3}
	builder := NewBuilder(grid, nil)

	tests := []struct {
		name  string
		input BuildInput
		want  string
	}{
		{
			name: "teacher without available days",
			input: BuildInput{
				Teachers: []models.Teacher{testTeacher("t1", false, false)},
			},
			want: "teacher t1 has no available days",
		},
		{
			name: "subject without assignments",
			input: BuildInput{
				Subjects: []models.Subject{{ID: "math", HoursPerWeek: 2}},
			},
			want: "subject math has no teacher assignments",
		},
		{
			name: "subject without weekly hours",
			input: BuildInput{
				Teachers: []models.Teacher{testTeacher("t1", true, true)},
				Subjects: []models.Subject{{ID: "math"}},
				Assignments: []models.TeacherAssignment{
					{ID: "a1", SubjectID: "math", TeacherID: "t1", GroupCount: 1},
				},
			},
			want: "subject math requires 0 hours per week",
		},
		{
			name: "unknown teacher reference",
			input: BuildInput{
				Subjects: []models.Subject{{ID: "math", HoursPerWeek: 2}},
				Assignments: []models.TeacherAssignment{
					{ID: "a1", SubjectID: "math", TeacherID: "ghost", GroupCount: 1},
				},
			},
			want: "subject math references unknown teacher ghost",
		},
		{
			name: "demand exceeds teacher capacity",
			input: BuildInput{
				Teachers: []models.Teacher{testTeacher("t1", true, false)},
				Subjects: []models.Subject{{ID: "math", HoursPerWeek: 2}},
				Assignments: []models.TeacherAssignment{
					{ID: "a1", SubjectID: "math", TeacherID: "t1", GroupCount: 2},
				},
			},
			want: "subject math needs 4 weekly slots from teacher t1 who has only 3",
		},
		{
			name: "parallel teachers without a common slot",
			input: BuildInput{
				Teachers: []models.Teacher{
					testTeacher("t1", true, false),
					testTeacher("t2", false, true),
				},
				Subjects: []models.Subject{{ID: "pe", HoursPerWeek: 1, Parallel: true}},
				Assignments: []models.TeacherAssignment{
					{ID: "a1", SubjectID: "pe", TeacherID: "t1", GroupCount: 1},
					{ID: "a2", SubjectID: "pe", TeacherID: "t2", GroupCount: 1},
				},
			},
			want: "parallel subject pe has no slot shared by all its teachers",
		},
		{
			name: "group size above cap",
			input: BuildInput{
				Teachers: []models.Teacher{testTeacher("t1", true, true)},
				Subjects: []models.Subject{{ID: "math", HoursPerWeek: 1, GroupSizeCap: 2}},
				Assignments: []models.TeacherAssignment{
					{ID: "a1", SubjectID: "math", TeacherID: "t1", GroupCount: 1},
				},
				Enrollment: models.Enrollment{"math": {"s1", "s2", "s3"}},
			},
			want: "subject math group size 3 exceeds cap 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sessions, issues := builder.Build(tc.input)
			require.Nil(t, sessions)
			require.Contains(t, issues, tc.want)
		})
	}
}
