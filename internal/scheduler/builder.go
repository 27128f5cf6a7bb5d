package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ReinisDelvers/School-timetable-algorithm-sub000/internal/models"
)

// Builder turns storage records into the flat session list both solvers
// consume. Validation runs first; on any validation issue the session list is
// empty and callers must treat the run as unable to proceed.
type Builder struct {
	grid   Grid
	logger *zap.Logger
}

// NewBuilder constructs a session builder for the grid.
func NewBuilder(grid Grid, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{grid: grid, logger: logger}
}

// BuildInput collects the read-only records one solving run starts from.
type BuildInput struct {
	Teachers    []models.Teacher
	Subjects    []models.Subject
	Assignments []models.TeacherAssignment
	Enrollment  models.Enrollment
	Blocker     *models.HourBlocker
}

// Build validates the input and derives the session list. The returned issue
// list is non-empty exactly when validation failed, in which case no sessions
// are returned.
func (b *Builder) Build(input BuildInput) ([]*Session, []string) {
	if issues := b.Validate(input); len(issues) > 0 {
		return nil, issues
	}

	teachers := teachersByID(input.Teachers)
	assignments := assignmentsBySubject(input.Assignments)

	var sessions []*Session
	for _, subject := range input.Subjects {
		rows := assignments[subject.ID]
		students := input.Enrollment[subject.ID]

		var built []*Session
		if subject.Parallel {
			built = b.buildParallel(subject, rows, teachers, students, input.Blocker)
		} else {
			built = b.buildGrouped(subject, rows, teachers, students, input.Blocker)
		}
		sessions = append(sessions, built...)

		b.logger.Info("sessions built",
			zap.String("subject", subject.ID),
			zap.Int("teachers", len(rows)),
			zap.Int("students", len(students)),
			zap.Int("sessions", len(built)),
			zap.Bool("parallel", subject.Parallel),
		)
	}
	return sessions, nil
}

// Validate checks the records for conditions that make session construction
// meaningless. It returns descriptive issues instead of failing one by one.
func (b *Builder) Validate(input BuildInput) []string {
	var issues []string

	teachers := teachersByID(input.Teachers)
	for _, teacher := range input.Teachers {
		if !teacher.Active {
			continue
		}
		if teacher.AvailableDays(b.grid.Days) == 0 {
			issues = append(issues, fmt.Sprintf("teacher %s has no available days", teacher.ID))
		}
	}

	assignments := assignmentsBySubject(input.Assignments)
	for _, subject := range input.Subjects {
		rows := assignments[subject.ID]
		if len(rows) == 0 {
			issues = append(issues, fmt.Sprintf("subject %s has no teacher assignments", subject.ID))
			continue
		}
		if subject.HoursPerWeek <= 0 {
			issues = append(issues, fmt.Sprintf("subject %s requires %d hours per week", subject.ID, subject.HoursPerWeek))
			continue
		}

		for _, row := range rows {
			teacher, ok := teachers[row.TeacherID]
			if !ok {
				issues = append(issues, fmt.Sprintf("subject %s references unknown teacher %s", subject.ID, row.TeacherID))
				continue
			}
			capacity := len(b.candidateSlots(teacher, input.Blocker))
			needed := subject.HoursPerWeek * maxInt(row.GroupCount, 1)
			if needed > capacity {
				issues = append(issues, fmt.Sprintf(
					"subject %s needs %d weekly slots from teacher %s who has only %d",
					subject.ID, needed, teacher.ID, capacity))
			}
		}

		if subject.Parallel && len(rows) > 1 {
			if len(b.commonSlots(rows, teachers, input.Blocker)) == 0 {
				issues = append(issues, fmt.Sprintf("parallel subject %s has no slot shared by all its teachers", subject.ID))
			}
		}

		if subject.GroupSizeCap > 0 {
			total := len(input.Enrollment[subject.ID])
			groups := groupTotal(rows)
			if groups > 0 && ceilDiv(total, groups) > subject.GroupSizeCap {
				issues = append(issues, fmt.Sprintf(
					"subject %s group size %d exceeds cap %d",
					subject.ID, ceilDiv(total, groups), subject.GroupSizeCap))
			}
		}
	}

	return issues
}

// buildGrouped creates sessions for a non-parallel subject: enrolled students
// are ceiling-split into the total group count and each teacher covers as
// many groups as its assignment multiplicity.
func (b *Builder) buildGrouped(
	subject models.Subject,
	rows []models.TeacherAssignment,
	teachers map[string]models.Teacher,
	students []string,
	blocker *models.HourBlocker,
) []*Session {
	groups := groupTotal(rows)
	if groups == 0 {
		return nil
	}
	chunks := splitCeiling(students, groups)

	var sessions []*Session
	group := 0
	for _, row := range rows {
		teacher := teachers[row.TeacherID]
		candidates := b.candidateSlots(teacher, blocker)
		for g := 0; g < maxInt(row.GroupCount, 1); g++ {
			group++
			for hour := 1; hour <= subject.HoursPerWeek; hour++ {
				sessions = append(sessions, &Session{
					ID:          fmt.Sprintf("%s-g%d-h%d", subject.ID, group, hour),
					SubjectID:   subject.ID,
					SubjectName: subject.Name,
					TeacherID:   teacher.ID,
					Group:       group,
					StudentIDs:  chunks[group-1],
					Candidates:  candidates,
					MaxPerDay:   subject.MaxPerDay,
				})
			}
		}
	}
	return sessions
}

// buildParallel creates one session per teacher per week-hour, all sharing a
// parallel-group key so the solvers keep them co-located. Students are split
// by integer division across the teachers; the remainder stays unassigned.
func (b *Builder) buildParallel(
	subject models.Subject,
	rows []models.TeacherAssignment,
	teachers map[string]models.Teacher,
	students []string,
	blocker *models.HourBlocker,
) []*Session {
	if len(rows) == 0 {
		return nil
	}
	per := len(students) / len(rows)

	var sessions []*Session
	for hour := 1; hour <= subject.HoursPerWeek; hour++ {
		key := fmt.Sprintf("%s-h%d", subject.ID, hour)
		for i, row := range rows {
			teacher := teachers[row.TeacherID]
			var chunk []string
			if per > 0 {
				chunk = students[i*per : (i+1)*per]
			}
			sessions = append(sessions, &Session{
				ID:          fmt.Sprintf("%s-g%d-h%d", subject.ID, i+1, hour),
				SubjectID:   subject.ID,
				SubjectName: subject.Name,
				TeacherID:   teacher.ID,
				Group:       i + 1,
				StudentIDs:  chunk,
				Candidates:  b.candidateSlots(teacher, blocker),
				MaxPerDay:   subject.MaxPerDay,
				ParallelKey: key,
			})
		}
	}
	return sessions
}

// candidateSlots intersects the teacher's day availability with the globally
// unblocked cells.
func (b *Builder) candidateSlots(teacher models.Teacher, blocker *models.HourBlocker) []int {
	var slots []int
	for day := 0; day < b.grid.Days; day++ {
		if !teacher.AvailableOn(day) {
			continue
		}
		for period := 0; period < b.grid.PeriodsPerDay; period++ {
			if blocker != nil && blocker.IsBlocked(day, period) {
				continue
			}
			slots = append(slots, b.grid.Slot(day, period))
		}
	}
	return slots
}

// commonSlots returns the slots every assigned teacher could use; parallel
// siblings need at least one.
func (b *Builder) commonSlots(
	rows []models.TeacherAssignment,
	teachers map[string]models.Teacher,
	blocker *models.HourBlocker,
) []int {
	counts := make(map[int]int)
	for _, row := range rows {
		for _, slot := range b.candidateSlots(teachers[row.TeacherID], blocker) {
			counts[slot]++
		}
	}
	var common []int
	for slot, n := range counts {
		if n == len(rows) {
			common = append(common, slot)
		}
	}
	return common
}

func teachersByID(teachers []models.Teacher) map[string]models.Teacher {
	byID := make(map[string]models.Teacher, len(teachers))
	for _, teacher := range teachers {
		byID[teacher.ID] = teacher
	}
	return byID
}

func assignmentsBySubject(rows []models.TeacherAssignment) map[string][]models.TeacherAssignment {
	bySubject := make(map[string][]models.TeacherAssignment)
	for _, row := range rows {
		bySubject[row.SubjectID] = append(bySubject[row.SubjectID], row)
	}
	return bySubject
}

func groupTotal(rows []models.TeacherAssignment) int {
	total := 0
	for _, row := range rows {
		total += maxInt(row.GroupCount, 1)
	}
	return total
}

// splitCeiling divides ids into count ordered chunks of ceiling size; later
// chunks may be shorter or empty.
func splitCeiling(ids []string, count int) [][]string {
	chunks := make([][]string, count)
	size := ceilDiv(len(ids), count)
	for i := 0; i < count; i++ {
		lo := minInt(i*size, len(ids))
		hi := minInt(lo+size, len(ids))
		chunks[i] = ids[lo:hi]
	}
	return chunks
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
